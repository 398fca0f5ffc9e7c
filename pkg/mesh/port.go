package mesh

// PortNum identifies the payload schema carried inside a packet.
type PortNum uint32

const (
	// PortUnknown indicates an unset or unrecognized port.
	PortUnknown PortNum = 0

	// PortTextMessage carries a UTF-8 text message.
	PortTextMessage PortNum = 1

	// PortPosition carries a Position update.
	PortPosition PortNum = 3

	// PortNodeInfo carries a User record broadcast.
	PortNodeInfo PortNum = 4

	// PortRouting carries a Routing acknowledgement or error.
	PortRouting PortNum = 5

	// PortAdmin carries an AdminMessage request or response.
	PortAdmin PortNum = 6

	// PortTelemetry carries a Telemetry report.
	PortTelemetry PortNum = 67

	// PortTraceroute carries a route discovery exchange.
	PortTraceroute PortNum = 70
)

// String returns a human-readable port name.
func (p PortNum) String() string {
	switch p {
	case PortUnknown:
		return "UNKNOWN"
	case PortTextMessage:
		return "TEXT_MESSAGE"
	case PortPosition:
		return "POSITION"
	case PortNodeInfo:
		return "NODE_INFO"
	case PortRouting:
		return "ROUTING"
	case PortAdmin:
		return "ADMIN"
	case PortTelemetry:
		return "TELEMETRY"
	case PortTraceroute:
		return "TRACEROUTE"
	default:
		return "UNASSIGNED"
	}
}

// IsKnown reports whether the port maps to a typed payload schema.
func (p PortNum) IsKnown() bool {
	switch p {
	case PortTextMessage, PortPosition, PortNodeInfo, PortRouting, PortAdmin, PortTelemetry:
		return true
	default:
		return false
	}
}
