package mesh

// RoutingError is a protocol-level delivery failure reported inside an
// acknowledgement frame.
type RoutingError uint8

const (
	// RoutingNone indicates successful delivery.
	RoutingNone RoutingError = 0

	// RoutingNoRoute indicates no route to the destination was found.
	RoutingNoRoute RoutingError = 1

	// RoutingGotNak indicates a negative acknowledgement was received.
	RoutingGotNak RoutingError = 2

	// RoutingTimeout indicates the mesh gave up waiting for delivery.
	RoutingTimeout RoutingError = 3

	// RoutingNoInterface indicates no suitable radio interface was available.
	RoutingNoInterface RoutingError = 4

	// RoutingMaxRetransmit indicates the retransmission limit was reached.
	RoutingMaxRetransmit RoutingError = 5

	// RoutingNoChannel indicates the packet referenced an unknown channel.
	RoutingNoChannel RoutingError = 6

	// RoutingTooLarge indicates the payload exceeded the maximum packet size.
	RoutingTooLarge RoutingError = 7

	// RoutingNoResponse indicates the destination never answered.
	RoutingNoResponse RoutingError = 8

	// RoutingDutyCycleLimit indicates regional duty-cycle limiting.
	RoutingDutyCycleLimit RoutingError = 9

	// RoutingBadRequest indicates the device rejected a malformed request.
	RoutingBadRequest RoutingError = 32

	// RoutingNotAuthorized indicates the sender lacked the required key.
	RoutingNotAuthorized RoutingError = 33

	// RoutingPKIFailed indicates public-key encryption failed.
	RoutingPKIFailed RoutingError = 34

	// RoutingPKIUnknownPubkey indicates the target's public key is unknown.
	RoutingPKIUnknownPubkey RoutingError = 35
)

// String returns the routing error name.
func (e RoutingError) String() string {
	switch e {
	case RoutingNone:
		return "NONE"
	case RoutingNoRoute:
		return "NO_ROUTE"
	case RoutingGotNak:
		return "GOT_NAK"
	case RoutingTimeout:
		return "TIMEOUT"
	case RoutingNoInterface:
		return "NO_INTERFACE"
	case RoutingMaxRetransmit:
		return "MAX_RETRANSMIT"
	case RoutingNoChannel:
		return "NO_CHANNEL"
	case RoutingTooLarge:
		return "TOO_LARGE"
	case RoutingNoResponse:
		return "NO_RESPONSE"
	case RoutingDutyCycleLimit:
		return "DUTY_CYCLE_LIMIT"
	case RoutingBadRequest:
		return "BAD_REQUEST"
	case RoutingNotAuthorized:
		return "NOT_AUTHORIZED"
	case RoutingPKIFailed:
		return "PKI_FAILED"
	case RoutingPKIUnknownPubkey:
		return "PKI_UNKNOWN_PUBKEY"
	default:
		return "UNKNOWN"
	}
}

// Routing is the payload of an acknowledgement packet on PortRouting.
//
// CBOR encoding:
//
//	{
//	  1: errorReason   // uint8, 0 = delivered
//	}
type Routing struct {
	ErrorReason RoutingError `cbor:"1,keyasint,omitempty"`
}
