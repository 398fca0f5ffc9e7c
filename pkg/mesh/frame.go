package mesh

// Addressing constants.
const (
	// BroadcastNum is the node number addressing every node on the mesh.
	BroadcastNum uint32 = 0xFFFFFFFF

	// BroadcastAddr is the textual broadcast destination.
	BroadcastAddr = "^all"

	// PKCChannelIndex is the dedicated encrypted admin channel index, usable
	// only when both endpoints support public-key cryptography.
	PKCChannelIndex int32 = 8
)

// Priority controls queueing of an outbound packet on the device.
type Priority uint8

const (
	// PriorityUnset lets the device pick a default.
	PriorityUnset Priority = 0

	// PriorityMin is the lowest priority.
	PriorityMin Priority = 1

	// PriorityBackground is for unattended periodic traffic.
	PriorityBackground Priority = 10

	// PriorityDefault is for ordinary application traffic.
	PriorityDefault Priority = 64

	// PriorityReliable is for traffic that requests acknowledgement.
	PriorityReliable Priority = 70

	// PriorityAck is for acknowledgement packets themselves.
	PriorityAck Priority = 120

	// PriorityMax is the highest priority.
	PriorityMax Priority = 127
)

// String returns the priority name.
func (p Priority) String() string {
	switch p {
	case PriorityUnset:
		return "UNSET"
	case PriorityMin:
		return "MIN"
	case PriorityBackground:
		return "BACKGROUND"
	case PriorityDefault:
		return "DEFAULT"
	case PriorityReliable:
		return "RELIABLE"
	case PriorityAck:
		return "ACK"
	case PriorityMax:
		return "MAX"
	default:
		return "UNKNOWN"
	}
}

// FromRadio is one decoded inbound frame from the device. Exactly one
// sub-field is populated per frame.
//
// CBOR encoding uses integer keys:
//
//	{
//	  1: packet,       // mesh traffic
//	  2: myInfo,       // local node identity
//	  3: nodeInfo,     // topology record
//	  4: config,       // config sub-message
//	  5: moduleConfig, // module config sub-message
//	  6: channel,      // one channel of the local channel table
//	  7: queueStatus,  // outbound queue state
//	  8: metadata,     // device metadata
//	  9: logRecord,    // device-side log line
//	  10: rebooted,    // device reboot notification
//	  11: configCompleteId // end marker of a config dump
//	}
type FromRadio struct {
	Packet       *MeshPacket     `cbor:"1,keyasint,omitempty"`
	MyInfo       *MyNodeInfo     `cbor:"2,keyasint,omitempty"`
	NodeInfo     *NodeInfo       `cbor:"3,keyasint,omitempty"`
	Config       *Config         `cbor:"4,keyasint,omitempty"`
	ModuleConfig *ModuleConfig   `cbor:"5,keyasint,omitempty"`
	Channel      *Channel        `cbor:"6,keyasint,omitempty"`
	QueueStatus  *QueueStatus    `cbor:"7,keyasint,omitempty"`
	Metadata     *DeviceMetadata `cbor:"8,keyasint,omitempty"`
	LogRecord    *LogRecord      `cbor:"9,keyasint,omitempty"`
	Rebooted     bool            `cbor:"10,keyasint,omitempty"`

	// ConfigCompleteID echoes the nonce of a config request once every
	// frame of the dump has been sent.
	ConfigCompleteID uint32 `cbor:"11,keyasint,omitempty"`
}

// MeshPacket is one unit of mesh traffic, inbound or outbound.
type MeshPacket struct {
	From         uint32   `cbor:"1,keyasint,omitempty"`
	To           uint32   `cbor:"2,keyasint,omitempty"`
	Channel      int32    `cbor:"3,keyasint,omitempty"`
	Decoded      *Data    `cbor:"4,keyasint,omitempty"`
	ID           uint32   `cbor:"5,keyasint,omitempty"`
	RxTime       uint32   `cbor:"6,keyasint,omitempty"`
	RxSNR        float32  `cbor:"7,keyasint,omitempty"`
	HopLimit     uint8    `cbor:"8,keyasint,omitempty"`
	WantAck      bool     `cbor:"9,keyasint,omitempty"`
	Priority     Priority `cbor:"10,keyasint,omitempty"`
	PKIEncrypted bool     `cbor:"11,keyasint,omitempty"`
}

// Data is the decoded application payload of a MeshPacket.
type Data struct {
	Port         PortNum `cbor:"1,keyasint,omitempty"`
	Payload      []byte  `cbor:"2,keyasint,omitempty"`
	WantResponse bool    `cbor:"3,keyasint,omitempty"`
	Dest         uint32  `cbor:"4,keyasint,omitempty"`
	Source       uint32  `cbor:"5,keyasint,omitempty"`
	RequestID    uint32  `cbor:"6,keyasint,omitempty"`
	ReplyID      uint32  `cbor:"7,keyasint,omitempty"`
}

// LogRecord is a log line forwarded by the device. The engine ignores these
// beyond fan-out to stream listeners.
type LogRecord struct {
	Message string `cbor:"1,keyasint,omitempty"`
	Time    uint32 `cbor:"2,keyasint,omitempty"`
	Source  string `cbor:"3,keyasint,omitempty"`
	Level   uint8  `cbor:"4,keyasint,omitempty"`
}
