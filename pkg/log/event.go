package log

import (
	"time"
)

// Direction indicates whether a frame was sent or received,
// from the perspective of the client.
type Direction uint8

const (
	// DirectionRx indicates a frame received from the device.
	DirectionRx Direction = 0
	// DirectionTx indicates a frame sent to the device.
	DirectionTx Direction = 1
	// DirectionNone is used for events with no direction (state changes, errors).
	DirectionNone Direction = 2
)

// String returns a human-readable direction.
func (d Direction) String() string {
	switch d {
	case DirectionRx:
		return "RX"
	case DirectionTx:
		return "TX"
	case DirectionNone:
		return "-"
	default:
		return "UNKNOWN"
	}
}

// Layer identifies which layer of the stack generated an event.
type Layer uint8

const (
	// LayerTransport is the byte-stream transport (TCP, serial, simulated).
	LayerTransport Layer = 0
	// LayerFrame is the framing layer (FromRadio/ToRadio frames).
	LayerFrame Layer = 1
	// LayerSession is the session engine (lifecycle, config sync, requests).
	LayerSession Layer = 2
)

// String returns a human-readable layer name.
func (l Layer) String() string {
	switch l {
	case LayerTransport:
		return "TRANSPORT"
	case LayerFrame:
		return "FRAME"
	case LayerSession:
		return "SESSION"
	default:
		return "UNKNOWN"
	}
}

// Category classifies the kind of event.
type Category uint8

const (
	// CategoryFrame is a protocol frame (packet, config, node info).
	CategoryFrame Category = 0
	// CategoryControl is a control operation (heartbeat, disconnect, config request).
	CategoryControl Category = 1
	// CategoryState is a state transition (connection, session, config sync).
	CategoryState Category = 2
	// CategoryError is an error condition.
	CategoryError Category = 3
)

// String returns a human-readable category name.
func (c Category) String() string {
	switch c {
	case CategoryFrame:
		return "FRAME"
	case CategoryControl:
		return "CONTROL"
	case CategoryState:
		return "STATE"
	case CategoryError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// StateEntity identifies which state machine a StateChangeEvent refers to.
type StateEntity uint8

const (
	// EntityConnection is the underlying device connection.
	EntityConnection StateEntity = 0
	// EntitySession is the session engine lifecycle.
	EntitySession StateEntity = 1
	// EntityConfigSync is the config synchronization handshake.
	EntityConfigSync StateEntity = 2
)

// String returns a human-readable entity name.
func (e StateEntity) String() string {
	switch e {
	case EntityConnection:
		return "CONNECTION"
	case EntitySession:
		return "SESSION"
	case EntityConfigSync:
		return "CONFIG_SYNC"
	default:
		return "UNKNOWN"
	}
}

// Event is a single protocol log event. Events are written by the session
// engine and connection layers and consumed by Logger implementations.
// CBOR tags use integer keys for compact on-disk representation.
type Event struct {
	// Timestamp is when the event occurred.
	Timestamp time.Time `cbor:"1,keyasint"`

	// SessionID identifies the session this event belongs to.
	SessionID string `cbor:"2,keyasint,omitempty"`

	// Direction indicates TX, RX, or none.
	Direction Direction `cbor:"3,keyasint"`

	// Layer identifies the originating layer.
	Layer Layer `cbor:"4,keyasint"`

	// Category classifies the event.
	Category Category `cbor:"5,keyasint"`

	// Node is the mesh node number this event relates to, if any.
	Node uint32 `cbor:"6,keyasint,omitempty"`

	// Frame is set for CategoryFrame events.
	Frame *FrameEvent `cbor:"7,keyasint,omitempty"`

	// StateChange is set for CategoryState events.
	StateChange *StateChangeEvent `cbor:"8,keyasint,omitempty"`

	// Error is set for CategoryError events.
	Error *ErrorEventData `cbor:"9,keyasint,omitempty"`

	// Message is free-form context for control and error events.
	Message string `cbor:"10,keyasint,omitempty"`
}

// FrameEvent describes a protocol frame that was sent or received.
type FrameEvent struct {
	// Kind names the frame variant (packet, my_info, node_info, config,
	// module_config, channel, queue_status, metadata, log_record, rebooted).
	Kind string `cbor:"1,keyasint"`

	// Port is the application port number for mesh packets.
	Port uint32 `cbor:"2,keyasint,omitempty"`

	// PacketID is the packet identifier for mesh packets.
	PacketID uint32 `cbor:"3,keyasint,omitempty"`

	// From is the sending node number.
	From uint32 `cbor:"4,keyasint,omitempty"`

	// To is the destination node number.
	To uint32 `cbor:"5,keyasint,omitempty"`

	// Size is the payload size in bytes.
	Size int `cbor:"6,keyasint,omitempty"`

	// WantAck indicates the packet requested an acknowledgement.
	WantAck bool `cbor:"7,keyasint,omitempty"`

	// WantResponse indicates the packet requested an application response.
	WantResponse bool `cbor:"8,keyasint,omitempty"`
}

// StateChangeEvent describes a state machine transition.
type StateChangeEvent struct {
	// Entity identifies which state machine transitioned.
	Entity StateEntity `cbor:"1,keyasint"`

	// OldState is the state before the transition.
	OldState string `cbor:"2,keyasint"`

	// NewState is the state after the transition.
	NewState string `cbor:"3,keyasint"`

	// Reason gives optional context for the transition.
	Reason string `cbor:"4,keyasint,omitempty"`
}

// ErrorEventData describes an error condition.
type ErrorEventData struct {
	// Code is a machine-readable error code, if one applies.
	Code uint32 `cbor:"1,keyasint,omitempty"`

	// Detail is the error text.
	Detail string `cbor:"2,keyasint"`
}

// NewFrameEvent creates a frame event with the current timestamp.
func NewFrameEvent(sessionID string, dir Direction, frame *FrameEvent) Event {
	return Event{
		Timestamp: time.Now(),
		SessionID: sessionID,
		Direction: dir,
		Layer:     LayerFrame,
		Category:  CategoryFrame,
		Frame:     frame,
	}
}

// NewStateEvent creates a state transition event with the current timestamp.
func NewStateEvent(sessionID string, entity StateEntity, oldState, newState, reason string) Event {
	return Event{
		Timestamp: time.Now(),
		SessionID: sessionID,
		Direction: DirectionNone,
		Layer:     LayerSession,
		Category:  CategoryState,
		StateChange: &StateChangeEvent{
			Entity:   entity,
			OldState: oldState,
			NewState: newState,
			Reason:   reason,
		},
	}
}

// NewErrorEvent creates an error event with the current timestamp.
func NewErrorEvent(sessionID string, layer Layer, err error) Event {
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	return Event{
		Timestamp: time.Now(),
		SessionID: sessionID,
		Direction: DirectionNone,
		Layer:     layer,
		Category:  CategoryError,
		Error:     &ErrorEventData{Detail: detail},
	}
}

// NewControlEvent creates a control event with the current timestamp.
func NewControlEvent(sessionID string, dir Direction, message string) Event {
	return Event{
		Timestamp: time.Now(),
		SessionID: sessionID,
		Direction: dir,
		Layer:     LayerSession,
		Category:  CategoryControl,
		Message:   message,
	}
}
