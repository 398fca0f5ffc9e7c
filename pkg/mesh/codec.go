package mesh

import (
	"errors"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"
)

// Codec errors.
var (
	ErrUnknownPort = errors.New("no payload schema for port")
	ErrNoPayload   = errors.New("packet has no payload")
)

// encMode is the CBOR encoder mode for mesh messages.
// Configured for deterministic encoding with integer keys.
var encMode cbor.EncMode

// decMode is the CBOR decoder mode for mesh messages.
var decMode cbor.DecMode

func init() {
	var err error

	encOpts := cbor.EncOptions{
		Sort:          cbor.SortCanonical,
		IndefLength:   cbor.IndefLengthForbidden,
		NilContainers: cbor.NilContainerAsNull,
		Time:          cbor.TimeUnix,
	}
	encMode, err = encOpts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR encoder mode: %v", err))
	}

	// Lenient decoding for forward compatibility with newer firmware
	decOpts := cbor.DecOptions{
		DupMapKey:         cbor.DupMapKeyQuiet,
		IndefLength:       cbor.IndefLengthAllowed,
		ExtraReturnErrors: cbor.ExtraDecErrorNone,
	}
	decMode, err = decOpts.DecMode()
	if err != nil {
		panic(fmt.Sprintf("failed to create CBOR decoder mode: %v", err))
	}
}

// Marshal encodes a value to CBOR bytes.
func Marshal(v any) ([]byte, error) {
	return encMode.Marshal(v)
}

// Unmarshal decodes CBOR bytes into a value.
func Unmarshal(data []byte, v any) error {
	return decMode.Unmarshal(data, v)
}

// NewEncoder creates a new CBOR encoder that writes to w.
func NewEncoder(w io.Writer) *cbor.Encoder {
	return encMode.NewEncoder(w)
}

// NewDecoder creates a new CBOR decoder that reads from r.
func NewDecoder(r io.Reader) *cbor.Decoder {
	return decMode.NewDecoder(r)
}

// DecodeAppPayload decodes an application payload into the typed message for
// its port. Returns ErrUnknownPort for ports without a known schema; callers
// log and drop such payloads rather than propagating.
func DecodeAppPayload(port PortNum, payload []byte) (any, error) {
	switch port {
	case PortTextMessage:
		// Text messages are raw UTF-8, not CBOR
		return string(payload), nil
	case PortPosition:
		var p Position
		if err := Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("failed to decode position: %w", err)
		}
		return &p, nil
	case PortNodeInfo:
		var u User
		if err := Unmarshal(payload, &u); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		return &u, nil
	case PortRouting:
		var r Routing
		if err := Unmarshal(payload, &r); err != nil {
			return nil, fmt.Errorf("failed to decode routing: %w", err)
		}
		return &r, nil
	case PortAdmin:
		var a AdminMessage
		if err := Unmarshal(payload, &a); err != nil {
			return nil, fmt.Errorf("failed to decode admin message: %w", err)
		}
		return &a, nil
	case PortTelemetry:
		var t Telemetry
		if err := Unmarshal(payload, &t); err != nil {
			return nil, fmt.Errorf("failed to decode telemetry: %w", err)
		}
		return &t, nil
	default:
		return nil, fmt.Errorf("%w: %s (%d)", ErrUnknownPort, port, uint32(port))
	}
}

// DecodeRouting decodes an acknowledgement payload.
func DecodeRouting(payload []byte) (*Routing, error) {
	var r Routing
	if err := Unmarshal(payload, &r); err != nil {
		return nil, fmt.Errorf("failed to decode routing: %w", err)
	}
	return &r, nil
}
