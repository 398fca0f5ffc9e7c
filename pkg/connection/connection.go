package connection

import (
	"context"
	"errors"

	"github.com/meshlink-protocol/meshlink-go/pkg/mesh"
)

// Connection errors.
var (
	ErrNotConnected     = errors.New("not connected")
	ErrConnectionClosed = errors.New("connection closed")
	ErrListenerClosed   = errors.New("listener closed")
)

// SendRequest describes one outbound application packet.
type SendRequest struct {
	// To is the destination node number (mesh.BroadcastNum for broadcast).
	To uint32

	// From overrides the source node number. Zero means the local node.
	From uint32

	// Payload is the encoded application payload.
	Payload []byte

	// Port tags the payload schema.
	Port mesh.PortNum

	// Priority controls device-side queueing.
	Priority mesh.Priority

	// WantAck requests a delivery acknowledgement from the mesh.
	WantAck bool

	// WantResponse asks the destination application to reply.
	WantResponse bool

	// Channel selects the channel index. Nil lets the device pick the
	// primary channel.
	Channel *int32

	// OnAck, if set, is invoked asynchronously when the acknowledgement
	// frame for this packet arrives. The packet carries a Routing payload.
	OnAck func(*mesh.MeshPacket)
}

// SendResult is the outcome of a completed send. When the request asked for
// an application response, Packet and Data carry the reply; otherwise both
// may be nil (successful local handoff).
type SendResult struct {
	Packet *mesh.MeshPacket
	Data   *mesh.Data
}

// FrameStream is a restartable sequence of decoded inbound frames.
type FrameStream interface {
	// Next blocks until a frame arrives, the context is cancelled, or the
	// transport fails. A transport failure is returned as an error and ends
	// the stream; obtain a fresh stream after reconnecting.
	Next(ctx context.Context) (*mesh.FromRadio, error)

	// Close releases the stream. Idempotent.
	Close() error
}

// Connection is the transport capability consumed by the session engine.
// Implementations must be safe for concurrent use.
type Connection interface {
	// Connect opens the transport.
	Connect(ctx context.Context) error

	// Disconnect closes the transport.
	Disconnect(ctx context.Context) error

	// Reconnect re-establishes the transport. When force is true the
	// existing transport is torn down first. Returns whether a new
	// connection was actually established.
	Reconnect(ctx context.Context, force bool) (bool, error)

	// Listen returns a stream of decoded inbound frames.
	Listen(ctx context.Context) (FrameStream, error)

	// SendMeshPacket submits an outbound application packet. The call blocks
	// until local handoff completes or, when req.WantResponse is set, until
	// the application reply arrives. req.OnAck is invoked asynchronously.
	SendMeshPacket(ctx context.Context, req SendRequest) (*SendResult, error)

	// RequestConfig runs the device's config dump and blocks until it
	// completes. When minimal is true the node database portion is skipped.
	RequestConfig(ctx context.Context, minimal bool) error

	// SendHeartbeat sends a best-effort keep-alive.
	SendHeartbeat(ctx context.Context) error

	// SendDisconnect notifies the device of an orderly teardown.
	SendDisconnect(ctx context.Context) error
}
