// Package mock provides scripted connection and device implementations for
// testing the session engine without a real radio.
package mock

import (
	"context"
	"errors"
	"sync"

	"github.com/meshlink-protocol/meshlink-go/pkg/connection"
	"github.com/meshlink-protocol/meshlink-go/pkg/mesh"
)

// ErrScripted is the default failure injected by the Fail* fields.
var ErrScripted = errors.New("scripted failure")

// Connection is a scripted connection.Connection. Inject failures through
// the exported fields, push inbound frames with PushFrame, and inspect the
// recorded calls afterwards.
type Connection struct {
	mu sync.Mutex

	connected  bool
	frames     chan *mesh.FromRadio
	streamErrs chan error
	syncNonce  uint32

	// Failure injection. A nil error means success.
	ConnectErr       error
	DisconnectErr    error
	ReconnectErr     error
	RequestConfigErr error
	HeartbeatErr     error
	ListenErr        error

	// DidReconnect is what Reconnect reports on success.
	DidReconnect bool

	// ConfigFrames are pushed to the frame stream when RequestConfig runs,
	// simulating the device's config dump. The dump is followed by a
	// config-complete frame unless OmitConfigComplete is set.
	ConfigFrames       []*mesh.FromRadio
	OmitConfigComplete bool

	// AutoAck delivers an acknowledgement to OnAck for every send that
	// requests one. AckReason selects the routing outcome.
	AutoAck   bool
	AckReason mesh.RoutingError

	// SendFunc overrides send behavior entirely when set.
	SendFunc func(ctx context.Context, req connection.SendRequest) (*connection.SendResult, error)

	// Recorded state.
	ConnectCalls       int
	DisconnectCalls    int
	ReconnectCalls     int
	RequestConfigCalls int
	HeartbeatCalls     int
	DisconnectNotices  int
	SentRequests       []connection.SendRequest

	responses chan *connection.SendResult
}

// NewConnection creates a scripted connection that reconnects successfully
// by default.
func NewConnection() *Connection {
	return &Connection{
		frames:       make(chan *mesh.FromRadio, 256),
		streamErrs:   make(chan error, 16),
		responses:    make(chan *connection.SendResult, 16),
		DidReconnect: true,
		AutoAck:      true,
	}
}

// SetSendFunc swaps the send override while the connection is in use.
func (c *Connection) SetSendFunc(fn func(ctx context.Context, req connection.SendRequest) (*connection.SendResult, error)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.SendFunc = fn
}

// PushFrame queues an inbound frame for the session's ingestion loop.
func (c *Connection) PushFrame(frame *mesh.FromRadio) {
	c.frames <- frame
}

// PushStreamError fails the next frame-stream read with err, simulating a
// transport drop mid-stream.
func (c *Connection) PushStreamError(err error) {
	c.streamErrs <- err
}

// QueueResponse queues the application reply for the next send that waits
// for one.
func (c *Connection) QueueResponse(res *connection.SendResult) {
	c.responses <- res
}

// SetReconnectErr swaps the reconnect failure injection while in use.
func (c *Connection) SetReconnectErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ReconnectErr = err
}

// ConnectCount returns the number of Connect calls.
func (c *Connection) ConnectCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ConnectCalls
}

// RequestConfigCount returns the number of RequestConfig calls.
func (c *Connection) RequestConfigCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.RequestConfigCalls
}

// ReconnectCount returns the number of Reconnect calls.
func (c *Connection) ReconnectCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ReconnectCalls
}

// Sent returns a snapshot of the recorded send requests.
func (c *Connection) Sent() []connection.SendRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]connection.SendRequest, len(c.SentRequests))
	copy(out, c.SentRequests)
	return out
}

// Connected reports the scripted transport state.
func (c *Connection) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Connect implements connection.Connection.
func (c *Connection) Connect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ConnectCalls++
	if c.ConnectErr != nil {
		return c.ConnectErr
	}
	c.connected = true
	return nil
}

// Disconnect implements connection.Connection.
func (c *Connection) Disconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.DisconnectCalls++
	c.connected = false
	return c.DisconnectErr
}

// Reconnect implements connection.Connection.
func (c *Connection) Reconnect(ctx context.Context, force bool) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.ReconnectCalls++
	if c.ReconnectErr != nil {
		return false, c.ReconnectErr
	}
	c.connected = true
	return c.DidReconnect, nil
}

// Listen implements connection.Connection.
func (c *Connection) Listen(ctx context.Context) (connection.FrameStream, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.ListenErr != nil {
		return nil, c.ListenErr
	}
	if !c.connected {
		return nil, connection.ErrNotConnected
	}
	return &frameStream{frames: c.frames, errs: c.streamErrs}, nil
}

// SendMeshPacket implements connection.Connection.
func (c *Connection) SendMeshPacket(ctx context.Context, req connection.SendRequest) (*connection.SendResult, error) {
	c.mu.Lock()
	c.SentRequests = append(c.SentRequests, req)
	sendFunc := c.SendFunc
	autoAck := c.AutoAck
	ackReason := c.AckReason
	c.mu.Unlock()

	if sendFunc != nil {
		return sendFunc(ctx, req)
	}

	if autoAck && req.OnAck != nil && (req.WantAck || req.WantResponse) {
		payload, _ := mesh.Marshal(&mesh.Routing{ErrorReason: ackReason})
		ack := &mesh.MeshPacket{
			From:    req.To,
			Decoded: &mesh.Data{Port: mesh.PortRouting, Payload: payload},
		}
		go req.OnAck(ack)
	}

	if !req.WantResponse {
		return &connection.SendResult{}, nil
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-c.responses:
		return res, nil
	}
}

// RequestConfig implements connection.Connection. The scripted config dump
// is delivered through the frame stream, like a real device.
func (c *Connection) RequestConfig(ctx context.Context, minimal bool) error {
	c.mu.Lock()
	c.RequestConfigCalls++
	err := c.RequestConfigErr
	frames := c.ConfigFrames
	omitComplete := c.OmitConfigComplete
	c.syncNonce++
	nonce := c.syncNonce
	c.mu.Unlock()

	if err != nil {
		return err
	}
	if !omitComplete {
		frames = append(frames[:len(frames):len(frames)], &mesh.FromRadio{ConfigCompleteID: nonce})
	}
	for _, f := range frames {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c.frames <- f:
		}
	}
	return nil
}

// SendHeartbeat implements connection.Connection.
func (c *Connection) SendHeartbeat(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.HeartbeatCalls++
	return c.HeartbeatErr
}

// SendDisconnect implements connection.Connection.
func (c *Connection) SendDisconnect(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.DisconnectNotices++
	return nil
}

// Compile-time interface satisfaction check.
var _ connection.Connection = (*Connection)(nil)

// frameStream drains the mock's frame queue. Injected stream errors take
// precedence over queued frames.
type frameStream struct {
	frames chan *mesh.FromRadio
	errs   chan error
}

func (s *frameStream) Next(ctx context.Context) (*mesh.FromRadio, error) {
	select {
	case err := <-s.errs:
		return nil, err
	default:
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-s.errs:
		return nil, err
	case frame, ok := <-s.frames:
		if !ok {
			return nil, connection.ErrConnectionClosed
		}
		return frame, nil
	}
}

func (s *frameStream) Close() error {
	return nil
}
