package session

import (
	"context"
	"time"

	"github.com/meshlink-protocol/meshlink-go/pkg/connection"
	"github.com/meshlink-protocol/meshlink-go/pkg/log"
	"github.com/meshlink-protocol/meshlink-go/pkg/mesh"
)

// SendMessage submits an outbound packet and waits for its outcome: local
// handoff for plain sends, or the mesh acknowledgement when req.WantAck is
// set. A mesh-reported delivery failure surfaces as *RoutingError; a missing
// acknowledgement as ErrAckTimeout.
func (s *Session) SendMessage(ctx context.Context, req connection.SendRequest) (*connection.SendResult, error) {
	return s.sendAwait(ctx, req, false, 0)
}

// SendMessageAwaitResponse submits an outbound packet that requests an
// application response, and waits for the reply. A timeout of zero uses the
// session's ResponseTimeout. Failure modes are distinguished: no
// acknowledgement in time is ErrAckTimeout, an acknowledged request without
// a reply is ErrResponseTimeout, and a mesh delivery failure is
// *RoutingError.
func (s *Session) SendMessageAwaitResponse(ctx context.Context, req connection.SendRequest, timeout time.Duration) (*connection.SendResult, error) {
	return s.sendAwait(ctx, req, true, timeout)
}

// sendAwait races the pending send against the acknowledgement stream and
// the applicable deadlines. Whichever resolves first wins; the in-flight
// send is cancelled on the way out.
func (s *Session) sendAwait(ctx context.Context, req connection.SendRequest, awaitResponse bool, respTimeout time.Duration) (*connection.SendResult, error) {
	req.WantResponse = awaitResponse
	if respTimeout <= 0 {
		respTimeout = s.opts.ResponseTimeout
	}

	ackCh := make(chan *mesh.MeshPacket, 1)
	if req.WantAck || awaitResponse {
		userOnAck := req.OnAck
		req.OnAck = func(p *mesh.MeshPacket) {
			select {
			case ackCh <- p:
			default:
			}
			if userOnAck != nil {
				userOnAck(p)
			}
		}
	}

	s.logSend(&req)

	sendCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	type outcome struct {
		res *connection.SendResult
		err error
	}
	doneCh := make(chan outcome, 1)
	go func() {
		res, err := s.conn.SendMeshPacket(sendCtx, req)
		doneCh <- outcome{res, err}
	}()

	ackTimer := time.NewTimer(s.opts.AckTimeout)
	defer ackTimer.Stop()
	respTimer := time.NewTimer(respTimeout)
	defer respTimer.Stop()

	acked := false
	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()

		case ack := <-ackCh:
			if ack.Decoded != nil {
				routing, err := mesh.DecodeRouting(ack.Decoded.Payload)
				if err == nil && routing.ErrorReason != mesh.RoutingNone {
					return nil, &RoutingError{Reason: routing.ErrorReason}
				}
			}
			acked = true
			if !awaitResponse {
				return &connection.SendResult{Packet: ack}, nil
			}

		case done := <-doneCh:
			if done.err != nil {
				return nil, done.err
			}
			if awaitResponse {
				// Send completion carries the application reply.
				return done.res, nil
			}
			if !req.WantAck {
				return done.res, nil
			}
			// Local handoff done; the acknowledgement is still pending.

		case <-ackTimer.C:
			if req.WantAck && !acked {
				return nil, ErrAckTimeout
			}

		case <-respTimer.C:
			if awaitResponse {
				return nil, ErrResponseTimeout
			}
		}
	}
}

// logSend emits a protocol event for one outbound packet.
func (s *Session) logSend(req *connection.SendRequest) {
	ev := log.NewFrameEvent(s.id, log.DirectionTx, &log.FrameEvent{
		Kind:         "packet",
		Port:         uint32(req.Port),
		To:           req.To,
		Size:         len(req.Payload),
		WantAck:      req.WantAck,
		WantResponse: req.WantResponse,
	})
	ev.Node = req.To
	s.events.Log(ev)
}
