package session

import (
	"context"

	"github.com/meshlink-protocol/meshlink-go/pkg/log"
)

// heartbeatLoop keeps the link warm. Before the first config sync completes
// only a lightweight keep-alive goes out; once ready, a correlated status
// request is used instead so that a dead link is actually detected. A failed
// beat hands over to a forced reconnect.
func (s *Session) heartbeatLoop(ctx context.Context) error {
	for {
		if !sleepCtx(ctx, s.opts.HeartbeatInterval) {
			return ctx.Err()
		}

		var err error
		if s.Ready() {
			_, err = s.RequestConnectionStatus(ctx)
		} else {
			err = s.conn.SendHeartbeat(ctx)
			s.events.Log(log.NewControlEvent(s.id, log.DirectionTx, "heartbeat"))
		}

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Debug("heartbeat failed, reconnecting", "error", err)
			s.events.Log(log.NewErrorEvent(s.id, log.LayerSession, err))
			s.reconnect(ctx, true)
		}
	}
}
