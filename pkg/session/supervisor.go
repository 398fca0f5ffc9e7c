package session

import (
	"context"
	"time"

	"github.com/meshlink-protocol/meshlink-go/pkg/log"
)

// supervise runs a session activity in a goroutine, restarting it after a
// cool-down whenever it fails. Cancellation ends the activity immediately;
// any other failure is logged and retried.
func (s *Session) supervise(ctx context.Context, name string, body func(ctx context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		for {
			if ctx.Err() != nil {
				return
			}

			err := body(ctx)
			if ctx.Err() != nil {
				return
			}
			if err != nil {
				s.logger.Warn("session activity failed, restarting",
					"activity", name, "error", err)
				s.events.Log(log.NewErrorEvent(s.id, log.LayerSession, err))
			}

			if !sleepCtx(ctx, s.opts.RestartCooldown) {
				return
			}
		}
	}()
}

// sleepCtx sleeps for d, returning false if ctx is cancelled first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
