package connection

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// Reconnection timeouts.
const (
	// DefaultReconnectTimeout bounds one transport reconnect attempt.
	DefaultReconnectTimeout = 30 * time.Second

	// DefaultConfigSyncTimeout bounds one config-sync handshake.
	DefaultConfigSyncTimeout = 60 * time.Second
)

// State represents the reconnection state.
type State uint8

const (
	// StateIdle indicates no reconnection is in progress.
	StateIdle State = iota

	// StateReconnecting indicates a transport reconnect attempt is in progress.
	StateReconnecting

	// StateConfigSync indicates the config-sync handshake is in progress.
	StateConfigSync

	// StateReady indicates the transport is up and the handshake completed.
	StateReady
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateReconnecting:
		return "RECONNECTING"
	case StateConfigSync:
		return "CONFIG_SYNC"
	case StateReady:
		return "READY"
	default:
		return "UNKNOWN"
	}
}

// SyncFunc runs the config-sync handshake after a successful reconnect.
type SyncFunc func(ctx context.Context) error

// Reconnector supervises a Connection, retrying with randomized delay on
// failure and re-running the config-sync handshake after every reconnect.
// Only one reconnection sequence runs at a time.
type Reconnector struct {
	conn Connection
	sync SyncFunc

	// Serializes reconnection sequences.
	runMu sync.Mutex

	mu    sync.RWMutex
	state State

	delay            *ReconnectDelay
	reconnectTimeout time.Duration
	configTimeout    time.Duration

	logger *slog.Logger

	onStateChange func(oldState, newState State)
	onReady       func()
	readyOnce     sync.Once
}

// ReconnectorConfig configures a Reconnector.
type ReconnectorConfig struct {
	// ReconnectTimeout bounds one transport reconnect attempt.
	// Default: DefaultReconnectTimeout. A timed-out attempt retries
	// immediately with no sleep.
	ReconnectTimeout time.Duration

	// ConfigSyncTimeout bounds one config-sync handshake.
	// Default: DefaultConfigSyncTimeout. A timed-out handshake forces a hard
	// reconnect on the next cycle.
	ConfigSyncTimeout time.Duration

	// Delay draws retry delays after hard failures. Nil uses defaults.
	Delay *ReconnectDelay

	// Logger receives debug output. Nil disables logging.
	Logger *slog.Logger
}

// NewReconnector creates a reconnector for the given connection. The sync
// function is run under ConfigSyncTimeout after every successful reconnect.
func NewReconnector(conn Connection, sync SyncFunc, cfg ReconnectorConfig) *Reconnector {
	if cfg.ReconnectTimeout <= 0 {
		cfg.ReconnectTimeout = DefaultReconnectTimeout
	}
	if cfg.ConfigSyncTimeout <= 0 {
		cfg.ConfigSyncTimeout = DefaultConfigSyncTimeout
	}
	if cfg.Delay == nil {
		cfg.Delay = NewReconnectDelay()
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}

	return &Reconnector{
		conn:             conn,
		sync:             sync,
		state:            StateIdle,
		delay:            cfg.Delay,
		reconnectTimeout: cfg.ReconnectTimeout,
		configTimeout:    cfg.ConfigSyncTimeout,
		logger:           cfg.Logger,
	}
}

// State returns the current reconnection state.
func (r *Reconnector) State() State {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.state
}

// OnStateChange sets a callback for state changes.
func (r *Reconnector) OnStateChange(fn func(oldState, newState State)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onStateChange = fn
}

// OnReady sets a callback invoked the first time a full
// reconnect-plus-handshake cycle succeeds.
func (r *Reconnector) OnReady(fn func()) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onReady = fn
}

// Run executes the reconnection sequence until it succeeds or ctx is
// cancelled. Concurrent calls serialize; the loser observes whatever state
// the winner left behind and runs its own cycle after.
//
// When force is true the first reconnect attempt tears the transport down
// before re-establishing it.
func (r *Reconnector) Run(ctx context.Context, force bool) error {
	r.runMu.Lock()
	defer r.runMu.Unlock()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		r.setState(StateReconnecting)
		r.logger.Debug("starting to reconnect", "force", force)

		cctx, cancel := context.WithTimeout(ctx, r.reconnectTimeout)
		didReconnect, err := r.conn.Reconnect(cctx, force)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, context.DeadlineExceeded) {
				// Transient stall: retry immediately, no sleep.
				r.logger.Debug("reconnect attempt timed out, retrying")
				continue
			}
			r.logger.Debug("reconnect failed", "error", err)
			if serr := r.sleepDelay(ctx); serr != nil {
				return serr
			}
			continue
		}

		if !didReconnect {
			// Transport was already up; nothing to re-sync.
			r.setState(StateReady)
			r.delay.Reset()
			return nil
		}

		r.setState(StateConfigSync)
		r.logger.Debug("reconnect succeeded, requesting config")

		sctx, cancel := context.WithTimeout(ctx, r.configTimeout)
		err = r.sync(sctx)
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if errors.Is(err, context.DeadlineExceeded) {
				// A stuck handshake needs a hard reconnect next time.
				r.logger.Debug("config sync timed out, forcing next reconnect")
				force = true
				continue
			}
			r.logger.Debug("config sync failed", "error", err)
			if serr := r.sleepDelay(ctx); serr != nil {
				return serr
			}
			continue
		}

		r.setState(StateReady)
		r.delay.Reset()
		r.markReady()
		r.logger.Debug("reconnect finished")
		return nil
	}
}

// sleepDelay waits a random backoff delay, aborting on cancellation.
func (r *Reconnector) sleepDelay(ctx context.Context) error {
	delay := r.delay.Next()
	r.logger.Debug("reconnect retrying after delay", "delay", delay)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (r *Reconnector) setState(newState State) {
	r.mu.Lock()
	oldState := r.state
	r.state = newState
	fn := r.onStateChange
	r.mu.Unlock()

	if fn != nil && oldState != newState {
		fn(oldState, newState)
	}
}

func (r *Reconnector) markReady() {
	r.mu.RLock()
	fn := r.onReady
	r.mu.RUnlock()

	if fn != nil {
		r.readyOnce.Do(fn)
	}
}
