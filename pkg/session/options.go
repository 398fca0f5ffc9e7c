package session

import (
	"log/slog"
	"time"

	"github.com/meshlink-protocol/meshlink-go/pkg/connection"
	"github.com/meshlink-protocol/meshlink-go/pkg/log"
)

// Default option values.
const (
	// DefaultHeartbeatInterval is the keep-alive period.
	DefaultHeartbeatInterval = 600 * time.Second

	// DefaultAckTimeout bounds the wait for a delivery acknowledgement.
	DefaultAckTimeout = 30 * time.Second

	// DefaultResponseTimeout bounds the wait for an application response.
	DefaultResponseTimeout = 60 * time.Second

	// DefaultRestartCooldown is the pause before a failed supervised
	// activity is retried.
	DefaultRestartCooldown = 5 * time.Second
)

// Options configures a Session. The zero value is usable; unset fields take
// defaults.
type Options struct {
	// HeartbeatInterval is the keep-alive period. Default 600s.
	HeartbeatInterval time.Duration

	// AckTimeout bounds the wait for a delivery acknowledgement.
	// Default 30s.
	AckTimeout time.Duration

	// ResponseTimeout bounds the wait for an application response.
	// Default 60s.
	ResponseTimeout time.Duration

	// ReconnectTimeout bounds one transport reconnect attempt. Default 30s.
	ReconnectTimeout time.Duration

	// ConfigSyncTimeout bounds one config-sync handshake. Default 60s.
	ConfigSyncTimeout time.Duration

	// ReconnectDelayMin/Max bound the randomized retry delay after a hard
	// reconnect failure. Defaults 5s/30s.
	ReconnectDelayMin time.Duration
	ReconnectDelayMax time.Duration

	// RestartCooldown is the pause before a failed supervised activity is
	// retried. Default 5s.
	RestartCooldown time.Duration

	// NoNodes skips the node database portion of the config-sync handshake.
	NoNodes bool

	// Logger receives operational debug output. Nil disables logging.
	Logger *slog.Logger

	// EventLogger captures structured protocol events. Nil disables capture.
	EventLogger log.Logger
}

// normalized returns a copy with defaults applied.
func (o Options) normalized() Options {
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = DefaultHeartbeatInterval
	}
	if o.AckTimeout <= 0 {
		o.AckTimeout = DefaultAckTimeout
	}
	if o.ResponseTimeout <= 0 {
		o.ResponseTimeout = DefaultResponseTimeout
	}
	if o.ReconnectTimeout <= 0 {
		o.ReconnectTimeout = connection.DefaultReconnectTimeout
	}
	if o.ConfigSyncTimeout <= 0 {
		o.ConfigSyncTimeout = connection.DefaultConfigSyncTimeout
	}
	if o.ReconnectDelayMin <= 0 {
		o.ReconnectDelayMin = connection.MinReconnectDelay
	}
	if o.ReconnectDelayMax <= 0 {
		o.ReconnectDelayMax = connection.MaxReconnectDelay
	}
	if o.RestartCooldown <= 0 {
		o.RestartCooldown = DefaultRestartCooldown
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	if o.EventLogger == nil {
		o.EventLogger = log.NoopLogger{}
	}
	return o
}
