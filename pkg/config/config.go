package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/meshlink-protocol/meshlink-go/pkg/session"
)

// Config errors.
var (
	ErrInvalidLogLevel = errors.New("invalid log level")
	ErrInvalidDelay    = errors.New("reconnect delay minimum exceeds maximum")
)

// Config is the on-disk configuration for a meshlink client.
type Config struct {
	Device  DeviceConfig  `yaml:"device"`
	Session SessionConfig `yaml:"session"`
	Log     LogConfig     `yaml:"log"`
}

// DeviceConfig selects the radio to connect to.
type DeviceConfig struct {
	// Address is the radio's TCP endpoint (host:port). Empty with Discover
	// set means pick the first radio found on the local network.
	Address string `yaml:"address,omitempty"`

	// Discover enables mDNS lookup when no address is configured.
	Discover bool `yaml:"discover,omitempty"`
}

// SessionConfig holds session timing knobs. Zero values take the session
// package defaults.
type SessionConfig struct {
	HeartbeatInterval Duration `yaml:"heartbeat_interval,omitempty"`
	AckTimeout        Duration `yaml:"ack_timeout,omitempty"`
	ResponseTimeout   Duration `yaml:"response_timeout,omitempty"`
	ReconnectTimeout  Duration `yaml:"reconnect_timeout,omitempty"`
	ConfigSyncTimeout Duration `yaml:"config_sync_timeout,omitempty"`
	ReconnectDelayMin Duration `yaml:"reconnect_delay_min,omitempty"`
	ReconnectDelayMax Duration `yaml:"reconnect_delay_max,omitempty"`

	// NoNodes skips the node database replay during config sync.
	NoNodes bool `yaml:"no_nodes,omitempty"`
}

// LogConfig controls operational and protocol logging.
type LogConfig struct {
	// Level is the slog level: debug, info, warn or error.
	Level string `yaml:"level,omitempty"`

	// ProtocolFile, when set, captures CBOR protocol events to this path.
	ProtocolFile string `yaml:"protocol_file,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{Discover: true},
		Log:    LogConfig{Level: "info"},
	}
}

// DefaultPath returns the default config file path: ~/.meshlink/config.yaml
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".meshlink", "config.yaml")
	}
	return filepath.Join(home, ".meshlink", "config.yaml")
}

// Load reads the configuration from a YAML file. A missing file is not an
// error; defaults are returned.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for inconsistencies.
func (c *Config) Validate() error {
	if _, err := c.Log.slogLevel(); err != nil {
		return err
	}
	minDelay := c.Session.ReconnectDelayMin
	maxDelay := c.Session.ReconnectDelayMax
	if minDelay > 0 && maxDelay > 0 && minDelay > maxDelay {
		return fmt.Errorf("%w: %s > %s", ErrInvalidDelay, minDelay, maxDelay)
	}
	return nil
}

// SessionOptions maps the file configuration to session options. Logging
// destinations are left for the caller to wire.
func (c *Config) SessionOptions() session.Options {
	s := c.Session
	return session.Options{
		HeartbeatInterval: time.Duration(s.HeartbeatInterval),
		AckTimeout:        time.Duration(s.AckTimeout),
		ResponseTimeout:   time.Duration(s.ResponseTimeout),
		ReconnectTimeout:  time.Duration(s.ReconnectTimeout),
		ConfigSyncTimeout: time.Duration(s.ConfigSyncTimeout),
		ReconnectDelayMin: time.Duration(s.ReconnectDelayMin),
		ReconnectDelayMax: time.Duration(s.ReconnectDelayMax),
		NoNodes:           s.NoNodes,
	}
}

// SlogLevel returns the configured operational log level.
func (c *Config) SlogLevel() (slog.Level, error) {
	return c.Log.slogLevel()
}

func (lc LogConfig) slogLevel() (slog.Level, error) {
	switch lc.Level {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, lc.Level)
	}
}
