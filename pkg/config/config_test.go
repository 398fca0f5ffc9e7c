package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.True(t, cfg.Device.Discover)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
device:
  address: 192.168.1.50:4403
session:
  heartbeat_interval: 5m
  ack_timeout: 10s
  reconnect_delay_min: 2s
  reconnect_delay_max: 20s
  no_nodes: true
log:
  level: debug
  protocol_file: /tmp/events.meshlog
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "192.168.1.50:4403", cfg.Device.Address)

	opts := cfg.SessionOptions()
	assert.Equal(t, 5*time.Minute, opts.HeartbeatInterval)
	assert.Equal(t, 10*time.Second, opts.AckTimeout)
	assert.Equal(t, 2*time.Second, opts.ReconnectDelayMin)
	assert.Equal(t, 20*time.Second, opts.ReconnectDelayMax)
	assert.True(t, opts.NoNodes)
	// Unset timings stay zero so the session applies its own defaults.
	assert.Zero(t, opts.ResponseTimeout)

	level, err := cfg.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestDurationBareSeconds(t *testing.T) {
	path := writeConfig(t, `
session:
  heartbeat_interval: 600
  ack_timeout: 1.5
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 600*time.Second, time.Duration(cfg.Session.HeartbeatInterval))
	assert.Equal(t, 1500*time.Millisecond, time.Duration(cfg.Session.AckTimeout))
}

func TestDurationInvalid(t *testing.T) {
	path := writeConfig(t, "session:\n  ack_timeout: soon\n")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateLogLevel(t *testing.T) {
	path := writeConfig(t, "log:\n  level: loud\n")
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidLogLevel)
}

func TestValidateDelayBounds(t *testing.T) {
	path := writeConfig(t, `
session:
  reconnect_delay_min: 30s
  reconnect_delay_max: 5s
`)
	_, err := Load(path)
	assert.ErrorIs(t, err, ErrInvalidDelay)
}

func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "device: [not\n")
	_, err := Load(path)
	assert.Error(t, err)
}
