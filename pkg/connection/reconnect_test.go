package connection_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshlink-protocol/meshlink-go/internal/testharness/mock"
	"github.com/meshlink-protocol/meshlink-go/pkg/connection"
)

func testReconnector(conn connection.Connection, sync connection.SyncFunc) *connection.Reconnector {
	return connection.NewReconnector(conn, sync, connection.ReconnectorConfig{
		ReconnectTimeout:  time.Second,
		ConfigSyncTimeout: time.Second,
		Delay: connection.NewReconnectDelayWithConfig(connection.DelayConfig{
			Min: 5 * time.Millisecond,
			Max: 10 * time.Millisecond,
		}),
	})
}

func TestReconnectorSuccess(t *testing.T) {
	conn := mock.NewConnection()

	synced := 0
	r := testReconnector(conn, func(ctx context.Context) error {
		synced++
		return nil
	})

	ready := false
	r.OnReady(func() { ready = true })

	require.NoError(t, r.Run(context.Background(), false))
	assert.Equal(t, connection.StateReady, r.State())
	assert.Equal(t, 1, synced)
	assert.True(t, ready)
}

func TestReconnectorSkipsSyncWhenAlreadyConnected(t *testing.T) {
	conn := mock.NewConnection()
	conn.DidReconnect = false

	synced := 0
	r := testReconnector(conn, func(ctx context.Context) error {
		synced++
		return nil
	})

	require.NoError(t, r.Run(context.Background(), false))
	assert.Equal(t, connection.StateReady, r.State())
	// No new transport means no handshake to re-run.
	assert.Zero(t, synced)
}

func TestReconnectorRetriesAfterFailure(t *testing.T) {
	conn := mock.NewConnection()
	conn.ReconnectErr = mock.ErrScripted

	go func() {
		time.Sleep(50 * time.Millisecond)
		conn.SetReconnectErr(nil)
	}()

	r := testReconnector(conn, func(ctx context.Context) error { return nil })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.Run(ctx, false))
	assert.GreaterOrEqual(t, conn.ReconnectCount(), 2)
}

func TestReconnectorSyncTimeoutForcesReconnect(t *testing.T) {
	conn := mock.NewConnection()

	calls := 0
	r := connection.NewReconnector(conn, func(ctx context.Context) error {
		calls++
		if calls == 1 {
			// Stall past the handshake deadline.
			<-ctx.Done()
			return ctx.Err()
		}
		return nil
	}, connection.ReconnectorConfig{
		ReconnectTimeout:  time.Second,
		ConfigSyncTimeout: 30 * time.Millisecond,
		Delay: connection.NewReconnectDelayWithConfig(connection.DelayConfig{
			Min: time.Millisecond,
			Max: 2 * time.Millisecond,
		}),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, r.Run(ctx, false))
	assert.Equal(t, 2, calls)
	// The stalled handshake forced a second transport cycle.
	assert.GreaterOrEqual(t, conn.ReconnectCount(), 2)
}

func TestReconnectorCancellation(t *testing.T) {
	conn := mock.NewConnection()
	conn.ReconnectErr = mock.ErrScripted

	r := testReconnector(conn, func(ctx context.Context) error { return nil })

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	err := r.Run(ctx, false)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestReconnectorReadyLatchesOnce(t *testing.T) {
	conn := mock.NewConnection()

	readyCalls := 0
	r := testReconnector(conn, func(ctx context.Context) error { return nil })
	r.OnReady(func() { readyCalls++ })

	require.NoError(t, r.Run(context.Background(), false))
	require.NoError(t, r.Run(context.Background(), true))
	assert.Equal(t, 1, readyCalls)
}

func TestStateStrings(t *testing.T) {
	tests := []struct {
		state connection.State
		want  string
	}{
		{connection.StateIdle, "IDLE"},
		{connection.StateReconnecting, "RECONNECTING"},
		{connection.StateConfigSync, "CONFIG_SYNC"},
		{connection.StateReady, "READY"},
		{connection.State(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}
