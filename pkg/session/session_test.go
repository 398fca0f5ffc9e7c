package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshlink-protocol/meshlink-go/internal/testharness/mock"
	"github.com/meshlink-protocol/meshlink-go/pkg/connection"
	"github.com/meshlink-protocol/meshlink-go/pkg/mesh"
)

// testOptions returns options with timeouts short enough for tests.
func testOptions() Options {
	return Options{
		HeartbeatInterval: time.Hour,
		AckTimeout:        time.Second,
		ResponseTimeout:   2 * time.Second,
		ReconnectTimeout:  time.Second,
		ConfigSyncTimeout: 2 * time.Second,
		ReconnectDelayMin: 10 * time.Millisecond,
		ReconnectDelayMax: 20 * time.Millisecond,
		RestartCooldown:   10 * time.Millisecond,
	}
}

// startSession starts a session against a simulated device and waits until
// the first config sync completes.
func startSession(t *testing.T, d *mock.Device) *Session {
	t.Helper()

	s := New(d.Connection(), testOptions())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, s.Start(ctx))
	t.Cleanup(func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		_ = s.Stop(stopCtx)
	})

	require.NoError(t, s.WaitUntilReady(ctx))
	return s
}

func TestStartStopLifecycle(t *testing.T) {
	d := mock.NewDevice(0xDEADBEEF)
	conn := d.Connection()
	s := New(conn, testOptions())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, s.Start(ctx))
	assert.True(t, s.IsRunning())

	// A second Start must be rejected.
	assert.ErrorIs(t, s.Start(ctx), ErrAlreadyRunning)

	require.NoError(t, s.WaitUntilReady(ctx))
	assert.True(t, s.Ready())

	require.NoError(t, s.Stop(ctx))
	assert.False(t, s.IsRunning())
	assert.False(t, s.Ready())
	assert.Equal(t, 1, conn.DisconnectCalls)
	assert.Equal(t, 1, conn.DisconnectNotices)

	// Stopping again is a no-op.
	require.NoError(t, s.Stop(ctx))
	assert.Equal(t, 1, conn.DisconnectCalls)
}

func TestStopWhenNotRunningIsNoOp(t *testing.T) {
	conn := mock.NewConnection()
	s := New(conn, testOptions())

	require.NoError(t, s.Stop(context.Background()))
	assert.Zero(t, conn.DisconnectCalls)
	assert.Zero(t, conn.DisconnectNotices)
}

func TestRestartAfterStop(t *testing.T) {
	d := mock.NewDevice(0x11)
	s := New(d.Connection(), testOptions())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.WaitUntilReady(ctx))
	require.NoError(t, s.Stop(ctx))

	// A cleanly stopped session starts again and becomes ready again.
	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.WaitUntilReady(ctx))
	assert.True(t, s.Ready())
	require.NoError(t, s.Stop(ctx))
}

func TestStartConnectFailure(t *testing.T) {
	conn := mock.NewConnection()
	conn.ConnectErr = mock.ErrScripted
	s := New(conn, testOptions())

	err := s.Start(context.Background())
	assert.ErrorIs(t, err, mock.ErrScripted)
	assert.False(t, s.IsRunning())

	// The failed Start leaves the session startable.
	conn.ConnectErr = nil
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.Stop(ctx))
}

func TestWaitUntilReadyBeforeStart(t *testing.T) {
	s := New(mock.NewConnection(), testOptions())
	assert.ErrorIs(t, s.WaitUntilReady(context.Background()), ErrNotRunning)
}

func TestConnectedGettersNilUntilReady(t *testing.T) {
	d := mock.NewDevice(0x22)
	s := New(d.Connection(), testOptions())

	assert.Nil(t, s.ConnectedNodeInfo())
	assert.Nil(t, s.ConnectedNodeMetadata())
	_, ok := s.ConnectedNode()
	assert.False(t, ok)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Start(ctx))
	defer s.Stop(ctx)
	require.NoError(t, s.WaitUntilReady(ctx))

	info := s.ConnectedNodeInfo()
	require.NotNil(t, info)
	assert.Equal(t, uint32(0x22), info.MyNodeNum)
	assert.NotNil(t, s.ConnectedNodeMetadata())

	node, ok := s.ConnectedNode()
	require.True(t, ok)
	assert.Equal(t, uint32(0x22), node.ID)
}

func TestConfigSyncPopulatesStore(t *testing.T) {
	d := mock.NewDevice(0x33)
	d.Nodes = append(d.Nodes, &mesh.NodeInfo{
		Num:  0x99,
		User: &mesh.User{ID: "!00000099", ShortName: "PEER", LongName: "Peer Node"},
	})
	d.AddNode(&mesh.NodeInfo{Num: 0xAA, User: &mesh.User{ID: "!000000aa", ShortName: "AAAA"}})

	s := startSession(t, d)

	num, ok := s.Store().MyNodeNum()
	require.True(t, ok)
	assert.Equal(t, uint32(0x33), num)

	_, ok = s.Store().ChannelByName("LongFast")
	assert.True(t, ok)

	peer, ok := s.Store().FindNodeByUserID("!000000aa")
	require.True(t, ok)
	assert.Equal(t, uint32(0xAA), peer.ID)
}

func TestFindNodeStubFallback(t *testing.T) {
	s := New(mock.NewConnection(), testOptions())

	num := uint32(0xAABBCCDD)
	node, ok := s.FindNode(NodeQuery{Num: &num})
	require.True(t, ok)
	assert.Equal(t, "!aabbccdd", node.UserID)
	assert.Equal(t, "ccdd", node.ShortName)
	assert.Equal(t, "Meshlink ccdd", node.LongName)

	// Queries by identity do not fabricate nodes.
	_, ok = s.FindNode(NodeQuery{UserID: "!11223344"})
	assert.False(t, ok)

	// An empty query matches nothing.
	_, ok = s.FindNode(NodeQuery{})
	assert.False(t, ok)
}

func TestRebootRestartsSession(t *testing.T) {
	d := mock.NewDevice(0x44)
	conn := d.Connection()
	s := startSession(t, d)

	d.Reboot()

	require.Eventually(t, func() bool {
		return conn.ConnectCount() >= 2 && s.IsRunning() && s.Ready()
	}, 5*time.Second, 20*time.Millisecond, "session did not restart after reboot")
}

func TestReadyWaitsForConfigDump(t *testing.T) {
	d := mock.NewDevice(0x66)
	conn := d.Connection()
	conn.OmitConfigComplete = true

	s := New(conn, testOptions())
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Start(ctx))
	defer s.Stop(ctx)

	// Without the dump's end marker the handshake never finishes, so the
	// session must not report ready just because the request returned.
	assert.Never(t, s.Ready, 500*time.Millisecond, 20*time.Millisecond)
}

func TestStreamFailureTriggersReconnect(t *testing.T) {
	d := mock.NewDevice(0x77)
	conn := d.Connection()
	s := startSession(t, d)

	// A transport drop mid-stream must escalate to the reconnection
	// sequence, not just a restarted listener.
	conn.PushStreamError(mock.ErrScripted)

	require.Eventually(t, func() bool {
		return conn.ReconnectCount() >= 1
	}, 5*time.Second, 20*time.Millisecond, "stream failure did not trigger reconnect")

	// The sequence re-runs the handshake and the session stays usable.
	require.Eventually(t, func() bool {
		return conn.RequestConfigCount() >= 2 && s.Ready()
	}, 5*time.Second, 20*time.Millisecond)
}

func TestStopDuringRebootRestartStaysStopped(t *testing.T) {
	d := mock.NewDevice(0x88)
	s := startSession(t, d)

	d.Reboot()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Stop(ctx))

	// However the Stop interleaves with the reboot's background restart,
	// the restart must not resurrect a session the user stopped.
	assert.Never(t, s.IsRunning, time.Second, 20*time.Millisecond)
}

func TestHeartbeatFailureTriggersReconnect(t *testing.T) {
	d := mock.NewDevice(0x55)
	conn := d.Connection()

	opts := testOptions()
	opts.HeartbeatInterval = 20 * time.Millisecond
	s := New(conn, opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.Start(ctx))
	defer s.Stop(ctx)
	require.NoError(t, s.WaitUntilReady(ctx))

	// Once ready, beats go through the correlated status request. Making
	// sends fail must escalate to a forced reconnect.
	conn.SetSendFunc(func(ctx context.Context, req connection.SendRequest) (*connection.SendResult, error) {
		return nil, mock.ErrScripted
	})

	require.Eventually(t, func() bool {
		return conn.ReconnectCount() >= 1
	}, 5*time.Second, 20*time.Millisecond, "heartbeat failure did not trigger reconnect")
}
