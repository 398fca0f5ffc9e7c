package meshlink_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshlink-protocol/meshlink-go/internal/testharness/mock"
	"github.com/meshlink-protocol/meshlink-go/pkg/mesh"
	"github.com/meshlink-protocol/meshlink-go/pkg/session"
)

func startSession(t *testing.T, d *mock.Device) *session.Session {
	t.Helper()

	s := session.New(d.Connection(), session.Options{
		ReconnectTimeout:  2 * time.Second,
		ConfigSyncTimeout: 2 * time.Second,
		ReconnectDelayMin: 10 * time.Millisecond,
		ReconnectDelayMax: 50 * time.Millisecond,
		RestartCooldown:   10 * time.Millisecond,
	})

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, s.Start(ctx))
	t.Cleanup(func() {
		stopCtx, stopCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer stopCancel()
		s.Stop(stopCtx)
	})

	readyCtx, readyCancel := context.WithTimeout(ctx, 5*time.Second)
	defer readyCancel()
	require.NoError(t, s.WaitUntilReady(readyCtx))
	return s
}

func addPeer(d *mock.Device, num uint32, short string) {
	d.AddNode(&mesh.NodeInfo{
		Num: num,
		User: &mesh.User{
			ID:        fmt.Sprintf("!%08x", num),
			ShortName: short,
			LongName:  "Peer " + short,
		},
		SNR: 7.25,
	})
}

// TestE2E_SessionLifecycle runs a full startup against a simulated radio and
// checks the synced state.
func TestE2E_SessionLifecycle(t *testing.T) {
	d := mock.NewDevice(0x42)
	addPeer(d, 0x43, "P1")
	addPeer(d, 0x44, "P2")

	s := startSession(t, d)

	assert.True(t, s.IsRunning())
	assert.True(t, s.Ready())

	node, ok := s.ConnectedNode()
	require.True(t, ok)
	assert.Equal(t, uint32(0x42), node.ID)
	assert.Equal(t, "!00000042", node.UserID)
	assert.Equal(t, "SIM", node.ShortName)

	info := s.ConnectedNodeInfo()
	require.NotNil(t, info)
	assert.Equal(t, uint32(0x42), info.MyNodeNum)

	// Local node plus two peers.
	assert.Equal(t, 3, s.Store().Len())

	ch, ok := s.FindChannel("LongFast")
	require.True(t, ok)
	assert.Equal(t, int32(0), ch.Index)

	cfg := s.Store().LocalConfig()
	require.NotNil(t, cfg.LoRa)
	assert.True(t, cfg.LoRa.TxEnabled)

	require.NoError(t, s.Stop(context.Background()))
	assert.False(t, s.IsRunning())
	assert.False(t, s.Ready())
}

// TestE2E_TextMessaging exercises both directions: an inbound text reaches a
// port listener, and an outbound text reaches the radio.
func TestE2E_TextMessaging(t *testing.T) {
	d := mock.NewDevice(0x42)
	addPeer(d, 0x43, "P1")
	s := startSession(t, d)

	received := make(chan string, 1)
	remove := s.AddPacketAppListener(mesh.PortTextMessage, func(p *mesh.MeshPacket) {
		received <- string(p.Decoded.Payload)
	})
	defer remove()

	d.DeliverText(0x43, "hello from the mesh")
	select {
	case text := <-received:
		assert.Equal(t, "hello from the mesh", text)
	case <-time.After(2 * time.Second):
		t.Fatal("inbound text not dispatched")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, s.SendTextMessage(ctx, session.TextMessage{
		Text:     "ack please",
		ToUserID: "!00000043",
		WantAck:  true,
	}))

	require.Eventually(t, func() bool {
		return len(d.TextMessages) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "ack please", d.TextMessages[0])
}

// TestE2E_RebootRecovery checks that a reboot announcement tears the session
// down and brings it back up with a fresh config sync.
func TestE2E_RebootRecovery(t *testing.T) {
	d := mock.NewDevice(0x42)
	addPeer(d, 0x43, "P1")
	s := startSession(t, d)

	conn := d.Connection()
	require.Equal(t, 1, conn.ConnectCount())

	d.Reboot()

	require.Eventually(t, func() bool {
		return conn.ConnectCount() >= 2 && s.Ready()
	}, 5*time.Second, 20*time.Millisecond)

	// The store was rebuilt from the new config dump.
	node, ok := s.FindNode(session.NodeQuery{ShortName: "P1"})
	require.True(t, ok)
	assert.Equal(t, uint32(0x43), node.ID)
}

// TestE2E_AdminAndTelemetry runs the request/response paths end to end.
func TestE2E_AdminAndTelemetry(t *testing.T) {
	d := mock.NewDevice(0x42)
	s := startSession(t, d)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	lora, err := s.RequestLoRaConfig(ctx, 0x42)
	require.NoError(t, err)
	assert.Equal(t, uint8(1), lora.Region)
	assert.True(t, lora.UsePreset)

	status, err := s.RequestConnectionStatus(ctx)
	require.NoError(t, err)
	require.NotNil(t, status.Serial)
	assert.True(t, status.Serial.IsConnected)

	now := time.Now()
	require.NoError(t, s.SendTime(ctx, now))
	require.Eventually(t, func() bool {
		return len(d.ClockSets) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, uint32(now.Unix()), d.ClockSets[0])

	tel, err := s.RequestTelemetry(ctx, 0x42, session.TelemetryDevice)
	require.NoError(t, err)
	require.NotNil(t, tel.DeviceMetrics)
	require.NotNil(t, tel.DeviceMetrics.BatteryLevel)
	assert.Equal(t, uint32(100), *tel.DeviceMetrics.BatteryLevel)
}

// TestE2E_LateNodeAnnouncement checks that a node announced after the config
// sync reaches both the stream API and the lookup API.
func TestE2E_LateNodeAnnouncement(t *testing.T) {
	d := mock.NewDevice(0x42)
	s := startSession(t, d)

	stream := s.NodeInfoStream(8)
	defer s.RemoveStream(stream)

	addPeer(d, 0x99, "NEW")

	select {
	case frame := <-stream.Packets():
		require.NotNil(t, frame.NodeInfo)
		assert.Equal(t, uint32(0x99), frame.NodeInfo.Num)
	case <-time.After(2 * time.Second):
		t.Fatal("node announcement not streamed")
	}

	require.Eventually(t, func() bool {
		_, ok := s.FindNode(session.NodeQuery{ShortName: "NEW"})
		return ok
	}, 2*time.Second, 10*time.Millisecond)
}
