package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshlink-protocol/meshlink-go/internal/testharness/mock"
	"github.com/meshlink-protocol/meshlink-go/pkg/mesh"
)

func TestAdminChannelLocalNodeIsZero(t *testing.T) {
	s := New(mock.NewConnection(), testOptions())
	s.Store().SetMyInfo(&mesh.MyNodeInfo{MyNodeNum: 5})
	s.Store().SetMetadata(&mesh.DeviceMetadata{HasPKC: true})

	// Even with PKC available, the local node is administered on channel 0.
	assert.Equal(t, int32(0), s.adminChannel(5))
}

func TestAdminChannelPKC(t *testing.T) {
	s := New(mock.NewConnection(), testOptions())
	s.Store().SetMyInfo(&mesh.MyNodeInfo{MyNodeNum: 5})
	s.Store().SetMetadata(&mesh.DeviceMetadata{HasPKC: true})
	require.NoError(t, s.Store().MergeNodeInfo(&mesh.NodeInfo{Num: 9, HasPKC: true}))

	assert.Equal(t, mesh.PKCChannelIndex, s.adminChannel(9))
}

func TestAdminChannelNamed(t *testing.T) {
	s := New(mock.NewConnection(), testOptions())
	s.Store().SetMyInfo(&mesh.MyNodeInfo{MyNodeNum: 5})
	s.Store().SetMetadata(&mesh.DeviceMetadata{HasPKC: false})
	s.Store().AppendChannel(&mesh.Channel{Index: 0, Role: mesh.ChannelPrimary})
	s.Store().AppendChannel(&mesh.Channel{
		Index:    2,
		Role:     mesh.ChannelSecondary,
		Settings: &mesh.ChannelSettings{Name: "Admin"},
	})

	// Matching is case-insensitive.
	assert.Equal(t, int32(2), s.adminChannel(9))
}

func TestAdminChannelDefaultsToZero(t *testing.T) {
	s := New(mock.NewConnection(), testOptions())
	s.Store().SetMyInfo(&mesh.MyNodeInfo{MyNodeNum: 5})

	assert.Equal(t, int32(0), s.adminChannel(9))
}

func TestRequestConnectionStatus(t *testing.T) {
	d := mock.NewDevice(0x77)
	s := startSession(t, d)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	status, err := s.RequestConnectionStatus(ctx)
	require.NoError(t, err)
	require.NotNil(t, status.Serial)
	assert.True(t, status.Serial.IsConnected)
}

func TestLoRaConfigRoundTrip(t *testing.T) {
	d := mock.NewDevice(0x77)
	s := startSession(t, d)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	cfg, err := s.RequestLoRaConfig(ctx, 0x77)
	require.NoError(t, err)
	assert.True(t, cfg.TxEnabled)

	cfg.TxEnabled = false
	cfg.HopLimit = 7
	require.NoError(t, s.WriteLoRaConfig(ctx, 0x77, cfg))

	got, err := s.RequestLoRaConfig(ctx, 0x77)
	require.NoError(t, err)
	assert.False(t, got.TxEnabled)
	assert.Equal(t, uint8(7), got.HopLimit)
}

func TestSendTime(t *testing.T) {
	d := mock.NewDevice(0x77)
	s := startSession(t, d)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	now := time.Now()
	require.NoError(t, s.SendTime(ctx, now))

	require.Eventually(t, func() bool {
		return len(d.ClockSets) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, uint32(now.Unix()), d.ClockSets[0])
}

func TestRequestTelemetry(t *testing.T) {
	d := mock.NewDevice(0x77)
	s := startSession(t, d)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tel, err := s.RequestTelemetry(ctx, 0x77, TelemetryDevice)
	require.NoError(t, err)
	require.NotNil(t, tel.DeviceMetrics)
	require.NotNil(t, tel.DeviceMetrics.BatteryLevel)
	assert.Equal(t, uint32(100), *tel.DeviceMetrics.BatteryLevel)
}

func TestSendTextMessageBroadcastDefault(t *testing.T) {
	conn := mock.NewConnection()
	s := New(conn, testOptions())

	require.NoError(t, s.SendTextMessage(context.Background(), TextMessage{Text: "hello mesh"}))

	sent := conn.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, mesh.BroadcastNum, sent[0].To)
	assert.Equal(t, mesh.PortTextMessage, sent[0].Port)
	assert.Equal(t, []byte("hello mesh"), sent[0].Payload)
	assert.Nil(t, sent[0].Channel)
}

func TestSendTextMessageUserIDResolution(t *testing.T) {
	conn := mock.NewConnection()
	s := New(conn, testOptions())
	require.NoError(t, s.Store().MergeNodeInfo(&mesh.NodeInfo{
		Num:  0xAB,
		User: &mesh.User{ID: "!000000ab"},
	}))

	require.NoError(t, s.SendTextMessage(context.Background(), TextMessage{
		Text:     "direct",
		ToUserID: "!000000ab",
	}))

	sent := conn.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, uint32(0xAB), sent[0].To)

	// The broadcast address maps to the broadcast node number.
	require.NoError(t, s.SendTextMessage(context.Background(), TextMessage{
		Text:     "everyone",
		ToUserID: mesh.BroadcastAddr,
	}))
	assert.Equal(t, mesh.BroadcastNum, conn.Sent()[1].To)
}

func TestSendTextMessageUnknownUserFailsFast(t *testing.T) {
	conn := mock.NewConnection()
	s := New(conn, testOptions())

	err := s.SendTextMessage(context.Background(), TextMessage{
		Text:     "nope",
		ToUserID: "!11223344",
	})
	assert.ErrorIs(t, err, ErrUnknownDestination)
	// Validation failures never reach the transport.
	assert.Empty(t, conn.Sent())
}

func TestSendTextMessageDisabledChannelFailsFast(t *testing.T) {
	conn := mock.NewConnection()
	s := New(conn, testOptions())
	s.Store().AppendChannel(&mesh.Channel{Index: 0, Role: mesh.ChannelPrimary})
	s.Store().AppendChannel(&mesh.Channel{
		Index:    1,
		Role:     mesh.ChannelDisabled,
		Settings: &mesh.ChannelSettings{Name: "dead"},
	})

	idx := int32(1)
	err := s.SendTextMessage(context.Background(), TextMessage{Text: "x", Channel: &idx})
	assert.ErrorIs(t, err, ErrChannelDisabled)

	err = s.SendTextMessage(context.Background(), TextMessage{Text: "x", ChannelName: "dead"})
	assert.ErrorIs(t, err, ErrChannelDisabled)

	err = s.SendTextMessage(context.Background(), TextMessage{Text: "x", ChannelName: "missing"})
	assert.ErrorIs(t, err, ErrUnknownChannel)

	assert.Empty(t, conn.Sent())
}

func TestSendTextMessageByChannelName(t *testing.T) {
	conn := mock.NewConnection()
	s := New(conn, testOptions())
	s.Store().AppendChannel(&mesh.Channel{Index: 0, Role: mesh.ChannelPrimary})
	// Sparse table slot: the wire index, not the table position, is what
	// goes on the packet.
	s.Store().AppendChannel(&mesh.Channel{
		Index:    3,
		Role:     mesh.ChannelSecondary,
		Settings: &mesh.ChannelSettings{Name: "OffGrid"},
	})

	require.NoError(t, s.SendTextMessage(context.Background(), TextMessage{
		Text:        "chan msg",
		ChannelName: "OffGrid",
	}))

	sent := conn.Sent()
	require.Len(t, sent, 1)
	require.NotNil(t, sent[0].Channel)
	assert.Equal(t, int32(3), *sent[0].Channel)
}

func TestSendTextMessagePriority(t *testing.T) {
	conn := mock.NewConnection()
	s := New(conn, testOptions())

	require.NoError(t, s.SendTextMessage(context.Background(), TextMessage{Text: "plain"}))
	require.NoError(t, s.SendTextMessage(context.Background(), TextMessage{Text: "tracked", WantAck: true}))

	sent := conn.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, mesh.PriorityDefault, sent[0].Priority)
	// Acknowledged messages go out at reliable priority.
	assert.Equal(t, mesh.PriorityReliable, sent[1].Priority)
}

func TestSendTextMessageToDevice(t *testing.T) {
	d := mock.NewDevice(0x88)
	s := startSession(t, d)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	to := uint32(0x88)
	require.NoError(t, s.SendTextMessage(ctx, TextMessage{
		Text:    "ping",
		To:      &to,
		WantAck: true,
	}))

	require.Eventually(t, func() bool {
		return len(d.TextMessages) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "ping", d.TextMessages[0])
}
