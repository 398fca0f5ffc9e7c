package log

import (
	"testing"
	"time"
)

func TestEventEncodeDecodeRoundTrip(t *testing.T) {
	event := Event{
		Timestamp: time.Now().Truncate(time.Millisecond),
		SessionID: "sess-123",
		Direction: DirectionRx,
		Layer:     LayerFrame,
		Category:  CategoryFrame,
		Node:      0x11223344,
		Frame: &FrameEvent{
			Kind:         "packet",
			Port:         1,
			PacketID:     42,
			From:         0x11223344,
			To:           0xFFFFFFFF,
			Size:         17,
			WantAck:      true,
			WantResponse: false,
		},
	}

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.SessionID != event.SessionID {
		t.Errorf("SessionID: got %q, want %q", decoded.SessionID, event.SessionID)
	}
	if decoded.Direction != event.Direction {
		t.Errorf("Direction: got %v, want %v", decoded.Direction, event.Direction)
	}
	if decoded.Node != event.Node {
		t.Errorf("Node: got %d, want %d", decoded.Node, event.Node)
	}
	if decoded.Frame == nil {
		t.Fatal("Frame is nil")
	}
	if decoded.Frame.Kind != "packet" {
		t.Errorf("Frame.Kind: got %q, want %q", decoded.Frame.Kind, "packet")
	}
	if decoded.Frame.To != 0xFFFFFFFF {
		t.Errorf("Frame.To: got %#x, want %#x", decoded.Frame.To, uint32(0xFFFFFFFF))
	}
	if !decoded.Frame.WantAck {
		t.Error("Frame.WantAck lost in round trip")
	}
}

func TestStateChangeEventRoundTrip(t *testing.T) {
	event := NewStateEvent("sess-1", EntityConnection, "idle", "reconnecting", "heartbeat failed")

	data, err := EncodeEvent(event)
	if err != nil {
		t.Fatalf("EncodeEvent failed: %v", err)
	}

	decoded, err := DecodeEvent(data)
	if err != nil {
		t.Fatalf("DecodeEvent failed: %v", err)
	}

	if decoded.Category != CategoryState {
		t.Errorf("Category: got %v, want %v", decoded.Category, CategoryState)
	}
	if decoded.StateChange == nil {
		t.Fatal("StateChange is nil")
	}
	if decoded.StateChange.Entity != EntityConnection {
		t.Errorf("Entity: got %v, want %v", decoded.StateChange.Entity, EntityConnection)
	}
	if decoded.StateChange.NewState != "reconnecting" {
		t.Errorf("NewState: got %q, want %q", decoded.StateChange.NewState, "reconnecting")
	}
	if decoded.StateChange.Reason != "heartbeat failed" {
		t.Errorf("Reason: got %q, want %q", decoded.StateChange.Reason, "heartbeat failed")
	}
}

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		got  string
		want string
	}{
		{DirectionRx.String(), "RX"},
		{DirectionTx.String(), "TX"},
		{DirectionNone.String(), "-"},
		{LayerTransport.String(), "TRANSPORT"},
		{LayerFrame.String(), "FRAME"},
		{LayerSession.String(), "SESSION"},
		{CategoryFrame.String(), "FRAME"},
		{CategoryControl.String(), "CONTROL"},
		{CategoryState.String(), "STATE"},
		{CategoryError.String(), "ERROR"},
		{EntityConnection.String(), "CONNECTION"},
		{EntitySession.String(), "SESSION"},
		{EntityConfigSync.String(), "CONFIG_SYNC"},
		{Direction(99).String(), "UNKNOWN"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}
