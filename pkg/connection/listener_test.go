package connection

import (
	"testing"

	"github.com/meshlink-protocol/meshlink-go/pkg/mesh"
)

func TestListenerDelivers(t *testing.T) {
	l := NewPacketStreamListener(4)
	defer l.Close()

	frame := &mesh.FromRadio{Rebooted: true}
	l.Notify(frame)

	got := <-l.Packets()
	if got != frame {
		t.Error("delivered frame is not the notified frame")
	}
}

func TestListenerDropsWhenFull(t *testing.T) {
	l := NewPacketStreamListener(2)
	defer l.Close()

	for i := 0; i < 5; i++ {
		l.Notify(&mesh.FromRadio{Rebooted: true})
	}

	// Two fit, three dropped; the producer never blocked.
	if got := l.Dropped(); got != 3 {
		t.Errorf("dropped: got %d, want 3", got)
	}
	if got := len(l.Packets()); got != 2 {
		t.Errorf("queued: got %d, want 2", got)
	}
}

func TestListenerDefaultBuffer(t *testing.T) {
	l := NewPacketStreamListener(0)
	defer l.Close()

	for i := 0; i < DefaultListenerBuffer; i++ {
		l.Notify(&mesh.FromRadio{Rebooted: true})
	}
	if got := l.Dropped(); got != 0 {
		t.Errorf("dropped within default buffer: got %d, want 0", got)
	}

	l.Notify(&mesh.FromRadio{Rebooted: true})
	if got := l.Dropped(); got != 1 {
		t.Errorf("dropped past default buffer: got %d, want 1", got)
	}
}

func TestListenerCloseIdempotent(t *testing.T) {
	l := NewPacketStreamListener(1)
	l.Close()
	l.Close() // must not panic

	// Notify after close is a silent no-op.
	l.Notify(&mesh.FromRadio{Rebooted: true})

	if _, ok := <-l.Packets(); ok {
		t.Error("closed listener delivered a frame")
	}
}

func TestListenerIDsUnique(t *testing.T) {
	a := NewPacketStreamListener(1)
	b := NewPacketStreamListener(1)
	defer a.Close()
	defer b.Close()

	if a.ID() == b.ID() {
		t.Error("listener IDs collide")
	}
}
