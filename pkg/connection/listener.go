package connection

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/meshlink-protocol/meshlink-go/pkg/mesh"
)

// DefaultListenerBuffer is the default queue depth of a stream listener.
const DefaultListenerBuffer = 64

// PacketStreamListener is a queue-backed subscription to every inbound frame.
// The producer never blocks: when the queue is full the frame is dropped for
// this listener and counted.
type PacketStreamListener struct {
	id string

	mu     sync.Mutex
	ch     chan *mesh.FromRadio
	closed bool

	dropped atomic.Uint64
}

// NewPacketStreamListener creates a listener with the given queue depth.
// A depth of zero or less uses DefaultListenerBuffer.
func NewPacketStreamListener(buffer int) *PacketStreamListener {
	if buffer <= 0 {
		buffer = DefaultListenerBuffer
	}
	return &PacketStreamListener{
		id: uuid.New().String(),
		ch: make(chan *mesh.FromRadio, buffer),
	}
}

// ID returns the listener's unique identifier.
func (l *PacketStreamListener) ID() string {
	return l.id
}

// Notify enqueues a frame for this listener. Never blocks; a frame that does
// not fit is dropped and counted.
func (l *PacketStreamListener) Notify(frame *mesh.FromRadio) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	select {
	case l.ch <- frame:
	default:
		l.dropped.Add(1)
	}
}

// Packets returns the channel of queued frames. The channel is closed when
// the listener is closed.
func (l *PacketStreamListener) Packets() <-chan *mesh.FromRadio {
	return l.ch
}

// Dropped returns the number of frames dropped due to a full queue.
func (l *PacketStreamListener) Dropped() uint64 {
	return l.dropped.Load()
}

// Close removes the listener. Idempotent.
func (l *PacketStreamListener) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true
	close(l.ch)
}
