package session

import (
	"github.com/meshlink-protocol/meshlink-go/pkg/connection"
	"github.com/meshlink-protocol/meshlink-go/pkg/mesh"
)

// streamKind selects which frames a stream subscription receives.
type streamKind uint8

const (
	streamFromRadio streamKind = iota
	streamPacket
	streamNodeInfo
)

type streamSub struct {
	kind     streamKind
	listener *connection.PacketStreamListener
}

func (sub *streamSub) matches(frame *mesh.FromRadio) bool {
	switch sub.kind {
	case streamPacket:
		return frame.Packet != nil
	case streamNodeInfo:
		return frame.NodeInfo != nil
	default:
		return true
	}
}

// FromRadioStream subscribes to every inbound frame. A buffer of zero or
// less uses the default queue depth. Close the listener, or call
// RemoveStream, when done.
func (s *Session) FromRadioStream(buffer int) *connection.PacketStreamListener {
	return s.addStream(streamFromRadio, buffer)
}

// PacketStream subscribes to frames carrying mesh traffic.
func (s *Session) PacketStream(buffer int) *connection.PacketStreamListener {
	return s.addStream(streamPacket, buffer)
}

// NodeInfoStream subscribes to frames carrying topology records.
func (s *Session) NodeInfoStream(buffer int) *connection.PacketStreamListener {
	return s.addStream(streamNodeInfo, buffer)
}

func (s *Session) addStream(kind streamKind, buffer int) *connection.PacketStreamListener {
	l := connection.NewPacketStreamListener(buffer)

	s.streamMu.Lock()
	s.streams[l.ID()] = &streamSub{kind: kind, listener: l}
	s.streamMu.Unlock()

	return l
}

// RemoveStream unsubscribes and closes a stream listener.
func (s *Session) RemoveStream(l *connection.PacketStreamListener) {
	if l == nil {
		return
	}

	s.streamMu.Lock()
	_, found := s.streams[l.ID()]
	delete(s.streams, l.ID())
	s.streamMu.Unlock()

	if found {
		l.Close()
	}
}

// notifyStreams fans one frame out to every matching stream subscription.
// Slow consumers drop frames rather than stalling ingestion.
func (s *Session) notifyStreams(frame *mesh.FromRadio) {
	s.streamMu.Lock()
	subs := make([]*streamSub, 0, len(s.streams))
	for _, sub := range s.streams {
		subs = append(subs, sub)
	}
	s.streamMu.Unlock()

	for _, sub := range subs {
		if sub.matches(frame) {
			sub.listener.Notify(frame)
		}
	}
}

// closeStreams closes and clears every stream subscription. Called on Stop.
func (s *Session) closeStreams() {
	s.streamMu.Lock()
	subs := s.streams
	s.streams = make(map[string]*streamSub)
	s.streamMu.Unlock()

	for _, sub := range subs {
		sub.listener.Close()
	}
}

// AddPacketAppListener registers a callback for packets on one application
// port. The callback runs on its own goroutine per packet. The returned
// function removes the listener.
func (s *Session) AddPacketAppListener(port mesh.PortNum, fn func(*mesh.MeshPacket)) func() {
	s.portMu.Lock()
	s.portSeq++
	key := s.portSeq
	listeners := s.portListeners[port]
	if listeners == nil {
		listeners = make(map[uint64]func(*mesh.MeshPacket))
		s.portListeners[port] = listeners
	}
	listeners[key] = fn
	s.portMu.Unlock()

	return func() {
		s.portMu.Lock()
		defer s.portMu.Unlock()
		if listeners, ok := s.portListeners[port]; ok {
			delete(listeners, key)
			if len(listeners) == 0 {
				delete(s.portListeners, port)
			}
		}
	}
}
