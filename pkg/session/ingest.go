package session

import (
	"context"

	"github.com/meshlink-protocol/meshlink-go/pkg/log"
	"github.com/meshlink-protocol/meshlink-go/pkg/mesh"
	"github.com/meshlink-protocol/meshlink-go/pkg/version"
)

// ingestLoop drains the inbound frame stream. Exactly one consumer runs at a
// time; the listen mutex guards against overlap when the supervisor restarts
// the loop. A transport failure queues a reconnection sequence before the
// loop returns; it must not run the sequence itself, because the config-sync
// handshake needs this loop back on the stream to complete.
func (s *Session) ingestLoop(ctx context.Context) error {
	s.listenMu.Lock()
	defer s.listenMu.Unlock()

	stream, err := s.conn.Listen(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.requestReconnect(false)
		}
		return err
	}
	defer stream.Close()

	for {
		frame, err := stream.Next(ctx)
		if err != nil {
			if ctx.Err() == nil {
				s.requestReconnect(false)
			}
			return err
		}
		s.handleFrame(frame)
	}
}

// handleFrame applies one inbound frame: store update first, then fan-out to
// stream listeners, then port listener dispatch.
func (s *Session) handleFrame(frame *mesh.FromRadio) {
	s.logFrame(frame)

	switch {
	case frame.Packet != nil:
		s.handlePacket(frame.Packet)
	case frame.MyInfo != nil:
		s.store.SetMyInfo(frame.MyInfo)
	case frame.NodeInfo != nil:
		if err := s.store.MergeNodeInfo(frame.NodeInfo); err != nil {
			s.logger.Debug("node info rejected", "error", err)
		}
	case frame.Config != nil:
		s.store.MergeConfig(frame.Config)
	case frame.ModuleConfig != nil:
		s.store.MergeModuleConfig(frame.ModuleConfig)
	case frame.Channel != nil:
		s.store.AppendChannel(frame.Channel)
	case frame.QueueStatus != nil:
		s.store.SetQueueStatus(frame.QueueStatus)
	case frame.Metadata != nil:
		s.store.SetMetadata(frame.Metadata)
		if fw := frame.Metadata.FirmwareVersion; fw != "" && !version.Supported(fw) {
			s.logger.Warn("radio firmware is older than the supported minimum",
				"firmware", fw, "min_supported", version.MinSupported)
		}
	case frame.LogRecord != nil:
		s.logger.Debug("device log",
			"source", frame.LogRecord.Source,
			"message", frame.LogRecord.Message)
	case frame.Rebooted:
		s.handleReboot()
	case frame.ConfigCompleteID != 0:
		s.completeSync()
	}

	s.notifyStreams(frame)
}

// handlePacket updates the node store from mesh traffic and dispatches the
// payload to registered port listeners.
func (s *Session) handlePacket(p *mesh.MeshPacket) {
	if p.From != 0 && p.From != mesh.BroadcastNum {
		info := &mesh.NodeInfo{
			Num:       p.From,
			SNR:       p.RxSNR,
			LastHeard: p.RxTime,
			Channel:   p.Channel,
		}
		if err := s.store.MergeNodeInfo(info); err != nil {
			s.logger.Debug("packet source rejected", "error", err)
		}
	}

	if p.Decoded == nil {
		return
	}

	msg, err := mesh.DecodeAppPayload(p.Decoded.Port, p.Decoded.Payload)
	if err != nil {
		// Undecodable payloads do not reach port listeners.
		s.logger.Debug("payload dropped",
			"port", p.Decoded.Port, "from", p.From, "error", err)
		return
	}

	switch m := msg.(type) {
	case *mesh.User:
		_ = s.store.MergeNodeInfo(&mesh.NodeInfo{Num: p.From, User: m})
	case *mesh.Position:
		_ = s.store.MergeNodeInfo(&mesh.NodeInfo{Num: p.From, Position: m})
	case *mesh.Telemetry:
		s.store.MergeTelemetry(p.From, m)
	}

	s.dispatchPort(p)
}

// dispatchPort invokes the listeners registered for the packet's port. Each
// invocation runs in its own goroutine; ordering across packets is not
// guaranteed.
func (s *Session) dispatchPort(p *mesh.MeshPacket) {
	s.portMu.Lock()
	listeners := s.portListeners[p.Decoded.Port]
	fns := make([]func(*mesh.MeshPacket), 0, len(listeners))
	for _, fn := range listeners {
		fns = append(fns, fn)
	}
	s.portMu.Unlock()

	for _, fn := range fns {
		s.bg.Add(1)
		go func(fn func(*mesh.MeshPacket)) {
			defer s.bg.Done()
			fn(p)
		}(fn)
	}
}

// logFrame emits a protocol event for one inbound frame.
func (s *Session) logFrame(frame *mesh.FromRadio) {
	fe := &log.FrameEvent{Kind: frameKind(frame)}
	var node uint32

	if p := frame.Packet; p != nil {
		fe.PacketID = p.ID
		fe.From = p.From
		fe.To = p.To
		fe.WantAck = p.WantAck
		node = p.From
		if p.Decoded != nil {
			fe.Port = uint32(p.Decoded.Port)
			fe.Size = len(p.Decoded.Payload)
			fe.WantResponse = p.Decoded.WantResponse
		}
	}
	if frame.NodeInfo != nil {
		node = frame.NodeInfo.Num
	}

	ev := log.NewFrameEvent(s.id, log.DirectionRx, fe)
	ev.Node = node
	s.events.Log(ev)
}

// frameKind names the populated variant of a frame.
func frameKind(frame *mesh.FromRadio) string {
	switch {
	case frame.Packet != nil:
		return "packet"
	case frame.MyInfo != nil:
		return "my_info"
	case frame.NodeInfo != nil:
		return "node_info"
	case frame.Config != nil:
		return "config"
	case frame.ModuleConfig != nil:
		return "module_config"
	case frame.Channel != nil:
		return "channel"
	case frame.QueueStatus != nil:
		return "queue_status"
	case frame.Metadata != nil:
		return "metadata"
	case frame.LogRecord != nil:
		return "log_record"
	case frame.Rebooted:
		return "rebooted"
	case frame.ConfigCompleteID != 0:
		return "config_complete"
	default:
		return "empty"
	}
}
