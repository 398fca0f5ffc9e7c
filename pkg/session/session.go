package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meshlink-protocol/meshlink-go/pkg/connection"
	"github.com/meshlink-protocol/meshlink-go/pkg/log"
	"github.com/meshlink-protocol/meshlink-go/pkg/mesh"
	"github.com/meshlink-protocol/meshlink-go/pkg/nodedb"
)

// stopTimeout bounds the teardown triggered by a device reboot notification.
const stopTimeout = 30 * time.Second

// Session maintains a persistent session with one mesh-radio device.
// All methods are safe for concurrent use.
type Session struct {
	conn  connection.Connection
	store *nodedb.Store
	opts  Options

	id     string
	logger *slog.Logger
	events log.Logger

	mu          sync.RWMutex
	running     bool
	ready       chan struct{}
	runCtx      context.Context
	runCancel   context.CancelFunc
	reconnector *connection.Reconnector
	reconnectCh chan bool
	syncWait    chan struct{}

	// gen counts stop calls. The reboot restart uses it to detect a Stop
	// that slipped in between its teardown and its restart.
	gen uint64

	// Serializes config-sync handshakes across the initial sync and the
	// reconnection sequence.
	syncMu sync.Mutex

	// Supervised activities (heartbeat, ingestion, initial sync).
	wg sync.WaitGroup

	// Short-lived background tasks (port listener dispatch).
	bg sync.WaitGroup

	// Serializes the inbound frame stream consumer.
	listenMu sync.Mutex

	streamMu sync.Mutex
	streams  map[string]*streamSub

	portMu        sync.Mutex
	portSeq       uint64
	portListeners map[mesh.PortNum]map[uint64]func(*mesh.MeshPacket)
}

// New creates a session for the given connection. The session owns a fresh
// node store; it is not started.
func New(conn connection.Connection, opts Options) *Session {
	opts = opts.normalized()
	id := uuid.New().String()

	return &Session{
		conn:          conn,
		store:         nodedb.New(),
		opts:          opts,
		id:            id,
		logger:        opts.Logger.With("session_id", id),
		events:        opts.EventLogger,
		streams:       make(map[string]*streamSub),
		portListeners: make(map[mesh.PortNum]map[uint64]func(*mesh.MeshPacket)),
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	return s.id
}

// Store returns the session's node store.
func (s *Session) Store() *nodedb.Store {
	return s.store
}

// IsRunning reports whether the session is started.
func (s *Session) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Ready reports whether the first config-sync handshake has completed since
// the session was started.
func (s *Session) Ready() bool {
	s.mu.RLock()
	ready := s.ready
	s.mu.RUnlock()

	if ready == nil {
		return false
	}
	select {
	case <-ready:
		return true
	default:
		return false
	}
}

// WaitUntilReady blocks until the session is ready or ctx is cancelled.
func (s *Session) WaitUntilReady(ctx context.Context) error {
	s.mu.RLock()
	ready := s.ready
	s.mu.RUnlock()

	if ready == nil {
		return ErrNotRunning
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-ready:
		return nil
	}
}

// Start connects to the device and launches the session's background
// activities. The ctx bounds the initial connect only; the running session
// is bounded by Stop. Returns ErrAlreadyRunning when already started.
func (s *Session) Start(ctx context.Context) error {
	return s.start(ctx, 0)
}

// start begins a run. A non-zero expect aborts silently unless the stop
// generation still matches, which lets the reboot restart yield to a Stop
// that arrived in between.
func (s *Session) start(ctx context.Context, expect uint64) error {
	s.mu.Lock()
	if expect != 0 && s.gen != expect {
		s.mu.Unlock()
		return nil
	}
	if s.running {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	s.running = true
	s.ready = make(chan struct{})
	s.runCtx, s.runCancel = context.WithCancel(context.Background())
	s.reconnector = s.newReconnector()
	s.reconnectCh = make(chan bool, 1)
	runCtx := s.runCtx
	reconnectCh := s.reconnectCh
	s.mu.Unlock()

	if err := s.conn.Connect(ctx); err != nil {
		s.mu.Lock()
		s.running = false
		s.ready = nil
		s.reconnectCh = nil
		s.runCancel()
		s.mu.Unlock()
		return err
	}

	s.logger.Debug("session started")
	s.events.Log(log.NewStateEvent(s.id, log.EntitySession, "stopped", "running", ""))

	s.supervise(runCtx, "ingest", s.ingestLoop)
	s.supervise(runCtx, "heartbeat", s.heartbeatLoop)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.reconnectLoop(runCtx, reconnectCh)
	}()

	// One-shot: run the first config sync; fall back to the full
	// reconnection sequence when it fails.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.initialSync(runCtx)
	}()

	return nil
}

// Stop cancels all background activity, closes stream listeners, and tears
// the connection down. Stopping a session that is not running is a no-op.
// The session can be started again after Stop returns.
func (s *Session) Stop(ctx context.Context) error {
	_, _, err := s.stop(ctx)
	return err
}

// stop tears the run down. It bumps the stop generation whether or not the
// session was running, so a pending reboot restart observes the call.
func (s *Session) stop(ctx context.Context) (bool, uint64, error) {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	if !s.running {
		s.mu.Unlock()
		return false, gen, nil
	}
	s.running = false
	s.ready = nil
	cancel := s.runCancel
	s.runCancel = nil
	s.runCtx = nil
	s.reconnector = nil
	s.reconnectCh = nil
	s.mu.Unlock()

	cancel()
	s.closeStreams()
	s.wg.Wait()
	s.bg.Wait()

	// Best-effort orderly teardown.
	if err := s.conn.SendDisconnect(ctx); err != nil {
		s.logger.Debug("disconnect notification failed", "error", err)
	}
	if err := s.conn.Disconnect(ctx); err != nil {
		s.logger.Debug("disconnect failed", "error", err)
		return true, gen, err
	}

	s.logger.Debug("session stopped")
	s.events.Log(log.NewStateEvent(s.id, log.EntitySession, "running", "stopped", ""))
	return true, gen, nil
}

// newReconnector builds the per-run reconnection state machine. A fresh
// instance is needed every Start because readiness latches once per run.
func (s *Session) newReconnector() *connection.Reconnector {
	delay := connection.NewReconnectDelayWithConfig(connection.DelayConfig{
		Min: s.opts.ReconnectDelayMin,
		Max: s.opts.ReconnectDelayMax,
	})

	r := connection.NewReconnector(s.conn, s.configSync, connection.ReconnectorConfig{
		ReconnectTimeout:  s.opts.ReconnectTimeout,
		ConfigSyncTimeout: s.opts.ConfigSyncTimeout,
		Delay:             delay,
		Logger:            s.logger,
	})
	r.OnStateChange(func(oldState, newState connection.State) {
		s.events.Log(log.NewStateEvent(s.id, log.EntityConnection, oldState.String(), newState.String(), ""))
	})
	r.OnReady(s.markReady)
	return r
}

// configSync runs the config-sync handshake: the store is wholesale replaced
// and the device streams its snapshot through the ingestion loop. The
// handshake is done when the config-complete frame has been ingested, not
// when the request returns, so the store is fully populated on success.
func (s *Session) configSync(ctx context.Context) error {
	s.syncMu.Lock()
	defer s.syncMu.Unlock()

	s.events.Log(log.NewStateEvent(s.id, log.EntityConfigSync, "idle", "syncing", ""))

	done := make(chan struct{})
	s.mu.Lock()
	s.syncWait = done
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		if s.syncWait == done {
			s.syncWait = nil
		}
		s.mu.Unlock()
	}()

	s.store.Reset()

	if err := s.conn.RequestConfig(ctx, s.opts.NoNodes); err != nil {
		s.events.Log(log.NewStateEvent(s.id, log.EntityConfigSync, "syncing", "failed", err.Error()))
		return err
	}

	select {
	case <-done:
	case <-ctx.Done():
		s.events.Log(log.NewStateEvent(s.id, log.EntityConfigSync, "syncing", "failed", ctx.Err().Error()))
		return ctx.Err()
	}

	s.events.Log(log.NewStateEvent(s.id, log.EntityConfigSync, "syncing", "complete", ""))
	return nil
}

// completeSync releases the config-sync waiter, if one is pending.
func (s *Session) completeSync() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.syncWait != nil {
		close(s.syncWait)
		s.syncWait = nil
	}
}

// initialSync performs the first handshake after Start. A failure hands over
// to the reconnection sequence with a forced transport teardown.
func (s *Session) initialSync(ctx context.Context) {
	sctx, cancel := context.WithTimeout(ctx, s.opts.ConfigSyncTimeout)
	err := s.configSync(sctx)
	cancel()

	if err == nil {
		s.markReady()
		return
	}
	if ctx.Err() != nil {
		return
	}

	s.logger.Debug("initial config sync failed, reconnecting", "error", err)
	s.reconnect(ctx, true)
}

// reconnectLoop serializes reconnection sequences requested by the other
// activities, so a stream failure and a heartbeat failure cannot race.
func (s *Session) reconnectLoop(ctx context.Context, requests <-chan bool) {
	for {
		select {
		case <-ctx.Done():
			return
		case force := <-requests:
			s.reconnect(ctx, force)
		}
	}
}

// requestReconnect queues a reconnection sequence without blocking. Requests
// arriving while one is already queued are coalesced.
func (s *Session) requestReconnect(force bool) {
	s.mu.RLock()
	ch := s.reconnectCh
	s.mu.RUnlock()

	if ch == nil {
		return
	}
	select {
	case ch <- force:
	default:
	}
}

// reconnect runs the reconnection sequence on the current run's state
// machine. Returns once the sequence succeeds or ctx is cancelled.
func (s *Session) reconnect(ctx context.Context, force bool) {
	s.mu.RLock()
	r := s.reconnector
	s.mu.RUnlock()

	if r == nil {
		return
	}
	if err := r.Run(ctx, force); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Debug("reconnect aborted", "error", err)
	}
}

// markReady latches readiness for the current run.
func (s *Session) markReady() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready == nil {
		return
	}
	select {
	case <-s.ready:
	default:
		close(s.ready)
		s.logger.Info("session ready")
	}
}

// handleReboot restarts the session in the background when the device
// announces a reboot. The device drops all session state across a reboot, so
// a full stop/start cycle re-establishes it.
func (s *Session) handleReboot() {
	s.logger.Warn("device rebooted, restarting session")

	// Deliberately untracked: Stop waits for tracked tasks, and this one
	// calls Stop itself. The generation check keeps the restart from
	// resurrecting a session the user stopped in the meantime.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()

		stopped, gen, err := s.stop(ctx)
		if err != nil {
			s.logger.Debug("stop after reboot failed", "error", err)
		}
		if !stopped {
			return
		}
		if err := s.start(ctx, gen); err != nil && !errors.Is(err, ErrAlreadyRunning) {
			s.logger.Warn("restart after reboot failed", "error", err)
		}
	}()
}

// ConnectedNodeInfo returns the local device identity, or nil until the
// session is ready.
func (s *Session) ConnectedNodeInfo() *mesh.MyNodeInfo {
	if !s.Ready() {
		return nil
	}
	return s.store.MyInfo()
}

// ConnectedNodeMetadata returns the local device metadata, or nil until the
// session is ready.
func (s *Session) ConnectedNodeMetadata() *mesh.DeviceMetadata {
	if !s.Ready() {
		return nil
	}
	return s.store.Metadata()
}

// ConnectedNode returns the local device's node record.
func (s *Session) ConnectedNode() (nodedb.MeshNode, bool) {
	if !s.Ready() {
		return nodedb.MeshNode{}, false
	}
	num, ok := s.store.MyNodeNum()
	if !ok {
		return nodedb.MeshNode{}, false
	}
	if n, ok := s.store.FindNode(num); ok {
		return n, true
	}
	return nodedb.StubNode(num), true
}

// NodeQuery selects a node by exactly one criterion.
type NodeQuery struct {
	Num       *uint32
	UserID    string
	ShortName string
	LongName  string
}

// FindNode looks a node up in the store. A query by number always succeeds:
// unknown numbers yield a deterministic stub identity.
func (s *Session) FindNode(q NodeQuery) (nodedb.MeshNode, bool) {
	switch {
	case q.Num != nil:
		if n, ok := s.store.FindNode(*q.Num); ok {
			return n, true
		}
		return nodedb.StubNode(*q.Num), true
	case q.UserID != "":
		return s.store.FindNodeByUserID(q.UserID)
	case q.ShortName != "":
		return s.store.FindNodeByShortName(q.ShortName)
	case q.LongName != "":
		return s.store.FindNodeByLongName(q.LongName)
	default:
		return nodedb.MeshNode{}, false
	}
}

// FindChannel looks a channel up by its exact name. Disabled channels are
// never returned.
func (s *Session) FindChannel(name string) (nodedb.MeshChannel, bool) {
	return s.store.ChannelByName(name)
}
