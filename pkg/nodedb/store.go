package nodedb

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/meshlink-protocol/meshlink-go/pkg/mesh"
)

// Store errors.
var (
	ErrBroadcastNum = errors.New("broadcast num is not a valid node num")
	ErrNoQuery      = errors.New("must provide a node number, user id, short name or long name")
)

// MeshChannel is the lookup result for a channel query.
type MeshChannel struct {
	Index int32
	Name  string
}

// Store is the in-memory database of known mesh nodes and the local device
// snapshot. Safe for concurrent use.
type Store struct {
	mu sync.RWMutex

	// Node records keyed by node number, with insertion order preserved so
	// identity lookups resolve deterministically.
	nodes map[uint32]*Node
	order []uint32

	// Local device snapshot, replaced wholesale at the start of every
	// config-sync handshake.
	myInfo       *mesh.MyNodeInfo
	metadata     *mesh.DeviceMetadata
	channels     []*mesh.Channel
	queueStatus  *mesh.QueueStatus
	localConfig  mesh.LocalConfig
	moduleConfig mesh.LocalModuleConfig
}

// New creates an empty store.
func New() *Store {
	return &Store{
		nodes: make(map[uint32]*Node),
	}
}

// Reset discards every node record and the local device snapshot. Called at
// the start of a config-sync handshake before the device replays its state.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nodes = make(map[uint32]*Node)
	s.order = nil
	s.myInfo = nil
	s.metadata = nil
	s.channels = nil
	s.queueStatus = nil
	s.localConfig = mesh.LocalConfig{}
	s.moduleConfig = mesh.LocalModuleConfig{}
}

// SetMyInfo replaces the local identity snapshot.
func (s *Store) SetMyInfo(info *mesh.MyNodeInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.myInfo = info
}

// SetMetadata replaces the local metadata snapshot.
func (s *Store) SetMetadata(md *mesh.DeviceMetadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.metadata = md
}

// AppendChannel appends to the ordered channel table. Duplicates are kept;
// order of arrival is authoritative.
func (s *Store) AppendChannel(ch *mesh.Channel) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels = append(s.channels, ch)
}

// SetQueueStatus replaces the outbound queue snapshot.
func (s *Store) SetQueueStatus(qs *mesh.QueueStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queueStatus = qs
}

// MergeConfig merges one config sub-message into the cumulative snapshot.
func (s *Store) MergeConfig(c *mesh.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.localConfig.Merge(c)
}

// MergeModuleConfig merges one module-config sub-message into the snapshot.
func (s *Store) MergeModuleConfig(mc *mesh.ModuleConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moduleConfig.Merge(mc)
}

// MyInfo returns the local identity snapshot, or nil when not yet received.
func (s *Store) MyInfo() *mesh.MyNodeInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.myInfo == nil {
		return nil
	}
	cp := *s.myInfo
	return &cp
}

// MyNodeNum returns the local node number, or false when identity is unknown.
func (s *Store) MyNodeNum() (uint32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.myInfo == nil {
		return 0, false
	}
	return s.myInfo.MyNodeNum, true
}

// Metadata returns the local metadata snapshot, or nil.
func (s *Store) Metadata() *mesh.DeviceMetadata {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.metadata == nil {
		return nil
	}
	cp := *s.metadata
	return &cp
}

// QueueStatus returns the outbound queue snapshot, or nil.
func (s *Store) QueueStatus() *mesh.QueueStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.queueStatus == nil {
		return nil
	}
	cp := *s.queueStatus
	return &cp
}

// LocalConfig returns the cumulative local configuration snapshot.
func (s *Store) LocalConfig() mesh.LocalConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.localConfig
}

// ModuleConfig returns the cumulative module configuration snapshot.
func (s *Store) ModuleConfig() mesh.LocalModuleConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.moduleConfig
}

// Channels returns the ordered channel table.
func (s *Store) Channels() []*mesh.Channel {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*mesh.Channel, len(s.channels))
	copy(out, s.channels)
	return out
}

// channelByIndexLocked finds the entry carrying the given wire index. The
// table position of an entry is not its index: sparse dumps skip disabled
// slots.
func (s *Store) channelByIndexLocked(index int32) *mesh.Channel {
	for _, ch := range s.channels {
		if ch.Index == index {
			return ch
		}
	}
	return nil
}

// ChannelAt looks up a channel by its wire index. Disabled channels are
// never returned.
func (s *Store) ChannelAt(index int) (MeshChannel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ch := s.channelByIndexLocked(int32(index))
	if ch == nil || !ch.Enabled() {
		return MeshChannel{}, false
	}
	return MeshChannel{Index: ch.Index, Name: ch.Name()}, true
}

// ChannelByName looks up the first enabled channel with the given name.
func (s *Store) ChannelByName(name string) (MeshChannel, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ch := range s.channels {
		if ch.Enabled() && ch.Name() == name {
			return MeshChannel{Index: ch.Index, Name: ch.Name()}, true
		}
	}
	return MeshChannel{}, false
}

// AdminChannelIndex returns the wire index of the first enabled channel
// literally named "admin" (case-insensitive), or false.
func (s *Store) AdminChannelIndex() (int32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, ch := range s.channels {
		if ch.Enabled() && strings.EqualFold(ch.Name(), "admin") {
			return ch.Index, true
		}
	}
	return 0, false
}

// ChannelEnabled reports whether the channel with the given wire index
// exists and can carry traffic.
func (s *Store) ChannelEnabled(index int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ch := s.channelByIndexLocked(int32(index))
	return ch != nil && ch.Enabled()
}

// ChannelCount returns the number of channel table entries.
func (s *Store) ChannelCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.channels)
}

// GetOrCreate returns the record for num, creating a stub-identity record on
// first mention. The broadcast number is rejected.
func (s *Store) GetOrCreate(num uint32) (*Node, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreateLocked(num)
}

func (s *Store) getOrCreateLocked(num uint32) (*Node, error) {
	if num == mesh.BroadcastNum {
		return nil, ErrBroadcastNum
	}

	if n, ok := s.nodes[num]; ok {
		return n, nil
	}

	n := &Node{
		Num:  num,
		User: stubUser(num),
	}
	s.nodes[num] = n
	s.order = append(s.order, num)
	return n, nil
}

// MergeNodeInfo merges a topology record into the store, creating the node
// on first mention. Fields present in the record overwrite; absent fields
// are retained. Position fixed-point coordinates are converted to degrees.
func (s *Store) MergeNodeInfo(info *mesh.NodeInfo) error {
	if info == nil {
		return fmt.Errorf("nil node info")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, err := s.getOrCreateLocked(info.Num)
	if err != nil {
		return err
	}

	if info.User != nil {
		n.User = *info.User
	}
	if info.Position != nil {
		n.Position = convertPosition(info.Position)
	}
	if info.SNR != 0 {
		n.SNR = info.SNR
	}
	if info.LastHeard != 0 {
		n.LastHeard = info.LastHeard
	}
	if info.Channel != 0 {
		n.Channel = info.Channel
	}
	if info.ViaMQTT {
		n.ViaMQTT = true
	}
	if info.HopsAway != nil {
		hops := *info.HopsAway
		n.HopsAway = &hops
	}
	if info.HasPKC {
		n.HasPKC = true
	}
	if info.DeviceMetrics != nil {
		cp := *info.DeviceMetrics
		n.DeviceMetrics = &cp
	}

	return nil
}

// convertPosition converts integer-scaled coordinates to degrees.
func convertPosition(p *mesh.Position) *NodePosition {
	np := &NodePosition{Time: p.Time}
	if p.LatitudeI != nil {
		lat := *p.LatitudeI
		deg := float64(lat) * mesh.PositionScale
		np.LatitudeI = &lat
		np.Latitude = &deg
	}
	if p.LongitudeI != nil {
		lon := *p.LongitudeI
		deg := float64(lon) * mesh.PositionScale
		np.LongitudeI = &lon
		np.Longitude = &deg
	}
	if p.Altitude != nil {
		alt := *p.Altitude
		np.Altitude = &alt
	}
	return np
}

// MergeTelemetry merges a telemetry report into an already-known node.
// Reports from unknown nodes are ignored; telemetry alone does not create
// topology records.
func (s *Store) MergeTelemetry(num uint32, t *mesh.Telemetry) {
	if t == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.nodes[num]
	if !ok {
		return
	}

	if t.Time != 0 {
		n.TelemetryTime = t.Time
	}
	if t.DeviceMetrics != nil {
		cp := *t.DeviceMetrics
		n.DeviceMetrics = &cp
	}
	if t.EnvironmentMetrics != nil {
		cp := *t.EnvironmentMetrics
		n.EnvironmentMetrics = &cp
	}
	if t.AirQualityMetrics != nil {
		cp := *t.AirQualityMetrics
		n.AirQualityMetrics = &cp
	}
	if t.PowerMetrics != nil {
		cp := *t.PowerMetrics
		n.PowerMetrics = &cp
	}
}

// NodeHasPKC reports whether a node is known to support public-key admin
// channels.
func (s *Store) NodeHasPKC(num uint32) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[num]
	return ok && n.HasPKC
}

// FindNode looks up a node by number.
func (s *Store) FindNode(num uint32) (MeshNode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[num]
	if !ok {
		return MeshNode{}, false
	}
	return n.meshNode(), true
}

// FindNodeByUserID looks up a node by user id in insertion order.
func (s *Store) FindNodeByUserID(userID string) (MeshNode, bool) {
	return s.findFirst(func(n *Node) bool { return n.User.ID == userID })
}

// FindNodeByShortName looks up a node by short name in insertion order.
func (s *Store) FindNodeByShortName(shortName string) (MeshNode, bool) {
	return s.findFirst(func(n *Node) bool { return n.User.ShortName == shortName })
}

// FindNodeByLongName looks up a node by long name in insertion order.
func (s *Store) FindNodeByLongName(longName string) (MeshNode, bool) {
	return s.findFirst(func(n *Node) bool { return n.User.LongName == longName })
}

func (s *Store) findFirst(match func(*Node) bool) (MeshNode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, num := range s.order {
		if n := s.nodes[num]; match(n) {
			return n.meshNode(), true
		}
	}
	return MeshNode{}, false
}

// Node returns a copy of the full record for num.
func (s *Store) Node(num uint32) (Node, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.nodes[num]
	if !ok {
		return Node{}, false
	}
	return *n, true
}

// Nodes returns a snapshot of every record in insertion order.
func (s *Store) Nodes() []Node {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Node, 0, len(s.order))
	for _, num := range s.order {
		out = append(out, *s.nodes[num])
	}
	return out
}

// Len returns the number of known nodes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.nodes)
}
