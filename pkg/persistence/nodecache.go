package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/meshlink-protocol/meshlink-go/pkg/mesh"
	"github.com/meshlink-protocol/meshlink-go/pkg/nodedb"
)

// CacheVersion is the node cache format version.
const CacheVersion = 1

// NodeCache is the on-disk snapshot of the node database.
type NodeCache struct {
	// Version is the cache format version.
	Version int `json:"version"`

	// SavedAt is when the snapshot was taken.
	SavedAt time.Time `json:"saved_at"`

	// RadioID is the user id of the radio this cache belongs to. A cache
	// saved for one radio is not restored onto another.
	RadioID string `json:"radio_id,omitempty"`

	// Nodes are the cached node records.
	Nodes []CachedNode `json:"nodes"`
}

// CachedNode is one persisted node record.
type CachedNode struct {
	Num       uint32  `json:"num"`
	UserID    string  `json:"user_id"`
	ShortName string  `json:"short_name,omitempty"`
	LongName  string  `json:"long_name,omitempty"`
	HwModel   string  `json:"hw_model,omitempty"`
	SNR       float32 `json:"snr,omitempty"`
	LastHeard uint32  `json:"last_heard,omitempty"`
	Channel   int32   `json:"channel,omitempty"`
	HasPKC    bool    `json:"has_pkc,omitempty"`

	// Raw fixed-point coordinates; degrees are rederived on restore.
	LatitudeI  *int32 `json:"latitude_i,omitempty"`
	LongitudeI *int32 `json:"longitude_i,omitempty"`
}

// NodeCacheStore reads and writes the node cache file.
type NodeCacheStore struct {
	mu   sync.Mutex
	path string
}

// NewNodeCacheStore creates a store backed by the given path.
func NewNodeCacheStore(path string) *NodeCacheStore {
	return &NodeCacheStore{path: path}
}

// Save snapshots the store's node records to disk. radioID scopes the cache
// to the connected radio.
func (s *NodeCacheStore) Save(store *nodedb.Store, radioID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cache := &NodeCache{
		Version: CacheVersion,
		SavedAt: time.Now(),
		RadioID: radioID,
	}
	for _, n := range store.Nodes() {
		cn := CachedNode{
			Num:       n.Num,
			UserID:    n.User.ID,
			ShortName: n.User.ShortName,
			LongName:  n.User.LongName,
			HwModel:   n.User.HwModel,
			SNR:       n.SNR,
			LastHeard: n.LastHeard,
			Channel:   n.Channel,
			HasPKC:    n.HasPKC,
		}
		if n.Position != nil {
			cn.LatitudeI = n.Position.LatitudeI
			cn.LongitudeI = n.Position.LongitudeI
		}
		cache.Nodes = append(cache.Nodes, cn)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0o644)
}

// Load reads the cache from disk. Returns nil, nil if the file doesn't
// exist.
func (s *NodeCacheStore) Load() (*NodeCache, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	cache := &NodeCache{}
	if err := json.Unmarshal(data, cache); err != nil {
		return nil, err
	}
	return cache, nil
}

// Restore merges cached records into the store. A cache saved for a
// different radio is skipped. Returns the number of restored nodes.
func (s *NodeCacheStore) Restore(store *nodedb.Store, radioID string) (int, error) {
	cache, err := s.Load()
	if err != nil {
		return 0, err
	}
	if cache == nil || (cache.RadioID != "" && radioID != "" && cache.RadioID != radioID) {
		return 0, nil
	}

	restored := 0
	for _, cn := range cache.Nodes {
		info := &mesh.NodeInfo{
			Num: cn.Num,
			User: &mesh.User{
				ID:        cn.UserID,
				ShortName: cn.ShortName,
				LongName:  cn.LongName,
				HwModel:   cn.HwModel,
			},
			SNR:       cn.SNR,
			LastHeard: cn.LastHeard,
			Channel:   cn.Channel,
			HasPKC:    cn.HasPKC,
		}
		if cn.LatitudeI != nil || cn.LongitudeI != nil {
			info.Position = &mesh.Position{
				LatitudeI:  cn.LatitudeI,
				LongitudeI: cn.LongitudeI,
			}
		}
		if err := store.MergeNodeInfo(info); err != nil {
			continue
		}
		restored++
	}
	return restored, nil
}

// Clear removes the cache file.
func (s *NodeCacheStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
