package discovery

import (
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/enbility/zeroconf/v3"
)

// AdvertiserConfig configures advertiser behavior.
type AdvertiserConfig struct {
	// TTL is the announcement time-to-live. Default: 120 seconds.
	TTL time.Duration

	// Interface specifies which network interface to announce on.
	// Empty string means all interfaces.
	Interface string
}

// Advertiser publishes a radio's _meshlink._tcp service. Used by simulators
// and network-attached radios that accept TCP clients.
type Advertiser struct {
	config AdvertiserConfig

	mu     sync.Mutex
	server *zeroconf.Server
}

// NewAdvertiser creates a new mDNS advertiser.
func NewAdvertiser(config AdvertiserConfig) *Advertiser {
	if config.TTL <= 0 {
		config.TTL = DefaultTTL
	}
	return &Advertiser{config: config}
}

// Advertise starts announcing the radio. The instance name is derived from
// the radio's long name, falling back to its node id. Announcing replaces
// any previous announcement.
func (a *Advertiser) Advertise(info *RadioInfo) error {
	instanceName := info.LongName
	if instanceName == "" {
		instanceName = info.NodeID
	}
	if err := ValidateInstanceName(instanceName); err != nil {
		return err
	}
	if !validNodeID(info.NodeID) {
		return fmt.Errorf("%w: node id %q", ErrInvalidTXTRecord, info.NodeID)
	}

	port := int(info.Port)
	if port == 0 {
		port = DefaultPort
	}

	txtStrings := TXTRecordsToStrings(EncodeRadioTXT(info))

	opts := []zeroconf.ServerOption{
		zeroconf.TTL(uint32(a.config.TTL.Seconds())),
	}

	server, err := zeroconf.Register(
		instanceName,
		ServiceType,
		Domain,
		port,
		txtStrings,
		a.interfaces(),
		opts...,
	)
	if err != nil {
		return fmt.Errorf("failed to register service: %w", err)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.server != nil {
		a.server.Shutdown()
	}
	a.server = server
	return nil
}

// Stop withdraws the announcement.
func (a *Advertiser) Stop() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.server != nil {
		a.server.Shutdown()
		a.server = nil
	}
}

// interfaces returns the configured interface list, or nil for all.
func (a *Advertiser) interfaces() []net.Interface {
	if a.config.Interface == "" {
		return nil
	}
	iface, err := net.InterfaceByName(a.config.Interface)
	if err != nil {
		return nil
	}
	return []net.Interface{*iface}
}
