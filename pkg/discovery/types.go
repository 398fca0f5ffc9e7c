package discovery

import (
	"errors"
	"fmt"
	"time"
)

// Service type constants for mDNS.
const (
	// ServiceType is the mDNS service type announced by network radios.
	ServiceType = "_meshlink._tcp"

	// Domain is the mDNS domain.
	Domain = "local"

	// DefaultPort is the TCP port radios listen on.
	DefaultPort = 4403
)

// Timing constants.
const (
	// BrowseTimeout is the default timeout for mDNS browsing.
	BrowseTimeout = 10 * time.Second

	// DefaultTTL is the announcement time-to-live.
	DefaultTTL = 120 * time.Second
)

// MaxInstanceNameLen is the DNS label limit.
const MaxInstanceNameLen = 63

// Discovery errors.
var (
	ErrMissingRequired     = errors.New("missing required TXT record")
	ErrInvalidTXTRecord    = errors.New("invalid TXT record")
	ErrInstanceNameInvalid = errors.New("invalid instance name")
	ErrNotFound            = errors.New("no matching radio found")
)

// RadioInfo describes a radio for advertising.
type RadioInfo struct {
	// NodeID is the radio's user id in "!%08x" form. Required.
	NodeID string

	// ShortName is the radio's four-character short name.
	ShortName string

	// LongName is the radio's display name.
	LongName string

	// HwModel is the hardware model string.
	HwModel string

	// Firmware is the firmware version string.
	Firmware string

	// Port overrides DefaultPort when non-zero.
	Port uint16
}

// RadioService is one discovered radio.
type RadioService struct {
	// InstanceName is the mDNS instance label.
	InstanceName string

	// Host is the announced hostname.
	Host string

	// Port is the TCP port to connect to.
	Port uint16

	// Addresses holds the radio's IP addresses as strings, aggregated
	// across interfaces.
	Addresses []string

	// Identity fields from the TXT records.
	NodeID    string
	ShortName string
	LongName  string
	HwModel   string
	Firmware  string
}

// Addr returns a dialable host:port for the service, preferring the first
// resolved address over the hostname.
func (s *RadioService) Addr() string {
	host := s.Host
	if len(s.Addresses) > 0 {
		host = s.Addresses[0]
	}
	return fmt.Sprintf("%s:%d", host, s.Port)
}

// ValidateInstanceName checks if an instance name is valid for mDNS.
func ValidateInstanceName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty name", ErrInstanceNameInvalid)
	}
	if len(name) > MaxInstanceNameLen {
		return fmt.Errorf("%w: %q exceeds %d bytes", ErrInstanceNameInvalid, name, MaxInstanceNameLen)
	}
	return nil
}
