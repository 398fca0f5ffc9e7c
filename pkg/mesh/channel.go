package mesh

// ChannelRole determines how a channel slot is used.
type ChannelRole uint8

const (
	// ChannelDisabled marks an unused slot. A disabled channel must never be
	// selected as a send target.
	ChannelDisabled ChannelRole = 0

	// ChannelPrimary is the primary channel (always index 0).
	ChannelPrimary ChannelRole = 1

	// ChannelSecondary is an additional channel.
	ChannelSecondary ChannelRole = 2
)

// String returns the channel role name.
func (r ChannelRole) String() string {
	switch r {
	case ChannelDisabled:
		return "DISABLED"
	case ChannelPrimary:
		return "PRIMARY"
	case ChannelSecondary:
		return "SECONDARY"
	default:
		return "UNKNOWN"
	}
}

// ChannelSettings holds the user-visible configuration of a channel.
type ChannelSettings struct {
	Name string `cbor:"1,keyasint,omitempty"`
	PSK  []byte `cbor:"2,keyasint,omitempty"`
	ID   uint32 `cbor:"3,keyasint,omitempty"`
}

// Channel is one slot of the device's ordered channel table.
type Channel struct {
	Index    int32            `cbor:"1,keyasint,omitempty"`
	Settings *ChannelSettings `cbor:"2,keyasint,omitempty"`
	Role     ChannelRole      `cbor:"3,keyasint,omitempty"`
}

// Name returns the channel's configured name, or "" when unset.
func (c *Channel) Name() string {
	if c == nil || c.Settings == nil {
		return ""
	}
	return c.Settings.Name
}

// Enabled reports whether the channel can carry traffic.
func (c *Channel) Enabled() bool {
	return c != nil && c.Role != ChannelDisabled
}
