package mesh

// PositionScale converts integer-scaled latitude/longitude fixed-point
// values to floating-point degrees.
const PositionScale = 1e-7

// User is a node's broadcast identity.
type User struct {
	ID        string `cbor:"1,keyasint,omitempty"`
	LongName  string `cbor:"2,keyasint,omitempty"`
	ShortName string `cbor:"3,keyasint,omitempty"`
	HwModel   string `cbor:"4,keyasint,omitempty"`
	PublicKey []byte `cbor:"5,keyasint,omitempty"`
}

// Position is a node's location report. Latitude and longitude travel as
// integer fixed-point fields scaled by 1e-7 degrees.
type Position struct {
	LatitudeI  *int32 `cbor:"1,keyasint,omitempty"`
	LongitudeI *int32 `cbor:"2,keyasint,omitempty"`
	Altitude   *int32 `cbor:"3,keyasint,omitempty"`
	Time       uint32 `cbor:"4,keyasint,omitempty"`
}

// Latitude returns the latitude in degrees, or false when unset.
func (p *Position) Latitude() (float64, bool) {
	if p == nil || p.LatitudeI == nil {
		return 0, false
	}
	return float64(*p.LatitudeI) * PositionScale, true
}

// Longitude returns the longitude in degrees, or false when unset.
func (p *Position) Longitude() (float64, bool) {
	if p == nil || p.LongitudeI == nil {
		return 0, false
	}
	return float64(*p.LongitudeI) * PositionScale, true
}

// NodeInfo is a topology record describing one mesh node.
type NodeInfo struct {
	Num           uint32         `cbor:"1,keyasint,omitempty"`
	User          *User          `cbor:"2,keyasint,omitempty"`
	Position      *Position      `cbor:"3,keyasint,omitempty"`
	SNR           float32        `cbor:"4,keyasint,omitempty"`
	LastHeard     uint32         `cbor:"5,keyasint,omitempty"`
	DeviceMetrics *DeviceMetrics `cbor:"6,keyasint,omitempty"`
	Channel       int32          `cbor:"7,keyasint,omitempty"`
	ViaMQTT       bool           `cbor:"8,keyasint,omitempty"`
	HopsAway      *uint32        `cbor:"9,keyasint,omitempty"`
	HasPKC        bool           `cbor:"10,keyasint,omitempty"`
}

// MyNodeInfo identifies the locally-connected device.
type MyNodeInfo struct {
	MyNodeNum     uint32 `cbor:"1,keyasint,omitempty"`
	RebootCount   uint32 `cbor:"2,keyasint,omitempty"`
	MinAppVersion uint32 `cbor:"3,keyasint,omitempty"`
	DeviceID      []byte `cbor:"4,keyasint,omitempty"`
}

// DeviceMetadata describes firmware capabilities of the connected device.
type DeviceMetadata struct {
	FirmwareVersion    string `cbor:"1,keyasint,omitempty"`
	DeviceStateVersion uint32 `cbor:"2,keyasint,omitempty"`
	CanShutdown        bool   `cbor:"3,keyasint,omitempty"`
	HasWifi            bool   `cbor:"4,keyasint,omitempty"`
	HasBluetooth       bool   `cbor:"5,keyasint,omitempty"`
	HwModel            string `cbor:"6,keyasint,omitempty"`
	HasPKC             bool   `cbor:"7,keyasint,omitempty"`
}

// QueueStatus reports the device's outbound packet queue.
type QueueStatus struct {
	Res          int32  `cbor:"1,keyasint,omitempty"`
	Free         uint32 `cbor:"2,keyasint,omitempty"`
	MaxLen       uint32 `cbor:"3,keyasint,omitempty"`
	MeshPacketID uint32 `cbor:"4,keyasint,omitempty"`
}
