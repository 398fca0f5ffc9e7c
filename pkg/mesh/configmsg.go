package mesh

// Config is one config sub-message from the device. At most one sub-field is
// set per frame; the device streams these during the config-sync handshake.
type Config struct {
	Device    *DeviceConfig    `cbor:"1,keyasint,omitempty"`
	Position  *PositionConfig  `cbor:"2,keyasint,omitempty"`
	Power     *PowerConfig     `cbor:"3,keyasint,omitempty"`
	Network   *NetworkConfig   `cbor:"4,keyasint,omitempty"`
	Display   *DisplayConfig   `cbor:"5,keyasint,omitempty"`
	LoRa      *LoRaConfig      `cbor:"6,keyasint,omitempty"`
	Bluetooth *BluetoothConfig `cbor:"7,keyasint,omitempty"`
	Security  *SecurityConfig  `cbor:"8,keyasint,omitempty"`
}

// DeviceConfig holds role and basic device behavior.
type DeviceConfig struct {
	Role            uint8  `cbor:"1,keyasint,omitempty"`
	NodeInfoBcastS  uint32 `cbor:"2,keyasint,omitempty"`
	TZDef           string `cbor:"3,keyasint,omitempty"`
	LedHeartbeatOff bool   `cbor:"4,keyasint,omitempty"`
}

// PositionConfig holds position reporting behavior.
type PositionConfig struct {
	BroadcastSecs      uint32 `cbor:"1,keyasint,omitempty"`
	SmartEnabled       bool   `cbor:"2,keyasint,omitempty"`
	FixedPosition      bool   `cbor:"3,keyasint,omitempty"`
	GpsUpdateInterval  uint32 `cbor:"4,keyasint,omitempty"`
	PositionFlags      uint32 `cbor:"5,keyasint,omitempty"`
	BroadcastSmartMinD uint32 `cbor:"6,keyasint,omitempty"`
}

// PowerConfig holds power-saving behavior.
type PowerConfig struct {
	IsPowerSaving     bool   `cbor:"1,keyasint,omitempty"`
	OnBatteryShutdown uint32 `cbor:"2,keyasint,omitempty"`
	SdsSecs           uint32 `cbor:"3,keyasint,omitempty"`
	LsSecs            uint32 `cbor:"4,keyasint,omitempty"`
}

// NetworkConfig holds WiFi/Ethernet settings.
type NetworkConfig struct {
	WifiEnabled bool   `cbor:"1,keyasint,omitempty"`
	WifiSsid    string `cbor:"2,keyasint,omitempty"`
	EthEnabled  bool   `cbor:"3,keyasint,omitempty"`
	NtpServer   string `cbor:"4,keyasint,omitempty"`
}

// DisplayConfig holds screen settings.
type DisplayConfig struct {
	ScreenOnSecs     uint32 `cbor:"1,keyasint,omitempty"`
	AutoScreenSecs   uint32 `cbor:"2,keyasint,omitempty"`
	HeadingBold      bool   `cbor:"3,keyasint,omitempty"`
	WakeOnTapOrMotio bool   `cbor:"4,keyasint,omitempty"`
}

// LoRaConfig holds radio modem settings.
type LoRaConfig struct {
	UsePreset    bool   `cbor:"1,keyasint,omitempty"`
	ModemPreset  uint8  `cbor:"2,keyasint,omitempty"`
	Region       uint8  `cbor:"3,keyasint,omitempty"`
	HopLimit     uint8  `cbor:"4,keyasint,omitempty"`
	TxEnabled    bool   `cbor:"5,keyasint,omitempty"`
	TxPower      int8   `cbor:"6,keyasint,omitempty"`
	ChannelNum   uint16 `cbor:"7,keyasint,omitempty"`
	SX126xRxBoost bool  `cbor:"8,keyasint,omitempty"`
}

// BluetoothConfig holds BLE settings.
type BluetoothConfig struct {
	Enabled  bool   `cbor:"1,keyasint,omitempty"`
	Mode     uint8  `cbor:"2,keyasint,omitempty"`
	FixedPin uint32 `cbor:"3,keyasint,omitempty"`
}

// SecurityConfig holds key material settings.
type SecurityConfig struct {
	PublicKey     []byte   `cbor:"1,keyasint,omitempty"`
	PrivateKey    []byte   `cbor:"2,keyasint,omitempty"`
	AdminKeys     [][]byte `cbor:"3,keyasint,omitempty"`
	IsManaged     bool     `cbor:"4,keyasint,omitempty"`
	SerialEnabled bool     `cbor:"5,keyasint,omitempty"`
}

// LocalConfig is the cumulative local configuration snapshot, built by
// merging Config sub-messages as they arrive.
type LocalConfig struct {
	Device    *DeviceConfig    `cbor:"1,keyasint,omitempty"`
	Position  *PositionConfig  `cbor:"2,keyasint,omitempty"`
	Power     *PowerConfig     `cbor:"3,keyasint,omitempty"`
	Network   *NetworkConfig   `cbor:"4,keyasint,omitempty"`
	Display   *DisplayConfig   `cbor:"5,keyasint,omitempty"`
	LoRa      *LoRaConfig      `cbor:"6,keyasint,omitempty"`
	Bluetooth *BluetoothConfig `cbor:"7,keyasint,omitempty"`
	Security  *SecurityConfig  `cbor:"8,keyasint,omitempty"`
}

// Merge copies only the sub-fields present in c into the snapshot, leaving
// all other sub-fields untouched.
func (lc *LocalConfig) Merge(c *Config) {
	if c == nil {
		return
	}
	if c.Device != nil {
		cp := *c.Device
		lc.Device = &cp
	}
	if c.Position != nil {
		cp := *c.Position
		lc.Position = &cp
	}
	if c.Power != nil {
		cp := *c.Power
		lc.Power = &cp
	}
	if c.Network != nil {
		cp := *c.Network
		lc.Network = &cp
	}
	if c.Display != nil {
		cp := *c.Display
		lc.Display = &cp
	}
	if c.LoRa != nil {
		cp := *c.LoRa
		lc.LoRa = &cp
	}
	if c.Bluetooth != nil {
		cp := *c.Bluetooth
		lc.Bluetooth = &cp
	}
	if c.Security != nil {
		cp := *c.Security
		lc.Security = &cp
	}
}

// ModuleConfig is one module-config sub-message from the device.
type ModuleConfig struct {
	MQTT                 *MQTTConfig              `cbor:"1,keyasint,omitempty"`
	Serial               *SerialConfig            `cbor:"2,keyasint,omitempty"`
	ExternalNotification *ExternalNotifConfig     `cbor:"3,keyasint,omitempty"`
	StoreForward         *StoreForwardConfig      `cbor:"4,keyasint,omitempty"`
	RangeTest            *RangeTestConfig         `cbor:"5,keyasint,omitempty"`
	Telemetry            *TelemetryModuleConfig   `cbor:"6,keyasint,omitempty"`
	CannedMessage        *CannedMessageConfig     `cbor:"7,keyasint,omitempty"`
	NeighborInfo         *NeighborInfoConfig      `cbor:"8,keyasint,omitempty"`
	DetectionSensor      *DetectionSensorConfig   `cbor:"9,keyasint,omitempty"`
	Paxcounter           *PaxcounterModuleConfig  `cbor:"10,keyasint,omitempty"`
	AmbientLighting      *AmbientLightingConfig   `cbor:"11,keyasint,omitempty"`
	RemoteHardware       *RemoteHardwareConfig    `cbor:"12,keyasint,omitempty"`
	Audio                *AudioModuleConfig       `cbor:"13,keyasint,omitempty"`
}

// MQTTConfig holds MQTT gateway settings.
type MQTTConfig struct {
	Enabled     bool   `cbor:"1,keyasint,omitempty"`
	Address     string `cbor:"2,keyasint,omitempty"`
	Username    string `cbor:"3,keyasint,omitempty"`
	Encryption  bool   `cbor:"4,keyasint,omitempty"`
	JSONEnabled bool   `cbor:"5,keyasint,omitempty"`
	Root        string `cbor:"6,keyasint,omitempty"`
}

// SerialConfig holds serial module settings.
type SerialConfig struct {
	Enabled bool   `cbor:"1,keyasint,omitempty"`
	Baud    uint32 `cbor:"2,keyasint,omitempty"`
	Mode    uint8  `cbor:"3,keyasint,omitempty"`
}

// ExternalNotifConfig holds external notification settings.
type ExternalNotifConfig struct {
	Enabled  bool   `cbor:"1,keyasint,omitempty"`
	OutputMs uint32 `cbor:"2,keyasint,omitempty"`
	Active   bool   `cbor:"3,keyasint,omitempty"`
}

// StoreForwardConfig holds store-and-forward settings.
type StoreForwardConfig struct {
	Enabled      bool   `cbor:"1,keyasint,omitempty"`
	Records      uint32 `cbor:"2,keyasint,omitempty"`
	HistoryLimit uint32 `cbor:"3,keyasint,omitempty"`
}

// RangeTestConfig holds range-test settings.
type RangeTestConfig struct {
	Enabled bool   `cbor:"1,keyasint,omitempty"`
	Sender  uint32 `cbor:"2,keyasint,omitempty"`
	Save    bool   `cbor:"3,keyasint,omitempty"`
}

// TelemetryModuleConfig holds telemetry reporting settings.
type TelemetryModuleConfig struct {
	DeviceUpdateInterval      uint32 `cbor:"1,keyasint,omitempty"`
	EnvironmentUpdateInterval uint32 `cbor:"2,keyasint,omitempty"`
	EnvironmentMeasurement    bool   `cbor:"3,keyasint,omitempty"`
	PowerMeasurement          bool   `cbor:"4,keyasint,omitempty"`
}

// CannedMessageConfig holds canned-message settings.
type CannedMessageConfig struct {
	Enabled       bool  `cbor:"1,keyasint,omitempty"`
	SendBell      bool  `cbor:"2,keyasint,omitempty"`
	InputbrokerEn bool  `cbor:"3,keyasint,omitempty"`
	Rotary1En     bool  `cbor:"4,keyasint,omitempty"`
	UpDown1En     bool  `cbor:"5,keyasint,omitempty"`
}

// NeighborInfoConfig holds neighbor-info settings.
type NeighborInfoConfig struct {
	Enabled        bool   `cbor:"1,keyasint,omitempty"`
	UpdateInterval uint32 `cbor:"2,keyasint,omitempty"`
}

// DetectionSensorConfig holds detection-sensor settings.
type DetectionSensorConfig struct {
	Enabled        bool   `cbor:"1,keyasint,omitempty"`
	MinBroadcastS  uint32 `cbor:"2,keyasint,omitempty"`
	Name           string `cbor:"3,keyasint,omitempty"`
	MonitorPin     uint32 `cbor:"4,keyasint,omitempty"`
}

// PaxcounterModuleConfig holds pax-counter settings.
type PaxcounterModuleConfig struct {
	Enabled        bool   `cbor:"1,keyasint,omitempty"`
	UpdateInterval uint32 `cbor:"2,keyasint,omitempty"`
}

// AmbientLightingConfig holds LED strip settings.
type AmbientLightingConfig struct {
	LedState bool  `cbor:"1,keyasint,omitempty"`
	Current  uint8 `cbor:"2,keyasint,omitempty"`
	Red      uint8 `cbor:"3,keyasint,omitempty"`
	Green    uint8 `cbor:"4,keyasint,omitempty"`
	Blue     uint8 `cbor:"5,keyasint,omitempty"`
}

// RemoteHardwareConfig holds remote GPIO settings.
type RemoteHardwareConfig struct {
	Enabled bool `cbor:"1,keyasint,omitempty"`
}

// AudioModuleConfig holds codec2 voice settings.
type AudioModuleConfig struct {
	CodecEnabled bool  `cbor:"1,keyasint,omitempty"`
	Bitrate      uint8 `cbor:"2,keyasint,omitempty"`
}

// LocalModuleConfig is the cumulative module configuration snapshot.
type LocalModuleConfig struct {
	MQTT                 *MQTTConfig              `cbor:"1,keyasint,omitempty"`
	Serial               *SerialConfig            `cbor:"2,keyasint,omitempty"`
	ExternalNotification *ExternalNotifConfig     `cbor:"3,keyasint,omitempty"`
	StoreForward         *StoreForwardConfig      `cbor:"4,keyasint,omitempty"`
	RangeTest            *RangeTestConfig         `cbor:"5,keyasint,omitempty"`
	Telemetry            *TelemetryModuleConfig   `cbor:"6,keyasint,omitempty"`
	CannedMessage        *CannedMessageConfig     `cbor:"7,keyasint,omitempty"`
	NeighborInfo         *NeighborInfoConfig      `cbor:"8,keyasint,omitempty"`
	DetectionSensor      *DetectionSensorConfig   `cbor:"9,keyasint,omitempty"`
	Paxcounter           *PaxcounterModuleConfig  `cbor:"10,keyasint,omitempty"`
	AmbientLighting      *AmbientLightingConfig   `cbor:"11,keyasint,omitempty"`
	RemoteHardware       *RemoteHardwareConfig    `cbor:"12,keyasint,omitempty"`
	Audio                *AudioModuleConfig       `cbor:"13,keyasint,omitempty"`
}

// Merge copies only the sub-fields present in mc into the snapshot.
func (lm *LocalModuleConfig) Merge(mc *ModuleConfig) {
	if mc == nil {
		return
	}
	if mc.MQTT != nil {
		cp := *mc.MQTT
		lm.MQTT = &cp
	}
	if mc.Serial != nil {
		cp := *mc.Serial
		lm.Serial = &cp
	}
	if mc.ExternalNotification != nil {
		cp := *mc.ExternalNotification
		lm.ExternalNotification = &cp
	}
	if mc.StoreForward != nil {
		cp := *mc.StoreForward
		lm.StoreForward = &cp
	}
	if mc.RangeTest != nil {
		cp := *mc.RangeTest
		lm.RangeTest = &cp
	}
	if mc.Telemetry != nil {
		cp := *mc.Telemetry
		lm.Telemetry = &cp
	}
	if mc.CannedMessage != nil {
		cp := *mc.CannedMessage
		lm.CannedMessage = &cp
	}
	if mc.NeighborInfo != nil {
		cp := *mc.NeighborInfo
		lm.NeighborInfo = &cp
	}
	if mc.DetectionSensor != nil {
		cp := *mc.DetectionSensor
		lm.DetectionSensor = &cp
	}
	if mc.Paxcounter != nil {
		cp := *mc.Paxcounter
		lm.Paxcounter = &cp
	}
	if mc.AmbientLighting != nil {
		cp := *mc.AmbientLighting
		lm.AmbientLighting = &cp
	}
	if mc.RemoteHardware != nil {
		cp := *mc.RemoteHardware
		lm.RemoteHardware = &cp
	}
	if mc.Audio != nil {
		cp := *mc.Audio
		lm.Audio = &cp
	}
}
