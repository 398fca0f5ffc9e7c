package mesh

// AdminConfigType selects which config section an admin request targets.
type AdminConfigType uint8

const (
	AdminConfigDevice    AdminConfigType = 0
	AdminConfigPosition  AdminConfigType = 1
	AdminConfigPower     AdminConfigType = 2
	AdminConfigNetwork   AdminConfigType = 3
	AdminConfigDisplay   AdminConfigType = 4
	AdminConfigLoRa      AdminConfigType = 5
	AdminConfigBluetooth AdminConfigType = 6
	AdminConfigSecurity  AdminConfigType = 7
)

// String returns the config type name.
func (t AdminConfigType) String() string {
	switch t {
	case AdminConfigDevice:
		return "DEVICE"
	case AdminConfigPosition:
		return "POSITION"
	case AdminConfigPower:
		return "POWER"
	case AdminConfigNetwork:
		return "NETWORK"
	case AdminConfigDisplay:
		return "DISPLAY"
	case AdminConfigLoRa:
		return "LORA"
	case AdminConfigBluetooth:
		return "BLUETOOTH"
	case AdminConfigSecurity:
		return "SECURITY"
	default:
		return "UNKNOWN"
	}
}

// AdminMessage is the payload schema on PortAdmin. At most one request or
// response field is set.
type AdminMessage struct {
	SetTimeOnly                      uint32                  `cbor:"1,keyasint,omitempty"`
	GetConfigRequest                 *AdminConfigType        `cbor:"2,keyasint,omitempty"`
	GetConfigResponse                *Config                 `cbor:"3,keyasint,omitempty"`
	SetConfig                        *Config                 `cbor:"4,keyasint,omitempty"`
	GetDeviceConnectionStatusRequest bool                    `cbor:"5,keyasint,omitempty"`
	GetDeviceConnectionStatusResponse *DeviceConnectionStatus `cbor:"6,keyasint,omitempty"`
}

// DeviceConnectionStatus reports the device's active transports.
type DeviceConnectionStatus struct {
	Wifi      *WifiConnectionStatus   `cbor:"1,keyasint,omitempty"`
	Ethernet  *EthernetStatus         `cbor:"2,keyasint,omitempty"`
	Bluetooth *BluetoothStatus        `cbor:"3,keyasint,omitempty"`
	Serial    *SerialConnectionStatus `cbor:"4,keyasint,omitempty"`
}

// WifiConnectionStatus reports WiFi link state.
type WifiConnectionStatus struct {
	Ssid        string `cbor:"1,keyasint,omitempty"`
	Rssi        int32  `cbor:"2,keyasint,omitempty"`
	IsConnected bool   `cbor:"3,keyasint,omitempty"`
}

// EthernetStatus reports Ethernet link state.
type EthernetStatus struct {
	IsConnected bool `cbor:"1,keyasint,omitempty"`
}

// BluetoothStatus reports BLE link state.
type BluetoothStatus struct {
	Pin         uint32 `cbor:"1,keyasint,omitempty"`
	Rssi        int32  `cbor:"2,keyasint,omitempty"`
	IsConnected bool   `cbor:"3,keyasint,omitempty"`
}

// SerialConnectionStatus reports serial link state.
type SerialConnectionStatus struct {
	Baud        uint32 `cbor:"1,keyasint,omitempty"`
	IsConnected bool   `cbor:"2,keyasint,omitempty"`
}
