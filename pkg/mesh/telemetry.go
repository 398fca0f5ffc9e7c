package mesh

// Telemetry is a metric report. At most one metric group is set.
type Telemetry struct {
	Time               uint32              `cbor:"1,keyasint,omitempty"`
	DeviceMetrics      *DeviceMetrics      `cbor:"2,keyasint,omitempty"`
	EnvironmentMetrics *EnvironmentMetrics `cbor:"3,keyasint,omitempty"`
	AirQualityMetrics  *AirQualityMetrics  `cbor:"4,keyasint,omitempty"`
	PowerMetrics       *PowerMetrics       `cbor:"5,keyasint,omitempty"`
}

// DeviceMetrics reports battery and radio utilization.
type DeviceMetrics struct {
	BatteryLevel       *uint32  `cbor:"1,keyasint,omitempty"`
	Voltage            *float32 `cbor:"2,keyasint,omitempty"`
	ChannelUtilization *float32 `cbor:"3,keyasint,omitempty"`
	AirUtilTx          *float32 `cbor:"4,keyasint,omitempty"`
	UptimeSeconds      *uint32  `cbor:"5,keyasint,omitempty"`
}

// EnvironmentMetrics reports attached environmental sensors.
type EnvironmentMetrics struct {
	Temperature       *float32 `cbor:"1,keyasint,omitempty"`
	RelativeHumidity  *float32 `cbor:"2,keyasint,omitempty"`
	BarometricPressure *float32 `cbor:"3,keyasint,omitempty"`
	GasResistance     *float32 `cbor:"4,keyasint,omitempty"`
	Lux               *float32 `cbor:"5,keyasint,omitempty"`
	WindDirection     *uint32  `cbor:"6,keyasint,omitempty"`
	WindSpeed         *float32 `cbor:"7,keyasint,omitempty"`
}

// AirQualityMetrics reports particulate matter sensors.
type AirQualityMetrics struct {
	Pm10Standard  *uint32 `cbor:"1,keyasint,omitempty"`
	Pm25Standard  *uint32 `cbor:"2,keyasint,omitempty"`
	Pm100Standard *uint32 `cbor:"3,keyasint,omitempty"`
	Co2           *uint32 `cbor:"4,keyasint,omitempty"`
}

// PowerMetrics reports attached voltage/current sensors.
type PowerMetrics struct {
	Ch1Voltage *float32 `cbor:"1,keyasint,omitempty"`
	Ch1Current *float32 `cbor:"2,keyasint,omitempty"`
	Ch2Voltage *float32 `cbor:"3,keyasint,omitempty"`
	Ch2Current *float32 `cbor:"4,keyasint,omitempty"`
	Ch3Voltage *float32 `cbor:"5,keyasint,omitempty"`
	Ch3Current *float32 `cbor:"6,keyasint,omitempty"`
}
