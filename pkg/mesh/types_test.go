package mesh

import (
	"math"
	"testing"
)

func TestPositionDegrees(t *testing.T) {
	lat := int32(523_700_000)
	lon := int32(-48_900_000)
	p := &Position{LatitudeI: &lat, LongitudeI: &lon}

	got, ok := p.Latitude()
	if !ok {
		t.Fatal("expected latitude to be set")
	}
	if math.Abs(got-52.37) > 1e-6 {
		t.Errorf("latitude = %v, want 52.37", got)
	}

	got, ok = p.Longitude()
	if !ok {
		t.Fatal("expected longitude to be set")
	}
	if math.Abs(got-(-4.89)) > 1e-6 {
		t.Errorf("longitude = %v, want -4.89", got)
	}
}

func TestPositionDegreesUnset(t *testing.T) {
	var p *Position
	if _, ok := p.Latitude(); ok {
		t.Error("nil position should have no latitude")
	}
	if _, ok := (&Position{}).Longitude(); ok {
		t.Error("empty position should have no longitude")
	}
}

func TestChannelHelpers(t *testing.T) {
	ch := &Channel{Index: 1, Role: ChannelSecondary, Settings: &ChannelSettings{Name: "offgrid"}}
	if got := ch.Name(); got != "offgrid" {
		t.Errorf("Name() = %q, want offgrid", got)
	}
	if !ch.Enabled() {
		t.Error("secondary channel should be enabled")
	}

	disabled := &Channel{Index: 2, Role: ChannelDisabled}
	if disabled.Enabled() {
		t.Error("disabled channel should not be enabled")
	}
	if got := disabled.Name(); got != "" {
		t.Errorf("Name() without settings = %q, want empty", got)
	}

	var nilCh *Channel
	if nilCh.Enabled() {
		t.Error("nil channel should not be enabled")
	}
}

func TestPortNumString(t *testing.T) {
	cases := []struct {
		port PortNum
		want string
	}{
		{PortTextMessage, "TEXT_MESSAGE"},
		{PortPosition, "POSITION"},
		{PortNodeInfo, "NODE_INFO"},
		{PortRouting, "ROUTING"},
		{PortAdmin, "ADMIN"},
		{PortTelemetry, "TELEMETRY"},
		{PortNum(500), "UNASSIGNED"},
	}
	for _, c := range cases {
		if got := c.port.String(); got != c.want {
			t.Errorf("PortNum(%d).String() = %q, want %q", uint32(c.port), got, c.want)
		}
	}
}

func TestRoutingErrorString(t *testing.T) {
	cases := []struct {
		reason RoutingError
		want   string
	}{
		{RoutingNone, "NONE"},
		{RoutingNoRoute, "NO_ROUTE"},
		{RoutingMaxRetransmit, "MAX_RETRANSMIT"},
		{RoutingNotAuthorized, "NOT_AUTHORIZED"},
		{RoutingError(200), "UNKNOWN"},
	}
	for _, c := range cases {
		if got := c.reason.String(); got != c.want {
			t.Errorf("RoutingError(%d).String() = %q, want %q", uint8(c.reason), got, c.want)
		}
	}
}

func TestLocalModuleConfigMerge(t *testing.T) {
	var lm LocalModuleConfig

	lm.Merge(&ModuleConfig{MQTT: &MQTTConfig{Enabled: true, Address: "broker.local"}})
	lm.Merge(&ModuleConfig{Serial: &SerialConfig{Enabled: true}})

	if lm.MQTT == nil || lm.MQTT.Address != "broker.local" {
		t.Fatal("MQTT section lost after later merge")
	}
	if lm.Serial == nil || !lm.Serial.Enabled {
		t.Fatal("serial section not merged")
	}

	// nil merges are ignored.
	lm.Merge(nil)
	if lm.MQTT == nil {
		t.Fatal("nil merge must not clear state")
	}
}
