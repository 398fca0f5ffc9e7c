package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/meshlink-protocol/meshlink-go/pkg/connection"
	"github.com/meshlink-protocol/meshlink-go/pkg/mesh"
)

// adminChannel selects the channel index for an admin message to the given
// node. The local node is always administered over channel 0. A remote node
// uses the dedicated public-key channel when both ends support it, else a
// channel named "admin" when one exists, else channel 0.
func (s *Session) adminChannel(to uint32) int32 {
	if num, ok := s.store.MyNodeNum(); ok && to == num {
		return 0
	}

	md := s.store.Metadata()
	if md != nil && md.HasPKC && s.store.NodeHasPKC(to) {
		return mesh.PKCChannelIndex
	}

	if idx, ok := s.store.AdminChannelIndex(); ok {
		return idx
	}
	return 0
}

// SendAdminMessage sends an admin message without waiting for a reply beyond
// the mesh acknowledgement.
func (s *Session) SendAdminMessage(ctx context.Context, to uint32, msg *mesh.AdminMessage) error {
	payload, err := mesh.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode admin message: %w", err)
	}

	ch := s.adminChannel(to)
	_, err = s.SendMessage(ctx, connection.SendRequest{
		To:       to,
		Payload:  payload,
		Port:     mesh.PortAdmin,
		Priority: mesh.PriorityReliable,
		WantAck:  true,
		Channel:  &ch,
	})
	return err
}

// SendAdminMessageAwaitResponse sends an admin message and waits for the
// correlated admin reply.
func (s *Session) SendAdminMessageAwaitResponse(ctx context.Context, to uint32, msg *mesh.AdminMessage) (*mesh.AdminMessage, error) {
	payload, err := mesh.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode admin message: %w", err)
	}

	ch := s.adminChannel(to)
	res, err := s.SendMessageAwaitResponse(ctx, connection.SendRequest{
		To:       to,
		Payload:  payload,
		Port:     mesh.PortAdmin,
		Priority: mesh.PriorityReliable,
		WantAck:  true,
		Channel:  &ch,
	}, 0)
	if err != nil {
		return nil, err
	}
	if res == nil || res.Data == nil {
		return nil, ErrUnexpectedResponse
	}

	var reply mesh.AdminMessage
	if err := mesh.Unmarshal(res.Data.Payload, &reply); err != nil {
		return nil, fmt.Errorf("failed to decode admin reply: %w", err)
	}
	return &reply, nil
}

// localNodeNum resolves the local node number, required for self-addressed
// admin traffic.
func (s *Session) localNodeNum() (uint32, error) {
	num, ok := s.store.MyNodeNum()
	if !ok {
		return 0, ErrNotRunning
	}
	return num, nil
}

// RequestConnectionStatus asks the device for its transport status. Used as
// the post-sync heartbeat because it exercises the full request path.
func (s *Session) RequestConnectionStatus(ctx context.Context) (*mesh.DeviceConnectionStatus, error) {
	num, err := s.localNodeNum()
	if err != nil {
		return nil, err
	}

	reply, err := s.SendAdminMessageAwaitResponse(ctx, num, &mesh.AdminMessage{
		GetDeviceConnectionStatusRequest: true,
	})
	if err != nil {
		return nil, err
	}
	if reply.GetDeviceConnectionStatusResponse == nil {
		return nil, ErrUnexpectedResponse
	}
	return reply.GetDeviceConnectionStatusResponse, nil
}

// RequestLoRaConfig reads the radio configuration of a node.
func (s *Session) RequestLoRaConfig(ctx context.Context, to uint32) (*mesh.LoRaConfig, error) {
	cfgType := mesh.AdminConfigLoRa
	reply, err := s.SendAdminMessageAwaitResponse(ctx, to, &mesh.AdminMessage{
		GetConfigRequest: &cfgType,
	})
	if err != nil {
		return nil, err
	}
	if reply.GetConfigResponse == nil || reply.GetConfigResponse.LoRa == nil {
		return nil, ErrUnexpectedResponse
	}
	return reply.GetConfigResponse.LoRa, nil
}

// WriteLoRaConfig writes the radio configuration of a node. The device
// applies the change and may reboot.
func (s *Session) WriteLoRaConfig(ctx context.Context, to uint32, cfg *mesh.LoRaConfig) error {
	return s.SendAdminMessage(ctx, to, &mesh.AdminMessage{
		SetConfig: &mesh.Config{LoRa: cfg},
	})
}

// SendTime sets the device clock.
func (s *Session) SendTime(ctx context.Context, t time.Time) error {
	num, err := s.localNodeNum()
	if err != nil {
		return err
	}
	return s.SendAdminMessage(ctx, num, &mesh.AdminMessage{
		SetTimeOnly: uint32(t.Unix()),
	})
}

// TelemetryType selects which metric group a telemetry request asks for.
type TelemetryType uint8

const (
	TelemetryDevice TelemetryType = iota
	TelemetryEnvironment
	TelemetryAirQuality
	TelemetryPower
)

// String returns the telemetry type name.
func (t TelemetryType) String() string {
	switch t {
	case TelemetryDevice:
		return "DEVICE"
	case TelemetryEnvironment:
		return "ENVIRONMENT"
	case TelemetryAirQuality:
		return "AIR_QUALITY"
	case TelemetryPower:
		return "POWER"
	default:
		return "UNKNOWN"
	}
}

// RequestTelemetry asks a node for a metric report. The request carries an
// empty report of the desired group; the node replies with current values.
func (s *Session) RequestTelemetry(ctx context.Context, to uint32, typ TelemetryType) (*mesh.Telemetry, error) {
	req := &mesh.Telemetry{}
	switch typ {
	case TelemetryDevice:
		req.DeviceMetrics = &mesh.DeviceMetrics{}
	case TelemetryEnvironment:
		req.EnvironmentMetrics = &mesh.EnvironmentMetrics{}
	case TelemetryAirQuality:
		req.AirQualityMetrics = &mesh.AirQualityMetrics{}
	case TelemetryPower:
		req.PowerMetrics = &mesh.PowerMetrics{}
	default:
		return nil, fmt.Errorf("unknown telemetry type %d", typ)
	}

	payload, err := mesh.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode telemetry request: %w", err)
	}

	res, err := s.SendMessageAwaitResponse(ctx, connection.SendRequest{
		To:       to,
		Payload:  payload,
		Port:     mesh.PortTelemetry,
		Priority: mesh.PriorityBackground,
		WantAck:  true,
	}, 0)
	if err != nil {
		return nil, err
	}
	if res == nil || res.Data == nil {
		return nil, ErrUnexpectedResponse
	}

	var reply mesh.Telemetry
	if err := mesh.Unmarshal(res.Data.Payload, &reply); err != nil {
		return nil, fmt.Errorf("failed to decode telemetry reply: %w", err)
	}
	return &reply, nil
}

// TextMessage describes one outbound text message. Destination precedence:
// To, then ToUserID, then broadcast. Channel precedence: Channel index, then
// ChannelName, then the device's primary channel.
type TextMessage struct {
	// Text is the UTF-8 message body.
	Text string

	// To addresses a node by number.
	To *uint32

	// ToUserID addresses a node by user ID ("!aabbccdd"), or every node
	// with mesh.BroadcastAddr.
	ToUserID string

	// Channel selects a channel by index.
	Channel *int32

	// ChannelName selects a channel by its exact name.
	ChannelName string

	// WantAck requests a delivery acknowledgement.
	WantAck bool
}

// SendTextMessage sends a text message. Destination and channel are resolved
// and validated against the node store before anything goes out: unknown
// user IDs, unknown channels, and disabled channels all fail fast.
func (s *Session) SendTextMessage(ctx context.Context, msg TextMessage) error {
	to, ch, err := s.resolveDestination(msg)
	if err != nil {
		return err
	}

	// Acknowledged messages ride at reliable priority so the radio retries
	// them like any other reliable packet.
	priority := mesh.PriorityDefault
	if msg.WantAck {
		priority = mesh.PriorityReliable
	}

	_, err = s.SendMessage(ctx, connection.SendRequest{
		To:       to,
		Payload:  []byte(msg.Text),
		Port:     mesh.PortTextMessage,
		Priority: priority,
		WantAck:  msg.WantAck,
		Channel:  ch,
	})
	return err
}

// resolveDestination maps a TextMessage's addressing fields to a node number
// and channel index.
func (s *Session) resolveDestination(msg TextMessage) (uint32, *int32, error) {
	to := mesh.BroadcastNum
	switch {
	case msg.To != nil:
		to = *msg.To
	case msg.ToUserID == mesh.BroadcastAddr:
		to = mesh.BroadcastNum
	case msg.ToUserID != "":
		node, ok := s.store.FindNodeByUserID(msg.ToUserID)
		if !ok {
			return 0, nil, fmt.Errorf("%w: user id %q", ErrUnknownDestination, msg.ToUserID)
		}
		to = node.ID
	}

	var ch *int32
	switch {
	case msg.Channel != nil:
		if s.store.ChannelCount() > 0 && !s.store.ChannelEnabled(int(*msg.Channel)) {
			return 0, nil, fmt.Errorf("%w: index %d", ErrChannelDisabled, *msg.Channel)
		}
		ch = msg.Channel
	case msg.ChannelName != "":
		mc, ok := s.store.ChannelByName(msg.ChannelName)
		if !ok {
			if s.channelNameDisabled(msg.ChannelName) {
				return 0, nil, fmt.Errorf("%w: %q", ErrChannelDisabled, msg.ChannelName)
			}
			return 0, nil, fmt.Errorf("%w: %q", ErrUnknownChannel, msg.ChannelName)
		}
		idx := mc.Index
		ch = &idx
	}

	return to, ch, nil
}

// channelNameDisabled reports whether a channel with the given name exists
// but is disabled.
func (s *Session) channelNameDisabled(name string) bool {
	for _, c := range s.store.Channels() {
		if c.Role == mesh.ChannelDisabled && strings.EqualFold(c.Name(), name) {
			return true
		}
	}
	return false
}
