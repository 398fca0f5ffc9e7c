package mock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/meshlink-protocol/meshlink-go/pkg/connection"
	"github.com/meshlink-protocol/meshlink-go/pkg/mesh"
)

// Device simulates a mesh radio: it serves a config dump, acknowledges
// traffic, and answers admin and telemetry requests. Wire it to a session
// through Connection().
type Device struct {
	mu sync.Mutex

	// NodeNum is the device's own node number.
	NodeNum uint32

	// User is the device's identity record.
	User mesh.User

	// Metadata is the device metadata served during config sync.
	Metadata mesh.DeviceMetadata

	// Channels is the channel table served during config sync.
	Channels []*mesh.Channel

	// Nodes are the remote nodes in the device's topology database.
	Nodes []*mesh.NodeInfo

	// LoRa is the radio configuration served on admin reads.
	LoRa mesh.LoRaConfig

	// DeviceMetrics answers telemetry requests.
	DeviceMetrics mesh.DeviceMetrics

	// ClockSets records SetTimeOnly values received.
	ClockSets []uint32

	// TextMessages records text payloads received.
	TextMessages []string

	conn *Connection
}

// NewDevice creates a simulated device with one primary channel.
func NewDevice(nodeNum uint32) *Device {
	d := &Device{
		NodeNum: nodeNum,
		User: mesh.User{
			ID:        fmt.Sprintf("!%08x", nodeNum),
			LongName:  "Simulated Radio",
			ShortName: "SIM",
			HwModel:   "SIMULATOR",
		},
		Channels: []*mesh.Channel{
			{Index: 0, Role: mesh.ChannelPrimary, Settings: &mesh.ChannelSettings{Name: "LongFast"}},
		},
		LoRa: mesh.LoRaConfig{Region: 1, UsePreset: true, TxEnabled: true},
		DeviceMetrics: mesh.DeviceMetrics{
			BatteryLevel: ptr(uint32(100)),
		},
	}

	d.conn = NewConnection()
	d.conn.SendFunc = d.handleSend
	d.refreshConfigFrames()
	return d
}

// Connection returns the device's connection endpoint.
func (d *Device) Connection() *Connection {
	return d.conn
}

// AddNode adds a remote node to the device's topology database and, when the
// device is connected, announces it on the frame stream.
func (d *Device) AddNode(info *mesh.NodeInfo) {
	d.mu.Lock()
	d.Nodes = append(d.Nodes, info)
	d.mu.Unlock()

	d.refreshConfigFrames()
	if d.conn.Connected() {
		d.conn.PushFrame(&mesh.FromRadio{NodeInfo: info})
	}
}

// DeliverText injects an inbound text message from a remote node.
func (d *Device) DeliverText(from uint32, text string) {
	d.conn.PushFrame(&mesh.FromRadio{Packet: &mesh.MeshPacket{
		From:   from,
		To:     d.NodeNum,
		ID:     nextPacketID(),
		RxTime: uint32(time.Now().Unix()),
		Decoded: &mesh.Data{
			Port:    mesh.PortTextMessage,
			Payload: []byte(text),
		},
	}})
}

// Reboot announces a device reboot on the frame stream.
func (d *Device) Reboot() {
	d.conn.PushFrame(&mesh.FromRadio{Rebooted: true})
}

// refreshConfigFrames rebuilds the scripted config dump.
func (d *Device) refreshConfigFrames() {
	d.mu.Lock()
	defer d.mu.Unlock()

	frames := []*mesh.FromRadio{
		{MyInfo: &mesh.MyNodeInfo{MyNodeNum: d.NodeNum}},
		{Metadata: &d.Metadata},
		{NodeInfo: &mesh.NodeInfo{Num: d.NodeNum, User: &d.User}},
	}
	for _, ch := range d.Channels {
		frames = append(frames, &mesh.FromRadio{Channel: ch})
	}
	frames = append(frames, &mesh.FromRadio{Config: &mesh.Config{LoRa: &d.LoRa}})
	for _, n := range d.Nodes {
		frames = append(frames, &mesh.FromRadio{NodeInfo: n})
	}

	d.conn.mu.Lock()
	d.conn.ConfigFrames = frames
	d.conn.mu.Unlock()
}

// handleSend answers outbound traffic the way a radio would: every send is
// acknowledged, and admin, telemetry, and text payloads get typed handling.
func (d *Device) handleSend(ctx context.Context, req connection.SendRequest) (*connection.SendResult, error) {
	if req.OnAck != nil && (req.WantAck || req.WantResponse) {
		payload, _ := mesh.Marshal(&mesh.Routing{ErrorReason: mesh.RoutingNone})
		go req.OnAck(&mesh.MeshPacket{
			From:    req.To,
			Decoded: &mesh.Data{Port: mesh.PortRouting, Payload: payload},
		})
	}

	switch req.Port {
	case mesh.PortAdmin:
		return d.handleAdmin(req)
	case mesh.PortTelemetry:
		if req.WantResponse {
			return d.telemetryResponse(req)
		}
	case mesh.PortTextMessage:
		d.mu.Lock()
		d.TextMessages = append(d.TextMessages, string(req.Payload))
		d.mu.Unlock()
	}

	return &connection.SendResult{}, nil
}

func (d *Device) handleAdmin(req connection.SendRequest) (*connection.SendResult, error) {
	var msg mesh.AdminMessage
	if err := mesh.Unmarshal(req.Payload, &msg); err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	var reply *mesh.AdminMessage
	switch {
	case msg.SetTimeOnly != 0:
		d.ClockSets = append(d.ClockSets, msg.SetTimeOnly)
	case msg.GetDeviceConnectionStatusRequest:
		reply = &mesh.AdminMessage{
			GetDeviceConnectionStatusResponse: &mesh.DeviceConnectionStatus{
				Serial: &mesh.SerialConnectionStatus{Baud: 115200, IsConnected: true},
			},
		}
	case msg.GetConfigRequest != nil:
		cfg := d.LoRa
		reply = &mesh.AdminMessage{
			GetConfigResponse: &mesh.Config{LoRa: &cfg},
		}
	case msg.SetConfig != nil:
		if msg.SetConfig.LoRa != nil {
			d.LoRa = *msg.SetConfig.LoRa
		}
	}

	if !req.WantResponse {
		return &connection.SendResult{}, nil
	}
	if reply == nil {
		reply = &mesh.AdminMessage{}
	}

	payload, err := mesh.Marshal(reply)
	if err != nil {
		return nil, err
	}
	return &connection.SendResult{
		Packet: &mesh.MeshPacket{From: req.To, To: d.NodeNum},
		Data:   &mesh.Data{Port: mesh.PortAdmin, Payload: payload},
	}, nil
}

func (d *Device) telemetryResponse(req connection.SendRequest) (*connection.SendResult, error) {
	d.mu.Lock()
	metrics := d.DeviceMetrics
	d.mu.Unlock()

	payload, err := mesh.Marshal(&mesh.Telemetry{
		Time:          uint32(time.Now().Unix()),
		DeviceMetrics: &metrics,
	})
	if err != nil {
		return nil, err
	}
	return &connection.SendResult{
		Packet: &mesh.MeshPacket{From: req.To, To: d.NodeNum},
		Data:   &mesh.Data{Port: mesh.PortTelemetry, Payload: payload},
	}, nil
}

var packetSeq uint32
var packetSeqMu sync.Mutex

func nextPacketID() uint32 {
	packetSeqMu.Lock()
	defer packetSeqMu.Unlock()
	packetSeq++
	return packetSeq
}

func ptr[T any](v T) *T {
	return &v
}
