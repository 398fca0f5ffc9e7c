// Package interactive provides the interactive command-line interface for
// meshlink-monitor.
package interactive

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/chzyer/readline"

	"github.com/meshlink-protocol/meshlink-go/internal/testharness/mock"
	"github.com/meshlink-protocol/meshlink-go/pkg/mesh"
	"github.com/meshlink-protocol/meshlink-go/pkg/session"
)

// requestTimeout bounds each interactive device request.
const requestTimeout = 30 * time.Second

// Monitor handles interactive mode for meshlink-monitor.
type Monitor struct {
	sess   *session.Session
	device *mock.Device
	rl     *readline.Instance

	// Packet watch control
	unwatch func()
}

// New creates a new interactive monitor. The session may be attached later
// with SetSession so log output can be routed through the prompt first.
func New(sess *session.Session, device *mock.Device) (*Monitor, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "mesh> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return &Monitor{sess: sess, device: device, rl: rl}, nil
}

// SetSession attaches the session driven by the command loop.
func (m *Monitor) SetSession(sess *session.Session) {
	m.sess = sess
}

// Stdout returns a writer that coordinates with the readline prompt.
// Use this for log output to avoid interfering with input.
func (m *Monitor) Stdout() io.Writer {
	return m.rl.Stdout()
}

// Run starts the interactive command loop.
func (m *Monitor) Run(ctx context.Context, cancel context.CancelFunc) {
	defer m.rl.Close()

	m.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := m.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(m.rl.Stdout(), "Exiting...")
			cancel()
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			m.printHelp()

		case "status":
			m.cmdStatus(ctx)

		case "nodes", "ls":
			m.cmdNodes()

		case "channels":
			m.cmdChannels()

		case "send":
			m.cmdSend(ctx, args)

		case "sendto":
			m.cmdSendTo(ctx, args)

		case "telemetry", "tel":
			m.cmdTelemetry(ctx, args)

		case "lora":
			m.cmdLoRa(ctx)

		case "time":
			m.cmdTime(ctx)

		case "watch":
			m.cmdWatch()

		case "unwatch":
			m.cmdUnwatch()

		case "deliver":
			m.cmdDeliver(args)

		case "reboot":
			m.cmdReboot()

		case "quit", "exit", "q":
			fmt.Fprintln(m.rl.Stdout(), "Exiting...")
			cancel()
			return

		default:
			m.printf("Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (m *Monitor) printf(format string, args ...any) {
	fmt.Fprintf(m.rl.Stdout(), format, args...)
}

func (m *Monitor) printHelp() {
	fmt.Fprintln(m.rl.Stdout(), `
Meshlink Monitor Commands:
  Session:
    status                  - Show session and radio state
    nodes                   - List known mesh nodes
    channels                - List the channel table

  Messaging:
    send <text>             - Broadcast a text message
    sendto <dest> <text>    - Send to a node (!userid, node number or short name)
    watch                   - Print incoming packets
    unwatch                 - Stop printing incoming packets

  Device Requests:
    telemetry <dest> [kind] - Request telemetry (device, environment, airquality, power)
    lora                    - Read the radio's LoRa configuration
    time                    - Set the radio's clock to now

  Simulation:
    deliver <from> <text>   - Inject an inbound text message
    reboot                  - Reboot the simulated radio

  General:
    help                    - Show this help
    quit                    - Exit monitor`)
}

func (m *Monitor) cmdStatus(ctx context.Context) {
	m.printf("Session %s\n", m.sess.ID())
	m.printf("  running: %v, ready: %v\n", m.sess.IsRunning(), m.sess.Ready())

	if node, ok := m.sess.ConnectedNode(); ok {
		m.printf("  radio: %s (%s / %s)\n", node.UserID, node.ShortName, node.LongName)
	}
	m.printf("  known nodes: %d, channels: %d\n",
		m.sess.Store().Len(), m.sess.Store().ChannelCount())

	if !m.sess.Ready() {
		return
	}
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	status, err := m.sess.RequestConnectionStatus(reqCtx)
	if err != nil {
		m.printf("  connection status: %v\n", err)
		return
	}
	if status.Serial != nil {
		m.printf("  serial: connected=%v baud=%d\n", status.Serial.IsConnected, status.Serial.Baud)
	}
	if status.Wifi != nil {
		m.printf("  wifi: connected=%v ssid=%s rssi=%d\n",
			status.Wifi.IsConnected, status.Wifi.Ssid, status.Wifi.Rssi)
	}
}

func (m *Monitor) cmdNodes() {
	nodes := m.sess.Store().Nodes()
	if len(nodes) == 0 {
		fmt.Fprintln(m.rl.Stdout(), "No nodes known yet")
		return
	}
	for _, n := range nodes {
		line := fmt.Sprintf("  %-10s %-5s %-20s", n.User.ID, n.User.ShortName, n.User.LongName)
		if n.SNR != 0 {
			line += fmt.Sprintf(" snr=%.1f", n.SNR)
		}
		if n.Position != nil && n.Position.Latitude != nil && n.Position.Longitude != nil {
			line += fmt.Sprintf(" pos=%.5f,%.5f", *n.Position.Latitude, *n.Position.Longitude)
		}
		if n.EnvironmentMetrics != nil && n.EnvironmentMetrics.Temperature != nil {
			line += fmt.Sprintf(" temp=%.1fC", *n.EnvironmentMetrics.Temperature)
		}
		fmt.Fprintln(m.rl.Stdout(), line)
	}
}

func (m *Monitor) cmdChannels() {
	channels := m.sess.Store().Channels()
	if len(channels) == 0 {
		fmt.Fprintln(m.rl.Stdout(), "Channel table is empty")
		return
	}
	for i, ch := range channels {
		state := "enabled"
		if !ch.Enabled() {
			state = "disabled"
		}
		m.printf("  %d: %-12s %s\n", i, ch.Name(), state)
	}
}

func (m *Monitor) cmdSend(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(m.rl.Stdout(), "Usage: send <text>")
		return
	}
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	err := m.sess.SendTextMessage(reqCtx, session.TextMessage{
		Text:     strings.Join(args, " "),
		ToUserID: mesh.BroadcastAddr,
	})
	if err != nil {
		m.printf("Send failed: %v\n", err)
		return
	}
	fmt.Fprintln(m.rl.Stdout(), "Sent")
}

func (m *Monitor) cmdSendTo(ctx context.Context, args []string) {
	if len(args) < 2 {
		fmt.Fprintln(m.rl.Stdout(), "Usage: sendto <dest> <text>")
		return
	}

	msg := session.TextMessage{
		Text:    strings.Join(args[1:], " "),
		WantAck: true,
	}
	dest := args[0]
	switch {
	case strings.HasPrefix(dest, "!"):
		msg.ToUserID = dest
	default:
		if num, err := strconv.ParseUint(dest, 0, 32); err == nil {
			n := uint32(num)
			msg.To = &n
		} else if node, ok := m.sess.FindNode(session.NodeQuery{ShortName: dest}); ok {
			msg.To = &node.ID
		} else {
			m.printf("Unknown destination: %s\n", dest)
			return
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	if err := m.sess.SendTextMessage(reqCtx, msg); err != nil {
		m.printf("Send failed: %v\n", err)
		return
	}
	fmt.Fprintln(m.rl.Stdout(), "Sent")
}

func (m *Monitor) cmdTelemetry(ctx context.Context, args []string) {
	if len(args) == 0 {
		fmt.Fprintln(m.rl.Stdout(), "Usage: telemetry <dest> [device|environment|airquality|power]")
		return
	}
	dest, err := m.resolveNodeNum(args[0])
	if err != nil {
		m.printf("%v\n", err)
		return
	}

	typ := session.TelemetryDevice
	if len(args) > 1 {
		switch strings.ToLower(args[1]) {
		case "device":
			typ = session.TelemetryDevice
		case "environment", "env":
			typ = session.TelemetryEnvironment
		case "airquality", "air":
			typ = session.TelemetryAirQuality
		case "power":
			typ = session.TelemetryPower
		default:
			m.printf("Unknown telemetry kind: %s\n", args[1])
			return
		}
	}

	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	tel, err := m.sess.RequestTelemetry(reqCtx, dest, typ)
	if err != nil {
		m.printf("Telemetry request failed: %v\n", err)
		return
	}

	m.printf("Telemetry from !%08x (time %d):\n", dest, tel.Time)
	if dm := tel.DeviceMetrics; dm != nil {
		if dm.BatteryLevel != nil {
			m.printf("  battery: %d%%\n", *dm.BatteryLevel)
		}
		if dm.Voltage != nil {
			m.printf("  voltage: %.2fV\n", *dm.Voltage)
		}
	}
	if em := tel.EnvironmentMetrics; em != nil {
		if em.Temperature != nil {
			m.printf("  temperature: %.1fC\n", *em.Temperature)
		}
		if em.RelativeHumidity != nil {
			m.printf("  humidity: %.0f%%\n", *em.RelativeHumidity)
		}
	}
}

func (m *Monitor) cmdLoRa(ctx context.Context) {
	node, ok := m.sess.ConnectedNode()
	if !ok {
		fmt.Fprintln(m.rl.Stdout(), "Radio identity not known yet")
		return
	}
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	cfg, err := m.sess.RequestLoRaConfig(reqCtx, node.ID)
	if err != nil {
		m.printf("LoRa config request failed: %v\n", err)
		return
	}
	m.printf("LoRa: region=%d preset=%v txEnabled=%v hopLimit=%d\n",
		cfg.Region, cfg.UsePreset, cfg.TxEnabled, cfg.HopLimit)
}

func (m *Monitor) cmdTime(ctx context.Context) {
	reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	if err := m.sess.SendTime(reqCtx, time.Now()); err != nil {
		m.printf("Time set failed: %v\n", err)
		return
	}
	fmt.Fprintln(m.rl.Stdout(), "Radio clock set")
}

func (m *Monitor) cmdWatch() {
	if m.unwatch != nil {
		fmt.Fprintln(m.rl.Stdout(), "Already watching")
		return
	}
	m.unwatch = m.sess.AddPacketAppListener(mesh.PortTextMessage, func(p *mesh.MeshPacket) {
		text := ""
		if p.Decoded != nil {
			text = string(p.Decoded.Payload)
		}
		from, _ := m.sess.FindNode(session.NodeQuery{Num: &p.From})
		m.printf("\n[%s] %s\n", from.ShortName, text)
	})
	fmt.Fprintln(m.rl.Stdout(), "Watching incoming text messages")
}

func (m *Monitor) cmdUnwatch() {
	if m.unwatch == nil {
		fmt.Fprintln(m.rl.Stdout(), "Not watching")
		return
	}
	m.unwatch()
	m.unwatch = nil
	fmt.Fprintln(m.rl.Stdout(), "Stopped watching")
}

func (m *Monitor) cmdDeliver(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(m.rl.Stdout(), "Usage: deliver <from> <text>")
		return
	}
	from, err := m.resolveNodeNum(args[0])
	if err != nil {
		m.printf("%v\n", err)
		return
	}
	m.device.DeliverText(from, strings.Join(args[1:], " "))
	fmt.Fprintln(m.rl.Stdout(), "Delivered")
}

func (m *Monitor) cmdReboot() {
	m.device.Reboot()
	fmt.Fprintln(m.rl.Stdout(), "Simulated radio rebooting; session will reconnect")
}

// resolveNodeNum parses "!aabbccdd", a numeric literal, or a short name.
func (m *Monitor) resolveNodeNum(s string) (uint32, error) {
	if strings.HasPrefix(s, "!") {
		if node, ok := m.sess.FindNode(session.NodeQuery{UserID: s}); ok {
			return node.ID, nil
		}
		if num, err := strconv.ParseUint(s[1:], 16, 32); err == nil {
			return uint32(num), nil
		}
		return 0, fmt.Errorf("unknown node: %s", s)
	}
	if num, err := strconv.ParseUint(s, 0, 32); err == nil {
		return uint32(num), nil
	}
	if node, ok := m.sess.FindNode(session.NodeQuery{ShortName: s}); ok {
		return node.ID, nil
	}
	return 0, fmt.Errorf("unknown node: %s", s)
}
