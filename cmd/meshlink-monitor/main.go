// Command meshlink-monitor is an interactive console for a meshlink radio
// session. It runs the full session engine against a simulated radio, which
// makes it useful for exploring the client API and for demos without
// hardware.
//
// Usage:
//
//	meshlink-monitor [flags]
//
// Flags:
//
//	-config string        Configuration file path (default ~/.meshlink/config.yaml)
//	-node uint            Node number of the simulated radio (default 0x10)
//	-peers int            Number of simulated peer nodes (default 2)
//	-log-level string     Log level: debug, info, warn, error
//	-protocol-log string  Capture CBOR protocol events to this file
//	-advertise            Announce the simulated radio via mDNS
//	-node-cache string    Persist known nodes to this file between runs
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/meshlink-protocol/meshlink-go/cmd/meshlink-monitor/interactive"
	"github.com/meshlink-protocol/meshlink-go/internal/testharness/mock"
	"github.com/meshlink-protocol/meshlink-go/pkg/config"
	"github.com/meshlink-protocol/meshlink-go/pkg/discovery"
	meshlog "github.com/meshlink-protocol/meshlink-go/pkg/log"
	"github.com/meshlink-protocol/meshlink-go/pkg/mesh"
	"github.com/meshlink-protocol/meshlink-go/pkg/persistence"
	"github.com/meshlink-protocol/meshlink-go/pkg/session"
)

var (
	flagConfig      = flag.String("config", "", "configuration file path")
	flagNode        = flag.Uint("node", 0x10, "node number of the simulated radio")
	flagPeers       = flag.Int("peers", 2, "number of simulated peer nodes")
	flagLogLevel    = flag.String("log-level", "", "log level: debug, info, warn, error")
	flagProtocolLog = flag.String("protocol-log", "", "capture CBOR protocol events to this file")
	flagAdvertise   = flag.Bool("advertise", false, "announce the simulated radio via mDNS")
	flagNodeCache   = flag.String("node-cache", "", "persist known nodes to this file between runs")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "meshlink-monitor: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := *flagConfig
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}
	if *flagLogLevel != "" {
		cfg.Log.Level = *flagLogLevel
	}
	if *flagProtocolLog != "" {
		cfg.Log.ProtocolFile = *flagProtocolLog
	}
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}

	device := mock.NewDevice(uint32(*flagNode))
	for i := 0; i < *flagPeers; i++ {
		num := uint32(*flagNode) + 1 + uint32(i)
		device.AddNode(&mesh.NodeInfo{
			Num: num,
			User: &mesh.User{
				ID:        fmt.Sprintf("!%08x", num),
				ShortName: fmt.Sprintf("PR%02d", i+1),
				LongName:  fmt.Sprintf("Peer %d", i+1),
			},
			SNR: 6.5,
		})
	}

	monitor, err := interactive.New(nil, device)
	if err != nil {
		return err
	}

	// Route logs through readline so output does not clobber the prompt.
	logger := slog.New(slog.NewTextHandler(monitor.Stdout(), &slog.HandlerOptions{Level: level}))

	events := meshlog.Logger(meshlog.NoopLogger{})
	if cfg.Log.ProtocolFile != "" {
		fl, err := meshlog.NewFileLogger(cfg.Log.ProtocolFile)
		if err != nil {
			return err
		}
		defer fl.Close()
		events = fl
	}
	if level == slog.LevelDebug {
		events = meshlog.NewMultiLogger(events, meshlog.NewSlogAdapter(logger))
	}

	opts := cfg.SessionOptions()
	opts.Logger = logger
	opts.EventLogger = events

	sess := session.New(device.Connection(), opts)
	monitor.SetSession(sess)

	radioID := fmt.Sprintf("!%08x", uint32(*flagNode))
	var cache *persistence.NodeCacheStore
	if *flagNodeCache != "" {
		cache = persistence.NewNodeCacheStore(*flagNodeCache)
		if n, err := cache.Restore(sess.Store(), radioID); err != nil {
			logger.Warn("node cache restore failed", "error", err)
		} else if n > 0 {
			logger.Info("restored cached nodes", "count", n)
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sess.Start(ctx); err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}
	defer func() {
		sess.Stop(context.Background())
		if cache != nil {
			if err := cache.Save(sess.Store(), radioID); err != nil {
				logger.Warn("node cache save failed", "error", err)
			}
		}
	}()

	if *flagAdvertise {
		adv := discovery.NewAdvertiser(discovery.AdvertiserConfig{})
		info := &discovery.RadioInfo{
			NodeID:    fmt.Sprintf("!%08x", uint32(*flagNode)),
			ShortName: "SIM",
			LongName:  "Simulated Radio",
			HwModel:   "SIMULATOR",
		}
		if err := adv.Advertise(info); err != nil {
			logger.Warn("mDNS advertise failed", "error", err)
		} else {
			defer adv.Stop()
		}
	}

	go monitor.Run(ctx, cancel)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received signal", "signal", sig.String())
	case <-ctx.Done():
	}

	return nil
}
