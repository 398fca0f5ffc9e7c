// Package log provides structured protocol logging for the session engine.
//
// This package defines the Logger interface and Event types for capturing
// protocol-level events at multiple layers (transport, frame, session).
// It is separate from operational logging (slog) - protocol capture provides
// a complete machine-readable event trace for debugging and analysis.
//
// # Basic Usage
//
// Applications configure logging by providing a Logger implementation:
//
//	// For development: log to console via slog
//	opts.EventLogger = log.NewSlogAdapter(slog.Default())
//
//	// For production: write to binary file
//	opts.EventLogger, _ = log.NewFileLogger("/var/log/meshlink/device.mlog")
//
//	// Both: use MultiLogger
//	opts.EventLogger = log.NewMultiLogger(
//	    log.NewSlogAdapter(slog.Default()),
//	    log.NewFileLogger("/var/log/meshlink/device.mlog"),
//	)
//
// # Event Types
//
// Events are captured at multiple layers:
//   - Transport: connection lifecycle (StateChangeEvent)
//   - Frame: decoded frames and packets (FrameEvent)
//   - Session: supervision, requests, and errors
//
// Heartbeat/disconnect control traffic and errors have dedicated categories.
//
// # File Format
//
// Log files use CBOR encoding with .mlog extension and can be replayed with
// the Reader in this package.
package log
