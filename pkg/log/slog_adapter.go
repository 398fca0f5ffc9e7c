package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes protocol events to an slog.Logger.
// Useful for development when you want to see protocol events in console.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a new SlogAdapter that writes to the given slog.Logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event to the slog logger at Debug level.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("session_id", event.SessionID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}

	if event.Node != 0 {
		attrs = append(attrs, slog.Uint64("node", uint64(event.Node)))
	}
	if event.Message != "" {
		attrs = append(attrs, slog.String("message", event.Message))
	}

	// Add type-specific attributes
	switch {
	case event.Frame != nil:
		attrs = append(attrs,
			slog.String("frame", event.Frame.Kind),
			slog.Int("size", event.Frame.Size),
		)
		if event.Frame.Port != 0 {
			attrs = append(attrs, slog.Uint64("port", uint64(event.Frame.Port)))
		}
		if event.Frame.PacketID != 0 {
			attrs = append(attrs, slog.Uint64("packet_id", uint64(event.Frame.PacketID)))
		}
		if event.Frame.From != 0 {
			attrs = append(attrs, slog.Uint64("from", uint64(event.Frame.From)))
		}
		if event.Frame.To != 0 {
			attrs = append(attrs, slog.Uint64("to", uint64(event.Frame.To)))
		}
		if event.Frame.WantAck {
			attrs = append(attrs, slog.Bool("want_ack", true))
		}
		if event.Frame.WantResponse {
			attrs = append(attrs, slog.Bool("want_response", true))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs, slog.String("error", event.Error.Detail))
		if event.Error.Code != 0 {
			attrs = append(attrs, slog.Uint64("error_code", uint64(event.Error.Code)))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol", attrs...)
}

// Compile-time interface satisfaction check.
var _ Logger = (*SlogAdapter)(nil)
