package commands

import (
	"fmt"
	"io"

	"github.com/meshlink-protocol/meshlink-go/pkg/log"
	"github.com/meshlink-protocol/meshlink-go/pkg/mesh"
)

// RunView reads the log file and writes matching events to w in a
// human-readable format.
func RunView(path string, filter EventFilter, w io.Writer) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return err
	}
	defer reader.Close()

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		formatEvent(w, event)
	}
}

// formatEvent writes a human-readable representation of the event to w.
func formatEvent(w io.Writer, event log.Event) {
	// Header line: timestamp [session:id] DIRECTION LAYER Type
	ts := event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z")
	session := shortenSessionID(event.SessionID)

	var typeLabel string
	switch {
	case event.Frame != nil:
		typeLabel = event.Frame.Kind
	case event.StateChange != nil:
		typeLabel = "State"
	case event.Error != nil:
		typeLabel = "Error"
	case event.Category == log.CategoryControl:
		typeLabel = "Control"
	default:
		typeLabel = "Unknown"
	}

	fmt.Fprintf(w, "%s [session:%s] %-3s %s %s\n",
		ts, session, event.Direction.String(), event.Layer.String(), typeLabel)

	switch {
	case event.Frame != nil:
		formatFrameDetails(w, event.Frame)
	case event.StateChange != nil:
		formatStateChangeDetails(w, event.StateChange)
	case event.Error != nil:
		formatErrorDetails(w, event.Error)
	}
	if event.Message != "" {
		fmt.Fprintf(w, "  Message: %s\n", event.Message)
	}

	fmt.Fprintln(w) // Blank line between events
}

// shortenSessionID returns the first 8 characters of the session ID.
func shortenSessionID(id string) string {
	if len(id) >= 8 {
		return id[:8]
	}
	return id
}

func formatFrameDetails(w io.Writer, frame *log.FrameEvent) {
	if frame.PacketID != 0 || frame.From != 0 || frame.To != 0 {
		fmt.Fprintf(w, "  Packet: id=%d from=!%08x to=!%08x\n", frame.PacketID, frame.From, frame.To)
	}
	if frame.Port != 0 {
		fmt.Fprintf(w, "  Port: %s (%d)\n", mesh.PortNum(frame.Port), frame.Port)
	}
	if frame.Size > 0 {
		fmt.Fprintf(w, "  Size: %d bytes\n", frame.Size)
	}
	if frame.WantAck || frame.WantResponse {
		fmt.Fprintf(w, "  Flags: wantAck=%v wantResponse=%v\n", frame.WantAck, frame.WantResponse)
	}
}

func formatStateChangeDetails(w io.Writer, sc *log.StateChangeEvent) {
	fmt.Fprintf(w, "  %s: %s -> %s", sc.Entity.String(), sc.OldState, sc.NewState)
	if sc.Reason != "" {
		fmt.Fprintf(w, " (%s)", sc.Reason)
	}
	fmt.Fprintln(w)
}

func formatErrorDetails(w io.Writer, e *log.ErrorEventData) {
	if e.Code != 0 {
		fmt.Fprintf(w, "  Code: %d\n", e.Code)
	}
	fmt.Fprintf(w, "  Detail: %s\n", e.Detail)
}
