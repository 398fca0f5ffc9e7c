package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/meshlink-protocol/meshlink-go/pkg/log"
)

// exportRecord is the flat JSON shape of one event.
type exportRecord struct {
	Timestamp string `json:"timestamp"`
	SessionID string `json:"session_id,omitempty"`
	Direction string `json:"direction"`
	Layer     string `json:"layer"`
	Category  string `json:"category"`
	Node      uint32 `json:"node,omitempty"`

	FrameKind    string `json:"frame_kind,omitempty"`
	Port         uint32 `json:"port,omitempty"`
	PacketID     uint32 `json:"packet_id,omitempty"`
	From         uint32 `json:"from,omitempty"`
	To           uint32 `json:"to,omitempty"`
	Size         int    `json:"size,omitempty"`
	WantAck      bool   `json:"want_ack,omitempty"`
	WantResponse bool   `json:"want_response,omitempty"`

	StateEntity string `json:"state_entity,omitempty"`
	OldState    string `json:"old_state,omitempty"`
	NewState    string `json:"new_state,omitempty"`
	Reason      string `json:"reason,omitempty"`

	ErrorDetail string `json:"error_detail,omitempty"`
	Message     string `json:"message,omitempty"`
}

func toRecord(event log.Event) exportRecord {
	rec := exportRecord{
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339Nano),
		SessionID: event.SessionID,
		Direction: event.Direction.String(),
		Layer:     event.Layer.String(),
		Category:  event.Category.String(),
		Node:      event.Node,
		Message:   event.Message,
	}
	if f := event.Frame; f != nil {
		rec.FrameKind = f.Kind
		rec.Port = f.Port
		rec.PacketID = f.PacketID
		rec.From = f.From
		rec.To = f.To
		rec.Size = f.Size
		rec.WantAck = f.WantAck
		rec.WantResponse = f.WantResponse
	}
	if sc := event.StateChange; sc != nil {
		rec.StateEntity = sc.Entity.String()
		rec.OldState = sc.OldState
		rec.NewState = sc.NewState
		rec.Reason = sc.Reason
	}
	if e := event.Error; e != nil {
		rec.ErrorDetail = e.Detail
	}
	return rec
}

// RunExport reads the log file and writes matching events as JSONL or CSV.
// An empty output path writes to stdout.
func RunExport(path string, filter EventFilter, format, output string) error {
	var w io.Writer = os.Stdout
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return err
	}
	defer reader.Close()

	switch format {
	case "jsonl":
		return exportJSONL(reader, w)
	case "csv":
		return exportCSV(reader, w)
	default:
		return fmt.Errorf("unknown format %q (use: jsonl, csv)", format)
	}
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	enc := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := enc.Encode(toRecord(event)); err != nil {
			return err
		}
	}
}

var csvHeader = []string{
	"timestamp", "session_id", "direction", "layer", "category", "node",
	"frame_kind", "port", "packet_id", "from", "to", "size",
	"state_entity", "old_state", "new_state", "error_detail", "message",
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		rec := toRecord(event)
		row := []string{
			rec.Timestamp, rec.SessionID, rec.Direction, rec.Layer, rec.Category,
			emptyIfZero(rec.Node),
			rec.FrameKind, emptyIfZero(rec.Port), emptyIfZero(rec.PacketID),
			emptyIfZero(rec.From), emptyIfZero(rec.To),
			emptyIfZeroInt(rec.Size),
			rec.StateEntity, rec.OldState, rec.NewState, rec.ErrorDetail, rec.Message,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
}

func emptyIfZero(v uint32) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatUint(uint64(v), 10)
}

func emptyIfZeroInt(v int) string {
	if v == 0 {
		return ""
	}
	return strconv.Itoa(v)
}
