// Package commands implements the meshlink-log CLI commands.
package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/meshlink-protocol/meshlink-go/pkg/log"
)

// EventFilter is the parsed event selection shared by the commands.
type EventFilter = log.Filter

// FilterOptions holds the raw flag values before parsing.
type FilterOptions struct {
	SessionID string
	Direction string
	Layer     string
	Category  string
	Node      string
	TimeStart string
	TimeEnd   string
}

// ParseFilter converts raw flag values into a log.Filter.
func ParseFilter(opts FilterOptions) (EventFilter, error) {
	filter := EventFilter{SessionID: opts.SessionID}

	if opts.Direction != "" {
		d, err := ParseDirectionFlag(opts.Direction)
		if err != nil {
			return filter, err
		}
		filter.Direction = &d
	}
	if opts.Layer != "" {
		l, err := ParseLayerFlag(opts.Layer)
		if err != nil {
			return filter, err
		}
		filter.Layer = &l
	}
	if opts.Category != "" {
		c, err := ParseCategoryFlag(opts.Category)
		if err != nil {
			return filter, err
		}
		filter.Category = &c
	}
	if opts.Node != "" {
		n, err := strconv.ParseUint(strings.TrimPrefix(opts.Node, "!"), 0, 32)
		if err != nil {
			return filter, fmt.Errorf("invalid node number: %q", opts.Node)
		}
		num := uint32(n)
		filter.Node = &num
	}
	if opts.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeStart)
		if err != nil {
			return filter, fmt.Errorf("invalid time-start: %w", err)
		}
		filter.TimeStart = &t
	}
	if opts.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, opts.TimeEnd)
		if err != nil {
			return filter, fmt.Errorf("invalid time-end: %w", err)
		}
		filter.TimeEnd = &t
	}

	return filter, nil
}

// ParseDirectionFlag parses a direction flag value.
func ParseDirectionFlag(s string) (log.Direction, error) {
	switch strings.ToLower(s) {
	case "rx", "in":
		return log.DirectionRx, nil
	case "tx", "out":
		return log.DirectionTx, nil
	default:
		return 0, fmt.Errorf("invalid direction %q (use: rx, tx)", s)
	}
}

// ParseLayerFlag parses a layer flag value.
func ParseLayerFlag(s string) (log.Layer, error) {
	switch strings.ToLower(s) {
	case "transport":
		return log.LayerTransport, nil
	case "frame":
		return log.LayerFrame, nil
	case "session":
		return log.LayerSession, nil
	default:
		return 0, fmt.Errorf("invalid layer %q (use: transport, frame, session)", s)
	}
}

// ParseCategoryFlag parses a category flag value.
func ParseCategoryFlag(s string) (log.Category, error) {
	switch strings.ToLower(s) {
	case "frame":
		return log.CategoryFrame, nil
	case "control":
		return log.CategoryControl, nil
	case "state":
		return log.CategoryState, nil
	case "error":
		return log.CategoryError, nil
	default:
		return 0, fmt.Errorf("invalid category %q (use: frame, control, state, error)", s)
	}
}

// RunFilter reads path, keeps matching events, and writes them in the same
// CBOR format to output.
func RunFilter(path string, filter EventFilter, output string) error {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return err
	}
	defer reader.Close()

	out, err := log.NewFileLogger(output)
	if err != nil {
		return err
	}
	defer out.Close()

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		out.Log(event)
		count++
	}

	fmt.Printf("Wrote %d event(s) to %s\n", count, output)
	return nil
}
