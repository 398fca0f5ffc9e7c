package log

import (
	"io"
	"os"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Filter selects a subset of captured events. The zero value matches
// everything; each set field narrows the selection.
type Filter struct {
	// SessionID matches events from one session.
	SessionID string

	// Direction matches the traffic direction.
	Direction *Direction

	// Layer matches the stack layer the event was recorded at.
	Layer *Layer

	// Category matches the event category.
	Category *Category

	// Node matches events involving the given node number.
	Node *uint32

	// TimeStart includes events at or after this instant.
	TimeStart *time.Time

	// TimeEnd includes events strictly before this instant.
	TimeEnd *time.Time
}

func (f *Filter) matches(e Event) bool {
	switch {
	case f.SessionID != "" && e.SessionID != f.SessionID:
		return false
	case f.Direction != nil && e.Direction != *f.Direction:
		return false
	case f.Layer != nil && e.Layer != *f.Layer:
		return false
	case f.Category != nil && e.Category != *f.Category:
		return false
	case f.Node != nil && e.Node != *f.Node:
		return false
	}
	if f.TimeStart != nil && e.Timestamp.Before(*f.TimeStart) {
		return false
	}
	if f.TimeEnd != nil && !e.Timestamp.Before(*f.TimeEnd) {
		return false
	}
	return true
}

// Reader streams events out of a capture file, skipping records the filter
// rejects. Capture files can be large, so events are decoded one at a time.
type Reader struct {
	src    io.Closer
	dec    *cbor.Decoder
	filter Filter
}

// NewReader opens a capture file for reading every event.
func NewReader(path string) (*Reader, error) {
	return NewFilteredReader(path, Filter{})
}

// NewFilteredReader opens a capture file and yields only matching events.
func NewFilteredReader(path string, filter Filter) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &Reader{src: f, dec: NewDecoder(f), filter: filter}, nil
}

// Next returns the next matching event, or io.EOF at the end of the capture.
func (r *Reader) Next() (Event, error) {
	for {
		var e Event
		if err := r.dec.Decode(&e); err != nil {
			return Event{}, err
		}
		if r.filter.matches(e) {
			return e, nil
		}
	}
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	return r.src.Close()
}
