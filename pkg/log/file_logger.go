package log

import (
	"bufio"
	"os"
	"sync"

	"github.com/fxamacker/cbor/v2"
)

// FileLogger appends protocol events to a capture file as a stream of CBOR
// records. Writes are buffered and flushed on Close. Safe for concurrent use.
type FileLogger struct {
	mu  sync.Mutex
	f   *os.File
	buf *bufio.Writer
	enc *cbor.Encoder
}

// NewFileLogger opens (or creates) a capture file at path. An existing file
// is appended to, so multiple runs share one capture.
func NewFileLogger(path string) (*FileLogger, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	buf := bufio.NewWriter(f)
	return &FileLogger{f: f, buf: buf, enc: NewEncoder(buf)}, nil
}

// Log appends one event. Events logged after Close are discarded. Encoding
// failures are swallowed: capture must never disrupt the session it records.
func (l *FileLogger) Log(event Event) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.f == nil {
		return
	}
	_ = l.enc.Encode(event)
}

// Close flushes buffered records and closes the file. Idempotent.
func (l *FileLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.f == nil {
		return nil
	}
	flushErr := l.buf.Flush()
	closeErr := l.f.Close()
	l.f = nil

	if flushErr != nil {
		return flushErr
	}
	return closeErr
}

var _ Logger = (*FileLogger)(nil)
