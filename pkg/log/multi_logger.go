package log

// MultiLogger fans each event out to a set of sinks, in order. Nil entries
// are skipped, which makes optional sinks easy to compose.
type MultiLogger struct {
	sinks []Logger
}

// NewMultiLogger combines sinks into one Logger. A typical combination is a
// FileLogger for capture plus a SlogAdapter for live debug output.
func NewMultiLogger(sinks ...Logger) *MultiLogger {
	return &MultiLogger{sinks: sinks}
}

// Log delivers the event to every sink.
func (m *MultiLogger) Log(event Event) {
	for _, s := range m.sinks {
		if s != nil {
			s.Log(event)
		}
	}
}

var _ Logger = (*MultiLogger)(nil)
