package log

// Logger receives protocol events as the session produces them. Log is
// called from the session's hot paths, so implementations must be safe for
// concurrent use and must not block.
type Logger interface {
	Log(event Event)
}

// NoopLogger drops every event. It is the default when no event capture is
// configured; the zero value is ready to use.
type NoopLogger struct{}

func (NoopLogger) Log(Event) {}

var _ Logger = NoopLogger{}
