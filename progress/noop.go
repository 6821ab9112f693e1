package progress

// NoopReporter is a Reporter that discards all events.
//
// Progress uses it when New is called without any reporters.
type NoopReporter struct{}

// NewNoopReporter creates a new no-op progress reporter.
func NewNoopReporter() *NoopReporter {
	return &NoopReporter{}
}

// Report discards the event.
func (n *NoopReporter) Report(event Event) {
}
