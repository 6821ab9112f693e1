package collector

import (
	"math/rand"
	"sync"
	"time"

	"github.com/konveyor/progress-report/progress"
)

// ThrottledCollector is a collector that rate limits high-frequency events
// before they reach the Progress hub.
//
// It uses the same rules as LineReporter: the first event, an event with
// Current equal to Total and a Final event always pass, other events pass
// only when the interval has elapsed since the last forwarded one.
//
// Example usage:
//
//	throttled := collector.NewThrottledCollector(progress.StageRunning)
//	prog, _ := progress.New(
//	    progress.WithCollectors(throttled),
//	    progress.WithReporters(reporter.NewTextReporter(os.Stderr)),
//	)
//
//	for i := 0; i <= 10000; i++ {
//	    throttled.Report(progress.Event{Current: i, Total: 10000})
//	}
//
// ThrottledCollector is safe for concurrent use.
type ThrottledCollector struct {
	// stageName is the default stage for events without one
	stageName progress.Stage

	throttle    *progress.Throttle
	clock       progress.Clock
	reportMutex sync.Mutex

	streamChan chan progress.Event
	id         int
}

// ID returns the unique identifier for this collector.
func (t *ThrottledCollector) ID() int {
	return t.id
}

// NewThrottledCollector creates a throttled collector with the default
// LineReporter interval.
func NewThrottledCollector(stageName progress.Stage) *ThrottledCollector {
	return NewThrottledCollectorWithInterval(stageName, progress.DefaultMinInterval)
}

// NewThrottledCollectorWithInterval creates a throttled collector with a
// custom interval. A zero interval forwards every event.
func NewThrottledCollectorWithInterval(stageName progress.Stage, interval time.Duration) *ThrottledCollector {
	return &ThrottledCollector{
		stageName:  stageName,
		throttle:   progress.NewThrottle(interval),
		clock:      progress.SystemClock,
		id:         rand.Int(),
		streamChan: make(chan progress.Event, 100),
	}
}

// Report accepts a progress event and forwards it when the throttle allows.
// Final events and events reaching the total wait for room in the channel
// instead of being dropped.
//
// Events without a Stage get the collector's default stage. Events without a
// Timestamp are stamped with the time the throttle decision was made, so
// downstream reporters see when the event happened rather than when it was
// delivered.
func (t *ThrottledCollector) Report(event progress.Event) {
	if event.Stage == "" {
		event.Stage = t.stageName
	}

	t.reportMutex.Lock()
	now := event.Timestamp
	if now.IsZero() {
		now = t.clock.Now()
		event.Timestamp = now
	}
	shouldReport := t.throttle.Allow(now, event.Current, event.Total, event.Final)
	t.reportMutex.Unlock()

	if !shouldReport {
		return
	}
	send(t.streamChan, event)
}

// Reset makes the collector forward the next event unconditionally, as when
// reusing it for a new task.
func (t *ThrottledCollector) Reset() {
	t.reportMutex.Lock()
	t.throttle.Reset()
	t.reportMutex.Unlock()
}

// CollectChannel returns the channel that Progress reads events from.
func (t *ThrottledCollector) CollectChannel() chan progress.Event {
	return t.streamChan
}
