package collector

import (
	"math/rand"

	"github.com/konveyor/progress-report/progress"
)

// collector is a pass-through collector that forwards every event.
//
// Use it when the producer already controls its own rate, or when every
// event matters (for example a JSON event log).
type collector struct {
	id int
	ch chan progress.Event
}

// New creates a new pass-through collector.
//
// The collector has a buffered channel (capacity 100). When the buffer is
// full ordinary events are dropped, while events for which progress.MustEmit
// holds wait for room, so a task's last line is never lost. Those events
// block until Progress reads them; report them only while the collector is
// subscribed.
//
// Example:
//
//	col := collector.New()
//	prog, _ := progress.New(
//	    progress.WithCollectors(col),
//	)
//	col.Report(progress.Event{Stage: progress.StageInit, Total: 10})
func New() progress.Collector {
	return &collector{
		id: rand.Int(),
		ch: make(chan progress.Event, 100),
	}
}

// ID returns the unique identifier for this collector.
func (c *collector) ID() int {
	return c.id
}

// CollectChannel returns the channel that Progress reads events from.
func (c *collector) CollectChannel() chan progress.Event {
	return c.ch
}

// Report accepts an event and forwards it to the collection channel.
func (c *collector) Report(event progress.Event) {
	send(c.ch, event)
}

// send drops an event on a full channel unless it must be emitted, in which
// case it waits for room.
func send(ch chan progress.Event, event progress.Event) {
	if progress.MustEmit(event.Current, event.Total, event.Final) {
		ch <- event
		return
	}
	select {
	case ch <- event:
	default:
		// Channel full, drop the event
	}
}
