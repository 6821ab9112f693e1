package progress

import (
	"time"
)

// ProgressInterface defines the contract for managing collector subscriptions.
type ProgressInterface interface {
	// Subscribe starts receiving events from a collector.
	Subscribe(collector Collector)

	// Unsubscribe stops receiving events from a collector.
	Unsubscribe(collector Collector)
}

// Reporter is the interface for outputting progress events.
//
// Reporters receive events from Progress and render them:
//   - ETAReporter: the rewritable elapsed/remaining/finish status line
//   - TextReporter: timestamped human readable lines
//   - JSONReporter: newline delimited JSON
//   - NoopReporter: discards events
//
// Progress feeds every reporter from a single worker goroutine, so a
// reporter sees its events one at a time and in order.
type Reporter interface {
	// Report outputs a progress event.
	Report(event Event)
}

// Collector gathers progress events from a producer and exposes them on a
// channel that Progress subscribes to.
type Collector interface {
	Reporter

	// ID returns a unique identifier for this collector.
	ID() int

	// CollectChannel returns the channel from which Progress reads events.
	CollectChannel() chan Event
}

// Event represents a progress update at a specific point in time.
type Event struct {
	// Timestamp is when the event occurred. Reporters fill it in when zero.
	Timestamp time.Time `json:"timestamp"`

	// Stage indicates which phase of the task this event relates to.
	Stage Stage `json:"stage"`

	// Message is the caller supplied annotation shown after the percentage.
	Message string `json:"message,omitempty"`

	// Current is the number of items done so far. It may exceed Total.
	Current int `json:"current,omitempty"`

	// Total is the number of items the task will process.
	Total int `json:"total,omitempty"`

	// Percent is the completion percentage, calculated from Current and
	// Total when not set.
	Percent int `json:"percent,omitempty"`

	// Final marks the last report of a task. It forces emission and
	// terminates the status line.
	Final bool `json:"final,omitempty"`

	// Metadata contains additional stage-specific information.
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// Stage represents a phase of a tracked task.
type Stage string

const (
	// StageInit indicates the task is starting. Total is usually known here.
	StageInit Stage = "init"

	// StageRunning indicates items are being processed.
	StageRunning Stage = "running"

	// StageComplete indicates the task finished.
	StageComplete Stage = "complete"
)
