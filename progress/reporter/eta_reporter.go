package reporter

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/konveyor/progress-report/progress"
)

// ETAReporter renders events as the rewritable status line of
// progress.LineReporter.
//
// A StageInit event starts a new task line for event.Total items. Running
// events with a different Total, or arriving after a final event, start a
// new line as well. Event timestamps drive the line's clock, so elapsed and
// remaining times reflect when events happened, not when they were delivered.
//
// Example output:
//
//	0:00:03 + 0:00:03 -> Jan 01 09:00:06, 5/10 = 50% copying
//
// ETAReporter is safe for concurrent use.
type ETAReporter struct {
	writer io.Writer
	opts   []progress.LineOption

	mu   sync.Mutex
	line *progress.LineReporter
	// open is set while the cursor sits at the end of an unterminated line.
	open bool
	done bool
	at   time.Time
}

// NewETAReporter creates a status line reporter writing to w. The options
// are applied to every LineReporter it creates; the writer and clock options
// are always overridden.
func NewETAReporter(w io.Writer, opts ...progress.LineOption) *ETAReporter {
	return &ETAReporter{
		writer: w,
		opts:   opts,
	}
}

// Report renders one event.
func (e *ETAReporter) Report(event progress.Event) {
	e.mu.Lock()
	defer e.mu.Unlock()

	normalize(&event)
	e.at = event.Timestamp

	switch event.Stage {
	case progress.StageInit:
		e.terminate()
		if event.Message != "" {
			fmt.Fprintf(e.writer, "%s\n", event.Message)
		}
		e.start(event.Total)
	case progress.StageComplete:
		e.ensure(event.Total)
		e.line.Finish(event.Current, event.Message)
		e.open = false
		e.done = true
	default:
		e.ensure(event.Total)
		e.line.Report(event.Current, event.Message, event.Final)
		e.open = !event.Final
		e.done = event.Final
	}
}

// ensure makes sure a line for total items is ready to take reports.
func (e *ETAReporter) ensure(total int) {
	if e.line != nil && !e.done && e.line.Total() == total {
		return
	}
	e.terminate()
	e.start(total)
}

func (e *ETAReporter) start(total int) {
	opts := append([]progress.LineOption{}, e.opts...)
	opts = append(opts,
		progress.WithWriter(e.writer),
		progress.WithClock(progress.ClockFunc(func() time.Time { return e.at })),
	)
	e.line = progress.NewLineReporter(total, opts...)
	e.open = false
	e.done = false
}

// terminate ends a line that is still being rewritten so the next output
// starts on a fresh line.
func (e *ETAReporter) terminate() {
	if e.open {
		fmt.Fprint(e.writer, "\n")
		e.open = false
	}
}
