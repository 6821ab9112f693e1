package reporter

import (
	"fmt"
	"io"
	"sync"

	"github.com/konveyor/progress-report/progress"
)

// TextReporter writes progress events as human-readable text with timestamps.
//
// Unlike ETAReporter it never rewrites a line, which makes it suitable for
// log files and pipes.
//
// Example output:
//
//	[09:00:00] Starting: copy files (10 items)
//	[09:00:03] 5/10 (50%) copying
//	[09:00:09] Complete: 10/10 (100%) done
type TextReporter struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewTextReporter creates a new text progress reporter that writes to w.
func NewTextReporter(w io.Writer) *TextReporter {
	return &TextReporter{
		writer: w,
	}
}

// Report writes a progress event as a single line of text.
//
// The output format varies by stage:
//   - StageInit: "[HH:MM:SS] Starting: <message> (N items)"
//   - StageRunning: "[HH:MM:SS] X/Y (Z%) <message>"
//   - StageComplete: "[HH:MM:SS] Complete: X/Y (Z%) <message>"
//
// This method is safe for concurrent use.
func (t *TextReporter) Report(event progress.Event) {
	t.mu.Lock()
	defer t.mu.Unlock()

	normalize(&event)
	stamp := event.Timestamp.Format("15:04:05")

	var output string
	switch event.Stage {
	case progress.StageInit:
		output = fmt.Sprintf("[%s] Starting: %s (%d items)\n", stamp, event.Message, event.Total)
	case progress.StageComplete:
		output = fmt.Sprintf("[%s] Complete: %d/%d (%d%%) %s\n",
			stamp, event.Current, event.Total, event.Percent, event.Message)
	default:
		if event.Total > 0 {
			output = fmt.Sprintf("[%s] %d/%d (%d%%) %s\n",
				stamp, event.Current, event.Total, event.Percent, event.Message)
		} else if event.Message != "" {
			output = fmt.Sprintf("[%s] %s\n", stamp, event.Message)
		}
	}

	if output != "" {
		t.writer.Write([]byte(output))
	}
}
