package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/konveyor/progress-report/progress"
)

// JSONReporter writes progress events as newline-delimited JSON (NDJSON).
//
// Example output:
//
//	{"timestamp":"2022-01-01T09:00:00Z","stage":"init","total":10}
//	{"timestamp":"2022-01-01T09:00:03Z","stage":"running","message":"text","current":5,"total":10,"percent":50}
//	{"timestamp":"2022-01-01T09:00:09Z","stage":"complete","current":10,"total":10,"percent":100,"final":true}
//
// The schema of a line can be generated with the demo's --event-schema flag.
type JSONReporter struct {
	writer io.Writer
	mu     sync.Mutex
}

// NewJSONReporter creates a new JSON progress reporter that writes to w.
func NewJSONReporter(w io.Writer) *JSONReporter {
	return &JSONReporter{
		writer: w,
	}
}

// Report writes a progress event as a JSON line. Marshaling errors drop the
// event.
//
// This method is safe for concurrent use.
func (j *JSONReporter) Report(event progress.Event) {
	j.mu.Lock()
	defer j.mu.Unlock()

	normalize(&event)

	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	fmt.Fprintln(j.writer, string(data))
}
