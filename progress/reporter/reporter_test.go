package reporter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/konveyor/progress-report/progress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(sec int) time.Time {
	return time.Date(2022, time.January, 1, 9, 0, sec, 0, time.UTC)
}

func TestJSONReporter(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewJSONReporter(&buf)

	event := progress.Event{
		Stage:   progress.StageRunning,
		Current: 10,
		Total:   45,
		Message: "copying",
	}

	reporter.Report(event)

	// Parse the JSON output
	var decoded progress.Event
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) == 0 {
		t.Fatal("Expected at least one line of output")
	}
	if err := json.Unmarshal([]byte(lines[0]), &decoded); err != nil {
		t.Fatalf("Failed to decode JSON: %v", err)
	}

	// Verify fields
	if decoded.Stage != progress.StageRunning {
		t.Errorf("Expected stage %s, got %s", progress.StageRunning, decoded.Stage)
	}
	if decoded.Current != 10 {
		t.Errorf("Expected current 10, got %d", decoded.Current)
	}
	if decoded.Total != 45 {
		t.Errorf("Expected total 45, got %d", decoded.Total)
	}
	if decoded.Percent != 22 {
		t.Errorf("Expected percent 22, got %d", decoded.Percent)
	}
	if decoded.Message != "copying" {
		t.Errorf("Expected message 'copying', got '%s'", decoded.Message)
	}
	if decoded.Final {
		t.Error("Expected final to be unset")
	}
}

func TestJSONReporterMultipleEvents(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewJSONReporter(&buf)

	// Report multiple events
	for i := 0; i < 3; i++ {
		reporter.Report(progress.Event{
			Stage:   progress.StageRunning,
			Current: i + 1,
			Total:   3,
		})
	}

	// Each event should be on a separate line
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Errorf("Expected 3 JSON lines, got %d", len(lines))
	}

	// Verify each line is valid JSON
	for i, line := range lines {
		var event progress.Event
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			t.Errorf("Line %d is not valid JSON: %v", i, err)
		}
	}
}

func TestJSONReporterFinal(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewJSONReporter(&buf)

	reporter.Report(progress.Event{
		Timestamp: at(9),
		Stage:     progress.StageComplete,
		Current:   10,
		Total:     10,
		Final:     true,
	})

	assert.JSONEq(t,
		`{"timestamp":"2022-01-01T09:00:09Z","stage":"complete","current":10,"total":10,"percent":100,"final":true}`,
		strings.TrimSpace(buf.String()))
}

func TestTextReporter(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewTextReporter(&buf)

	event := progress.Event{
		Timestamp: at(3),
		Stage:     progress.StageRunning,
		Current:   10,
		Total:     45,
	}

	reporter.Report(event)
	assert.Equal(t, "[09:00:03] 10/45 (22%) \n", buf.String())

	// Test with message
	buf.Reset()
	event.Message = "copying"
	reporter.Report(event)
	assert.Equal(t, "[09:00:03] 10/45 (22%) copying\n", buf.String())
}

func TestTextReporterStages(t *testing.T) {
	tests := []struct {
		name     string
		event    progress.Event
		expected string
	}{
		{
			name: "init stage",
			event: progress.Event{
				Timestamp: at(0),
				Stage:     progress.StageInit,
				Message:   "copy files",
				Total:     10,
			},
			expected: "[09:00:00] Starting: copy files (10 items)\n",
		},
		{
			name: "running without a total",
			event: progress.Event{
				Timestamp: at(1),
				Stage:     progress.StageRunning,
				Message:   "scanning",
			},
			expected: "[09:00:01] scanning\n",
		},
		{
			name: "running without a total or message",
			event: progress.Event{
				Timestamp: at(1),
				Stage:     progress.StageRunning,
			},
			expected: "",
		},
		{
			name: "overshoot",
			event: progress.Event{
				Timestamp: at(5),
				Stage:     progress.StageRunning,
				Current:   11,
				Total:     10,
				Message:   "text",
			},
			expected: "[09:00:05] 11/10 (110%) text\n",
		},
		{
			name: "complete stage",
			event: progress.Event{
				Timestamp: at(9),
				Stage:     progress.StageComplete,
				Current:   10,
				Total:     10,
				Message:   "done",
			},
			expected: "[09:00:09] Complete: 10/10 (100%) done\n",
		},
		{
			name: "complete stage of an empty task",
			event: progress.Event{
				Timestamp: at(9),
				Stage:     progress.StageComplete,
			},
			expected: "[09:00:09] Complete: 0/0 (100%) \n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			reporter := NewTextReporter(&buf)
			reporter.Report(tt.event)

			assert.Equal(t, tt.expected, buf.String())
		})
	}
}

func TestETAReporter(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewETAReporter(&buf)

	reporter.Report(progress.Event{Timestamp: at(0), Stage: progress.StageInit, Total: 10})
	reporter.Report(progress.Event{Timestamp: at(3), Stage: progress.StageRunning, Current: 5, Total: 10, Message: "text"})
	// Within the default interval of the previous line.
	reporter.Report(progress.Event{Timestamp: at(4), Stage: progress.StageRunning, Current: 6, Total: 10, Message: "text"})
	reporter.Report(progress.Event{Timestamp: at(9), Stage: progress.StageComplete, Current: 10, Total: 10, Message: "done"})

	assert.Equal(t,
		"\r0:00:03 + 0:00:03 -> Jan 01 09:00:06, 5/10 = 50% text"+
			"\r0:00:09 + 0:00:00 -> Jan 01 09:00:09, 10/10 = 100% done\n",
		buf.String())
}

func TestETAReporterInitMessage(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewETAReporter(&buf, progress.WithMinInterval(0))

	reporter.Report(progress.Event{Timestamp: at(0), Stage: progress.StageInit, Total: 4, Message: "copy files"})
	reporter.Report(progress.Event{Timestamp: at(0), Stage: progress.StageRunning, Total: 4})

	assert.Equal(t, "copy files\n\r0:00:00, 0/4 = 0% ", buf.String())
}

func TestETAReporterRestartsOnNewTotal(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewETAReporter(&buf)

	reporter.Report(progress.Event{Timestamp: at(0), Stage: progress.StageInit, Total: 10})
	reporter.Report(progress.Event{Timestamp: at(3), Stage: progress.StageRunning, Current: 5, Total: 10, Message: "text"})
	reporter.Report(progress.Event{Timestamp: at(5), Stage: progress.StageRunning, Current: 1, Total: 4, Message: "next"})

	assert.Equal(t,
		"\r0:00:03 + 0:00:03 -> Jan 01 09:00:06, 5/10 = 50% text\n"+
			"\r0:00:00 + 0:00:00 -> Jan 01 09:00:05, 1/4 = 25% next",
		buf.String())
}

func TestETAReporterTerminatesOpenLineOnInit(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewETAReporter(&buf)

	reporter.Report(progress.Event{Timestamp: at(0), Stage: progress.StageInit, Total: 10})
	reporter.Report(progress.Event{Timestamp: at(3), Stage: progress.StageRunning, Current: 5, Total: 10, Message: "text"})
	reporter.Report(progress.Event{Timestamp: at(4), Stage: progress.StageInit, Total: 2, Message: "second"})

	assert.Equal(t,
		"\r0:00:03 + 0:00:03 -> Jan 01 09:00:06, 5/10 = 50% text\nsecond\n",
		buf.String())
}

func TestETAReporterFinalEvent(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewETAReporter(&buf)

	reporter.Report(progress.Event{Timestamp: at(0), Stage: progress.StageInit, Total: 10})
	reporter.Report(progress.Event{Timestamp: at(1), Stage: progress.StageRunning, Current: 2, Total: 10, Message: "text"})
	reporter.Report(progress.Event{Timestamp: at(2), Stage: progress.StageRunning, Current: 3, Total: 10, Message: "text", Final: true})

	out := buf.String()
	require.True(t, strings.HasSuffix(out, "\n"))
	assert.Equal(t, 1, strings.Count(out, "\n"))
	assert.Contains(t, out, "\r0:00:02 + 0:00:04 -> Jan 01 09:00:06, 3/10 = 30% text\n")

	// A report after the final one starts a new line from its own timestamp.
	buf.Reset()
	reporter.Report(progress.Event{Timestamp: at(7), Stage: progress.StageRunning, Current: 0, Total: 10, Message: "again"})
	assert.Equal(t, "\r0:00:00, 0/10 = 0% again", buf.String())
}

func TestETAReporterWithoutInit(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewETAReporter(&buf)

	reporter.Report(progress.Event{Timestamp: at(0), Stage: progress.StageRunning, Current: 0, Total: 3, Message: "a"})

	assert.Equal(t, "\r0:00:00, 0/3 = 0% a", buf.String())
}

func TestEventTimestamp(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewJSONReporter(&buf)

	event := progress.Event{
		Stage: progress.StageInit,
		// No timestamp set
	}

	reporter.Report(event)

	var decoded progress.Event
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	json.Unmarshal([]byte(lines[0]), &decoded)

	// Reporter should set timestamp if not provided
	if decoded.Timestamp.IsZero() {
		t.Error("Expected timestamp to be set by reporter")
	}

	// Timestamp should be recent (within last second)
	if time.Since(decoded.Timestamp) > time.Second {
		t.Errorf("Timestamp is too old: %v", decoded.Timestamp)
	}
}

func TestEventMetadata(t *testing.T) {
	var buf bytes.Buffer
	reporter := NewJSONReporter(&buf)

	event := progress.Event{
		Stage: progress.StageRunning,
		Metadata: map[string]interface{}{
			"file":     "a.txt",
			"skipped":  true,
			"duration": 1.5,
		},
	}

	reporter.Report(event)

	var decoded progress.Event
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	json.Unmarshal([]byte(lines[0]), &decoded)

	if decoded.Metadata["file"] != "a.txt" {
		t.Errorf("Expected file 'a.txt', got %v", decoded.Metadata["file"])
	}
	if decoded.Metadata["skipped"] != true {
		t.Errorf("Expected skipped true, got %v", decoded.Metadata["skipped"])
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name    string
		event   progress.Event
		percent int
	}{
		{"calculated", progress.Event{Current: 1, Total: 3}, 33},
		{"kept when set", progress.Event{Current: 1, Total: 3, Percent: 40}, 40},
		{"unknown total", progress.Event{Current: 4}, 0},
		{"complete without total", progress.Event{Stage: progress.StageComplete}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := tt.event
			normalize(&e)
			assert.Equal(t, tt.percent, e.Percent)
			assert.False(t, e.Timestamp.IsZero())
		})
	}
}

func BenchmarkJSONReporter(b *testing.B) {
	var buf bytes.Buffer
	reporter := NewJSONReporter(&buf)

	event := progress.Event{
		Stage:   progress.StageRunning,
		Current: 10,
		Total:   45,
		Message: "copying",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reporter.Report(event)
	}
}

func BenchmarkTextReporter(b *testing.B) {
	var buf bytes.Buffer
	reporter := NewTextReporter(&buf)

	event := progress.Event{
		Stage:   progress.StageRunning,
		Current: 10,
		Total:   45,
		Message: "copying",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reporter.Report(event)
	}
}

func BenchmarkETAReporter(b *testing.B) {
	var buf bytes.Buffer
	reporter := NewETAReporter(&buf, progress.WithMinInterval(0))
	start := time.Date(2022, time.January, 1, 9, 0, 0, 0, time.UTC)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		reporter.Report(progress.Event{
			Timestamp: start.Add(time.Duration(i) * time.Millisecond),
			Stage:     progress.StageRunning,
			Current:   i % 100,
			Total:     100,
			Message:   "copying",
		})
	}
}
