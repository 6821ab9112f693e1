package progress

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-logr/logr"
)

// DefaultMinInterval is the default minimum gap between two emitted lines.
const DefaultMinInterval = 2 * time.Second

// LineReporter prints a single rewritable status line for a task of known
// size.
//
// Each emitted line starts with a carriage return so it overwrites the
// previous one. While some but not all items are done the line carries a
// linear estimate of the remaining time and the projected finish time:
//
//	0:00:03 + 0:00:03 -> Jan 01 09:00:06, 5/10 = 50% text
//
// Before the first item and after overshooting the total it only shows the
// elapsed time:
//
//	1:00:00, 11/10 = 110% text
//
// Lines are rate limited by a Throttle; the first report, a report with
// current equal to total and a final report are always printed. A final
// report ends the line with a newline.
//
// LineReporter is not safe for concurrent use.
type LineReporter struct {
	total    int
	start    time.Time
	throttle *Throttle
	// lastLen is the length in characters of the last emitted line,
	// without its newline.
	lastLen int

	writer io.Writer
	clock  Clock
	log    logr.Logger
}

// LineOption configures a LineReporter.
type LineOption func(r *LineReporter)

// WithMinInterval sets the minimum gap between two emitted lines.
func WithMinInterval(interval time.Duration) LineOption {
	return func(r *LineReporter) {
		r.throttle.Interval = interval
	}
}

// WithWriter sets where lines are written. Defaults to os.Stdout.
func WithWriter(w io.Writer) LineOption {
	return func(r *LineReporter) {
		r.writer = w
	}
}

// WithClock sets the time source. Defaults to SystemClock.
func WithClock(clock Clock) LineOption {
	return func(r *LineReporter) {
		r.clock = clock
	}
}

// WithLogger sets the logger used for skipped lines and write failures.
func WithLogger(log logr.Logger) LineOption {
	return func(r *LineReporter) {
		r.log = log
	}
}

// NewLineReporter creates a reporter for a task of total items. The task is
// considered started when NewLineReporter returns.
func NewLineReporter(total int, opts ...LineOption) *LineReporter {
	r := &LineReporter{
		total:    total,
		throttle: NewThrottle(DefaultMinInterval),
		writer:   os.Stdout,
		clock:    SystemClock,
		log:      logr.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.start = r.clock.Now()
	return r
}

// Total returns the number of items the task was created with.
func (r *LineReporter) Total() int {
	return r.total
}

// Started returns when the task started.
func (r *LineReporter) Started() time.Time {
	return r.start
}

// Print reports current items done with an annotation. It is Report with
// final set to false.
func (r *LineReporter) Print(current int, text string) {
	r.Report(current, text, false)
}

// Finish prints the last line of the task and terminates it with a newline.
func (r *LineReporter) Finish(current int, text string) {
	r.Report(current, text, true)
}

// Report prints the status line for current items done. Reports arriving
// within the minimum interval of the previous line are dropped unless final
// is set or current equals the total.
func (r *LineReporter) Report(current int, text string, final bool) {
	now := r.clock.Now()
	if !r.throttle.Allow(now, current, r.total, final) {
		r.log.V(5).Info("skipping progress line", "current", current, "total", r.total)
		return
	}

	line := r.format(now, current, text)
	width := utf8.RuneCountInString(line)
	if pad := r.lastLen - width; pad > 0 {
		line += strings.Repeat(" ", pad)
		width += pad
	}
	r.lastLen = width

	if final {
		line += "\n"
	}
	if _, err := io.WriteString(r.writer, line); err != nil {
		r.log.Error(err, "unable to write progress line")
	}
}

func (r *LineReporter) format(now time.Time, current int, text string) string {
	elapsed := now.Sub(r.start)
	percent := Percent(current, r.total)

	if !hasEstimate(current, r.total) {
		return fmt.Sprintf("\r%s, %d/%d = %d%% %s",
			FormatDuration(elapsed), current, r.total, percent, text)
	}

	remaining, _ := EstimateRemaining(elapsed, current, r.total)
	finish := now.Add(remaining)
	return fmt.Sprintf("\r%s + %s -> %s, %d/%d = %d%% %s",
		FormatDuration(elapsed.Truncate(time.Second)),
		FormatDuration(remaining.Truncate(time.Second)),
		FormatFinish(finish),
		current, r.total, percent, text)
}
