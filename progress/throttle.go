package progress

import "time"

// Throttle decides whether a progress report should be emitted.
//
// A report passes when nothing has been emitted yet, when it is final, when
// current equals total, or when at least Interval has elapsed since the last
// emitted report. Dropped reports leave the throttle untouched.
//
// Throttle is not safe for concurrent use.
type Throttle struct {
	// Interval is the minimum gap between two emitted reports.
	Interval time.Duration

	// last is the time of the last emitted report; zero means never.
	last time.Time
}

// NewThrottle returns a throttle that has never emitted.
func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{Interval: interval}
}

// Allow reports whether a report for current/total observed at now should be
// emitted, and records now as the last emission when it should.
func (t *Throttle) Allow(now time.Time, current, total int, final bool) bool {
	// Sub saturates for the zero time, so a fresh throttle always passes.
	skip := now.Sub(t.last) < t.Interval
	if skip && !MustEmit(current, total, final) {
		return false
	}
	t.last = now
	return true
}

// MustEmit reports whether a report can never be throttled or dropped: the
// final report of a task, and the one where current reaches total.
func MustEmit(current, total int, final bool) bool {
	return final || current == total
}

// Last returns the time of the last emitted report, or the zero time.
func (t *Throttle) Last() time.Time {
	return t.last
}

// Reset makes the throttle behave as if it had never emitted.
func (t *Throttle) Reset() {
	t.last = time.Time{}
}
