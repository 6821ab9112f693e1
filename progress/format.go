package progress

import (
	"fmt"
	"time"
)

// FinishLayout is the time layout of the projected finish timestamp.
const FinishLayout = "Jan 02 15:04:05"

const (
	microsPerSecond = int64(time.Second / time.Microsecond)
	microsPerDay    = 24 * 60 * 60 * microsPerSecond
)

// FormatDuration renders d as free-form hours, minutes and seconds:
//
//	3s             -> 0:00:03
//	1h             -> 1:00:00
//	26h3m4s        -> 1 day, 2:03:04
//	1.5s           -> 0:00:01.500000
//	-1s            -> -1 day, 23:59:59
//
// Hours are not zero padded, sub-second parts are shown in microseconds only
// when present, and whole days are split off with floor semantics so the
// clock part is never negative.
func FormatDuration(d time.Duration) string {
	us := int64(d / time.Microsecond)
	if d < 0 && d%time.Microsecond != 0 {
		us--
	}

	days := us / microsPerDay
	rem := us % microsPerDay
	if rem < 0 {
		days--
		rem += microsPerDay
	}

	secs := rem / microsPerSecond
	micros := rem % microsPerSecond

	out := fmt.Sprintf("%d:%02d:%02d", secs/3600, secs%3600/60, secs%60)
	if micros != 0 {
		out += fmt.Sprintf(".%06d", micros)
	}
	if days != 0 {
		plural := "s"
		if days == 1 || days == -1 {
			plural = ""
		}
		out = fmt.Sprintf("%d day%s, %s", days, plural, out)
	}
	return out
}

// FormatFinish renders a projected finish time as abbreviated month, day and
// 24-hour clock, e.g. "Jan 01 09:00:06". Sub-second parts are dropped.
func FormatFinish(t time.Time) string {
	return t.Format(FinishLayout)
}
