package reporter

import (
	"time"

	"github.com/konveyor/progress-report/progress"
)

// normalize updates the event with calculated values.
// - Sets Timestamp to now if zero
// - Calculates Percent from Current/Total if Percent is zero
func normalize(e *progress.Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}

	if e.Percent == 0 && (e.Total > 0 || e.Stage == progress.StageComplete) {
		e.Percent = progress.Percent(e.Current, e.Total)
	}
}
