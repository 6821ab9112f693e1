// Package progress renders rewritable console progress lines for long-running
// iterative tasks and routes progress events between producers and outputs.
//
// The core type is LineReporter, which prints a single status line of the form
//
//	1:00:00 + 1:00:00 -> Jan 01 10:00:00, 5/10 = 50% text
//
// showing elapsed time, a linear estimate of the remaining time, the projected
// finish timestamp, the completion percentage and a caller supplied annotation.
//
// For programs that produce progress from several places, the Progress hub
// fans events from collectors out to reporters:
//
//	col := collector.NewThrottledCollector(progress.StageRunning)
//	prog, err := progress.New(
//	    progress.WithContext(ctx),
//	    progress.WithCollectors(col),
//	    progress.WithReporters(reporter.NewETAReporter(os.Stdout)),
//	)
//	defer prog.Close()
//
// # Rate limiting
//
// LineReporter and ThrottledCollector share the Throttle gate: a report is
// emitted when nothing was emitted yet, when it is final, when Current equals
// Total, or when the minimum interval has elapsed since the last emission.
//
// # Thread Safety
//
// LineReporter and Throttle are not safe for concurrent use; drive them from a
// single loop. Progress, the collectors and the reporters in the reporter
// package are safe for concurrent use.
package progress
