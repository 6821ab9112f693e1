package main

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"github.com/konveyor/progress-report/progress"
	"github.com/konveyor/progress-report/tracing"
	"go.opentelemetry.io/otel/attribute"
)

// task is the sample workload: it reports items 0 through total+1, pausing
// after each, and repeats the last one as the final report.
type task struct {
	total int
	text  string
	delay time.Duration

	clock progress.Clock
	sleep func(ctx context.Context, d time.Duration) error
	log   logr.Logger
}

type result struct {
	Total       int
	Processed   int
	Elapsed     time.Duration
	Interrupted bool
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// run feeds the task's events to c until the last item or until ctx is
// cancelled. The final event is sent in both cases.
func (t *task) run(ctx context.Context, c progress.Collector) result {
	ctx, span := tracing.StartNewSpan(ctx, "sample-task", attribute.Int("total", t.total))
	defer span.End()

	start := t.clock.Now()
	c.Report(progress.Event{
		Timestamp: start,
		Stage:     progress.StageInit,
		Total:     t.total,
	})
	t.log.V(3).Info("task started", "total", t.total, "delay", t.delay)

	res := result{Total: t.total}
	for i := 0; i < t.total+2; i++ {
		c.Report(progress.Event{
			Timestamp: t.clock.Now(),
			Stage:     progress.StageRunning,
			Message:   t.text,
			Current:   i,
			Total:     t.total,
		})
		res.Processed = i
		if err := t.sleep(ctx, t.delay); err != nil {
			t.log.V(3).Info("task stopped", "current", i, "reason", err.Error())
			res.Interrupted = true
			break
		}
	}

	end := t.clock.Now()
	c.Report(progress.Event{
		Timestamp: end,
		Stage:     progress.StageComplete,
		Message:   t.text,
		Current:   res.Processed,
		Total:     t.total,
		Final:     true,
	})
	res.Elapsed = end.Sub(start)

	span.SetAttributes(
		attribute.Int("processed", res.Processed),
		attribute.Bool("interrupted", res.Interrupted),
	)
	t.log.V(3).Info("task finished", "processed", res.Processed, "elapsed", res.Elapsed)
	return res
}
