package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	logrusr "github.com/bombsimon/logrusr/v3"
	"github.com/cbroglie/mustache"
	"github.com/go-logr/logr"
	"github.com/konveyor/progress-report/config"
	"github.com/konveyor/progress-report/progress"
	"github.com/konveyor/progress-report/progress/collector"
	"github.com/konveyor/progress-report/progress/reporter"
	"github.com/konveyor/progress-report/tracing"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/swaggest/jsonschema-go"
	"golang.org/x/sync/errgroup"
)

func DemoCmd() *cobra.Command {
	var errLog logr.Logger
	cfg := &config.Config{}

	rootCmd := &cobra.Command{
		Use:   "progress-demo",
		Short: "Run a sample task and report its progress with an estimated finish time",
		PreRunE: func(c *cobra.Command, args []string) error {
			logrusErrLog := logrus.New()
			logrusErrLog.SetOutput(os.Stderr)
			errLog = logrusr.New(logrusErrLog)
			if err := cfg.Load(c); err != nil {
				errLog.Error(err, "failed to load configuration")
				return err
			}
			if err := validate(cfg); err != nil {
				errLog.Error(err, "failed to validate flags")
				return err
			}
			return nil
		},
		Run: func(c *cobra.Command, args []string) {
			logrusLog := logrus.New()
			// stdout belongs to the status line.
			logrusLog.SetOutput(os.Stderr)
			logrusLog.SetFormatter(&logrus.TextFormatter{})
			// Adding 5 here to move logs to info level
			// setting verbose 1 -> V(2) logs show up
			// setting verbose 3 -> V(4) logs show up
			logrusLog.SetLevel(logrus.Level(cfg.Verbose + 5))
			log := logrusr.New(logrusLog)

			if cfg.EventSchema != "" {
				if err := writeEventSchema(cfg.EventSchema); err != nil {
					errLog.Error(err, "unable to write event schema", "file", cfg.EventSchema)
					os.Exit(1)
				}
				os.Exit(0)
			}

			ctx, cancelFunc := context.WithCancel(context.Background())
			defer cancelFunc()

			tp, err := tracing.InitTracerProvider(log, cfg.TracingOptions())
			if err != nil {
				errLog.Error(err, "failed to initialize tracing")
				os.Exit(1)
			}
			defer tracing.Shutdown(ctx, log, tp)

			writer, closeWriter, err := openProgressOutput(cfg.ProgressOutput)
			if err != nil {
				errLog.Error(err, "unable to open progress output", "output", cfg.ProgressOutput)
				os.Exit(1)
			}
			defer closeWriter()

			sigs := make(chan os.Signal, 1)
			signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigs)

			t := &task{
				total: cfg.Total,
				text:  cfg.Text,
				delay: cfg.StepDelay,
				clock: progress.SystemClock,
				sleep: sleepContext,
				log:   log.WithName("task"),
			}
			res, err := execute(ctx, log, t, createCollector(cfg), createProgressReporter(cfg, writer, log), sigs)
			if err != nil {
				errLog.Error(err, "task failed")
				os.Exit(1)
			}

			if cfg.SummaryTemplate != "" {
				summary, err := renderSummary(cfg.SummaryTemplate, res)
				if err != nil {
					errLog.Error(err, "unable to render summary")
					os.Exit(1)
				}
				log.Info(summary)
			}
		},
	}
	cfg.AddFlags(rootCmd)

	return rootCmd
}

func main() {
	if err := DemoCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func validate(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.SummaryTemplate != "" {
		if _, err := mustache.ParseString(cfg.SummaryTemplate); err != nil {
			return fmt.Errorf("invalid summary template: %w", err)
		}
	}
	return nil
}

// execute runs t with its events flowing through col to rep. A value on
// sigs interrupts the task, which still emits its final line. execute
// returns once every event has been reported.
func execute(ctx context.Context, log logr.Logger, t *task, col progress.Collector, rep progress.Reporter, sigs <-chan os.Signal) (result, error) {
	prog, err := progress.New(
		progress.WithCollectors(col),
		progress.WithReporters(rep),
		progress.WithContext(ctx),
	)
	if err != nil {
		return result{}, fmt.Errorf("unable to create progress: %w", err)
	}
	defer prog.Close()

	g, gctx := errgroup.WithContext(ctx)
	taskCtx, cancelTask := context.WithCancel(gctx)
	defer cancelTask()

	g.Go(func() error {
		select {
		case sig := <-sigs:
			log.Info("interrupted, finishing", "signal", sig.String())
			cancelTask()
		case <-taskCtx.Done():
		}
		return nil
	})

	var res result
	g.Go(func() error {
		defer cancelTask()
		res = t.run(taskCtx, col)
		return nil
	})

	if err := g.Wait(); err != nil {
		return res, err
	}
	prog.Close()
	return res, nil
}

// createProgressReporter creates a progress reporter for the configured
// format.
func createProgressReporter(cfg *config.Config, w io.Writer, log logr.Logger) progress.Reporter {
	switch cfg.ProgressFormat {
	case config.FormatJSON:
		return reporter.NewJSONReporter(w)
	case config.FormatText:
		return reporter.NewTextReporter(w)
	default:
		opts := append(cfg.ToLineOptions(), progress.WithLogger(log.WithName("line")))
		return reporter.NewETAReporter(w, opts...)
	}
}

// createCollector picks the collector feeding the reporter. The status line
// rate limits itself, the other formats are throttled before the hub.
func createCollector(cfg *config.Config) progress.Collector {
	if cfg.ProgressFormat == config.FormatLine {
		return collector.New()
	}
	return collector.NewThrottledCollectorWithInterval(progress.StageRunning, cfg.MinInterval())
}

func openProgressOutput(output string) (io.Writer, func(), error) {
	switch output {
	case config.OutputStdout:
		return os.Stdout, func() {}, nil
	case config.OutputStderr:
		return os.Stderr, func() {}, nil
	}
	file, err := os.Create(output)
	if err != nil {
		return nil, nil, fmt.Errorf("unable to create progress output file: %w", err)
	}
	return file, func() { file.Close() }, nil
}

func renderSummary(tmpl string, res result) (string, error) {
	return mustache.Render(tmpl, map[string]interface{}{
		"total":       res.Total,
		"processed":   res.Processed,
		"elapsed":     progress.FormatDuration(res.Elapsed.Truncate(time.Second)),
		"interrupted": res.Interrupted,
	})
}

func writeEventSchema(path string) error {
	r := jsonschema.Reflector{}
	schema, err := r.Reflect(progress.Event{})
	if err != nil {
		return fmt.Errorf("unable to reflect event schema: %w", err)
	}
	b, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("unable to marshal event schema: %w", err)
	}
	return os.WriteFile(path, b, 0644)
}
