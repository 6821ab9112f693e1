package config

import (
	"fmt"
	"os"
	"time"

	"github.com/konveyor/progress-report/progress"
	"github.com/konveyor/progress-report/tracing"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

const (
	FormatLine = "line"
	FormatText = "text"
	FormatJSON = "json"

	OutputStdout = "stdout"
	OutputStderr = "stderr"
)

// Config holds the settings of a progress-demo run. It is bound to cobra
// flags with AddFlags and may additionally be read from a YAML file with
// Load.
//
// Example file:
//
//	total: 10
//	min_interval_seconds: 2
//	step_delay: 500ms
//	text: copying
//	progress_format: line
//	summary_template: "{{processed}}/{{total}} in {{elapsed}}{{#interrupted}}, interrupted{{/interrupted}}"
//	trace_sample_ratio: 1
type Config struct {
	// Total is the number of items the sample task processes.
	Total int `yaml:"total"`

	// MinIntervalSeconds is the minimum gap between two status lines.
	MinIntervalSeconds float64 `yaml:"min_interval_seconds"`

	// StepDelay is how long the sample task works on each item.
	StepDelay time.Duration `yaml:"step_delay"`

	// Text is the annotation printed after the percentage.
	Text string `yaml:"text"`

	// ProgressOutput is stdout, stderr or a file path.
	ProgressOutput string `yaml:"progress_output"`

	// ProgressFormat is line, text or json.
	ProgressFormat string `yaml:"progress_format"`

	// SummaryTemplate is a mustache template logged once the task is done.
	// It can use {{total}}, {{processed}} and {{elapsed}}, and the boolean
	// {{interrupted}}, set when a signal stopped the task early, for
	// sections such as {{#interrupted}}stopped{{/interrupted}}.
	SummaryTemplate string `yaml:"summary_template"`

	Verbose        int    `yaml:"verbose"`
	EnableJaeger   bool   `yaml:"enable_jaeger"`
	JaegerEndpoint string `yaml:"jaeger_endpoint"`

	// TraceSampleRatio is the fraction of task traces recorded, 0 to 1.
	TraceSampleRatio float64 `yaml:"trace_sample_ratio"`

	// File is the YAML file read by Load.
	File string `yaml:"-"`

	// EventSchema is where the JSON schema of progress events is written.
	EventSchema string `yaml:"-"`
}

// AddFlags adds all configuration flags to the given cobra command.
func (c *Config) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&c.File, "config", "", "path to a YAML configuration file")
	cmd.Flags().IntVar(&c.Total, "total", 10, "number of items to process")
	cmd.Flags().Float64Var(&c.MinIntervalSeconds, "min-interval", progress.DefaultMinInterval.Seconds(), "minimum seconds between two progress lines")
	cmd.Flags().DurationVar(&c.StepDelay, "step-delay", 500*time.Millisecond, "time spent on each item")
	cmd.Flags().StringVar(&c.Text, "text", "text", "annotation printed after the percentage")
	cmd.Flags().StringVar(&c.ProgressOutput, "progress-output", OutputStdout, "where to write progress: stdout, stderr or a file path")
	cmd.Flags().StringVar(&c.ProgressFormat, "progress-format", FormatLine, "progress format: line, text or json")
	cmd.Flags().StringVar(&c.SummaryTemplate, "summary-template", "", "mustache template logged when the task is done")
	cmd.Flags().IntVar(&c.Verbose, "verbose", 0, "level for logging output")
	cmd.Flags().BoolVar(&c.EnableJaeger, "enable-jaeger", false, "enable tracer exports to jaeger endpoint")
	cmd.Flags().StringVar(&c.JaegerEndpoint, "jaeger-endpoint", "http://localhost:14268/api/traces", "jaeger endpoint to collect tracing data")
	cmd.Flags().Float64Var(&c.TraceSampleRatio, "trace-sample-ratio", 1, "fraction of task traces to record, between 0 and 1")
	cmd.Flags().StringVar(&c.EventSchema, "event-schema", "", "write the JSON schema of progress events to this file and exit")
}

// Load reads c.File, if set, over the current values. Flags explicitly set
// on cmd keep their command line value.
func (c *Config) Load(cmd *cobra.Command) error {
	if c.File == "" {
		return nil
	}
	content, err := os.ReadFile(c.File)
	if err != nil {
		return fmt.Errorf("unable to read config file: %w", err)
	}

	flagged := *c
	if err := yaml.Unmarshal(content, c); err != nil {
		return fmt.Errorf("unable to parse config file %s: %w", flagged.File, err)
	}

	overrides := map[string]func(){
		"total":              func() { c.Total = flagged.Total },
		"min-interval":       func() { c.MinIntervalSeconds = flagged.MinIntervalSeconds },
		"step-delay":         func() { c.StepDelay = flagged.StepDelay },
		"text":               func() { c.Text = flagged.Text },
		"progress-output":    func() { c.ProgressOutput = flagged.ProgressOutput },
		"progress-format":    func() { c.ProgressFormat = flagged.ProgressFormat },
		"summary-template":   func() { c.SummaryTemplate = flagged.SummaryTemplate },
		"verbose":            func() { c.Verbose = flagged.Verbose },
		"enable-jaeger":      func() { c.EnableJaeger = flagged.EnableJaeger },
		"jaeger-endpoint":    func() { c.JaegerEndpoint = flagged.JaegerEndpoint },
		"trace-sample-ratio": func() { c.TraceSampleRatio = flagged.TraceSampleRatio },
	}
	for name, restore := range overrides {
		if cmd.Flags().Changed(name) {
			restore()
		}
	}
	c.File = flagged.File
	c.EventSchema = flagged.EventSchema
	return nil
}

// Validate checks that the values can drive a run.
func (c *Config) Validate() error {
	if c.Total < 0 {
		return fmt.Errorf("total must not be negative, got %d", c.Total)
	}
	if c.MinIntervalSeconds < 0 {
		return fmt.Errorf("min interval must not be negative, got %v", c.MinIntervalSeconds)
	}
	if c.StepDelay < 0 {
		return fmt.Errorf("step delay must not be negative, got %v", c.StepDelay)
	}
	switch c.ProgressFormat {
	case FormatLine, FormatText, FormatJSON:
	default:
		return fmt.Errorf("unknown progress format %q, use line, text or json", c.ProgressFormat)
	}
	if c.ProgressOutput == "" {
		return fmt.Errorf("progress output must not be empty")
	}
	if c.EnableJaeger && c.JaegerEndpoint == "" {
		return fmt.Errorf("jaeger endpoint is required when jaeger is enabled")
	}
	if c.TraceSampleRatio < 0 || c.TraceSampleRatio > 1 {
		return fmt.Errorf("trace sample ratio must be between 0 and 1, got %v", c.TraceSampleRatio)
	}
	return nil
}

// MinInterval returns MinIntervalSeconds as a duration.
func (c *Config) MinInterval() time.Duration {
	return time.Duration(c.MinIntervalSeconds * float64(time.Second))
}

// ToLineOptions converts the configuration to options for a
// progress.LineReporter.
func (c *Config) ToLineOptions() []progress.LineOption {
	return []progress.LineOption{
		progress.WithMinInterval(c.MinInterval()),
	}
}

// TracingOptions returns the tracer provider settings.
func (c *Config) TracingOptions() tracing.Options {
	return tracing.Options{
		SampleRatio:    c.TraceSampleRatio,
		EnableJaeger:   c.EnableJaeger,
		JaegerEndpoint: c.JaegerEndpoint,
	}
}
