package tracing

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

// ServiceName identifies spans exported by this module.
const ServiceName = "progress-report"

// Options configures the tracer provider installed by InitTracerProvider.
type Options struct {
	// SampleRatio is the fraction of task traces recorded. 1 or more records
	// every trace, 0 or less records none.
	SampleRatio float64

	EnableJaeger   bool
	JaegerEndpoint string

	// SpanProcessors receive spans in addition to the Jaeger exporter.
	SpanProcessors []tracesdk.SpanProcessor
}

// sampler maps the configured ratio to an otel sampler. Child spans follow
// the decision made for their task.
func (o Options) sampler() tracesdk.Sampler {
	switch {
	case o.SampleRatio >= 1:
		return tracesdk.AlwaysSample()
	case o.SampleRatio <= 0:
		return tracesdk.NeverSample()
	}
	return tracesdk.ParentBased(tracesdk.TraceIDRatioBased(o.SampleRatio))
}

// InitTracerProvider installs the global tracer provider the task spans are
// recorded with. Spans go to Jaeger only when o.EnableJaeger is set.
func InitTracerProvider(log logr.Logger, o Options) (*tracesdk.TracerProvider, error) {
	tracerOptions := []tracesdk.TracerProviderOption{
		tracesdk.WithSampler(o.sampler()),
		tracesdk.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(ServiceName),
		)),
	}
	for _, sp := range o.SpanProcessors {
		tracerOptions = append(tracerOptions, tracesdk.WithSpanProcessor(sp))
	}
	if o.EnableJaeger {
		exp, err := jaeger.New(
			jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(o.JaegerEndpoint)),
		)
		if err != nil {
			log.Error(err, "failed to create jaeger exporter", "endpoint", o.JaegerEndpoint)
			return nil, err
		}
		tracerOptions = append(tracerOptions, tracesdk.WithBatcher(exp))
	}

	tp := tracesdk.NewTracerProvider(tracerOptions...)
	otel.SetTracerProvider(tp)
	log.V(3).Info("tracing initialized",
		"sampleRatio", o.SampleRatio, "jaeger", o.EnableJaeger, "processors", len(o.SpanProcessors))

	return tp, nil
}

// Shutdown flushes pending spans, giving up after five seconds.
func Shutdown(ctx context.Context, log logr.Logger, tp *tracesdk.TracerProvider) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()
	if err := tp.Shutdown(ctx); err != nil {
		log.Error(err, "error shutting down tracer provider")
	}
}

// StartNewSpan starts a span on the global tracer provider. The returned
// span must be ended by the caller.
func StartNewSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(ServiceName).Start(ctx, name, trace.WithAttributes(attrs...))
}
