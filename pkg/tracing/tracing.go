// Package tracing sets up the OpenTelemetry tracer provider used for call
// spans.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
)

// Config holds the exporter settings, read from the environment.
type Config struct {
	Enabled        bool    `env:"OTEL_ENABLED" envDefault:"false"`
	ServiceName    string  `env:"OTEL_SERVICE_NAME" envDefault:"esprobe" validate:"required"`
	ServiceVersion string  `env:"SERVICE_VERSION" envDefault:"dev"`
	Environment    string  `env:"ENVIRONMENT" envDefault:"development"`
	Endpoint       string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:"localhost:4318"` // host:port, OTLP/HTTP
	Insecure       bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	SampleRate     float64 `env:"OTEL_SAMPLE_RATE" envDefault:"1" validate:"gte=0,lte=1"`
}

// Shutdown flushes pending spans.
type Shutdown func(context.Context) error

// Init builds the tracer provider described by cfg, installs it and the W3C
// propagators globally, and returns it. When tracing is disabled the current
// global provider is returned with a no-op shutdown.
func Init(ctx context.Context, cfg Config) (trace.TracerProvider, Shutdown, error) {
	if !cfg.Enabled {
		return otel.GetTracerProvider(), func(context.Context) error { return nil }, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exporter, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("create OTLP exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
			semconv.DeploymentEnvironment(cfg.Environment),
		),
		resource.WithHost(),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("create resource: %w", err)
	}

	tp := NewProvider(sdktrace.NewBatchSpanProcessor(exporter), cfg.SampleRate, res)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	return tp, tp.Shutdown, nil
}

// NewProvider builds an SDK provider exporting through sp. Sampling follows
// the parent span when there is one and rate otherwise.
func NewProvider(sp sdktrace.SpanProcessor, rate float64, res *resource.Resource) *sdktrace.TracerProvider {
	var root sdktrace.Sampler
	switch {
	case rate >= 1:
		root = sdktrace.AlwaysSample()
	case rate <= 0:
		root = sdktrace.NeverSample()
	default:
		root = sdktrace.TraceIDRatioBased(rate)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithSpanProcessor(sp),
		sdktrace.WithSampler(sdktrace.ParentBased(root)),
	}
	if res != nil {
		opts = append(opts, sdktrace.WithResource(res))
	}
	return sdktrace.NewTracerProvider(opts...)
}
