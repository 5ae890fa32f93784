// Package telemetry provides OpenTelemetry tracing for sitemgr commands.
// Tracing is disabled by default and becomes active only when an OTLP
// endpoint or the stdout debug exporter is configured via environment.
package telemetry

import (
	"context"
	"os"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

var (
	tracer         trace.Tracer
	tracerProvider *sdktrace.TracerProvider
	initOnce       sync.Once
)

// Config holds telemetry configuration
type Config struct {
	ServiceName    string
	ServiceVersion string
	// OTLPEndpoint is the OTLP collector endpoint (e.g. localhost:4317)
	OTLPEndpoint string
	// Debug enables the stdout trace exporter
	Debug bool
}

// DefaultConfig reads the telemetry configuration from the environment
func DefaultConfig(version string) Config {
	return Config{
		ServiceName:    "sitemgr",
		ServiceVersion: version,
		OTLPEndpoint:   os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
		Debug:          os.Getenv("SITEMGR_TRACE_DEBUG") == "1",
	}
}

// Init initializes the tracer. Without an endpoint or debug flag it stays a
// noop and costs nothing.
func Init(cfg Config) error {
	var err error
	initOnce.Do(func() {
		err = initTracer(cfg)
	})
	return err
}

func initTracer(cfg Config) error {
	if cfg.OTLPEndpoint == "" && !cfg.Debug {
		tracer = noop.NewTracerProvider().Tracer(cfg.ServiceName)
		return nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		),
	)
	if err != nil {
		return err
	}

	var exporter sdktrace.SpanExporter
	if cfg.Debug {
		exporter, err = stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return err
		}
	} else {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		client := otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint),
			otlptracegrpc.WithInsecure(),
		)
		exporter, err = otlptrace.New(ctx, client)
		if err != nil {
			return err
		}
	}

	tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tracerProvider)
	tracer = tracerProvider.Tracer(cfg.ServiceName)
	return nil
}

// Shutdown flushes and stops the tracer provider
func Shutdown(ctx context.Context) error {
	if tracerProvider != nil {
		return tracerProvider.Shutdown(ctx)
	}
	return nil
}

// Tracer returns the global tracer instance
func Tracer() trace.Tracer {
	if tracer == nil {
		return noop.NewTracerProvider().Tracer("sitemgr")
	}
	return tracer
}

// StartCommand starts a span for a CLI command invocation
func StartCommand(ctx context.Context, command, domain string) (context.Context, trace.Span) {
	return Tracer().Start(ctx, "command."+command,
		trace.WithAttributes(
			attribute.String("command", command),
			attribute.String("domain", domain),
		),
	)
}

// RecordError records an error on the current span
func RecordError(ctx context.Context, err error) {
	if span := trace.SpanFromContext(ctx); span != nil && err != nil {
		span.RecordError(err)
	}
}
