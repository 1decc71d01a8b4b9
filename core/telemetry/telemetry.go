package telemetry

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

const serviceName = "call-server"

// Setup configures the default slog logger and the global tracer provider.
// With an OTLP endpoint configured, logs are bridged through otelslog and
// traces are exported over OTLP/HTTP; without one, logging falls back to a
// plain text handler and tracing stays a no-op. The returned function
// flushes and shuts down the exporters.
func Setup(ctx context.Context, otlpEndpoint string) (func(context.Context) error, error) {
	if otlpEndpoint == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(semconv.SchemaURL, semconv.ServiceName(serviceName)),
	)
	if err != nil {
		return nil, err
	}

	logExporter, err := otlploghttp.New(ctx, otlploghttp.WithEndpointURL(otlpEndpoint))
	if err != nil {
		return nil, err
	}
	loggerProvider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(logExporter)),
		sdklog.WithResource(res),
	)
	slog.SetDefault(slog.New(otelslog.NewHandler(serviceName, otelslog.WithLoggerProvider(loggerProvider))))

	traceExporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(otlpEndpoint))
	if err != nil {
		_ = loggerProvider.Shutdown(ctx)
		return nil, err
	}
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tracerProvider)

	return func(ctx context.Context) error {
		tErr := tracerProvider.Shutdown(ctx)
		lErr := loggerProvider.Shutdown(ctx)
		if tErr != nil {
			return tErr
		}
		return lErr
	}, nil
}
