// Package observability registers an OTLP trace exporter with Genkit's
// TracerProvider, so every completion and tool span the SDK emits is
// shipped to a collector over OTLP HTTP.
package observability

import (
	"context"
	"os"

	"github.com/firebase/genkit/go/core/tracing"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/koopa0/ragapi/internal/log"
)

// Config for trace export.
type Config struct {
	// Endpoint is the OTLP HTTP collector endpoint (host:port). Empty
	// disables tracing entirely.
	Endpoint string
	// ServiceName is the service name attached to exported spans.
	ServiceName string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string

	Logger log.Logger
}

// Setup registers an OTLP HTTP exporter with Genkit's TracerProvider.
// It must run before genkit.Init so the provider is ready when the
// first span is created.
//
// Returns a shutdown function that flushes pending spans. An empty
// Endpoint or an exporter construction failure both yield a no-op
// shutdown; tracing is never allowed to block startup.
func Setup(ctx context.Context, cfg Config) (shutdown func(context.Context) error, err error) {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewNop()
	}

	noop := func(context.Context) error { return nil }

	if cfg.Endpoint == "" {
		logger.Debug("tracing disabled, no collector endpoint configured")
		return noop, nil
	}

	// Genkit's TracerProvider reads these when building span resources.
	if cfg.ServiceName != "" {
		_ = os.Setenv("OTEL_SERVICE_NAME", cfg.ServiceName)
	}
	if cfg.Environment != "" {
		_ = os.Setenv("OTEL_RESOURCE_ATTRIBUTES", "deployment.environment="+cfg.Environment)
	}

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(cfg.Endpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		logger.Warn("failed to create trace exporter, tracing disabled", "error", err)
		return noop, nil
	}

	processor := sdktrace.NewBatchSpanProcessor(exporter)
	tracing.TracerProvider().RegisterSpanProcessor(processor)

	logger.Debug("tracing enabled",
		"endpoint", cfg.Endpoint,
		"service", cfg.ServiceName,
		"environment", cfg.Environment,
	)

	return tracing.TracerProvider().Shutdown, nil
}
