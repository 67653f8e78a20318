package bootstrap

import (
	"context"
	"fmt"

	"github.com/kart-io/logger"

	"github.com/kart-io/sentinel-mongo/pkg/infra/tracing"
)

// TracingInitializer installs the tracer provider before any client is
// built, so the MongoDB connect span is recorded.
type TracingInitializer struct {
	opts       *tracing.Options
	appName    string
	appVersion string
	extra      []tracing.Option

	provider *tracing.Provider
}

// NewTracingInitializer creates a new TracingInitializer.
func NewTracingInitializer(opts *tracing.Options, appName, appVersion string, extra ...tracing.Option) *TracingInitializer {
	return &TracingInitializer{
		opts:       opts,
		appName:    appName,
		appVersion: appVersion,
		extra:      extra,
	}
}

// Name returns the name of the initializer.
func (ti *TracingInitializer) Name() string {
	return "tracing"
}

// Dependencies returns the names of initializers this one depends on.
func (ti *TracingInitializer) Dependencies() []string {
	return []string{"logging"}
}

// Initialize creates the tracer provider.
func (ti *TracingInitializer) Initialize(ctx context.Context) error {
	provider, err := tracing.NewProvider(ctx, ti.opts, ti.appName, ti.appVersion, ti.extra...)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	ti.provider = provider

	if provider.Enabled() {
		logger.Infow("Tracing enabled", "exporter", string(ti.opts.ExporterType), "endpoint", ti.opts.Endpoint)
	}
	return nil
}

// Shutdown flushes pending spans and stops the exporter.
func (ti *TracingInitializer) Shutdown(ctx context.Context) error {
	if ti.provider == nil {
		return nil
	}
	if err := ti.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown tracing: %w", err)
	}
	return nil
}

// Provider returns the tracer provider. Nil before Initialize.
func (ti *TracingInitializer) Provider() *tracing.Provider {
	return ti.provider
}
