package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/kart-io/logger"

	"github.com/kart-io/sentinel-mongo/pkg/infra/datasource"
	"github.com/kart-io/sentinel-mongo/pkg/infra/tracing"
	"github.com/kart-io/sentinel-mongo/pkg/mongodb"
	logopts "github.com/kart-io/sentinel-mongo/pkg/options/logger"
	mongoopts "github.com/kart-io/sentinel-mongo/pkg/options/mongodb"
)

// AppBootstrapper composes multiple initializers to bootstrap the entire application.
type AppBootstrapper struct {
	// Ordered list of initializers
	initializers []Initializer

	// Components that need graceful shutdown
	shutdowners []Shutdowner

	loggingInit    *LoggingInitializer
	tracingInit    *TracingInitializer
	datasourceInit *DatasourceInitializer
	mongoInit      *MongoInitializer
}

// BootstrapOptions contains all the configuration needed for bootstrapping.
type BootstrapOptions struct {
	AppName    string
	AppVersion string

	LogOpts     *logopts.Options
	TracingOpts *tracing.Options
	MongoOpts   *mongoopts.Options

	// TracerOptions are passed to the tracer provider, e.g. to replace
	// the exporter in tests.
	TracerOptions []tracing.Option

	// Definitions are declared in code and observed before MongoOpts.
	Definitions []mongoopts.Definition

	// Environment replaces the process environment for the MONGODB_*
	// definition when non-nil.
	Environment map[string]string

	// ApplicationClient, when set, is registered as the application's own
	// MongoDB client and disables automatic registration.
	ApplicationClient any

	// EagerConnect builds the MongoDB client during startup.
	EagerConnect bool
}

// NewAppBootstrapper creates a new AppBootstrapper with all initializers configured.
func NewAppBootstrapper(opts *BootstrapOptions) *AppBootstrapper {
	b := &AppBootstrapper{}

	b.loggingInit = NewLoggingInitializer(opts.LogOpts, opts.AppName, opts.AppVersion)
	b.tracingInit = NewTracingInitializer(opts.TracingOpts, opts.AppName, opts.AppVersion, opts.TracerOptions...)
	b.datasourceInit = NewDatasourceInitializer()
	b.mongoInit = NewMongoInitializer(opts.MongoOpts, b.datasourceInit).
		Declare(opts.Definitions...).
		WithEnvironment(opts.Environment).
		WithApplicationClient(opts.ApplicationClient).
		WithEager(opts.EagerConnect)

	b.initializers = []Initializer{
		b.loggingInit,
		b.tracingInit,
		b.datasourceInit,
		b.mongoInit,
	}

	// Register components that need graceful shutdown.
	// Tracing stops last so spans recorded while closing are exported.
	b.shutdowners = []Shutdowner{
		b.tracingInit,
		b.datasourceInit,
	}

	return b
}

// Initialize runs all initializers in dependency order.
func (b *AppBootstrapper) Initialize(ctx context.Context) error {
	ordered, err := ResolveDependencies(b.initializers)
	if err != nil {
		return err
	}

	for _, init := range ordered {
		if err := b.runInitializer(ctx, init); err != nil {
			return err
		}
	}
	return nil
}

// runInitializer runs a single initializer with logging.
func (b *AppBootstrapper) runInitializer(ctx context.Context, init Initializer) error {
	logger.Infof("Initializing %s...", init.Name())
	if err := init.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize %s: %w", init.Name(), err)
	}
	return nil
}

// Shutdown gracefully shuts down all components in reverse order.
func (b *AppBootstrapper) Shutdown(ctx context.Context) error {
	var errs []error

	for i := len(b.shutdowners) - 1; i >= 0; i-- {
		if err := b.shutdowners[i].Shutdown(ctx); err != nil {
			errs = append(errs, err)
			logger.Errorf("Error during shutdown: %v", err)
		}
	}

	return errors.Join(errs...)
}

// Manager returns the resource container. Nil before Initialize.
func (b *AppBootstrapper) Manager() *datasource.Manager {
	return b.datasourceInit.GetManager()
}

// Extension returns the MongoDB registration state.
func (b *AppBootstrapper) Extension() *mongodb.Extension {
	return b.mongoInit.Extension()
}

// Producers returns the MongoDB handle producers. Nil before Initialize.
func (b *AppBootstrapper) Producers() *mongodb.Producers {
	return b.mongoInit.Producers()
}
