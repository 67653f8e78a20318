package bootstrap

import (
	"context"
	"fmt"

	"github.com/kart-io/logger"

	logopts "github.com/kart-io/sentinel-mongo/pkg/options/logger"
)

// LoggingInitializer installs the global logger. Every other initializer
// depends on it.
type LoggingInitializer struct {
	opts       *logopts.Options
	appName    string
	appVersion string
}

// NewLoggingInitializer creates a new LoggingInitializer.
// With nil opts the global logger is left as it is.
func NewLoggingInitializer(opts *logopts.Options, appName, appVersion string) *LoggingInitializer {
	return &LoggingInitializer{
		opts:       opts,
		appName:    appName,
		appVersion: appVersion,
	}
}

// Name returns the name of the initializer.
func (li *LoggingInitializer) Name() string {
	return "logging"
}

// Dependencies returns nil; logging runs first.
func (li *LoggingInitializer) Dependencies() []string {
	return nil
}

// Initialize installs the logger built from the options.
func (li *LoggingInitializer) Initialize(_ context.Context) error {
	fields := []interface{}{"app", li.appName, "version", li.appVersion}

	if li.opts != nil && li.opts.LogOption != nil {
		if err := li.opts.Init(); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		fields = append(fields, "log_engine", li.opts.Engine, "log_level", li.opts.Level)
	}

	logger.Infow("Starting application", fields...)
	return nil
}
