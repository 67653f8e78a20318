// Package demo implements mongo-demo, which registers the application's
// MongoDB client and round-trips a document through it.
package demo

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/kart-io/sentinel-mongo/internal/bootstrap"
	"github.com/kart-io/sentinel-mongo/pkg/infra/app"
	"github.com/kart-io/sentinel-mongo/pkg/utils/json"
)

const (
	appName        = "mongo-demo"
	appDescription = `MongoDB client registration demo

Declares a MongoDB client, lets the extension register it lazily, then
inserts a document through the produced collection handle and reads it
back through a second, independent client.

Examples:
  # Use the client declared in code (mongodb://localhost)
  mongo-demo

  # Use a client from flags instead
  mongo-demo --demo.declare=false --mongodb.url=mongodb://db:27017

  # Use a client from the environment
  MONGODB_URL=mongodb://db:27017 mongo-demo --demo.declare=false

  # Print the connect span to stderr
  mongo-demo --tracing.enabled --tracing.exporter-type=stdout

Configuration:
  Configuration can be provided via:
  - Command-line flags (highest priority)
  - Environment variables (prefix: MONGO_DEMO_)
  - Configuration file (YAML)
  - Default values (lowest priority)

  MONGODB_NAME and MONGODB_URL declare a client, observed after the
  ones from code and from flags or the config file.`
)

// NewApp creates a new application instance.
func NewApp() *app.App {
	opts := NewOptions()

	return app.NewApp(
		app.WithName(appName),
		app.WithDescription(appDescription),
		app.WithOptions(opts),
		app.WithRunFunc(func(ctx context.Context) error {
			return Run(ctx, opts, os.Stdout)
		}),
	)
}

// Run bootstraps the application, runs the round trip and writes the
// result to out as JSON.
func Run(ctx context.Context, opts *Options, out io.Writer) error {
	return bootstrap.Run(ctx, &bootstrap.BootstrapOptions{
		AppName:      appName,
		AppVersion:   app.GetVersion(),
		LogOpts:      opts.Log,
		TracingOpts:  opts.Tracing,
		MongoOpts:    opts.MongoDB,
		Definitions:  opts.Definitions(),
		EagerConnect: opts.Demo.Eager,
	}, func(ctx context.Context, b *bootstrap.AppBootstrapper) error {
		result, err := RunScenario(ctx, b, opts)
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	})
}
