package demo

import (
	"fmt"

	"github.com/spf13/pflag"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	logopts "github.com/kart-io/sentinel-mongo/pkg/options/logger"
	mongoopts "github.com/kart-io/sentinel-mongo/pkg/options/mongodb"
	tracingopts "github.com/kart-io/sentinel-mongo/pkg/options/tracing"
	"github.com/kart-io/sentinel-mongo/pkg/utils/json"
	"github.com/kart-io/sentinel-mongo/pkg/utils/validator"
)

// Options contains all mongo-demo options.
type Options struct {
	// Log contains logger configuration.
	Log *logopts.Options `json:"log" mapstructure:"log"`

	// Tracing exports the MongoDB connect span.
	Tracing *tracingopts.Options `json:"tracing" mapstructure:"tracing"`

	// MongoDB declares the client through flags or the config file and
	// tunes the driver.
	MongoDB *mongoopts.Options `json:"mongodb" mapstructure:"mongodb"`

	// Demo controls the round trip itself.
	Demo *ScenarioOptions `json:"demo" mapstructure:"demo"`
}

// ScenarioOptions controls the insert and read back round trip.
type ScenarioOptions struct {
	// Declare makes the demo declare DefaultDefinition in code. Code
	// declarations are observed first, so turn this off to use a
	// definition from flags, config or MONGODB_URL.
	Declare    bool   `json:"declare" mapstructure:"declare"`
	Database   string `json:"database" mapstructure:"database"`
	Collection string `json:"collection" mapstructure:"collection"`
	// Cleanup deletes the inserted document afterwards.
	Cleanup bool `json:"cleanup" mapstructure:"cleanup"`
	// Eager builds the client during startup.
	Eager bool `json:"eager" mapstructure:"eager"`
}

// DefaultDefinition is the definition the demo declares in code.
var DefaultDefinition = mongoopts.Definition{Name: "test", URL: "mongodb://localhost"}

// NewOptions creates new Options with defaults.
// Logs go to stderr; stdout carries the round trip result.
func NewOptions() *Options {
	log := logopts.NewOptions()
	log.OutputPaths = []string{"stderr"}

	return &Options{
		Log:     log,
		Tracing: tracingopts.NewOptions(),
		MongoDB: mongoopts.NewOptions(),
		Demo: &ScenarioOptions{
			Declare:    true,
			Database:   "myTestDb",
			Collection: "testCollection",
			Cleanup:    true,
		},
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.Log.AddFlags(fs)
	o.Tracing.AddFlags(fs)
	o.MongoDB.AddFlags(fs)
	o.Demo.AddFlags(fs)
}

// AddFlags adds the round trip flags under "demo.".
func (o *ScenarioOptions) AddFlags(fs *pflag.FlagSet) {
	fs.BoolVar(&o.Declare, "demo.declare", o.Declare, "Declare the MongoDB client {test, mongodb://localhost} in code.")
	fs.StringVar(&o.Database, "demo.database", o.Database, "Database the document is written to.")
	fs.StringVar(&o.Collection, "demo.collection", o.Collection, "Collection the document is written to.")
	fs.BoolVar(&o.Cleanup, "demo.cleanup", o.Cleanup, "Delete the inserted document when done.")
	fs.BoolVar(&o.Eager, "demo.eager", o.Eager, "Build the MongoDB client at startup instead of on first use.")
}

// Validate checks the round trip settings.
func (o *ScenarioOptions) Validate() []error {
	var errs []error
	if !validator.IsDatabaseName(o.Database) {
		errs = append(errs, fmt.Errorf("demo.database %q is not a valid MongoDB database name", o.Database))
	}
	if !validator.IsCollectionName(o.Collection) {
		errs = append(errs, fmt.Errorf("demo.collection %q is not a valid MongoDB collection name", o.Collection))
	}
	return errs
}

// Validate validates the options.
func (o *Options) Validate() error {
	var errs []error
	errs = append(errs, o.Log.Validate()...)
	errs = append(errs, o.Tracing.Validate()...)
	errs = append(errs, o.MongoDB.Validate()...)
	errs = append(errs, o.Demo.Validate()...)
	return utilerrors.NewAggregate(errs)
}

// Complete completes the options.
func (o *Options) Complete() error {
	if err := o.Log.Complete(); err != nil {
		return err
	}
	if err := o.Tracing.Complete(); err != nil {
		return err
	}
	return o.MongoDB.Complete()
}

// String returns the options as JSON with the URL password redacted.
func (o *Options) String() string {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Sprintf("<options: %v>", err)
	}
	return string(data)
}

// Definitions returns the definitions declared in code.
func (o *Options) Definitions() []mongoopts.Definition {
	if !o.Demo.Declare {
		return nil
	}
	return []mongoopts.Definition{DefaultDefinition}
}
