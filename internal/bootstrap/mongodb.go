package bootstrap

import (
	"context"
	"fmt"
	"reflect"

	"github.com/kart-io/logger"

	"github.com/kart-io/sentinel-mongo/pkg/component/storage"
	"github.com/kart-io/sentinel-mongo/pkg/infra/datasource"
	"github.com/kart-io/sentinel-mongo/pkg/mongodb"
	mongoopts "github.com/kart-io/sentinel-mongo/pkg/options/mongodb"
)

// MongoInitializer runs MongoDB discovery and registration against the
// container created by DatasourceInitializer.
//
// Definitions are observed in a fixed order: those declared in code, then
// the one from flags or the config file, then the one from the environment.
// The first one observed is used.
type MongoInitializer struct {
	opts        *mongoopts.Options
	declared    []mongoopts.Definition
	environment map[string]string
	appClient   any
	eager       bool

	datasources *DatasourceInitializer
	extension   *mongodb.Extension
	producers   *mongodb.Producers
}

// NewMongoInitializer creates a new MongoInitializer.
func NewMongoInitializer(opts *mongoopts.Options, datasources *DatasourceInitializer) *MongoInitializer {
	if opts == nil {
		opts = mongoopts.NewOptions()
	}
	return &MongoInitializer{
		opts:        opts,
		datasources: datasources,
		extension:   mongodb.NewExtension(opts),
	}
}

// Declare adds definitions declared in code. They are observed before any
// configured definition.
func (mi *MongoInitializer) Declare(defs ...mongoopts.Definition) *MongoInitializer {
	mi.declared = append(mi.declared, defs...)
	return mi
}

// WithEnvironment reads the environment definition from env instead of the
// process environment.
func (mi *MongoInitializer) WithEnvironment(env map[string]string) *MongoInitializer {
	mi.environment = env
	return mi
}

// WithApplicationClient registers client, a *mongo.Client or a
// *component/mongodb.Client, as the application's own MongoDB client.
// Automatic registration is then skipped.
func (mi *MongoInitializer) WithApplicationClient(client any) *MongoInitializer {
	mi.appClient = client
	return mi
}

// WithEager builds the client during startup instead of on first use.
func (mi *MongoInitializer) WithEager(eager bool) *MongoInitializer {
	mi.eager = eager
	return mi
}

// Name returns the name of the initializer.
func (mi *MongoInitializer) Name() string {
	return "mongodb"
}

// Dependencies returns the names of initializers this one depends on.
func (mi *MongoInitializer) Dependencies() []string {
	return []string{"logging", "tracing", "datasources"}
}

// Initialize observes every definition source, then registers the client.
func (mi *MongoInitializer) Initialize(ctx context.Context) error {
	mgr := mi.datasources.GetManager()
	if mgr == nil {
		return fmt.Errorf("datasource container is not initialized")
	}

	defs, err := mi.discover()
	if err != nil {
		return err
	}
	for _, def := range defs {
		mi.extension.Observe(def)
	}
	mi.extension.FinalizeDiscovery()

	if mi.appClient != nil {
		if isNil(mi.appClient) {
			return storage.ErrInvalidConfig.WithMessage(
				fmt.Sprintf("application mongodb client is a nil %T", mi.appClient))
		}
		if err := mgr.Register(mongodb.ClientKey, datasource.InstanceProvider(mi.appClient)); err != nil {
			return fmt.Errorf("failed to register application mongodb client: %w", err)
		}
	}

	if err := mi.extension.RegisterIfAbsent(ctx, mgr); err != nil {
		return err
	}
	mi.producers = mongodb.NewProducers(mgr)

	if mi.eager && mgr.Has(mongodb.ClientKey) {
		if _, err := mgr.Get(ctx, mongodb.ClientKey); err != nil {
			return err
		}
	}

	return nil
}

// discover collects definitions from every source in observation order.
func (mi *MongoInitializer) discover() ([]mongoopts.Definition, error) {
	defs := append([]mongoopts.Definition(nil), mi.declared...)

	if def, ok := mi.opts.Definition(); ok {
		defs = append(defs, def)
	}

	var (
		def mongoopts.Definition
		ok  bool
		err error
	)
	if mi.environment != nil {
		def, ok, err = mongoopts.DefinitionFromEnvMap(mi.environment)
	} else {
		def, ok, err = mongoopts.DefinitionFromEnv()
	}
	if err != nil {
		return nil, err
	}
	if ok {
		defs = append(defs, def)
	}

	logger.Debugw("MongoDB definitions discovered", "count", len(defs))
	return defs, nil
}

// Extension returns the registration state.
func (mi *MongoInitializer) Extension() *mongodb.Extension {
	return mi.extension
}

// Producers returns the handle producers. Nil before Initialize.
func (mi *MongoInitializer) Producers() *mongodb.Producers {
	return mi.producers
}

// isNil reports whether v holds a nil pointer, such as (*mongo.Client)(nil).
func isNil(v any) bool {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	default:
		return false
	}
}
