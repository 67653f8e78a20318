package bootstrap

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	component "github.com/kart-io/sentinel-mongo/pkg/component/mongodb"
	"github.com/kart-io/sentinel-mongo/pkg/component/storage"
	"github.com/kart-io/sentinel-mongo/pkg/infra/datasource"
	"github.com/kart-io/sentinel-mongo/pkg/infra/tracing"
	"github.com/kart-io/sentinel-mongo/pkg/mongodb"
	mongoopts "github.com/kart-io/sentinel-mongo/pkg/options/mongodb"
	tracingopts "github.com/kart-io/sentinel-mongo/pkg/options/tracing"
)

func offlineMongoOptions(url string) *mongoopts.Options {
	opts := mongoopts.NewOptions()
	opts.PingOnConnect = false
	opts.URL = url
	return opts
}

func resolveDefinition(t *testing.T, b *AppBootstrapper) mongoopts.Definition {
	t.Helper()

	client, err := datasource.Resolve[*component.Client](context.Background(), b.Manager(), mongodb.ClientKey)
	require.NoError(t, err)
	return client.Definition()
}

func TestAppBootstrapper_DiscoveryOrder(t *testing.T) {
	declared := mongoopts.Definition{Name: "code", URL: "mongodb://code"}
	env := map[string]string{"MONGODB_NAME": "env", "MONGODB_URL": "mongodb://env"}

	tests := []struct {
		name     string
		opts     *BootstrapOptions
		want     mongoopts.Definition
		conflict bool
	}{
		{
			name: "code first",
			opts: &BootstrapOptions{
				Definitions: []mongoopts.Definition{declared},
				MongoOpts:   offlineMongoOptions("mongodb://flags"),
				Environment: env,
			},
			want:     declared,
			conflict: true,
		},
		{
			name: "flags before environment",
			opts: &BootstrapOptions{
				MongoOpts:   offlineMongoOptions("mongodb://flags"),
				Environment: env,
			},
			want:     mongoopts.Definition{Name: mongoopts.DefaultDefinitionName, URL: "mongodb://flags"},
			conflict: true,
		},
		{
			name: "environment only",
			opts: &BootstrapOptions{
				MongoOpts:   offlineMongoOptions(""),
				Environment: env,
			},
			want: mongoopts.Definition{Name: "env", URL: "mongodb://env"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewAppBootstrapper(tt.opts)
			require.NoError(t, b.Initialize(context.Background()))
			defer func() { _ = b.Shutdown(context.Background()) }()

			assert.Equal(t, tt.conflict, b.Extension().Conflict())
			assert.True(t, b.Extension().Registered())
			assert.Equal(t, tt.want, resolveDefinition(t, b))
		})
	}
}

func TestAppBootstrapper_NothingDeclared(t *testing.T) {
	b := NewAppBootstrapper(&BootstrapOptions{
		MongoOpts:   offlineMongoOptions(""),
		Environment: map[string]string{},
	})
	require.NoError(t, b.Initialize(context.Background()))

	assert.False(t, b.Extension().Registered())
	assert.Empty(t, b.Manager().ListRegistered())

	_, err := b.Producers().Database(context.Background(), mongodb.ForDatabase("myTestDb"))
	assert.ErrorIs(t, err, storage.ErrClientNotFound)
	assert.NoError(t, b.Shutdown(context.Background()))
}

func TestAppBootstrapper_ApplicationClient(t *testing.T) {
	raw, err := mongo.Connect(context.Background(), options.Client().ApplyURI("mongodb://localhost"))
	require.NoError(t, err)
	defer func() { _ = raw.Disconnect(context.Background()) }()

	b := NewAppBootstrapper(&BootstrapOptions{
		Definitions:       []mongoopts.Definition{{Name: "test", URL: "mongodb://localhost"}},
		MongoOpts:         offlineMongoOptions(""),
		Environment:       map[string]string{},
		ApplicationClient: raw,
	})
	require.NoError(t, b.Initialize(context.Background()))

	assert.False(t, b.Extension().Registered())
	origin, _ := b.Manager().Origin(mongodb.ClientKey)
	assert.Equal(t, datasource.OriginApplication, origin)

	coll, err := b.Producers().Collection(context.Background(), mongodb.ForCollection("myTestDb", "testCollection"))
	require.NoError(t, err)
	assert.Same(t, raw, coll.Database().Client())

	require.NoError(t, b.Shutdown(context.Background()))
}

func TestAppBootstrapper_NilApplicationClient(t *testing.T) {
	for name, client := range map[string]any{
		"raw":     (*mongo.Client)(nil),
		"managed": (*component.Client)(nil),
	} {
		t.Run(name, func(t *testing.T) {
			b := NewAppBootstrapper(&BootstrapOptions{
				Definitions:       []mongoopts.Definition{{Name: "test", URL: "mongodb://localhost"}},
				MongoOpts:         offlineMongoOptions(""),
				Environment:       map[string]string{},
				ApplicationClient: client,
			})

			err := b.Initialize(context.Background())
			assert.ErrorIs(t, err, storage.ErrInvalidConfig)
			assert.Contains(t, err.Error(), "application mongodb client is a nil")
			assert.False(t, b.Manager().Has(mongodb.ClientKey))
		})
	}
}

func TestAppBootstrapper_EagerConnectFailsFast(t *testing.T) {
	b := NewAppBootstrapper(&BootstrapOptions{
		MongoOpts:    offlineMongoOptions("not-a-url"),
		Environment:  map[string]string{},
		EagerConnect: true,
	})

	err := b.Initialize(context.Background())
	assert.ErrorIs(t, err, storage.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "failed to initialize mongodb")
}

func TestRun_ShutsDownAfterRunFunc(t *testing.T) {
	var client *component.Client

	err := Run(context.Background(), &BootstrapOptions{
		AppName:     "test",
		Definitions: []mongoopts.Definition{{Name: "test", URL: "mongodb://localhost"}},
		MongoOpts:   offlineMongoOptions(""),
		Environment: map[string]string{},
	}, func(ctx context.Context, b *AppBootstrapper) error {
		_, err := b.Producers().Collection(ctx, mongodb.ForCollection("myTestDb", "testCollection"))
		if err != nil {
			return err
		}
		client, err = datasource.Resolve[*component.Client](ctx, b.Manager(), mongodb.ClientKey)
		return err
	})
	require.NoError(t, err)
	require.NotNil(t, client)

	assert.ErrorIs(t, client.Ping(context.Background()), storage.ErrNotConnected)
}

func TestAppBootstrapper_TracesClientConstruction(t *testing.T) {
	exp := tracetest.NewInMemoryExporter()
	traceOpts := tracing.NewOptions()
	traceOpts.Enabled = true
	traceOpts.ExporterType = tracingopts.ExporterNoop

	b := NewAppBootstrapper(&BootstrapOptions{
		AppName:       "test",
		TracingOpts:   traceOpts,
		TracerOptions: []tracing.Option{tracing.WithExporter(exp)},
		Definitions:   []mongoopts.Definition{{Name: "test", URL: "mongodb://localhost"}},
		MongoOpts:     offlineMongoOptions(""),
		Environment:   map[string]string{},
		EagerConnect:  true,
	})
	require.NoError(t, b.Initialize(context.Background()))
	require.NoError(t, b.tracingInit.Provider().ForceFlush(context.Background()))

	spans := exp.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "mongodb.connect", spans[0].Name)

	attrs := make(map[string]string)
	for _, kv := range spans[0].Attributes {
		attrs[string(kv.Key)] = kv.Value.Emit()
	}
	assert.Equal(t, "mongodb", attrs["db.system"])
	assert.Equal(t, "test", attrs["mongodb.definition"])
	assert.NotEmpty(t, attrs["mongodb.instance_id"])

	require.NoError(t, b.Shutdown(context.Background()))
}
