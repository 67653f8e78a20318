package mongodb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	component "github.com/kart-io/sentinel-mongo/pkg/component/mongodb"
	"github.com/kart-io/sentinel-mongo/pkg/component/storage"
	"github.com/kart-io/sentinel-mongo/pkg/infra/datasource"
)

// newRawClient connects lazily; no server is contacted.
func newRawClient(t *testing.T) *mongo.Client {
	t.Helper()

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI("mongodb://localhost"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })
	return client
}

func TestProducers_ApplicationClient(t *testing.T) {
	raw := newRawClient(t)
	mgr := datasource.NewManager()
	require.NoError(t, mgr.Register(ClientKey, datasource.InstanceProvider(raw)))

	producers := NewProducers(mgr)

	db, err := producers.Database(context.Background(), ForDatabase("myTestDb"))
	require.NoError(t, err)
	want := raw.Database("myTestDb")
	assert.Equal(t, want.Name(), db.Name())
	assert.Same(t, want.Client(), db.Client())

	coll, err := producers.Collection(context.Background(), ForCollection("myTestDb", "testCollection"))
	require.NoError(t, err)
	wantColl := want.Collection("testCollection")
	assert.Equal(t, wantColl.Name(), coll.Name())
	assert.Equal(t, wantColl.Database().Name(), coll.Database().Name())
	assert.Same(t, raw, coll.Database().Client())
}

func TestProducers_ExtensionClient(t *testing.T) {
	mgr := datasource.NewManager()
	defer func() { _ = mgr.CloseAll(context.Background()) }()

	ext := NewExtension(offlineOptions())
	ext.Observe(Definition{Name: "test", URL: "mongodb://localhost"})
	ext.FinalizeDiscovery()
	require.NoError(t, ext.RegisterIfAbsent(context.Background(), mgr))

	producers := NewProducers(mgr)
	coll, err := producers.Collection(context.Background(), ForCollection("myTestDb", "testCollection"))
	require.NoError(t, err)

	client, err := datasource.Resolve[*component.Client](context.Background(), mgr, ClientKey)
	require.NoError(t, err)
	assert.Same(t, client.Raw(), coll.Database().Client())
	assert.Equal(t, client.Collection("myTestDb", "testCollection").Name(), coll.Name())

	// Repeated calls never build a second client.
	_, err = producers.Database(context.Background(), ForDatabase("other"))
	require.NoError(t, err)
	assert.Equal(t, []string{ClientKey}, mgr.ListInitialized())
}

func TestProducers_UnresolvedQualifier(t *testing.T) {
	producers := NewProducers(datasource.NewManager())

	tests := []struct {
		name       string
		collection bool
		q          Qualifier
	}{
		{"database missing", false, Qualifier{}},
		{"database missing with collection", true, ForCollection("", "testCollection")},
		{"collection missing", true, ForDatabase("myTestDb")},
		{"both missing", true, Qualifier{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.collection {
				_, err = producers.Collection(context.Background(), tt.q)
			} else {
				_, err = producers.Database(context.Background(), tt.q)
			}
			assert.ErrorIs(t, err, storage.ErrUnresolvedQualifier)
		})
	}
}

func TestProducers_DriverAcceptedNames(t *testing.T) {
	raw := newRawClient(t)
	mgr := datasource.NewManager()
	require.NoError(t, mgr.Register(ClientKey, datasource.InstanceProvider(raw)))
	producers := NewProducers(mgr)

	for _, q := range []Qualifier{
		ForCollection("local", "system.profile"),
		ForCollection("myTestDb", "system.js"),
		ForCollection("local", "oplog.$main"),
		ForCollection("my db", "a$b"),
	} {
		t.Run(q.String(), func(t *testing.T) {
			coll, err := producers.Collection(context.Background(), q)
			require.NoError(t, err)
			want := raw.Database(q.Database).Collection(q.Collection)
			assert.Equal(t, want.Name(), coll.Name())
			assert.Equal(t, want.Database().Name(), coll.Database().Name())
		})
	}

	db, err := producers.Database(context.Background(), ForDatabase("my.db"))
	require.NoError(t, err)
	assert.Equal(t, "my.db", db.Name())
}

func TestQualifier_ValidateNamesFields(t *testing.T) {
	err := Qualifier{}.Validate(true)
	require.Error(t, err)

	se, ok := storage.GetStorageError(err)
	require.True(t, ok)
	fields, ok := se.GetContext("fields")
	require.True(t, ok)
	assert.Equal(t, []string{"database", "collection"}, fields)
	assert.Contains(t, err.Error(), "database is a required field")

	assert.NoError(t, ForCollection("myTestDb", "testCollection").Validate(true))
	assert.NoError(t, ForDatabase("myTestDb").Validate(false))
	assert.Equal(t, "myTestDb.testCollection", ForCollection("myTestDb", "testCollection").String())
	assert.Equal(t, "myTestDb", ForDatabase("myTestDb").String())
}

func TestProducers_ClientNotRegistered(t *testing.T) {
	producers := NewProducers(datasource.NewManager())

	_, err := producers.Database(context.Background(), ForDatabase("myTestDb"))
	assert.ErrorIs(t, err, storage.ErrClientNotFound)
}

func TestProducers_WrongResourceType(t *testing.T) {
	mgr := datasource.NewManager()
	require.NoError(t, mgr.Register(ClientKey, datasource.InstanceProvider("not a client")))

	_, err := NewProducers(mgr).Database(context.Background(), ForDatabase("myTestDb"))
	assert.ErrorIs(t, err, storage.ErrInvalidConfig)
}
