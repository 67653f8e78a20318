package mongodb

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	component "github.com/kart-io/sentinel-mongo/pkg/component/mongodb"
	"github.com/kart-io/sentinel-mongo/pkg/infra/datasource"
)

type info struct {
	X int `bson:"x"`
	Y int `bson:"y"`
}

type document struct {
	ID    primitive.ObjectID `bson:"_id"`
	Name  string             `bson:"name"`
	Type  string             `bson:"type"`
	Count int                `bson:"count"`
	Info  info               `bson:"info"`
}

// TestScenario_InsertAndReadBack requires a running server.
// Set MONGODB_TEST_URI (e.g. mongodb://localhost) to enable it.
func TestScenario_InsertAndReadBack(t *testing.T) {
	uri := os.Getenv("MONGODB_TEST_URI")
	if uri == "" {
		t.Skip("MONGODB_TEST_URI not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	mgr := datasource.NewManager()
	defer func() { _ = mgr.CloseAll(ctx) }()

	ext := NewExtension(nil)
	ext.Observe(Definition{Name: "test", URL: uri})
	ext.FinalizeDiscovery()
	require.NoError(t, ext.RegisterIfAbsent(ctx, mgr))

	coll, err := NewProducers(mgr).Collection(ctx, ForCollection("myTestDb", "testCollection"))
	require.NoError(t, err)

	doc := document{
		ID:    primitive.NewObjectID(),
		Name:  "MongoDB",
		Type:  "database",
		Count: 1,
		Info:  info{X: 203, Y: 102},
	}
	_, err = coll.InsertOne(ctx, doc)
	require.NoError(t, err)
	defer func() { _, _ = coll.DeleteOne(ctx, bson.M{"_id": doc.ID}) }()

	// Read back through an independently built client.
	other, err := component.NewWithContext(ctx, Definition{Name: "verify", URL: uri}, nil)
	require.NoError(t, err)
	defer func() { _ = other.Close() }()

	var got document
	err = other.Collection("myTestDb", "testCollection").FindOne(ctx, bson.M{"_id": doc.ID}).Decode(&got)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}
