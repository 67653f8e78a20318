package demo

import (
	"context"
	"errors"
	"fmt"

	"github.com/kart-io/logger"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/kart-io/sentinel-mongo/internal/bootstrap"
	component "github.com/kart-io/sentinel-mongo/pkg/component/mongodb"
	"github.com/kart-io/sentinel-mongo/pkg/infra/datasource"
	"github.com/kart-io/sentinel-mongo/pkg/mongodb"
)

// ErrNoDefinition is returned when the round trip runs without any declared
// MongoDB client.
var ErrNoDefinition = errors.New("no MongoDB data source declared")

// Info is the nested part of Document.
type Info struct {
	X int `bson:"x" json:"x"`
	Y int `bson:"y" json:"y"`
}

// Document is written through the registered client and read back through
// an independent one.
type Document struct {
	ID    primitive.ObjectID `bson:"_id" json:"id"`
	Name  string             `bson:"name" json:"name"`
	Type  string             `bson:"type" json:"type"`
	Count int                `bson:"count" json:"count"`
	Info  Info               `bson:"info" json:"info"`
}

// NewDocument returns the sample document with a fresh id.
func NewDocument() Document {
	return Document{
		ID:    primitive.NewObjectID(),
		Name:  "MongoDB",
		Type:  "database",
		Count: 1,
		Info:  Info{X: 203, Y: 102},
	}
}

// Result reports one round trip.
type Result struct {
	Definition component.Definition `json:"definition"`
	Database   string               `json:"database"`
	Collection string               `json:"collection"`
	InstanceID string               `json:"instance_id,omitempty"`
	Inserted   Document             `json:"inserted"`
	ReadBack   Document             `json:"read_back"`
	Equal      bool                 `json:"equal"`
}

// RunScenario inserts a document through the producers of b and reads it
// back through a second client built from the same definition.
func RunScenario(ctx context.Context, b *bootstrap.AppBootstrapper, opts *Options) (*Result, error) {
	def, ok := b.Extension().Accepted()
	if !ok {
		return nil, ErrNoDefinition
	}

	q := mongodb.ForCollection(opts.Demo.Database, opts.Demo.Collection)
	coll, err := b.Producers().Collection(ctx, q)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Definition: def,
		Database:   q.Database,
		Collection: q.Collection,
		Inserted:   NewDocument(),
	}
	if client, err := datasource.Resolve[*component.Client](ctx, b.Manager(), mongodb.ClientKey); err == nil {
		result.InstanceID = client.InstanceID()
	}

	if _, err := coll.InsertOne(ctx, result.Inserted); err != nil {
		return nil, fmt.Errorf("failed to insert document into %s: %w", q, err)
	}
	logger.Infow("Document inserted", "collection", q.String(), "id", result.Inserted.ID.Hex())

	if opts.Demo.Cleanup {
		defer func() {
			if _, err := coll.DeleteOne(context.WithoutCancel(ctx), bson.M{"_id": result.Inserted.ID}); err != nil {
				logger.Warnw("Failed to delete demo document", "id", result.Inserted.ID.Hex(), "error", err.Error())
			}
		}()
	}

	verifier, err := component.NewWithContext(ctx, def, opts.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("failed to build verification client: %w", err)
	}
	defer func() { _ = verifier.Close() }()

	err = verifier.Collection(q.Database, q.Collection).
		FindOne(ctx, bson.M{"_id": result.Inserted.ID}).
		Decode(&result.ReadBack)
	if err != nil {
		return nil, fmt.Errorf("failed to read document back from %s: %w", q, err)
	}

	result.Equal = result.Inserted == result.ReadBack
	logger.Infow("Document read back", "collection", q.String(), "equal", result.Equal)
	return result, nil
}
