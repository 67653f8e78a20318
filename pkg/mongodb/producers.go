package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"

	component "github.com/kart-io/sentinel-mongo/pkg/component/mongodb"
	"github.com/kart-io/sentinel-mongo/pkg/component/storage"
)

// Resolver looks up container resources, building them on first use.
// *datasource.Manager implements it.
type Resolver interface {
	Get(ctx context.Context, key string) (any, error)
}

// Producers hands out database and collection handles of the client
// registered under ClientKey.
type Producers struct {
	resolver Resolver
}

// NewProducers creates producers backed by resolver.
func NewProducers(resolver Resolver) *Producers {
	return &Producers{resolver: resolver}
}

// Database returns the handle for q.Database. The first call builds the
// client if it has not been built yet.
func (p *Producers) Database(ctx context.Context, q Qualifier) (*mongo.Database, error) {
	if err := q.Validate(false); err != nil {
		return nil, err
	}

	client, err := p.client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(q.Database), nil
}

// Collection returns the handle for q.Collection in q.Database.
func (p *Producers) Collection(ctx context.Context, q Qualifier) (*mongo.Collection, error) {
	if err := q.Validate(true); err != nil {
		return nil, err
	}

	client, err := p.client(ctx)
	if err != nil {
		return nil, err
	}
	return client.Database(q.Database).Collection(q.Collection), nil
}

func (p *Producers) client(ctx context.Context) (*mongo.Client, error) {
	instance, err := p.resolver.Get(ctx, ClientKey)
	if err != nil {
		return nil, err
	}

	switch c := instance.(type) {
	case *component.Client:
		return c.Raw(), nil
	case *mongo.Client:
		return c, nil
	default:
		return nil, storage.ErrInvalidConfig.WithMessage(
			fmt.Sprintf("resource '%s' is %T, not a mongodb client", ClientKey, instance))
	}
}
