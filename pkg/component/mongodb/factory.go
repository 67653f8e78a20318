package mongodb

import (
	"context"
	"fmt"

	"github.com/kart-io/sentinel-mongo/pkg/component/storage"
)

// Factory implements the storage.Factory interface for creating MongoDB clients.
// It records a definition and its tuning options; no connection is made
// until Create is called.
//
//	factory := mongodb.NewFactory(def, mongodb.NewOptions())
//	client, err := factory.Create(ctx)
type Factory struct {
	def  Definition
	opts *Options
}

// NewFactory creates a new MongoDB client factory.
// A nil opts uses NewOptions().
func NewFactory(def Definition, opts *Options) *Factory {
	if opts == nil {
		opts = NewOptions()
	}
	return &Factory{
		def:  def,
		opts: opts,
	}
}

// Create builds and connects a new MongoDB client.
// Implements storage.Factory interface.
func (f *Factory) Create(ctx context.Context) (storage.Client, error) {
	return f.CreateClient(ctx)
}

// CreateClient is Create with the concrete client type.
func (f *Factory) CreateClient(ctx context.Context) (*Client, error) {
	client, err := NewWithContext(ctx, f.def, f.opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create mongodb client: %w", err)
	}
	return client, nil
}

// Definition returns the definition used by this factory.
func (f *Factory) Definition() Definition {
	return f.def
}

// Options returns the MongoDB options used by this factory.
func (f *Factory) Options() *Options {
	return f.opts
}

// Clone creates a copy of the factory with its own options.
func (f *Factory) Clone() *Factory {
	optsCopy := *f.opts
	return &Factory{
		def:  f.def,
		opts: &optsCopy,
	}
}
