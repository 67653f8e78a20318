package datasource

import (
	"context"
	"fmt"

	"github.com/kart-io/sentinel-mongo/pkg/component/storage"
)

// Resolve returns the resource registered under key as a T.
//
//	client, err := datasource.Resolve[*mongodb.Client](ctx, mgr, "mongodb:client")
func Resolve[T any](ctx context.Context, mgr *Manager, key string) (T, error) {
	var zero T
	instance, err := mgr.Get(ctx, key)
	if err != nil {
		return zero, err
	}
	typed, ok := instance.(T)
	if !ok {
		return zero, storage.ErrInvalidConfig.WithMessage(
			fmt.Sprintf("type assertion failed for '%s': expected %T, got %T", key, zero, instance))
	}
	return typed, nil
}

// TypedGetter provides type-safe access to one registered resource.
//
//	getter := datasource.NewTypedGetter[*mongodb.Client](mgr, "mongodb:client")
//	client, err := getter.Get()
type TypedGetter[T any] struct {
	mgr *Manager
	key string
}

// NewTypedGetter creates a new type-safe getter for key.
func NewTypedGetter[T any](mgr *Manager, key string) *TypedGetter[T] {
	return &TypedGetter[T]{
		mgr: mgr,
		key: key,
	}
}

// Get retrieves the resource using context.Background().
func (g *TypedGetter[T]) Get() (T, error) {
	return Resolve[T](context.Background(), g.mgr, g.key)
}

// GetWithContext retrieves the resource; ctx bounds a first-use construction.
func (g *TypedGetter[T]) GetWithContext(ctx context.Context) (T, error) {
	return Resolve[T](ctx, g.mgr, g.key)
}

// MustGet retrieves the resource, panicking on error.
func (g *TypedGetter[T]) MustGet() T {
	instance, err := g.Get()
	if err != nil {
		panic(fmt.Sprintf("failed to get resource '%s': %v", g.key, err))
	}
	return instance
}
