package datasource

import (
	"context"
	"fmt"

	"github.com/kart-io/sentinel-mongo/pkg/component/storage"
)

// Client is the base interface that all storage clients must implement.
type Client = storage.Client

// Factory is the interface for creating storage clients.
type Factory = storage.Factory

// HealthStatus represents the health check result.
type HealthStatus = storage.HealthStatus

// FactoryProvider adapts a storage.Factory into a Provider whose instances
// are closed on disposal.
func FactoryProvider(f Factory, origin Origin) Provider {
	return Provider{
		Produce: func(ctx context.Context) (any, error) {
			return f.Create(ctx)
		},
		Dispose: CloseDisposer,
		Origin:  origin,
	}
}

// InstanceProvider registers an already built value. The manager never
// disposes it; the caller keeps ownership.
func InstanceProvider(instance any) Provider {
	return Provider{
		Produce: func(context.Context) (any, error) {
			return instance, nil
		},
		Origin: OriginApplication,
	}
}

// CloseDisposer disposes instances that implement Close() error or
// Disconnect(ctx) error.
func CloseDisposer(ctx context.Context, instance any) error {
	switch c := instance.(type) {
	case interface{ Disconnect(context.Context) error }:
		return c.Disconnect(ctx)
	case interface{ Close() error }:
		return c.Close()
	default:
		return fmt.Errorf("unsupported resource type for disposal: %T", instance)
	}
}
