package storage

import (
	"context"
	"time"
)

// HealthChecker reports whether a storage backend is reachable.
type HealthChecker func() error

// HealthStatus is the outcome of a single health check.
type HealthStatus struct {
	Name    string
	Healthy bool
	Latency time.Duration
	Error   error
}

// Client is the base interface implemented by every storage client.
type Client interface {
	// Name returns the storage type identifier (e.g. "mongodb").
	Name() string

	// Ping verifies that the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the connections held by the client.
	// Implementations must be safe to call more than once.
	Close() error

	// Health returns a checker suitable for readiness probes.
	Health() HealthChecker
}

// Factory creates storage clients from a fixed configuration.
type Factory interface {
	Create(ctx context.Context) (Client, error)
}
