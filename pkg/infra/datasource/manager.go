// Package datasource provides the application scoped resource container of
// sentinel-mongo.
//
// Resources are registered as providers: a produce function that builds the
// resource and an optional dispose function that releases it. Nothing is
// built at registration time. The first Get for a key builds the resource,
// later calls return the same instance, and CloseAll disposes every built
// resource in reverse registration order.
//
// # Design Principles
//
//   - One instance per key for the lifetime of the Manager
//   - Lazy initialization with on-demand loading
//   - A failed construction is not cached; the next Get tries again
//   - Thread-safe operations
//
// # Usage Example
//
//	mgr := datasource.NewManager()
//
//	err := mgr.Register("mongodb:client", datasource.Provider{
//	    Produce: func(ctx context.Context) (any, error) { return factory.CreateClient(ctx) },
//	    Dispose: datasource.CloseDisposer,
//	    Origin:  datasource.OriginExtension,
//	})
//
//	defer mgr.CloseAll(ctx)
//
//	client, err := datasource.Resolve[*mongodb.Client](ctx, mgr, "mongodb:client")
package datasource

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/kart-io/logger"

	"github.com/kart-io/sentinel-mongo/pkg/component/storage"
)

// Origin records who registered a provider.
type Origin int

const (
	// OriginApplication marks resources the application registered itself.
	OriginApplication Origin = iota
	// OriginExtension marks resources registered automatically by an extension.
	OriginExtension
)

// String implements fmt.Stringer.
func (o Origin) String() string {
	switch o {
	case OriginApplication:
		return "application"
	case OriginExtension:
		return "extension"
	default:
		return fmt.Sprintf("origin(%d)", int(o))
	}
}

// ProduceFunc builds a resource.
type ProduceFunc func(ctx context.Context) (any, error)

// DisposeFunc releases a resource built by the matching ProduceFunc.
type DisposeFunc func(ctx context.Context, instance any) error

// Provider describes how an application scoped resource is built and released.
type Provider struct {
	Produce ProduceFunc
	// Dispose may be nil when the resource needs no cleanup or is owned elsewhere.
	Dispose DisposeFunc
	Origin  Origin
}

// entry holds the provider and the built instance for one key.
// instance is guarded by Manager.mu; build serializes construction and
// disposal of this key so Produce and Dispose run without the manager lock.
type entry struct {
	build    sync.Mutex
	provider Provider
	instance any
}

// Manager is the application scoped resource container.
//
// A Produce function may resolve other keys from the same Manager, but not
// its own key.
type Manager struct {
	mu sync.RWMutex

	entries map[string]*entry
	// order keeps registration order for listing and reverse disposal.
	order []string
}

// NewManager creates a new resource manager.
func NewManager() *Manager {
	return &Manager{
		entries: make(map[string]*entry),
	}
}

// =============================================================================
// Registration Methods
// =============================================================================

// Register records a provider under key. The resource is built lazily.
// Registering the same key twice returns storage.ErrClientAlreadyExists.
func (m *Manager) Register(key string, p Provider) error {
	if key == "" {
		return storage.ErrInvalidConfig.WithMessage("resource key cannot be empty")
	}
	if p.Produce == nil {
		return storage.ErrInvalidConfig.WithMessage(fmt.Sprintf("provider for '%s' has no produce function", key))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[key]; exists {
		return storage.ErrClientAlreadyExists.WithMessage(fmt.Sprintf("resource '%s' already registered", key))
	}

	m.entries[key] = &entry{provider: p}
	m.order = append(m.order, key)

	logger.Debugw("Resource registered", "key", key, "origin", p.Origin.String())
	return nil
}

// MustRegister registers a provider and panics if registration fails.
func (m *Manager) MustRegister(key string, p Provider) {
	if err := m.Register(key, p); err != nil {
		panic(fmt.Sprintf("failed to register resource: %v", err))
	}
}

// Has reports whether a provider is registered under key.
func (m *Manager) Has(key string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.entries[key]
	return exists
}

// Origin returns who registered the provider under key.
func (m *Manager) Origin(key string) (Origin, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, exists := m.entries[key]
	if !exists {
		return 0, false
	}
	return e.provider.Origin, true
}

// =============================================================================
// Initialization Methods
// =============================================================================

// InitAll builds every registered resource that is not built yet.
// On failure, resources built by this call are disposed again.
func (m *Manager) InitAll(ctx context.Context) error {
	var initialized []string
	for _, key := range m.ListRegistered() {
		_, built, err := m.ensure(ctx, key)
		if err != nil {
			for i := len(initialized) - 1; i >= 0; i-- {
				_ = m.disposeKey(ctx, initialized[i])
			}
			return err
		}
		if built {
			initialized = append(initialized, key)
		}
	}

	return nil
}

// =============================================================================
// Getter Methods (with lazy initialization)
// =============================================================================

// Get returns the resource registered under key, building it on first use.
// An unregistered key returns storage.ErrClientNotFound.
//
// Concurrent callers of the same key wait for a single build; callers of
// other keys are not blocked by it.
func (m *Manager) Get(ctx context.Context, key string) (any, error) {
	instance, _, err := m.ensure(ctx, key)
	return instance, err
}

// MustGet returns the resource or panics if it is not available.
func (m *Manager) MustGet(ctx context.Context, key string) any {
	instance, err := m.Get(ctx, key)
	if err != nil {
		panic(fmt.Sprintf("resource '%s' not available: %v", key, err))
	}
	return instance
}

// ensure returns the instance of key and whether this call built it.
func (m *Manager) ensure(ctx context.Context, key string) (any, bool, error) {
	// Fast path: read lock
	m.mu.RLock()
	e, exists := m.entries[key]
	var instance any
	if exists {
		instance = e.instance
	}
	m.mu.RUnlock()

	if !exists {
		return nil, false, storage.ErrClientNotFound.WithMessage(fmt.Sprintf("resource '%s' not registered", key))
	}
	if instance != nil {
		return instance, false, nil
	}

	e.build.Lock()
	defer e.build.Unlock()

	// Double-check after acquiring the build lock
	if instance = m.instanceOf(e); instance != nil {
		return instance, false, nil
	}

	instance, err := m.produce(ctx, key, e)
	if err != nil {
		return nil, false, err
	}

	m.mu.Lock()
	e.instance = instance
	m.mu.Unlock()
	return instance, true, nil
}

func (m *Manager) instanceOf(e *entry) any {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return e.instance
}

// produce builds the resource of e. Caller must hold e.build.
func (m *Manager) produce(ctx context.Context, key string, e *entry) (any, error) {
	instance, err := e.provider.Produce(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to init '%s': %w", key, err)
	}
	if instance == nil {
		return nil, storage.ErrInvalidConfig.WithMessage(fmt.Sprintf("provider for '%s' returned nil", key))
	}
	return instance, nil
}

// =============================================================================
// Health Check Methods
// =============================================================================

type pinger interface {
	Ping(ctx context.Context) error
}

// HealthCheckAll pings every built resource that supports it, in parallel.
func (m *Manager) HealthCheckAll(ctx context.Context) map[string]storage.HealthStatus {
	m.mu.RLock()
	targets := make(map[string]pinger)
	for key, e := range m.entries {
		if p, ok := e.instance.(pinger); ok {
			targets[key] = p
		}
	}
	m.mu.RUnlock()

	results := make(map[string]storage.HealthStatus, len(targets))
	var resultsMu sync.Mutex
	var wg sync.WaitGroup

	for key, p := range targets {
		wg.Add(1)
		go func(key string, p pinger) {
			defer wg.Done()

			start := time.Now()
			err := p.Ping(ctx)

			resultsMu.Lock()
			results[key] = storage.HealthStatus{
				Name:    key,
				Healthy: err == nil,
				Latency: time.Since(start),
				Error:   err,
			}
			resultsMu.Unlock()
		}(key, p)
	}

	wg.Wait()
	return results
}

// IsHealthy returns true if all built resources that support pinging are healthy.
func (m *Manager) IsHealthy(ctx context.Context) bool {
	for _, status := range m.HealthCheckAll(ctx) {
		if !status.Healthy {
			return false
		}
	}
	return true
}

// =============================================================================
// Close Methods
// =============================================================================

// CloseAll disposes every built resource in reverse registration order.
// Providers stay registered, so a later Get builds a fresh instance.
func (m *Manager) CloseAll(ctx context.Context) error {
	keys := m.ListRegistered()

	var errs []error
	for i := len(keys) - 1; i >= 0; i-- {
		if err := m.disposeKey(ctx, keys[i]); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// disposeKey releases the instance built for key, if any.
func (m *Manager) disposeKey(ctx context.Context, key string) error {
	m.mu.RLock()
	e, exists := m.entries[key]
	m.mu.RUnlock()
	if !exists {
		return nil
	}

	e.build.Lock()
	defer e.build.Unlock()

	m.mu.Lock()
	instance := e.instance
	e.instance = nil
	m.mu.Unlock()

	if instance == nil || e.provider.Dispose == nil {
		return nil
	}
	if err := e.provider.Dispose(ctx, instance); err != nil {
		logger.Warnw("Failed to dispose resource", "key", key, "error", err.Error())
		return fmt.Errorf("failed to close '%s': %w", key, err)
	}
	return nil
}

// =============================================================================
// Utility Methods
// =============================================================================

// ListRegistered returns the registered keys in registration order.
func (m *Manager) ListRegistered() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return append([]string(nil), m.order...)
}

// ListInitialized returns the keys whose resource is currently built.
func (m *Manager) ListInitialized() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []string
	for _, key := range m.order {
		if m.entries[key].instance != nil {
			result = append(result, key)
		}
	}
	return result
}

// =============================================================================
// Global Manager (Optional Singleton)
// =============================================================================

var (
	globalManager    *Manager
	globalManagerMu  sync.RWMutex
	globalManagerSet bool
)

// GetGlobal returns the global singleton manager instance.
// If not set via SetGlobal, it creates a default manager instance.
func GetGlobal() *Manager {
	globalManagerMu.RLock()
	if globalManager != nil {
		defer globalManagerMu.RUnlock()
		return globalManager
	}
	globalManagerMu.RUnlock()

	// Double-check pattern for initialization
	globalManagerMu.Lock()
	defer globalManagerMu.Unlock()

	if globalManager == nil {
		globalManager = NewManager()
		globalManagerSet = true
	}
	return globalManager
}

// SetGlobal sets the global manager instance.
// Returns an error if a global manager has already been set or initialized.
func SetGlobal(mgr *Manager) error {
	if mgr == nil {
		return fmt.Errorf("cannot set nil manager as global instance")
	}

	globalManagerMu.Lock()
	defer globalManagerMu.Unlock()

	if globalManagerSet {
		return fmt.Errorf("global manager already set, cannot override existing instance")
	}

	globalManager = mgr
	globalManagerSet = true
	return nil
}

// MustSetGlobal sets the global manager instance or panics if already set.
func MustSetGlobal(mgr *Manager) {
	if err := SetGlobal(mgr); err != nil {
		panic(fmt.Sprintf("failed to set global manager: %v", err))
	}
}

// ResetGlobal resets the global manager instance.
// This is primarily intended for testing purposes.
func ResetGlobal() *Manager {
	globalManagerMu.Lock()
	defer globalManagerMu.Unlock()

	prev := globalManager
	globalManager = nil
	globalManagerSet = false
	return prev
}
