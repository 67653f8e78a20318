package bootstrap

import (
	"context"
	"fmt"

	"github.com/kart-io/logger"

	"github.com/kart-io/sentinel-mongo/pkg/infra/datasource"
)

// DatasourceInitializer owns the application scoped resource container.
type DatasourceInitializer struct {
	manager *datasource.Manager
}

// NewDatasourceInitializer creates a new DatasourceInitializer.
func NewDatasourceInitializer() *DatasourceInitializer {
	return &DatasourceInitializer{}
}

// Name returns the name of the initializer.
func (di *DatasourceInitializer) Name() string {
	return "datasources"
}

// Dependencies returns the names of initializers this one depends on.
func (di *DatasourceInitializer) Dependencies() []string {
	return []string{"logging"}
}

// Initialize creates the container. Resources are registered by later
// initializers and built on first use.
func (di *DatasourceInitializer) Initialize(_ context.Context) error {
	di.manager = datasource.NewManager()
	logger.Debug("Datasource container created")
	return nil
}

// Shutdown disposes every resource built by the container.
func (di *DatasourceInitializer) Shutdown(ctx context.Context) error {
	if di.manager == nil {
		return nil
	}

	initialized := di.manager.ListInitialized()
	if err := di.manager.CloseAll(ctx); err != nil {
		logger.Errorw("Failed to close datasources during shutdown", "error", err.Error())
		return fmt.Errorf("failed to close datasources: %w", err)
	}
	logger.Infow("All datasources closed successfully", "closed", initialized)
	return nil
}

// GetManager returns the datasource manager.
func (di *DatasourceInitializer) GetManager() *datasource.Manager {
	return di.manager
}
