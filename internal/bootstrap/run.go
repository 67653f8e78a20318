package bootstrap

import (
	"context"

	"github.com/kart-io/logger"
)

// RunFunc is the application body. It runs after every initializer has
// succeeded and before shutdown.
type RunFunc func(ctx context.Context, b *AppBootstrapper) error

// Run initializes the application, calls fn and shuts everything down
// again, whether fn fails or not.
func Run(ctx context.Context, opts *BootstrapOptions, fn RunFunc) (err error) {
	b := NewAppBootstrapper(opts)

	// Shutdown also runs when initialization fails part way.
	defer func() {
		if shutdownErr := b.Shutdown(context.WithoutCancel(ctx)); err == nil {
			err = shutdownErr
		}
		_ = logger.Flush()
	}()

	if err := b.Initialize(ctx); err != nil {
		return err
	}

	if fn == nil {
		return nil
	}
	return fn(ctx, b)
}
