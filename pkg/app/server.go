package app

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/nuber-eats/nuber/internal/server"
	"github.com/nuber-eats/nuber/pkg/logger"
)

// Serve starts the workers and the HTTP server on addr. When ctx is
// cancelled it drains the server, waits for the workers, then runs the
// shutdown hooks.
func (a *Application) Serve(ctx context.Context, addr string) error {
	handler := a.Handler()

	workCtx, stopWorkers := context.WithCancel(ctx)
	var wg sync.WaitGroup
	for _, w := range a.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.Info("app: worker started", "worker", w.name)
			w.run(workCtx)
			logger.Info("app: worker stopped", "worker", w.name)
		}()
	}

	err := server.Serve(ctx, handler, server.Options{Addr: addr})

	stopWorkers()
	wg.Wait()
	return errors.Join(err, a.Close())
}

// Close runs the shutdown hooks, newest first, each bounded by 10s.
func (a *Application) Close() error {
	var errs []error
	for i := len(a.shutdown) - 1; i >= 0; i-- {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := a.shutdown[i](ctx); err != nil {
			logger.Error("app: shutdown hook failed", "error", err)
			errs = append(errs, err)
		}
		cancel()
	}
	a.shutdown = nil
	return errors.Join(errs...)
}
