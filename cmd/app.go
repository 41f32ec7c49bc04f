package cmd

import (
	"context"
	"errors"
	"net/http"

	"backoffice/api"
	"backoffice/config"
	"backoffice/infrastructure/persistence/gormdb"
	"backoffice/pkg/logger"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// App is the running process: HTTP server and/or outbox relay.
type App struct {
	config  *config.Config
	router  *api.Router
	server  *http.Server
	relay   *gormdb.OutboxRelay
	db      *gorm.DB
	closers []func() error
}

// Run serves until ctx is cancelled, then shuts the server down gracefully.
// The first component to fail stops the others.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	if a.server != nil {
		g.Go(func() error {
			logger.Info("HTTP server listening", zap.String("addr", a.server.Addr))
			if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.config.Server.ShutdownTimeout)
			defer cancel()
			logger.Info("Shutting down HTTP server")
			return a.server.Shutdown(shutdownCtx)
		})
	}

	if a.relay != nil {
		g.Go(func() error {
			if err := a.relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	return g.Wait()
}

// Close releases resources in reverse order of acquisition.
func (a *App) Close() error {
	if a == nil {
		return nil
	}
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

func (a *App) Handler() http.Handler {
	if a.router == nil {
		return nil
	}
	return a.router.GetEngine()
}

func (a *App) DB() *gorm.DB {
	return a.db
}
