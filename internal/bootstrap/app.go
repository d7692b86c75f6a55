package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/yanqian/preburn-dashboard/internal/domain/dashboard"
	"github.com/yanqian/preburn-dashboard/internal/infra/config"
)

// App encapsulates the HTTP server and dashboard session lifecycle.
type App struct {
	cfg       *config.Config
	logger    *slog.Logger
	server    *http.Server
	dashboard dashboard.Service
}

// NewApp is used by Wire to build the runnable app.
func NewApp(cfg *config.Config, logger *slog.Logger, server *http.Server, dashboardSvc dashboard.Service) *App {
	return &App{cfg: cfg, logger: logger.With("component", "bootstrap"), server: server, dashboard: dashboardSvc}
}

// Run starts the HTTP server and blocks until shutdown.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("http server starting", "address", a.cfg.HTTP.Address)
		if err := a.server.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.logger.Info("shutdown signal received")
		err := a.server.Shutdown(shutdownCtx)
		a.dashboard.Shutdown()
		return err
	case err := <-errCh:
		a.dashboard.Shutdown()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
