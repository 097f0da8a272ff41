// Package app provides application lifecycle management for the indicators server.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/painel-economico/indicadores-server/internal/config"
)

// IndicadoresApp encapsulates all components needed to run the indicators API server
// It provides lifecycle management and graceful shutdown capabilities
type IndicadoresApp struct {
	config     *config.Config
	components *AppComponents
	httpServer *http.Server

	// Lifecycle management
	ctx        context.Context
	cancelFunc context.CancelFunc
}

// Start starts the application components (HTTP server, background refresh
// and session sweeper)
// This method blocks until the HTTP server stops or encounters an error
func (app *IndicadoresApp) Start() error {
	// Start the refresh coordinator in background. Its first pass runs
	// immediately, warming the cache before the TTL gate matters.
	if app.components.RefreshCoordinator != nil {
		go func() {
			if err := app.components.RefreshCoordinator.Start(app.ctx); err != nil {
				slog.Error("Refresh coordinator failed", "error", err)
			}
		}()
	}

	// Start the expired-session sweeper in background
	go func() {
		if err := app.components.Sessions.Run(app.ctx); err != nil {
			slog.Error("Session sweeper failed", "error", err)
		}
	}()

	// Start HTTP server (blocks until stopped)
	slog.Info("Server listening", "address", app.httpServer.Addr)
	if err := app.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	return nil
}

// Stop gracefully stops the application with the given timeout
// It stops the refresh coordinator and then shuts down the HTTP server
func (app *IndicadoresApp) Stop(timeout time.Duration) error {
	slog.Info("Shutting down server...")

	// Stop refresh coordinator first
	if app.components.RefreshCoordinator != nil {
		if err := app.components.RefreshCoordinator.Stop(); err != nil {
			slog.Error("Failed to stop refresh coordinator", "error", err)
		}
	}

	// Cancel the application context
	if app.cancelFunc != nil {
		app.cancelFunc()
	}

	// Graceful HTTP server shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := app.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	slog.Info("Server shutdown complete")
	return nil
}

// GetConfig returns the application configuration
func (app *IndicadoresApp) GetConfig() *config.Config {
	return app.config
}

// GetHTTPServer returns the HTTP server (useful for testing to get the actual port)
func (app *IndicadoresApp) GetHTTPServer() *http.Server {
	return app.httpServer
}
