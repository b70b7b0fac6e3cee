package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/utafrali/esfuture/internal/config"
	handler "github.com/utafrali/esfuture/internal/handler/http"
	"github.com/utafrali/esfuture/pkg/client"
	"github.com/utafrali/esfuture/pkg/health"
	"github.com/utafrali/esfuture/pkg/tracing"
)

// App wires together all dependencies and runs the probe.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	es         *client.Client
	shutdownTP tracing.Shutdown
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	tp, shutdownTP, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return nil, fmt.Errorf("init tracing: %w", err)
	}

	es, err := client.NewFromConfig(&cfg.Client, logger, client.WithTracerProvider(tp))
	if err != nil {
		_ = shutdownTP(ctx)
		return nil, fmt.Errorf("init elasticsearch client: %w", err)
	}
	logger.Info("elasticsearch client initialized",
		slog.String("mode", cfg.Client.Mode),
		slog.Any("addresses", cfg.Client.Addresses),
		slog.Duration("call_timeout", cfg.Client.CallTimeout),
		slog.Int("pool_size", cfg.Client.PoolSize),
	)

	// Health checks.
	healthHandler := health.NewHandler(cfg.ReadyTimeout)
	healthHandler.Register("elasticsearch", es.Healthy)

	router := handler.NewRouter(es, healthHandler, logger, tp, cfg.RequestTimeout)

	return &App{
		cfg:        cfg,
		logger:     logger,
		es:         es,
		shutdownTP: shutdownTP,
		httpServer: newServer(cfg.HTTPPort, router),
	}, nil
}

func newServer(port int, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// Handler returns the HTTP handler served by the app.
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run starts the HTTP server, blocking until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return errors.Join(err, a.Shutdown())
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components. The HTTP server drains first so
// in-flight requests can still reach the engine, then the client pool and
// the tracer provider are closed.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.es.Close()

	if err := a.shutdownTP(shutdownCtx); err != nil {
		a.logger.Error("tracer provider shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}
