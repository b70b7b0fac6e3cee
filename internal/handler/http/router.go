package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/esfuture/pkg/client"
	"github.com/utafrali/esfuture/pkg/health"
	"github.com/utafrali/esfuture/pkg/middleware"
)

// ServiceName labels the probe's HTTP metrics.
const ServiceName = "esprobe"

// NewRouter creates a chi router with all probe routes registered.
func NewRouter(
	es *client.Client,
	healthHandler *health.Handler,
	logger *slog.Logger,
	tp trace.TracerProvider,
	requestTimeout time.Duration,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Tracing(tp))
	r.Use(chimw.Compress(5))
	r.Use(chimw.Timeout(requestTimeout))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.Metrics(ServiceName))

	// Health check endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.Handler())

	indicesHandler := NewIndicesHandler(es, logger)

	r.Get("/v1/indices/{index}", indicesHandler.Exists)
	r.Get("/v1/indices/{index}/count", indicesHandler.Count)
	r.Get("/v1/indices/{index}/search", indicesHandler.Search)

	return r
}
