// Package middleware holds the HTTP middleware chain of the probe.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/utafrali/esfuture/pkg/logger"
)

// HeaderCorrelationID carries the correlation id in and out of the probe.
// The same id travels on to the engine as X-Opaque-Id.
const HeaderCorrelationID = "X-Correlation-ID"

// RequestLogging assigns each request a correlation id, stores a logger
// enriched with it in the context and logs the request once it completes.
// Mount it after Tracing so trace ids are picked up.
func RequestLogging(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx := r.Context()
			if id := r.Header.Get(HeaderCorrelationID); id != "" {
				ctx = logger.WithCorrelationID(ctx, id)
			}
			ctx, id := logger.EnsureCorrelationID(ctx)
			w.Header().Set(HeaderCorrelationID, id)

			l := logger.WithContext(ctx, base)
			ctx = logger.NewContext(ctx, l)

			sw := wrap(w)
			next.ServeHTTP(sw, r.WithContext(ctx))

			l.InfoContext(ctx, "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", sw.status),
				slog.Duration("duration", time.Since(start)),
				slog.Int("bytes", sw.bytes),
				slog.String("remote_addr", r.RemoteAddr),
			)
		})
	}
}
