package client

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/utafrali/esfuture/pkg/errors"
	"github.com/utafrali/esfuture/pkg/logger"
)

// Call outcomes used as the "outcome" metric label.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
)

// HeaderOpaqueID is the header the engine echoes into its task and slow logs.
const HeaderOpaqueID = "X-Opaque-Id"

var (
	callsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "esfuture_calls_total",
			Help: "Total number of Elasticsearch calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	callDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "esfuture_call_duration_seconds",
			Help:    "Duration of Elasticsearch calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	callsInFlight = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "esfuture_calls_in_flight",
			Help: "Current number of Elasticsearch calls awaiting a response",
		},
		[]string{"operation"},
	)
)

// observe starts the span and in-flight accounting for one call. The
// returned function records the outcome and must be called exactly once.
func (c *Client) observe(ctx context.Context, op string) (context.Context, func(*esapi.Response, error)) {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "es."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "elasticsearch"),
			attribute.String("db.operation", op),
		),
	)
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		span.SetAttributes(attribute.String("correlation_id", id))
	}

	gauge := callsInFlight.WithLabelValues(op)
	gauge.Inc()

	return ctx, func(res *esapi.Response, err error) {
		elapsed := time.Since(start)
		gauge.Dec()

		if res != nil {
			span.SetAttributes(attribute.Int("http.status_code", res.StatusCode))
		}
		outcome := OutcomeSuccess
		if err != nil {
			outcome = OutcomeError
			if errors.Is(err, apperrors.ErrTimeout) {
				outcome = OutcomeTimeout
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()

		callsTotal.WithLabelValues(op, outcome).Inc()
		callDuration.WithLabelValues(op).Observe(elapsed.Seconds())
		c.logCall(ctx, op, elapsed, res, err)
	}
}

// opaqueIDTransport forwards the call's correlation id to the engine.
type opaqueIDTransport struct {
	next esapi.Transport
}

func (t opaqueIDTransport) Perform(req *http.Request) (*http.Response, error) {
	if req.Header == nil {
		req.Header = make(http.Header)
	}
	if req.Header.Get(HeaderOpaqueID) == "" {
		if id := logger.CorrelationIDFromContext(req.Context()); id != "" {
			req.Header.Set(HeaderOpaqueID, id)
		}
	}
	return t.next.Perform(req)
}
