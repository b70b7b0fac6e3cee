// Package client wraps the Elasticsearch Go client so every call returns a
// future. Requests and responses are the vendor's own esapi types and pass
// through untouched; the package only schedules, bounds and observes calls.
package client

import (
	"log/slog"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/utafrali/esfuture/pkg/future"
	"github.com/utafrali/esfuture/pkg/logger"
)

const (
	// DefaultTimeout bounds each vendor call.
	DefaultTimeout = 10 * time.Second

	// DefaultSyncWait bounds each blocking call made through SyncClient.
	DefaultSyncWait = 10 * time.Second

	tracerName = "github.com/utafrali/esfuture/pkg/client"
)

// Client turns vendor calls into futures. It is safe for concurrent use.
type Client struct {
	transport esapi.Transport
	vendor    *elasticsearch.Client
	pool      *future.Pool
	ownsPool  bool
	timeout   time.Duration
	syncWait  time.Duration
	slowCall  time.Duration
	logger    *slog.Logger
	tracer    trace.Tracer
}

type options struct {
	timeout        time.Duration
	syncWait       time.Duration
	slowCall       time.Duration
	pool           *future.Pool
	poolSize       int
	logger         *slog.Logger
	tracerProvider trace.TracerProvider
}

// Option configures a Client.
type Option func(*options)

// WithTimeout sets the per-call timeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.timeout = d
		}
	}
}

// WithSyncWait sets how long SyncClient blocks on each call.
func WithSyncWait(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.syncWait = d
		}
	}
}

// WithPool schedules calls on a pool owned by the caller. Close leaves it running.
func WithPool(p *future.Pool) Option {
	return func(o *options) { o.pool = p }
}

// WithPoolSize sizes the pool the client creates for itself.
func WithPoolSize(n int) Option {
	return func(o *options) { o.poolSize = n }
}

// WithLogger sets the logger used for call logging.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSlowCallThreshold logs calls slower than d as warnings. Zero disables it.
func WithSlowCallThreshold(d time.Duration) Option {
	return func(o *options) { o.slowCall = d }
}

// WithTracerProvider overrides the global OpenTelemetry tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(o *options) { o.tracerProvider = tp }
}

func newClient(transport esapi.Transport, vendor *elasticsearch.Client, opts []Option) *Client {
	o := options{
		timeout:  DefaultTimeout,
		syncWait: DefaultSyncWait,
	}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Client{
		transport: opaqueIDTransport{next: transport},
		vendor:    vendor,
		pool:      o.pool,
		timeout:   o.timeout,
		syncWait:  o.syncWait,
		slowCall:  o.slowCall,
		logger:    o.logger,
	}
	if c.pool == nil {
		c.pool = future.NewPool(o.poolSize)
		c.ownsPool = true
	}
	if c.logger == nil {
		c.logger = logger.Discard()
	}
	if o.tracerProvider != nil {
		c.tracer = o.tracerProvider.Tracer(tracerName)
	} else {
		c.tracer = otel.Tracer(tracerName)
	}
	return c
}

// Vendor returns the wrapped vendor client, or nil when the client was built
// from a bare transport.
func (c *Client) Vendor() *elasticsearch.Client {
	return c.vendor
}

// Timeout returns the per-call timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Sync returns the blocking facade using the configured wait.
func (c *Client) Sync() *SyncClient {
	return &SyncClient{c: c, wait: c.syncWait}
}

// SyncWait returns the blocking facade with an explicit wait.
func (c *Client) SyncWait(d time.Duration) *SyncClient {
	return &SyncClient{c: c, wait: d}
}

// Close waits for in-flight calls and releases the pool if the client owns it.
func (c *Client) Close() {
	if c.ownsPool {
		c.pool.Close()
	}
}
