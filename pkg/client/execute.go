package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	apperrors "github.com/utafrali/esfuture/pkg/errors"
	"github.com/utafrali/esfuture/pkg/future"
	"github.com/utafrali/esfuture/pkg/logger"
)

// execute schedules req on the pool and resolves with the vendor response.
func (c *Client) execute(ctx context.Context, op string, req esapi.Request) *future.Future[*esapi.Response] {
	ctx, _ = logger.EnsureCorrelationID(ctx)
	return future.Submit(ctx, c.pool, func(ctx context.Context) (*esapi.Response, error) {
		return c.perform(ctx, op, req)
	})
}

// perform runs one vendor call bounded by the client timeout. The body is
// read before the deadline is released so the response outlives the call.
func (c *Client) perform(ctx context.Context, op string, req esapi.Request) (res *esapi.Response, err error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, end := c.observe(ctx, op)
	defer func() { end(res, err) }()

	res, err = req.Do(ctx, c.transport)
	if err == nil {
		res, err = settle(op, res)
	}
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s: call exceeded %s: %w: %w", op, c.timeout, apperrors.ErrTimeout, err)
		}
		var respErr *apperrors.ResponseError
		if errors.As(err, &respErr) {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res, nil
}

// settle buffers the body and turns vendor error statuses into errors.
// A 404 without an error object is a document-level miss and stays a response.
func settle(op string, res *esapi.Response) (*esapi.Response, error) {
	var data []byte
	if res.Body != nil {
		var err error
		data, err = io.ReadAll(res.Body)
		_ = res.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read response body: %w", err)
		}
	}
	res.Body = newBufferedBody(data)

	if !res.IsError() {
		return res, nil
	}
	respErr, hasCause := apperrors.ParseResponseError(op, res.StatusCode, data)
	if res.StatusCode == http.StatusNotFound && !hasCause {
		return res, nil
	}
	return nil, respErr
}

// bufferedBody is a response body held in memory. It can be re-read through
// Decode and Bytes any number of times.
type bufferedBody struct {
	*bytes.Reader
	data []byte
}

func newBufferedBody(data []byte) *bufferedBody {
	return &bufferedBody{Reader: bytes.NewReader(data), data: data}
}

func (*bufferedBody) Close() error { return nil }

// Bytes returns the body of a response produced by this package.
func Bytes(res *esapi.Response) ([]byte, error) {
	if res == nil || res.Body == nil {
		return nil, nil
	}
	if b, ok := res.Body.(*bufferedBody); ok {
		return b.data, nil
	}
	return io.ReadAll(res.Body)
}

// Decode unmarshals the response body into v.
func Decode(res *esapi.Response, v any) error {
	data, err := Bytes(res)
	if err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) logCall(ctx context.Context, op string, elapsed time.Duration, res *esapi.Response, err error) {
	l := logger.WithContext(ctx, c.logger)
	attrs := []any{
		slog.String("operation", op),
		slog.Duration("duration", elapsed),
	}
	if res != nil {
		attrs = append(attrs, slog.Int("status", res.StatusCode))
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}

	if c.slowCall > 0 && elapsed >= c.slowCall {
		l.WarnContext(ctx, "slow elasticsearch call", attrs...)
		return
	}
	l.DebugContext(ctx, "elasticsearch call", attrs...)
}
