package client

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// recorded is a request as seen by fakeTransport, body included.
type recorded struct {
	Method string
	Path   string
	Query  map[string][]string
	Header http.Header
	Body   []byte
}

// fakeTransport is an esapi.Transport that records requests and answers
// through handler.
type fakeTransport struct {
	mu      sync.Mutex
	reqs    []recorded
	handler func(*http.Request) (*http.Response, error)
}

func newFakeTransport(handler func(*http.Request) (*http.Response, error)) *fakeTransport {
	return &fakeTransport{handler: handler}
}

func (t *fakeTransport) Perform(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		body, _ = io.ReadAll(req.Body)
		_ = req.Body.Close()
	}

	t.mu.Lock()
	t.reqs = append(t.reqs, recorded{
		Method: req.Method,
		Path:   req.URL.Path,
		Query:  req.URL.Query(),
		Header: req.Header.Clone(),
		Body:   body,
	})
	t.mu.Unlock()

	if t.handler == nil {
		return respond(http.StatusOK, `{}`), nil
	}
	return t.handler(req)
}

func (t *fakeTransport) last(tb testing.TB) recorded {
	tb.Helper()
	t.mu.Lock()
	defer t.mu.Unlock()
	require.NotEmpty(tb, t.reqs, "no request reached the transport")
	return t.reqs[len(t.reqs)-1]
}

func (t *fakeTransport) count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.reqs)
}

func respond(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

// newTestClient builds a client over a fake transport.
func newTestClient(t *testing.T, handler func(*http.Request) (*http.Response, error), opts ...Option) (*Client, *fakeTransport) {
	t.Helper()
	ft := newFakeTransport(handler)
	c := NewWithTransport(ft, opts...)
	t.Cleanup(c.Close)
	return c, ft
}

// readJSON decodes a request body into a generic map.
func readJSON(t *testing.T, r io.Reader) map[string]any {
	t.Helper()
	require.NotNil(t, r, "request has no body")
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	var m map[string]any
	require.NoError(t, json.Unmarshal(data, &m))
	return m
}

// ndjsonLines splits an NDJSON body into decoded lines.
func ndjsonLines(t *testing.T, r io.Reader) []map[string]any {
	t.Helper()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	require.True(t, bytes.HasSuffix(data, []byte("\n")), "NDJSON body must end with a newline")

	var out []map[string]any
	for _, line := range bytes.Split(bytes.TrimSuffix(data, []byte("\n")), []byte("\n")) {
		var m map[string]any
		require.NoError(t, json.Unmarshal(line, &m), "line %q", line)
		out = append(out, m)
	}
	return out
}

// syncBuffer is a bytes.Buffer safe for the pool goroutines that log into it.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
