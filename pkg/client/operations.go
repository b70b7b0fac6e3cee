package client

import (
	"context"
	"net/http"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/utafrali/esfuture/pkg/future"
)

// Operation names, used for errors, spans, logs and metric labels.
const (
	OpIndex         = "index"
	OpSearch        = "search"
	OpMultiSearch   = "msearch"
	OpCount         = "count"
	OpGet           = "get"
	OpMultiGet      = "mget"
	OpDelete        = "delete"
	OpDeleteByQuery = "delete_by_query"
	OpUpdate        = "update"
	OpBulk          = "bulk"
	OpValidateQuery = "validate_query"
	OpMoreLikeThis  = "more_like_this"
	OpPercolate     = "percolate"
	OpCreateIndex   = "create_index"
	OpDeleteIndex   = "delete_index"
	OpOptimize      = "optimize"
	OpIndicesExists = "indices_exists"
	OpSearchScroll  = "search_scroll"
	OpClearScroll   = "clear_scroll"
	OpPing          = "ping"
)

// ResponseFuture is the future type every request-taking operation returns.
type ResponseFuture = future.Future[*esapi.Response]

// Index stores a document.
func (c *Client) Index(ctx context.Context, req esapi.IndexRequest) *ResponseFuture {
	return c.execute(ctx, OpIndex, req)
}

// Search runs a search.
func (c *Client) Search(ctx context.Context, req esapi.SearchRequest) *ResponseFuture {
	return c.execute(ctx, OpSearch, req)
}

// MultiSearch runs several searches in one round trip.
func (c *Client) MultiSearch(ctx context.Context, req esapi.MsearchRequest) *ResponseFuture {
	return c.execute(ctx, OpMultiSearch, req)
}

// Count counts matching documents.
func (c *Client) Count(ctx context.Context, req esapi.CountRequest) *ResponseFuture {
	return c.execute(ctx, OpCount, req)
}

// Get fetches a document by id. A missing document resolves with the
// vendor's 404 response, not an error.
func (c *Client) Get(ctx context.Context, req esapi.GetRequest) *ResponseFuture {
	return c.execute(ctx, OpGet, req)
}

// MultiGet fetches several documents by id.
func (c *Client) MultiGet(ctx context.Context, req esapi.MgetRequest) *ResponseFuture {
	return c.execute(ctx, OpMultiGet, req)
}

// Delete removes a document by id. Deleting a missing document resolves with
// the vendor's 404 response.
func (c *Client) Delete(ctx context.Context, req esapi.DeleteRequest) *ResponseFuture {
	return c.execute(ctx, OpDelete, req)
}

// DeleteByQuery removes every document matching a query.
func (c *Client) DeleteByQuery(ctx context.Context, req esapi.DeleteByQueryRequest) *ResponseFuture {
	return c.execute(ctx, OpDeleteByQuery, req)
}

// Update applies a partial document or script to a document.
func (c *Client) Update(ctx context.Context, req esapi.UpdateRequest) *ResponseFuture {
	return c.execute(ctx, OpUpdate, req)
}

// Bulk sends an NDJSON batch of actions. Per-item failures stay in the
// response body as the engine reports them.
func (c *Client) Bulk(ctx context.Context, req esapi.BulkRequest) *ResponseFuture {
	return c.execute(ctx, OpBulk, req)
}

// ValidateQuery asks the engine whether a query is valid without running it.
func (c *Client) ValidateQuery(ctx context.Context, req esapi.IndicesValidateQueryRequest) *ResponseFuture {
	return c.execute(ctx, OpValidateQuery, req)
}

// MoreLikeThis finds documents similar to the given ones.
func (c *Client) MoreLikeThis(ctx context.Context, req MoreLikeThisRequest) *ResponseFuture {
	return c.execute(ctx, OpMoreLikeThis, req)
}

// Percolate finds the stored queries matching a document.
func (c *Client) Percolate(ctx context.Context, req PercolateRequest) *ResponseFuture {
	return c.execute(ctx, OpPercolate, req)
}

// CreateIndex creates an index with optional settings, mappings and aliases.
func (c *Client) CreateIndex(ctx context.Context, req esapi.IndicesCreateRequest) *ResponseFuture {
	return c.execute(ctx, OpCreateIndex, req)
}

// DeleteIndex deletes one or more indices.
func (c *Client) DeleteIndex(ctx context.Context, req esapi.IndicesDeleteRequest) *ResponseFuture {
	return c.execute(ctx, OpDeleteIndex, req)
}

// Optimize force-merges index segments.
func (c *Client) Optimize(ctx context.Context, req esapi.IndicesForcemergeRequest) *ResponseFuture {
	return c.execute(ctx, OpOptimize, req)
}

// IndicesExists reports whether every named index exists.
func (c *Client) IndicesExists(ctx context.Context, req esapi.IndicesExistsRequest) *future.Future[bool] {
	return future.Map(c.execute(ctx, OpIndicesExists, req), func(res *esapi.Response) (bool, error) {
		return res.StatusCode == http.StatusOK, nil
	})
}

// SearchScroll fetches the next page of a scrolled search.
func (c *Client) SearchScroll(ctx context.Context, req esapi.ScrollRequest) *ResponseFuture {
	return c.execute(ctx, OpSearchScroll, req)
}

// ClearScroll releases scroll contexts.
func (c *Client) ClearScroll(ctx context.Context, req esapi.ClearScrollRequest) *ResponseFuture {
	return c.execute(ctx, OpClearScroll, req)
}

// Ping checks that the cluster answers.
func (c *Client) Ping(ctx context.Context, req esapi.PingRequest) *ResponseFuture {
	return c.execute(ctx, OpPing, req)
}

// Healthy pings the cluster through the pool and waits for the answer. It
// matches the health.Checker signature.
func (c *Client) Healthy(ctx context.Context) error {
	_, err := c.Ping(ctx, esapi.PingRequest{}).Get(ctx)
	return err
}
