package client

import (
	"context"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// SyncClient runs the client's operations and blocks for each result. A call
// whose future is not resolved within the wait fails with errors.ErrTimeout;
// the underlying call is still bounded by the client timeout.
type SyncClient struct {
	c    *Client
	wait time.Duration
}

// Wait returns how long each call blocks at most.
func (s *SyncClient) Wait() time.Duration {
	return s.wait
}

// Exec blocks on a future returned by any operation or builder.
func (s *SyncClient) Exec(f *ResponseFuture) (*esapi.Response, error) {
	return f.Await(s.wait)
}

// Index stores a document.
func (s *SyncClient) Index(ctx context.Context, req esapi.IndexRequest) (*esapi.Response, error) {
	return s.Exec(s.c.Index(ctx, req))
}

// Search runs a search.
func (s *SyncClient) Search(ctx context.Context, req esapi.SearchRequest) (*esapi.Response, error) {
	return s.Exec(s.c.Search(ctx, req))
}

// MultiSearch runs several searches in one round trip.
func (s *SyncClient) MultiSearch(ctx context.Context, req esapi.MsearchRequest) (*esapi.Response, error) {
	return s.Exec(s.c.MultiSearch(ctx, req))
}

// Count counts matching documents.
func (s *SyncClient) Count(ctx context.Context, req esapi.CountRequest) (*esapi.Response, error) {
	return s.Exec(s.c.Count(ctx, req))
}

// Get fetches a document by id.
func (s *SyncClient) Get(ctx context.Context, req esapi.GetRequest) (*esapi.Response, error) {
	return s.Exec(s.c.Get(ctx, req))
}

// MultiGet fetches several documents by id.
func (s *SyncClient) MultiGet(ctx context.Context, req esapi.MgetRequest) (*esapi.Response, error) {
	return s.Exec(s.c.MultiGet(ctx, req))
}

// Delete removes a document by id.
func (s *SyncClient) Delete(ctx context.Context, req esapi.DeleteRequest) (*esapi.Response, error) {
	return s.Exec(s.c.Delete(ctx, req))
}

// DeleteByQuery removes every document matching a query.
func (s *SyncClient) DeleteByQuery(ctx context.Context, req esapi.DeleteByQueryRequest) (*esapi.Response, error) {
	return s.Exec(s.c.DeleteByQuery(ctx, req))
}

// Update applies a partial document or script to a document.
func (s *SyncClient) Update(ctx context.Context, req esapi.UpdateRequest) (*esapi.Response, error) {
	return s.Exec(s.c.Update(ctx, req))
}

// Bulk sends a batch of actions.
func (s *SyncClient) Bulk(ctx context.Context, req esapi.BulkRequest) (*esapi.Response, error) {
	return s.Exec(s.c.Bulk(ctx, req))
}

// ValidateQuery checks a query without running it.
func (s *SyncClient) ValidateQuery(ctx context.Context, req esapi.IndicesValidateQueryRequest) (*esapi.Response, error) {
	return s.Exec(s.c.ValidateQuery(ctx, req))
}

// MoreLikeThis finds documents similar to the given ones.
func (s *SyncClient) MoreLikeThis(ctx context.Context, req MoreLikeThisRequest) (*esapi.Response, error) {
	return s.Exec(s.c.MoreLikeThis(ctx, req))
}

// Percolate finds the stored queries matching a document.
func (s *SyncClient) Percolate(ctx context.Context, req PercolateRequest) (*esapi.Response, error) {
	return s.Exec(s.c.Percolate(ctx, req))
}

// CreateIndex creates an index.
func (s *SyncClient) CreateIndex(ctx context.Context, req esapi.IndicesCreateRequest) (*esapi.Response, error) {
	return s.Exec(s.c.CreateIndex(ctx, req))
}

// DeleteIndex deletes indices.
func (s *SyncClient) DeleteIndex(ctx context.Context, req esapi.IndicesDeleteRequest) (*esapi.Response, error) {
	return s.Exec(s.c.DeleteIndex(ctx, req))
}

// Optimize force-merges index segments.
func (s *SyncClient) Optimize(ctx context.Context, req esapi.IndicesForcemergeRequest) (*esapi.Response, error) {
	return s.Exec(s.c.Optimize(ctx, req))
}

// IndicesExists reports whether every named index exists.
func (s *SyncClient) IndicesExists(ctx context.Context, req esapi.IndicesExistsRequest) (bool, error) {
	return s.c.IndicesExists(ctx, req).Await(s.wait)
}

// SearchScroll fetches the next page of a scrolled search.
func (s *SyncClient) SearchScroll(ctx context.Context, req esapi.ScrollRequest) (*esapi.Response, error) {
	return s.Exec(s.c.SearchScroll(ctx, req))
}

// ClearScroll releases scroll contexts.
func (s *SyncClient) ClearScroll(ctx context.Context, req esapi.ClearScrollRequest) (*esapi.Response, error) {
	return s.Exec(s.c.ClearScroll(ctx, req))
}

// Ping checks that the cluster answers.
func (s *SyncClient) Ping(ctx context.Context, req esapi.PingRequest) (*esapi.Response, error) {
	return s.Exec(s.c.Ping(ctx, req))
}
