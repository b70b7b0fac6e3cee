package client

import (
	"context"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	apperrors "github.com/utafrali/esfuture/pkg/errors"
	"github.com/utafrali/esfuture/pkg/future"
)

// CreateIndexBuilder builds an esapi.IndicesCreateRequest.
type CreateIndexBuilder struct {
	c        *Client
	req      esapi.IndicesCreateRequest
	settings map[string]any
	mappings any
	aliases  map[string]any
}

// PrepareCreateIndex starts the creation of index.
func (c *Client) PrepareCreateIndex(index string) *CreateIndexBuilder {
	return &CreateIndexBuilder{
		c:        c,
		req:      esapi.IndicesCreateRequest{Index: index},
		settings: map[string]any{},
		aliases:  map[string]any{},
	}
}

// Setting sets one index setting, e.g. "analysis".
func (b *CreateIndexBuilder) Setting(name string, value any) *CreateIndexBuilder {
	b.settings[name] = value
	return b
}

// Shards sets the number of primary shards.
func (b *CreateIndexBuilder) Shards(n int) *CreateIndexBuilder {
	return b.Setting("number_of_shards", n)
}

// Replicas sets the number of replicas per shard.
func (b *CreateIndexBuilder) Replicas(n int) *CreateIndexBuilder {
	return b.Setting("number_of_replicas", n)
}

// Mappings sets the field mappings.
func (b *CreateIndexBuilder) Mappings(m any) *CreateIndexBuilder {
	b.mappings = m
	return b
}

// Alias adds an alias pointing at the new index.
func (b *CreateIndexBuilder) Alias(name string) *CreateIndexBuilder {
	b.aliases[name] = map[string]any{}
	return b
}

// WaitForActiveShards sets how many shard copies must be active before the
// call returns.
func (b *CreateIndexBuilder) WaitForActiveShards(v string) *CreateIndexBuilder {
	b.req.WaitForActiveShards = v
	return b
}

// Request returns the vendor request.
func (b *CreateIndexBuilder) Request() (esapi.IndicesCreateRequest, error) {
	req := b.req
	body := map[string]any{}
	if len(b.settings) > 0 {
		body["settings"] = b.settings
	}
	if b.mappings != nil {
		body["mappings"] = b.mappings
	}
	if len(b.aliases) > 0 {
		body["aliases"] = b.aliases
	}
	if len(body) == 0 {
		return req, nil
	}
	r, err := encodeBody(body)
	if err != nil {
		return req, err
	}
	req.Body = r
	return req, nil
}

// Execute sends the request.
func (b *CreateIndexBuilder) Execute(ctx context.Context) *ResponseFuture {
	req, err := b.Request()
	if err != nil {
		return failed(OpCreateIndex, err)
	}
	return b.c.CreateIndex(ctx, req)
}

// DeleteIndexBuilder builds an esapi.IndicesDeleteRequest.
type DeleteIndexBuilder struct {
	c   *Client
	req esapi.IndicesDeleteRequest
}

// PrepareDeleteIndex starts the deletion of indices.
func (c *Client) PrepareDeleteIndex(indices ...string) *DeleteIndexBuilder {
	return &DeleteIndexBuilder{c: c, req: esapi.IndicesDeleteRequest{Index: indices}}
}

// IgnoreUnavailable succeeds even if some indices do not exist.
func (b *DeleteIndexBuilder) IgnoreUnavailable(on bool) *DeleteIndexBuilder {
	b.req.IgnoreUnavailable = &on
	return b
}

// Request returns the vendor request.
func (b *DeleteIndexBuilder) Request() (esapi.IndicesDeleteRequest, error) {
	if len(b.req.Index) == 0 {
		return b.req, fmt.Errorf("delete index: at least one index is required: %w", apperrors.ErrInvalidInput)
	}
	return b.req, nil
}

// Execute sends the request.
func (b *DeleteIndexBuilder) Execute(ctx context.Context) *ResponseFuture {
	req, err := b.Request()
	if err != nil {
		return failed(OpDeleteIndex, err)
	}
	return b.c.DeleteIndex(ctx, req)
}

// OptimizeBuilder builds an esapi.IndicesForcemergeRequest.
type OptimizeBuilder struct {
	c   *Client
	req esapi.IndicesForcemergeRequest
}

// PrepareOptimize starts a force merge of indices; none means all.
func (c *Client) PrepareOptimize(indices ...string) *OptimizeBuilder {
	return &OptimizeBuilder{c: c, req: esapi.IndicesForcemergeRequest{Index: indices}}
}

// MaxNumSegments sets the segment count to merge down to.
func (b *OptimizeBuilder) MaxNumSegments(n int) *OptimizeBuilder {
	b.req.MaxNumSegments = &n
	return b
}

// OnlyExpungeDeletes only merges segments holding deletions.
func (b *OptimizeBuilder) OnlyExpungeDeletes(on bool) *OptimizeBuilder {
	b.req.OnlyExpungeDeletes = &on
	return b
}

// Flush toggles the flush after the merge.
func (b *OptimizeBuilder) Flush(on bool) *OptimizeBuilder {
	b.req.Flush = &on
	return b
}

// Request returns the vendor request.
func (b *OptimizeBuilder) Request() (esapi.IndicesForcemergeRequest, error) {
	return b.req, nil
}

// Execute sends the request.
func (b *OptimizeBuilder) Execute(ctx context.Context) *ResponseFuture {
	return b.c.Optimize(ctx, b.req)
}

// IndicesExistsBuilder builds an esapi.IndicesExistsRequest.
type IndicesExistsBuilder struct {
	c   *Client
	req esapi.IndicesExistsRequest
}

// PrepareIndicesExists starts an existence check for indices.
func (c *Client) PrepareIndicesExists(indices ...string) *IndicesExistsBuilder {
	return &IndicesExistsBuilder{c: c, req: esapi.IndicesExistsRequest{Index: indices}}
}

// Request returns the vendor request.
func (b *IndicesExistsBuilder) Request() (esapi.IndicesExistsRequest, error) {
	if len(b.req.Index) == 0 {
		return b.req, fmt.Errorf("indices exists: at least one index is required: %w", apperrors.ErrInvalidInput)
	}
	return b.req, nil
}

// Execute sends the request.
func (b *IndicesExistsBuilder) Execute(ctx context.Context) *future.Future[bool] {
	req, err := b.Request()
	if err != nil {
		return future.Failed[bool](fmt.Errorf("%s: %w", OpIndicesExists, err))
	}
	return b.c.IndicesExists(ctx, req)
}
