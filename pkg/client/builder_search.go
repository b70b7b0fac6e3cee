package client

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	apperrors "github.com/utafrali/esfuture/pkg/errors"
)

// SearchBuilder builds an esapi.SearchRequest.
type SearchBuilder struct {
	c    *Client
	req  esapi.SearchRequest
	body map[string]any
	sort []any
}

// PrepareSearch starts a search over indices; none means all indices.
func (c *Client) PrepareSearch(indices ...string) *SearchBuilder {
	return &SearchBuilder{
		c:    c,
		req:  esapi.SearchRequest{Index: indices},
		body: map[string]any{},
	}
}

// Query sets the query clause.
func (b *SearchBuilder) Query(q any) *SearchBuilder {
	b.body["query"] = q
	return b
}

// PostFilter sets a filter applied after aggregations.
func (b *SearchBuilder) PostFilter(f any) *SearchBuilder {
	b.body["post_filter"] = f
	return b
}

// Aggregation adds a named aggregation.
func (b *SearchBuilder) Aggregation(name string, agg any) *SearchBuilder {
	aggs, _ := b.body["aggs"].(map[string]any)
	if aggs == nil {
		aggs = map[string]any{}
		b.body["aggs"] = aggs
	}
	aggs[name] = agg
	return b
}

// Highlight sets the highlight clause.
func (b *SearchBuilder) Highlight(h any) *SearchBuilder {
	b.body["highlight"] = h
	return b
}

// Sort appends a field sort; order is "asc" or "desc".
func (b *SearchBuilder) Sort(field, order string) *SearchBuilder {
	b.sort = append(b.sort, map[string]any{field: map[string]string{"order": order}})
	return b
}

// Fields restricts the returned _source to the given fields.
func (b *SearchBuilder) Fields(fields ...string) *SearchBuilder {
	b.body["_source"] = fields
	return b
}

// TrackTotalHits toggles exact hit counting past the default threshold.
func (b *SearchBuilder) TrackTotalHits(on bool) *SearchBuilder {
	b.body["track_total_hits"] = on
	return b
}

// From sets the offset of the first hit.
func (b *SearchBuilder) From(n int) *SearchBuilder {
	b.req.From = &n
	return b
}

// Size sets the number of hits returned.
func (b *SearchBuilder) Size(n int) *SearchBuilder {
	b.req.Size = &n
	return b
}

// Routing limits the search to the shards of the given routing values.
func (b *SearchBuilder) Routing(routing ...string) *SearchBuilder {
	b.req.Routing = append(b.req.Routing, routing...)
	return b
}

// Scroll opens a scroll context kept alive for keepAlive between pages.
func (b *SearchBuilder) Scroll(keepAlive time.Duration) *SearchBuilder {
	b.req.Scroll = keepAlive
	return b
}

// Request returns the vendor request. An empty body is omitted, which the
// engine treats as match_all.
func (b *SearchBuilder) Request() (esapi.SearchRequest, error) {
	req := b.req
	body := make(map[string]any, len(b.body)+1)
	for k, v := range b.body {
		body[k] = v
	}
	if len(b.sort) > 0 {
		body["sort"] = b.sort
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
func (b *SearchBuilder) Execute(ctx context.Context) *ResponseFuture {
	req, err := b.Request()
	if err != nil {
		return failed(OpSearch, err)
	}
	return b.c.Search(ctx, req)
}

// MultiSearchBuilder builds an esapi.MsearchRequest from header and body
// pairs.
type MultiSearchBuilder struct {
	c        *Client
	req      esapi.MsearchRequest
	searches []multiSearchItem
}

type multiSearchItem struct {
	index string
	body  any
}

// PrepareMultiSearch starts an empty multi-search.
func (c *Client) PrepareMultiSearch() *MultiSearchBuilder {
	return &MultiSearchBuilder{c: c}
}

// Add appends a search body run against index. An empty index uses the
// request default set through DefaultIndex.
func (b *MultiSearchBuilder) Add(index string, body any) *MultiSearchBuilder {
	b.searches = append(b.searches, multiSearchItem{index: index, body: document(body)})
	return b
}

// AddSearch appends the body a SearchBuilder would send.
func (b *MultiSearchBuilder) AddSearch(index string, s *SearchBuilder) *MultiSearchBuilder {
	body := make(map[string]any, len(s.body)+3)
	for k, v := range s.body {
		body[k] = v
	}
	if len(s.sort) > 0 {
		body["sort"] = s.sort
	}
	if s.req.From != nil {
		body["from"] = *s.req.From
	}
	if s.req.Size != nil {
		body["size"] = *s.req.Size
	}
	return b.Add(index, body)
}

// DefaultIndex sets the index used by searches that name none.
func (b *MultiSearchBuilder) DefaultIndex(index ...string) *MultiSearchBuilder {
	b.req.Index = index
	return b
}

// Len returns the number of queued searches.
func (b *MultiSearchBuilder) Len() int {
	return len(b.searches)
}

// Request renders the searches as NDJSON.
func (b *MultiSearchBuilder) Request() (esapi.MsearchRequest, error) {
	req := b.req
	var buf bytes.Buffer
	for i, s := range b.searches {
		header := map[string]any{}
		if s.index != "" {
			header["index"] = s.index
		}
		if err := writeNDJSONLine(&buf, header); err != nil {
			return req, fmt.Errorf("search %d: encode header: %w", i, err)
		}
		body := s.body
		if body == nil {
			body = map[string]any{}
		}
		if err := writeNDJSONLine(&buf, body); err != nil {
			return req, fmt.Errorf("search %d: encode body: %w", i, err)
		}
	}
	req.Body = bytes.NewReader(buf.Bytes())
	return req, nil
}

// Execute sends the request.
func (b *MultiSearchBuilder) Execute(ctx context.Context) *ResponseFuture {
	req, err := b.Request()
	if err != nil {
		return failed(OpMultiSearch, err)
	}
	return b.c.MultiSearch(ctx, req)
}

// CountBuilder builds an esapi.CountRequest.
type CountBuilder struct {
	c     *Client
	req   esapi.CountRequest
	query any
}

// PrepareCount starts a count over indices.
func (c *Client) PrepareCount(indices ...string) *CountBuilder {
	return &CountBuilder{c: c, req: esapi.CountRequest{Index: indices}}
}

// Query sets the query clause.
func (b *CountBuilder) Query(q any) *CountBuilder {
	b.query = q
	return b
}

// QueryString counts with a Lucene query string instead of a body.
func (b *CountBuilder) QueryString(q string) *CountBuilder {
	b.req.Query = q
	return b
}

// Request returns the vendor request.
func (b *CountBuilder) Request() (esapi.CountRequest, error) {
	req := b.req
	if b.query == nil {
		return req, nil
	}
	body, err := encodeBody(map[string]any{"query": b.query})
	if err != nil {
		return req, err
	}
	req.Body = body
	return req, nil
}

// Execute sends the request.
func (b *CountBuilder) Execute(ctx context.Context) *ResponseFuture {
	req, err := b.Request()
	if err != nil {
		return failed(OpCount, err)
	}
	return b.c.Count(ctx, req)
}

// DeleteByQueryBuilder builds an esapi.DeleteByQueryRequest.
type DeleteByQueryBuilder struct {
	c     *Client
	req   esapi.DeleteByQueryRequest
	query any
}

// PrepareDeleteByQuery starts a delete-by-query over indices.
func (c *Client) PrepareDeleteByQuery(indices ...string) *DeleteByQueryBuilder {
	return &DeleteByQueryBuilder{c: c, req: esapi.DeleteByQueryRequest{Index: indices}}
}

// Query sets the query selecting documents to delete.
func (b *DeleteByQueryBuilder) Query(q any) *DeleteByQueryBuilder {
	b.query = q
	return b
}

// ProceedOnConflicts keeps going when version conflicts occur.
func (b *DeleteByQueryBuilder) ProceedOnConflicts() *DeleteByQueryBuilder {
	b.req.Conflicts = "proceed"
	return b
}

// Refresh refreshes the touched shards once the request completes.
func (b *DeleteByQueryBuilder) Refresh(on bool) *DeleteByQueryBuilder {
	b.req.Refresh = &on
	return b
}

// Routing limits the request to the shards of the given routing values.
func (b *DeleteByQueryBuilder) Routing(routing ...string) *DeleteByQueryBuilder {
	b.req.Routing = append(b.req.Routing, routing...)
	return b
}

// Request returns the vendor request. The engine rejects a delete-by-query
// without a query, so the builder does too.
func (b *DeleteByQueryBuilder) Request() (esapi.DeleteByQueryRequest, error) {
	req := b.req
	if b.query == nil {
		return req, fmt.Errorf("delete by query: query is required: %w", apperrors.ErrInvalidInput)
	}
	body, err := encodeBody(map[string]any{"query": b.query})
	if err != nil {
		return req, err
	}
	req.Body = body
	return req, nil
}

// Execute sends the request.
func (b *DeleteByQueryBuilder) Execute(ctx context.Context) *ResponseFuture {
	req, err := b.Request()
	if err != nil {
		return failed(OpDeleteByQuery, err)
	}
	return b.c.DeleteByQuery(ctx, req)
}

// ValidateQueryBuilder builds an esapi.IndicesValidateQueryRequest.
type ValidateQueryBuilder struct {
	c     *Client
	req   esapi.IndicesValidateQueryRequest
	query any
}

// PrepareValidateQuery starts a query validation over indices.
func (c *Client) PrepareValidateQuery(indices ...string) *ValidateQueryBuilder {
	return &ValidateQueryBuilder{c: c, req: esapi.IndicesValidateQueryRequest{Index: indices}}
}

// Query sets the query to validate.
func (b *ValidateQueryBuilder) Query(q any) *ValidateQueryBuilder {
	b.query = q
	return b
}

// Explain asks for the reason a query is invalid.
func (b *ValidateQueryBuilder) Explain(on bool) *ValidateQueryBuilder {
	b.req.Explain = &on
	return b
}

// Rewrite asks for the rewritten Lucene query.
func (b *ValidateQueryBuilder) Rewrite(on bool) *ValidateQueryBuilder {
	b.req.Rewrite = &on
	return b
}

// Request returns the vendor request.
func (b *ValidateQueryBuilder) Request() (esapi.IndicesValidateQueryRequest, error) {
	req := b.req
	if b.query == nil {
		return req, nil
	}
	body, err := encodeBody(map[string]any{"query": b.query})
	if err != nil {
		return req, err
	}
	req.Body = body
	return req, nil
}

// Execute sends the request.
func (b *ValidateQueryBuilder) Execute(ctx context.Context) *ResponseFuture {
	req, err := b.Request()
	if err != nil {
		return failed(OpValidateQuery, err)
	}
	return b.c.ValidateQuery(ctx, req)
}

// MoreLikeThisBuilder builds a MoreLikeThisRequest.
type MoreLikeThisBuilder struct {
	c   *Client
	req MoreLikeThisRequest
}

// PrepareMoreLikeThis starts a search for documents similar to the stored
// document id in index. The search runs over index unless In says otherwise.
func (c *Client) PrepareMoreLikeThis(index, id string) *MoreLikeThisBuilder {
	return &MoreLikeThisBuilder{c: c, req: MoreLikeThisRequest{
		Index: []string{index},
		Like:  []LikeDocument{{Index: index, ID: id}},
	}}
}

// In sets the indices searched for similar documents.
func (b *MoreLikeThisBuilder) In(indices ...string) *MoreLikeThisBuilder {
	b.req.Index = indices
	return b
}

// LikeDocument adds another stored document to compare against.
func (b *MoreLikeThisBuilder) LikeDocument(index, id string) *MoreLikeThisBuilder {
	b.req.Like = append(b.req.Like, LikeDocument{Index: index, ID: id})
	return b
}

// LikeText adds free text to compare against.
func (b *MoreLikeThisBuilder) LikeText(text ...string) *MoreLikeThisBuilder {
	b.req.LikeText = append(b.req.LikeText, text...)
	return b
}

// Fields sets the fields terms are drawn from.
func (b *MoreLikeThisBuilder) Fields(fields ...string) *MoreLikeThisBuilder {
	b.req.Fields = fields
	return b
}

// MinTermFreq sets the minimum term frequency in the source documents.
func (b *MoreLikeThisBuilder) MinTermFreq(n int) *MoreLikeThisBuilder {
	b.req.MinTermFreq = &n
	return b
}

// MinDocFreq sets the minimum number of documents a term must appear in.
func (b *MoreLikeThisBuilder) MinDocFreq(n int) *MoreLikeThisBuilder {
	b.req.MinDocFreq = &n
	return b
}

// MaxQueryTerms caps the number of selected terms.
func (b *MoreLikeThisBuilder) MaxQueryTerms(n int) *MoreLikeThisBuilder {
	b.req.MaxQueryTerms = &n
	return b
}

// MinimumShouldMatch sets how many selected terms must match.
func (b *MoreLikeThisBuilder) MinimumShouldMatch(v string) *MoreLikeThisBuilder {
	b.req.MinimumShouldMatch = v
	return b
}

// Include returns the source documents among the hits.
func (b *MoreLikeThisBuilder) Include(on bool) *MoreLikeThisBuilder {
	b.req.Include = &on
	return b
}

// From sets the offset of the first hit.
func (b *MoreLikeThisBuilder) From(n int) *MoreLikeThisBuilder {
	b.req.From = &n
	return b
}

// Size sets the number of hits returned.
func (b *MoreLikeThisBuilder) Size(n int) *MoreLikeThisBuilder {
	b.req.Size = &n
	return b
}

// Request returns the request.
func (b *MoreLikeThisBuilder) Request() (MoreLikeThisRequest, error) {
	return b.req, nil
}

// Execute sends the request.
func (b *MoreLikeThisBuilder) Execute(ctx context.Context) *ResponseFuture {
	return b.c.MoreLikeThis(ctx, b.req)
}

// PercolateBuilder builds a PercolateRequest.
type PercolateBuilder struct {
	c   *Client
	req PercolateRequest
}

// PreparePercolate starts a percolation against the queries stored in
// indices.
func (c *Client) PreparePercolate(indices ...string) *PercolateBuilder {
	return &PercolateBuilder{c: c, req: PercolateRequest{Index: indices}}
}

// Field sets the percolator field.
func (b *PercolateBuilder) Field(name string) *PercolateBuilder {
	b.req.Field = name
	return b
}

// Document sets the document to match.
func (b *PercolateBuilder) Document(doc any) *PercolateBuilder {
	b.req.Document = document(doc)
	return b
}

// Documents sets several documents to match at once.
func (b *PercolateBuilder) Documents(docs ...any) *PercolateBuilder {
	for _, d := range docs {
		b.req.Documents = append(b.req.Documents, document(d))
	}
	return b
}

// Existing percolates the stored document id in index.
func (b *PercolateBuilder) Existing(index, id string) *PercolateBuilder {
	b.req.StoredIndex = index
	b.req.StoredID = id
	return b
}

// From sets the offset of the first hit.
func (b *PercolateBuilder) From(n int) *PercolateBuilder {
	b.req.From = &n
	return b
}

// Size sets the number of hits returned.
func (b *PercolateBuilder) Size(n int) *PercolateBuilder {
	b.req.Size = &n
	return b
}

// Request returns the request. One of Document, Documents or Existing must
// have been set.
func (b *PercolateBuilder) Request() (PercolateRequest, error) {
	if b.req.Document == nil && len(b.req.Documents) == 0 && b.req.StoredID == "" {
		return b.req, fmt.Errorf("percolate: no document to match: %w", apperrors.ErrInvalidInput)
	}
	return b.req, nil
}

// Execute sends the request.
func (b *PercolateBuilder) Execute(ctx context.Context) *ResponseFuture {
	req, err := b.Request()
	if err != nil {
		return failed(OpPercolate, err)
	}
	return b.c.Percolate(ctx, req)
}

// DefaultScrollKeepAlive is used when a scroll builder sets none.
const DefaultScrollKeepAlive = time.Minute

// SearchScrollBuilder builds an esapi.ScrollRequest.
type SearchScrollBuilder struct {
	c         *Client
	scrollID  string
	keepAlive time.Duration
}

// PrepareSearchScroll continues the scroll identified by scrollID.
func (c *Client) PrepareSearchScroll(scrollID string) *SearchScrollBuilder {
	return &SearchScrollBuilder{c: c, scrollID: scrollID, keepAlive: DefaultScrollKeepAlive}
}

// KeepAlive sets how long the scroll context stays open after this page.
func (b *SearchScrollBuilder) KeepAlive(d time.Duration) *SearchScrollBuilder {
	b.keepAlive = d
	return b
}

// Request returns the vendor request. The id travels in the body, since
// scroll ids can outgrow a URL.
func (b *SearchScrollBuilder) Request() (esapi.ScrollRequest, error) {
	req := esapi.ScrollRequest{Scroll: b.keepAlive}
	if b.scrollID == "" {
		return req, fmt.Errorf("search scroll: scroll id is required: %w", apperrors.ErrInvalidInput)
	}
	body, err := encodeBody(map[string]string{"scroll_id": b.scrollID})
	if err != nil {
		return req, err
	}
	req.Body = body
	return req, nil
}

// Execute sends the request.
func (b *SearchScrollBuilder) Execute(ctx context.Context) *ResponseFuture {
	req, err := b.Request()
	if err != nil {
		return failed(OpSearchScroll, err)
	}
	return b.c.SearchScroll(ctx, req)
}

// ClearScrollBuilder builds an esapi.ClearScrollRequest.
type ClearScrollBuilder struct {
	c   *Client
	ids []string
}

// PrepareClearScroll releases the given scroll contexts, or all of them when
// none are named.
func (c *Client) PrepareClearScroll(scrollIDs ...string) *ClearScrollBuilder {
	return &ClearScrollBuilder{c: c, ids: scrollIDs}
}

// Request returns the vendor request.
func (b *ClearScrollBuilder) Request() (esapi.ClearScrollRequest, error) {
	if len(b.ids) == 0 {
		return esapi.ClearScrollRequest{ScrollID: []string{"_all"}}, nil
	}
	body, err := encodeBody(map[string][]string{"scroll_id": b.ids})
	if err != nil {
		return esapi.ClearScrollRequest{}, err
	}
	return esapi.ClearScrollRequest{Body: body}, nil
}

// Execute sends the request.
func (b *ClearScrollBuilder) Execute(ctx context.Context) *ResponseFuture {
	req, err := b.Request()
	if err != nil {
		return failed(OpClearScroll, err)
	}
	return b.c.ClearScroll(ctx, req)
}
