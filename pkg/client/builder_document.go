package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	apperrors "github.com/utafrali/esfuture/pkg/errors"
	"github.com/utafrali/esfuture/pkg/future"
)

// Refresh policies accepted by the write builders.
const (
	RefreshTrue    = "true"
	RefreshFalse   = "false"
	RefreshWaitFor = "wait_for"
)

func failed(op string, err error) *ResponseFuture {
	return future.Failed[*esapi.Response](fmt.Errorf("%s: %w", op, err))
}

// IndexBuilder builds an esapi.IndexRequest.
type IndexBuilder struct {
	c      *Client
	req    esapi.IndexRequest
	source any
}

// PrepareIndex starts an index request against index.
func (c *Client) PrepareIndex(index string) *IndexBuilder {
	return &IndexBuilder{c: c, req: esapi.IndexRequest{Index: index}}
}

// ID sets the document id. Without one the engine generates it.
func (b *IndexBuilder) ID(id string) *IndexBuilder {
	b.req.DocumentID = id
	return b
}

// Source sets the document.
func (b *IndexBuilder) Source(doc any) *IndexBuilder {
	b.source = doc
	return b
}

// Routing sets the shard routing value.
func (b *IndexBuilder) Routing(routing string) *IndexBuilder {
	b.req.Routing = routing
	return b
}

// Refresh sets the refresh policy.
func (b *IndexBuilder) Refresh(policy string) *IndexBuilder {
	b.req.Refresh = policy
	return b
}

// CreateOnly fails the request if the id already exists.
func (b *IndexBuilder) CreateOnly() *IndexBuilder {
	b.req.OpType = "create"
	return b
}

// Pipeline sets the ingest pipeline.
func (b *IndexBuilder) Pipeline(name string) *IndexBuilder {
	b.req.Pipeline = name
	return b
}

// Request returns the vendor request.
func (b *IndexBuilder) Request() (esapi.IndexRequest, error) {
	req := b.req
	body, err := encodeBody(b.source)
	if err != nil {
		return req, err
	}
	req.Body = body
	return req, nil
}

// Execute sends the request.
func (b *IndexBuilder) Execute(ctx context.Context) *ResponseFuture {
	req, err := b.Request()
	if err != nil {
		return failed(OpIndex, err)
	}
	return b.c.Index(ctx, req)
}

// GetBuilder builds an esapi.GetRequest.
type GetBuilder struct {
	c   *Client
	req esapi.GetRequest
}

// PrepareGet starts a get of one document.
func (c *Client) PrepareGet(index, id string) *GetBuilder {
	return &GetBuilder{c: c, req: esapi.GetRequest{Index: index, DocumentID: id}}
}

// Routing sets the shard routing value.
func (b *GetBuilder) Routing(routing string) *GetBuilder {
	b.req.Routing = routing
	return b
}

// Fields restricts the returned _source to the given fields.
func (b *GetBuilder) Fields(fields ...string) *GetBuilder {
	b.req.SourceIncludes = append(b.req.SourceIncludes, fields...)
	return b
}

// Preference sets the shard copy preference.
func (b *GetBuilder) Preference(p string) *GetBuilder {
	b.req.Preference = p
	return b
}

// Realtime toggles realtime reads.
func (b *GetBuilder) Realtime(on bool) *GetBuilder {
	b.req.Realtime = &on
	return b
}

// Request returns the vendor request.
func (b *GetBuilder) Request() (esapi.GetRequest, error) {
	return b.req, nil
}

// Execute sends the request.
func (b *GetBuilder) Execute(ctx context.Context) *ResponseFuture {
	return b.c.Get(ctx, b.req)
}

// MultiGetBuilder builds an esapi.MgetRequest.
type MultiGetBuilder struct {
	c    *Client
	req  esapi.MgetRequest
	docs []multiGetDoc
}

type multiGetDoc struct {
	Index   string `json:"_index,omitempty"`
	ID      string `json:"_id"`
	Routing string `json:"routing,omitempty"`
}

// PrepareMultiGet starts a multi-get.
func (c *Client) PrepareMultiGet() *MultiGetBuilder {
	return &MultiGetBuilder{c: c}
}

// Add fetches id from index.
func (b *MultiGetBuilder) Add(index, id string) *MultiGetBuilder {
	b.docs = append(b.docs, multiGetDoc{Index: index, ID: id})
	return b
}

// AddRouted fetches id from index on the shard selected by routing.
func (b *MultiGetBuilder) AddRouted(index, id, routing string) *MultiGetBuilder {
	b.docs = append(b.docs, multiGetDoc{Index: index, ID: id, Routing: routing})
	return b
}

// Request returns the vendor request.
func (b *MultiGetBuilder) Request() (esapi.MgetRequest, error) {
	req := b.req
	body, err := encodeBody(map[string]any{"docs": b.docs})
	if err != nil {
		return req, err
	}
	req.Body = body
	return req, nil
}

// Execute sends the request.
func (b *MultiGetBuilder) Execute(ctx context.Context) *ResponseFuture {
	req, err := b.Request()
	if err != nil {
		return failed(OpMultiGet, err)
	}
	return b.c.MultiGet(ctx, req)
}

// DeleteBuilder builds an esapi.DeleteRequest.
type DeleteBuilder struct {
	c   *Client
	req esapi.DeleteRequest
}

// PrepareDelete starts a delete of one document.
func (c *Client) PrepareDelete(index, id string) *DeleteBuilder {
	return &DeleteBuilder{c: c, req: esapi.DeleteRequest{Index: index, DocumentID: id}}
}

// Routing sets the shard routing value.
func (b *DeleteBuilder) Routing(routing string) *DeleteBuilder {
	b.req.Routing = routing
	return b
}

// Refresh sets the refresh policy.
func (b *DeleteBuilder) Refresh(policy string) *DeleteBuilder {
	b.req.Refresh = policy
	return b
}

// Request returns the vendor request.
func (b *DeleteBuilder) Request() (esapi.DeleteRequest, error) {
	return b.req, nil
}

// Execute sends the request.
func (b *DeleteBuilder) Execute(ctx context.Context) *ResponseFuture {
	return b.c.Delete(ctx, b.req)
}

// UpdateBuilder builds an esapi.UpdateRequest.
type UpdateBuilder struct {
	c    *Client
	req  esapi.UpdateRequest
	body map[string]any
}

// PrepareUpdate starts an update of one document.
func (c *Client) PrepareUpdate(index, id string) *UpdateBuilder {
	return &UpdateBuilder{
		c:    c,
		req:  esapi.UpdateRequest{Index: index, DocumentID: id},
		body: map[string]any{},
	}
}

// Doc sets the partial document merged into the stored one.
func (b *UpdateBuilder) Doc(doc any) *UpdateBuilder {
	b.body["doc"] = document(doc)
	return b
}

// Upsert sets the document indexed when none exists.
func (b *UpdateBuilder) Upsert(doc any) *UpdateBuilder {
	b.body["upsert"] = document(doc)
	return b
}

// DocAsUpsert indexes Doc itself when the document is missing.
func (b *UpdateBuilder) DocAsUpsert(on bool) *UpdateBuilder {
	b.body["doc_as_upsert"] = on
	return b
}

// Script sets a painless script and its parameters.
func (b *UpdateBuilder) Script(source string, params map[string]any) *UpdateBuilder {
	script := map[string]any{"source": source, "lang": "painless"}
	if len(params) > 0 {
		script["params"] = params
	}
	b.body["script"] = script
	return b
}

// RetryOnConflict sets how often the engine retries on version conflicts.
func (b *UpdateBuilder) RetryOnConflict(n int) *UpdateBuilder {
	b.req.RetryOnConflict = &n
	return b
}

// Routing sets the shard routing value.
func (b *UpdateBuilder) Routing(routing string) *UpdateBuilder {
	b.req.Routing = routing
	return b
}

// Refresh sets the refresh policy.
func (b *UpdateBuilder) Refresh(policy string) *UpdateBuilder {
	b.req.Refresh = policy
	return b
}

// Request returns the vendor request.
func (b *UpdateBuilder) Request() (esapi.UpdateRequest, error) {
	req := b.req
	body, err := encodeBody(b.body)
	if err != nil {
		return req, err
	}
	req.Body = body
	return req, nil
}

// Execute sends the request.
func (b *UpdateBuilder) Execute(ctx context.Context) *ResponseFuture {
	req, err := b.Request()
	if err != nil {
		return failed(OpUpdate, err)
	}
	return b.c.Update(ctx, req)
}

// Bulk action kinds.
const (
	BulkIndex  = "index"
	BulkCreate = "create"
	BulkUpdate = "update"
	BulkDelete = "delete"
)

// BulkAction is one line pair of a bulk body.
type BulkAction struct {
	Kind    string
	Index   string
	ID      string
	Routing string
	Doc     any
}

type bulkMeta struct {
	Index   string `json:"_index,omitempty"`
	ID      string `json:"_id,omitempty"`
	Routing string `json:"routing,omitempty"`
}

// BulkBuilder builds an esapi.BulkRequest from a list of actions.
type BulkBuilder struct {
	c       *Client
	req     esapi.BulkRequest
	actions []BulkAction
}

// PrepareBulk starts an empty bulk request.
func (c *Client) PrepareBulk() *BulkBuilder {
	return &BulkBuilder{c: c}
}

// Add appends actions as given.
func (b *BulkBuilder) Add(actions ...BulkAction) *BulkBuilder {
	for _, a := range actions {
		a.Doc = document(a.Doc)
		b.actions = append(b.actions, a)
	}
	return b
}

// Index appends an index action.
func (b *BulkBuilder) Index(index, id string, doc any) *BulkBuilder {
	return b.Add(BulkAction{Kind: BulkIndex, Index: index, ID: id, Doc: doc})
}

// Create appends a create action.
func (b *BulkBuilder) Create(index, id string, doc any) *BulkBuilder {
	return b.Add(BulkAction{Kind: BulkCreate, Index: index, ID: id, Doc: doc})
}

// Update appends a partial-document update action.
func (b *BulkBuilder) Update(index, id string, doc any) *BulkBuilder {
	return b.Add(BulkAction{Kind: BulkUpdate, Index: index, ID: id, Doc: map[string]any{"doc": document(doc)}})
}

// Delete appends a delete action.
func (b *BulkBuilder) Delete(index, id string) *BulkBuilder {
	return b.Add(BulkAction{Kind: BulkDelete, Index: index, ID: id})
}

// DefaultIndex sets the index used by actions that name none.
func (b *BulkBuilder) DefaultIndex(index string) *BulkBuilder {
	b.req.Index = index
	return b
}

// Refresh sets the refresh policy.
func (b *BulkBuilder) Refresh(policy string) *BulkBuilder {
	b.req.Refresh = policy
	return b
}

// Len returns the number of queued actions.
func (b *BulkBuilder) Len() int {
	return len(b.actions)
}

// Request renders the actions as NDJSON.
func (b *BulkBuilder) Request() (esapi.BulkRequest, error) {
	req := b.req
	var buf bytes.Buffer
	for i, a := range b.actions {
		switch a.Kind {
		case BulkIndex, BulkCreate, BulkUpdate, BulkDelete:
		default:
			return req, fmt.Errorf("bulk action %d: unknown kind %q: %w", i, a.Kind, apperrors.ErrInvalidInput)
		}

		meta := map[string]bulkMeta{a.Kind: {Index: a.Index, ID: a.ID, Routing: a.Routing}}
		if err := writeNDJSONLine(&buf, meta); err != nil {
			return req, fmt.Errorf("bulk action %d: encode action: %w", i, err)
		}
		if a.Kind == BulkDelete {
			continue
		}
		if err := writeNDJSONLine(&buf, a.Doc); err != nil {
			return req, fmt.Errorf("bulk action %d: encode document: %w", i, err)
		}
	}
	req.Body = bytes.NewReader(buf.Bytes())
	return req, nil
}

// Execute sends the request.
func (b *BulkBuilder) Execute(ctx context.Context) *ResponseFuture {
	req, err := b.Request()
	if err != nil {
		return failed(OpBulk, err)
	}
	return b.c.Bulk(ctx, req)
}

// writeNDJSONLine writes v as a single JSON line. Raw JSON is compacted so
// embedded newlines cannot split the line.
func writeNDJSONLine(buf *bytes.Buffer, v any) error {
	var raw []byte
	switch b := document(v).(type) {
	case json.RawMessage:
		raw = b
	case *readerDocument:
		data, err := b.MarshalJSON()
		if err != nil {
			return err
		}
		raw = data
	default:
		return json.NewEncoder(buf).Encode(v)
	}
	if err := json.Compact(buf, raw); err != nil {
		return err
	}
	return buf.WriteByte('\n')
}
