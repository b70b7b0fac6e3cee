package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/elastic/go-elasticsearch/v8/esapi"

	apperrors "github.com/utafrali/esfuture/pkg/errors"
)

// encodeBody turns a builder-supplied body into a request reader. Raw forms
// are sent as-is; anything else is marshaled to JSON.
func encodeBody(v any) (io.Reader, error) {
	switch b := v.(type) {
	case nil:
		return nil, nil
	case io.Reader:
		return b, nil
	case json.RawMessage:
		return bytes.NewReader(b), nil
	case []byte:
		return bytes.NewReader(b), nil
	case string:
		return strings.NewReader(b), nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		return bytes.NewReader(data), nil
	}
}

// readerDocument is a caller document given as an io.Reader. The reader is
// drained on the first encoding and the bytes replayed afterwards.
type readerDocument struct {
	once sync.Once
	r    io.Reader
	data json.RawMessage
	err  error
}

func (d *readerDocument) MarshalJSON() ([]byte, error) {
	d.once.Do(func() {
		data, err := io.ReadAll(d.r)
		if err != nil {
			d.err = fmt.Errorf("read document: %w", err)
			return
		}
		if !json.Valid(data) {
			d.err = fmt.Errorf("read document: not valid JSON: %w", apperrors.ErrInvalidInput)
			return
		}
		d.data = data
	})
	return d.data, d.err
}

// document prepares a caller document for nesting inside a JSON body. Raw
// bytes and strings are taken as JSON text rather than values, and readers
// are wrapped so they are read once.
func document(v any) any {
	switch d := v.(type) {
	case json.RawMessage:
		return d
	case []byte:
		return json.RawMessage(d)
	case string:
		return json.RawMessage(d)
	case *readerDocument:
		return d
	case io.Reader:
		return &readerDocument{r: d}
	default:
		return v
	}
}

// LikeDocument points a more-like-this query at a stored document, or
// supplies an artificial one through Doc.
type LikeDocument struct {
	Index string `json:"_index,omitempty"`
	ID    string `json:"_id,omitempty"`
	Doc   any    `json:"doc,omitempty"`
}

// MoreLikeThisRequest searches for documents similar to a set of documents or
// texts. The engine exposes it as a query rather than an endpoint, so Do
// issues a search carrying a more_like_this clause.
type MoreLikeThisRequest struct {
	Index []string

	Like               []LikeDocument
	LikeText           []string
	Fields             []string
	MinTermFreq        *int
	MinDocFreq         *int
	MaxQueryTerms      *int
	MinimumShouldMatch string
	Include            *bool

	From *int
	Size *int

	Header http.Header
}

func (r MoreLikeThisRequest) body() map[string]any {
	like := make([]any, 0, len(r.Like)+len(r.LikeText))
	for _, d := range r.Like {
		if d.Doc != nil {
			d.Doc = document(d.Doc)
		}
		like = append(like, d)
	}
	for _, text := range r.LikeText {
		like = append(like, text)
	}

	mlt := map[string]any{"like": like}
	if len(r.Fields) > 0 {
		mlt["fields"] = r.Fields
	}
	if r.MinTermFreq != nil {
		mlt["min_term_freq"] = *r.MinTermFreq
	}
	if r.MinDocFreq != nil {
		mlt["min_doc_freq"] = *r.MinDocFreq
	}
	if r.MaxQueryTerms != nil {
		mlt["max_query_terms"] = *r.MaxQueryTerms
	}
	if r.MinimumShouldMatch != "" {
		mlt["minimum_should_match"] = r.MinimumShouldMatch
	}
	if r.Include != nil {
		mlt["include"] = *r.Include
	}

	return map[string]any{
		"query": map[string]any{"more_like_this": mlt},
	}
}

// SearchRequest returns the vendor search this request is sent as.
func (r MoreLikeThisRequest) SearchRequest() (esapi.SearchRequest, error) {
	body, err := encodeBody(r.body())
	if err != nil {
		return esapi.SearchRequest{}, fmt.Errorf("more like this: %w", err)
	}
	return esapi.SearchRequest{
		Index:  r.Index,
		Body:   body,
		From:   r.From,
		Size:   r.Size,
		Header: r.Header,
	}, nil
}

// Do implements esapi.Request.
func (r MoreLikeThisRequest) Do(ctx context.Context, transport esapi.Transport) (*esapi.Response, error) {
	req, err := r.SearchRequest()
	if err != nil {
		return nil, err
	}
	return req.Do(ctx, transport)
}

// PercolateRequest finds the queries stored in a percolator field that match
// one or more documents. Do issues a search with a percolate clause.
type PercolateRequest struct {
	Index []string

	// Field is the percolator field; "query" when empty.
	Field     string
	Document  any
	Documents []any

	// StoredIndex and StoredID percolate an already indexed document instead.
	StoredIndex string
	StoredID    string

	From *int
	Size *int

	Header http.Header
}

func (r PercolateRequest) body() map[string]any {
	field := r.Field
	if field == "" {
		field = "query"
	}

	perc := map[string]any{"field": field}
	switch {
	case r.StoredID != "":
		perc["index"] = r.StoredIndex
		perc["id"] = r.StoredID
	case len(r.Documents) > 0:
		docs := make([]any, len(r.Documents))
		for i, d := range r.Documents {
			docs[i] = document(d)
		}
		perc["documents"] = docs
	default:
		perc["document"] = document(r.Document)
	}

	return map[string]any{
		"query": map[string]any{"percolate": perc},
	}
}

// SearchRequest returns the vendor search this request is sent as.
func (r PercolateRequest) SearchRequest() (esapi.SearchRequest, error) {
	body, err := encodeBody(r.body())
	if err != nil {
		return esapi.SearchRequest{}, fmt.Errorf("percolate: %w", err)
	}
	return esapi.SearchRequest{
		Index:  r.Index,
		Body:   body,
		From:   r.From,
		Size:   r.Size,
		Header: r.Header,
	}, nil
}

// Do implements esapi.Request.
func (r PercolateRequest) Do(ctx context.Context, transport esapi.Transport) (*esapi.Response, error) {
	req, err := r.SearchRequest()
	if err != nil {
		return nil, err
	}
	return req.Do(ctx, transport)
}
