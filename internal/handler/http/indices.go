package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/esfuture/pkg/client"
	"github.com/utafrali/esfuture/pkg/httputil"
	"github.com/utafrali/esfuture/pkg/pagination"
	"github.com/utafrali/esfuture/pkg/validator"
)

// IndicesHandler answers index questions through the blocking facade.
type IndicesHandler struct {
	es     *client.Client
	logger *slog.Logger
}

// NewIndicesHandler creates a new indices HTTP handler.
func NewIndicesHandler(es *client.Client, logger *slog.Logger) *IndicesHandler {
	return &IndicesHandler{
		es:     es,
		logger: logger,
	}
}

// indexParam is the {index} path segment. The characters are the ones the
// engine refuses in index names.
type indexParam struct {
	Index string `validate:"required,lowercase,excludesall=/*?\"<>0x7C #\\0x2C"`
}

// ExistsResponse is the body of GET /v1/indices/{index}.
type ExistsResponse struct {
	Index  string `json:"index"`
	Exists bool   `json:"exists"`
}

// CountResponse is the body of GET /v1/indices/{index}/count.
type CountResponse struct {
	Index string `json:"index"`
	Query string `json:"query,omitempty"`
	Count int64  `json:"count"`
}

func (h *IndicesHandler) index(r *http.Request) (string, error) {
	p := indexParam{Index: chi.URLParam(r, "index")}
	if err := validator.Validate(p); err != nil {
		return "", err
	}
	return p.Index, nil
}

// Exists handles GET /v1/indices/{index}
func (h *IndicesHandler) Exists(w http.ResponseWriter, r *http.Request) {
	index, err := h.index(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	req, err := h.es.PrepareIndicesExists(index).Request()
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	exists, err := h.es.Sync().IndicesExists(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteData(w, ExistsResponse{Index: index, Exists: exists})
}

// Count handles GET /v1/indices/{index}/count?q=
func (h *IndicesHandler) Count(w http.ResponseWriter, r *http.Request) {
	index, err := h.index(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	q := r.URL.Query().Get("q")
	req, err := h.es.PrepareCount(index).QueryString(q).Request()
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	res, err := h.es.Sync().Count(r.Context(), req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	var body struct {
		Count int64 `json:"count"`
	}
	if err := client.Decode(res, &body); err != nil {
		httputil.WriteError(w, r, fmt.Errorf("count %s: %w", index, err), h.logger)
		return
	}

	httputil.WriteData(w, CountResponse{Index: index, Query: q, Count: body.Count})
}

// Hit is one search hit as served by the probe.
type Hit struct {
	Index  string          `json:"index"`
	ID     string          `json:"id"`
	Score  *float64        `json:"score"`
	Source json.RawMessage `json:"source,omitempty"`
}

type searchResult struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		Hits []struct {
			Index  string          `json:"_index"`
			ID     string          `json:"_id"`
			Score  *float64        `json:"_score"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// Search handles GET /v1/indices/{index}/search?q=&page=&per_page=
func (h *IndicesHandler) Search(w http.ResponseWriter, r *http.Request) {
	index, err := h.index(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	page, err := pagination.FromRequest(r)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	query := map[string]any{"match_all": map[string]any{}}
	if q := r.URL.Query().Get("q"); q != "" {
		query = map[string]any{"query_string": map[string]any{"query": q}}
	}

	f := h.es.PrepareSearch(index).
		Query(query).
		From(page.From).
		Size(page.PerPage).
		TrackTotalHits(true).
		Execute(r.Context())

	res, err := h.es.Sync().Exec(f)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	var body searchResult
	if err := client.Decode(res, &body); err != nil {
		httputil.WriteError(w, r, fmt.Errorf("search %s: %w", index, err), h.logger)
		return
	}

	hits := make([]Hit, 0, len(body.Hits.Hits))
	for _, hit := range body.Hits.Hits {
		hits = append(hits, Hit{Index: hit.Index, ID: hit.ID, Score: hit.Score, Source: hit.Source})
	}

	httputil.WriteData(w, pagination.NewResult(hits, body.Hits.Total.Value, page))
}
