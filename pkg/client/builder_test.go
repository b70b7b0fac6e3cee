package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndexBuilder(t *testing.T) {
	c, ft := newTestClient(t, nil)

	b := c.PrepareIndex("products").
		ID("p-1").
		Source(map[string]any{"name": "lamp", "price": 12}).
		Routing("shop-1").
		Refresh(RefreshWaitFor).
		CreateOnly()

	req, err := b.Request()
	require.NoError(t, err)
	assert.Equal(t, "products", req.Index)
	assert.Equal(t, "p-1", req.DocumentID)
	assert.Equal(t, "shop-1", req.Routing)
	assert.Equal(t, RefreshWaitFor, req.Refresh)
	assert.Equal(t, "create", req.OpType)
	assert.Equal(t, map[string]any{"name": "lamp", "price": float64(12)}, readJSON(t, req.Body))

	_, err = b.Execute(context.Background()).Get(context.Background())
	require.NoError(t, err)
	sent := ft.last(t)
	assert.Equal(t, "/products/_doc/p-1", sent.Path)
	assert.Equal(t, []string{"create"}, sent.Query["op_type"])
	assert.Equal(t, []string{RefreshWaitFor}, sent.Query["refresh"])
}

func TestIndexBuilder_RawSources(t *testing.T) {
	c, _ := newTestClient(t, nil)

	for _, src := range []any{
		json.RawMessage(`{"a":1}`),
		[]byte(`{"a":1}`),
		`{"a":1}`,
		strings.NewReader(`{"a":1}`),
	} {
		req, err := c.PrepareIndex("x").Source(src).Request()
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"a": float64(1)}, readJSON(t, req.Body))
	}
}

func TestBuilder_EncodingFailureSkipsTransport(t *testing.T) {
	c, ft := newTestClient(t, nil)

	_, err := c.PrepareIndex("x").Source(math.Inf(1)).Execute(context.Background()).Get(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), OpIndex)

	var unsupported *json.UnsupportedValueError
	assert.True(t, errors.As(err, &unsupported))
	assert.Equal(t, 0, ft.count())
}

func TestGetBuilder(t *testing.T) {
	c, _ := newTestClient(t, nil)

	req, err := c.PrepareGet("products", "p-1").
		Routing("r").
		Fields("name", "price").
		Preference("_local").
		Realtime(false).
		Request()
	require.NoError(t, err)
	assert.Equal(t, "products", req.Index)
	assert.Equal(t, "p-1", req.DocumentID)
	assert.Equal(t, []string{"name", "price"}, req.SourceIncludes)
	assert.Equal(t, "_local", req.Preference)
	require.NotNil(t, req.Realtime)
	assert.False(t, *req.Realtime)
}

func TestMultiGetBuilder(t *testing.T) {
	c, _ := newTestClient(t, nil)

	req, err := c.PrepareMultiGet().Add("a", "1").AddRouted("b", "2", "r").Request()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"docs": []any{
			map[string]any{"_index": "a", "_id": "1"},
			map[string]any{"_index": "b", "_id": "2", "routing": "r"},
		},
	}, readJSON(t, req.Body))
}

func TestDeleteBuilder(t *testing.T) {
	c, ft := newTestClient(t, nil)

	_, err := c.PrepareDelete("products", "p-1").Refresh(RefreshTrue).Execute(context.Background()).Get(context.Background())
	require.NoError(t, err)
	sent := ft.last(t)
	assert.Equal(t, http.MethodDelete, sent.Method)
	assert.Equal(t, "/products/_doc/p-1", sent.Path)
	assert.Equal(t, []string{RefreshTrue}, sent.Query["refresh"])
}

func TestUpdateBuilder(t *testing.T) {
	c, _ := newTestClient(t, nil)

	req, err := c.PrepareUpdate("products", "p-1").
		Doc(map[string]any{"price": 10}).
		DocAsUpsert(true).
		RetryOnConflict(3).
		Request()
	require.NoError(t, err)
	require.NotNil(t, req.RetryOnConflict)
	assert.Equal(t, 3, *req.RetryOnConflict)
	assert.Equal(t, map[string]any{
		"doc":           map[string]any{"price": float64(10)},
		"doc_as_upsert": true,
	}, readJSON(t, req.Body))

	req, err = c.PrepareUpdate("products", "p-1").
		Script("ctx._source.stock -= params.n", map[string]any{"n": 2}).
		Upsert(map[string]any{"stock": 0}).
		Request()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"script": map[string]any{
			"source": "ctx._source.stock -= params.n",
			"lang":   "painless",
			"params": map[string]any{"n": float64(2)},
		},
		"upsert": map[string]any{"stock": float64(0)},
	}, readJSON(t, req.Body))
}

func TestBulkBuilder(t *testing.T) {
	c, ft := newTestClient(t, nil)

	b := c.PrepareBulk().
		Index("a", "1", map[string]any{"n": 1}).
		Create("a", "2", json.RawMessage("{\n  \"n\": 2\n}")).
		Update("a", "3", map[string]any{"n": 3}).
		Delete("a", "4").
		Refresh(RefreshTrue)
	assert.Equal(t, 4, b.Len())

	req, err := b.Request()
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{
		{"index": map[string]any{"_index": "a", "_id": "1"}},
		{"n": float64(1)},
		{"create": map[string]any{"_index": "a", "_id": "2"}},
		{"n": float64(2)},
		{"update": map[string]any{"_index": "a", "_id": "3"}},
		{"doc": map[string]any{"n": float64(3)}},
		{"delete": map[string]any{"_index": "a", "_id": "4"}},
	}, ndjsonLines(t, req.Body))

	_, err = b.Execute(context.Background()).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/_bulk", ft.last(t).Path)
}

func TestBulkBuilder_UnknownKind(t *testing.T) {
	c, ft := newTestClient(t, nil)

	_, err := c.PrepareBulk().Add(BulkAction{Kind: "upsert", Index: "a"}).Execute(context.Background()).Get(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown kind "upsert"`)
	assert.Equal(t, 0, ft.count())
}

func TestSearchBuilder(t *testing.T) {
	c, ft := newTestClient(t, nil)

	b := c.PrepareSearch("products", "archive").
		Query(map[string]any{"match": map[string]any{"name": "lamp"}}).
		Aggregation("brands", map[string]any{"terms": map[string]any{"field": "brand"}}).
		Sort("price", "asc").
		Fields("name").
		TrackTotalHits(true).
		From(20).
		Size(10).
		Scroll(time.Minute)

	req, err := b.Request()
	require.NoError(t, err)
	assert.Equal(t, []string{"products", "archive"}, req.Index)
	require.NotNil(t, req.From)
	require.NotNil(t, req.Size)
	assert.Equal(t, 20, *req.From)
	assert.Equal(t, 10, *req.Size)
	assert.Equal(t, time.Minute, req.Scroll)
	assert.Equal(t, map[string]any{
		"query":            map[string]any{"match": map[string]any{"name": "lamp"}},
		"aggs":             map[string]any{"brands": map[string]any{"terms": map[string]any{"field": "brand"}}},
		"sort":             []any{map[string]any{"price": map[string]any{"order": "asc"}}},
		"_source":          []any{"name"},
		"track_total_hits": true,
	}, readJSON(t, req.Body))

	_, err = b.Execute(context.Background()).Get(context.Background())
	require.NoError(t, err)
	sent := ft.last(t)
	assert.Equal(t, "/products,archive/_search", sent.Path)
	assert.Equal(t, []string{"20"}, sent.Query["from"])
	assert.NotEmpty(t, sent.Query["scroll"])
}

func TestSearchBuilder_EmptyBody(t *testing.T) {
	c, _ := newTestClient(t, nil)

	req, err := c.PrepareSearch().Request()
	require.NoError(t, err)
	assert.Nil(t, req.Body)
	assert.Empty(t, req.Index)
}

func TestMultiSearchBuilder(t *testing.T) {
	c, ft := newTestClient(t, nil)

	b := c.PrepareMultiSearch().
		Add("a", map[string]any{"query": map[string]any{"match_all": map[string]any{}}}).
		Add("", json.RawMessage("{\n\"size\": 0\n}")).
		AddSearch("b", c.PrepareSearch().Query(map[string]any{"term": map[string]any{"x": 1}}).Size(5))
	assert.Equal(t, 3, b.Len())

	req, err := b.Request()
	require.NoError(t, err)
	assert.Equal(t, []map[string]any{
		{"index": "a"},
		{"query": map[string]any{"match_all": map[string]any{}}},
		{},
		{"size": float64(0)},
		{"index": "b"},
		{"query": map[string]any{"term": map[string]any{"x": float64(1)}}, "size": float64(5)},
	}, ndjsonLines(t, req.Body))

	_, err = b.Execute(context.Background()).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/_msearch", ft.last(t).Path)
}

func TestCountBuilder(t *testing.T) {
	c, _ := newTestClient(t, nil)

	req, err := c.PrepareCount("a").Query(map[string]any{"term": map[string]any{"x": "y"}}).Request()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"query": map[string]any{"term": map[string]any{"x": "y"}}}, readJSON(t, req.Body))

	req, err = c.PrepareCount("a").QueryString("x:y").Request()
	require.NoError(t, err)
	assert.Nil(t, req.Body)
	assert.Equal(t, "x:y", req.Query)
}

func TestDeleteByQueryBuilder(t *testing.T) {
	c, ft := newTestClient(t, nil)

	req, err := c.PrepareDeleteByQuery("a").
		Query(map[string]any{"range": map[string]any{"age": map[string]any{"gt": 30}}}).
		ProceedOnConflicts().
		Refresh(true).
		Request()
	require.NoError(t, err)
	assert.Equal(t, "proceed", req.Conflicts)
	require.NotNil(t, req.Refresh)
	assert.True(t, *req.Refresh)
	assert.Contains(t, readJSON(t, req.Body), "query")

	_, err = c.PrepareDeleteByQuery("a").Execute(context.Background()).Get(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "query is required")
	assert.Equal(t, 0, ft.count())
}

func TestValidateQueryBuilder(t *testing.T) {
	c, _ := newTestClient(t, nil)

	req, err := c.PrepareValidateQuery("a").
		Query(map[string]any{"match": map[string]any{"x": "y"}}).
		Explain(true).
		Request()
	require.NoError(t, err)
	require.NotNil(t, req.Explain)
	assert.True(t, *req.Explain)
	assert.Nil(t, req.Rewrite)
	assert.Contains(t, readJSON(t, req.Body), "query")
}

func TestMoreLikeThisBuilder(t *testing.T) {
	c, ft := newTestClient(t, nil)

	b := c.PrepareMoreLikeThis("products", "p-1").
		In("products", "archive").
		LikeText("brass lamp").
		Fields("name", "description").
		MinTermFreq(1).
		MaxQueryTerms(12).
		Size(5)

	req, err := b.Request()
	require.NoError(t, err)
	search, err := req.SearchRequest()
	require.NoError(t, err)
	assert.Equal(t, []string{"products", "archive"}, search.Index)
	assert.Equal(t, map[string]any{
		"query": map[string]any{
			"more_like_this": map[string]any{
				"like": []any{
					map[string]any{"_index": "products", "_id": "p-1"},
					"brass lamp",
				},
				"fields":          []any{"name", "description"},
				"min_term_freq":   float64(1),
				"max_query_terms": float64(12),
			},
		},
	}, readJSON(t, search.Body))

	_, err = b.Execute(context.Background()).Get(context.Background())
	require.NoError(t, err)
	sent := ft.last(t)
	assert.Equal(t, "/products,archive/_search", sent.Path)
	assert.Equal(t, []string{"5"}, sent.Query["size"])
}

func TestPercolateBuilder(t *testing.T) {
	c, _ := newTestClient(t, nil)

	req, err := c.PreparePercolate("alerts").Document(map[string]any{"msg": "disk full"}).Request()
	require.NoError(t, err)
	search, err := req.SearchRequest()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"query": map[string]any{
			"percolate": map[string]any{
				"field":    "query",
				"document": map[string]any{"msg": "disk full"},
			},
		},
	}, readJSON(t, search.Body))

	req, err = c.PreparePercolate("alerts").Field("rule").Existing("logs", "l-9").Request()
	require.NoError(t, err)
	search, err = req.SearchRequest()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"query": map[string]any{
			"percolate": map[string]any{"field": "rule", "index": "logs", "id": "l-9"},
		},
	}, readJSON(t, search.Body))
}

func TestPercolateBuilder_RequiresDocument(t *testing.T) {
	c, ft := newTestClient(t, nil)

	_, err := c.PreparePercolate("alerts").Execute(context.Background()).Get(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), OpPercolate)
	assert.Equal(t, 0, ft.count())
}

func TestSearchScrollBuilder(t *testing.T) {
	c, ft := newTestClient(t, nil)

	req, err := c.PrepareSearchScroll("scroll-1").KeepAlive(2 * time.Minute).Request()
	require.NoError(t, err)
	assert.Equal(t, 2*time.Minute, req.Scroll)
	assert.Equal(t, map[string]any{"scroll_id": "scroll-1"}, readJSON(t, req.Body))

	req, err = c.PrepareSearchScroll("scroll-1").Request()
	require.NoError(t, err)
	assert.Equal(t, DefaultScrollKeepAlive, req.Scroll)

	_, err = c.PrepareSearchScroll("").Execute(context.Background()).Get(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, ft.count())
}

func TestClearScrollBuilder(t *testing.T) {
	c, _ := newTestClient(t, nil)

	req, err := c.PrepareClearScroll("s1", "s2").Request()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"scroll_id": []any{"s1", "s2"}}, readJSON(t, req.Body))

	req, err = c.PrepareClearScroll().Request()
	require.NoError(t, err)
	assert.Equal(t, []string{"_all"}, req.ScrollID)
}

func TestCreateIndexBuilder(t *testing.T) {
	c, ft := newTestClient(t, nil)

	b := c.PrepareCreateIndex("products").
		Shards(1).
		Replicas(0).
		Mappings(map[string]any{"properties": map[string]any{"name": map[string]any{"type": "text"}}}).
		Alias("products-current")

	req, err := b.Request()
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"settings": map[string]any{"number_of_shards": float64(1), "number_of_replicas": float64(0)},
		"mappings": map[string]any{"properties": map[string]any{"name": map[string]any{"type": "text"}}},
		"aliases":  map[string]any{"products-current": map[string]any{}},
	}, readJSON(t, req.Body))

	_, err = b.Execute(context.Background()).Get(context.Background())
	require.NoError(t, err)
	sent := ft.last(t)
	assert.Equal(t, http.MethodPut, sent.Method)
	assert.Equal(t, "/products", sent.Path)

	req, err = c.PrepareCreateIndex("bare").Request()
	require.NoError(t, err)
	assert.Nil(t, req.Body)
}

func TestDeleteIndexBuilder(t *testing.T) {
	c, ft := newTestClient(t, nil)

	req, err := c.PrepareDeleteIndex("a", "b").IgnoreUnavailable(true).Request()
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, req.Index)
	require.NotNil(t, req.IgnoreUnavailable)

	_, err = c.PrepareDeleteIndex().Execute(context.Background()).Get(context.Background())
	require.Error(t, err)
	assert.Equal(t, 0, ft.count())
}

func TestOptimizeBuilder(t *testing.T) {
	c, ft := newTestClient(t, nil)

	_, err := c.PrepareOptimize("a").MaxNumSegments(1).Flush(true).Execute(context.Background()).Get(context.Background())
	require.NoError(t, err)
	sent := ft.last(t)
	assert.Equal(t, "/a/_forcemerge", sent.Path)
	assert.Equal(t, []string{"1"}, sent.Query["max_num_segments"])
}

func TestIndicesExistsBuilder(t *testing.T) {
	c, ft := newTestClient(t, func(*http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusNotFound, Header: http.Header{}, Body: io.NopCloser(strings.NewReader(""))}, nil
	})

	ok, err := c.PrepareIndicesExists("missing").Execute(context.Background()).Get(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "/missing", ft.last(t).Path)

	_, err = c.PrepareIndicesExists().Execute(context.Background()).Get(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), OpIndicesExists)
}
