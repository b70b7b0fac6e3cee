package httputil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/utafrali/esfuture/pkg/errors"
	"github.com/utafrali/esfuture/pkg/logger"
)

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, Response{Data: map[string]string{"k": "v"}})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, map[string]any{"k": "v"}, decode(t, rec).Data)
}

func TestWriteData(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteData(rec, map[string]int{"count": 4})

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decode(t, rec)
	assert.Nil(t, resp.Error)
	assert.Equal(t, map[string]any{"count": float64(4)}, resp.Data)
}

func TestWriteError_Sentinels(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   string
	}{
		{apperrors.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
		{apperrors.ErrConflict, http.StatusConflict, "CONFLICT"},
		{fmt.Errorf("index: %w", apperrors.ErrInvalidInput), http.StatusBadRequest, "INVALID_INPUT"},
		{apperrors.ErrTimeout, http.StatusGatewayTimeout, "TIMEOUT"},
		{apperrors.ErrServiceUnavail, http.StatusServiceUnavailable, "UNAVAILABLE"},
		{errors.New("boom"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, httptest.NewRequest(http.MethodGet, "/x", nil), tt.err, logger.Discard())

			assert.Equal(t, tt.status, rec.Code)
			resp := decode(t, rec)
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.code, resp.Error.Code)
		})
	}
}

func TestWriteError_HidesInternalMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, httptest.NewRequest(http.MethodGet, "/x", nil), errors.New("secret dsn"), logger.Discard())

	resp := decode(t, rec)
	assert.Equal(t, "an internal error occurred", resp.Error.Message)
}

func TestWriteError_EngineError(t *testing.T) {
	respErr, ok := apperrors.ParseResponseError("count", http.StatusNotFound,
		[]byte(`{"error":{"type":"index_not_found_exception","reason":"no such index [x]"},"status":404}`))
	require.True(t, ok)

	ctx := logger.WithCorrelationID(context.Background(), "corr-1")
	req := httptest.NewRequest(http.MethodGet, "/v1/indices/x/count", nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	WriteError(rec, req, respErr, logger.Discard())

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decode(t, rec)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	assert.Equal(t, "index_not_found_exception", resp.Error.Upstream)
	assert.Equal(t, "corr-1", resp.Error.RequestID)
}

func TestWriteError_LogsWithRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(slog.NewJSONHandler(&buf, nil))
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req = req.WithContext(logger.NewContext(req.Context(), l))

	WriteError(httptest.NewRecorder(), req, apperrors.ErrServiceUnavail, logger.Discard())

	assert.Contains(t, buf.String(), `"msg":"request failed"`)
	assert.Contains(t, buf.String(), `"status":503`)
}
