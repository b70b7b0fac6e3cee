// Package httputil writes the JSON envelopes served by the probe.
package httputil

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	apperrors "github.com/utafrali/esfuture/pkg/errors"
	"github.com/utafrali/esfuture/pkg/logger"
)

// Response is the envelope for every JSON answer.
type Response struct {
	Data  any            `json:"data,omitempty"`
	Error *ErrorResponse `json:"error,omitempty"`
}

// ErrorResponse describes a failed request.
type ErrorResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Upstream  string `json:"upstream,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	// Headers are already sent; nothing meaningful can be done if encoding fails.
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData wraps v in the envelope and writes it with status 200.
func WriteData(w http.ResponseWriter, v any) {
	WriteJSON(w, http.StatusOK, Response{Data: v})
}

// WriteError maps err onto a status and error code. Engine errors keep their
// status and expose the engine's error type as Upstream. Server-side
// failures are logged with the request-scoped logger when there is one.
func WriteError(w http.ResponseWriter, r *http.Request, err error, fallback *slog.Logger) {
	l := logger.FromContext(r.Context())
	if l == slog.Default() && fallback != nil {
		l = fallback
	}

	status := apperrors.HTTPStatus(err)
	resp := &ErrorResponse{
		Code:      codeFor(err),
		Message:   err.Error(),
		RequestID: logger.CorrelationIDFromContext(r.Context()),
	}

	var respErr *apperrors.ResponseError
	if errors.As(err, &respErr) {
		resp.Upstream = respErr.Type
	}

	if status >= http.StatusInternalServerError {
		l.ErrorContext(r.Context(), "request failed",
			slog.String("error", err.Error()),
			slog.Int("status", status),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
		)
		if status == http.StatusInternalServerError {
			resp.Message = "an internal error occurred"
		}
	}

	WriteJSON(w, status, Response{Error: resp})
}

func codeFor(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, apperrors.ErrConflict):
		return "CONFLICT"
	case errors.Is(err, apperrors.ErrInvalidInput):
		return "INVALID_INPUT"
	case errors.Is(err, apperrors.ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, apperrors.ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, apperrors.ErrTooManyRequest):
		return "TOO_MANY_REQUESTS"
	case errors.Is(err, apperrors.ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, apperrors.ErrServiceUnavail):
		return "UNAVAILABLE"
	default:
		return "INTERNAL_ERROR"
	}
}
