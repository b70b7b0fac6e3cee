package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound       = errors.New("resource not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternal       = errors.New("internal error")
	ErrConflict       = errors.New("conflict")
	ErrServiceUnavail = errors.New("service unavailable")
	ErrTimeout        = errors.New("timed out")
	ErrTooManyRequest = errors.New("too many requests")
)

// ResponseError is a vendor error status surfaced as a Go error. The raw body
// is kept so callers can inspect anything the engine reported.
type ResponseError struct {
	Operation  string `json:"operation"`
	StatusCode int    `json:"status"`
	Type       string `json:"type,omitempty"`
	Reason     string `json:"reason,omitempty"`
	Body       []byte `json:"-"`
}

func (e *ResponseError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("%s: [%d] %s: %s", e.Operation, e.StatusCode, e.Type, e.Reason)
	}
	return fmt.Sprintf("%s: unexpected status %d %s", e.Operation, e.StatusCode, http.StatusText(e.StatusCode))
}

// Unwrap maps the status code onto the matching sentinel so errors.Is works
// without callers knowing about HTTP.
func (e *ResponseError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusConflict:
		return ErrConflict
	case http.StatusBadRequest:
		return ErrInvalidInput
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	case http.StatusTooManyRequests:
		return ErrTooManyRequest
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		return ErrTimeout
	case http.StatusServiceUnavailable:
		return ErrServiceUnavail
	default:
		if e.StatusCode >= 500 {
			return ErrInternal
		}
		return nil
	}
}

// errorEnvelope is the error body shape the engine returns.
type errorEnvelope struct {
	Error  json.RawMessage `json:"error"`
	Status int             `json:"status"`
}

type errorCause struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

// ParseResponseError builds a ResponseError from a status code and raw body.
// ok is false when the body carries no "error" object, which the engine uses
// for document-level misses such as a get of an unknown id.
func ParseResponseError(operation string, status int, body []byte) (rerr *ResponseError, ok bool) {
	rerr = &ResponseError{Operation: operation, StatusCode: status, Body: body}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || len(env.Error) == 0 || string(env.Error) == "null" {
		return rerr, false
	}

	// "error" is an object on modern engines and a plain string on old ones.
	var cause errorCause
	if err := json.Unmarshal(env.Error, &cause); err == nil {
		rerr.Type = cause.Type
		rerr.Reason = cause.Reason
		return rerr, true
	}
	var msg string
	if err := json.Unmarshal(env.Error, &msg); err == nil {
		rerr.Reason = msg
	}
	return rerr, true
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var respErr *ResponseError
	if errors.As(err, &respErr) {
		return respErr.StatusCode
	}
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrTooManyRequest):
		return http.StatusTooManyRequests
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, ErrServiceUnavail):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
