// Package pagination maps page/per_page query parameters onto search
// from/size windows.
package pagination

import (
	"fmt"
	"net/http"
	"strconv"

	apperrors "github.com/utafrali/esfuture/pkg/errors"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100

	// MaxWindow is the engine's default index.max_result_window: from+size
	// beyond it is rejected by the engine.
	MaxWindow = 10000
)

// Params is a requested page translated into a search window.
type Params struct {
	Page    int `json:"page"`
	PerPage int `json:"per_page"`
	From    int `json:"-"`
}

// DefaultParams returns the first page with the default size.
func DefaultParams() Params {
	return Params{Page: 1, PerPage: DefaultPerPage}
}

// FromRequest reads page and per_page from the query string. Missing values
// take defaults; malformed or out-of-range values, or a page that ends past
// MaxWindow, fail with an error matching ErrInvalidInput.
func FromRequest(r *http.Request) (Params, error) {
	p := DefaultParams()
	q := r.URL.Query()

	if s := q.Get("page"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 {
			return p, fmt.Errorf("page %q must be a positive integer: %w", s, apperrors.ErrInvalidInput)
		}
		p.Page = v
	}

	if s := q.Get("per_page"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil || v < 1 || v > MaxPerPage {
			return p, fmt.Errorf("per_page %q must be between 1 and %d: %w", s, MaxPerPage, apperrors.ErrInvalidInput)
		}
		p.PerPage = v
	}

	// Page*PerPage <= MaxWindow, checked by division so huge pages cannot overflow.
	if p.Page > MaxWindow/p.PerPage {
		return p, fmt.Errorf("page %d of size %d is past the first %d hits: %w", p.Page, p.PerPage, MaxWindow, apperrors.ErrInvalidInput)
	}
	p.From = (p.Page - 1) * p.PerPage
	return p, nil
}

// Result is one page of hits.
type Result[T any] struct {
	Hits       []T   `json:"hits"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// NewResult builds the page for hits out of total matches. Pages past
// MaxWindow are not counted since they cannot be fetched.
func NewResult[T any](hits []T, total int64, p Params) Result[T] {
	reachable := total
	if reachable > MaxWindow {
		reachable = MaxWindow
	}
	pages := int(reachable / int64(p.PerPage))
	if reachable%int64(p.PerPage) > 0 {
		pages++
	}

	if hits == nil {
		hits = []T{}
	}
	return Result[T]{
		Hits:       hits,
		Total:      total,
		Page:       p.Page,
		PerPage:    p.PerPage,
		TotalPages: pages,
		HasNext:    p.Page < pages,
		HasPrev:    p.Page > 1,
	}
}
