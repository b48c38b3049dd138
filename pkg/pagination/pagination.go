package pagination

import (
	"net/http"
	"strconv"
)

const (
	DefaultLimit = 5
	MaxLimit     = 100
)

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// DefaultParams returns sensible pagination defaults.
func DefaultParams() Params {
	return Params{
		Page:   1,
		Limit:  DefaultLimit,
		Offset: 0,
	}
}

// FromRequest extracts pagination parameters from an HTTP request. Values
// below 1 fall back to the defaults and limit is capped at MaxLimit.
func FromRequest(r *http.Request) Params {
	p := DefaultParams()

	if page := r.URL.Query().Get("page"); page != "" {
		if v, err := strconv.Atoi(page); err == nil && v > 0 {
			p.Page = v
		}
	}

	if limit := r.URL.Query().Get("limit"); limit != "" {
		if v, err := strconv.Atoi(limit); err == nil && v > 0 {
			if v > MaxLimit {
				v = MaxLimit
			}
			p.Limit = v
		}
	}

	p.Offset = (p.Page - 1) * p.Limit
	return p
}

// Result wraps a paginated response.
type Result[T any] struct {
	Data  []T `json:"data"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// NewResult creates a paginated result. Data is never nil so the envelope
// serializes with an empty array rather than null.
func NewResult[T any](data []T, total int, params Params) Result[T] {
	if data == nil {
		data = []T{}
	}

	return Result[T]{
		Data:  data,
		Page:  params.Page,
		Limit: params.Limit,
		Total: total,
	}
}
