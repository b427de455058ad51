package shared

import (
	"strconv"
	"strings"
)

// Page is the paginated list envelope returned by the backend.
type Page[T any] struct {
	Data       []T   `json:"data"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

// NewPage builds a page and derives TotalPages from total and limit.
func NewPage[T any](data []T, total int64, page, limit int) Page[T] {
	if data == nil {
		data = []T{}
	}
	p := Page[T]{Data: data, Total: total, Page: page, Limit: limit}
	if limit > 0 {
		p.TotalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return p
}

// HasNext reports whether another page follows this one.
func (p Page[T]) HasNext() bool {
	return p.Page < p.TotalPages
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListParams are the common list query parameters accepted by backend
// collection endpoints.
type ListParams struct {
	Page    int    `form:"page" json:"page,omitempty" binding:"omitempty,min=1"`
	Limit   int    `form:"limit" json:"limit,omitempty" binding:"omitempty,min=1,max=100"`
	Search  string `form:"search" json:"search,omitempty" binding:"omitempty,max=100"`
	SortBy  string `form:"sort_by" json:"sort_by,omitempty"`
	SortDir string `form:"sort_dir" json:"sort_dir,omitempty" binding:"omitempty,oneof=asc desc"`
}

// Normalize clamps page and limit into the accepted range.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	p.SortDir = strings.ToLower(p.SortDir)
	return p
}

// Query renders the parameters as backend query values. Zero values are
// omitted.
func (p ListParams) Query() map[string]string {
	p = p.Normalize()
	q := map[string]string{
		"page":  strconv.Itoa(p.Page),
		"limit": strconv.Itoa(p.Limit),
	}
	if p.Search != "" {
		q["search"] = p.Search
	}
	if p.SortBy != "" {
		q["sort_by"] = p.SortBy
		if p.SortDir != "" {
			q["sort_dir"] = p.SortDir
		}
	}
	return q
}
