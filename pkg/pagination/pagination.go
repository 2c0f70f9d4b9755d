package pagination

import (
	"net/url"
	"strconv"
)

// PageRequest represents a client request for a page of data.
type PageRequest struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Normalize adjusts the request to ensure valid pagination values based
// on the config.
func (r *PageRequest) Normalize(cfg Config) {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 {
		r.Limit = cfg.DefaultLimit
	}
	if r.Limit > cfg.MaxLimit {
		r.Limit = cfg.MaxLimit
	}
}

// Offset calculates the number of records to skip based on page and limit.
func (r *PageRequest) Offset() int {
	return (r.Page - 1) * r.Limit
}

// PageRequestFromQuery parses pagination parameters from URL query values.
// Supported parameters: page, limit. The result is normalized according
// to the provided config.
func PageRequestFromQuery(values url.Values, cfg Config) PageRequest {
	page, _ := strconv.Atoi(values.Get("page"))
	limit, _ := strconv.Atoi(values.Get("limit"))

	req := PageRequest{
		Page:  page,
		Limit: limit,
	}

	req.Normalize(cfg)
	return req
}

// Meta describes the pagination block returned alongside a page of data.
type Meta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// PageResult holds a page of data along with pagination metadata.
// A page beyond the last yields an empty Data slice and a valid Meta block.
type PageResult[T any] struct {
	Data       []T  `json:"data"`
	Pagination Meta `json:"pagination"`
}

// NewPageResult creates a PageResult with calculated total pages.
func NewPageResult[T any](data []T, total, page, limit int) PageResult[T] {
	totalPages := total / limit
	if total%limit != 0 {
		totalPages++
	}

	if data == nil {
		data = []T{}
	}

	return PageResult[T]{
		Data: data,
		Pagination: Meta{
			Total:      total,
			Page:       page,
			Limit:      limit,
			TotalPages: totalPages,
		},
	}
}
