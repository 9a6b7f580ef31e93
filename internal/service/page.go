package service

import "fmt"

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is one slice of a paginated listing.
type Page[T any] struct {
	Items         []T `json:"content"`
	Page          int `json:"page"`
	Size          int `json:"size"`
	TotalElements int `json:"totalElements"`
	TotalPages    int `json:"totalPages"`
}

// PageRequest is a validated page/size pair.
type PageRequest struct {
	Page int
	Size int
}

// NewPageRequest rejects negative pages and clamps size to 1..MaxPageSize.
// A zero size means DefaultPageSize.
func NewPageRequest(page, size int) (PageRequest, error) {
	if page < 0 {
		return PageRequest{}, fmt.Errorf("%w: page must not be negative", ErrInvalidRequest)
	}
	switch {
	case size == 0:
		size = DefaultPageSize
	case size < 1:
		size = 1
	case size > MaxPageSize:
		size = MaxPageSize
	}
	return PageRequest{Page: page, Size: size}, nil
}

func (r PageRequest) Offset() int {
	return r.Page * r.Size
}

func newPage[T any](req PageRequest, items []T, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:         items,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    (total + req.Size - 1) / req.Size,
	}
}
