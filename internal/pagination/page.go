package pagination

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPage  = errors.New("page must be at least 1")
	ErrInvalidLimit = errors.New("limit out of range")
)

// Meta describes one page of an in-memory result set
type Meta struct {
	Page    int  `json:"page"`
	Limit   int  `json:"limit"`
	Total   int  `json:"total"`
	HasMore bool `json:"has_more"`
}

// Validate checks 1-based page and limit against maxLimit.
func Validate(page, limit, maxLimit int) error {
	if page < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidPage, page)
	}
	if limit < 1 || limit > maxLimit {
		return fmt.Errorf("%w: got %d, want 1..%d", ErrInvalidLimit, limit, maxLimit)
	}
	return nil
}

// Slice returns the items on the given 1-based page. A page past the end,
// or a non-positive page or limit, yields an empty, non-nil slice. Page
// numbers are compared by division before any multiplication, so an
// arbitrarily large page cannot overflow.
func Slice[T any](items []T, page, limit int) ([]T, Meta) {
	total := len(items)
	meta := Meta{Page: page, Limit: limit, Total: total}
	if page < 1 || limit < 1 {
		return []T{}, meta
	}

	pages := total / limit
	if total%limit != 0 {
		pages++
	}
	if page-1 >= pages {
		return []T{}, meta
	}

	start := (page - 1) * limit
	end := min(start+limit, total)
	meta.HasMore = end < total

	out := make([]T, end-start)
	copy(out, items[start:end])
	return out, meta
}
