package pagination

import (
	"errors"
)

// Validation errors.
var (
	ErrInvalidPage     = errors.New("page must be >= 1")
	ErrInvalidPageSize = errors.New("page-size must be between 1 and 1000")
	ErrPageWithAll     = errors.New("--page cannot be combined with --all")
)

// Flag limits.
const (
	DefaultPage = 1
	MinPageSize = 1
	MaxPageSize = 1000
)

// PaginationParams holds CLI pagination flags and provides validation.
//
//nolint:revive // PaginationParams is the canonical name for this exported type.
type PaginationParams struct {
	// Page is the 1-based page number.
	Page int

	// PageSize is the number of rows per page.
	PageSize int

	// All disables paging and returns every item.
	All bool

	// pageSet records that --page was given explicitly.
	pageSet bool
}

// NewPaginationParams creates a PaginationParams with default values.
func NewPaginationParams() *PaginationParams {
	return &PaginationParams{
		Page:     DefaultPage,
		PageSize: DefaultPageSize,
	}
}

// MarkPageSet records that the page number came from an explicit flag.
func (p *PaginationParams) MarkPageSet() {
	p.pageSet = true
}

// Validate checks if the pagination parameters are valid and consistent.
func (p PaginationParams) Validate() error {
	if p.Page < 1 {
		return ErrInvalidPage
	}
	if p.PageSize < MinPageSize || p.PageSize > MaxPageSize {
		return ErrInvalidPageSize
	}
	if p.All && p.pageSet {
		return ErrPageWithAll
	}
	return nil
}

// Apply returns the slice of items selected by the parameters.
func Apply[T any](p PaginationParams, items []T) []T {
	if p.All {
		return items
	}
	return Paginate(items, p.Page, p.PageSize)
}
