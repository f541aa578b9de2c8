package pagination

// PaginationMeta contains metadata about paginated results.
//
//nolint:revive // PaginationMeta is the canonical name for this exported type.
type PaginationMeta struct {
	CurrentPage int  `json:"current_page" yaml:"current_page"`
	PageSize    int  `json:"page_size"    yaml:"page_size"`
	TotalPages  int  `json:"total_pages"  yaml:"total_pages"`
	TotalItems  int  `json:"total_items"  yaml:"total_items"`
	HasPrevious bool `json:"has_previous" yaml:"has_previous"`
	HasNext     bool `json:"has_next"     yaml:"has_next"`
}

// NewPaginationMeta creates pagination metadata from parameters and total count.
// With All set, the result describes a single page holding every item.
func NewPaginationMeta(params PaginationParams, totalCount int) PaginationMeta {
	pageSize := params.PageSize
	currentPage := params.Page

	if params.All {
		pageSize = totalCount
		currentPage = 1
	}
	if currentPage < 1 {
		currentPage = 1
	}

	totalPages := TotalPages(totalCount, pageSize)

	return PaginationMeta{
		CurrentPage: currentPage,
		PageSize:    pageSize,
		TotalPages:  totalPages,
		TotalItems:  totalCount,
		HasPrevious: HasPrevious(currentPage) && totalPages > 0,
		HasNext:     HasNext(currentPage, totalPages),
	}
}
