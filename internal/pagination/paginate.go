package pagination

// DefaultPageSize is the number of rows shown per table page.
const DefaultPageSize = 10

// DefaultWindowSpan is the number of page buttons a pager shows.
const DefaultWindowSpan = 5

// Paginate returns items[(page-1)*pageSize : page*pageSize], clamped to the
// slice bounds. Pages before the first or past the last, and non-positive
// page sizes, yield an empty slice. The result shares backing storage with
// items.
func Paginate[T any](items []T, page, pageSize int) []T {
	if page < 1 || pageSize <= 0 {
		return []T{}
	}

	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}

	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// TotalPages returns ceil(n/pageSize), or 0 when there is nothing to page.
func TotalPages(n, pageSize int) int {
	if n <= 0 || pageSize <= 0 {
		return 0
	}
	pages := n / pageSize
	if n%pageSize > 0 {
		pages++
	}
	return pages
}

// ClampPage returns page forced into [1, total]. With no pages it returns 1.
func ClampPage(page, total int) int {
	if total < 1 || page < 1 {
		return 1
	}
	if page > total {
		return total
	}
	return page
}

// Window returns the page numbers a pager displays around current: current±(span/2),
// shifted so that span pages are shown when current sits near either edge.
// It returns nil when there is at most one page.
func Window(current, total, span int) []int {
	if total <= 1 {
		return nil
	}
	if span <= 0 {
		span = DefaultWindowSpan
	}
	current = ClampPage(current, total)

	half := span / 2
	start := current - half
	end := current + half
	if start < 1 {
		end += 1 - start
		start = 1
	}
	if end > total {
		start -= end - total
		end = total
	}
	if start < 1 {
		start = 1
	}

	pages := make([]int, 0, end-start+1)
	for p := start; p <= end; p++ {
		pages = append(pages, p)
	}
	return pages
}

// HasPrevious reports whether a "previous" control is enabled on page current.
func HasPrevious(current int) bool {
	return current > 1
}

// HasNext reports whether a "next" control is enabled on page current.
func HasNext(current, total int) bool {
	return current < total
}
