// Package pagination slices cached collections into fixed-size pages.
//
// This package contains the pure paging logic shared by the store, the
// dashboard, and the CLI:
//   - Paginate / TotalPages: page slicing and page counts
//   - Window: page numbers shown in a pager
//   - PaginationParams: CLI flag values and validation
//   - PaginationMeta: page metadata attached to JSON output
//
// Nothing here performs I/O or holds state.
package pagination
