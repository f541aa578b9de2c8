package pagination

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// Sort orders.
const (
	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// sortPartsMax is the maximum number of parts in a sort expression (field:order).
const sortPartsMax = 2

// Sort expression errors.
var (
	ErrEmptySortField    = errors.New("empty sort expression")
	ErrInvalidSortFormat = errors.New("invalid sort format")
	ErrInvalidSortOrder  = errors.New("invalid sort order (must be asc or desc)")
)

// ParseSortExpression parses "field" or "field:order". The order defaults to asc.
//
//nolint:nonamedreturns // Named returns improve readability for this multi-value function.
func ParseSortExpression(expr string) (field, order string, err error) {
	if strings.TrimSpace(expr) == "" {
		return "", "", ErrEmptySortField
	}

	parts := strings.Split(expr, ":")
	if len(parts) > sortPartsMax {
		return "", "", fmt.Errorf("%w: too many colons in %q", ErrInvalidSortFormat, expr)
	}

	field = strings.TrimSpace(parts[0])
	if field == "" {
		return "", "", ErrEmptySortField
	}

	order = SortOrderAsc
	if len(parts) == sortPartsMax {
		order = strings.ToLower(strings.TrimSpace(parts[1]))
	}
	if order != SortOrderAsc && order != SortOrderDesc {
		return "", "", fmt.Errorf("%w: got %q", ErrInvalidSortOrder, order)
	}
	return field, order, nil
}

// SortBy returns a stably sorted copy of items keyed by the display string
// key returns. Keys that both parse as numbers (currency symbols and
// thousands separators are ignored) compare numerically; otherwise they
// compare case-insensitively.
func SortBy[T any](items []T, key func(T) string, order string) []T {
	sorted := slices.Clone(items)
	slices.SortStableFunc(sorted, func(a, b T) int {
		c := CompareDisplay(key(a), key(b))
		if order == SortOrderDesc {
			return -c
		}
		return c
	})
	return sorted
}

// CompareDisplay compares two rendered cell values.
func CompareDisplay(a, b string) int {
	fa, okA := parseDisplayNumber(a)
	fb, okB := parseDisplayNumber(b)
	if okA && okB {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(strings.ToLower(a), strings.ToLower(b))
}

func parseDisplayNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimLeft(s, "-$")
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if neg {
		f = -f
	}
	return f, true
}
