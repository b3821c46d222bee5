package core

import (
	"slices"
	"sort"
	"strings"

	"github.com/jmylchreest/miwok/internal/model"
)

// SortField represents a field to sort by.
type SortField string

const (
	SortByPosition SortField = "position"
	SortByNative   SortField = "native"
	SortByTarget   SortField = "target"
)

// SortOrder represents ascending or descending order.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// SortOptions specifies sorting criteria.
type SortOptions struct {
	Field SortField // Field to sort by
	Order SortOrder // Sort order (asc/desc)
}

// DefaultSortOptions returns default sort options (catalog order).
func DefaultSortOptions() SortOptions {
	return SortOptions{
		Field: SortByPosition,
		Order: SortAsc,
	}
}

// Sort sorts entries in place. Position keeps catalog order, reversed for
// descending.
func Sort(entries []model.Entry, opts SortOptions) {
	if len(entries) == 0 {
		return
	}

	if opts.Field == SortByPosition || opts.Field == "" {
		if opts.Order == SortDesc {
			slices.Reverse(entries)
		}
		return
	}

	sort.SliceStable(entries, func(i, j int) bool {
		var a, b string
		switch opts.Field {
		case SortByNative:
			a, b = entries[i].Native, entries[j].Native
		default:
			a, b = entries[i].Target, entries[j].Target
		}

		if opts.Order == SortDesc {
			return strings.ToLower(a) > strings.ToLower(b)
		}
		return strings.ToLower(a) < strings.ToLower(b)
	})
}

// ParseSortField parses a sort field string.
func ParseSortField(s string) (SortField, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "native", "english", "n":
		return SortByNative, nil
	case "target", "miwok", "t":
		return SortByTarget, nil
	default:
		return SortByPosition, nil
	}
}

// ParseSortOrder parses a sort order string.
func ParseSortOrder(s string) (SortOrder, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "desc", "descending", "d":
		return SortDesc, nil
	default:
		return SortAsc, nil
	}
}
