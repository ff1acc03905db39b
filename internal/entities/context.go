package entities

import "strings"

// SortKey is a single sort attribute with direction
type SortKey struct {
	Key      string
	Reversed bool
}

// ParseSortKey parses "name" or "-name" (descending)
func ParseSortKey(raw string) SortKey {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "-") {
		return SortKey{Key: strings.TrimLeft(raw, "-"), Reversed: true}
	}
	return SortKey{Key: raw}
}

// ParseSortKeys parses a list of raw sort keys, skipping empty entries
func ParseSortKeys(raw []string) []SortKey {
	keys := make([]SortKey, 0, len(raw))
	for _, r := range raw {
		k := ParseSortKey(r)
		if k.Key == "" {
			continue
		}
		keys = append(keys, k)
	}
	return keys
}

// Direction returns "asc" or "desc"
func (k SortKey) Direction() string {
	if k.Reversed {
		return "desc"
	}
	return "asc"
}

// String returns the key with a "-" prefix when reversed
func (k SortKey) String() string {
	if k.Reversed {
		return "-" + k.Key
	}
	return k.Key
}

// RequestContext carries filters, sorting and pagination for a list query.
// Page numbers start at 1; zero means unset.
type RequestContext struct {
	Filters map[string]any
	Sorting []SortKey

	StandardPagination bool
	CursorPagination   bool

	PageNumber int
	PageSize   int
	PageCursor string
	PageOffset int
	PageLimit  int
}

// Filter returns the value of a single filter key
func (c *RequestContext) Filter(key string) (any, bool) {
	if c.Filters == nil {
		return nil, false
	}
	v, ok := c.Filters[key]
	return v, ok
}

// ShouldBePaginated reports whether page-number pagination applies
func (c *RequestContext) ShouldBePaginated() bool {
	return c.StandardPagination || (c.PageNumber > 0 && c.PageSize > 0 && !c.CursorPagination)
}

// ShouldBeCursorPaginated reports whether cursor pagination applies
func (c *RequestContext) ShouldBeCursorPaginated() bool {
	return c.CursorPagination || c.PageCursor != ""
}
