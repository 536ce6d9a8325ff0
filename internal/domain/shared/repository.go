package shared

// MaxPageSize caps any list query
const MaxPageSize = 500

// Filter carries paging, ordering and free-text search for list queries.
// Repositories whitelist OrderBy before it reaches SQL.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
	Search   string
}

// DefaultFilter returns page 1 of 20, newest first
func DefaultFilter() Filter {
	return Filter{Page: 1, PageSize: 20, OrderBy: "created_at", OrderDir: "desc"}
}

// Paged reports whether the filter selects a single page.
// PageSize 0 selects every match.
func (f Filter) Paged() bool {
	return f.Page > 0 && f.PageSize > 0
}

// Limit is PageSize capped at MaxPageSize
func (f Filter) Limit() int {
	return min(f.PageSize, MaxPageSize)
}

// Offset returns the row offset of the filter's page
func (f Filter) Offset() int {
	if f.Page < 1 {
		return 0
	}
	return (f.Page - 1) * f.Limit()
}
