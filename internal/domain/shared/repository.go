package shared

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Filter carries paging and ordering for list queries. Page is 1-based.
// OrderBy is a column name the repository checks against its whitelist.
type Filter struct {
	Page     int
	PageSize int
	OrderBy  string
	OrderDir string
}

// NewFilter fills in list defaults: page 1, DefaultPageSize rows, newest
// first. Page sizes above MaxPageSize are capped.
func NewFilter(page, pageSize int, orderBy, orderDir string) Filter {
	f := Filter{Page: page, PageSize: pageSize, OrderBy: orderBy, OrderDir: orderDir}
	if f.Page < 1 {
		f.Page = 1
	}
	switch {
	case f.PageSize <= 0:
		f.PageSize = DefaultPageSize
	case f.PageSize > MaxPageSize:
		f.PageSize = MaxPageSize
	}
	if f.OrderBy == "" {
		f.OrderBy = "created_at"
		f.OrderDir = "desc"
	}
	return f
}

// Offset returns the row offset for the current page
func (f Filter) Offset() int {
	if f.Page <= 1 || f.PageSize <= 0 {
		return 0
	}
	return (f.Page - 1) * f.PageSize
}

// Paginated is one page of a list result
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

func NewPaginated[T any](items []T, total int64, f Filter) Paginated[T] {
	totalPages := 0
	if f.PageSize > 0 {
		totalPages = int((total + int64(f.PageSize) - 1) / int64(f.PageSize))
	}
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       f.Page,
		PageSize:   f.PageSize,
		TotalPages: totalPages,
	}
}
