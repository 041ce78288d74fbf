package store

// Page is an offset-paginated result.
type Page struct {
	TotalItems  int64       `json:"totalItems"`
	Items       interface{} `json:"items"`
	TotalPages  int         `json:"totalPages"`
	CurrentPage int         `json:"currentPage"`
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Pagination turns 0-based page and size query values into LIMIT/OFFSET.
type Pagination struct {
	Page  int
	Limit int
}

func NewPagination(page, size int) Pagination {
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	if page < 0 {
		page = 0
	}
	return Pagination{Page: page, Limit: size}
}

func (p Pagination) Offset() int {
	return p.Page * p.Limit
}

// NewPage builds the paging envelope for a page of items out of total.
func (p Pagination) NewPage(items interface{}, total int64) Page {
	totalPages := 0
	if p.Limit > 0 {
		totalPages = int((total + int64(p.Limit) - 1) / int64(p.Limit))
	}
	return Page{
		TotalItems:  total,
		Items:       items,
		TotalPages:  totalPages,
		CurrentPage: p.Page,
	}
}
