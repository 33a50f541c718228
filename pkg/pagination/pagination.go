package pagination

import "math"

const (
	DefaultPerPage = 20
	MaxPerPage     = 100

	// MaxPage keeps Offset within a 32-bit SQL OFFSET.
	MaxPage = math.MaxInt32 / MaxPerPage
)

// Params is a normalised page request. Use New to build one.
type Params struct {
	Page    int
	PerPage int
}

// New clamps page to [1, MaxPage] and perPage to [1, MaxPerPage]; a
// non-positive perPage falls back to defaultPerPage.
func New(page, perPage, defaultPerPage int) Params {
	if page < 1 {
		page = 1
	}
	if page > MaxPage {
		page = MaxPage
	}
	if defaultPerPage < 1 || defaultPerPage > MaxPerPage {
		defaultPerPage = DefaultPerPage
	}
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return Params{Page: page, PerPage: perPage}
}

// Offset is the number of rows to skip.
func (p Params) Offset() int {
	if p.Page < 1 || p.PerPage < 1 {
		return 0
	}
	return (p.Page - 1) * p.PerPage
}

// Page is the list envelope shared by every listing endpoint.
type Page[T any] struct {
	Items       []T   `json:"items"`
	Total       int64 `json:"total"`
	TotalPages  int   `json:"total_pages"`
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	HasNext     bool  `json:"has_next"`
	HasPrev     bool  `json:"has_prev"`
}

// NewPage builds the envelope for one page of items.
func NewPage[T any](items []T, total int64, p Params) Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if p.PerPage > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(p.PerPage)))
	}
	return Page[T]{
		Items:       items,
		Total:       total,
		TotalPages:  totalPages,
		CurrentPage: p.Page,
		PerPage:     p.PerPage,
		HasNext:     p.Page < totalPages,
		HasPrev:     p.Page > 1,
	}
}

// Map converts the items of a page while keeping its counters.
func Map[T, U any](in Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(in.Items))
	for _, it := range in.Items {
		out = append(out, fn(it))
	}
	return Page[U]{
		Items:       out,
		Total:       in.Total,
		TotalPages:  in.TotalPages,
		CurrentPage: in.CurrentPage,
		PerPage:     in.PerPage,
		HasNext:     in.HasNext,
		HasPrev:     in.HasPrev,
	}
}
