// Package pagination holds the offset/limit arithmetic shared by every list endpoint.
package pagination

const (
	DefaultLimit = 10
	MaxLimit     = 100
	// MaxPage keeps (Page-1)*Limit well inside a Postgres bigint OFFSET.
	MaxPage = 10_000_000
)

// Params is embedded into list filters and bound from ?page=&limit=.
type Params struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// Normalize clamps page to [1, MaxPage] and limit to [1, MaxLimit].
func (p *Params) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Page > MaxPage {
		p.Page = MaxPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// Meta is the "pagination" object of a list envelope.
type Meta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

func NewMeta(p Params, total int64) Meta {
	var pages int64
	if p.Limit > 0 {
		pages = (total + int64(p.Limit) - 1) / int64(p.Limit)
	}
	return Meta{
		Page:       p.Page,
		Limit:      p.Limit,
		Total:      total,
		TotalPages: pages,
	}
}

// Page is the {data, pagination} list envelope.
type Page[T any] struct {
	Data       []T  `json:"data"`
	Pagination Meta `json:"pagination"`
}

func NewPage[T any](items []T, p Params, total int64) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{Data: items, Pagination: NewMeta(p, total)}
}
