package pagination

import "gorm.io/gorm"

const (
	DefaultLimit = 20
	MaxLimit     = 250
)

// Pagination is the page/limit pair accepted by list endpoints.
type Pagination struct {
	Page  int `form:"page,default=1" json:"page"`
	Limit int `form:"limit,default=20" json:"limit"`
}

// PageInfo describes one page of a larger result set.
type PageInfo struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
}

// Normalize clamps page and limit into their allowed ranges.
func (p Pagination) Normalize() Pagination {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	return p
}

// Offset returns the row offset for the normalized page.
func (p Pagination) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}

// Scope applies LIMIT/OFFSET to a gorm query.
func (p Pagination) Scope() func(*gorm.DB) *gorm.DB {
	n := p.Normalize()
	return func(tx *gorm.DB) *gorm.DB {
		return tx.Offset(n.Offset()).Limit(n.Limit)
	}
}

// BuildPageInfo computes page metadata for a total row count.
func BuildPageInfo(total int64, p Pagination) PageInfo {
	n := p.Normalize()
	pages := int(total) / n.Limit
	if int(total)%n.Limit != 0 {
		pages++
	}
	return PageInfo{
		Total:      total,
		Page:       n.Page,
		Limit:      n.Limit,
		TotalPages: pages,
	}
}

// Slice pages an in-memory list that was already sorted.
func Slice[T any](items []T, p Pagination) []T {
	n := p.Normalize()
	start := n.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + n.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
