// Package orm holds query helpers shared by the repositories.
package orm

import "gorm.io/gorm"

const (
	DefaultPage    = 1
	DefaultPerPage = 12
	MaxPerPage     = 100
)

// Page is an offset-based page request.
type Page struct {
	Page    int
	PerPage int
}

// NewPage normalises page and perPage; zero or negative values fall back to
// the defaults and perPage is capped at MaxPerPage.
func NewPage(page, perPage int) Page {
	if page < 1 {
		page = DefaultPage
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return Page{Page: page, PerPage: perPage}
}

// Offset is the number of rows to skip: (page-1)*perPage.
func (p Page) Offset() int { return (p.Page - 1) * p.PerPage }

// Scope applies LIMIT/OFFSET to a query.
func (p Page) Scope() func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset(p.Offset()).Limit(p.PerPage)
	}
}

// Meta describes a page of results.
type Meta struct {
	CurrentPage int   `json:"currentPage"`
	TotalPages  int   `json:"totalPages"`
	TotalCount  int64 `json:"totalCount"`
	PerPage     int   `json:"perPage"`
}

// NewMeta builds the pagination metadata for total rows.
func NewMeta(p Page, total int64) Meta {
	pages := int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	return Meta{CurrentPage: p.Page, TotalPages: pages, TotalCount: total, PerPage: p.PerPage}
}
