package service

import "gorm.io/gorm"

const maxPerPage = 100

// Paging 是列表结果共用的分页信息。
type Paging struct {
	Page       int
	PerPage    int
	Total      int64
	TotalPages int
}

func newPaging(page, perPage, fallback int) Paging {
	p := Paging{Page: page, PerPage: perPage}
	if p.Page < 1 {
		p.Page = 1
	}
	switch {
	case p.PerPage <= 0:
		p.PerPage = fallback
	case p.PerPage > maxPerPage:
		p.PerPage = maxPerPage
	}
	return p
}

// setTotal records the row count and derives the page count; an empty
// result still reports one page.
func (p *Paging) setTotal(total int64) {
	p.Total = total
	p.TotalPages = 1
	if total > 0 {
		p.TotalPages = int((total + int64(p.PerPage) - 1) / int64(p.PerPage))
	}
}

// scope limits a query to the current page.
func (p Paging) scope(tx *gorm.DB) *gorm.DB {
	return tx.Limit(p.PerPage).Offset((p.Page - 1) * p.PerPage)
}
