package model

import "github.com/samber/lo"

// Pagination describes one page of the post list. CurrentPage is kept as
// requested, so it may be zero, negative or past the last page.
type Pagination struct {
	CurrentPage int
	TotalPosts  int
	PerPage     int
	Pages       int
}

// PageCount is ceil(total / perPage).
func PageCount(total, perPage int) int {
	if total <= 0 || perPage <= 0 {
		return 0
	}
	return (total + perPage - 1) / perPage
}

func NewPagination(current, total, perPage int) Pagination {
	return Pagination{
		CurrentPage: current,
		TotalPosts:  total,
		PerPage:     perPage,
		Pages:       PageCount(total, perPage),
	}
}

func (p Pagination) PageNumbers() []int {
	return lo.RangeFrom(1, p.Pages)
}

func (p Pagination) HasPrev() bool {
	return p.CurrentPage > 1 && p.Pages > 0
}

func (p Pagination) PrevPage() int {
	return min(p.CurrentPage-1, p.Pages)
}

func (p Pagination) HasNext() bool {
	return p.CurrentPage < p.Pages
}

func (p Pagination) NextPage() int {
	return max(p.CurrentPage+1, 1)
}
