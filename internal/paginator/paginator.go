// Package paginator implements clamp-and-recover pagination for listings.
// A page number that is not an integer falls back to the first page; a page
// number outside the valid range falls back to the last page. Callers never
// see an error, and an empty result set still has one (empty) page.
package paginator

import "strconv"

// Paginator divides a result set of Count items into pages of PerPage items.
type Paginator struct {
	Count   int `json:"count"`
	PerPage int `json:"per_page"`
}

// Page is a resolved page of a paginated listing. Offset and Limit are
// ready to feed into a SQL query.
type Page struct {
	Number   int `json:"number"`
	NumPages int `json:"num_pages"`
	Count    int `json:"count"`
	PerPage  int `json:"per_page"`
	Offset   int `json:"-"`
	Limit    int `json:"-"`
}

// New returns a Paginator over count items with perPage items per page.
// A non-positive perPage is treated as 1.
func New(count, perPage int) *Paginator {
	if perPage < 1 {
		perPage = 1
	}
	if count < 0 {
		count = 0
	}
	return &Paginator{Count: count, PerPage: perPage}
}

// NumPages returns the total number of pages, never less than 1: an empty
// listing has a single empty page.
func (p *Paginator) NumPages() int {
	if p.Count == 0 {
		return 1
	}
	return (p.Count + p.PerPage - 1) / p.PerPage
}

// Page resolves a raw page-number parameter. An empty or non-integer value
// yields page 1; a value below 1 or beyond the last page yields the last
// page.
func (p *Paginator) Page(raw string) Page {
	n, err := strconv.Atoi(raw)
	if err != nil {
		n = 1
	} else if n < 1 || n > p.NumPages() {
		n = p.NumPages()
	}
	return p.page(n)
}

// page builds the Page descriptor for a validated page number.
func (p *Paginator) page(n int) Page {
	return Page{
		Number:   n,
		NumPages: p.NumPages(),
		Count:    p.Count,
		PerPage:  p.PerPage,
		Offset:   (n - 1) * p.PerPage,
		Limit:    p.PerPage,
	}
}

// HasNext reports whether a page after this one exists.
func (pg Page) HasNext() bool {
	return pg.Number < pg.NumPages
}

// HasPrevious reports whether a page before this one exists.
func (pg Page) HasPrevious() bool {
	return pg.Number > 1
}
