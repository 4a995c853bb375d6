package transfer

import "strconv"

// PerPageChoices is the allowed page-size set for the transfer list. Any other
// requested size falls back to DefaultPerPage.
var PerPageChoices = []int{10, 25, 50, 100}

// DefaultPerPage is the transfer list page size when none (or an invalid one)
// is requested.
const DefaultPerPage = 10

// NormalizePerPage validates a requested page size against PerPageChoices,
// falling back to def for anything else, including non-numeric input.
func NormalizePerPage(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	for _, c := range PerPageChoices {
		if n == c {
			return n
		}
	}
	return def
}

// ParsePage parses a 1-based page number. Non-numeric input or anything below 1
// becomes page 1.
func ParsePage(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// PageInfo describes one page of a larger result set.
type PageInfo struct {
	Number     int
	PerPage    int
	TotalItems int64
	TotalPages int
}

// NewPageInfo clamps page into the valid range for totalItems: requests past the
// end land on the last page. An empty result still has one (empty) page.
func NewPageInfo(page, perPage int, totalItems int64) PageInfo {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	pages := int((totalItems + int64(perPage) - 1) / int64(perPage))
	if pages < 1 {
		pages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pages {
		page = pages
	}
	return PageInfo{Number: page, PerPage: perPage, TotalItems: totalItems, TotalPages: pages}
}

// Offset is the number of records to skip to reach this page.
func (p PageInfo) Offset() int { return (p.Number - 1) * p.PerPage }

func (p PageInfo) HasPrev() bool { return p.Number > 1 }
func (p PageInfo) HasNext() bool { return p.Number < p.TotalPages }
func (p PageInfo) Prev() int     { return p.Number - 1 }
func (p PageInfo) Next() int     { return p.Number + 1 }
