package transfer

import (
	"net/url"
	"strconv"
	"time"
)

// SortOrder selects the ordering of the transfer list. The date ordering and the
// amount orderings are mutually exclusive: an amount sort replaces the date sort.
type SortOrder string

const (
	SortDateDesc   SortOrder = ""     // default: newest first
	SortAmountAsc  SortOrder = "asc"  // smallest amount first
	SortAmountDesc SortOrder = "desc" // largest amount first
)

const dateLayout = "2006-01-02"

// Criteria holds the optional transfer list filters. A zero id means the filter is
// absent; a zero time means the bound is absent. Both date bounds are inclusive.
type Criteria struct {
	Category    uint
	Subcategory uint
	Status      uint
	Type        uint
	DateFrom    time.Time
	DateTo      time.Time
	Sum         SortOrder
}

// ParseCriteria reads the filter query parameters. Malformed values are treated as
// absent filters rather than errors so a hand-edited URL still renders the list.
func ParseCriteria(q url.Values) Criteria {
	return Criteria{
		Category:    parseID(q.Get("category")),
		Subcategory: parseID(q.Get("subcategory")),
		Status:      parseID(q.Get("status")),
		Type:        parseID(q.Get("type")),
		DateFrom:    parseDate(q.Get("date_from")),
		DateTo:      parseDate(q.Get("date_to")),
		Sum:         ParseSortOrder(q.Get("sum_order")),
	}
}

// ParseSortOrder maps the sum_order parameter onto a known ordering; anything
// unrecognized falls back to the default date ordering.
func ParseSortOrder(s string) SortOrder {
	switch SortOrder(s) {
	case SortAmountAsc:
		return SortAmountAsc
	case SortAmountDesc:
		return SortAmountDesc
	}
	return SortDateDesc
}

// Values re-encodes the criteria as query parameters. Used to build pagination
// links that keep the active filters.
func (c Criteria) Values() url.Values {
	v := url.Values{}
	if c.Category != 0 {
		v.Set("category", strconv.FormatUint(uint64(c.Category), 10))
	}
	if c.Subcategory != 0 {
		v.Set("subcategory", strconv.FormatUint(uint64(c.Subcategory), 10))
	}
	if c.Status != 0 {
		v.Set("status", strconv.FormatUint(uint64(c.Status), 10))
	}
	if c.Type != 0 {
		v.Set("type", strconv.FormatUint(uint64(c.Type), 10))
	}
	if !c.DateFrom.IsZero() {
		v.Set("date_from", c.DateFrom.Format(dateLayout))
	}
	if !c.DateTo.IsZero() {
		v.Set("date_to", c.DateTo.Format(dateLayout))
	}
	if c.Sum != SortDateDesc {
		v.Set("sum_order", string(c.Sum))
	}
	return v
}

func parseID(s string) uint {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return uint(n)
}

func parseDate(s string) time.Time {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
