package transfer

import "testing"

func TestNormalizePerPage(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"10", 10},
		{"25", 25},
		{"50", 50},
		{"100", 100},
		{"37", 10}, // not on the allow-list
		{"0", 10},
		{"-25", 10},
		{"abc", 10},
		{"", 10},
	}
	for _, tc := range cases {
		if got := NormalizePerPage(tc.in, DefaultPerPage); got != tc.want {
			t.Fatalf("NormalizePerPage(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestParsePage(t *testing.T) {
	if ParsePage("abc") != 1 {
		t.Fatalf("non-numeric page must fall back to 1")
	}
	if ParsePage("0") != 1 || ParsePage("-3") != 1 {
		t.Fatalf("pages below 1 must fall back to 1")
	}
	if ParsePage("4") != 4 {
		t.Fatalf("valid page rejected")
	}
}

func TestNewPageInfoClamping(t *testing.T) {
	// 25 items at 10 per page -> 3 pages; page 9999 clamps to the last one.
	p := NewPageInfo(9999, 10, 25)
	if p.TotalPages != 3 || p.Number != 3 {
		t.Fatalf("expected page 3 of 3, got %d of %d", p.Number, p.TotalPages)
	}
	if p.Offset() != 20 {
		t.Fatalf("offset wrong: %d", p.Offset())
	}
	if !p.HasPrev() || p.HasNext() {
		t.Fatalf("prev/next flags wrong on last page")
	}
}

func TestNewPageInfoEmpty(t *testing.T) {
	p := NewPageInfo(1, 10, 0)
	if p.TotalPages != 1 || p.Number != 1 || p.Offset() != 0 {
		t.Fatalf("empty result should still be one page: %+v", p)
	}
	if p.HasPrev() || p.HasNext() {
		t.Fatalf("empty page has no neighbors")
	}
}
