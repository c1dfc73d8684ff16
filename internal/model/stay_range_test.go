package model

import (
	"testing"
	"time"
)

func mustStay(t *testing.T, in, out string) StayRange {
	t.Helper()
	s, err := ParseStayRange(in, out)
	if err != nil {
		t.Fatalf("ParseStayRange(%s, %s): %v", in, out, err)
	}
	return s
}

func TestParseStayRangeRejectsBadRanges(t *testing.T) {
	cases := []struct{ in, out string }{
		{"2026-03-10", "2026-03-10"}, // zero nights
		{"2026-03-12", "2026-03-10"}, // reversed
		{"not-a-date", "2026-03-10"},
		{"2026-03-10", ""},
	}
	for _, tc := range cases {
		if _, err := ParseStayRange(tc.in, tc.out); err == nil {
			t.Errorf("ParseStayRange(%q, %q): expected error", tc.in, tc.out)
		}
	}
}

func TestNights(t *testing.T) {
	s := mustStay(t, "2026-03-10", "2026-03-13")
	if got := s.Nights(); got != 3 {
		t.Fatalf("Nights() = %d, want 3", got)
	}
}

func TestOverlapsHalfOpen(t *testing.T) {
	base := mustStay(t, "2026-03-10", "2026-03-13")
	cases := []struct {
		in, out string
		want    bool
	}{
		{"2026-03-13", "2026-03-15", false}, // back-to-back: checkout day is free
		{"2026-03-08", "2026-03-10", false}, // ends exactly at check-in
		{"2026-03-12", "2026-03-14", true},  // shares the night of the 12th
		{"2026-03-09", "2026-03-11", true},
		{"2026-03-01", "2026-03-31", true}, // fully covers
		{"2026-03-11", "2026-03-12", true}, // fully inside
	}
	for _, tc := range cases {
		other := mustStay(t, tc.in, tc.out)
		if got := base.Overlaps(other); got != tc.want {
			t.Errorf("[%s,%s) overlaps [%s,%s) = %v, want %v",
				base.CheckInString(), base.CheckOutString(), tc.in, tc.out, got, tc.want)
		}
		// overlap is symmetric
		if got := other.Overlaps(base); got != tc.want {
			t.Errorf("overlap not symmetric for [%s,%s)", tc.in, tc.out)
		}
	}
}

func TestContainsDate(t *testing.T) {
	s := mustStay(t, "2026-03-10", "2026-03-13")
	in, _ := time.Parse(DateLayout, "2026-03-12")
	out, _ := time.Parse(DateLayout, "2026-03-13")
	if !s.ContainsDate(in) {
		t.Errorf("night of the 12th should be inside the stay")
	}
	if s.ContainsDate(out) {
		t.Errorf("checkout day must not be inside the stay")
	}
}
