package model

import "testing"

func TestApplyDiscountCents(t *testing.T) {
	cases := []struct {
		amount, bp, want int64
	}{
		{900000, 1000, 810000}, // 10% off 9000.00
		{900000, 0, 900000},
		{1, 9999, 1},   // discount of 0.9999 on one cent rounds down to zero
		{100, 50, 100}, // 0.5% of 1.00 rounds down
		{10000, 50, 9950},
	}
	for _, tc := range cases {
		if got := ApplyDiscountCents(tc.amount, tc.bp); got != tc.want {
			t.Errorf("ApplyDiscountCents(%d, %d) = %d, want %d", tc.amount, tc.bp, got, tc.want)
		}
	}
}

func TestFormatCents(t *testing.T) {
	cases := []struct {
		cents int64
		want  string
	}{
		{810000, "8100.00"},
		{5, "0.05"},
		{100, "1.00"},
		{-2550, "-25.50"},
		{0, "0.00"},
	}
	for _, tc := range cases {
		if got := FormatCents(tc.cents); got != tc.want {
			t.Errorf("FormatCents(%d) = %q, want %q", tc.cents, got, tc.want)
		}
	}
}
