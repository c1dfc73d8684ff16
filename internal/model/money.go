package model

import "fmt"

// All monetary amounts in this codebase are integer cents.  Floating
// point is never used for money; rates are stored as *_cents columns
// and discount rates as basis points.

// BasisPointsDenominator is the scale used for discount rates.  A
// discount of 1000 basis points is 10%.
const BasisPointsDenominator = 10000

// ApplyDiscountCents subtracts a basis-point discount from an amount in
// cents using pure integer arithmetic, rounding the discount down.
func ApplyDiscountCents(amountCents int64, discountBP int64) int64 {
	return amountCents - amountCents*discountBP/BasisPointsDenominator
}

// FormatCents renders integer cents as a plain decimal string, e.g.
// 810000 -> "8100.00".  Used on receipts.
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}
