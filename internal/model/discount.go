package model

import "time"

// Discount is a coupon code staff can create and guests can apply
// during room selection.  PercentBP is the discount in basis points
// (1000 = 10%); rates are integer to keep money arithmetic exact.
//
// Fields:
//  ID        – primary key identifier.
//  Code      – unique coupon code, matched case-insensitively.
//  PercentBP – discount rate in basis points, [0, 10000).
//  ExpiresAt – end of validity; expired codes are rejected.
//  CreatedAt – creation timestamp.
type Discount struct {
	ID        uint64    `json:"id"`         // discounts.id
	Code      string    `json:"code"`       // discounts.code
	PercentBP int64     `json:"percent_bp"` // discounts.percent_bp
	ExpiresAt time.Time `json:"expires_at"` // discounts.expires_at
	CreatedAt time.Time `json:"-"`          // discounts.created_at
}
