package model

import "time"

// Payment ties a payment instrument to a reservation, 1:1.  Card data
// is never stored here: TokenRef is an opaque reference issued by the
// payment processor.  Method names the instrument type the guest chose.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – owning reservation (unique).
//  Method        – e.g. "CARD", "CASH".
//  TokenRef      – processor token, never raw card fields.
//  CreatedAt     – creation timestamp.
type Payment struct {
	ID            uint64    `json:"id"`             // payments.id
	ReservationID uint64    `json:"reservation_id"` // payments.reservation_id
	Method        string    `json:"method"`         // payments.method
	TokenRef      string    `json:"token_ref"`      // payments.token_ref
	CreatedAt     time.Time `json:"created_at"`     // payments.created_at
}
