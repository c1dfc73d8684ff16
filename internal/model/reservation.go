package model

import "time"

// Reservation status values.  A reservation starts PENDING, moves to
// CONFIRMED when its booking is finalized, or to CANCELLED.
const (
	ReservationStatusPending   = "PENDING"
	ReservationStatusConfirmed = "CONFIRMED"
	ReservationStatusCancelled = "CANCELLED"
)

// Reservation is a guest's request for a date range and party size.
// Cost is zero until rooms are assigned.  UserID is nil for guest
// checkout (no account).
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owning user, nullable.
//  Stay      – half-open [check-in, check-out) date range.
//  Adults    – adult head count, at least 1.
//  Children  – child head count, zero or more.
//  Status    – PENDING, CONFIRMED or CANCELLED.
//  CostCents – total cost in cents, populated after room assignment.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Reservation struct {
	ID        uint64    `json:"id"`         // reservations.id
	UserID    *uint64   `json:"user_id"`    // reservations.user_id (nullable)
	Stay      StayRange `json:"stay"`       // reservations.check_in_date / check_out_date
	Adults    uint32    `json:"adults"`     // reservations.adults
	Children  uint32    `json:"children"`   // reservations.children
	Status    string    `json:"status"`     // reservations.status
	CostCents int64     `json:"cost_cents"` // reservations.cost_cents
	CreatedAt time.Time `json:"created_at"` // reservations.created_at
	UpdatedAt time.Time `json:"updated_at"` // reservations.updated_at
}

// ReservedRoom binds one specific Room to one Reservation for the
// reservation's date range.  The stay bounds are denormalized onto the
// row so that the no-double-booking predicate is a single-table overlap
// scan at claim time.  Rows are deleted when the reservation is
// cancelled, releasing the room.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – owning reservation.
//  RoomID        – claimed room.
//  Stay          – copy of the reservation's date range at claim time.
//  CreatedAt     – creation timestamp.
type ReservedRoom struct {
	ID            uint64    `json:"id"`             // reserved_rooms.id
	ReservationID uint64    `json:"reservation_id"` // reserved_rooms.reservation_id
	RoomID        uint64    `json:"room_id"`        // reserved_rooms.room_id
	Stay          StayRange `json:"stay"`           // reserved_rooms.check_in_date / check_out_date
	CreatedAt     time.Time `json:"created_at"`     // reserved_rooms.created_at
}
