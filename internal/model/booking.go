package model

import "time"

// Booking status values.
const BookingStatusConfirmed = "CONFIRMED"

// Booking is the finalized confirmation record derived from a paid
// reservation.  At most one Booking exists per reservation; finalizing
// twice returns the existing record, which is what keeps a re-submitted
// confirmation from minting duplicate bookings.
//
// Fields:
//  ID            – primary key identifier.
//  ReservationID – the reservation this confirms (unique).
//  BookingNo     – human-facing confirmation number (uuid).
//  Status        – currently always CONFIRMED.
//  CreatedAt     – creation timestamp.
type Booking struct {
	ID            uint64    `json:"id"`             // bookings.id
	ReservationID uint64    `json:"reservation_id"` // bookings.reservation_id
	BookingNo     string    `json:"booking_no"`     // bookings.booking_no
	Status        string    `json:"status"`         // bookings.status
	CreatedAt     time.Time `json:"created_at"`     // bookings.created_at
}
