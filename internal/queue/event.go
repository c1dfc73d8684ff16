// Package queue defines message payloads exchanged over the message broker.
package queue

// BookingConfirmedEvent is published when a reservation is finalized into a
// booking. It contains enough information for downstream consumers to log,
// notify, or trigger analytics without querying the primary database.
type BookingConfirmedEvent struct {
	ReservationID uint64   `json:"reservation_id"`
	BookingNo     string   `json:"booking_no"`
	UserID        uint64   `json:"user_id"`
	GuestName     string   `json:"guest_name"`
	CheckInDate   string   `json:"check_in_date"`
	CheckOutDate  string   `json:"check_out_date"`
	Nights        int      `json:"nights"`
	RoomNumbers   []string `json:"rooms"`
	TotalCents    int64    `json:"total_cents"`
	ConfirmedAt   string   `json:"confirmed_at"`
}
