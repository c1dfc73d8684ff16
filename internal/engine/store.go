package engine

import (
	"context"

	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/model"
)

// Store is the record store the engine runs against.  The MySQL
// implementation lives in internal/repository; an in-memory one used
// by tests and local development lives in internal/storage/memory.
//
// Two methods carry the correctness weight:
//
// ClaimRoom must be atomic per room: it inserts a reserved_rooms row
// only if no existing assignment for the same room overlaps the stay
// (half-open comparison), marks the room RESERVED, and returns
// ErrClaimConflict otherwise.  Two claims racing for one room on
// overlapping dates must never both succeed, no matter how many
// service instances share the store.
//
// CreateBooking must enforce at most one booking per reservation and
// return ErrDuplicateBooking when the row already exists.
type Store interface {
	RoomTypes(ctx context.Context) ([]model.RoomType, error)
	RoomTypeByID(ctx context.Context, id uint64) (model.RoomType, error)

	// AvailableRooms returns every room of the type that is not under
	// maintenance and has no assignment overlapping the stay, ordered
	// by room ID ascending.  Assignments of cancelled reservations do
	// not count: cancellation deletes their reserved_rooms rows.
	AvailableRooms(ctx context.Context, roomTypeID uint64, stay model.StayRange) ([]model.Room, error)

	CreateReservation(ctx context.Context, res *model.Reservation) error
	ReservationByID(ctx context.Context, id uint64) (model.Reservation, error)
	UpdateReservationCost(ctx context.Context, id uint64, costCents int64) error
	UpdateReservationStatus(ctx context.Context, id uint64, status string) error

	ClaimRoom(ctx context.Context, reservationID, roomID uint64, stay model.StayRange) error

	// ReleaseAssignments deletes every assignment of the reservation
	// and returns the freed room IDs to AVAILABLE in one atomic unit.
	ReleaseAssignments(ctx context.Context, reservationID uint64) ([]uint64, error)

	BookingByReservation(ctx context.Context, reservationID uint64) (model.Booking, error)
	CreateBooking(ctx context.Context, b *model.Booking) error
}
