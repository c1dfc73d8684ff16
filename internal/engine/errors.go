// Package engine implements the room availability and assignment
// logic: which physical rooms are free for a date range, how specific
// rooms get claimed for a reservation without double-booking, what a
// stay costs, and how a reservation becomes a confirmed booking.  The
// engine holds no state of its own; every operation reads and writes
// through a Store.
package engine

import "errors"

// ErrInvalidPartySize is returned when a reservation is requested with
// fewer than one adult or a negative child count.
var ErrInvalidPartySize = errors.New("engine: party must have at least one adult and no negative counts")

// ErrInvalidDiscount is returned when a discount rate is negative or
// would reach or exceed 100%.
var ErrInvalidDiscount = errors.New("engine: discount must be in [0, 10000) basis points")

// ErrClaimConflict signals that a conditional room claim lost a race:
// another reservation took the room for an overlapping range between
// the availability read and the insert.  The engine retries once
// against a fresh read before folding the conflict into a shortfall.
var ErrClaimConflict = errors.New("engine: room already claimed for an overlapping range")

// ErrNotFound is returned by Store lookups when no matching record
// exists.  Store implementations must map their driver-level "no rows"
// condition onto this value.
var ErrNotFound = errors.New("engine: record not found")

// ErrDuplicateBooking is returned by Store.CreateBooking when a booking
// already exists for the reservation (unique constraint).  The engine
// resolves it by returning the existing booking.
var ErrDuplicateBooking = errors.New("engine: booking already exists for reservation")

// ErrReservationNotFound and ErrReservationNotPayable are terminal
// finalization failures surfaced to the caller.
var (
	ErrReservationNotFound   = errors.New("engine: reservation not found")
	ErrReservationNotPayable = errors.New("engine: reservation is cancelled and cannot be booked")
)
