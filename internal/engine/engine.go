package engine

import (
	"context"
	"errors"
	"sort"

	"github.com/google/uuid"

	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/model"
)

// Engine coordinates availability queries, room claims, cost
// computation and booking finalization against a Store.  It performs
// no internal parallelism and keeps no in-process state, so any number
// of instances may run against the same store; linearization of
// contended claims is the store's job (ClaimRoom contract).
type Engine struct {
	store Store
}

// New returns an Engine bound to the given store.
func New(store Store) *Engine {
	if store == nil {
		panic("nil store passed to engine.New")
	}
	return &Engine{store: store}
}

// RoomTypeRequest asks for a quantity of rooms of one type.
type RoomTypeRequest struct {
	RoomTypeID uint64 `json:"room_type_id"`
	Quantity   uint32 `json:"quantity"`
}

// Assignment records one successfully claimed room.
type Assignment struct {
	RoomTypeID uint64 `json:"room_type_id"`
	RoomID     uint64 `json:"room_id"`
}

// AssignmentResult reports every requested room unit either as an
// assignment or as a shortfall entry carrying its room type.  The two
// lengths always sum to the total requested quantity; nothing is
// dropped silently and partial fulfillment is not an error.
type AssignmentResult struct {
	Assigned   []Assignment `json:"assigned"`
	Shortfalls []uint64     `json:"shortfalls"`
}

// FindAvailableRooms returns the rooms of the given type free for the
// whole stay, ordered by room ID ascending.  A room is free when it is
// not under maintenance and no live assignment overlaps the stay under
// the half-open rule.  Read-only; safe to call concurrently.
func (e *Engine) FindAvailableRooms(ctx context.Context, roomTypeID uint64, stay model.StayRange) ([]model.Room, error) {
	if err := stay.Validate(); err != nil {
		return nil, err
	}
	if _, err := e.store.RoomTypeByID(ctx, roomTypeID); err != nil {
		return nil, err
	}
	rooms, err := e.store.AvailableRooms(ctx, roomTypeID, stay)
	if err != nil {
		return nil, err
	}
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
	return rooms, nil
}

// CreateReservation validates the stay and party size and persists a
// PENDING reservation with no cost yet.  Every call creates a new
// reservation; nothing here de-duplicates repeated submissions.
func (e *Engine) CreateReservation(ctx context.Context, stay model.StayRange, adults, children int, userID *uint64) (uint64, error) {
	if err := stay.Validate(); err != nil {
		return 0, err
	}
	if adults < 1 || children < 0 {
		return 0, ErrInvalidPartySize
	}
	res := model.Reservation{
		UserID:   userID,
		Stay:     stay,
		Adults:   uint32(adults),
		Children: uint32(children),
		Status:   model.ReservationStatusPending,
	}
	if err := e.store.CreateReservation(ctx, &res); err != nil {
		return 0, err
	}
	return res.ID, nil
}

// AssignRooms claims one specific room per requested unit for the
// reservation's date range.  Requests are processed in caller order
// (repeated type IDs are merged into the first occurrence).  For each
// unit the availability query is re-run at claim time, the lowest-ID
// free room is chosen, and the claim is attempted through the store's
// atomic conditional insert.  A lost race is retried once against a
// fresh read and then reported as a shortfall.  Once a unit of a type
// cannot be fulfilled, the remaining units of that type are reported
// as shortfalls without further claims, since the pool for that type
// is exhausted.
func (e *Engine) AssignRooms(ctx context.Context, reservationID uint64, requests []RoomTypeRequest) (AssignmentResult, error) {
	result := AssignmentResult{Assigned: []Assignment{}, Shortfalls: []uint64{}}

	res, err := e.store.ReservationByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return result, ErrReservationNotFound
		}
		return result, err
	}
	if res.Status == model.ReservationStatusCancelled {
		return result, ErrReservationNotPayable
	}

	for _, req := range mergeRequests(requests) {
		remaining := int(req.Quantity)
		for remaining > 0 {
			claimed, err := e.claimOne(ctx, reservationID, req.RoomTypeID, res.Stay)
			if err != nil {
				return result, err
			}
			if claimed == 0 {
				// Pool exhausted for this type; the rest of the
				// requested units cannot be fulfilled either.
				for ; remaining > 0; remaining-- {
					result.Shortfalls = append(result.Shortfalls, req.RoomTypeID)
				}
				break
			}
			result.Assigned = append(result.Assigned, Assignment{RoomTypeID: req.RoomTypeID, RoomID: claimed})
			remaining--
		}
	}
	return result, nil
}

// claimOne claims the lowest-ID available room of the type, retrying
// once on a lost race.  It returns 0 when no room could be claimed and
// propagates store failures other than claim conflicts.  An ambiguous
// failure (context timeout during the claim) is treated as "not
// claimed": overclaiming is the unsafe direction.
func (e *Engine) claimOne(ctx context.Context, reservationID, roomTypeID uint64, stay model.StayRange) (uint64, error) {
	for attempt := 0; attempt < 2; attempt++ {
		rooms, err := e.store.AvailableRooms(ctx, roomTypeID, stay)
		if err != nil {
			return 0, err
		}
		if len(rooms) == 0 {
			return 0, nil
		}
		sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
		room := rooms[0]

		err = e.store.ClaimRoom(ctx, reservationID, room.ID, stay)
		if err == nil {
			return room.ID, nil
		}
		if errors.Is(err, ErrClaimConflict) || errors.Is(err, context.DeadlineExceeded) {
			continue
		}
		return 0, err
	}
	return 0, nil
}

// mergeRequests folds repeated room type IDs into the first occurrence,
// summing quantities, and drops zero-quantity entries.  Caller order is
// preserved.
func mergeRequests(requests []RoomTypeRequest) []RoomTypeRequest {
	merged := make([]RoomTypeRequest, 0, len(requests))
	index := make(map[uint64]int, len(requests))
	for _, r := range requests {
		if r.Quantity == 0 {
			continue
		}
		if i, ok := index[r.RoomTypeID]; ok {
			merged[i].Quantity += r.Quantity
			continue
		}
		index[r.RoomTypeID] = len(merged)
		merged = append(merged, r)
	}
	return merged
}

// CostLine is one priced row of an assignment set.
type CostLine struct {
	NightlyRateCents int64
	Quantity         uint32
}

// ComputeCost returns the total in cents for the given lines over
// nights, after a basis-point discount.  Pure integer arithmetic; the
// discount amount rounds down.  discountBP must be in [0, 10000).
func ComputeCost(lines []CostLine, nights int, discountBP int64) (int64, error) {
	if discountBP < 0 || discountBP >= model.BasisPointsDenominator {
		return 0, ErrInvalidDiscount
	}
	if nights < 0 {
		return 0, model.ErrInvalidDateRange
	}
	var subtotal int64
	for _, l := range lines {
		subtotal += l.NightlyRateCents * int64(l.Quantity)
	}
	subtotal *= int64(nights)
	return model.ApplyDiscountCents(subtotal, discountBP), nil
}

// PriceAssignments looks up nightly rates for the assignments, applies
// ComputeCost over the reservation's night count, and persists the
// total onto the reservation.  Returns the total in cents.
func (e *Engine) PriceAssignments(ctx context.Context, reservationID uint64, assigned []Assignment, discountBP int64) (int64, error) {
	res, err := e.store.ReservationByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, ErrReservationNotFound
		}
		return 0, err
	}

	counts := make(map[uint64]uint32)
	order := make([]uint64, 0, len(assigned))
	for _, a := range assigned {
		if _, ok := counts[a.RoomTypeID]; !ok {
			order = append(order, a.RoomTypeID)
		}
		counts[a.RoomTypeID]++
	}
	lines := make([]CostLine, 0, len(order))
	for _, typeID := range order {
		rt, err := e.store.RoomTypeByID(ctx, typeID)
		if err != nil {
			return 0, err
		}
		lines = append(lines, CostLine{NightlyRateCents: rt.NightlyRateCents, Quantity: counts[typeID]})
	}

	total, err := ComputeCost(lines, res.Stay.Nights(), discountBP)
	if err != nil {
		return 0, err
	}
	if err := e.store.UpdateReservationCost(ctx, reservationID, total); err != nil {
		return 0, err
	}
	return total, nil
}

// FinalizeBooking returns the booking for the reservation, creating it
// if absent.  Calling it twice returns the same booking both times and
// leaves exactly one row behind; a duplicate insert lost to a racing
// finalize resolves to the winner's booking.  Cancelled reservations
// cannot be finalized.
func (e *Engine) FinalizeBooking(ctx context.Context, reservationID uint64) (model.Booking, error) {
	res, err := e.store.ReservationByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return model.Booking{}, ErrReservationNotFound
		}
		return model.Booking{}, err
	}
	if res.Status == model.ReservationStatusCancelled {
		return model.Booking{}, ErrReservationNotPayable
	}

	if b, err := e.store.BookingByReservation(ctx, reservationID); err == nil {
		return b, nil
	} else if !errors.Is(err, ErrNotFound) {
		return model.Booking{}, err
	}

	b := model.Booking{
		ReservationID: reservationID,
		BookingNo:     uuid.NewString(),
		Status:        model.BookingStatusConfirmed,
	}
	if err := e.store.CreateBooking(ctx, &b); err != nil {
		if errors.Is(err, ErrDuplicateBooking) {
			return e.store.BookingByReservation(ctx, reservationID)
		}
		return model.Booking{}, err
	}
	if err := e.store.UpdateReservationStatus(ctx, reservationID, model.ReservationStatusConfirmed); err != nil {
		return model.Booking{}, err
	}
	return b, nil
}

// CancelReservation releases every room the reservation held and marks
// it CANCELLED: assignments are deleted and the freed rooms return to
// AVAILABLE, making them claimable by other reservations immediately.
// The release runs before the status flip, and runs again on an
// already-cancelled reservation, so a release that failed mid-cancel is
// retried by the next call instead of leaving rooms blocked.
func (e *Engine) CancelReservation(ctx context.Context, reservationID uint64) error {
	res, err := e.store.ReservationByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrReservationNotFound
		}
		return err
	}
	if _, err := e.store.ReleaseAssignments(ctx, reservationID); err != nil {
		return err
	}
	if res.Status == model.ReservationStatusCancelled {
		return nil
	}
	return e.store.UpdateReservationStatus(ctx, reservationID, model.ReservationStatusCancelled)
}
