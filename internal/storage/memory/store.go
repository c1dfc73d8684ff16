// Package memory provides an in-memory engine.Store.  It backs the
// engine's tests and can serve local development without a MySQL
// instance.  A single mutex guards all collections, which makes the
// conditional room claim trivially atomic.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/engine"
	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/model"
)

// Store holds every collection the engine touches.
type Store struct {
	mu sync.Mutex

	roomTypes    map[uint64]model.RoomType
	rooms        map[uint64]model.Room
	reservations map[uint64]model.Reservation
	assignments  []model.ReservedRoom
	bookings     map[uint64]model.Booking // keyed by reservation ID

	nextReservationID uint64
	nextAssignmentID  uint64
	nextBookingID     uint64
}

var _ engine.Store = (*Store)(nil)

// NewStore builds an empty store.
func NewStore() *Store {
	return &Store{
		roomTypes:    make(map[uint64]model.RoomType),
		rooms:        make(map[uint64]model.Room),
		reservations: make(map[uint64]model.Reservation),
		bookings:     make(map[uint64]model.Booking),
	}
}

// SeedRoomType and SeedRoom install reference data for tests and local
// runs.  Seeded rooms default to AVAILABLE.
func (s *Store) SeedRoomType(rt model.RoomType) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.roomTypes[rt.ID] = rt
}

func (s *Store) SeedRoom(r model.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r.Status == "" {
		r.Status = model.RoomStatusAvailable
	}
	s.rooms[r.ID] = r
}

// RoomTypes returns all room types ordered by ID.
func (s *Store) RoomTypes(ctx context.Context) ([]model.RoomType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.RoomType, 0, len(s.roomTypes))
	for _, rt := range s.roomTypes {
		out = append(out, rt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) RoomTypeByID(ctx context.Context, id uint64) (model.RoomType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.roomTypes[id]
	if !ok {
		return model.RoomType{}, engine.ErrNotFound
	}
	return rt, nil
}

// AvailableRooms applies the availability predicate under the lock:
// right type, not in maintenance, no overlapping assignment.
func (s *Store) AvailableRooms(ctx context.Context, roomTypeID uint64, stay model.StayRange) ([]model.Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.Room, 0)
	for _, r := range s.rooms {
		if r.RoomTypeID != roomTypeID || r.Status == model.RoomStatusMaintenance {
			continue
		}
		if s.overlappingLocked(r.ID, stay) {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) overlappingLocked(roomID uint64, stay model.StayRange) bool {
	for _, a := range s.assignments {
		if a.RoomID == roomID && a.Stay.Overlaps(stay) {
			return true
		}
	}
	return false
}

func (s *Store) CreateReservation(ctx context.Context, res *model.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextReservationID++
	res.ID = s.nextReservationID
	s.reservations[res.ID] = *res
	return nil
}

func (s *Store) ReservationByID(ctx context.Context, id uint64) (model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.reservations[id]
	if !ok {
		return model.Reservation{}, engine.ErrNotFound
	}
	return res, nil
}

func (s *Store) UpdateReservationCost(ctx context.Context, id uint64, costCents int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.reservations[id]
	if !ok {
		return engine.ErrNotFound
	}
	res.CostCents = costCents
	s.reservations[id] = res
	return nil
}

func (s *Store) UpdateReservationStatus(ctx context.Context, id uint64, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.reservations[id]
	if !ok {
		return engine.ErrNotFound
	}
	res.Status = status
	s.reservations[id] = res
	return nil
}

// ClaimRoom re-checks the overlap predicate and inserts the assignment
// under one lock acquisition, so two racing claims for the same room
// and overlapping dates can never both pass the check.
func (s *Store) ClaimRoom(ctx context.Context, reservationID, roomID uint64, stay model.StayRange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[roomID]
	if !ok {
		return engine.ErrNotFound
	}
	if room.Status == model.RoomStatusMaintenance || s.overlappingLocked(roomID, stay) {
		return engine.ErrClaimConflict
	}
	s.nextAssignmentID++
	s.assignments = append(s.assignments, model.ReservedRoom{
		ID:            s.nextAssignmentID,
		ReservationID: reservationID,
		RoomID:        roomID,
		Stay:          stay,
	})
	room.Status = model.RoomStatusReserved
	s.rooms[roomID] = room
	return nil
}

// ReleaseAssignments drops the reservation's assignments and returns
// the freed rooms to AVAILABLE.  A room still referenced by another
// reservation's assignment keeps its RESERVED status, mirroring the
// NOT EXISTS predicate the SQL store uses.
func (s *Store) ReleaseAssignments(ctx context.Context, reservationID uint64) ([]uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.assignments[:0]
	var freed []uint64
	for _, a := range s.assignments {
		if a.ReservationID != reservationID {
			kept = append(kept, a)
			continue
		}
		freed = append(freed, a.RoomID)
	}
	s.assignments = kept

	stillHeld := make(map[uint64]bool, len(kept))
	for _, a := range kept {
		stillHeld[a.RoomID] = true
	}
	for _, id := range freed {
		if stillHeld[id] {
			continue
		}
		if room, ok := s.rooms[id]; ok && room.Status == model.RoomStatusReserved {
			room.Status = model.RoomStatusAvailable
			s.rooms[id] = room
		}
	}
	return freed, nil
}

func (s *Store) BookingByReservation(ctx context.Context, reservationID uint64) (model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[reservationID]
	if !ok {
		return model.Booking{}, engine.ErrNotFound
	}
	return b, nil
}

func (s *Store) CreateBooking(ctx context.Context, b *model.Booking) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.bookings[b.ReservationID]; ok {
		return engine.ErrDuplicateBooking
	}
	s.nextBookingID++
	b.ID = s.nextBookingID
	s.bookings[b.ReservationID] = *b
	return nil
}

// Room returns a room by ID, for tests that inspect room statuses.
func (s *Store) Room(id uint64) (model.Room, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[id]
	return room, ok
}

// Assignments returns a copy of all assignment rows, for tests that
// verify the no-double-booking invariant directly.
func (s *Store) Assignments() []model.ReservedRoom {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.ReservedRoom, len(s.assignments))
	copy(out, s.assignments)
	return out
}
