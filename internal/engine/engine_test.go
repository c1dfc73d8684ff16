package engine_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/engine"
	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/model"
	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/storage/memory"
)

const (
	deluxeType   = uint64(1)
	standardType = uint64(2)
)

// newSeededStore builds a store with two room types: three deluxe
// rooms (101-103) at 1500.00/night and one standard room (201) at
// 800.00.
func newSeededStore() *memory.Store {
	store := memory.NewStore()
	store.SeedRoomType(model.RoomType{ID: deluxeType, Name: "Deluxe", NightlyRateCents: 150000, Capacity: 2, TotalCount: 3})
	store.SeedRoomType(model.RoomType{ID: standardType, Name: "Standard", NightlyRateCents: 80000, Capacity: 2, TotalCount: 1})
	store.SeedRoom(model.Room{ID: 101, RoomTypeID: deluxeType, Number: "101"})
	store.SeedRoom(model.Room{ID: 102, RoomTypeID: deluxeType, Number: "102"})
	store.SeedRoom(model.Room{ID: 103, RoomTypeID: deluxeType, Number: "103"})
	store.SeedRoom(model.Room{ID: 201, RoomTypeID: standardType, Number: "201"})
	return store
}

func newFixture() (*engine.Engine, *memory.Store) {
	store := newSeededStore()
	return engine.New(store), store
}

func stay(t *testing.T, in, out string) model.StayRange {
	t.Helper()
	s, err := model.ParseStayRange(in, out)
	if err != nil {
		t.Fatalf("ParseStayRange(%s, %s): %v", in, out, err)
	}
	return s
}

func newReservation(t *testing.T, eng *engine.Engine, s model.StayRange) uint64 {
	t.Helper()
	id, err := eng.CreateReservation(context.Background(), s, 2, 0, nil)
	if err != nil {
		t.Fatalf("CreateReservation: %v", err)
	}
	return id
}

func TestCreateReservationValidation(t *testing.T) {
	eng, _ := newFixture()
	ctx := context.Background()
	s := stay(t, "2026-03-10", "2026-03-13")

	if _, err := eng.CreateReservation(ctx, s, 0, 0, nil); err != engine.ErrInvalidPartySize {
		t.Errorf("zero adults: got %v, want ErrInvalidPartySize", err)
	}
	if _, err := eng.CreateReservation(ctx, s, 1, -1, nil); err != engine.ErrInvalidPartySize {
		t.Errorf("negative children: got %v, want ErrInvalidPartySize", err)
	}
	id, err := eng.CreateReservation(ctx, s, 1, 2, nil)
	if err != nil || id == 0 {
		t.Fatalf("valid reservation: id=%d err=%v", id, err)
	}
}

func TestAssignRoomsDeterministicLowestIDs(t *testing.T) {
	eng, _ := newFixture()
	ctx := context.Background()
	s := stay(t, "2026-03-10", "2026-03-13")
	resID := newReservation(t, eng, s)

	result, err := eng.AssignRooms(ctx, resID, []engine.RoomTypeRequest{{RoomTypeID: deluxeType, Quantity: 2}})
	if err != nil {
		t.Fatalf("AssignRooms: %v", err)
	}
	if len(result.Assigned) != 2 || len(result.Shortfalls) != 0 {
		t.Fatalf("got %d assigned, %d shortfalls; want 2, 0", len(result.Assigned), len(result.Shortfalls))
	}
	if result.Assigned[0].RoomID != 101 || result.Assigned[1].RoomID != 102 {
		t.Errorf("expected rooms 101,102 in order, got %d,%d", result.Assigned[0].RoomID, result.Assigned[1].RoomID)
	}
}

func TestAssignRoomsNoDoubleAssignment(t *testing.T) {
	eng, store := newFixture()
	ctx := context.Background()
	s := stay(t, "2026-03-10", "2026-03-13")

	first := newReservation(t, eng, s)
	if _, err := eng.AssignRooms(ctx, first, []engine.RoomTypeRequest{{RoomTypeID: standardType, Quantity: 1}}); err != nil {
		t.Fatalf("first AssignRooms: %v", err)
	}

	// Overlapping stay wants the same single standard room.
	second := newReservation(t, eng, stay(t, "2026-03-12", "2026-03-14"))
	result, err := eng.AssignRooms(ctx, second, []engine.RoomTypeRequest{{RoomTypeID: standardType, Quantity: 1}})
	if err != nil {
		t.Fatalf("second AssignRooms: %v", err)
	}
	if len(result.Assigned) != 0 || len(result.Shortfalls) != 1 {
		t.Fatalf("overlapping claim: got %d assigned, %d shortfalls; want 0, 1", len(result.Assigned), len(result.Shortfalls))
	}

	// No room may carry two overlapping assignments.
	rows := store.Assignments()
	for i := range rows {
		for j := i + 1; j < len(rows); j++ {
			if rows[i].RoomID == rows[j].RoomID && rows[i].Stay.Overlaps(rows[j].Stay) {
				t.Fatalf("room %d assigned twice for overlapping stays", rows[i].RoomID)
			}
		}
	}
}

func TestAssignRoomsBackToBackStaysShareRoom(t *testing.T) {
	eng, _ := newFixture()
	ctx := context.Background()

	first := newReservation(t, eng, stay(t, "2026-03-10", "2026-03-13"))
	if _, err := eng.AssignRooms(ctx, first, []engine.RoomTypeRequest{{RoomTypeID: standardType, Quantity: 1}}); err != nil {
		t.Fatalf("first AssignRooms: %v", err)
	}

	// Checks in on the other reservation's checkout day; the half-open
	// rule makes the room free again.
	second := newReservation(t, eng, stay(t, "2026-03-13", "2026-03-15"))
	result, err := eng.AssignRooms(ctx, second, []engine.RoomTypeRequest{{RoomTypeID: standardType, Quantity: 1}})
	if err != nil {
		t.Fatalf("second AssignRooms: %v", err)
	}
	if len(result.Assigned) != 1 || result.Assigned[0].RoomID != 201 {
		t.Fatalf("back-to-back stay should reuse room 201, got %+v", result)
	}
}

func TestAssignRoomsPartialFulfillment(t *testing.T) {
	eng, _ := newFixture()
	ctx := context.Background()
	s := stay(t, "2026-03-10", "2026-03-13")
	resID := newReservation(t, eng, s)

	// Ask for more deluxe rooms than exist plus one standard.
	result, err := eng.AssignRooms(ctx, resID, []engine.RoomTypeRequest{
		{RoomTypeID: deluxeType, Quantity: 5},
		{RoomTypeID: standardType, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("AssignRooms: %v", err)
	}
	if len(result.Assigned) != 4 {
		t.Errorf("assigned = %d, want 4 (3 deluxe + 1 standard)", len(result.Assigned))
	}
	if len(result.Shortfalls) != 2 {
		t.Errorf("shortfalls = %d, want 2", len(result.Shortfalls))
	}
	for _, typeID := range result.Shortfalls {
		if typeID != deluxeType {
			t.Errorf("shortfall names type %d, want %d", typeID, deluxeType)
		}
	}
	// Every requested unit is accounted for.
	if len(result.Assigned)+len(result.Shortfalls) != 6 {
		t.Errorf("assigned+shortfalls = %d, want 6", len(result.Assigned)+len(result.Shortfalls))
	}
}

func TestAssignRoomsMergesRepeatedTypes(t *testing.T) {
	eng, _ := newFixture()
	ctx := context.Background()
	resID := newReservation(t, eng, stay(t, "2026-03-10", "2026-03-12"))

	result, err := eng.AssignRooms(ctx, resID, []engine.RoomTypeRequest{
		{RoomTypeID: deluxeType, Quantity: 1},
		{RoomTypeID: deluxeType, Quantity: 1},
	})
	if err != nil {
		t.Fatalf("AssignRooms: %v", err)
	}
	if len(result.Assigned) != 2 {
		t.Fatalf("merged request should assign 2 rooms, got %d", len(result.Assigned))
	}
}

func TestComputeCostExactness(t *testing.T) {
	// Two rooms at 1500.00 for three nights with a 10% discount is
	// exactly 8100.00, no drift.
	total, err := engine.ComputeCost([]engine.CostLine{{NightlyRateCents: 150000, Quantity: 2}}, 3, 1000)
	if err != nil {
		t.Fatalf("ComputeCost: %v", err)
	}
	if total != 810000 {
		t.Fatalf("total = %d cents, want 810000", total)
	}
	if got := model.FormatCents(total); got != "8100.00" {
		t.Fatalf("formatted total = %q, want %q", got, "8100.00")
	}
}

func TestComputeCostRejectsBadDiscount(t *testing.T) {
	lines := []engine.CostLine{{NightlyRateCents: 100, Quantity: 1}}
	if _, err := engine.ComputeCost(lines, 1, -1); err != engine.ErrInvalidDiscount {
		t.Errorf("negative discount: got %v", err)
	}
	if _, err := engine.ComputeCost(lines, 1, 10000); err != engine.ErrInvalidDiscount {
		t.Errorf("full discount: got %v", err)
	}
}

func TestPriceAssignmentsPersistsCost(t *testing.T) {
	eng, store := newFixture()
	ctx := context.Background()
	resID := newReservation(t, eng, stay(t, "2026-03-10", "2026-03-13"))

	result, err := eng.AssignRooms(ctx, resID, []engine.RoomTypeRequest{{RoomTypeID: deluxeType, Quantity: 2}})
	if err != nil {
		t.Fatalf("AssignRooms: %v", err)
	}
	total, err := eng.PriceAssignments(ctx, resID, result.Assigned, 1000)
	if err != nil {
		t.Fatalf("PriceAssignments: %v", err)
	}
	if total != 810000 {
		t.Fatalf("total = %d, want 810000", total)
	}
	res, err := store.ReservationByID(ctx, resID)
	if err != nil {
		t.Fatalf("ReservationByID: %v", err)
	}
	if res.CostCents != 810000 {
		t.Fatalf("persisted cost = %d, want 810000", res.CostCents)
	}
}

func TestFinalizeBookingIdempotent(t *testing.T) {
	eng, _ := newFixture()
	ctx := context.Background()
	resID := newReservation(t, eng, stay(t, "2026-03-10", "2026-03-13"))

	first, err := eng.FinalizeBooking(ctx, resID)
	if err != nil {
		t.Fatalf("first FinalizeBooking: %v", err)
	}
	if first.BookingNo == "" {
		t.Fatal("empty booking number")
	}
	second, err := eng.FinalizeBooking(ctx, resID)
	if err != nil {
		t.Fatalf("second FinalizeBooking: %v", err)
	}
	if second.BookingNo != first.BookingNo || second.ID != first.ID {
		t.Fatalf("finalize not idempotent: %+v vs %+v", first, second)
	}
}

func TestCancelReleasesRooms(t *testing.T) {
	eng, _ := newFixture()
	ctx := context.Background()
	s := stay(t, "2026-03-10", "2026-03-13")

	first := newReservation(t, eng, s)
	if _, err := eng.AssignRooms(ctx, first, []engine.RoomTypeRequest{{RoomTypeID: standardType, Quantity: 1}}); err != nil {
		t.Fatalf("AssignRooms: %v", err)
	}
	if err := eng.CancelReservation(ctx, first); err != nil {
		t.Fatalf("CancelReservation: %v", err)
	}
	// Cancelling again is a no-op.
	if err := eng.CancelReservation(ctx, first); err != nil {
		t.Fatalf("second CancelReservation: %v", err)
	}

	// The freed room is claimable by an overlapping reservation now.
	second := newReservation(t, eng, s)
	result, err := eng.AssignRooms(ctx, second, []engine.RoomTypeRequest{{RoomTypeID: standardType, Quantity: 1}})
	if err != nil {
		t.Fatalf("AssignRooms after cancel: %v", err)
	}
	if len(result.Assigned) != 1 || result.Assigned[0].RoomID != 201 {
		t.Fatalf("cancelled reservation still blocks room 201: %+v", result)
	}

	// A cancelled reservation cannot take rooms or a booking.
	if _, err := eng.AssignRooms(ctx, first, []engine.RoomTypeRequest{{RoomTypeID: deluxeType, Quantity: 1}}); err != engine.ErrReservationNotPayable {
		t.Errorf("assign on cancelled: got %v", err)
	}
	if _, err := eng.FinalizeBooking(ctx, first); err != engine.ErrReservationNotPayable {
		t.Errorf("finalize on cancelled: got %v", err)
	}
}

func TestSequentialClaimsExhaustPoolExactly(t *testing.T) {
	eng, _ := newFixture()
	ctx := context.Background()
	s := stay(t, "2026-03-10", "2026-03-13")

	assigned := 0
	for i := 0; i < 6; i++ {
		resID := newReservation(t, eng, s)
		result, err := eng.AssignRooms(ctx, resID, []engine.RoomTypeRequest{{RoomTypeID: deluxeType, Quantity: 1}})
		if err != nil {
			t.Fatalf("AssignRooms #%d: %v", i, err)
		}
		assigned += len(result.Assigned)
	}
	if assigned != 3 {
		t.Fatalf("6 sequential single-room claims against 3 rooms: %d assigned, want exactly 3", assigned)
	}
}

func TestConcurrentClaimsNeverDoubleAssign(t *testing.T) {
	eng, store := newFixture()
	ctx := context.Background()
	s := stay(t, "2026-03-10", "2026-03-13")

	const claimants = 12
	resIDs := make([]uint64, claimants)
	for i := range resIDs {
		resIDs[i] = newReservation(t, eng, s)
	}

	var wg sync.WaitGroup
	results := make([]engine.AssignmentResult, claimants)
	errs := make([]error, claimants)
	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = eng.AssignRooms(ctx, resIDs[i], []engine.RoomTypeRequest{{RoomTypeID: deluxeType, Quantity: 1}})
		}(i)
	}
	wg.Wait()

	totalAssigned := 0
	seen := make(map[uint64]int)
	for i := 0; i < claimants; i++ {
		if errs[i] != nil {
			t.Fatalf("claimant %d: %v", i, errs[i])
		}
		if got := len(results[i].Assigned) + len(results[i].Shortfalls); got != 1 {
			t.Fatalf("claimant %d accounted for %d units, want 1", i, got)
		}
		for _, a := range results[i].Assigned {
			totalAssigned++
			seen[a.RoomID]++
		}
	}
	for roomID, n := range seen {
		if n > 1 {
			t.Fatalf("room %d handed to %d overlapping reservations", roomID, n)
		}
	}
	if totalAssigned > 3 {
		t.Fatalf("%d rooms assigned from a pool of 3", totalAssigned)
	}
	if rows := store.Assignments(); len(rows) != totalAssigned {
		t.Fatalf("store has %d assignment rows, results report %d", len(rows), totalAssigned)
	}

	// A contender can lose two races in a row while a room stays free,
	// so one concurrent round may under-fill.  No room is ever lost
	// though: a follow-up request picks up exactly what the contenders
	// left, and the pool yields exactly 3 claims overall.
	sweep := newReservation(t, eng, s)
	swept, err := eng.AssignRooms(ctx, sweep, []engine.RoomTypeRequest{{RoomTypeID: deluxeType, Quantity: 3}})
	if err != nil {
		t.Fatalf("follow-up AssignRooms: %v", err)
	}
	for _, a := range swept.Assigned {
		if seen[a.RoomID] > 0 {
			t.Fatalf("room %d handed out twice for overlapping stays", a.RoomID)
		}
	}
	if totalAssigned+len(swept.Assigned) != 3 {
		t.Fatalf("contenders took %d and the follow-up %d; want exactly 3 in total",
			totalAssigned, len(swept.Assigned))
	}
}

// claimFaultStore injects errors into successive ClaimRoom calls and
// counts every attempt, for pinning the retry policy.
type claimFaultStore struct {
	engine.Store
	mu     sync.Mutex
	faults []error
	calls  int
}

func (s *claimFaultStore) ClaimRoom(ctx context.Context, reservationID, roomID uint64, stay model.StayRange) error {
	s.mu.Lock()
	s.calls++
	var fault error
	if len(s.faults) > 0 {
		fault = s.faults[0]
		s.faults = s.faults[1:]
	}
	s.mu.Unlock()
	if fault != nil {
		return fault
	}
	return s.Store.ClaimRoom(ctx, reservationID, roomID, stay)
}

func TestAssignRoomsRetriesOnceAfterLostRace(t *testing.T) {
	for name, fault := range map[string]error{
		"claim conflict":  engine.ErrClaimConflict,
		"context timeout": context.DeadlineExceeded,
	} {
		faulty := &claimFaultStore{Store: newSeededStore(), faults: []error{fault}}
		eng := engine.New(faulty)
		ctx := context.Background()
		resID := newReservation(t, eng, stay(t, "2026-03-10", "2026-03-13"))

		result, err := eng.AssignRooms(ctx, resID, []engine.RoomTypeRequest{{RoomTypeID: deluxeType, Quantity: 1}})
		if err != nil {
			t.Fatalf("%s: AssignRooms: %v", name, err)
		}
		if len(result.Assigned) != 1 || len(result.Shortfalls) != 0 {
			t.Fatalf("%s: got %d assigned, %d shortfalls; want the retry to claim a room",
				name, len(result.Assigned), len(result.Shortfalls))
		}
		if faulty.calls != 2 {
			t.Fatalf("%s: %d claim attempts, want exactly 2 (one retry)", name, faulty.calls)
		}
	}
}

func TestAssignRoomsShortfallAfterSecondLostRace(t *testing.T) {
	faulty := &claimFaultStore{
		Store:  newSeededStore(),
		faults: []error{engine.ErrClaimConflict, engine.ErrClaimConflict},
	}
	eng := engine.New(faulty)
	ctx := context.Background()
	resID := newReservation(t, eng, stay(t, "2026-03-10", "2026-03-13"))

	result, err := eng.AssignRooms(ctx, resID, []engine.RoomTypeRequest{{RoomTypeID: deluxeType, Quantity: 1}})
	if err != nil {
		t.Fatalf("AssignRooms: %v", err)
	}
	if len(result.Assigned) != 0 || len(result.Shortfalls) != 1 {
		t.Fatalf("got %d assigned, %d shortfalls; want a shortfall after two lost races",
			len(result.Assigned), len(result.Shortfalls))
	}
	if faulty.calls != 2 {
		t.Fatalf("%d claim attempts, want exactly 2 (no third try)", faulty.calls)
	}
}

func TestAssignRoomsPropagatesStoreFailure(t *testing.T) {
	faulty := &claimFaultStore{Store: newSeededStore(), faults: []error{errors.New("connection reset")}}
	eng := engine.New(faulty)
	ctx := context.Background()
	resID := newReservation(t, eng, stay(t, "2026-03-10", "2026-03-13"))

	if _, err := eng.AssignRooms(ctx, resID, []engine.RoomTypeRequest{{RoomTypeID: deluxeType, Quantity: 1}}); err == nil {
		t.Fatal("a non-retryable store failure should surface, not become a shortfall")
	}
	if faulty.calls != 1 {
		t.Fatalf("%d claim attempts, want 1 (no retry on unknown errors)", faulty.calls)
	}
}

// releaseFaultStore fails the first n ReleaseAssignments calls,
// imitating a transient store outage mid-cancel.
type releaseFaultStore struct {
	engine.Store
	failures int
}

func (s *releaseFaultStore) ReleaseAssignments(ctx context.Context, reservationID uint64) ([]uint64, error) {
	if s.failures > 0 {
		s.failures--
		return nil, errors.New("connection reset")
	}
	return s.Store.ReleaseAssignments(ctx, reservationID)
}

func TestCancelRetriesReleaseAfterTransientFailure(t *testing.T) {
	store := newSeededStore()
	faulty := &releaseFaultStore{Store: store, failures: 1}
	eng := engine.New(faulty)
	ctx := context.Background()
	s := stay(t, "2026-03-10", "2026-03-13")

	resID := newReservation(t, eng, s)
	if _, err := eng.AssignRooms(ctx, resID, []engine.RoomTypeRequest{{RoomTypeID: standardType, Quantity: 1}}); err != nil {
		t.Fatalf("AssignRooms: %v", err)
	}

	if err := eng.CancelReservation(ctx, resID); err == nil {
		t.Fatal("cancel should surface the failed release")
	}
	if rows := store.Assignments(); len(rows) != 1 {
		t.Fatalf("failed cancel left %d assignment rows, want the claim intact", len(rows))
	}

	// The retried cancel must release the room, not no-op.
	if err := eng.CancelReservation(ctx, resID); err != nil {
		t.Fatalf("retried CancelReservation: %v", err)
	}
	if rows := store.Assignments(); len(rows) != 0 {
		t.Fatalf("retried cancel left %d assignment rows behind", len(rows))
	}
	res, err := store.ReservationByID(ctx, resID)
	if err != nil {
		t.Fatalf("ReservationByID: %v", err)
	}
	if res.Status != model.ReservationStatusCancelled {
		t.Fatalf("status = %s, want CANCELLED", res.Status)
	}

	// Room 201 is claimable for the same dates again.
	second := newReservation(t, eng, s)
	result, err := eng.AssignRooms(ctx, second, []engine.RoomTypeRequest{{RoomTypeID: standardType, Quantity: 1}})
	if err != nil {
		t.Fatalf("AssignRooms after recovered cancel: %v", err)
	}
	if len(result.Assigned) != 1 || result.Assigned[0].RoomID != 201 {
		t.Fatalf("room 201 still blocked after recovered cancel: %+v", result)
	}
}

func TestCancelKeepsRoomReservedForOtherStay(t *testing.T) {
	eng, store := newFixture()
	ctx := context.Background()

	// Back-to-back stays share room 201.
	first := newReservation(t, eng, stay(t, "2026-03-10", "2026-03-13"))
	if _, err := eng.AssignRooms(ctx, first, []engine.RoomTypeRequest{{RoomTypeID: standardType, Quantity: 1}}); err != nil {
		t.Fatalf("first AssignRooms: %v", err)
	}
	second := newReservation(t, eng, stay(t, "2026-03-13", "2026-03-15"))
	if _, err := eng.AssignRooms(ctx, second, []engine.RoomTypeRequest{{RoomTypeID: standardType, Quantity: 1}}); err != nil {
		t.Fatalf("second AssignRooms: %v", err)
	}

	// Cancelling one stay must not flip the room while the other still
	// holds an assignment on it.
	if err := eng.CancelReservation(ctx, first); err != nil {
		t.Fatalf("CancelReservation: %v", err)
	}
	if room, ok := store.Room(201); !ok || room.Status != model.RoomStatusReserved {
		t.Fatalf("room 201 status = %v, want RESERVED while another stay holds it", room.Status)
	}
	if rows := store.Assignments(); len(rows) != 1 || rows[0].ReservationID != second {
		t.Fatalf("surviving assignments = %+v, want only the second stay's", rows)
	}

	if err := eng.CancelReservation(ctx, second); err != nil {
		t.Fatalf("second CancelReservation: %v", err)
	}
	if room, _ := store.Room(201); room.Status != model.RoomStatusAvailable {
		t.Fatalf("room 201 status = %v, want AVAILABLE after the last holder cancels", room.Status)
	}
}
