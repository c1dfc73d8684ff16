package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/engine"
	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/model"
)

// EngineStore is the MySQL implementation of engine.Store.  The room
// claim runs inside a serializable transaction and locks the room row,
// so concurrent claims for the same room are linearized by the
// database regardless of how many service instances are running.
type EngineStore struct {
	db *sql.DB
}

var _ engine.Store = (*EngineStore)(nil)

// NewEngineStore returns an EngineStore bound to the given database.
func NewEngineStore(db *sql.DB) *EngineStore { return &EngineStore{db: db} }

// DB exposes the underlying handle for handlers that need ad hoc
// transactions across repositories.
func (s *EngineStore) DB() *sql.DB { return s.db }

// RoomTypes returns all room types ordered by ID.
func (s *EngineStore) RoomTypes(ctx context.Context) ([]model.RoomType, error) {
	const q = `SELECT id, name, nightly_rate_cents, capacity, total_count FROM room_types ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.RoomType, 0)
	for rows.Next() {
		var rt model.RoomType
		if err := rows.Scan(&rt.ID, &rt.Name, &rt.NightlyRateCents, &rt.Capacity, &rt.TotalCount); err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	return out, rows.Err()
}

// RoomTypeByID returns one room type or engine.ErrNotFound.
func (s *EngineStore) RoomTypeByID(ctx context.Context, id uint64) (model.RoomType, error) {
	const q = `SELECT id, name, nightly_rate_cents, capacity, total_count FROM room_types WHERE id = ?`
	var rt model.RoomType
	err := s.db.QueryRowContext(ctx, q, id).Scan(&rt.ID, &rt.Name, &rt.NightlyRateCents, &rt.Capacity, &rt.TotalCount)
	if errors.Is(err, sql.ErrNoRows) {
		return model.RoomType{}, engine.ErrNotFound
	}
	return rt, err
}

// AvailableRooms returns rooms of the type with no assignment that
// overlaps the stay under the half-open rule (existing.check_in <
// new.check_out AND new.check_in < existing.check_out) and that are
// not under maintenance.  Cancelled reservations hold no
// reserved_rooms rows, so they never block availability.
func (s *EngineStore) AvailableRooms(ctx context.Context, roomTypeID uint64, stay model.StayRange) ([]model.Room, error) {
	const q = `SELECT r.id, r.room_type_id, r.number, r.status
	           FROM rooms r
	           WHERE r.room_type_id = ?
	             AND r.status <> 'MAINTENANCE'
	             AND NOT EXISTS (
	                 SELECT 1 FROM reserved_rooms rr
	                 WHERE rr.room_id = r.id
	                   AND rr.check_in_date < ?
	                   AND rr.check_out_date > ?
	             )
	           ORDER BY r.id`
	rows, err := s.db.QueryContext(ctx, q, roomTypeID, stay.CheckOutString(), stay.CheckInString())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Room, 0)
	for rows.Next() {
		var r model.Room
		if err := rows.Scan(&r.ID, &r.RoomTypeID, &r.Number, &r.Status); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// CreateReservation inserts a reservation row and populates the
// generated ID on the passed record.
func (s *EngineStore) CreateReservation(ctx context.Context, res *model.Reservation) error {
	const q = `INSERT INTO reservations
	           (user_id, check_in_date, check_out_date, adults, children, status, cost_cents)
	           VALUES (?, ?, ?, ?, ?, ?, ?)`
	var userID interface{}
	if res.UserID != nil {
		userID = *res.UserID
	}
	result, err := s.db.ExecContext(ctx, q,
		userID, res.Stay.CheckInString(), res.Stay.CheckOutString(),
		res.Adults, res.Children, res.Status, res.CostCents)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	res.ID = uint64(id)
	return nil
}

// ReservationByID loads one reservation or engine.ErrNotFound.
func (s *EngineStore) ReservationByID(ctx context.Context, id uint64) (model.Reservation, error) {
	const q = `SELECT id, user_id, check_in_date, check_out_date, adults, children, status, cost_cents, created_at, updated_at
	           FROM reservations WHERE id = ?`
	var (
		res    model.Reservation
		userID sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx, q, id).Scan(
		&res.ID, &userID, &res.Stay.CheckIn, &res.Stay.CheckOut,
		&res.Adults, &res.Children, &res.Status, &res.CostCents,
		&res.CreatedAt, &res.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Reservation{}, engine.ErrNotFound
	}
	if err != nil {
		return model.Reservation{}, err
	}
	if userID.Valid {
		uid := uint64(userID.Int64)
		res.UserID = &uid
	}
	return res, nil
}

// UpdateReservationCost writes the computed total onto the reservation.
func (s *EngineStore) UpdateReservationCost(ctx context.Context, id uint64, costCents int64) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE reservations SET cost_cents = ?, updated_at = NOW() WHERE id = ?`, costCents, id)
	return err
}

// UpdateReservationStatus transitions the reservation's status.
func (s *EngineStore) UpdateReservationStatus(ctx context.Context, id uint64, status string) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE reservations SET status = ?, updated_at = NOW() WHERE id = ?`, status, id)
	return err
}

// ClaimRoom durably claims one room for the stay.  The room row is
// locked first, which serializes racing claims on the same room; the
// assignment insert is conditional on no overlapping assignment
// existing, so a lost race surfaces as zero affected rows rather than
// a double booking.  Claim and room-status update commit or roll back
// together.
func (s *EngineStore) ClaimRoom(ctx context.Context, reservationID, roomID uint64, stay model.StayRange) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var status string
	err = tx.QueryRowContext(ctx, `SELECT status FROM rooms WHERE id = ? FOR UPDATE`, roomID).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.ErrNotFound
	}
	if err != nil {
		return err
	}
	if status == model.RoomStatusMaintenance {
		return engine.ErrClaimConflict
	}

	const claim = `INSERT INTO reserved_rooms (reservation_id, room_id, check_in_date, check_out_date)
	               SELECT ?, ?, ?, ? FROM DUAL
	               WHERE NOT EXISTS (
	                   SELECT 1 FROM reserved_rooms
	                   WHERE room_id = ? AND check_in_date < ? AND check_out_date > ?
	               )`
	result, err := tx.ExecContext(ctx, claim,
		reservationID, roomID, stay.CheckInString(), stay.CheckOutString(),
		roomID, stay.CheckOutString(), stay.CheckInString())
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return engine.ErrClaimConflict
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE rooms SET status = ?, updated_at = NOW() WHERE id = ?`,
		model.RoomStatusReserved, roomID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ReleaseAssignments deletes the reservation's assignments and frees
// the rooms that have no remaining assignments, in one transaction.
func (s *EngineStore) ReleaseAssignments(ctx context.Context, reservationID uint64) ([]uint64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	rows, err := tx.QueryContext(ctx,
		`SELECT room_id FROM reserved_rooms WHERE reservation_id = ?`, reservationID)
	if err != nil {
		return nil, err
	}
	var roomIDs []uint64
	for rows.Next() {
		var id uint64
		if scanErr := rows.Scan(&id); scanErr != nil {
			rows.Close()
			return nil, scanErr
		}
		roomIDs = append(roomIDs, id)
	}
	if err = rows.Close(); err != nil {
		return nil, err
	}

	if _, err = tx.ExecContext(ctx,
		`DELETE FROM reserved_rooms WHERE reservation_id = ?`, reservationID); err != nil {
		return nil, err
	}

	if len(roomIDs) > 0 {
		placeholders := strings.TrimSuffix(strings.Repeat("?,", len(roomIDs)), ",")
		args := make([]interface{}, 0, len(roomIDs)+1)
		args = append(args, model.RoomStatusAvailable)
		for _, id := range roomIDs {
			args = append(args, id)
		}
		free := `UPDATE rooms r SET r.status = ?, r.updated_at = NOW()
		         WHERE r.id IN (` + placeholders + `)
		           AND r.status = 'RESERVED'
		           AND NOT EXISTS (SELECT 1 FROM reserved_rooms rr WHERE rr.room_id = r.id)`
		if _, err = tx.ExecContext(ctx, free, args...); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	return roomIDs, nil
}

// BookingByReservation loads the booking for a reservation, if any.
func (s *EngineStore) BookingByReservation(ctx context.Context, reservationID uint64) (model.Booking, error) {
	const q = `SELECT id, reservation_id, booking_no, status, created_at FROM bookings WHERE reservation_id = ?`
	var b model.Booking
	err := s.db.QueryRowContext(ctx, q, reservationID).Scan(
		&b.ID, &b.ReservationID, &b.BookingNo, &b.Status, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Booking{}, engine.ErrNotFound
	}
	return b, err
}

// CreateBooking inserts the booking, relying on the unique key over
// reservation_id to reject duplicates from racing finalizations.
func (s *EngineStore) CreateBooking(ctx context.Context, b *model.Booking) error {
	const q = `INSERT INTO bookings (reservation_id, booking_no, status) VALUES (?, ?, ?)`
	result, err := s.db.ExecContext(ctx, q, b.ReservationID, b.BookingNo, b.Status)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return engine.ErrDuplicateBooking
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	b.ID = uint64(id)
	return nil
}
