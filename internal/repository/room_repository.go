package repository

import (
	"context"
	"database/sql"

	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/model"
)

// RoomRepo provides the room inventory views and the front-desk status
// transitions.  The assignment engine never goes through this type to
// claim rooms; claims happen in EngineStore so they stay atomic.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo returns a RoomRepo bound to the given database.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// RoomWithType is a dashboard row joining a room with its type name
// and rate.
type RoomWithType struct {
	model.Room
	TypeName         string `json:"type_name"`
	NightlyRateCents int64  `json:"nightly_rate_cents"`
}

// ListAll returns every room with its type, ordered by room ID, for
// the staff rooms table.
func (r *RoomRepo) ListAll(ctx context.Context) ([]RoomWithType, error) {
	const q = `SELECT r.id, r.room_type_id, r.number, r.status, rt.name, rt.nightly_rate_cents
	           FROM rooms r
	           JOIN room_types rt ON rt.id = r.room_type_id
	           ORDER BY r.id`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]RoomWithType, 0)
	for rows.Next() {
		var rw RoomWithType
		if err := rows.Scan(&rw.ID, &rw.RoomTypeID, &rw.Number, &rw.Status, &rw.TypeName, &rw.NightlyRateCents); err != nil {
			return nil, err
		}
		out = append(out, rw)
	}
	return out, rows.Err()
}

// frontDeskTransitions lists the status changes the front desk may
// apply.  RESERVED -> OCCUPIED is check-in, OCCUPIED -> AVAILABLE is
// check-out; any room can be pulled into or out of maintenance except
// one that is occupied.
var frontDeskTransitions = map[string]map[string]bool{
	model.RoomStatusReserved:    {model.RoomStatusOccupied: true, model.RoomStatusMaintenance: true},
	model.RoomStatusOccupied:    {model.RoomStatusAvailable: true},
	model.RoomStatusAvailable:   {model.RoomStatusMaintenance: true},
	model.RoomStatusMaintenance: {model.RoomStatusAvailable: true},
}

// UpdateStatus applies a front-desk transition.  It returns
// ErrConflict when the transition is not allowed from the room's
// current status, and sql.ErrNoRows when the room does not exist.
func (r *RoomRepo) UpdateStatus(ctx context.Context, id uint64, newStatus string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var current string
	err = tx.QueryRowContext(ctx, `SELECT status FROM rooms WHERE id = ? FOR UPDATE`, id).Scan(&current)
	if err != nil {
		return err
	}
	if !frontDeskTransitions[current][newStatus] {
		return ErrConflict
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE rooms SET status = ?, updated_at = NOW() WHERE id = ?`, newStatus, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
