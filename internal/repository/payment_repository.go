package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/model"
)

// PaymentRepo persists payment records.  Only the method and an opaque
// processor token are stored; raw card fields never reach this layer.
type PaymentRepo struct {
	db *sql.DB
}

// NewPaymentRepo returns a PaymentRepo bound to the given database.
func NewPaymentRepo(db *sql.DB) *PaymentRepo { return &PaymentRepo{db: db} }

// Create inserts the payment for a reservation.  The unique key over
// reservation_id enforces the 1:1 relation; a second submission
// returns ErrConflict.
func (r *PaymentRepo) Create(ctx context.Context, p *model.Payment) error {
	const q = `INSERT INTO payments (reservation_id, method, token_ref) VALUES (?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, p.ReservationID, p.Method, p.TokenRef)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	return nil
}

// GetByReservation returns the payment of a reservation or
// sql.ErrNoRows.
func (r *PaymentRepo) GetByReservation(ctx context.Context, reservationID uint64) (model.Payment, error) {
	const q = `SELECT id, reservation_id, method, token_ref, created_at FROM payments WHERE reservation_id = ?`
	var p model.Payment
	err := r.db.QueryRowContext(ctx, q, reservationID).Scan(
		&p.ID, &p.ReservationID, &p.Method, &p.TokenRef, &p.CreatedAt)
	return p, err
}
