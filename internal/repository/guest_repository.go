package repository

import (
	"context"
	"database/sql"

	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/model"
)

// GuestRepo persists the people staying under a reservation.  The
// first guest submitted is flagged as the reservor, the primary
// contact printed on receipts and dashboards.
type GuestRepo struct {
	db *sql.DB
}

// NewGuestRepo returns a GuestRepo bound to the given database.
func NewGuestRepo(db *sql.DB) *GuestRepo { return &GuestRepo{db: db} }

// ReplaceForReservation replaces the guest list of a reservation in
// one transaction: existing rows are removed and the new list is
// inserted in a single bulk statement.  The first entry becomes the
// reservor.  Re-submitting the guest form therefore converges instead
// of accumulating duplicates.
func (r *GuestRepo) ReplaceForReservation(ctx context.Context, reservationID uint64, guests []model.Guest) error {
	if len(guests) == 0 {
		return ErrConflict
	}
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

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM guests WHERE reservation_id = ?`, reservationID); err != nil {
		return err
	}

	query := `INSERT INTO guests
	(reservation_id, first_name, last_name, email, contact_no, address, country, requests,
	 is_reservor, shuttle_service, arrival_date, arrival_time) VALUES `
	args := make([]interface{}, 0, len(guests)*12)
	for i, g := range guests {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
		args = append(args,
			reservationID, g.FirstName, g.LastName, g.Email, g.ContactNo,
			g.Address, g.Country, g.Requests, i == 0, g.ShuttleService,
			g.ArrivalDate, g.ArrivalTime)
	}
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// ListByReservation returns a reservation's guests, reservor first.
func (r *GuestRepo) ListByReservation(ctx context.Context, reservationID uint64) ([]model.Guest, error) {
	const q = `SELECT id, reservation_id, first_name, last_name, email, contact_no, address,
	                  country, requests, is_reservor, shuttle_service, arrival_date, arrival_time
	           FROM guests WHERE reservation_id = ?
	           ORDER BY is_reservor DESC, id`
	rows, err := r.db.QueryContext(ctx, q, reservationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Guest, 0)
	for rows.Next() {
		var (
			g                model.Guest
			arrDate, arrTime sql.NullString
		)
		if err := rows.Scan(&g.ID, &g.ReservationID, &g.FirstName, &g.LastName, &g.Email,
			&g.ContactNo, &g.Address, &g.Country, &g.Requests,
			&g.IsReservor, &g.ShuttleService, &arrDate, &arrTime); err != nil {
			return nil, err
		}
		if arrDate.Valid {
			v := arrDate.String
			g.ArrivalDate = &v
		}
		if arrTime.Valid {
			v := arrTime.String
			g.ArrivalTime = &v
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
