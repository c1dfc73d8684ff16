package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/model"
)

// ReservationRepo provides the read side of reservations for guests
// and staff: listings with assigned rooms and the reservor's name.
// Writes (creation, cost, status, claims) go through EngineStore so
// they keep its atomicity guarantees.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// AssignedRoomLine is one room under a reservation, as shown on
// listings and receipts.
type AssignedRoomLine struct {
	RoomID           uint64 `json:"room_id"`
	Number           string `json:"number"`
	TypeName         string `json:"type_name"`
	NightlyRateCents int64  `json:"nightly_rate_cents"`
}

// ReservationDetail is a reservation together with its assigned rooms
// and the reservor's name, assembled for display.
type ReservationDetail struct {
	ID           uint64             `json:"id"`
	CheckInDate  string             `json:"check_in_date"`
	CheckOutDate string             `json:"check_out_date"`
	Adults       uint32             `json:"adults"`
	Children     uint32             `json:"children"`
	Status       string             `json:"status"`
	CostCents    int64              `json:"cost_cents"`
	Cost         string             `json:"cost"`
	ReservorName *string            `json:"reservor_name,omitempty"`
	Rooms        []AssignedRoomLine `json:"rooms"`
}

const reservationDetailQuery = `SELECT r.id, r.check_in_date, r.check_out_date, r.adults, r.children,
	       r.status, r.cost_cents,
	       (SELECT CONCAT(g.first_name, ' ', g.last_name)
	        FROM guests g WHERE g.reservation_id = r.id AND g.is_reservor = 1 LIMIT 1)
	FROM reservations r`

// scanDetails runs a reservation query, scans the rows and populates
// assigned rooms for all of them in a single follow-up query.
func (r *ReservationRepo) scanDetails(ctx context.Context, query string, args ...interface{}) ([]ReservationDetail, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	details := make([]ReservationDetail, 0)
	index := make(map[uint64]int)
	for rows.Next() {
		var (
			d        ReservationDetail
			in, out  time.Time
			reservor sql.NullString
		)
		if err := rows.Scan(&d.ID, &in, &out, &d.Adults, &d.Children, &d.Status, &d.CostCents, &reservor); err != nil {
			return nil, err
		}
		d.CheckInDate = in.UTC().Format(model.DateLayout)
		d.CheckOutDate = out.UTC().Format(model.DateLayout)
		d.Cost = model.FormatCents(d.CostCents)
		if reservor.Valid {
			name := reservor.String
			d.ReservorName = &name
		}
		d.Rooms = []AssignedRoomLine{}
		index[d.ID] = len(details)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(details) == 0 {
		return details, nil
	}

	ids := make([]interface{}, 0, len(details))
	placeholders := make([]string, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.ID)
		placeholders = append(placeholders, "?")
	}
	roomQuery := `SELECT rr.reservation_id, rm.id, rm.number, rt.name, rt.nightly_rate_cents
	              FROM reserved_rooms rr
	              JOIN rooms rm ON rm.id = rr.room_id
	              JOIN room_types rt ON rt.id = rm.room_type_id
	              WHERE rr.reservation_id IN (` + strings.Join(placeholders, ",") + `)
	              ORDER BY rr.reservation_id, rm.id`
	rrows, err := r.db.QueryContext(ctx, roomQuery, ids...)
	if err != nil {
		return nil, err
	}
	defer rrows.Close()
	for rrows.Next() {
		var (
			resID uint64
			line  AssignedRoomLine
		)
		if err := rrows.Scan(&resID, &line.RoomID, &line.Number, &line.TypeName, &line.NightlyRateCents); err != nil {
			return nil, err
		}
		if idx, ok := index[resID]; ok {
			details[idx].Rooms = append(details[idx].Rooms, line)
		}
	}
	if err := rrows.Err(); err != nil {
		return nil, err
	}
	return details, nil
}

// ListAll returns every reservation, newest first, for the staff
// dashboard.
func (r *ReservationRepo) ListAll(ctx context.Context) ([]ReservationDetail, error) {
	return r.scanDetails(ctx, reservationDetailQuery+` ORDER BY r.created_at DESC`)
}

// ListByUser returns the reservations owned by a user, newest first.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]ReservationDetail, error) {
	return r.scanDetails(ctx, reservationDetailQuery+` WHERE r.user_id = ? ORDER BY r.created_at DESC`, userID)
}

// DepartingOn returns the non-cancelled reservations whose check-out
// date is the given calendar day.  Used for the front desk's
// departing-today table.
func (r *ReservationRepo) DepartingOn(ctx context.Context, day time.Time) ([]ReservationDetail, error) {
	return r.scanDetails(ctx,
		reservationDetailQuery+` WHERE r.check_out_date = ? AND r.status <> 'CANCELLED' ORDER BY r.id`,
		day.UTC().Format(model.DateLayout))
}

// OwnerUserID returns the owning user of a reservation (zero when the
// reservation was made without an account) or sql.ErrNoRows.
func (r *ReservationRepo) OwnerUserID(ctx context.Context, reservationID uint64) (uint64, error) {
	var userID sql.NullInt64
	err := r.db.QueryRowContext(ctx,
		`SELECT user_id FROM reservations WHERE id = ?`, reservationID).Scan(&userID)
	if err != nil {
		return 0, err
	}
	if !userID.Valid {
		return 0, nil
	}
	return uint64(userID.Int64), nil
}
