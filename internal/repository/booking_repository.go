package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/model"
)

// BookingRepo provides the read side of bookings: the staff listing
// and the receipt assembly.  Booking creation goes through the engine
// so the lookup-or-create stays idempotent.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to the given database.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// ReceiptRoomLine is one priced room row on a receipt.
type ReceiptRoomLine struct {
	TypeName  string `json:"name"`
	Qty       uint32 `json:"qty"`
	LineCents int64  `json:"line_cents"`
	LineTotal string `json:"total"`
}

// Receipt is everything printed on the confirmation page: booking
// number, the stay, the reservor's name and contact, per-room-type
// lines and the totals already written onto the reservation.
type Receipt struct {
	BookingNo    string            `json:"booking_no"`
	Status       string            `json:"status"`
	CheckInDate  string            `json:"check_in_date"`
	CheckOutDate string            `json:"check_out_date"`
	Nights       int               `json:"nights"`
	GuestName    string            `json:"guest_name"`
	Email        string            `json:"email"`
	ContactNo    string            `json:"contact_no"`
	Rooms        []ReceiptRoomLine `json:"rooms"`
	TotalCents   int64             `json:"total_cents"`
	Total        string            `json:"total"`
}

// BuildReceipt assembles the receipt for a finalized reservation.  It
// returns sql.ErrNoRows when no booking exists yet.
func (r *BookingRepo) BuildReceipt(ctx context.Context, reservationID uint64) (Receipt, error) {
	const q = `SELECT b.booking_no, b.status, res.check_in_date, res.check_out_date, res.cost_cents,
	                  g.first_name, g.last_name, g.email, g.contact_no
	           FROM bookings b
	           JOIN reservations res ON res.id = b.reservation_id
	           LEFT JOIN guests g ON g.reservation_id = res.id AND g.is_reservor = 1
	           WHERE b.reservation_id = ?`
	var (
		rec              Receipt
		in, out          time.Time
		first, last      sql.NullString
		email, contactNo sql.NullString
	)
	err := r.db.QueryRowContext(ctx, q, reservationID).Scan(
		&rec.BookingNo, &rec.Status, &in, &out, &rec.TotalCents,
		&first, &last, &email, &contactNo)
	if err != nil {
		return Receipt{}, err
	}
	stay, err := model.NewStayRange(in, out)
	if err != nil {
		return Receipt{}, err
	}
	rec.CheckInDate = stay.CheckInString()
	rec.CheckOutDate = stay.CheckOutString()
	rec.Nights = stay.Nights()
	if first.Valid {
		rec.GuestName = first.String + " " + last.String
	}
	if email.Valid {
		rec.Email = email.String
	}
	if contactNo.Valid {
		rec.ContactNo = contactNo.String
	}
	rec.Total = model.FormatCents(rec.TotalCents)

	// One line per room type, quantities and per-line totals rolled up
	// over the whole stay.
	const lineQ = `SELECT rt.name, COUNT(*), rt.nightly_rate_cents
	               FROM reserved_rooms rr
	               JOIN rooms rm ON rm.id = rr.room_id
	               JOIN room_types rt ON rt.id = rm.room_type_id
	               WHERE rr.reservation_id = ?
	               GROUP BY rt.id, rt.name, rt.nightly_rate_cents
	               ORDER BY rt.id`
	rows, err := r.db.QueryContext(ctx, lineQ, reservationID)
	if err != nil {
		return Receipt{}, err
	}
	defer rows.Close()
	rec.Rooms = []ReceiptRoomLine{}
	for rows.Next() {
		var (
			line ReceiptRoomLine
			rate int64
		)
		if err := rows.Scan(&line.TypeName, &line.Qty, &rate); err != nil {
			return Receipt{}, err
		}
		line.LineCents = rate * int64(line.Qty) * int64(rec.Nights)
		line.LineTotal = model.FormatCents(line.LineCents)
		rec.Rooms = append(rec.Rooms, line)
	}
	if err := rows.Err(); err != nil {
		return Receipt{}, err
	}
	return rec, nil
}

// BookingRow is one staff-dashboard booking entry.
type BookingRow struct {
	model.Booking
	ReservorName *string `json:"reservor_name,omitempty"`
	CheckInDate  string  `json:"check_in_date"`
	CheckOutDate string  `json:"check_out_date"`
	CostCents    int64   `json:"cost_cents"`
}

// ListAll returns every booking, newest first.
func (r *BookingRepo) ListAll(ctx context.Context) ([]BookingRow, error) {
	const q = `SELECT b.id, b.reservation_id, b.booking_no, b.status, b.created_at,
	                  res.check_in_date, res.check_out_date, res.cost_cents,
	                  (SELECT CONCAT(g.first_name, ' ', g.last_name)
	                   FROM guests g WHERE g.reservation_id = res.id AND g.is_reservor = 1 LIMIT 1)
	           FROM bookings b
	           JOIN reservations res ON res.id = b.reservation_id
	           ORDER BY b.created_at DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]BookingRow, 0)
	for rows.Next() {
		var (
			row      BookingRow
			in, out2 time.Time
			reservor sql.NullString
		)
		if err := rows.Scan(&row.ID, &row.ReservationID, &row.BookingNo, &row.Status, &row.CreatedAt,
			&in, &out2, &row.CostCents, &reservor); err != nil {
			return nil, err
		}
		row.CheckInDate = in.UTC().Format(model.DateLayout)
		row.CheckOutDate = out2.UTC().Format(model.DateLayout)
		if reservor.Valid {
			name := reservor.String
			row.ReservorName = &name
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
