package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/romannmaypbalingbing/hotel-room-reservation/internal/model"
)

// DiscountRepo manages staff-issued discount codes.
type DiscountRepo struct {
	db *sql.DB
}

// NewDiscountRepo returns a DiscountRepo bound to the given database.
func NewDiscountRepo(db *sql.DB) *DiscountRepo { return &DiscountRepo{db: db} }

// Create inserts a new discount code.  Duplicate codes map to
// ErrConflict via the unique index on discounts.code.
func (r *DiscountRepo) Create(ctx context.Context, code string, percentBP int, expiresAt time.Time) (uint64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO discounts (code, percent_bp, expires_at) VALUES (?, ?, ?)`,
		code, percentBP, expiresAt.UTC())
	if err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) && me.Number == 1062 {
			return 0, ErrConflict
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetActiveByCode fetches a discount by code, rejecting expired ones
// with sql.ErrNoRows so callers treat both cases as "no such code".
func (r *DiscountRepo) GetActiveByCode(ctx context.Context, code string) (*model.Discount, error) {
	const q = `SELECT id, code, percent_bp, expires_at, created_at
	           FROM discounts WHERE code = ? AND expires_at > UTC_TIMESTAMP()`
	var d model.Discount
	err := r.db.QueryRowContext(ctx, q, code).Scan(&d.ID, &d.Code, &d.PercentBP, &d.ExpiresAt, &d.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ListAll returns every discount code, newest first, for the staff view.
func (r *DiscountRepo) ListAll(ctx context.Context) ([]model.Discount, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, code, percent_bp, expires_at, created_at FROM discounts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Discount, 0)
	for rows.Next() {
		var d model.Discount
		if err := rows.Scan(&d.ID, &d.Code, &d.PercentBP, &d.ExpiresAt, &d.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}
