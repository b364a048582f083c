package discounts

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tillpoint/tillpoint/internal/platform/httpx"
)

type Repository interface {
	List(ctx context.Context, profileID int64) ([]Discount, error)
	Get(ctx context.Context, profileID, regNo int64) (Discount, error)
	Create(ctx context.Context, discount Discount) (Discount, error)
	Update(ctx context.Context, discount Discount) error
	Delete(ctx context.Context, profileID, regNo int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, profileID int64) ([]Discount, error) {
	const query = `SELECT id, profile_id, reg_no, name, amount, created_at, updated_at
		FROM discounts WHERE profile_id = $1 ORDER BY id`
	rows, err := r.db.Query(ctx, query, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Discount
	for rows.Next() {
		var d Discount
		if err := rows.Scan(&d.ID, &d.ProfileID, &d.RegNo, &d.Name, &d.Amount, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, profileID, regNo int64) (Discount, error) {
	const query = `SELECT id, profile_id, reg_no, name, amount, created_at, updated_at
		FROM discounts WHERE profile_id = $1 AND reg_no = $2`
	var d Discount
	err := r.db.QueryRow(ctx, query, profileID, regNo).
		Scan(&d.ID, &d.ProfileID, &d.RegNo, &d.Name, &d.Amount, &d.CreatedAt, &d.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Discount{}, httpx.ErrNotFound
	}
	return d, err
}

func (r *repository) Create(ctx context.Context, discount Discount) (Discount, error) {
	const query = `INSERT INTO discounts (profile_id, name, amount, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4) RETURNING id, reg_no`
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, query, discount.ProfileID, discount.Name, discount.Amount, now).
		Scan(&discount.ID, &discount.RegNo)
	if err != nil {
		return Discount{}, err
	}
	discount.CreatedAt = now
	discount.UpdatedAt = now
	return discount, nil
}

func (r *repository) Update(ctx context.Context, discount Discount) error {
	const query = `UPDATE discounts SET name = $1, amount = $2, updated_at = $3
		WHERE profile_id = $4 AND reg_no = $5`
	tag, err := r.db.Exec(ctx, query, discount.Name, discount.Amount, time.Now().UTC(), discount.ProfileID, discount.RegNo)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, profileID, regNo int64) error {
	const query = `DELETE FROM discounts WHERE profile_id = $1 AND reg_no = $2`
	tag, err := r.db.Exec(ctx, query, profileID, regNo)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
