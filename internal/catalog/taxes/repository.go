package taxes

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tillpoint/tillpoint/internal/platform/httpx"
)

type Repository interface {
	List(ctx context.Context, profileID int64) ([]Tax, error)
	Get(ctx context.Context, profileID, regNo int64) (Tax, error)
	Create(ctx context.Context, tax Tax) (Tax, error)
	Update(ctx context.Context, tax Tax) error
	Delete(ctx context.Context, profileID, regNo int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, profileID int64) ([]Tax, error) {
	const query = `SELECT id, profile_id, reg_no, name, rate, created_at, updated_at
		FROM taxes WHERE profile_id = $1 ORDER BY id`
	rows, err := r.db.Query(ctx, query, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Tax
	for rows.Next() {
		var t Tax
		if err := rows.Scan(&t.ID, &t.ProfileID, &t.RegNo, &t.Name, &t.Rate, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, profileID, regNo int64) (Tax, error) {
	const query = `SELECT id, profile_id, reg_no, name, rate, created_at, updated_at
		FROM taxes WHERE profile_id = $1 AND reg_no = $2`
	var t Tax
	err := r.db.QueryRow(ctx, query, profileID, regNo).
		Scan(&t.ID, &t.ProfileID, &t.RegNo, &t.Name, &t.Rate, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Tax{}, httpx.ErrNotFound
	}
	return t, err
}

func (r *repository) Create(ctx context.Context, tax Tax) (Tax, error) {
	const query = `INSERT INTO taxes (profile_id, name, rate, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4) RETURNING id, reg_no`
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, query, tax.ProfileID, tax.Name, tax.Rate, now).Scan(&tax.ID, &tax.RegNo)
	if err != nil {
		return Tax{}, err
	}
	tax.CreatedAt = now
	tax.UpdatedAt = now
	return tax, nil
}

func (r *repository) Update(ctx context.Context, tax Tax) error {
	const query = `UPDATE taxes SET name = $1, rate = $2, updated_at = $3
		WHERE profile_id = $4 AND reg_no = $5`
	tag, err := r.db.Exec(ctx, query, tax.Name, tax.Rate, time.Now().UTC(), tax.ProfileID, tax.RegNo)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, profileID, regNo int64) error {
	const query = `DELETE FROM taxes WHERE profile_id = $1 AND reg_no = $2`
	tag, err := r.db.Exec(ctx, query, profileID, regNo)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}
