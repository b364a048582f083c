package categories

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tillpoint/tillpoint/internal/platform/httpx"
)

type Repository interface {
	List(ctx context.Context, profileID int64) ([]Category, error)
	Get(ctx context.Context, profileID, regNo int64) (Category, error)
	Create(ctx context.Context, category Category) (Category, error)
	Update(ctx context.Context, category Category) error
	Delete(ctx context.Context, profileID, regNo int64) error
}

type repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &repository{db: db}
}

func (r *repository) List(ctx context.Context, profileID int64) ([]Category, error) {
	const query = `SELECT id, profile_id, reg_no, name, color_code, created_at, updated_at
		FROM categories WHERE profile_id = $1 ORDER BY id`
	rows, err := r.db.Query(ctx, query, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.ProfileID, &c.RegNo, &c.Name, &c.Color, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, profileID, regNo int64) (Category, error) {
	const query = `SELECT id, profile_id, reg_no, name, color_code, created_at, updated_at
		FROM categories WHERE profile_id = $1 AND reg_no = $2`
	var c Category
	err := r.db.QueryRow(ctx, query, profileID, regNo).
		Scan(&c.ID, &c.ProfileID, &c.RegNo, &c.Name, &c.Color, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Category{}, httpx.ErrNotFound
	}
	return c, err
}

func (r *repository) Create(ctx context.Context, category Category) (Category, error) {
	// reg_no is allocated by the database from a tenant-wide sequence and
	// is the only identifier the API ever exposes.
	const query = `INSERT INTO categories (profile_id, name, color_code, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4) RETURNING id, reg_no`
	now := time.Now().UTC()
	err := r.db.QueryRow(ctx, query, category.ProfileID, category.Name, category.Color, now).
		Scan(&category.ID, &category.RegNo)
	if isUniqueViolation(err) {
		return Category{}, httpx.ErrDuplicate
	}
	if err != nil {
		return Category{}, err
	}
	category.CreatedAt = now
	category.UpdatedAt = now
	return category, nil
}

func (r *repository) Update(ctx context.Context, category Category) error {
	const query = `UPDATE categories SET name = $1, color_code = $2, updated_at = $3
		WHERE profile_id = $4 AND reg_no = $5`
	tag, err := r.db.Exec(ctx, query, category.Name, category.Color, time.Now().UTC(), category.ProfileID, category.RegNo)
	if isUniqueViolation(err) {
		return httpx.ErrDuplicate
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, profileID, regNo int64) error {
	const query = `DELETE FROM categories WHERE profile_id = $1 AND reg_no = $2`
	tag, err := r.db.Exec(ctx, query, profileID, regNo)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
