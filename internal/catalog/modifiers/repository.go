package modifiers

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tillpoint/tillpoint/internal/platform/db"
	"github.com/tillpoint/tillpoint/internal/platform/httpx"
)

type Repository interface {
	List(ctx context.Context, profileID int64) ([]Modifier, error)
	Get(ctx context.Context, profileID, regNo int64) (Modifier, error)
	Create(ctx context.Context, modifier Modifier) (Modifier, error)
	Update(ctx context.Context, modifier Modifier) error
	Delete(ctx context.Context, profileID, regNo int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, profileID int64) ([]Modifier, error) {
	const query = `SELECT id, profile_id, reg_no, name, created_at, updated_at
		FROM modifiers WHERE profile_id = $1 ORDER BY id`
	rows, err := r.pool.Query(ctx, query, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Modifier
	byID := make(map[int64]int)
	for rows.Next() {
		var m Modifier
		if err := rows.Scan(&m.ID, &m.ProfileID, &m.RegNo, &m.Name, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		byID[m.ID] = len(out)
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	const optQuery = `SELECT o.modifier_id, o.id, o.reg_no, o.name, o.price
		FROM modifier_options o
		JOIN modifiers m ON m.id = o.modifier_id
		WHERE m.profile_id = $1 ORDER BY o.id`
	optRows, err := r.pool.Query(ctx, optQuery, profileID)
	if err != nil {
		return nil, err
	}
	defer optRows.Close()

	for optRows.Next() {
		var modifierID int64
		var o Option
		if err := optRows.Scan(&modifierID, &o.ID, &o.RegNo, &o.Name, &o.Price); err != nil {
			return nil, err
		}
		if idx, ok := byID[modifierID]; ok {
			out[idx].Options = append(out[idx].Options, o)
		}
	}
	return out, optRows.Err()
}

func (r *repository) Get(ctx context.Context, profileID, regNo int64) (Modifier, error) {
	const query = `SELECT id, profile_id, reg_no, name, created_at, updated_at
		FROM modifiers WHERE profile_id = $1 AND reg_no = $2`
	var m Modifier
	err := r.pool.QueryRow(ctx, query, profileID, regNo).
		Scan(&m.ID, &m.ProfileID, &m.RegNo, &m.Name, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Modifier{}, httpx.ErrNotFound
	}
	if err != nil {
		return Modifier{}, err
	}

	const optQuery = `SELECT id, reg_no, name, price FROM modifier_options WHERE modifier_id = $1 ORDER BY id`
	rows, err := r.pool.Query(ctx, optQuery, m.ID)
	if err != nil {
		return Modifier{}, err
	}
	defer rows.Close()

	for rows.Next() {
		var o Option
		if err := rows.Scan(&o.ID, &o.RegNo, &o.Name, &o.Price); err != nil {
			return Modifier{}, err
		}
		m.Options = append(m.Options, o)
	}
	return m, rows.Err()
}

func (r *repository) Create(ctx context.Context, modifier Modifier) (Modifier, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `INSERT INTO modifiers (profile_id, name, created_at, updated_at)
			VALUES ($1, $2, $3, $3) RETURNING id, reg_no`
		now := time.Now().UTC()
		if err := tx.QueryRow(ctx, query, modifier.ProfileID, modifier.Name, now).
			Scan(&modifier.ID, &modifier.RegNo); err != nil {
			return err
		}
		modifier.CreatedAt = now
		modifier.UpdatedAt = now
		return insertOptions(ctx, tx, modifier.ID, modifier.Options)
	})
	if err != nil {
		return Modifier{}, err
	}
	return modifier, nil
}

func (r *repository) Update(ctx context.Context, modifier Modifier) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const query = `UPDATE modifiers SET name = $1, updated_at = $2
			WHERE profile_id = $3 AND reg_no = $4 RETURNING id`
		err := tx.QueryRow(ctx, query, modifier.Name, time.Now().UTC(), modifier.ProfileID, modifier.RegNo).
			Scan(&modifier.ID)
		if errors.Is(err, pgx.ErrNoRows) {
			return httpx.ErrNotFound
		}
		if err != nil {
			return err
		}
		// Options are replaced wholesale on update.
		if _, err := tx.Exec(ctx, `DELETE FROM modifier_options WHERE modifier_id = $1`, modifier.ID); err != nil {
			return err
		}
		return insertOptions(ctx, tx, modifier.ID, modifier.Options)
	})
}

func (r *repository) Delete(ctx context.Context, profileID, regNo int64) error {
	const query = `DELETE FROM modifiers WHERE profile_id = $1 AND reg_no = $2`
	tag, err := r.pool.Exec(ctx, query, profileID, regNo)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func insertOptions(ctx context.Context, tx pgx.Tx, modifierID int64, options []Option) error {
	const query = `INSERT INTO modifier_options (modifier_id, name, price) VALUES ($1, $2, $3)`
	for _, o := range options {
		if _, err := tx.Exec(ctx, query, modifierID, o.Name, o.Price); err != nil {
			return err
		}
	}
	return nil
}
