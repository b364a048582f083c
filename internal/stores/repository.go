package stores

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
	List(ctx context.Context, profileID int64) ([]Store, error)
	Get(ctx context.Context, profileID, regNo int64) (Store, error)
	Create(ctx context.Context, store Store) (Store, error)
	Update(ctx context.Context, store Store) error
	Delete(ctx context.Context, profileID, regNo int64) error

	ListPaymentMethods(ctx context.Context, profileID, storeRegNo int64) ([]PaymentMethod, error)
	CreatePaymentMethod(ctx context.Context, method PaymentMethod) (PaymentMethod, error)
	DeletePaymentMethod(ctx context.Context, profileID, regNo int64) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

func (r *repository) List(ctx context.Context, profileID int64) ([]Store, error) {
	const query = `SELECT id, profile_id, reg_no, name, COALESCE(address, ''), created_at, updated_at
		FROM stores WHERE profile_id = $1 ORDER BY id`
	rows, err := r.pool.Query(ctx, query, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Store
	for rows.Next() {
		var s Store
		if err := rows.Scan(&s.ID, &s.ProfileID, &s.RegNo, &s.Name, &s.Address, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, profileID, regNo int64) (Store, error) {
	const query = `SELECT id, profile_id, reg_no, name, COALESCE(address, ''), created_at, updated_at
		FROM stores WHERE profile_id = $1 AND reg_no = $2`
	var s Store
	err := r.pool.QueryRow(ctx, query, profileID, regNo).
		Scan(&s.ID, &s.ProfileID, &s.RegNo, &s.Name, &s.Address, &s.CreatedAt, &s.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Store{}, httpx.ErrNotFound
	}
	return s, err
}

func (r *repository) Create(ctx context.Context, store Store) (Store, error) {
	const query = `INSERT INTO stores (profile_id, name, address, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $4) RETURNING id, reg_no`
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, query, store.ProfileID, store.Name, store.Address, now).
		Scan(&store.ID, &store.RegNo)
	if err != nil {
		if isUniqueViolation(err) {
			return Store{}, httpx.ErrDuplicate
		}
		return Store{}, err
	}
	store.CreatedAt = now
	store.UpdatedAt = now
	return store, nil
}

func (r *repository) Update(ctx context.Context, store Store) error {
	const query = `UPDATE stores SET name = $1, address = $2, updated_at = $3
		WHERE profile_id = $4 AND reg_no = $5`
	tag, err := r.pool.Exec(ctx, query, store.Name, store.Address, time.Now().UTC(), store.ProfileID, store.RegNo)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, profileID, regNo int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM stores WHERE profile_id = $1 AND reg_no = $2`, profileID, regNo)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) ListPaymentMethods(ctx context.Context, profileID, storeRegNo int64) ([]PaymentMethod, error) {
	query := `SELECT id, profile_id, store_reg_no, reg_no, name, payment_type
		FROM store_payment_methods WHERE profile_id = $1`
	args := []any{profileID}
	if storeRegNo != 0 {
		query += ` AND store_reg_no = $2`
		args = append(args, storeRegNo)
	}
	query += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PaymentMethod
	for rows.Next() {
		var m PaymentMethod
		if err := rows.Scan(&m.ID, &m.ProfileID, &m.StoreRegNo, &m.RegNo, &m.Name, &m.PaymentType); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *repository) CreatePaymentMethod(ctx context.Context, method PaymentMethod) (PaymentMethod, error) {
	const query = `INSERT INTO store_payment_methods (profile_id, store_reg_no, name, payment_type)
		VALUES ($1, $2, $3, $4) RETURNING id, reg_no`
	err := r.pool.QueryRow(ctx, query, method.ProfileID, method.StoreRegNo, method.Name, method.PaymentType).
		Scan(&method.ID, &method.RegNo)
	if err != nil {
		if isUniqueViolation(err) {
			return PaymentMethod{}, httpx.ErrDuplicate
		}
		return PaymentMethod{}, err
	}
	return method, nil
}

func (r *repository) DeletePaymentMethod(ctx context.Context, profileID, regNo int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM store_payment_methods WHERE profile_id = $1 AND reg_no = $2`, profileID, regNo)
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
