package inventory

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tillpoint/tillpoint/internal/platform/db"
	"github.com/tillpoint/tillpoint/internal/platform/httpx"
)

type Repository interface {
	List(ctx context.Context, profileID, storeRegNo int64, status string) ([]StockLevel, error)
	Get(ctx context.Context, profileID, productRegNo, storeRegNo int64) (StockLevel, error)
	Upsert(ctx context.Context, level StockLevel) (StockLevel, error)
	AdjustUnits(ctx context.Context, tx pgx.Tx, profileID, productRegNo, storeRegNo int64, delta decimal.Decimal) error
	UnitsOnHand(ctx context.Context, profileID, regNo int64) (decimal.Decimal, error)
	LowStock(ctx context.Context, profileID int64) ([]StockLevel, error)
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const stockColumns = `id, profile_id, product_reg_no, store_reg_no, units, minimum_units,
	COALESCE(price_override, 0), is_sellable, status, updated_at`

func scanStock(row pgx.Row) (StockLevel, error) {
	var l StockLevel
	err := row.Scan(&l.ID, &l.ProfileID, &l.ProductRegNo, &l.StoreRegNo, &l.Units, &l.MinimumUnits,
		&l.PriceOverride, &l.IsSellable, &l.Status, &l.UpdatedAt)
	return l, err
}

func (r *repository) List(ctx context.Context, profileID, storeRegNo int64, status string) ([]StockLevel, error) {
	query := `SELECT ` + stockColumns + ` FROM stock_levels WHERE profile_id = $1`
	args := []any{profileID}
	if storeRegNo != 0 {
		args = append(args, storeRegNo)
		query += ` AND store_reg_no = $2`
	}
	if status != "" {
		args = append(args, status)
		if storeRegNo != 0 {
			query += ` AND status = $3`
		} else {
			query += ` AND status = $2`
		}
	}
	query += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StockLevel
	for rows.Next() {
		l, err := scanStock(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, profileID, productRegNo, storeRegNo int64) (StockLevel, error) {
	const query = `SELECT ` + stockColumns + ` FROM stock_levels
		WHERE profile_id = $1 AND product_reg_no = $2 AND store_reg_no = $3`
	l, err := scanStock(r.pool.QueryRow(ctx, query, profileID, productRegNo, storeRegNo))
	if errors.Is(err, pgx.ErrNoRows) {
		return StockLevel{}, httpx.ErrNotFound
	}
	return l, err
}

func (r *repository) Upsert(ctx context.Context, level StockLevel) (StockLevel, error) {
	level.Status = DeriveStatus(level.Units, level.MinimumUnits)
	level.UpdatedAt = time.Now().UTC()

	const query = `INSERT INTO stock_levels
		(profile_id, product_reg_no, store_reg_no, units, minimum_units, price_override, is_sellable, status, updated_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, 0), $7, $8, $9)
		ON CONFLICT (profile_id, product_reg_no, store_reg_no) DO UPDATE SET
			units = EXCLUDED.units,
			minimum_units = EXCLUDED.minimum_units,
			price_override = EXCLUDED.price_override,
			is_sellable = EXCLUDED.is_sellable,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
		RETURNING id`
	err := r.pool.QueryRow(ctx, query,
		level.ProfileID, level.ProductRegNo, level.StoreRegNo,
		level.Units, level.MinimumUnits, level.PriceOverride,
		level.IsSellable, level.Status, level.UpdatedAt).
		Scan(&level.ID)
	if err != nil {
		return StockLevel{}, err
	}
	return level, nil
}

// AdjustUnits moves units within a caller-owned transaction and
// recomputes the derived status in the same statement.
func (r *repository) AdjustUnits(ctx context.Context, tx pgx.Tx, profileID, productRegNo, storeRegNo int64, delta decimal.Decimal) error {
	const query = `UPDATE stock_levels SET
			units = units + $1,
			status = CASE
				WHEN units + $1 <= 0 THEN 'out_of_stock'
				WHEN units + $1 <= minimum_units THEN 'low_stock'
				ELSE 'in_stock'
			END,
			updated_at = $2
		WHERE profile_id = $3 AND product_reg_no = $4 AND store_reg_no = $5`
	tag, err := tx.Exec(ctx, query, delta, time.Now().UTC(), profileID, productRegNo, storeRegNo)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

// UnitsOnHand sums a product's units across every store of the profile.
func (r *repository) UnitsOnHand(ctx context.Context, profileID, regNo int64) (decimal.Decimal, error) {
	const query = `SELECT COALESCE(SUM(units), 0) FROM stock_levels
		WHERE profile_id = $1 AND product_reg_no = $2`
	var total decimal.Decimal
	err := r.pool.QueryRow(ctx, query, profileID, regNo).Scan(&total)
	return total, err
}

func (r *repository) LowStock(ctx context.Context, profileID int64) ([]StockLevel, error) {
	const query = `SELECT ` + stockColumns + ` FROM stock_levels
		WHERE profile_id = $1 AND status IN ('low_stock', 'out_of_stock') ORDER BY id`
	rows, err := r.pool.Query(ctx, query, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StockLevel
	for rows.Next() {
		l, err := scanStock(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repository) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return db.WithTx(ctx, r.pool, fn)
}
