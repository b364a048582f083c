package products

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tillpoint/tillpoint/internal/catalog/costing"
	"github.com/tillpoint/tillpoint/internal/platform/db"
	"github.com/tillpoint/tillpoint/internal/platform/httpx"
)

// ListFilters narrows product listings.
type ListFilters struct {
	Search        string
	CategoryRegNo *int64
	IsBundle      *bool
	Transformable *bool
}

type Repository interface {
	costing.Source

	List(ctx context.Context, profileID int64, filters ListFilters) ([]Product, error)
	Get(ctx context.Context, profileID, regNo int64) (Product, error)
	Create(ctx context.Context, product Product) (Product, error)
	Update(ctx context.Context, product Product) error
	Delete(ctx context.Context, profileID, regNo int64) error

	Variants(ctx context.Context, profileID, parentRegNo int64) ([]Product, error)
	Components(ctx context.Context, profileID, regNo int64) ([]BundleComponent, error)
	ReplaceComponents(ctx context.Context, profileID, regNo int64, components []BundleComponent) error
	TransformMap(ctx context.Context, profileID, regNo int64) ([]TransformMapEntry, error)
	ReplaceTransformMap(ctx context.Context, profileID, regNo int64, entries []TransformMapEntry) error
	ListTransformable(ctx context.Context, profileID int64) ([]Product, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const productColumns = `id, profile_id, reg_no, name, barcode, price, cost,
	COALESCE(category_reg_no, 0), COALESCE(tax_reg_no, 0),
	is_bundle, is_transformable, is_variant_child, track_stock,
	COALESCE(parent_reg_no, 0), created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.ProfileID, &p.RegNo, &p.Name, &p.Barcode, &p.Price, &p.Cost,
		&p.CategoryRegNo, &p.TaxRegNo,
		&p.IsBundle, &p.IsTransformable, &p.IsVariantChild, &p.TrackStock,
		&p.ParentRegNo, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *repository) List(ctx context.Context, profileID int64, filters ListFilters) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE profile_id = $1 AND is_variant_child = FALSE`
	args := []any{profileID}

	if filters.Search != "" {
		args = append(args, "%"+filters.Search+"%")
		query += ` AND (name ILIKE $` + strconv.Itoa(len(args)) + ` OR barcode ILIKE $` + strconv.Itoa(len(args)) + `)`
	}
	if filters.CategoryRegNo != nil {
		args = append(args, *filters.CategoryRegNo)
		query += ` AND category_reg_no = $` + strconv.Itoa(len(args))
	}
	if filters.IsBundle != nil {
		args = append(args, *filters.IsBundle)
		query += ` AND is_bundle = $` + strconv.Itoa(len(args))
	}
	if filters.Transformable != nil {
		args = append(args, *filters.Transformable)
		query += ` AND is_transformable = $` + strconv.Itoa(len(args))
	}
	query += ` ORDER BY id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, profileID, regNo int64) (Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products WHERE profile_id = $1 AND reg_no = $2`
	p, err := scanProduct(r.pool.QueryRow(ctx, query, profileID, regNo))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, httpx.ErrNotFound
	}
	return p, err
}

func (r *repository) Create(ctx context.Context, product Product) (Product, error) {
	const query = `INSERT INTO products
		(profile_id, name, barcode, price, cost, category_reg_no, tax_reg_no,
		 is_bundle, is_transformable, is_variant_child, track_stock, parent_reg_no,
		 created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6, 0), NULLIF($7, 0), $8, $9, $10, $11, NULLIF($12, 0), $13, $13)
		RETURNING id, reg_no`
	now := time.Now().UTC()
	err := r.pool.QueryRow(ctx, query,
		product.ProfileID, product.Name, product.Barcode, product.Price, product.Cost,
		product.CategoryRegNo, product.TaxRegNo,
		product.IsBundle, product.IsTransformable, product.IsVariantChild, product.TrackStock,
		product.ParentRegNo, now).
		Scan(&product.ID, &product.RegNo)
	if err != nil {
		return Product{}, err
	}
	product.CreatedAt = now
	product.UpdatedAt = now
	return product, nil
}

func (r *repository) Update(ctx context.Context, product Product) error {
	const query = `UPDATE products SET
		name = $1, barcode = $2, price = $3, cost = $4,
		category_reg_no = NULLIF($5, 0), tax_reg_no = NULLIF($6, 0), track_stock = $7, updated_at = $8
		WHERE profile_id = $9 AND reg_no = $10`
	tag, err := r.pool.Exec(ctx, query,
		product.Name, product.Barcode, product.Price, product.Cost,
		product.CategoryRegNo, product.TaxRegNo, product.TrackStock, time.Now().UTC(),
		product.ProfileID, product.RegNo)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, profileID, regNo int64) error {
	const query = `DELETE FROM products WHERE profile_id = $1 AND reg_no = $2`
	tag, err := r.pool.Exec(ctx, query, profileID, regNo)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return httpx.ErrNotFound
	}
	return nil
}

func (r *repository) Variants(ctx context.Context, profileID, parentRegNo int64) ([]Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products
		WHERE profile_id = $1 AND parent_reg_no = $2 ORDER BY id`
	rows, err := r.pool.Query(ctx, query, profileID, parentRegNo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *repository) Components(ctx context.Context, profileID, regNo int64) ([]BundleComponent, error) {
	const query = `
		SELECT c.component_reg_no, COALESCE(p.name, ''), c.quantity
		FROM bundle_components c
		JOIN products b ON b.id = c.product_id
		LEFT JOIN products p ON p.profile_id = b.profile_id AND p.reg_no = c.component_reg_no
		WHERE b.profile_id = $1 AND b.reg_no = $2
		ORDER BY c.id`
	rows, err := r.pool.Query(ctx, query, profileID, regNo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BundleComponent
	for rows.Next() {
		var c BundleComponent
		if err := rows.Scan(&c.ComponentRegNo, &c.ComponentName, &c.Quantity); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repository) ReplaceComponents(ctx context.Context, profileID, regNo int64, components []BundleComponent) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var productID int64
		err := tx.QueryRow(ctx, `SELECT id FROM products WHERE profile_id = $1 AND reg_no = $2 AND is_bundle = TRUE`,
			profileID, regNo).Scan(&productID)
		if errors.Is(err, pgx.ErrNoRows) {
			return httpx.ErrNotFound
		}
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM bundle_components WHERE product_id = $1`, productID); err != nil {
			return err
		}
		for _, c := range components {
			if _, err := tx.Exec(ctx,
				`INSERT INTO bundle_components (product_id, component_reg_no, quantity) VALUES ($1, $2, $3)`,
				productID, c.ComponentRegNo, c.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) TransformMap(ctx context.Context, profileID, regNo int64) ([]TransformMapEntry, error) {
	const query = `
		SELECT m.component_reg_no, COALESCE(p.name, ''), m.quantity, m.is_auto_repackage
		FROM transform_map_entries m
		JOIN products t ON t.id = m.product_id
		LEFT JOIN products p ON p.profile_id = t.profile_id AND p.reg_no = m.component_reg_no
		WHERE t.profile_id = $1 AND t.reg_no = $2
		ORDER BY m.id`
	rows, err := r.pool.Query(ctx, query, profileID, regNo)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TransformMapEntry
	for rows.Next() {
		var e TransformMapEntry
		if err := rows.Scan(&e.ComponentRegNo, &e.ComponentName, &e.Quantity, &e.IsAutoRepackage); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *repository) ReplaceTransformMap(ctx context.Context, profileID, regNo int64, entries []TransformMapEntry) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var productID int64
		err := tx.QueryRow(ctx, `SELECT id FROM products WHERE profile_id = $1 AND reg_no = $2 AND is_transformable = TRUE`,
			profileID, regNo).Scan(&productID)
		if errors.Is(err, pgx.ErrNoRows) {
			return httpx.ErrNotFound
		}
		if err != nil {
			return err
		}
		if _, err := tx.Exec(ctx, `DELETE FROM transform_map_entries WHERE product_id = $1`, productID); err != nil {
			return err
		}
		for _, e := range entries {
			if _, err := tx.Exec(ctx,
				`INSERT INTO transform_map_entries (product_id, component_reg_no, quantity, is_auto_repackage) VALUES ($1, $2, $3, $4)`,
				productID, e.ComponentRegNo, e.Quantity, e.IsAutoRepackage); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *repository) ListTransformable(ctx context.Context, profileID int64) ([]Product, error) {
	const query = `SELECT ` + productColumns + ` FROM products
		WHERE profile_id = $1 AND is_transformable = TRUE ORDER BY id`
	rows, err := r.pool.Query(ctx, query, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// ProductCost implements costing.Source.
func (r *repository) ProductCost(ctx context.Context, profileID, regNo int64) (decimal.Decimal, bool, bool, error) {
	const query = `SELECT cost, is_bundle FROM products WHERE profile_id = $1 AND reg_no = $2`
	var cost decimal.Decimal
	var isBundle bool
	err := r.pool.QueryRow(ctx, query, profileID, regNo).Scan(&cost, &isBundle)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, false, false, nil
	}
	if err != nil {
		return decimal.Zero, false, false, err
	}
	return cost, isBundle, true, nil
}

// BundleComponents implements costing.Source.
func (r *repository) BundleComponents(ctx context.Context, profileID, regNo int64) ([]costing.Component, error) {
	components, err := r.Components(ctx, profileID, regNo)
	if err != nil {
		return nil, err
	}
	out := make([]costing.Component, 0, len(components))
	for _, c := range components {
		out = append(out, costing.Component{RegNo: c.ComponentRegNo, Quantity: c.Quantity})
	}
	return out, nil
}
