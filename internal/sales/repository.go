package sales

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/tillpoint/tillpoint/internal/inventory"
	"github.com/tillpoint/tillpoint/internal/platform/db"
	"github.com/tillpoint/tillpoint/internal/platform/httpx"
)

// StockDelta is a stock movement applied atomically with a receipt
// write. Units are negative for sales and positive for refunds.
type StockDelta struct {
	ProductRegNo int64
	StoreRegNo   int64
	Units        decimal.Decimal
}

// RefundMark increments the refunded units of an original line.
type RefundMark struct {
	LineID int64
	Units  decimal.Decimal
}

type ListFilters struct {
	After  time.Time
	Before time.Time
}

type Repository interface {
	List(ctx context.Context, profileID int64, filters ListFilters) ([]Receipt, error)
	Get(ctx context.Context, profileID, regNo int64) (Receipt, error)
	Create(ctx context.Context, receipt Receipt, deltas []StockDelta, marks []RefundMark) (Receipt, error)
}

type repository struct {
	pool  *pgxpool.Pool
	stock inventory.Repository
}

func NewRepository(pool *pgxpool.Pool, stock inventory.Repository) Repository {
	return &repository{pool: pool, stock: stock}
}

const receiptColumns = `id, profile_id, reg_no, receipt_code, store_reg_no, user_reg_no,
	COALESCE(discount_reg_no, 0), COALESCE(tax_reg_no, 0), ts,
	subtotal, discount_amount, tax_amount, total, is_refund, COALESCE(original_reg_no, 0)`

func scanReceipt(row pgx.Row) (Receipt, error) {
	var r Receipt
	err := row.Scan(&r.ID, &r.ProfileID, &r.RegNo, &r.ReceiptCode, &r.StoreRegNo, &r.UserRegNo,
		&r.DiscountRegNo, &r.TaxRegNo, &r.Timestamp,
		&r.Subtotal, &r.DiscountAmount, &r.TaxAmount, &r.Total, &r.IsRefund, &r.OriginalRegNo)
	return r, err
}

func (r *repository) List(ctx context.Context, profileID int64, filters ListFilters) ([]Receipt, error) {
	query := `SELECT ` + receiptColumns + ` FROM receipts WHERE profile_id = $1`
	args := []any{profileID}
	if !filters.After.IsZero() {
		args = append(args, filters.After)
		query += ` AND ts >= $2`
	}
	if !filters.Before.IsZero() {
		args = append(args, filters.Before)
		if filters.After.IsZero() {
			query += ` AND ts < $2`
		} else {
			query += ` AND ts < $3`
		}
	}
	query += ` ORDER BY ts DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Receipt
	for rows.Next() {
		receipt, err := scanReceipt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, receipt)
	}
	return out, rows.Err()
}

func (r *repository) Get(ctx context.Context, profileID, regNo int64) (Receipt, error) {
	const query = `SELECT ` + receiptColumns + ` FROM receipts WHERE profile_id = $1 AND reg_no = $2`
	receipt, err := scanReceipt(r.pool.QueryRow(ctx, query, profileID, regNo))
	if errors.Is(err, pgx.ErrNoRows) {
		return Receipt{}, httpx.ErrNotFound
	}
	if err != nil {
		return Receipt{}, err
	}

	receipt.Lines, err = r.lines(ctx, receipt.ID)
	if err != nil {
		return Receipt{}, err
	}
	receipt.Payments, err = r.payments(ctx, receipt.ID)
	if err != nil {
		return Receipt{}, err
	}
	return receipt, nil
}

func (r *repository) lines(ctx context.Context, receiptID int64) ([]Line, error) {
	const query = `SELECT id, receipt_id, product_reg_no, COALESCE(parent_reg_no, 0), product_name,
			COALESCE(category_reg_no, 0), is_bundle, price, units, gross_total, cost_total, refunded_units
		FROM receipt_lines WHERE receipt_id = $1 ORDER BY id`
	rows, err := r.pool.Query(ctx, query, receiptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Line
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.ID, &l.ReceiptID, &l.ProductRegNo, &l.ParentRegNo, &l.ProductName,
			&l.CategoryRegNo, &l.IsBundle, &l.Price, &l.Units, &l.GrossTotal, &l.CostTotal, &l.RefundedUnits); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *repository) payments(ctx context.Context, receiptID int64) ([]Payment, error) {
	const query = `SELECT id, receipt_id, method_reg_no, method_name, amount
		FROM receipt_payments WHERE receipt_id = $1 ORDER BY id`
	rows, err := r.pool.Query(ctx, query, receiptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.ReceiptID, &p.MethodRegNo, &p.MethodName, &p.Amount); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Create writes the receipt with its lines and payments, applies stock
// deltas and marks refunded originals, all in one transaction.
func (r *repository) Create(ctx context.Context, receipt Receipt, deltas []StockDelta, marks []RefundMark) (Receipt, error) {
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		const insertReceipt = `INSERT INTO receipts
			(profile_id, receipt_code, store_reg_no, user_reg_no, discount_reg_no, tax_reg_no, ts,
			 subtotal, discount_amount, tax_amount, total, is_refund, original_reg_no)
			VALUES ($1, $2, $3, $4, NULLIF($5, 0), NULLIF($6, 0), $7, $8, $9, $10, $11, $12, NULLIF($13, 0))
			RETURNING id, reg_no`
		err := tx.QueryRow(ctx, insertReceipt,
			receipt.ProfileID, receipt.ReceiptCode, receipt.StoreRegNo, receipt.UserRegNo,
			receipt.DiscountRegNo, receipt.TaxRegNo, receipt.Timestamp,
			receipt.Subtotal, receipt.DiscountAmount, receipt.TaxAmount, receipt.Total,
			receipt.IsRefund, receipt.OriginalRegNo).
			Scan(&receipt.ID, &receipt.RegNo)
		if err != nil {
			return err
		}

		const insertLine = `INSERT INTO receipt_lines
			(receipt_id, product_reg_no, parent_reg_no, product_name, category_reg_no, is_bundle,
			 price, units, gross_total, cost_total, refunded_units)
			VALUES ($1, $2, NULLIF($3, 0), $4, NULLIF($5, 0), $6, $7, $8, $9, $10, 0)
			RETURNING id`
		const insertModifier = `INSERT INTO receipt_line_modifiers
			(line_id, modifier_reg_no, modifier_name, option_name, amount)
			VALUES ($1, $2, $3, $4, $5) RETURNING id`
		for i := range receipt.Lines {
			l := &receipt.Lines[i]
			l.ReceiptID = receipt.ID
			err := tx.QueryRow(ctx, insertLine,
				receipt.ID, l.ProductRegNo, l.ParentRegNo, l.ProductName, l.CategoryRegNo, l.IsBundle,
				l.Price, l.Units, l.GrossTotal, l.CostTotal).
				Scan(&l.ID)
			if err != nil {
				return err
			}
			for j := range l.Modifiers {
				m := &l.Modifiers[j]
				m.LineID = l.ID
				err := tx.QueryRow(ctx, insertModifier,
					l.ID, m.ModifierRegNo, m.ModifierName, m.OptionName, m.Amount).
					Scan(&m.ID)
				if err != nil {
					return err
				}
			}
		}

		const insertPayment = `INSERT INTO receipt_payments
			(receipt_id, method_reg_no, method_name, amount)
			VALUES ($1, $2, $3, $4) RETURNING id`
		for i := range receipt.Payments {
			p := &receipt.Payments[i]
			p.ReceiptID = receipt.ID
			if err := tx.QueryRow(ctx, insertPayment, receipt.ID, p.MethodRegNo, p.MethodName, p.Amount).Scan(&p.ID); err != nil {
				return err
			}
		}

		for _, m := range marks {
			tag, err := tx.Exec(ctx,
				`UPDATE receipt_lines SET refunded_units = refunded_units + $1
				 WHERE id = $2 AND refunded_units + $1 <= units`,
				m.Units, m.LineID)
			if err != nil {
				return err
			}
			if tag.RowsAffected() == 0 {
				return httpx.ErrValidation
			}
		}

		for _, d := range deltas {
			err := r.stock.AdjustUnits(ctx, tx, receipt.ProfileID, d.ProductRegNo, d.StoreRegNo, d.Units)
			if err != nil && !errors.Is(err, httpx.ErrNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return Receipt{}, err
	}
	return receipt, nil
}
