package reports

import (
	"context"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads ledger facts for aggregation. Reporting is strictly
// read-only; writes stay in the sales package.
type Repository interface {
	LineFacts(ctx context.Context, profileID int64, filters Filters) ([]LineFact, error)
	PaymentFacts(ctx context.Context, profileID int64, filters Filters) ([]PaymentFact, error)
	ModifierFacts(ctx context.Context, profileID int64, filters Filters) ([]ModifierFact, error)
	CategoryNames(ctx context.Context, profileID int64) (map[int64]string, error)
	DiscountNames(ctx context.Context, profileID int64) (map[int64]string, error)
	TaxNames(ctx context.Context, profileID int64) (map[int64]string, error)
	ProductNames(ctx context.Context, profileID int64) (map[int64]string, error)
}

type repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

// queryBuilder accumulates WHERE clauses with positional args.
type queryBuilder struct {
	clauses []string
	args    []any
}

func (b *queryBuilder) add(clause string, arg any) {
	b.args = append(b.args, arg)
	b.clauses = append(b.clauses, strings.ReplaceAll(clause, "?", "$"+strconv.Itoa(len(b.args))))
}

func (b *queryBuilder) where() string {
	if len(b.clauses) == 0 {
		return ""
	}
	return " AND " + strings.Join(b.clauses, " AND ")
}

func buildFilterClauses(filters Filters) *queryBuilder {
	b := &queryBuilder{}
	if !filters.After.IsZero() {
		b.add("r.ts >= ?", filters.After)
	}
	if !filters.Before.IsZero() {
		b.add("r.ts < ?", filters.Before)
	}
	if filters.StoreRegNos != nil {
		b.add("r.store_reg_no = ANY(?)", filters.StoreRegNos)
	}
	if filters.UserRegNos != nil {
		b.add("r.user_reg_no = ANY(?)", filters.UserRegNos)
	}
	if filters.DiscountRegNo != 0 {
		b.add("r.discount_reg_no = ?", filters.DiscountRegNo)
	}
	if filters.TaxRegNo != 0 {
		b.add("r.tax_reg_no = ?", filters.TaxRegNo)
	}
	return b
}

func (r *repository) LineFacts(ctx context.Context, profileID int64, filters Filters) ([]LineFact, error) {
	b := buildFilterClauses(filters)
	if filters.CategoryRegNo != 0 {
		b.add("l.category_reg_no = ?", filters.CategoryRegNo)
	}
	if filters.ProductRegNo != 0 {
		n := strconv.Itoa(len(b.args) + 1)
		b.add("(l.product_reg_no = $"+n+" OR l.parent_reg_no = $"+n+")", filters.ProductRegNo)
	}
	if filters.IsBundle != nil {
		b.add("l.is_bundle = ?", *filters.IsBundle)
	}
	if filters.StockStatus != "" {
		b.add(`EXISTS (SELECT 1 FROM stock_levels sl
			WHERE sl.profile_id = r.profile_id
			  AND sl.product_reg_no = l.product_reg_no
			  AND sl.store_reg_no = r.store_reg_no
			  AND sl.status = ?)`, filters.StockStatus)
	}

	query := `SELECT r.reg_no, r.ts, r.store_reg_no, r.user_reg_no,
			COALESCE(r.discount_reg_no, 0), COALESCE(r.tax_reg_no, 0),
			r.discount_amount, r.tax_amount, r.is_refund,
			l.product_reg_no, COALESCE(l.parent_reg_no, 0), l.product_name,
			COALESCE(l.category_reg_no, 0), l.is_bundle, l.units, l.gross_total, l.cost_total
		FROM receipt_lines l
		JOIN receipts r ON r.id = l.receipt_id
		WHERE r.profile_id = $` + strconv.Itoa(len(b.args)+1) + b.where() + `
		ORDER BY r.ts, l.id`
	args := append(b.args, profileID)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []LineFact
	for rows.Next() {
		var f LineFact
		if err := rows.Scan(&f.ReceiptRegNo, &f.Timestamp, &f.StoreRegNo, &f.UserRegNo,
			&f.DiscountRegNo, &f.TaxRegNo, &f.ReceiptDiscount, &f.ReceiptTax, &f.IsRefund,
			&f.ProductRegNo, &f.ParentRegNo, &f.ProductName,
			&f.CategoryRegNo, &f.IsBundle, &f.Units, &f.Gross, &f.Cost); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *repository) PaymentFacts(ctx context.Context, profileID int64, filters Filters) ([]PaymentFact, error) {
	b := buildFilterClauses(filters)

	query := `SELECT r.reg_no, r.ts, r.store_reg_no, r.user_reg_no,
			p.method_reg_no, p.method_name, p.amount, r.is_refund
		FROM receipt_payments p
		JOIN receipts r ON r.id = p.receipt_id
		WHERE r.profile_id = $` + strconv.Itoa(len(b.args)+1) + b.where() + `
		ORDER BY r.ts, p.id`
	args := append(b.args, profileID)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PaymentFact
	for rows.Next() {
		var f PaymentFact
		if err := rows.Scan(&f.ReceiptRegNo, &f.Timestamp, &f.StoreRegNo, &f.UserRegNo,
			&f.MethodRegNo, &f.MethodName, &f.Amount, &f.IsRefund); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *repository) ModifierFacts(ctx context.Context, profileID int64, filters Filters) ([]ModifierFact, error) {
	b := buildFilterClauses(filters)

	query := `SELECT r.reg_no, r.ts, r.store_reg_no, r.user_reg_no,
			m.modifier_reg_no, m.modifier_name, m.option_name, l.units, m.amount, r.is_refund
		FROM receipt_line_modifiers m
		JOIN receipt_lines l ON l.id = m.line_id
		JOIN receipts r ON r.id = l.receipt_id
		WHERE r.profile_id = $` + strconv.Itoa(len(b.args)+1) + b.where() + `
		ORDER BY r.ts, m.id`
	args := append(b.args, profileID)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ModifierFact
	for rows.Next() {
		var f ModifierFact
		if err := rows.Scan(&f.ReceiptRegNo, &f.Timestamp, &f.StoreRegNo, &f.UserRegNo,
			&f.ModifierRegNo, &f.ModifierName, &f.OptionName, &f.Units, &f.Amount, &f.IsRefund); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *repository) CategoryNames(ctx context.Context, profileID int64) (map[int64]string, error) {
	return r.names(ctx, `SELECT reg_no, name FROM categories WHERE profile_id = $1`, profileID)
}

func (r *repository) DiscountNames(ctx context.Context, profileID int64) (map[int64]string, error) {
	return r.names(ctx, `SELECT reg_no, name FROM discounts WHERE profile_id = $1`, profileID)
}

func (r *repository) TaxNames(ctx context.Context, profileID int64) (map[int64]string, error) {
	return r.names(ctx, `SELECT reg_no, name FROM taxes WHERE profile_id = $1`, profileID)
}

func (r *repository) ProductNames(ctx context.Context, profileID int64) (map[int64]string, error) {
	return r.names(ctx, `SELECT reg_no, name FROM products WHERE profile_id = $1`, profileID)
}

func (r *repository) names(ctx context.Context, query string, profileID int64) (map[int64]string, error) {
	rows, err := r.pool.Query(ctx, query, profileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]string)
	for rows.Next() {
		var regNo int64
		var name string
		if err := rows.Scan(&regNo, &name); err != nil {
			return nil, err
		}
		out[regNo] = name
	}
	return out, rows.Err()
}
