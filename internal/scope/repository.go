package scope

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tillpoint/tillpoint/internal/shared"
)

// Repository is the PostgreSQL-backed Directory.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) ProfileStores(ctx context.Context, profileID int64) ([]StoreRef, error) {
	const query = `SELECT reg_no, name FROM stores WHERE profile_id = $1 AND deleted = FALSE ORDER BY id`
	return r.collectStores(ctx, query, profileID)
}

func (r *Repository) ProfileUsers(ctx context.Context, profileID int64) ([]UserRef, error) {
	const query = `SELECT reg_no, name FROM profile_users WHERE profile_id = $1 ORDER BY id`
	return r.collectUsers(ctx, query, profileID)
}

func (r *Repository) EmployeeStores(ctx context.Context, profileID, userRegNo int64) ([]StoreRef, error) {
	const query = `
		SELECT s.reg_no, s.name
		FROM stores s
		JOIN employee_stores es ON es.store_id = s.id
		JOIN profile_users u ON u.id = es.user_id
		WHERE s.profile_id = $1 AND u.reg_no = $2 AND s.deleted = FALSE
		ORDER BY s.id`
	return r.collectStores(ctx, query, profileID, userRegNo)
}

func (r *Repository) EmployeeGrants(ctx context.Context, profileID, userRegNo int64) (shared.Grants, error) {
	const query = `
		SELECT g.can_view_profits, g.can_view_all_reports
		FROM role_grants g
		JOIN profile_users u ON u.role_group_id = g.id
		WHERE u.profile_id = $1 AND u.reg_no = $2`
	var grants shared.Grants
	err := r.pool.QueryRow(ctx, query, profileID, userRegNo).
		Scan(&grants.CanViewProfits, &grants.CanViewAllReports)
	if errors.Is(err, pgx.ErrNoRows) {
		// No role group means the default: self-only and no profits.
		return shared.Grants{}, nil
	}
	if err != nil {
		return shared.Grants{}, err
	}
	return grants, nil
}

func (r *Repository) OwnerGrants(ctx context.Context, profileID int64) (shared.Grants, error) {
	const query = `SELECT can_view_profits FROM profiles WHERE id = $1`
	grants := shared.Grants{CanViewAllReports: true}
	err := r.pool.QueryRow(ctx, query, profileID).Scan(&grants.CanViewProfits)
	if errors.Is(err, pgx.ErrNoRows) {
		return shared.Grants{}, shared.ErrNotFound
	}
	if err != nil {
		return shared.Grants{}, err
	}
	return grants, nil
}

func (r *Repository) UserRef(ctx context.Context, profileID, userRegNo int64) (UserRef, error) {
	const query = `SELECT reg_no, name FROM profile_users WHERE profile_id = $1 AND reg_no = $2`
	var ref UserRef
	err := r.pool.QueryRow(ctx, query, profileID, userRegNo).Scan(&ref.RegNo, &ref.Name)
	if errors.Is(err, pgx.ErrNoRows) {
		return UserRef{}, shared.ErrNotFound
	}
	return ref, err
}

func (r *Repository) collectStores(ctx context.Context, query string, args ...any) ([]StoreRef, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []StoreRef
	for rows.Next() {
		var ref StoreRef
		if err := rows.Scan(&ref.RegNo, &ref.Name); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}

func (r *Repository) collectUsers(ctx context.Context, query string, args ...any) ([]UserRef, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []UserRef
	for rows.Next() {
		var ref UserRef
		if err := rows.Scan(&ref.RegNo, &ref.Name); err != nil {
			return nil, err
		}
		out = append(out, ref)
	}
	return out, rows.Err()
}
