package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/tillpoint/tillpoint/internal/shared"
)

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*Account, error)
	MaintenanceMode(ctx context.Context, profileID int64) (bool, error)
}

// PGRepository implements Repository using PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL repository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// FindByEmail looks the email up among tenant owners first, then among
// employees. Owner and employee email namespaces do not overlap.
func (r *PGRepository) FindByEmail(ctx context.Context, email string) (*Account, error) {
	const ownerQuery = `
		SELECT id, reg_no, email, name, password_hash, is_active, created_at
		FROM profiles
		WHERE email = $1`

	var acct Account
	err := r.pool.QueryRow(ctx, ownerQuery, email).Scan(
		&acct.ProfileID,
		&acct.UserRegNo,
		&acct.Email,
		&acct.Name,
		&acct.PasswordHash,
		&acct.IsActive,
		&acct.CreatedAt,
	)
	if err == nil {
		acct.Role = string(shared.RoleOwner)
		acct.IsOwner = true
		return &acct, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}

	const employeeQuery = `
		SELECT profile_id, reg_no, email, name, password_hash, role, is_active, created_at
		FROM profile_users
		WHERE email = $1`

	err = r.pool.QueryRow(ctx, employeeQuery, email).Scan(
		&acct.ProfileID,
		&acct.UserRegNo,
		&acct.Email,
		&acct.Name,
		&acct.PasswordHash,
		&acct.Role,
		&acct.IsActive,
		&acct.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &acct, nil
}

// MaintenanceMode reads the tenant maintenance flag. Missing profiles
// report false so the middleware fails open for unknown tenants.
func (r *PGRepository) MaintenanceMode(ctx context.Context, profileID int64) (bool, error) {
	const query = `SELECT maintenance_mode FROM profiles WHERE id = $1`

	var active bool
	if err := r.pool.QueryRow(ctx, query, profileID).Scan(&active); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return active, nil
}
