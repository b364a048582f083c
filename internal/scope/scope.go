// Package scope resolves which stores and users a requesting principal may
// see in reports, and whether profit fields may be shown. Every report
// request narrows its filters to the resolved scope before any aggregation.
package scope

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tillpoint/tillpoint/internal/shared"
)

// StoreRef is a selectable store dimension entry.
type StoreRef struct {
	RegNo int64  `json:"reg_no"`
	Name  string `json:"name"`
}

// UserRef is a selectable user dimension entry.
type UserRef struct {
	RegNo int64  `json:"reg_no"`
	Name  string `json:"name"`
}

// AccessScope is the resolved visibility for one request. It is computed
// per request and never persisted.
type AccessScope struct {
	Stores        []StoreRef
	Users         []UserRef
	CanViewProfit bool
}

// StoreRegNos lists the visible store registration numbers.
func (s AccessScope) StoreRegNos() []int64 {
	out := make([]int64, 0, len(s.Stores))
	for _, st := range s.Stores {
		out = append(out, st.RegNo)
	}
	return out
}

// UserRegNos lists the visible user registration numbers.
func (s AccessScope) UserRegNos() []int64 {
	out := make([]int64, 0, len(s.Users))
	for _, u := range s.Users {
		out = append(out, u.RegNo)
	}
	return out
}

// NarrowStores intersects requested store reg_nos with the scope. An empty
// request means the whole scope; an out-of-scope request narrows to nothing
// rather than raising an authorization error.
func (s AccessScope) NarrowStores(requested []int64) []int64 {
	return narrow(requested, s.StoreRegNos())
}

// NarrowUsers intersects requested user reg_nos with the scope.
func (s AccessScope) NarrowUsers(requested []int64) []int64 {
	return narrow(requested, s.UserRegNos())
}

func narrow(requested, allowed []int64) []int64 {
	if len(requested) == 0 {
		return allowed
	}
	allowedSet := make(map[int64]struct{}, len(allowed))
	for _, v := range allowed {
		allowedSet[v] = struct{}{}
	}
	out := make([]int64, 0, len(requested))
	for _, v := range requested {
		if _, ok := allowedSet[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Directory supplies the tenant membership facts the resolver needs.
type Directory interface {
	ProfileStores(ctx context.Context, profileID int64) ([]StoreRef, error)
	ProfileUsers(ctx context.Context, profileID int64) ([]UserRef, error)
	EmployeeStores(ctx context.Context, profileID, userRegNo int64) ([]StoreRef, error)
	EmployeeGrants(ctx context.Context, profileID, userRegNo int64) (shared.Grants, error)
	OwnerGrants(ctx context.Context, profileID int64) (shared.Grants, error)
	UserRef(ctx context.Context, profileID, userRegNo int64) (UserRef, error)
}

// Resolver computes AccessScope values from the tenant directory.
type Resolver struct {
	dir    Directory
	logger *slog.Logger
}

// NewResolver constructs a Resolver.
func NewResolver(dir Directory, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{dir: dir, logger: logger}
}

// Resolve computes the visibility scope for the principal. Owners see all
// tenant stores and users; employees see the stores they are registered to
// and, unless granted the view-all permission, only themselves.
func (r *Resolver) Resolve(ctx context.Context, p *shared.Principal) (AccessScope, error) {
	if p == nil {
		return AccessScope{}, fmt.Errorf("scope: principal required")
	}

	if p.IsOwner {
		stores, err := r.dir.ProfileStores(ctx, p.ProfileID)
		if err != nil {
			return AccessScope{}, fmt.Errorf("scope: profile stores: %w", err)
		}
		users, err := r.dir.ProfileUsers(ctx, p.ProfileID)
		if err != nil {
			return AccessScope{}, fmt.Errorf("scope: profile users: %w", err)
		}
		grants, err := r.dir.OwnerGrants(ctx, p.ProfileID)
		if err != nil {
			return AccessScope{}, fmt.Errorf("scope: owner grants: %w", err)
		}
		return AccessScope{Stores: stores, Users: users, CanViewProfit: grants.CanViewProfits}, nil
	}

	stores, err := r.dir.EmployeeStores(ctx, p.ProfileID, p.UserRegNo)
	if err != nil {
		return AccessScope{}, fmt.Errorf("scope: employee stores: %w", err)
	}
	grants, err := r.dir.EmployeeGrants(ctx, p.ProfileID, p.UserRegNo)
	if err != nil {
		return AccessScope{}, fmt.Errorf("scope: employee grants: %w", err)
	}

	var users []UserRef
	if grants.CanViewAllReports {
		users, err = r.dir.ProfileUsers(ctx, p.ProfileID)
		if err != nil {
			return AccessScope{}, fmt.Errorf("scope: profile users: %w", err)
		}
	} else {
		self, err := r.dir.UserRef(ctx, p.ProfileID, p.UserRegNo)
		if err != nil {
			return AccessScope{}, fmt.Errorf("scope: user lookup: %w", err)
		}
		users = []UserRef{self}
	}

	return AccessScope{Stores: stores, Users: users, CanViewProfit: grants.CanViewProfits}, nil
}
