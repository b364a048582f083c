package shared

import "context"

// Role identifies the kind of principal making a request.
type Role string

const (
	// RoleOwner is the tenant owner account.
	RoleOwner Role = "owner"
	// RoleManager is an employee with the manager role group.
	RoleManager Role = "manager"
	// RoleCashier is a regular employee.
	RoleCashier Role = "cashier"
)

// Principal is the authenticated identity attached to each request.
type Principal struct {
	ProfileID int64
	UserRegNo int64
	Role      Role
	IsOwner   bool
}

type principalContextKey struct{}

// ContextWithPrincipal stores the principal in context.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalContextKey{}, p)
}

// PrincipalFromContext extracts the principal from context.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalContextKey{}).(*Principal)
	return p
}
