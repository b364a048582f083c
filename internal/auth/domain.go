package auth

import "time"

// Account is a login-capable identity. Owners authenticate against the
// tenant profile itself; employees against their profile_users row.
type Account struct {
	ProfileID    int64
	UserRegNo    int64
	Email        string
	Name         string
	PasswordHash string
	Role         string
	IsOwner      bool
	IsActive     bool
	CreatedAt    time.Time
}
