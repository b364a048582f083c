package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tillpoint/tillpoint/internal/shared"
)

type stubRepo struct {
	accounts    map[string]*Account
	maintenance map[int64]bool
}

func (s *stubRepo) FindByEmail(_ context.Context, email string) (*Account, error) {
	acct, ok := s.accounts[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return acct, nil
}

func (s *stubRepo) MaintenanceMode(_ context.Context, profileID int64) (bool, error) {
	return s.maintenance[profileID], nil
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func newTestService(t *testing.T, accounts map[string]*Account) *Service {
	t.Helper()
	return NewService(&stubRepo{accounts: accounts}, NewTokens("test-secret", time.Hour))
}

func TestAuthenticateIssuesVerifiableToken(t *testing.T) {
	svc := newTestService(t, map[string]*Account{
		"owner@example.com": {
			ProfileID:    7,
			UserRegNo:    100,
			Email:        "owner@example.com",
			Name:         "Olive Owner",
			PasswordHash: hashPassword(t, "secret123"),
			Role:         string(shared.RoleOwner),
			IsOwner:      true,
			IsActive:     true,
		},
	})

	token, acct, err := svc.Authenticate(context.Background(), "owner@example.com", "secret123")
	require.NoError(t, err)
	require.Equal(t, "Olive Owner", acct.Name)

	principal, err := svc.tokens.Verify(token)
	require.NoError(t, err)
	require.Equal(t, int64(7), principal.ProfileID)
	require.Equal(t, int64(100), principal.UserRegNo)
	require.True(t, principal.IsOwner)
	require.Equal(t, shared.RoleOwner, principal.Role)
}

func TestAuthenticateRejectsBadPassword(t *testing.T) {
	svc := newTestService(t, map[string]*Account{
		"owner@example.com": {
			Email:        "owner@example.com",
			PasswordHash: hashPassword(t, "secret123"),
			IsActive:     true,
		},
	})

	_, _, err := svc.Authenticate(context.Background(), "owner@example.com", "wrong")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateRejectsUnknownEmail(t *testing.T) {
	svc := newTestService(t, map[string]*Account{})

	_, _, err := svc.Authenticate(context.Background(), "ghost@example.com", "whatever")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateRejectsInactiveAccount(t *testing.T) {
	svc := newTestService(t, map[string]*Account{
		"former@example.com": {
			Email:        "former@example.com",
			PasswordHash: hashPassword(t, "secret123"),
			IsActive:     false,
		},
	})

	_, _, err := svc.Authenticate(context.Background(), "former@example.com", "secret123")
	require.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestVerifyRejectsForgedToken(t *testing.T) {
	issuer := NewTokens("secret-a", time.Hour)
	verifier := NewTokens("secret-b", time.Hour)

	token, err := issuer.Issue(&Account{ProfileID: 1, Email: "a@b.c"}, time.Now().UTC())
	require.NoError(t, err)

	_, err = verifier.Verify(token)
	require.Error(t, err)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	tokens := NewTokens("secret", time.Minute)

	token, err := tokens.Issue(&Account{ProfileID: 1, Email: "a@b.c"}, time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)

	_, err = tokens.Verify(token)
	require.Error(t, err)
}
