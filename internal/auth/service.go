package auth

import (
	"context"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/tillpoint/tillpoint/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	tokens *Tokens
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *Tokens) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Authenticate validates email/password credentials and returns a signed
// bearer token for the account.
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, *Account, error) {
	acct, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, shared.ErrInvalidCredentials
	}
	if !acct.IsActive {
		return "", nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return "", nil, shared.ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(acct, time.Now().UTC())
	if err != nil {
		return "", nil, err
	}
	return token, acct, nil
}

// MaintenanceActive reports whether the tenant has maintenance mode on.
func (s *Service) MaintenanceActive(ctx context.Context, profileID int64) (bool, error) {
	return s.repo.MaintenanceMode(ctx, profileID)
}
