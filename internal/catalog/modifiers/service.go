package modifiers

import (
	"context"
	"fmt"
	"strings"

	"github.com/tillpoint/tillpoint/internal/platform/httpx"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, profileID int64) ([]Modifier, error) {
	return s.repo.List(ctx, profileID)
}

func (s *Service) Get(ctx context.Context, profileID, regNo int64) (Modifier, error) {
	return s.repo.Get(ctx, profileID, regNo)
}

func (s *Service) Create(ctx context.Context, modifier Modifier) (Modifier, error) {
	if err := validate(modifier); err != nil {
		return Modifier{}, err
	}
	return s.repo.Create(ctx, modifier)
}

func (s *Service) Update(ctx context.Context, modifier Modifier) error {
	if err := validate(modifier); err != nil {
		return err
	}
	return s.repo.Update(ctx, modifier)
}

func (s *Service) Delete(ctx context.Context, profileID, regNo int64) error {
	return s.repo.Delete(ctx, profileID, regNo)
}

func validate(m Modifier) error {
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("%w: modifier name is required", httpx.ErrValidation)
	}
	for _, o := range m.Options {
		if strings.TrimSpace(o.Name) == "" {
			return fmt.Errorf("%w: modifier option name is required", httpx.ErrValidation)
		}
		if o.Price.IsNegative() {
			return fmt.Errorf("%w: modifier option price must not be negative", httpx.ErrValidation)
		}
	}
	return nil
}
