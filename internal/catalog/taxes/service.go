package taxes

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tillpoint/tillpoint/internal/platform/httpx"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, profileID int64) ([]Tax, error) {
	return s.repo.List(ctx, profileID)
}

func (s *Service) Get(ctx context.Context, profileID, regNo int64) (Tax, error) {
	return s.repo.Get(ctx, profileID, regNo)
}

func (s *Service) Create(ctx context.Context, tax Tax) (Tax, error) {
	if err := validate(tax); err != nil {
		return Tax{}, err
	}
	tax.Rate = tax.Rate.Round(2)
	return s.repo.Create(ctx, tax)
}

func (s *Service) Update(ctx context.Context, tax Tax) error {
	if err := validate(tax); err != nil {
		return err
	}
	tax.Rate = tax.Rate.Round(2)
	return s.repo.Update(ctx, tax)
}

func (s *Service) Delete(ctx context.Context, profileID, regNo int64) error {
	return s.repo.Delete(ctx, profileID, regNo)
}

func validate(t Tax) error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("%w: tax name is required", httpx.ErrValidation)
	}
	if t.Rate.IsNegative() || t.Rate.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: tax rate must be between 0 and 100", httpx.ErrValidation)
	}
	return nil
}
