package discounts

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

func (s *Service) List(ctx context.Context, profileID int64) ([]Discount, error) {
	return s.repo.List(ctx, profileID)
}

func (s *Service) Get(ctx context.Context, profileID, regNo int64) (Discount, error) {
	return s.repo.Get(ctx, profileID, regNo)
}

func (s *Service) Create(ctx context.Context, discount Discount) (Discount, error) {
	if err := validate(discount); err != nil {
		return Discount{}, err
	}
	discount.Amount = discount.Amount.Round(2)
	return s.repo.Create(ctx, discount)
}

func (s *Service) Update(ctx context.Context, discount Discount) error {
	if err := validate(discount); err != nil {
		return err
	}
	discount.Amount = discount.Amount.Round(2)
	return s.repo.Update(ctx, discount)
}

func (s *Service) Delete(ctx context.Context, profileID, regNo int64) error {
	return s.repo.Delete(ctx, profileID, regNo)
}

func validate(d Discount) error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: discount name is required", httpx.ErrValidation)
	}
	if d.Amount.IsNegative() {
		return fmt.Errorf("%w: discount amount must not be negative", httpx.ErrValidation)
	}
	return nil
}
