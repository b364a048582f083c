package categories

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

func (s *Service) List(ctx context.Context, profileID int64) ([]Category, error) {
	return s.repo.List(ctx, profileID)
}

func (s *Service) Get(ctx context.Context, profileID, regNo int64) (Category, error) {
	return s.repo.Get(ctx, profileID, regNo)
}

func (s *Service) Create(ctx context.Context, category Category) (Category, error) {
	if err := validate(category); err != nil {
		return Category{}, err
	}
	return s.repo.Create(ctx, category)
}

func (s *Service) Update(ctx context.Context, category Category) error {
	if err := validate(category); err != nil {
		return err
	}
	return s.repo.Update(ctx, category)
}

func (s *Service) Delete(ctx context.Context, profileID, regNo int64) error {
	return s.repo.Delete(ctx, profileID, regNo)
}

func validate(c Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: category name is required", httpx.ErrValidation)
	}
	return nil
}
