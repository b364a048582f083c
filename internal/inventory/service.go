package inventory

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/tillpoint/tillpoint/internal/catalog/costing"
	"github.com/tillpoint/tillpoint/internal/catalog/products"
	"github.com/tillpoint/tillpoint/internal/platform/httpx"
)

// TransformSource supplies the forward production map of a
// transformable product.
type TransformSource interface {
	TransformMap(ctx context.Context, profileID, regNo int64) ([]products.TransformMapEntry, error)
}

type Service struct {
	logger     *slog.Logger
	repo       Repository
	transforms TransformSource
}

func NewService(logger *slog.Logger, repo Repository, transforms TransformSource) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{logger: logger, repo: repo, transforms: transforms}
}

func (s *Service) List(ctx context.Context, profileID, storeRegNo int64, status string) ([]StockLevel, error) {
	return s.repo.List(ctx, profileID, storeRegNo, status)
}

func (s *Service) Get(ctx context.Context, profileID, productRegNo, storeRegNo int64) (StockLevel, error) {
	return s.repo.Get(ctx, profileID, productRegNo, storeRegNo)
}

func (s *Service) Save(ctx context.Context, level StockLevel) (StockLevel, error) {
	if level.Units.Sign() < 0 {
		return StockLevel{}, fmt.Errorf("%w: units cannot be negative", httpx.ErrValidation)
	}
	if level.MinimumUnits.Sign() < 0 {
		return StockLevel{}, fmt.Errorf("%w: minimum units cannot be negative", httpx.ErrValidation)
	}
	return s.repo.Upsert(ctx, level)
}

func (s *Service) UnitsOnHand(ctx context.Context, profileID, regNo int64) (decimal.Decimal, error) {
	return s.repo.UnitsOnHand(ctx, profileID, regNo)
}

// Transform breaks parent units down into their mapped components at one
// store: it deducts units from the parent's stock and credits
// units times the map quantity to each component. When reverse is set
// the flow inverts, repackaging component stock back into parent units.
func (s *Service) Transform(ctx context.Context, profileID, storeRegNo, parentRegNo int64, units decimal.Decimal, reverse bool) error {
	if units.Sign() <= 0 {
		return fmt.Errorf("%w: units must be positive", httpx.ErrValidation)
	}
	entries, err := s.transforms.TransformMap(ctx, profileID, parentRegNo)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("%w: product has no transform map", httpx.ErrValidation)
	}

	return s.repo.WithTx(ctx, func(tx pgx.Tx) error {
		if !reverse {
			if err := s.repo.AdjustUnits(ctx, tx, profileID, parentRegNo, storeRegNo, units.Neg()); err != nil {
				return err
			}
			for _, e := range entries {
				credit := units.Mul(e.Quantity)
				if err := s.repo.AdjustUnits(ctx, tx, profileID, e.ComponentRegNo, storeRegNo, credit); err != nil {
					return err
				}
			}
			return nil
		}

		for _, e := range entries {
			debit := units.Mul(e.Quantity)
			if err := s.repo.AdjustUnits(ctx, tx, profileID, e.ComponentRegNo, storeRegNo, debit.Neg()); err != nil {
				return err
			}
		}
		return s.repo.AdjustUnits(ctx, tx, profileID, parentRegNo, storeRegNo, units)
	})
}

// ReverseEquivalent reports how many whole parent units the current
// component stock at every store could repackage into.
func (s *Service) ReverseEquivalent(ctx context.Context, profileID, parentRegNo, componentRegNo int64) (decimal.Decimal, error) {
	entries, err := s.transforms.TransformMap(ctx, profileID, parentRegNo)
	if err != nil {
		return decimal.Zero, err
	}
	for _, e := range entries {
		if e.ComponentRegNo != componentRegNo {
			continue
		}
		units, err := s.repo.UnitsOnHand(ctx, profileID, componentRegNo)
		if err != nil {
			return decimal.Zero, err
		}
		return costing.EquivalentQuantity(units, e.Quantity), nil
	}
	return decimal.Zero, httpx.ErrNotFound
}
