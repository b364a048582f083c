package products

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tillpoint/tillpoint/internal/catalog/costing"
	"github.com/tillpoint/tillpoint/internal/money"
	"github.com/tillpoint/tillpoint/internal/platform/httpx"
)

// StockSource reports the total on-hand units of a product across every
// store of the profile. The inventory package provides the live
// implementation; the transform-map index uses it to derive reverse
// conversion equivalents.
type StockSource interface {
	UnitsOnHand(ctx context.Context, profileID, regNo int64) (decimal.Decimal, error)
}

type Service struct {
	logger *slog.Logger
	repo   Repository
	costs  *costing.Resolver
	stock  StockSource
}

func NewService(logger *slog.Logger, repo Repository, source costing.Source, stock StockSource) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		logger: logger,
		repo:   repo,
		costs:  costing.NewResolver(source, logger),
		stock:  stock,
	}
}

func (s *Service) List(ctx context.Context, profileID int64, filters ListFilters) ([]View, error) {
	items, err := s.repo.List(ctx, profileID, filters)
	if err != nil {
		return nil, err
	}

	views := make([]View, 0, len(items))
	for _, p := range items {
		v := newView(p)
		variants, err := s.repo.Variants(ctx, profileID, p.RegNo)
		if err != nil {
			return nil, err
		}
		if len(variants) > 0 {
			v.IsVariant = true
			v.VariantData = make([]View, 0, len(variants))
			for _, child := range variants {
				v.VariantData = append(v.VariantData, newView(child))
			}
		}
		views = append(views, v)
	}
	return views, nil
}

func (s *Service) Get(ctx context.Context, profileID, regNo int64) (View, error) {
	p, err := s.repo.Get(ctx, profileID, regNo)
	if err != nil {
		return View{}, err
	}
	v := newView(p)
	if p.IsBundle {
		cost, err := s.costs.ResolveUnitCost(ctx, profileID, regNo)
		if err != nil {
			return View{}, err
		}
		v.Cost = money.Format(cost)
	}
	variants, err := s.repo.Variants(ctx, profileID, regNo)
	if err != nil {
		return View{}, err
	}
	if len(variants) > 0 {
		v.IsVariant = true
		v.VariantData = make([]View, 0, len(variants))
		for _, child := range variants {
			v.VariantData = append(v.VariantData, newView(child))
		}
	}
	return v, nil
}

func (s *Service) Create(ctx context.Context, product Product) (Product, error) {
	if err := s.checkKind(ctx, product); err != nil {
		return Product{}, err
	}
	return s.repo.Create(ctx, product)
}

func (s *Service) Update(ctx context.Context, product Product) error {
	if err := s.checkKind(ctx, product); err != nil {
		return err
	}
	return s.repo.Update(ctx, product)
}

func (s *Service) Delete(ctx context.Context, profileID, regNo int64) error {
	return s.repo.Delete(ctx, profileID, regNo)
}

// checkKind enforces that a product is exactly one of simple, bundle or
// variant child, and that a variant child points at an existing parent.
func (s *Service) checkKind(ctx context.Context, product Product) error {
	if strings.TrimSpace(product.Name) == "" {
		return fmt.Errorf("%w: product name is required", httpx.ErrValidation)
	}
	if product.IsBundle && product.IsVariantChild {
		return fmt.Errorf("%w: a bundle cannot be a variant", httpx.ErrValidation)
	}
	if product.IsBundle && product.IsTransformable {
		return fmt.Errorf("%w: a bundle cannot be transformable", httpx.ErrValidation)
	}
	if product.IsVariantChild {
		if product.ParentRegNo == 0 {
			return fmt.Errorf("%w: a variant requires a parent product", httpx.ErrValidation)
		}
		parent, err := s.repo.Get(ctx, product.ProfileID, product.ParentRegNo)
		if err != nil {
			return fmt.Errorf("%w: parent product not found", httpx.ErrValidation)
		}
		if parent.IsVariantChild || parent.IsBundle {
			return fmt.Errorf("%w: variants can only attach to a simple product", httpx.ErrValidation)
		}
	}
	if !product.IsVariantChild && product.ParentRegNo != 0 {
		return fmt.Errorf("%w: only variants carry a parent product", httpx.ErrValidation)
	}
	return nil
}

func (s *Service) Components(ctx context.Context, profileID, regNo int64) ([]BundleComponent, error) {
	product, err := s.repo.Get(ctx, profileID, regNo)
	if err != nil {
		return nil, err
	}
	if !product.IsBundle {
		return nil, fmt.Errorf("%w: product is not a bundle", httpx.ErrValidation)
	}
	return s.repo.Components(ctx, profileID, regNo)
}

func (s *Service) ReplaceComponents(ctx context.Context, profileID, regNo int64, components []BundleComponent) error {
	for _, c := range components {
		if c.ComponentRegNo == regNo {
			return fmt.Errorf("%w: a bundle cannot contain itself", httpx.ErrValidation)
		}
		if c.Quantity.Sign() <= 0 {
			return fmt.Errorf("%w: component quantity must be positive", httpx.ErrValidation)
		}
		if _, err := s.repo.Get(ctx, profileID, c.ComponentRegNo); err != nil {
			return fmt.Errorf("%w: component product not found", httpx.ErrValidation)
		}
	}
	return s.repo.ReplaceComponents(ctx, profileID, regNo, components)
}

func (s *Service) TransformMap(ctx context.Context, profileID, regNo int64) ([]TransformMapEntry, error) {
	product, err := s.repo.Get(ctx, profileID, regNo)
	if err != nil {
		return nil, err
	}
	if !product.IsTransformable {
		return nil, fmt.Errorf("%w: product is not transformable", httpx.ErrValidation)
	}
	return s.repo.TransformMap(ctx, profileID, regNo)
}

func (s *Service) ReplaceTransformMap(ctx context.Context, profileID, regNo int64, entries []TransformMapEntry) error {
	for _, e := range entries {
		if e.ComponentRegNo == regNo {
			return fmt.Errorf("%w: a product cannot transform into itself", httpx.ErrValidation)
		}
		if e.Quantity.Sign() <= 0 {
			return fmt.Errorf("%w: transform quantity must be positive", httpx.ErrValidation)
		}
		if _, err := s.repo.Get(ctx, profileID, e.ComponentRegNo); err != nil {
			return fmt.Errorf("%w: transform target not found", httpx.ErrValidation)
		}
	}
	return s.repo.ReplaceTransformMap(ctx, profileID, regNo, entries)
}

// TransformIndex lists every transformable product with its forward map
// entries plus the derived reverse entries. A reverse entry reports how
// many parent units the component's current stock is equivalent to.
func (s *Service) TransformIndex(ctx context.Context, profileID int64) ([]TransformMapView, error) {
	parents, err := s.repo.ListTransformable(ctx, profileID)
	if err != nil {
		return nil, err
	}

	out := make([]TransformMapView, 0, len(parents))
	for _, parent := range parents {
		entries, err := s.repo.TransformMap(ctx, profileID, parent.RegNo)
		if err != nil {
			return nil, err
		}

		row := TransformMapView{
			RegNo:      parent.RegNo,
			Name:       parent.Name,
			ProductMap: make([]TransformEntryView, 0, len(entries)*2),
		}
		for _, e := range entries {
			row.ProductMap = append(row.ProductMap, TransformEntryView{
				ProductRegNo:       e.ComponentRegNo,
				Name:               e.ComponentName,
				Quantity:           e.Quantity.StringFixed(2),
				IsAutoRepackage:    e.IsAutoRepackage,
				EquivalentQuantity: e.Quantity.StringFixed(2),
				IsReverse:          false,
			})
		}
		for _, e := range entries {
			units := decimal.Zero
			if s.stock != nil {
				units, err = s.stock.UnitsOnHand(ctx, profileID, e.ComponentRegNo)
				if err != nil {
					return nil, err
				}
			}
			row.ProductMap = append(row.ProductMap, TransformEntryView{
				ProductRegNo:       e.ComponentRegNo,
				Name:               e.ComponentName,
				Quantity:           e.Quantity.StringFixed(2),
				IsAutoRepackage:    e.IsAutoRepackage,
				EquivalentQuantity: costing.EquivalentQuantity(units, e.Quantity).StringFixed(2),
				IsReverse:          true,
			})
		}
		out = append(out, row)
	}
	return out, nil
}
