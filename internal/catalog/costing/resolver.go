// Package costing resolves the live unit cost of catalog products,
// including recursive resolution through bundle compositions and
// production-map conversions. Historical reports never call into this
// package: receipt lines carry their own cost snapshot.
package costing

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"
)

// Component is one (product, quantity) entry of a bundle composition or
// production map.
type Component struct {
	RegNo           int64
	Quantity        decimal.Decimal
	IsAutoRepackage bool
}

// Source supplies the catalog facts the resolver walks.
type Source interface {
	// ProductCost returns the product's own cost and whether it is a bundle.
	// It reports found=false for missing or deleted products.
	ProductCost(ctx context.Context, profileID, regNo int64) (cost decimal.Decimal, isBundle bool, found bool, err error)
	BundleComponents(ctx context.Context, profileID, regNo int64) ([]Component, error)
}

// Resolver walks bundle compositions to compute effective unit costs.
type Resolver struct {
	src    Source
	logger *slog.Logger
}

// NewResolver constructs a Resolver.
func NewResolver(src Source, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{src: src, logger: logger}
}

// ResolveUnitCost returns the effective unit cost of a product at the time
// of the call. Simple products return their own cost; bundles sum
// resolve(component) × quantity over their composition. A missing
// component contributes zero and is logged; so does a composition cycle,
// which is a data-integrity fault but must never break a report.
func (r *Resolver) ResolveUnitCost(ctx context.Context, profileID, regNo int64) (decimal.Decimal, error) {
	visited := make(map[int64]struct{})
	return r.resolve(ctx, profileID, regNo, visited)
}

func (r *Resolver) resolve(ctx context.Context, profileID, regNo int64, visited map[int64]struct{}) (decimal.Decimal, error) {
	if _, seen := visited[regNo]; seen {
		r.logger.Warn("bundle composition cycle detected",
			slog.Int64("profile_id", profileID), slog.Int64("product_reg_no", regNo))
		return decimal.Zero, nil
	}
	visited[regNo] = struct{}{}
	defer delete(visited, regNo)

	cost, isBundle, found, err := r.src.ProductCost(ctx, profileID, regNo)
	if err != nil {
		return decimal.Zero, err
	}
	if !found {
		r.logger.Warn("bundle component missing, contributing zero cost",
			slog.Int64("profile_id", profileID), slog.Int64("product_reg_no", regNo))
		return decimal.Zero, nil
	}
	if !isBundle {
		return cost, nil
	}

	components, err := r.src.BundleComponents(ctx, profileID, regNo)
	if err != nil {
		return decimal.Zero, err
	}
	total := decimal.Zero
	for _, c := range components {
		unit, err := r.resolve(ctx, profileID, c.RegNo, visited)
		if err != nil {
			return decimal.Zero, err
		}
		total = total.Add(unit.Mul(c.Quantity))
	}
	return total, nil
}

// EquivalentQuantity reports how many parent units the current component
// stock converts back to: component_units / quantity_per_parent_unit,
// truncated to 2 decimal places. A zero per-parent quantity yields zero.
func EquivalentQuantity(componentUnits, quantityPerParent decimal.Decimal) decimal.Decimal {
	if quantityPerParent.IsZero() {
		return decimal.Zero
	}
	return componentUnits.DivRound(quantityPerParent, 8).RoundDown(2)
}
