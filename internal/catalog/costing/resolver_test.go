package costing

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProduct struct {
	cost     decimal.Decimal
	isBundle bool
}

type stubSource struct {
	products   map[int64]stubProduct
	components map[int64][]Component
}

func (s stubSource) ProductCost(_ context.Context, _ int64, regNo int64) (decimal.Decimal, bool, bool, error) {
	p, ok := s.products[regNo]
	if !ok {
		return decimal.Zero, false, false, nil
	}
	return p.cost, p.isBundle, true, nil
}

func (s stubSource) BundleComponents(_ context.Context, _ int64, regNo int64) ([]Component, error) {
	return s.components[regNo], nil
}

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestResolveSimpleProduct(t *testing.T) {
	src := stubSource{products: map[int64]stubProduct{10: {cost: dec(750)}}}
	resolver := NewResolver(src, nil)

	cost, err := resolver.ResolveUnitCost(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, "750.00", cost.StringFixed(2))
}

func TestResolveBundleSumsComponents(t *testing.T) {
	src := stubSource{
		products: map[int64]stubProduct{
			1: {isBundle: true},
			2: {cost: dec(120)},
			3: {cost: dec(1200)},
		},
		components: map[int64][]Component{
			1: {
				{RegNo: 2, Quantity: dec(30)},
				{RegNo: 3, Quantity: dec(54)},
			},
		},
	}
	resolver := NewResolver(src, nil)

	cost, err := resolver.ResolveUnitCost(context.Background(), 1, 1)
	require.NoError(t, err)
	// 120*30 + 1200*54
	assert.Equal(t, "68400.00", cost.StringFixed(2))
}

func TestResolveNestedBundle(t *testing.T) {
	src := stubSource{
		products: map[int64]stubProduct{
			1: {isBundle: true},
			2: {isBundle: true},
			3: {cost: dec(5)},
		},
		components: map[int64][]Component{
			1: {{RegNo: 2, Quantity: dec(2)}},
			2: {{RegNo: 3, Quantity: dec(10)}},
		},
	}
	resolver := NewResolver(src, nil)

	cost, err := resolver.ResolveUnitCost(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "100.00", cost.StringFixed(2))
}

func TestResolveMissingComponentContributesZero(t *testing.T) {
	src := stubSource{
		products: map[int64]stubProduct{
			1: {isBundle: true},
			2: {cost: dec(40)},
		},
		components: map[int64][]Component{
			1: {
				{RegNo: 2, Quantity: dec(3)},
				{RegNo: 99, Quantity: dec(5)}, // pruned from catalog
			},
		},
	}
	resolver := NewResolver(src, nil)

	cost, err := resolver.ResolveUnitCost(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "120.00", cost.StringFixed(2))
}

func TestResolveCycleDoesNotRecurseForever(t *testing.T) {
	src := stubSource{
		products: map[int64]stubProduct{
			1: {isBundle: true},
			2: {isBundle: true},
		},
		components: map[int64][]Component{
			1: {{RegNo: 2, Quantity: dec(1)}},
			2: {{RegNo: 1, Quantity: dec(1)}},
		},
	}
	resolver := NewResolver(src, nil)

	cost, err := resolver.ResolveUnitCost(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.True(t, cost.IsZero())
}

func TestEquivalentQuantity(t *testing.T) {
	// 1 sack -> 25 units; 110 units on hand convert back to 4.40 sacks.
	got := EquivalentQuantity(dec(110), dec(25))
	assert.Equal(t, "4.40", got.StringFixed(2))

	// Truncation, not rounding up.
	got = EquivalentQuantity(dec(100), dec(3))
	assert.Equal(t, "33.33", got.StringFixed(2))

	assert.True(t, EquivalentQuantity(dec(10), decimal.Zero).IsZero())
}
