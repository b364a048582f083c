package products

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillpoint/tillpoint/internal/catalog/costing"
	"github.com/tillpoint/tillpoint/internal/platform/httpx"
)

type stubRepo struct {
	products   map[int64]Product
	components map[int64][]BundleComponent
	transforms map[int64][]TransformMapEntry

	replacedComponents []BundleComponent
	replacedTransforms []TransformMapEntry
}

func newStubRepo() *stubRepo {
	return &stubRepo{
		products:   map[int64]Product{},
		components: map[int64][]BundleComponent{},
		transforms: map[int64][]TransformMapEntry{},
	}
}

func (s *stubRepo) List(ctx context.Context, profileID int64, filters ListFilters) ([]Product, error) {
	var out []Product
	for _, p := range s.products {
		if !p.IsVariantChild {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubRepo) Get(ctx context.Context, profileID, regNo int64) (Product, error) {
	p, ok := s.products[regNo]
	if !ok {
		return Product{}, httpx.ErrNotFound
	}
	return p, nil
}

func (s *stubRepo) Create(ctx context.Context, product Product) (Product, error) {
	product.RegNo = int64(len(s.products) + 1)
	s.products[product.RegNo] = product
	return product, nil
}

func (s *stubRepo) Update(ctx context.Context, product Product) error {
	if _, ok := s.products[product.RegNo]; !ok {
		return httpx.ErrNotFound
	}
	s.products[product.RegNo] = product
	return nil
}

func (s *stubRepo) Delete(ctx context.Context, profileID, regNo int64) error {
	if _, ok := s.products[regNo]; !ok {
		return httpx.ErrNotFound
	}
	delete(s.products, regNo)
	return nil
}

func (s *stubRepo) Variants(ctx context.Context, profileID, parentRegNo int64) ([]Product, error) {
	var out []Product
	for _, p := range s.products {
		if p.ParentRegNo == parentRegNo {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubRepo) Components(ctx context.Context, profileID, regNo int64) ([]BundleComponent, error) {
	return s.components[regNo], nil
}

func (s *stubRepo) ReplaceComponents(ctx context.Context, profileID, regNo int64, components []BundleComponent) error {
	s.replacedComponents = components
	s.components[regNo] = components
	return nil
}

func (s *stubRepo) TransformMap(ctx context.Context, profileID, regNo int64) ([]TransformMapEntry, error) {
	return s.transforms[regNo], nil
}

func (s *stubRepo) ReplaceTransformMap(ctx context.Context, profileID, regNo int64, entries []TransformMapEntry) error {
	s.replacedTransforms = entries
	s.transforms[regNo] = entries
	return nil
}

func (s *stubRepo) ListTransformable(ctx context.Context, profileID int64) ([]Product, error) {
	var out []Product
	for _, p := range s.products {
		if p.IsTransformable {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubRepo) ProductCost(ctx context.Context, profileID, regNo int64) (decimal.Decimal, bool, bool, error) {
	p, ok := s.products[regNo]
	if !ok {
		return decimal.Zero, false, false, nil
	}
	return p.Cost, p.IsBundle, true, nil
}

func (s *stubRepo) BundleComponents(ctx context.Context, profileID, regNo int64) ([]costing.Component, error) {
	var out []costing.Component
	for _, c := range s.components[regNo] {
		out = append(out, costing.Component{RegNo: c.ComponentRegNo, Quantity: c.Quantity})
	}
	return out, nil
}

type stubStock map[int64]decimal.Decimal

func (s stubStock) UnitsOnHand(ctx context.Context, profileID, regNo int64) (decimal.Decimal, error) {
	return s[regNo], nil
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestService(repo *stubRepo, stock StockSource) *Service {
	return NewService(nil, repo, repo, stock)
}

func TestCreateRejectsBundleVariant(t *testing.T) {
	svc := newTestService(newStubRepo(), nil)

	_, err := svc.Create(context.Background(), Product{
		ProfileID:      1,
		Name:           "Gift Box",
		IsBundle:       true,
		IsVariantChild: true,
		ParentRegNo:    5,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, httpx.ErrValidation))
}

func TestCreateVariantRequiresParent(t *testing.T) {
	repo := newStubRepo()
	svc := newTestService(repo, nil)

	_, err := svc.Create(context.Background(), Product{
		ProfileID:      1,
		Name:           "Small",
		IsVariantChild: true,
	})
	require.ErrorIs(t, err, httpx.ErrValidation)

	parent, err := svc.Create(context.Background(), Product{ProfileID: 1, Name: "T-Shirt"})
	require.NoError(t, err)

	child, err := svc.Create(context.Background(), Product{
		ProfileID:      1,
		Name:           "T-Shirt / Small",
		IsVariantChild: true,
		ParentRegNo:    parent.RegNo,
	})
	require.NoError(t, err)
	assert.Equal(t, parent.RegNo, child.ParentRegNo)
}

func TestCreateRejectsParentOnNonVariant(t *testing.T) {
	svc := newTestService(newStubRepo(), nil)

	_, err := svc.Create(context.Background(), Product{
		ProfileID:   1,
		Name:        "Plain",
		ParentRegNo: 9,
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestGetBundleResolvesCost(t *testing.T) {
	repo := newStubRepo()
	repo.products[10] = Product{RegNo: 10, Name: "Sugar 1kg", Cost: dec("120")}
	repo.products[11] = Product{RegNo: 11, Name: "Flour 1kg", Cost: dec("1200")}
	repo.products[20] = Product{RegNo: 20, Name: "Baking Kit", IsBundle: true}
	repo.components[20] = []BundleComponent{
		{ComponentRegNo: 10, Quantity: dec("30")},
		{ComponentRegNo: 11, Quantity: dec("54")},
	}
	svc := newTestService(repo, nil)

	view, err := svc.Get(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, "68400.00", view.Cost)
}

func TestGetAttachesVariants(t *testing.T) {
	repo := newStubRepo()
	repo.products[1] = Product{RegNo: 1, Name: "T-Shirt"}
	repo.products[2] = Product{RegNo: 2, Name: "T-Shirt / Small", IsVariantChild: true, ParentRegNo: 1}
	repo.products[3] = Product{RegNo: 3, Name: "T-Shirt / Large", IsVariantChild: true, ParentRegNo: 1}
	svc := newTestService(repo, nil)

	view, err := svc.Get(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.True(t, view.IsVariant)
	assert.Len(t, view.VariantData, 2)
}

func TestReplaceComponentsRejectsSelf(t *testing.T) {
	repo := newStubRepo()
	repo.products[20] = Product{RegNo: 20, Name: "Kit", IsBundle: true}
	svc := newTestService(repo, nil)

	err := svc.ReplaceComponents(context.Background(), 1, 20, []BundleComponent{
		{ComponentRegNo: 20, Quantity: dec("1")},
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestReplaceComponentsRejectsUnknownComponent(t *testing.T) {
	repo := newStubRepo()
	repo.products[20] = Product{RegNo: 20, Name: "Kit", IsBundle: true}
	svc := newTestService(repo, nil)

	err := svc.ReplaceComponents(context.Background(), 1, 20, []BundleComponent{
		{ComponentRegNo: 99, Quantity: dec("1")},
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestTransformIndexDerivesReverseEquivalents(t *testing.T) {
	repo := newStubRepo()
	repo.products[30] = Product{RegNo: 30, Name: "Rice Sack 25kg", IsTransformable: true}
	repo.products[31] = Product{RegNo: 31, Name: "Rice 1kg"}
	repo.transforms[30] = []TransformMapEntry{
		{ComponentRegNo: 31, ComponentName: "Rice 1kg", Quantity: dec("25")},
	}
	stock := stubStock{31: dec("60")}
	svc := newTestService(repo, stock)

	rows, err := svc.TransformIndex(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Len(t, rows[0].ProductMap, 2)

	forward := rows[0].ProductMap[0]
	assert.False(t, forward.IsReverse)
	assert.Equal(t, "25.00", forward.EquivalentQuantity)

	reverse := rows[0].ProductMap[1]
	assert.True(t, reverse.IsReverse)
	assert.Equal(t, "2.40", reverse.EquivalentQuantity)
}
