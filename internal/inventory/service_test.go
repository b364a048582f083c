package inventory

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillpoint/tillpoint/internal/catalog/products"
	"github.com/tillpoint/tillpoint/internal/platform/httpx"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestDeriveStatus(t *testing.T) {
	assert.Equal(t, StatusOutOfStock, DeriveStatus(dec("0"), dec("5")))
	assert.Equal(t, StatusOutOfStock, DeriveStatus(dec("-2"), dec("5")))
	assert.Equal(t, StatusLowStock, DeriveStatus(dec("5"), dec("5")))
	assert.Equal(t, StatusLowStock, DeriveStatus(dec("1"), dec("5")))
	assert.Equal(t, StatusInStock, DeriveStatus(dec("6"), dec("5")))
	assert.Equal(t, StatusInStock, DeriveStatus(dec("1"), dec("0")))
}

type memRepo struct {
	levels map[[2]int64]*StockLevel
}

func newMemRepo() *memRepo {
	return &memRepo{levels: map[[2]int64]*StockLevel{}}
}

func (m *memRepo) key(productRegNo, storeRegNo int64) [2]int64 {
	return [2]int64{productRegNo, storeRegNo}
}

func (m *memRepo) List(ctx context.Context, profileID, storeRegNo int64, status string) ([]StockLevel, error) {
	var out []StockLevel
	for _, l := range m.levels {
		if storeRegNo != 0 && l.StoreRegNo != storeRegNo {
			continue
		}
		if status != "" && l.Status != status {
			continue
		}
		out = append(out, *l)
	}
	return out, nil
}

func (m *memRepo) Get(ctx context.Context, profileID, productRegNo, storeRegNo int64) (StockLevel, error) {
	l, ok := m.levels[m.key(productRegNo, storeRegNo)]
	if !ok {
		return StockLevel{}, httpx.ErrNotFound
	}
	return *l, nil
}

func (m *memRepo) Upsert(ctx context.Context, level StockLevel) (StockLevel, error) {
	level.Status = DeriveStatus(level.Units, level.MinimumUnits)
	copied := level
	m.levels[m.key(level.ProductRegNo, level.StoreRegNo)] = &copied
	return level, nil
}

func (m *memRepo) AdjustUnits(ctx context.Context, tx pgx.Tx, profileID, productRegNo, storeRegNo int64, delta decimal.Decimal) error {
	l, ok := m.levels[m.key(productRegNo, storeRegNo)]
	if !ok {
		return httpx.ErrNotFound
	}
	l.Units = l.Units.Add(delta)
	l.Status = DeriveStatus(l.Units, l.MinimumUnits)
	return nil
}

func (m *memRepo) UnitsOnHand(ctx context.Context, profileID, regNo int64) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, l := range m.levels {
		if l.ProductRegNo == regNo {
			total = total.Add(l.Units)
		}
	}
	return total, nil
}

func (m *memRepo) LowStock(ctx context.Context, profileID int64) ([]StockLevel, error) {
	var out []StockLevel
	for _, l := range m.levels {
		if l.Status == StatusLowStock || l.Status == StatusOutOfStock {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (m *memRepo) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

var _ Repository = (*memRepo)(nil)

// keeps the interface honest against the pgx implementation
var _ Repository = NewRepository((*pgxpool.Pool)(nil))

type stubTransforms map[int64][]products.TransformMapEntry

func (s stubTransforms) TransformMap(ctx context.Context, profileID, regNo int64) ([]products.TransformMapEntry, error) {
	return s[regNo], nil
}

func seed(repo *memRepo, productRegNo, storeRegNo int64, units string) {
	level := StockLevel{
		ProfileID:    1,
		ProductRegNo: productRegNo,
		StoreRegNo:   storeRegNo,
		Units:        dec(units),
		IsSellable:   true,
	}
	level.Status = DeriveStatus(level.Units, level.MinimumUnits)
	copied := level
	repo.levels[repo.key(productRegNo, storeRegNo)] = &copied
}

func TestSaveRejectsNegativeUnits(t *testing.T) {
	svc := NewService(nil, newMemRepo(), stubTransforms{})
	_, err := svc.Save(context.Background(), StockLevel{Units: dec("-1")})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestTransformForward(t *testing.T) {
	repo := newMemRepo()
	seed(repo, 30, 1, "10") // sack
	seed(repo, 31, 1, "0")  // 1kg bags
	transforms := stubTransforms{
		30: {{ComponentRegNo: 31, Quantity: dec("25")}},
	}
	svc := NewService(nil, repo, transforms)

	err := svc.Transform(context.Background(), 1, 1, 30, dec("2"), false)
	require.NoError(t, err)

	parent, _ := repo.Get(context.Background(), 1, 30, 1)
	component, _ := repo.Get(context.Background(), 1, 31, 1)
	assert.True(t, parent.Units.Equal(dec("8")))
	assert.True(t, component.Units.Equal(dec("50")))
}

func TestTransformReverse(t *testing.T) {
	repo := newMemRepo()
	seed(repo, 30, 1, "0")
	seed(repo, 31, 1, "50")
	transforms := stubTransforms{
		30: {{ComponentRegNo: 31, Quantity: dec("25")}},
	}
	svc := NewService(nil, repo, transforms)

	err := svc.Transform(context.Background(), 1, 1, 30, dec("1"), true)
	require.NoError(t, err)

	parent, _ := repo.Get(context.Background(), 1, 30, 1)
	component, _ := repo.Get(context.Background(), 1, 31, 1)
	assert.True(t, parent.Units.Equal(dec("1")))
	assert.True(t, component.Units.Equal(dec("25")))
}

func TestTransformRequiresMap(t *testing.T) {
	svc := NewService(nil, newMemRepo(), stubTransforms{})
	err := svc.Transform(context.Background(), 1, 1, 99, dec("1"), false)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestTransformRejectsZeroUnits(t *testing.T) {
	svc := NewService(nil, newMemRepo(), stubTransforms{})
	err := svc.Transform(context.Background(), 1, 1, 30, dec("0"), false)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestReverseEquivalentTruncates(t *testing.T) {
	repo := newMemRepo()
	seed(repo, 31, 1, "60")
	transforms := stubTransforms{
		30: {{ComponentRegNo: 31, Quantity: dec("25")}},
	}
	svc := NewService(nil, repo, transforms)

	eq, err := svc.ReverseEquivalent(context.Background(), 1, 30, 31)
	require.NoError(t, err)
	assert.Equal(t, "2.40", eq.StringFixed(2))
}
