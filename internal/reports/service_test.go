package reports

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillpoint/tillpoint/internal/scope"
	"github.com/tillpoint/tillpoint/internal/shared"
)

type stubDirectory struct {
	stores []scope.StoreRef
	users  []scope.UserRef
}

func (d *stubDirectory) ProfileStores(ctx context.Context, profileID int64) ([]scope.StoreRef, error) {
	return d.stores, nil
}

func (d *stubDirectory) ProfileUsers(ctx context.Context, profileID int64) ([]scope.UserRef, error) {
	return d.users, nil
}

func (d *stubDirectory) EmployeeStores(ctx context.Context, profileID, userRegNo int64) ([]scope.StoreRef, error) {
	return nil, nil
}

func (d *stubDirectory) EmployeeGrants(ctx context.Context, profileID, userRegNo int64) (shared.Grants, error) {
	return shared.Grants{}, nil
}

func (d *stubDirectory) OwnerGrants(ctx context.Context, profileID int64) (shared.Grants, error) {
	return shared.Grants{CanViewProfits: true}, nil
}

func (d *stubDirectory) UserRef(ctx context.Context, profileID, userRegNo int64) (scope.UserRef, error) {
	for _, u := range d.users {
		if u.RegNo == userRegNo {
			return u, nil
		}
	}
	return scope.UserRef{}, nil
}

type stubRepo struct {
	facts     []LineFact
	payments  []PaymentFact
	modifiers []ModifierFact

	lineCalls   int
	lastFilters Filters
}

func (r *stubRepo) LineFacts(ctx context.Context, profileID int64, filters Filters) ([]LineFact, error) {
	r.lineCalls++
	r.lastFilters = filters

	storeSet := make(map[int64]struct{}, len(filters.StoreRegNos))
	for _, s := range filters.StoreRegNos {
		storeSet[s] = struct{}{}
	}
	var out []LineFact
	for _, f := range r.facts {
		if _, ok := storeSet[f.StoreRegNo]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func (r *stubRepo) PaymentFacts(ctx context.Context, profileID int64, filters Filters) ([]PaymentFact, error) {
	return r.payments, nil
}

func (r *stubRepo) ModifierFacts(ctx context.Context, profileID int64, filters Filters) ([]ModifierFact, error) {
	return r.modifiers, nil
}

func (r *stubRepo) CategoryNames(ctx context.Context, profileID int64) (map[int64]string, error) {
	return map[int64]string{7: "Coffee Gear"}, nil
}

func (r *stubRepo) DiscountNames(ctx context.Context, profileID int64) (map[int64]string, error) {
	return map[int64]string{3: "Opening Promo"}, nil
}

func (r *stubRepo) TaxNames(ctx context.Context, profileID int64) (map[int64]string, error) {
	return map[int64]string{4: "VAT"}, nil
}

func (r *stubRepo) ProductNames(ctx context.Context, profileID int64) (map[int64]string, error) {
	return map[int64]string{}, nil
}

func ownerPrincipal() *shared.Principal {
	return &shared.Principal{ProfileID: 1, UserRegNo: 1, Role: shared.RoleOwner, IsOwner: true}
}

func newTestService(repo *stubRepo) *Service {
	dir := &stubDirectory{
		stores: []scope.StoreRef{{RegNo: 1, Name: "Downtown"}, {RegNo: 2, Name: "Harbour"}},
		users:  []scope.UserRef{{RegNo: 5, Name: "casual cashier"}},
	}
	return NewService(nil, repo, scope.NewResolver(dir, nil), NewCache(nil, 0))
}

func TestSummaryEndToEnd(t *testing.T) {
	repo := &stubRepo{facts: fixtureFacts()}
	svc := newTestService(repo)

	payload, err := svc.Summary(context.Background(), ownerPrincipal(), Query{
		After:  day("2024-03-05"),
		Before: day("2024-03-06"),
	})
	require.NoError(t, err)

	assert.Equal(t, "142237.00", payload.TotalSalesData.NetSales)
	assert.Equal(t, "67237.00", payload.TotalSalesData.Profits)
	require.Len(t, payload.Stores, 2)
	require.Len(t, payload.Users, 1)
}

func TestSummaryNarrowsForeignStoreToEmpty(t *testing.T) {
	repo := &stubRepo{facts: fixtureFacts()}
	svc := newTestService(repo)

	payload, err := svc.Summary(context.Background(), ownerPrincipal(), Query{
		After:       day("2024-03-05"),
		Before:      day("2024-03-06"),
		StoreRegNos: []int64{999},
	})
	require.NoError(t, err)

	// a reg_no outside the scope yields zeroed sums, not an error
	assert.Equal(t, "0.00", payload.TotalSalesData.GrossSales)
	assert.Empty(t, repo.lastFilters.StoreRegNos)
}

func TestSummaryUsesCacheAcrossIdenticalQueries(t *testing.T) {
	repo := &stubRepo{facts: fixtureFacts()}
	dir := &stubDirectory{
		stores: []scope.StoreRef{{RegNo: 1, Name: "Downtown"}, {RegNo: 2, Name: "Harbour"}},
		users:  []scope.UserRef{{RegNo: 5, Name: "casual cashier"}},
	}
	svc := NewService(nil, repo, scope.NewResolver(dir, nil), testCache(t))

	q := Query{After: day("2024-03-05"), Before: day("2024-03-06")}
	_, err := svc.Summary(context.Background(), ownerPrincipal(), q)
	require.NoError(t, err)
	payload, err := svc.Summary(context.Background(), ownerPrincipal(), q)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.lineCalls)
	assert.Equal(t, "142237.00", payload.TotalSalesData.NetSales)
}

func TestUserReportScopesFacts(t *testing.T) {
	repo := &stubRepo{facts: fixtureFacts()}
	svc := newTestService(repo)

	rows, sc, err := svc.UserReport(context.Background(), ownerPrincipal(), Query{
		After:  day("2024-03-05"),
		Before: day("2024-03-06"),
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "casual cashier", rows[0].Name)
	assert.True(t, sc.CanViewProfit)
}

func TestCategoryReportLoadsNames(t *testing.T) {
	repo := &stubRepo{facts: fixtureFacts()}
	svc := newTestService(repo)

	rows, _, err := svc.CategoryReport(context.Background(), ownerPrincipal(), Query{
		After:  day("2024-03-05"),
		Before: day("2024-03-06"),
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Coffee Gear", rows[0].Name)
}
