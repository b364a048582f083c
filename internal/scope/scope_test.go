package scope

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillpoint/tillpoint/internal/shared"
)

type stubDirectory struct {
	stores         []StoreRef
	users          []UserRef
	employeeStores map[int64][]StoreRef
	employeeGrants map[int64]shared.Grants
	ownerGrants    shared.Grants
}

func (s stubDirectory) ProfileStores(context.Context, int64) ([]StoreRef, error) {
	return s.stores, nil
}

func (s stubDirectory) ProfileUsers(context.Context, int64) ([]UserRef, error) {
	return s.users, nil
}

func (s stubDirectory) EmployeeStores(_ context.Context, _ int64, userRegNo int64) ([]StoreRef, error) {
	return s.employeeStores[userRegNo], nil
}

func (s stubDirectory) EmployeeGrants(_ context.Context, _ int64, userRegNo int64) (shared.Grants, error) {
	return s.employeeGrants[userRegNo], nil
}

func (s stubDirectory) OwnerGrants(context.Context, int64) (shared.Grants, error) {
	return s.ownerGrants, nil
}

func (s stubDirectory) UserRef(_ context.Context, _ int64, userRegNo int64) (UserRef, error) {
	for _, u := range s.users {
		if u.RegNo == userRegNo {
			return u, nil
		}
	}
	return UserRef{}, shared.ErrNotFound
}

func fixtureDirectory() stubDirectory {
	return stubDirectory{
		stores: []StoreRef{{RegNo: 100, Name: "Computer Store"}, {RegNo: 101, Name: "Cloth Store"}},
		users: []UserRef{
			{RegNo: 1, Name: "John Owner"},
			{RegNo: 2, Name: "James Cashier"},
			{RegNo: 3, Name: "Kate Cashier"},
		},
		employeeStores: map[int64][]StoreRef{
			2: {{RegNo: 100, Name: "Computer Store"}},
		},
		employeeGrants: map[int64]shared.Grants{
			2: {CanViewProfits: true},
			3: {},
		},
		ownerGrants: shared.Grants{CanViewProfits: true, CanViewAllReports: true},
	}
}

func TestResolveOwnerSeesEverything(t *testing.T) {
	resolver := NewResolver(fixtureDirectory(), nil)
	sc, err := resolver.Resolve(context.Background(), &shared.Principal{ProfileID: 1, UserRegNo: 1, Role: shared.RoleOwner, IsOwner: true})
	require.NoError(t, err)

	assert.Equal(t, []int64{100, 101}, sc.StoreRegNos())
	assert.Equal(t, []int64{1, 2, 3}, sc.UserRegNos())
	assert.True(t, sc.CanViewProfit)
}

func TestResolveEmployeeSelfOnly(t *testing.T) {
	resolver := NewResolver(fixtureDirectory(), nil)
	sc, err := resolver.Resolve(context.Background(), &shared.Principal{ProfileID: 1, UserRegNo: 2, Role: shared.RoleCashier})
	require.NoError(t, err)

	assert.Equal(t, []int64{100}, sc.StoreRegNos())
	assert.Equal(t, []int64{2}, sc.UserRegNos())
	assert.True(t, sc.CanViewProfit)
}

func TestResolveEmployeeWithoutStoresStillSeesSelf(t *testing.T) {
	resolver := NewResolver(fixtureDirectory(), nil)
	sc, err := resolver.Resolve(context.Background(), &shared.Principal{ProfileID: 1, UserRegNo: 3, Role: shared.RoleCashier})
	require.NoError(t, err)

	assert.Empty(t, sc.StoreRegNos())
	assert.Equal(t, []int64{3}, sc.UserRegNos())
	assert.False(t, sc.CanViewProfit)
}

func TestResolveEmployeeViewAllGrant(t *testing.T) {
	dir := fixtureDirectory()
	dir.employeeGrants[3] = shared.Grants{CanViewAllReports: true}

	resolver := NewResolver(dir, nil)
	sc, err := resolver.Resolve(context.Background(), &shared.Principal{ProfileID: 1, UserRegNo: 3, Role: shared.RoleCashier})
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3}, sc.UserRegNos())
	assert.False(t, sc.CanViewProfit)
}

func TestNarrowIntersectsWithScope(t *testing.T) {
	sc := AccessScope{
		Stores: []StoreRef{{RegNo: 100}, {RegNo: 101}},
		Users:  []UserRef{{RegNo: 2}},
	}

	// Empty request means the whole scope.
	assert.Equal(t, []int64{100, 101}, sc.NarrowStores(nil))

	// Foreign reg_nos narrow silently, never error.
	assert.Equal(t, []int64{101}, sc.NarrowStores([]int64{101, 999}))
	assert.Empty(t, sc.NarrowStores([]int64{999}))
	assert.Empty(t, sc.NarrowUsers([]int64{1, 3}))
}
