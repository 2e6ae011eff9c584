package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testutil"
)

type fakeIndex struct {
	mu        sync.Mutex
	enabled   bool
	searchErr error
	indexed   map[uint]models.Product
}

func newFakeIndex(enabled bool) *fakeIndex {
	return &fakeIndex{enabled: enabled, indexed: map[uint]models.Product{}}
}

func (f *fakeIndex) Enabled() bool { return f.enabled }

func (f *fakeIndex) IndexProduct(_ context.Context, p *models.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed[p.ID] = *p
	return nil
}

func (f *fakeIndex) DeleteProduct(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.indexed, id)
	return nil
}

func (f *fakeIndex) Search(_ context.Context, _ string, _, _ int) (int64, []models.Product, error) {
	if f.searchErr != nil {
		return 0, nil, f.searchErr
	}
	return 1, []models.Product{{ID: 42, Name: "from index"}}, nil
}

func decp(s string) *decimal.Decimal {
	v := decimal.RequireFromString(s)
	return &v
}

func TestProductLifecycle(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	idx := newFakeIndex(true)
	svc := &CatalogService{Repo: f.repo, Index: idx}
	ctx := context.Background()

	cat, err := svc.SaveCategory(ctx, admin, 0, CategoryInput{Name: strp("Kitchen")})
	require.NoError(t, err)

	prod, err := svc.CreateProduct(ctx, admin, ProductInput{
		Name: strp("  Mug "), Price: decp("7.50"), Stock: intp(3), CategoryID: &cat.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, "Mug", prod.Name)
	assert.Contains(t, idx.indexed, prod.ID)

	prod, err = svc.UpdateProduct(ctx, admin, prod.ID, ProductInput{Price: decp("8.00")})
	require.NoError(t, err)
	assert.True(t, prod.Price.Equal(d("8.00")))
	assert.Equal(t, 3, prod.Stock)

	total, items, err := svc.ListProducts(ctx, repo.ProductFilter{CategoryID: cat.ID}, pageOf(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)

	require.NoError(t, svc.DeleteProduct(ctx, admin, prod.ID))
	assert.NotContains(t, idx.indexed, prod.ID)
	_, err = svc.GetProduct(ctx, prod.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProductValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := &CatalogService{Repo: f.repo}
	ctx := context.Background()
	u := testutil.User(t, f.db, "alice", models.RoleUser)

	_, err := svc.CreateProduct(ctx, userPrincipal(u), ProductInput{Name: strp("Mug"), Price: decp("1")})
	assert.ErrorIs(t, err, ErrForbidden)

	missingCat := uint(77)
	tests := []struct {
		name string
		in   ProductInput
	}{
		{"no price", ProductInput{Name: strp("Mug")}},
		{"no name", ProductInput{Price: decp("1")}},
		{"negative price", ProductInput{Name: strp("Mug"), Price: decp("-1")}},
		{"negative stock", ProductInput{Name: strp("Mug"), Price: decp("1"), Stock: intp(-1)}},
		{"discount over 100", ProductInput{Name: strp("Mug"), Price: decp("1"), DiscountPercent: intp(101)}},
		{"unknown category", ProductInput{Name: strp("Mug"), Price: decp("1"), CategoryID: &missingCat}},
	}
	for _, tt := range tests {
		_, err := svc.CreateProduct(ctx, admin, tt.in)
		assert.ErrorIs(t, err, ErrValidation, tt.name)
	}
}

func TestSearchFallsBackToSQL(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	testutil.Product(t, f.db, "Blue Mug", "7.50")
	testutil.Product(t, f.db, "Lamp", "20.00")

	idx := newFakeIndex(true)
	svc := &CatalogService{Repo: f.repo, Index: idx}

	total, items, err := svc.SearchProducts(ctx, "mug", pageOf(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "from index", items[0].Name)

	idx.searchErr = errors.New("cluster down")
	total, items, err = svc.SearchProducts(ctx, "MUG", pageOf(1, 10))
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "Blue Mug", items[0].Name)

	_, _, err = svc.SearchProducts(ctx, "  ", pageOf(1, 10))
	assert.ErrorIs(t, err, ErrValidation)
}

func TestShippingOptions(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := &CatalogService{Repo: f.repo}
	ctx := context.Background()
	u := testutil.User(t, f.db, "alice", models.RoleUser)

	std, err := svc.SaveShippingOption(ctx, admin, 0, ShippingOptionInput{Name: strp("Standard"), Price: decp("4.95")})
	require.NoError(t, err)
	assert.True(t, std.Active)

	off := false
	_, err = svc.SaveShippingOption(ctx, admin, 0, ShippingOptionInput{Name: strp("Drone"), Price: decp("50"), Active: &off})
	require.NoError(t, err)

	visible, err := svc.ListShippingOptions(ctx, userPrincipal(u))
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "Standard", visible[0].Name)

	all, err := svc.ListShippingOptions(ctx, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = svc.SaveShippingOption(ctx, admin, 0, ShippingOptionInput{Name: strp("Free")})
	assert.ErrorIs(t, err, ErrValidation)

	require.NoError(t, svc.DeleteShippingOption(ctx, admin, std.ID))
	assert.ErrorIs(t, svc.DeleteShippingOption(ctx, admin, std.ID), ErrNotFound)
}

func TestCategoriesAndSuppliers(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	svc := &CatalogService{Repo: f.repo}
	ctx := context.Background()

	_, err := svc.SaveCategory(ctx, admin, 0, CategoryInput{Name: strp("Garden")})
	require.NoError(t, err)
	_, err = svc.SaveCategory(ctx, admin, 0, CategoryInput{Name: strp("Garden")})
	assert.ErrorIs(t, err, ErrConflict)
	_, err = svc.SaveCategory(ctx, admin, 0, CategoryInput{})
	assert.ErrorIs(t, err, ErrValidation)

	sup, err := svc.SaveSupplier(ctx, admin, 0, SupplierInput{Name: strp("Acme"), ContactEmail: strp("sales@acme.test")})
	require.NoError(t, err)
	sup, err = svc.SaveSupplier(ctx, admin, sup.ID, SupplierInput{Phone: strp("+31 20 123")})
	require.NoError(t, err)
	assert.Equal(t, "Acme", sup.Name)
	assert.Equal(t, "+31 20 123", sup.Phone)

	list, err := svc.ListSuppliers(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, svc.DeleteSupplier(ctx, admin, sup.ID))
	_, err = svc.GetSupplier(ctx, sup.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
