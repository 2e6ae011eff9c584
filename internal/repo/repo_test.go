package repo

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/testutil"
)

func newRepo(t *testing.T) (*GormRepo, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	return &GormRepo{DB: db}, db
}

func TestAddToCartIncrementsExistingLine(t *testing.T) {
	t.Parallel()

	r, db := newRepo(t)
	ctx := context.Background()
	u := testutil.User(t, db, "alice", models.RoleUser)
	p := testutil.Product(t, db, "Mug", "7.50")

	first := &models.CartItem{UserID: u.ID, ProductID: p.ID, Quantity: 2}
	require.NoError(t, r.AddToCart(ctx, first))
	second := &models.CartItem{UserID: u.ID, ProductID: p.ID, Quantity: 3}
	require.NoError(t, r.AddToCart(ctx, second))

	items, err := r.GetCart(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 5, items[0].Quantity)
	assert.Equal(t, first.ID, second.ID)
	require.NotNil(t, items[0].Product)
	assert.Equal(t, "Mug", items[0].Product.Name)
}

func TestCartItemOwnership(t *testing.T) {
	t.Parallel()

	r, db := newRepo(t)
	ctx := context.Background()
	alice := testutil.User(t, db, "alice", models.RoleUser)
	bob := testutil.User(t, db, "bob", models.RoleUser)
	p := testutil.Product(t, db, "Mug", "7.50")
	item := testutil.CartItem(t, db, alice.ID, p.ID, 1)

	_, err := r.UpdateCartItemQuantity(ctx, bob.ID, item.ID, 4)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, r.DeleteCartItem(ctx, bob.ID, item.ID), gorm.ErrRecordNotFound)

	updated, err := r.UpdateCartItemQuantity(ctx, alice.ID, item.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, updated.Quantity)

	n, err := r.ClearCart(ctx, alice.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestSetDefaultLeavesSingleDefault(t *testing.T) {
	t.Parallel()

	r, db := newRepo(t)
	ctx := context.Background()
	u := testutil.User(t, db, "alice", models.RoleUser)

	addrs := make([]*models.Address, 3)
	for i := range addrs {
		addrs[i] = &models.Address{UserID: u.ID, FullName: "Alice", Line1: "Main 1", City: "Town", PostalCode: "1000", Country: "NL"}
		require.NoError(t, r.CreateAddress(ctx, addrs[i]))
	}
	assert.True(t, addrs[0].IsDefault, "first address becomes default")
	assert.False(t, addrs[1].IsDefault)

	got, err := r.SetDefaultAddress(ctx, u.ID, addrs[2].ID)
	require.NoError(t, err)
	assert.True(t, got.IsDefault)

	list, err := r.GetAddresses(ctx, u.ID)
	require.NoError(t, err)
	defaults := 0
	for _, a := range list {
		if a.IsDefault {
			defaults++
			assert.Equal(t, addrs[2].ID, a.ID)
		}
	}
	assert.Equal(t, 1, defaults)

	pm := &models.PaymentMethod{UserID: u.ID, Type: "card", Last4: "4242"}
	require.NoError(t, r.CreatePaymentMethod(ctx, pm))
	pm2 := &models.PaymentMethod{UserID: u.ID, Type: "paypal", IsDefault: true}
	require.NoError(t, r.CreatePaymentMethod(ctx, pm2))

	def, err := r.GetDefaultPaymentMethod(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, pm2.ID, def.ID)
}

func TestSetDefaultRejectsForeignRecord(t *testing.T) {
	t.Parallel()

	r, db := newRepo(t)
	ctx := context.Background()
	alice := testutil.User(t, db, "alice", models.RoleUser)
	bob := testutil.User(t, db, "bob", models.RoleUser)

	pm := &models.PaymentMethod{UserID: alice.ID, Type: "card"}
	require.NoError(t, r.CreatePaymentMethod(ctx, pm))

	_, err := r.SetDefaultPaymentMethod(ctx, bob.ID, pm.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestWishlistIsIdempotent(t *testing.T) {
	t.Parallel()

	r, db := newRepo(t)
	ctx := context.Background()
	u := testutil.User(t, db, "alice", models.RoleUser)
	p := testutil.Product(t, db, "Mug", "7.50")

	_, created, err := r.AddToWishlist(ctx, u.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, created)
	_, created, err = r.AddToWishlist(ctx, u.ID, p.ID)
	require.NoError(t, err)
	assert.False(t, created)

	items, err := r.GetWishlist(ctx, u.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)

	require.NoError(t, r.RemoveFromWishlist(ctx, u.ID, p.ID))
	assert.ErrorIs(t, r.RemoveFromWishlist(ctx, u.ID, p.ID), gorm.ErrRecordNotFound)
}

func TestOrdersListAndStatus(t *testing.T) {
	t.Parallel()

	r, db := newRepo(t)
	ctx := context.Background()
	u := testutil.User(t, db, "alice", models.RoleUser)
	p := testutil.Product(t, db, "Mug", "7.50")
	ship := testutil.ShippingOption(t, db, "Standard", "5.00", true)

	for i, num := range []string{"ORD-1", "ORD-2"} {
		o := &models.Order{
			OrderNumber:      num,
			UserID:           u.ID,
			ShippingOptionID: ship.ID,
			Subtotal:         decimal.RequireFromString("7.50"),
			TaxAmount:        decimal.RequireFromString("0.75"),
			ShippingCost:     decimal.RequireFromString("5.00"),
			TotalPrice:       decimal.RequireFromString("13.25"),
			Status:           models.OrderStatusPending,
			Items: []models.OrderItem{
				{ProductID: p.ID, ProductName: p.Name, Quantity: i + 1, UnitPrice: p.Price},
			},
		}
		require.NoError(t, r.CreateOrder(ctx, o))
	}

	total, orders, err := r.ListOrders(ctx, OrderFilter{UserID: &u.ID}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, orders, 2)
	require.Len(t, orders[0].Items, 1)

	prev, updated, err := r.UpdateOrderStatus(ctx, orders[0].ID, models.OrderStatusShipped, nil)
	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, prev)
	assert.Equal(t, models.OrderStatusShipped, updated.Status)
	require.Len(t, updated.Items, 1)

	shipped := models.OrderStatusShipped
	total, _, err = r.ListOrders(ctx, OrderFilter{Status: &shipped}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, _, err = r.UpdateOrderStatus(ctx, 9999, models.OrderStatusShipped, nil)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestDeleteUserCascades(t *testing.T) {
	t.Parallel()

	r, db := newRepo(t)
	ctx := context.Background()
	u := testutil.User(t, db, "alice", models.RoleUser)
	other := testutil.User(t, db, "bob", models.RoleUser)
	p := testutil.Product(t, db, "Mug", "7.50")
	ship := testutil.ShippingOption(t, db, "Standard", "5.00", true)

	testutil.CartItem(t, db, u.ID, p.ID, 1)
	testutil.CartItem(t, db, other.ID, p.ID, 1)
	require.NoError(t, r.CreateAddress(ctx, &models.Address{UserID: u.ID, FullName: "A", Line1: "L", City: "C", PostalCode: "P", Country: "NL"}))
	require.NoError(t, r.CreateOrder(ctx, &models.Order{
		OrderNumber: "ORD-X", UserID: u.ID, ShippingOptionID: ship.ID, Status: models.OrderStatusPending,
		Items: []models.OrderItem{{ProductID: p.ID, ProductName: p.Name, Quantity: 1, UnitPrice: p.Price}},
	}))

	require.NoError(t, r.DeleteUser(ctx, u.ID))

	var count int64
	require.NoError(t, db.Model(&models.Order{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.OrderItem{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.Address{}).Count(&count).Error)
	assert.Zero(t, count)
	require.NoError(t, db.Model(&models.CartItem{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "other users keep their cart")

	assert.ErrorIs(t, r.DeleteUser(ctx, u.ID), gorm.ErrRecordNotFound)
}

func TestRotateRefreshToken(t *testing.T) {
	t.Parallel()

	r, db := newRepo(t)
	ctx := context.Background()
	u := testutil.User(t, db, "alice", models.RoleUser)
	exp := time.Now().Add(time.Hour).Unix()

	old := &models.RefreshToken{JTI: "jti-1", UserID: u.ID, TokenHash: "h1", ExpiresAt: exp}
	require.NoError(t, r.AddRefreshToken(ctx, old))

	next := &models.RefreshToken{JTI: "jti-2", UserID: u.ID, TokenHash: "h2", ExpiresAt: exp}
	require.NoError(t, r.RotateRefreshToken(ctx, "jti-1", "h1", next))

	again := &models.RefreshToken{JTI: "jti-3", UserID: u.ID, TokenHash: "h3", ExpiresAt: exp}
	assert.ErrorIs(t, r.RotateRefreshToken(ctx, "jti-1", "h1", again), ErrRefreshExpiredOrRevoked)
	assert.ErrorIs(t, r.RotateRefreshToken(ctx, "jti-2", "wrong", again), ErrRefreshExpiredOrRevoked)

	require.NoError(t, r.RevokeRefreshToken(ctx, "jti-2"))
	assert.ErrorIs(t, r.RotateRefreshToken(ctx, "jti-2", "h2", again), ErrRefreshExpiredOrRevoked)
}

func TestCatalogDeletes(t *testing.T) {
	t.Parallel()

	r, db := newRepo(t)
	ctx := context.Background()
	u := testutil.User(t, db, "alice", models.RoleUser)

	cat := &models.Category{Name: "Kitchen"}
	require.NoError(t, r.CreateCategory(ctx, cat))
	p := &models.Product{Name: "Mug", Price: decimal.RequireFromString("7.50"), CategoryID: &cat.ID}
	require.NoError(t, r.CreateProduct(ctx, p))
	testutil.CartItem(t, db, u.ID, p.ID, 2)

	total, items, err := r.GetProducts(ctx, ProductFilter{CategoryID: cat.ID}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, items, 1)

	require.NoError(t, r.DeleteCategory(ctx, cat.ID))
	got, err := r.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CategoryID)

	require.NoError(t, r.DeleteProduct(ctx, p.ID))
	cart, err := r.GetCart(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, cart)

	total, found, err := r.SearchProducts(ctx, "mug", 0, 10)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, found)
}
