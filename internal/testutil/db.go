package testutil

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/hash"
	"github.com/Skotchmaster/storefront/internal/models"
)

func init() {
	hash.Cost = bcrypt.MinCost
}

// NewDB opens a private in-memory sqlite database with every table migrated.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := config.Open(context.Background(), config.DriverSQLite, ":memory:")
	require.NoError(t, err)
	require.NoError(t, config.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func User(t *testing.T, db *gorm.DB, username, role string) *models.User {
	t.Helper()

	pw, err := hash.HashPassword("secret123")
	require.NoError(t, err)
	u := &models.User{Username: username, PasswordHash: pw, Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

func Product(t *testing.T, db *gorm.DB, name, price string) *models.Product {
	t.Helper()

	p := &models.Product{Name: name, Price: decimal.RequireFromString(price), Stock: 10}
	require.NoError(t, db.Create(p).Error)
	return p
}

func ShippingOption(t *testing.T, db *gorm.DB, name, price string, active bool) *models.ShippingOption {
	t.Helper()

	o := &models.ShippingOption{Name: name, Price: decimal.RequireFromString(price), EstimatedDays: 3, Active: active}
	require.NoError(t, db.Create(o).Error)
	return o
}

func CartItem(t *testing.T, db *gorm.DB, userID, productID uint, qty int) *models.CartItem {
	t.Helper()

	ci := &models.CartItem{UserID: userID, ProductID: productID, Quantity: qty}
	require.NoError(t, db.Create(ci).Error)
	return ci
}
