package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) GetCart(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var items []models.CartItem
	if err := r.DB.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetCartItem(ctx context.Context, userID, itemID uint) (*models.CartItem, error) {
	return first[models.CartItem](ctx, r.DB, "id = ? AND user_id = ?", itemID, userID)
}

// AddToCart increments the quantity of an existing (user, product) row or
// inserts a new one. item is refreshed with the stored row.
func (r *GormRepo) AddToCart(ctx context.Context, item *models.CartItem) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.CartItem{}).
			Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).
			Update("quantity", gorm.Expr("quantity + ?", item.Quantity))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return tx.Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).First(item).Error
		}

		return tx.Create(item).Error
	})
}

func (r *GormRepo) UpdateCartItemQuantity(ctx context.Context, userID, itemID uint, quantity int) (*models.CartItem, error) {
	res := r.DB.WithContext(ctx).Model(&models.CartItem{}).
		Where("id = ? AND user_id = ?", itemID, userID).
		Update("quantity", quantity)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return r.GetCartItem(ctx, userID, itemID)
}

func (r *GormRepo) DeleteCartItem(ctx context.Context, userID, itemID uint) error {
	return deleteWhere[models.CartItem](ctx, r.DB, "id = ? AND user_id = ?", itemID, userID)
}

// ClearCart deletes every cart row of the user and reports how many were removed.
func (r *GormRepo) ClearCart(ctx context.Context, userID uint) (int64, error) {
	res := r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{})
	return res.RowsAffected, res.Error
}
