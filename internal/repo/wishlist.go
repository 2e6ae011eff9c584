package repo

import (
	"context"

	"github.com/Skotchmaster/storefront/internal/models"
)

func (r *GormRepo) GetWishlist(ctx context.Context, userID uint) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	if err := r.DB.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// AddToWishlist is idempotent; created is false when the pair already existed.
func (r *GormRepo) AddToWishlist(ctx context.Context, userID, productID uint) (*models.WishlistItem, bool, error) {
	item := models.WishlistItem{UserID: userID, ProductID: productID}
	tx := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		FirstOrCreate(&item)
	if tx.Error != nil {
		return nil, false, tx.Error
	}
	return &item, tx.RowsAffected > 0, nil
}

func (r *GormRepo) RemoveFromWishlist(ctx context.Context, userID, productID uint) error {
	return deleteWhere[models.WishlistItem](ctx, r.DB, "user_id = ? AND product_id = ?", userID, productID)
}
