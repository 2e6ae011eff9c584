package service

import (
	"context"
	"fmt"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type WishlistService struct {
	Repo *repo.GormRepo
}

func (s *WishlistService) List(ctx context.Context, p models.Principal, userID uint) ([]models.WishlistItem, error) {
	if err := authorize(p, userID); err != nil {
		return nil, err
	}
	items, err := s.Repo.GetWishlist(ctx, userID)
	return items, storeErr(err, "wishlist")
}

// Add is idempotent; created reports whether a new row was stored.
func (s *WishlistService) Add(ctx context.Context, p models.Principal, userID, productID uint) (*models.WishlistItem, bool, error) {
	if err := authorize(p, userID); err != nil {
		return nil, false, err
	}
	if productID == 0 {
		return nil, false, fmt.Errorf("product id is required: %w", ErrValidation)
	}
	if _, err := s.Repo.GetProduct(ctx, productID); err != nil {
		return nil, false, storeErr(err, "product")
	}

	item, created, err := s.Repo.AddToWishlist(ctx, userID, productID)
	if err != nil {
		return nil, false, storeErr(err, "wishlist item")
	}
	return item, created, nil
}

func (s *WishlistService) Remove(ctx context.Context, p models.Principal, userID, productID uint) error {
	if err := authorize(p, userID); err != nil {
		return err
	}
	return storeErr(s.Repo.RemoveFromWishlist(ctx, userID, productID), "wishlist item")
}
