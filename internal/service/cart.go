package service

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
)

type CartService struct {
	Repo   *repo.GormRepo
	Events EventPublisher
}

type CartLine struct {
	models.CartItem
	LineTotal decimal.Decimal `json:"lineTotal"`
}

type Cart struct {
	UserID   uint            `json:"userId"`
	Items    []CartLine      `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type cartEvent struct {
	UserID    uint `json:"userId"`
	ProductID uint `json:"productId,omitempty"`
	ItemID    uint `json:"itemId,omitempty"`
	Quantity  int  `json:"quantity,omitempty"`
}

// GetCart returns the cart priced at the current catalog prices.
func (s *CartService) GetCart(ctx context.Context, p models.Principal, userID uint) (*Cart, error) {
	if err := authorize(p, userID); err != nil {
		return nil, err
	}
	items, err := s.Repo.GetCart(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "cart")
	}

	cart := &Cart{UserID: userID, Items: make([]CartLine, 0, len(items)), Subtotal: decimal.Zero}
	for _, it := range items {
		line := CartLine{CartItem: it, LineTotal: decimal.Zero}
		if it.Product != nil {
			line.LineTotal = LineTotal(it.Product.Price, it.Quantity)
		}
		cart.Subtotal = cart.Subtotal.Add(line.LineTotal)
		cart.Items = append(cart.Items, line)
	}
	return cart, nil
}

// AddItem adds quantity of a product, merging with an existing line. A
// non-positive quantity counts as one.
func (s *CartService) AddItem(ctx context.Context, p models.Principal, userID, productID uint, quantity int) (*models.CartItem, error) {
	if err := authorize(p, userID); err != nil {
		return nil, err
	}
	if productID == 0 {
		return nil, fmt.Errorf("product id is required: %w", ErrValidation)
	}
	if quantity <= 0 {
		quantity = 1
	}

	if _, err := s.Repo.GetProduct(ctx, productID); err != nil {
		return nil, storeErr(err, "product")
	}

	item := &models.CartItem{UserID: userID, ProductID: productID, Quantity: quantity}
	if err := s.Repo.AddToCart(ctx, item); err != nil {
		return nil, storeErr(err, "cart item")
	}

	logging.FromContext(ctx).Debug("cart_item_added", "svc", "cart", "user_id", userID, "product_id", productID, "quantity", item.Quantity)
	publishAsync(ctx, s.Events, mykafka.TopicCart, "cart_item_added", key(userID),
		cartEvent{UserID: userID, ProductID: productID, ItemID: item.ID, Quantity: quantity})
	return item, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, p models.Principal, userID, itemID uint, quantity int) (*models.CartItem, error) {
	if err := authorize(p, userID); err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1: %w", ErrValidation)
	}

	item, err := s.Repo.UpdateCartItemQuantity(ctx, userID, itemID, quantity)
	if err != nil {
		return nil, storeErr(err, "cart item")
	}
	publishAsync(ctx, s.Events, mykafka.TopicCart, "cart_item_updated", key(userID),
		cartEvent{UserID: userID, ProductID: item.ProductID, ItemID: itemID, Quantity: quantity})
	return item, nil
}

func (s *CartService) RemoveItem(ctx context.Context, p models.Principal, userID, itemID uint) error {
	if err := authorize(p, userID); err != nil {
		return err
	}
	if err := s.Repo.DeleteCartItem(ctx, userID, itemID); err != nil {
		return storeErr(err, "cart item")
	}
	publishAsync(ctx, s.Events, mykafka.TopicCart, "cart_item_removed", key(userID),
		cartEvent{UserID: userID, ItemID: itemID})
	return nil
}

// Clear empties the cart and reports how many lines were removed.
func (s *CartService) Clear(ctx context.Context, p models.Principal, userID uint) (int64, error) {
	if err := authorize(p, userID); err != nil {
		return 0, err
	}
	n, err := s.Repo.ClearCart(ctx, userID)
	if err != nil {
		return 0, storeErr(err, "cart")
	}
	publishAsync(ctx, s.Events, mykafka.TopicCart, "cart_cleared", key(userID), cartEvent{UserID: userID})
	return n, nil
}

func key(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
