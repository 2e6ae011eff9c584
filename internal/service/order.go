package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/util"
)

type OrderService struct {
	Repo     *repo.GormRepo
	Notifier OrderNotifier
	Metrics  *metrics.Metrics

	// StrictTransitions rejects status changes outside the transition table.
	StrictTransitions bool

	NewOrderNumber func(now time.Time) string
	Now            func() time.Time
}

type CheckoutInput struct {
	ShippingOptionID  uint
	ShippingAddressID *uint
	PaymentMethodID   *uint
}

// NewOrderNumber formats ORD-YYYYMMDD-XXXXXXXXXXXX from the UTC date and 12
// random hex digits.
func NewOrderNumber(now time.Time) string {
	random := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))
	return fmt.Sprintf("ORD-%s-%s", now.UTC().Format("20060102"), random[:12])
}

func (s *OrderService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *OrderService) orderNumber() string {
	if s.NewOrderNumber != nil {
		return s.NewOrderNumber(s.now())
	}
	return NewOrderNumber(s.now())
}

// Checkout turns the user's cart into a Pending order. The order, its items and
// the cart removal commit together; any failure leaves the cart untouched.
func (s *OrderService) Checkout(ctx context.Context, p models.Principal, userID uint, in CheckoutInput) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.checkout", "user_id", userID)

	if err := authorize(p, userID); err != nil {
		return nil, err
	}
	if in.ShippingOptionID == 0 {
		return nil, fmt.Errorf("shipping option is required: %w", ErrValidation)
	}

	ship, err := s.Repo.GetShippingOption(ctx, in.ShippingOptionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("shipping option %d does not exist: %w", in.ShippingOptionID, ErrValidation)
		}
		return nil, storeErr(err, "shipping option")
	}
	if !ship.Active {
		return nil, fmt.Errorf("shipping option %d is not available: %w", ship.ID, ErrValidation)
	}

	addressID, err := s.resolveAddress(ctx, userID, in.ShippingAddressID)
	if err != nil {
		return nil, err
	}
	paymentID, err := s.resolvePayment(ctx, userID, in.PaymentMethodID)
	if err != nil {
		return nil, err
	}

	var order *models.Order
	err = s.Repo.Transaction(ctx, func(tx *repo.GormRepo) error {
		cart, err := tx.GetCart(ctx, userID)
		if err != nil {
			return storeErr(err, "cart")
		}
		if len(cart) == 0 {
			return ErrEmptyCart
		}

		lines := make([]Line, 0, len(cart))
		items := make([]models.OrderItem, 0, len(cart))
		for _, ci := range cart {
			if ci.Product == nil {
				return fmt.Errorf("cart item %d references a missing product: %w", ci.ID, ErrValidation)
			}
			lines = append(lines, Line{UnitPrice: ci.Product.Price, Quantity: ci.Quantity})
			items = append(items, models.OrderItem{
				ProductID:   ci.ProductID,
				ProductName: ci.Product.Name,
				Quantity:    ci.Quantity,
				UnitPrice:   ci.Product.Price,
			})
		}
		totals := ComputeTotals(lines, ship.Price)

		order = &models.Order{
			OrderNumber:       s.orderNumber(),
			UserID:            userID,
			ShippingOptionID:  ship.ID,
			ShippingAddressID: addressID,
			PaymentMethodID:   paymentID,
			Subtotal:          totals.Subtotal,
			TaxAmount:         totals.Tax,
			ShippingCost:      totals.Shipping,
			TotalPrice:        totals.Total,
			Status:            models.OrderStatusPending,
			Items:             items,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return storeErr(err, "order")
		}

		removed, err := tx.ClearCart(ctx, userID)
		if err != nil {
			return storeErr(err, "cart")
		}
		if removed != int64(len(cart)) {
			return fmt.Errorf("cart changed during checkout: %w", ErrConflict)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrValidation) {
			l.Warn("checkout_rejected", "reason", err.Error())
		} else {
			l.Error("checkout_failed", "error", err)
		}
		return nil, err
	}

	l.Info("order_placed", "order_id", order.ID, "order_number", order.OrderNumber, "total", order.TotalPrice.StringFixed(2))
	if s.Metrics != nil {
		s.Metrics.OrderPlaced()
	}
	if s.Notifier != nil {
		s.Notifier.NotifyOrder(ctx, notify.EventOrderCreated, order)
	}
	return order, nil
}

func (s *OrderService) resolveAddress(ctx context.Context, userID uint, id *uint) (*uint, error) {
	if id != nil && *id != 0 {
		a, err := s.Repo.GetAddress(ctx, userID, *id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("address %d does not belong to user: %w", *id, ErrValidation)
			}
			return nil, storeErr(err, "address")
		}
		return &a.ID, nil
	}

	a, err := s.Repo.GetDefaultAddress(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr(err, "address")
	}
	return &a.ID, nil
}

func (s *OrderService) resolvePayment(ctx context.Context, userID uint, id *uint) (*uint, error) {
	if id != nil && *id != 0 {
		pm, err := s.Repo.GetPaymentMethod(ctx, userID, *id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("payment method %d does not belong to user: %w", *id, ErrValidation)
			}
			return nil, storeErr(err, "payment method")
		}
		return &pm.ID, nil
	}

	pm, err := s.Repo.GetDefaultPaymentMethod(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, storeErr(err, "payment method")
	}
	return &pm.ID, nil
}

// UpdateStatus is the admin status change. The new status must be one of the
// known values; the transition table only applies with StrictTransitions.
func (s *OrderService) UpdateStatus(ctx context.Context, p models.Principal, orderID uint, status string) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.update_status", "order_id", orderID)

	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	next, ok := models.ParseOrderStatus(status)
	if !ok {
		return nil, fmt.Errorf("unknown order status %q: %w", status, ErrValidation)
	}

	prev, order, err := s.Repo.UpdateOrderStatus(ctx, orderID, next, func(o *models.Order) error {
		if s.StrictTransitions && !o.Status.CanTransition(next) {
			return fmt.Errorf("order %d cannot move from %s to %s: %w", o.ID, o.Status, next, ErrConflict)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, err
		}
		return nil, storeErr(err, "order")
	}

	l.Info("order_status_changed", "from", prev, "to", next)
	s.orderUpdated(ctx, order)
	return order, nil
}

// Cancel lets the owner (or an admin) cancel an order that has not shipped yet.
func (s *OrderService) Cancel(ctx context.Context, p models.Principal, orderID uint) (*models.Order, error) {
	l := logging.FromContext(ctx).With("svc", "order.cancel", "order_id", orderID)

	prev, order, err := s.Repo.UpdateOrderStatus(ctx, orderID, models.OrderStatusCancelled, func(o *models.Order) error {
		if err := authorize(p, o.UserID); err != nil {
			return err
		}
		if !o.Status.Cancellable() {
			return fmt.Errorf("order %d is %s: %w", o.ID, o.Status, ErrConflict)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrConflict) || errors.Is(err, ErrForbidden) {
			return nil, err
		}
		return nil, storeErr(err, "order")
	}

	l.Info("order_cancelled", "from", prev)
	s.orderUpdated(ctx, order)
	return order, nil
}

func (s *OrderService) orderUpdated(ctx context.Context, order *models.Order) {
	if s.Notifier != nil {
		s.Notifier.NotifyOrder(ctx, notify.EventOrderUpdated, order)
	}
}

func (s *OrderService) Get(ctx context.Context, p models.Principal, orderID uint) (*models.Order, error) {
	o, err := s.Repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, storeErr(err, "order")
	}
	if err := authorize(p, o.UserID); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *OrderService) ListByUser(ctx context.Context, p models.Principal, userID uint, page util.Page) (int64, []models.Order, error) {
	if err := authorize(p, userID); err != nil {
		return 0, nil, err
	}
	total, orders, err := s.Repo.ListOrders(ctx, repo.OrderFilter{UserID: &userID}, page.Offset(), page.Size)
	if err != nil {
		return 0, nil, storeErr(err, "orders")
	}
	return total, orders, nil
}

// List is the admin view over every order, optionally narrowed to one status.
func (s *OrderService) List(ctx context.Context, p models.Principal, status string, page util.Page) (int64, []models.Order, error) {
	if err := requireAdmin(p); err != nil {
		return 0, nil, err
	}
	var f repo.OrderFilter
	if status != "" {
		st, ok := models.ParseOrderStatus(status)
		if !ok {
			return 0, nil, fmt.Errorf("unknown order status %q: %w", status, ErrValidation)
		}
		f.Status = &st
	}
	total, orders, err := s.Repo.ListOrders(ctx, f, page.Offset(), page.Size)
	if err != nil {
		return 0, nil, storeErr(err, "orders")
	}
	return total, orders, nil
}
