package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

type OrderFilter struct {
	UserID *uint
	Status *models.OrderStatus
}

// CreateOrder inserts the order header and its Items.
func (r *GormRepo) CreateOrder(ctx context.Context, o *models.Order) error {
	return r.DB.WithContext(ctx).Create(o).Error
}

func (r *GormRepo) GetOrder(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	if err := r.DB.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		First(&o, id).Error; err != nil {
		return nil, err
	}
	return &o, nil
}

// ListOrders returns orders newest first.
func (r *GormRepo) ListOrders(ctx context.Context, f OrderFilter, offset, limit int) (int64, []models.Order, error) {
	q := r.DB.WithContext(ctx).Model(&models.Order{})
	if f.UserID != nil {
		q = q.Where("user_id = ?", *f.UserID)
	}
	if f.Status != nil {
		q = q.Where("status = ?", *f.Status)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	var orders []models.Order
	if err := q.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&orders).Error; err != nil {
		return 0, nil, err
	}
	return total, orders, nil
}

// UpdateOrderStatus loads the order inside a transaction, lets check veto the
// change and then stores next. It returns the previous status and the updated order.
func (r *GormRepo) UpdateOrderStatus(ctx context.Context, id uint, next models.OrderStatus, check func(o *models.Order) error) (models.OrderStatus, *models.Order, error) {
	var (
		prev  models.OrderStatus
		order models.Order
	)
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&order, id).Error; err != nil {
			return err
		}
		prev = order.Status
		if check != nil {
			if err := check(&order); err != nil {
				return err
			}
		}
		if err := tx.Model(&order).Update("status", next).Error; err != nil {
			return err
		}
		return tx.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).First(&order, id).Error
	})
	if err != nil {
		return "", nil, err
	}
	return prev, &order, nil
}
