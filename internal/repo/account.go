package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

// owned is the shape shared by per-user records that carry a default flag.
type owned interface {
	models.Address | models.PaymentMethod
}

func listOwned[T owned](ctx context.Context, db *gorm.DB, userID uint) ([]T, error) {
	var out []T
	if err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// createOwned stores rec. The user's first record becomes the default, and a
// record created as default clears the flag on the others.
func createOwned[T owned](ctx context.Context, db *gorm.DB, rec *T, userID uint, isDefault *bool) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(new(T)).Where("user_id = ?", userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			*isDefault = true
		}
		if *isDefault {
			if err := tx.Model(new(T)).Where("user_id = ?", userID).Update("is_default", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(rec).Error
	})
}

// setDefault marks id as the user's only default record.
func setDefault[T owned](ctx context.Context, db *gorm.DB, userID, id uint) (*T, error) {
	var out T
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&out).Error; err != nil {
			return err
		}
		if err := tx.Model(new(T)).
			Where("user_id = ? AND id <> ?", userID, id).
			Update("is_default", false).Error; err != nil {
			return err
		}
		if err := tx.Model(new(T)).Where("id = ?", id).Update("is_default", true).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&out).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func defaultOf[T owned](ctx context.Context, db *gorm.DB, userID uint) (*T, error) {
	return first[T](ctx, db, "user_id = ? AND is_default = ?", userID, true)
}

func (r *GormRepo) GetAddresses(ctx context.Context, userID uint) ([]models.Address, error) {
	return listOwned[models.Address](ctx, r.DB, userID)
}

func (r *GormRepo) GetAddress(ctx context.Context, userID, id uint) (*models.Address, error) {
	return first[models.Address](ctx, r.DB, "id = ? AND user_id = ?", id, userID)
}

func (r *GormRepo) GetDefaultAddress(ctx context.Context, userID uint) (*models.Address, error) {
	return defaultOf[models.Address](ctx, r.DB, userID)
}

func (r *GormRepo) CreateAddress(ctx context.Context, a *models.Address) error {
	return createOwned(ctx, r.DB, a, a.UserID, &a.IsDefault)
}

// SaveAddress updates the editable fields; the default flag only moves through
// SetDefaultAddress.
func (r *GormRepo) SaveAddress(ctx context.Context, a *models.Address) error {
	res := r.DB.WithContext(ctx).Model(&models.Address{}).
		Where("id = ? AND user_id = ?", a.ID, a.UserID).
		Select("FullName", "Line1", "Line2", "City", "State", "PostalCode", "Country", "Phone").
		Updates(a)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) DeleteAddress(ctx context.Context, userID, id uint) error {
	return deleteWhere[models.Address](ctx, r.DB, "id = ? AND user_id = ?", id, userID)
}

func (r *GormRepo) SetDefaultAddress(ctx context.Context, userID, id uint) (*models.Address, error) {
	return setDefault[models.Address](ctx, r.DB, userID, id)
}

func (r *GormRepo) GetPaymentMethods(ctx context.Context, userID uint) ([]models.PaymentMethod, error) {
	return listOwned[models.PaymentMethod](ctx, r.DB, userID)
}

func (r *GormRepo) GetPaymentMethod(ctx context.Context, userID, id uint) (*models.PaymentMethod, error) {
	return first[models.PaymentMethod](ctx, r.DB, "id = ? AND user_id = ?", id, userID)
}

func (r *GormRepo) GetDefaultPaymentMethod(ctx context.Context, userID uint) (*models.PaymentMethod, error) {
	return defaultOf[models.PaymentMethod](ctx, r.DB, userID)
}

func (r *GormRepo) CreatePaymentMethod(ctx context.Context, p *models.PaymentMethod) error {
	return createOwned(ctx, r.DB, p, p.UserID, &p.IsDefault)
}

func (r *GormRepo) SavePaymentMethod(ctx context.Context, p *models.PaymentMethod) error {
	res := r.DB.WithContext(ctx).Model(&models.PaymentMethod{}).
		Where("id = ? AND user_id = ?", p.ID, p.UserID).
		Select("Type", "Provider", "HolderName", "Last4", "ExpiryMonth", "ExpiryYear").
		Updates(p)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) DeletePaymentMethod(ctx context.Context, userID, id uint) error {
	return deleteWhere[models.PaymentMethod](ctx, r.DB, "id = ? AND user_id = ?", id, userID)
}

func (r *GormRepo) SetDefaultPaymentMethod(ctx context.Context, userID, id uint) (*models.PaymentMethod, error) {
	return setDefault[models.PaymentMethod](ctx, r.DB, userID, id)
}
