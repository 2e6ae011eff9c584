package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

var ErrRefreshExpiredOrRevoked = errors.New("refresh token expired or revoked")

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	return r.DB.WithContext(ctx).Create(u).Error
}

func (r *GormRepo) GetUser(ctx context.Context, id uint) (*models.User, error) {
	return first[models.User](ctx, r.DB, "id = ?", id)
}

func (r *GormRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return first[models.User](ctx, r.DB, "username = ?", username)
}

func (r *GormRepo) ListUsers(ctx context.Context, offset, limit int) (int64, []models.User, error) {
	var (
		total int64
		users []models.User
	)
	q := r.DB.WithContext(ctx).Model(&models.User{}).Session(&gorm.Session{})
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}
	if err := q.Order("id ASC").Offset(offset).Limit(limit).Find(&users).Error; err != nil {
		return 0, nil, err
	}
	return total, users, nil
}

// DeleteUser removes the user together with everything the user owns,
// orders and their line items included.
func (r *GormRepo) DeleteUser(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		orderIDs := tx.Model(&models.Order{}).Select("id").Where("user_id = ?", id)
		if err := tx.Where("order_id IN (?)", orderIDs).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Order{}).Error; err != nil {
			return err
		}
		for _, m := range models.PerUser() {
			if err := tx.Where("user_id = ?", id).Delete(m).Error; err != nil {
				return err
			}
		}

		res := tx.Delete(&models.User{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *GormRepo) AddRefreshToken(ctx context.Context, t *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Create(t).Error
}

func refreshUsable(db *gorm.DB, jti, tokenHash string) error {
	var stored models.RefreshToken
	if err := db.Where("jti = ?", jti).First(&stored).Error; err != nil {
		return err
	}
	if stored.Revoked || stored.ExpiresAt < time.Now().Unix() || stored.TokenHash != tokenHash {
		return ErrRefreshExpiredOrRevoked
	}
	return nil
}

// RotateRefreshToken revokes oldJTI and stores next in one transaction. The old
// token must still be live and its stored hash must match oldHash.
func (r *GormRepo) RotateRefreshToken(ctx context.Context, oldJTI, oldHash string, next *models.RefreshToken) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := refreshUsable(tx, oldJTI, oldHash); err != nil {
			return err
		}

		res := tx.Model(&models.RefreshToken{}).
			Where("jti = ? AND revoked = ?", oldJTI, false).
			Update("revoked", true)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRefreshExpiredOrRevoked
		}

		return tx.Create(next).Error
	})
}

func (r *GormRepo) RevokeRefreshToken(ctx context.Context, jti string) error {
	return r.DB.WithContext(ctx).Model(&models.RefreshToken{}).
		Where("jti = ?", jti).
		Update("revoked", true).Error
}
