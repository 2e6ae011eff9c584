package repo

import (
	"context"

	"gorm.io/gorm"
)

type GormRepo struct {
	DB *gorm.DB
}

// Transaction runs fn with a repository bound to a single database transaction.
// Returning an error from fn rolls everything back.
func (r *GormRepo) Transaction(ctx context.Context, fn func(tx *GormRepo) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormRepo{DB: tx})
	})
}

func (r *GormRepo) Ping(ctx context.Context) error {
	sqlDB, err := r.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func first[T any](ctx context.Context, db *gorm.DB, query string, args ...any) (*T, error) {
	var out T
	if err := db.WithContext(ctx).Where(query, args...).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

func deleteWhere[T any](ctx context.Context, db *gorm.DB, query string, args ...any) error {
	res := db.WithContext(ctx).Where(query, args...).Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
