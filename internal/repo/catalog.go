package repo

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/models"
)

type ProductFilter struct {
	CategoryID uint
	SupplierID uint
}

func (r *GormRepo) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	return first[models.Product](ctx, r.DB, "id = ?", id)
}

// GetProductsByIDs returns the products keyed by id; missing ids are absent.
func (r *GormRepo) GetProductsByIDs(ctx context.Context, ids []uint) (map[uint]models.Product, error) {
	out := make(map[uint]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var items []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	for _, p := range items {
		out[p.ID] = p
	}
	return out, nil
}

func (r *GormRepo) GetProducts(ctx context.Context, f ProductFilter, offset, limit int) (int64, []models.Product, error) {
	q := r.DB.WithContext(ctx).Model(&models.Product{})
	if f.CategoryID != 0 {
		q = q.Where("category_id = ?", f.CategoryID)
	}
	if f.SupplierID != 0 {
		q = q.Where("supplier_id = ?", f.SupplierID)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := q.Order("id ASC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

// SearchProducts is the SQL fallback used when no search index is configured.
func (r *GormRepo) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	pattern := "%" + strings.ToLower(strings.TrimSpace(q)) + "%"
	where := "LOWER(name) LIKE ? OR LOWER(description) LIKE ?"

	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Product{}).Where(where, pattern, pattern).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := r.DB.WithContext(ctx).
		Where(where, pattern, pattern).
		Order("rating DESC, id ASC").
		Offset(offset).
		Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}
	return total, items, nil
}

func (r *GormRepo) CreateProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Create(p).Error
}

func (r *GormRepo) SaveProduct(ctx context.Context, p *models.Product) error {
	return r.DB.WithContext(ctx).Save(p).Error
}

// DeleteProduct removes the product together with cart and wishlist rows that
// reference it. Order items keep their snapshot.
func (r *GormRepo) DeleteProduct(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.WishlistItem{}).Error; err != nil {
			return err
		}
		return deleteWhere[models.Product](ctx, tx, "id = ?", id)
	})
}

func (r *GormRepo) GetCategories(ctx context.Context) ([]models.Category, error) {
	var items []models.Category
	if err := r.DB.WithContext(ctx).Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	return first[models.Category](ctx, r.DB, "id = ?", id)
}

func (r *GormRepo) CreateCategory(ctx context.Context, c *models.Category) error {
	return r.DB.WithContext(ctx).Create(c).Error
}

func (r *GormRepo) SaveCategory(ctx context.Context, c *models.Category) error {
	return r.DB.WithContext(ctx).Save(c).Error
}

// DeleteCategory detaches products from the category before removing it.
func (r *GormRepo) DeleteCategory(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return err
		}
		return deleteWhere[models.Category](ctx, tx, "id = ?", id)
	})
}

func (r *GormRepo) GetSuppliers(ctx context.Context) ([]models.Supplier, error) {
	var items []models.Supplier
	if err := r.DB.WithContext(ctx).Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetSupplier(ctx context.Context, id uint) (*models.Supplier, error) {
	return first[models.Supplier](ctx, r.DB, "id = ?", id)
}

func (r *GormRepo) CreateSupplier(ctx context.Context, s *models.Supplier) error {
	return r.DB.WithContext(ctx).Create(s).Error
}

func (r *GormRepo) SaveSupplier(ctx context.Context, s *models.Supplier) error {
	return r.DB.WithContext(ctx).Save(s).Error
}

func (r *GormRepo) DeleteSupplier(ctx context.Context, id uint) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).Where("supplier_id = ?", id).Update("supplier_id", nil).Error; err != nil {
			return err
		}
		return deleteWhere[models.Supplier](ctx, tx, "id = ?", id)
	})
}

func (r *GormRepo) GetShippingOptions(ctx context.Context, activeOnly bool) ([]models.ShippingOption, error) {
	q := r.DB.WithContext(ctx).Order("price ASC, id ASC")
	if activeOnly {
		q = q.Where("active = ?", true)
	}
	var items []models.ShippingOption
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) GetShippingOption(ctx context.Context, id uint) (*models.ShippingOption, error) {
	return first[models.ShippingOption](ctx, r.DB, "id = ?", id)
}

func (r *GormRepo) CreateShippingOption(ctx context.Context, o *models.ShippingOption) error {
	return r.DB.WithContext(ctx).Create(o).Error
}

func (r *GormRepo) SaveShippingOption(ctx context.Context, o *models.ShippingOption) error {
	return r.DB.WithContext(ctx).Save(o).Error
}

func (r *GormRepo) DeleteShippingOption(ctx context.Context, id uint) error {
	return deleteWhere[models.ShippingOption](ctx, r.DB, "id = ?", id)
}
