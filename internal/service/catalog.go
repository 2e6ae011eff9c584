package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/mykafka"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/util"
)

type ProductIndex interface {
	Enabled() bool
	IndexProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

type CatalogService struct {
	Repo   *repo.GormRepo
	Index  ProductIndex
	Events EventPublisher
}

// ProductInput carries a create or a partial update; nil fields are left alone.
type ProductInput struct {
	Name            *string
	Description     *string
	Price           *decimal.Decimal
	Stock           *int
	CategoryID      *uint
	SupplierID      *uint
	Rating          *float64
	ReviewCount     *int
	DiscountPercent *int
	ImageURL        *string
}

func (in ProductInput) apply(p *models.Product) {
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.CategoryID != nil {
		p.CategoryID = nilIfZero(*in.CategoryID)
	}
	if in.SupplierID != nil {
		p.SupplierID = nilIfZero(*in.SupplierID)
	}
	if in.Rating != nil {
		p.Rating = *in.Rating
	}
	if in.ReviewCount != nil {
		p.ReviewCount = *in.ReviewCount
	}
	if in.DiscountPercent != nil {
		p.DiscountPercent = *in.DiscountPercent
	}
	if in.ImageURL != nil {
		p.ImageURL = *in.ImageURL
	}
}

func nilIfZero(id uint) *uint {
	if id == 0 {
		return nil
	}
	return &id
}

func validateProduct(p *models.Product) error {
	switch {
	case p.Name == "":
		return fmt.Errorf("product name is required: %w", ErrValidation)
	case p.Price.IsNegative():
		return fmt.Errorf("price must not be negative: %w", ErrValidation)
	case p.Stock < 0:
		return fmt.Errorf("stock must not be negative: %w", ErrValidation)
	case p.DiscountPercent < 0 || p.DiscountPercent > 100:
		return fmt.Errorf("discount must be between 0 and 100: %w", ErrValidation)
	case p.Rating < 0 || p.Rating > 5:
		return fmt.Errorf("rating must be between 0 and 5: %w", ErrValidation)
	case p.ReviewCount < 0:
		return fmt.Errorf("review count must not be negative: %w", ErrValidation)
	}
	return nil
}

func (s *CatalogService) checkRefs(ctx context.Context, p *models.Product) error {
	if p.CategoryID != nil {
		if _, err := s.Repo.GetCategory(ctx, *p.CategoryID); err != nil {
			return fmt.Errorf("category %d: %w", *p.CategoryID, ErrValidation)
		}
	}
	if p.SupplierID != nil {
		if _, err := s.Repo.GetSupplier(ctx, *p.SupplierID); err != nil {
			return fmt.Errorf("supplier %d: %w", *p.SupplierID, ErrValidation)
		}
	}
	return nil
}

func (s *CatalogService) ListProducts(ctx context.Context, f repo.ProductFilter, page util.Page) (int64, []models.Product, error) {
	total, items, err := s.Repo.GetProducts(ctx, f, page.Offset(), page.Size)
	if err != nil {
		return 0, nil, storeErr(err, "products")
	}
	return total, items, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, storeErr(err, "product")
	}
	return p, nil
}

// SearchProducts prefers the search index and falls back to SQL when the
// index is not configured or fails.
func (s *CatalogService) SearchProducts(ctx context.Context, query string, page util.Page) (int64, []models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return 0, nil, fmt.Errorf("search query is required: %w", ErrValidation)
	}

	if s.Index != nil && s.Index.Enabled() {
		total, items, err := s.Index.Search(ctx, query, page.Offset(), page.Size)
		if err == nil {
			return total, items, nil
		}
		logging.FromContext(ctx).Warn("search_index_failed", "svc", "catalog.search", "error", err)
	}

	total, items, err := s.Repo.SearchProducts(ctx, query, page.Offset(), page.Size)
	if err != nil {
		return 0, nil, storeErr(err, "products")
	}
	return total, items, nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, p models.Principal, in ProductInput) (*models.Product, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if in.Price == nil {
		return nil, fmt.Errorf("price is required: %w", ErrValidation)
	}

	prod := &models.Product{}
	in.apply(prod)
	if err := validateProduct(prod); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, prod); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateProduct(ctx, prod); err != nil {
		return nil, storeErr(err, "product")
	}

	s.productChanged(ctx, "product_created", prod)
	return prod, nil
}

func (s *CatalogService) UpdateProduct(ctx context.Context, p models.Principal, id uint, in ProductInput) (*models.Product, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	prod, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, storeErr(err, "product")
	}

	in.apply(prod)
	if err := validateProduct(prod); err != nil {
		return nil, err
	}
	if err := s.checkRefs(ctx, prod); err != nil {
		return nil, err
	}
	if err := s.Repo.SaveProduct(ctx, prod); err != nil {
		return nil, storeErr(err, "product")
	}

	s.productChanged(ctx, "product_updated", prod)
	return prod, nil
}

// DeleteProduct also drops the product from every cart and wishlist. Existing
// orders keep their snapshot lines.
func (s *CatalogService) DeleteProduct(ctx context.Context, p models.Principal, id uint) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return storeErr(err, "product")
	}

	if s.Index != nil {
		if err := s.Index.DeleteProduct(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("search_index_delete_failed", "svc", "catalog", "product_id", id, "error", err)
		}
	}
	publishAsync(ctx, s.Events, mykafka.TopicCatalog, "product_deleted", key(id), map[string]uint{"id": id})
	return nil
}

func (s *CatalogService) productChanged(ctx context.Context, eventType string, prod *models.Product) {
	if s.Index != nil {
		if err := s.Index.IndexProduct(ctx, prod); err != nil {
			logging.FromContext(ctx).Warn("search_index_failed", "svc", "catalog", "product_id", prod.ID, "error", err)
		}
	}
	publishAsync(ctx, s.Events, mykafka.TopicCatalog, eventType, key(prod.ID), prod)
}

type CategoryInput struct {
	Name        *string
	Description *string
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]models.Category, error) {
	items, err := s.Repo.GetCategories(ctx)
	return items, storeErr(err, "categories")
}

func (s *CatalogService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	c, err := s.Repo.GetCategory(ctx, id)
	if err != nil {
		return nil, storeErr(err, "category")
	}
	return c, nil
}

func (s *CatalogService) SaveCategory(ctx context.Context, p models.Principal, id uint, in CategoryInput) (*models.Category, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	c := &models.Category{}
	if id != 0 {
		var err error
		if c, err = s.Repo.GetCategory(ctx, id); err != nil {
			return nil, storeErr(err, "category")
		}
	}
	if in.Name != nil {
		c.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if c.Name == "" {
		return nil, fmt.Errorf("category name is required: %w", ErrValidation)
	}

	var err error
	if id == 0 {
		err = s.Repo.CreateCategory(ctx, c)
	} else {
		err = s.Repo.SaveCategory(ctx, c)
	}
	if err != nil {
		return nil, storeErr(err, "category")
	}
	publishAsync(ctx, s.Events, mykafka.TopicCatalog, "category_saved", key(c.ID), c)
	return c, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, p models.Principal, id uint) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	if err := s.Repo.DeleteCategory(ctx, id); err != nil {
		return storeErr(err, "category")
	}
	publishAsync(ctx, s.Events, mykafka.TopicCatalog, "category_deleted", key(id), map[string]uint{"id": id})
	return nil
}

type SupplierInput struct {
	Name         *string
	ContactEmail *string
	Phone        *string
}

func (s *CatalogService) ListSuppliers(ctx context.Context) ([]models.Supplier, error) {
	items, err := s.Repo.GetSuppliers(ctx)
	return items, storeErr(err, "suppliers")
}

func (s *CatalogService) GetSupplier(ctx context.Context, id uint) (*models.Supplier, error) {
	sup, err := s.Repo.GetSupplier(ctx, id)
	if err != nil {
		return nil, storeErr(err, "supplier")
	}
	return sup, nil
}

func (s *CatalogService) SaveSupplier(ctx context.Context, p models.Principal, id uint, in SupplierInput) (*models.Supplier, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	sup := &models.Supplier{}
	if id != 0 {
		var err error
		if sup, err = s.Repo.GetSupplier(ctx, id); err != nil {
			return nil, storeErr(err, "supplier")
		}
	}
	if in.Name != nil {
		sup.Name = strings.TrimSpace(*in.Name)
	}
	if in.ContactEmail != nil {
		sup.ContactEmail = strings.TrimSpace(*in.ContactEmail)
	}
	if in.Phone != nil {
		sup.Phone = strings.TrimSpace(*in.Phone)
	}
	if sup.Name == "" {
		return nil, fmt.Errorf("supplier name is required: %w", ErrValidation)
	}

	var err error
	if id == 0 {
		err = s.Repo.CreateSupplier(ctx, sup)
	} else {
		err = s.Repo.SaveSupplier(ctx, sup)
	}
	if err != nil {
		return nil, storeErr(err, "supplier")
	}
	return sup, nil
}

func (s *CatalogService) DeleteSupplier(ctx context.Context, p models.Principal, id uint) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	return storeErr(s.Repo.DeleteSupplier(ctx, id), "supplier")
}

type ShippingOptionInput struct {
	Name          *string
	Price         *decimal.Decimal
	EstimatedDays *int
	Active        *bool
}

// ListShippingOptions hides inactive options from everyone but admins.
func (s *CatalogService) ListShippingOptions(ctx context.Context, p models.Principal) ([]models.ShippingOption, error) {
	items, err := s.Repo.GetShippingOptions(ctx, !p.IsAdmin())
	return items, storeErr(err, "shipping options")
}

func (s *CatalogService) GetShippingOption(ctx context.Context, id uint) (*models.ShippingOption, error) {
	o, err := s.Repo.GetShippingOption(ctx, id)
	if err != nil {
		return nil, storeErr(err, "shipping option")
	}
	return o, nil
}

func (s *CatalogService) SaveShippingOption(ctx context.Context, p models.Principal, id uint, in ShippingOptionInput) (*models.ShippingOption, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}

	o := &models.ShippingOption{Active: true}
	if id != 0 {
		var err error
		if o, err = s.Repo.GetShippingOption(ctx, id); err != nil {
			return nil, storeErr(err, "shipping option")
		}
	} else if in.Price == nil {
		return nil, fmt.Errorf("price is required: %w", ErrValidation)
	}
	if in.Name != nil {
		o.Name = strings.TrimSpace(*in.Name)
	}
	if in.Price != nil {
		o.Price = *in.Price
	}
	if in.EstimatedDays != nil {
		o.EstimatedDays = *in.EstimatedDays
	}
	if in.Active != nil {
		o.Active = *in.Active
	}

	switch {
	case o.Name == "":
		return nil, fmt.Errorf("shipping option name is required: %w", ErrValidation)
	case o.Price.IsNegative():
		return nil, fmt.Errorf("price must not be negative: %w", ErrValidation)
	case o.EstimatedDays < 0:
		return nil, fmt.Errorf("estimated days must not be negative: %w", ErrValidation)
	}

	var err error
	if id == 0 {
		err = s.Repo.CreateShippingOption(ctx, o)
	} else {
		err = s.Repo.SaveShippingOption(ctx, o)
	}
	if err != nil {
		return nil, storeErr(err, "shipping option")
	}
	return o, nil
}

func (s *CatalogService) DeleteShippingOption(ctx context.Context, p models.Principal, id uint) error {
	if err := requireAdmin(p); err != nil {
		return err
	}
	return storeErr(s.Repo.DeleteShippingOption(ctx, id), "shipping option")
}
