package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

func productInput(req transport.ProductRequest) service.ProductInput {
	return service.ProductInput{
		Name:            req.Name,
		Description:     req.Description,
		Price:           req.Price,
		Stock:           req.Stock,
		CategoryID:      req.CategoryID,
		SupplierID:      req.SupplierID,
		Rating:          req.Rating,
		ReviewCount:     req.ReviewCount,
		DiscountPercent: req.DiscountPercent,
		ImageURL:        req.ImageURL,
	}
}

func queryUint(c echo.Context, name string) uint {
	v, err := strconv.ParseUint(c.QueryParam(name), 10, 64)
	if err != nil {
		return 0
	}
	return uint(v)
}

func (h *CatalogHTTP) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_products")

	page := util.ParsePage(c.QueryParam("page"), c.QueryParam("size"))
	filter := repo.ProductFilter{
		CategoryID: queryUint(c, "categoryId"),
		SupplierID: queryUint(c, "supplierId"),
	}

	total, items, err := h.Svc.ListProducts(ctx, filter, page)
	if err != nil {
		return fail(l, "get_products_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewPaged(items, page, total))
}

func (h *CatalogHTTP) SearchProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.search")

	page := util.ParsePage(c.QueryParam("page"), c.QueryParam("size"))
	total, items, err := h.Svc.SearchProducts(ctx, c.QueryParam("q"), page)
	if err != nil {
		return fail(l, "search_products_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewPaged(items, page, total))
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.get_product")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "get_product_failed", err.Error(), err)
	}
	p, err := h.Svc.GetProduct(ctx, id)
	if err != nil {
		return fail(l, "get_product_failed", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) CreateProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.create")

	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "product_create_error", "invalid body", err)
	}
	p, err := h.Svc.CreateProduct(ctx, principal(c), productInput(req))
	if err != nil {
		return fail(l, "product_create_error", err)
	}

	l.Info("product_created", "product_id", p.ID)
	return c.JSON(http.StatusCreated, p)
}

func (h *CatalogHTTP) PatchProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.patch")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "product_patch_error", err.Error(), err)
	}
	var req transport.ProductRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "product_patch_error", "invalid body", err)
	}
	p, err := h.Svc.UpdateProduct(ctx, principal(c), id, productInput(req))
	if err != nil {
		return fail(l, "product_patch_error", err)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) DeleteProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "product.delete")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "product_delete_error", err.Error(), err)
	}
	if err := h.Svc.DeleteProduct(ctx, principal(c), id); err != nil {
		return fail(l, "product_delete_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) GetCategories(c echo.Context) error {
	ctx := c.Request().Context()
	items, err := h.Svc.ListCategories(ctx)
	if err != nil {
		return fail(logging.FromContext(ctx).With("handler", "category.list"), "list_categories_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) GetCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.get")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "get_category_error", err.Error(), err)
	}
	cat, err := h.Svc.GetCategory(ctx, id)
	if err != nil {
		return fail(l, "get_category_error", err)
	}
	return c.JSON(http.StatusOK, cat)
}

func (h *CatalogHTTP) saveCategory(c echo.Context, id uint, code int) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.save")

	var req transport.CategoryRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "save_category_error", "invalid body", err)
	}
	cat, err := h.Svc.SaveCategory(ctx, principal(c), id, service.CategoryInput{Name: req.Name, Description: req.Description})
	if err != nil {
		return fail(l, "save_category_error", err)
	}
	return c.JSON(code, cat)
}

func (h *CatalogHTTP) CreateCategory(c echo.Context) error {
	return h.saveCategory(c, 0, http.StatusCreated)
}

func (h *CatalogHTTP) PatchCategory(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return h.saveCategory(c, id, http.StatusOK)
}

func (h *CatalogHTTP) DeleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "category.delete")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "delete_category_error", err.Error(), err)
	}
	if err := h.Svc.DeleteCategory(ctx, principal(c), id); err != nil {
		return fail(l, "delete_category_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHTTP) GetSuppliers(c echo.Context) error {
	ctx := c.Request().Context()
	items, err := h.Svc.ListSuppliers(ctx)
	if err != nil {
		return fail(logging.FromContext(ctx).With("handler", "supplier.list"), "list_suppliers_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) GetSupplier(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "supplier.get")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "get_supplier_error", err.Error(), err)
	}
	s, err := h.Svc.GetSupplier(ctx, id)
	if err != nil {
		return fail(l, "get_supplier_error", err)
	}
	return c.JSON(http.StatusOK, s)
}

func (h *CatalogHTTP) saveSupplier(c echo.Context, id uint, code int) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "supplier.save")

	var req transport.SupplierRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "save_supplier_error", "invalid body", err)
	}
	s, err := h.Svc.SaveSupplier(ctx, principal(c), id, service.SupplierInput{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		Phone:        req.Phone,
	})
	if err != nil {
		return fail(l, "save_supplier_error", err)
	}
	return c.JSON(code, s)
}

func (h *CatalogHTTP) CreateSupplier(c echo.Context) error {
	return h.saveSupplier(c, 0, http.StatusCreated)
}

func (h *CatalogHTTP) PatchSupplier(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return h.saveSupplier(c, id, http.StatusOK)
}

func (h *CatalogHTTP) DeleteSupplier(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "supplier.delete")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "delete_supplier_error", err.Error(), err)
	}
	if err := h.Svc.DeleteSupplier(ctx, principal(c), id); err != nil {
		return fail(l, "delete_supplier_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetShippingOptions is public; an authenticated admin also sees inactive options.
func (h *CatalogHTTP) GetShippingOptions(c echo.Context) error {
	ctx := c.Request().Context()
	items, err := h.Svc.ListShippingOptions(ctx, principal(c))
	if err != nil {
		return fail(logging.FromContext(ctx).With("handler", "shipping.list"), "list_shipping_options_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *CatalogHTTP) GetShippingOption(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shipping.get")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "get_shipping_option_error", err.Error(), err)
	}
	o, err := h.Svc.GetShippingOption(ctx, id)
	if err != nil {
		return fail(l, "get_shipping_option_error", err)
	}
	return c.JSON(http.StatusOK, o)
}

func (h *CatalogHTTP) saveShippingOption(c echo.Context, id uint, code int) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shipping.save")

	var req transport.ShippingOptionRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "save_shipping_option_error", "invalid body", err)
	}
	o, err := h.Svc.SaveShippingOption(ctx, principal(c), id, service.ShippingOptionInput{
		Name:          req.Name,
		Price:         req.Price,
		EstimatedDays: req.EstimatedDays,
		Active:        req.Active,
	})
	if err != nil {
		return fail(l, "save_shipping_option_error", err)
	}
	return c.JSON(code, o)
}

func (h *CatalogHTTP) CreateShippingOption(c echo.Context) error {
	return h.saveShippingOption(c, 0, http.StatusCreated)
}

func (h *CatalogHTTP) PatchShippingOption(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return h.saveShippingOption(c, id, http.StatusOK)
}

func (h *CatalogHTTP) DeleteShippingOption(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "shipping.delete")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "delete_shipping_option_error", err.Error(), err)
	}
	if err := h.Svc.DeleteShippingOption(ctx, principal(c), id); err != nil {
		return fail(l, "delete_shipping_option_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}
