package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type AccountHTTP struct {
	Svc      *service.AccountService
	Wishlist *service.WishlistService
}

func addressInput(req transport.AddressRequest) service.AddressInput {
	return service.AddressInput{
		FullName:   req.FullName,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		Phone:      req.Phone,
		IsDefault:  req.IsDefault,
	}
}

func paymentMethodInput(req transport.PaymentMethodRequest) service.PaymentMethodInput {
	return service.PaymentMethodInput{
		Type:        req.Type,
		Provider:    req.Provider,
		HolderName:  req.HolderName,
		Last4:       req.Last4,
		ExpiryMonth: req.ExpiryMonth,
		ExpiryYear:  req.ExpiryYear,
		IsDefault:   req.IsDefault,
	}
}

// ids reads :userId and, when withID is set, :id.
func ids(c echo.Context, withID bool) (userID, id uint, err error) {
	if userID, err = paramID(c, "userId"); err != nil {
		return 0, 0, err
	}
	if withID {
		if id, err = paramID(c, "id"); err != nil {
			return 0, 0, err
		}
	}
	return userID, id, nil
}

func (h *AccountHTTP) GetAddresses(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.list")

	userID, _, err := ids(c, false)
	if err != nil {
		return badRequest(l, "list_addresses_error", err.Error(), err)
	}
	items, err := h.Svc.ListAddresses(ctx, principal(c), userID)
	if err != nil {
		return fail(l, "list_addresses_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *AccountHTTP) CreateAddress(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.create")

	userID, _, err := ids(c, false)
	if err != nil {
		return badRequest(l, "create_address_error", err.Error(), err)
	}
	var req transport.AddressRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_address_error", "invalid body", err)
	}
	a, err := h.Svc.CreateAddress(ctx, principal(c), userID, addressInput(req))
	if err != nil {
		return fail(l, "create_address_error", err)
	}
	return c.JSON(http.StatusCreated, a)
}

func (h *AccountHTTP) UpdateAddress(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.update")

	userID, id, err := ids(c, true)
	if err != nil {
		return badRequest(l, "update_address_error", err.Error(), err)
	}
	var req transport.AddressRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_address_error", "invalid body", err)
	}
	a, err := h.Svc.UpdateAddress(ctx, principal(c), userID, id, addressInput(req))
	if err != nil {
		return fail(l, "update_address_error", err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *AccountHTTP) DeleteAddress(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.delete")

	userID, id, err := ids(c, true)
	if err != nil {
		return badRequest(l, "delete_address_error", err.Error(), err)
	}
	if err := h.Svc.DeleteAddress(ctx, principal(c), userID, id); err != nil {
		return fail(l, "delete_address_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AccountHTTP) SetDefaultAddress(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "address.set_default")

	userID, id, err := ids(c, true)
	if err != nil {
		return badRequest(l, "set_default_address_error", err.Error(), err)
	}
	a, err := h.Svc.SetDefaultAddress(ctx, principal(c), userID, id)
	if err != nil {
		return fail(l, "set_default_address_error", err)
	}
	return c.JSON(http.StatusOK, a)
}

func (h *AccountHTTP) GetPaymentMethods(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.list")

	userID, _, err := ids(c, false)
	if err != nil {
		return badRequest(l, "list_payment_methods_error", err.Error(), err)
	}
	items, err := h.Svc.ListPaymentMethods(ctx, principal(c), userID)
	if err != nil {
		return fail(l, "list_payment_methods_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *AccountHTTP) CreatePaymentMethod(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.create")

	userID, _, err := ids(c, false)
	if err != nil {
		return badRequest(l, "create_payment_method_error", err.Error(), err)
	}
	var req transport.PaymentMethodRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "create_payment_method_error", "invalid body", err)
	}
	pm, err := h.Svc.CreatePaymentMethod(ctx, principal(c), userID, paymentMethodInput(req))
	if err != nil {
		return fail(l, "create_payment_method_error", err)
	}
	return c.JSON(http.StatusCreated, pm)
}

func (h *AccountHTTP) UpdatePaymentMethod(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.update")

	userID, id, err := ids(c, true)
	if err != nil {
		return badRequest(l, "update_payment_method_error", err.Error(), err)
	}
	var req transport.PaymentMethodRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_payment_method_error", "invalid body", err)
	}
	pm, err := h.Svc.UpdatePaymentMethod(ctx, principal(c), userID, id, paymentMethodInput(req))
	if err != nil {
		return fail(l, "update_payment_method_error", err)
	}
	return c.JSON(http.StatusOK, pm)
}

func (h *AccountHTTP) DeletePaymentMethod(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.delete")

	userID, id, err := ids(c, true)
	if err != nil {
		return badRequest(l, "delete_payment_method_error", err.Error(), err)
	}
	if err := h.Svc.DeletePaymentMethod(ctx, principal(c), userID, id); err != nil {
		return fail(l, "delete_payment_method_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AccountHTTP) SetDefaultPaymentMethod(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "payment.set_default")

	userID, id, err := ids(c, true)
	if err != nil {
		return badRequest(l, "set_default_payment_method_error", err.Error(), err)
	}
	pm, err := h.Svc.SetDefaultPaymentMethod(ctx, principal(c), userID, id)
	if err != nil {
		return fail(l, "set_default_payment_method_error", err)
	}
	return c.JSON(http.StatusOK, pm)
}

func (h *AccountHTTP) GetWishlist(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.list")

	userID, _, err := ids(c, false)
	if err != nil {
		return badRequest(l, "list_wishlist_error", err.Error(), err)
	}
	items, err := h.Wishlist.List(ctx, principal(c), userID)
	if err != nil {
		return fail(l, "list_wishlist_error", err)
	}
	return c.JSON(http.StatusOK, items)
}

func (h *AccountHTTP) AddToWishlist(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.add")

	userID, _, err := ids(c, false)
	if err != nil {
		return badRequest(l, "add_wishlist_error", err.Error(), err)
	}
	var req transport.WishlistRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_wishlist_error", "invalid body", err)
	}
	item, created, err := h.Wishlist.Add(ctx, principal(c), userID, req.ProductID)
	if err != nil {
		return fail(l, "add_wishlist_error", err)
	}
	if created {
		return c.JSON(http.StatusCreated, item)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *AccountHTTP) RemoveFromWishlist(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "wishlist.remove")

	userID, err := paramID(c, "userId")
	if err != nil {
		return badRequest(l, "remove_wishlist_error", err.Error(), err)
	}
	productID, err := paramID(c, "productId")
	if err != nil {
		return badRequest(l, "remove_wishlist_error", err.Error(), err)
	}
	if err := h.Wishlist.Remove(ctx, principal(c), userID, productID); err != nil {
		return fail(l, "remove_wishlist_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}
