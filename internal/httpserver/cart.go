package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
)

type CartHTTP struct {
	Svc *service.CartService
}

func (h *CartHTTP) GetCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "get.cart")

	userID, err := paramID(c, "userId")
	if err != nil {
		return badRequest(l, "get_cart_error", err.Error(), err)
	}
	cart, err := h.Svc.GetCart(ctx, principal(c), userID)
	if err != nil {
		return fail(l, "get_cart_error", err)
	}
	return c.JSON(http.StatusOK, cart)
}

func (h *CartHTTP) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "add.cart")

	userID, err := paramID(c, "userId")
	if err != nil {
		return badRequest(l, "add_to_cart_error", err.Error(), err)
	}
	var req transport.AddToCartRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "add_to_cart_error", "invalid body", err)
	}

	item, err := h.Svc.AddItem(ctx, principal(c), userID, req.ProductID, req.Quantity)
	if err != nil {
		return fail(l, "add_to_cart_error", err)
	}

	l.Info("item added successfully to cart", "item_id", item.ID)
	return c.JSON(http.StatusCreated, item)
}

func (h *CartHTTP) UpdateCartItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "update.cart_item")

	userID, err := paramID(c, "userId")
	if err != nil {
		return badRequest(l, "update_cart_item_error", err.Error(), err)
	}
	itemID, err := paramID(c, "itemId")
	if err != nil {
		return badRequest(l, "update_cart_item_error", err.Error(), err)
	}
	var req transport.UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_cart_item_error", "invalid body", err)
	}

	item, err := h.Svc.UpdateQuantity(ctx, principal(c), userID, itemID, req.Quantity)
	if err != nil {
		return fail(l, "update_cart_item_error", err)
	}
	return c.JSON(http.StatusOK, item)
}

func (h *CartHTTP) DeleteCartItem(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "delete.cart_item")

	userID, err := paramID(c, "userId")
	if err != nil {
		return badRequest(l, "delete_cart_item_error", err.Error(), err)
	}
	itemID, err := paramID(c, "itemId")
	if err != nil {
		return badRequest(l, "delete_cart_item_error", err.Error(), err)
	}
	if err := h.Svc.RemoveItem(ctx, principal(c), userID, itemID); err != nil {
		return fail(l, "delete_cart_item_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CartHTTP) ClearCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "delete.all.from.cart")

	userID, err := paramID(c, "userId")
	if err != nil {
		return badRequest(l, "clear_cart_error", err.Error(), err)
	}
	n, err := h.Svc.Clear(ctx, principal(c), userID)
	if err != nil {
		return fail(l, "clear_cart_error", err)
	}

	l.Info("cart successfully cleared", "removed", n)
	return c.JSON(http.StatusOK, echo.Map{"removed": n})
}
