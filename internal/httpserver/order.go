package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
)

type OrderHTTP struct {
	Svc *service.OrderService
}

func (h *OrderHTTP) Checkout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.checkout")

	userID, err := paramID(c, "userId")
	if err != nil {
		return badRequest(l, "checkout_error", err.Error(), err)
	}
	var req transport.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "checkout_error", "invalid body", err)
	}

	order, err := h.Svc.Checkout(ctx, principal(c), userID, service.CheckoutInput{
		ShippingOptionID:  req.ShippingOptionID,
		ShippingAddressID: req.ShippingAddressID,
		PaymentMethodID:   req.PaymentMethodID,
	})
	if err != nil {
		return fail(l, "checkout_error", err)
	}
	return c.JSON(http.StatusCreated, order)
}

func (h *OrderHTTP) GetOrder(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.get")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "get_order_error", err.Error(), err)
	}
	order, err := h.Svc.Get(ctx, principal(c), id)
	if err != nil {
		return fail(l, "get_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) GetUserOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list_user")

	userID, err := paramID(c, "userId")
	if err != nil {
		return badRequest(l, "list_user_orders_error", err.Error(), err)
	}
	page := util.ParsePage(c.QueryParam("page"), c.QueryParam("size"))
	total, orders, err := h.Svc.ListByUser(ctx, principal(c), userID, page)
	if err != nil {
		return fail(l, "list_user_orders_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewPaged(orders, page, total))
}

func (h *OrderHTTP) GetOrders(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.list")

	page := util.ParsePage(c.QueryParam("page"), c.QueryParam("size"))
	total, orders, err := h.Svc.List(ctx, principal(c), c.QueryParam("status"), page)
	if err != nil {
		return fail(l, "list_orders_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewPaged(orders, page, total))
}

func (h *OrderHTTP) UpdateStatus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.update_status")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "update_status_error", err.Error(), err)
	}
	var req transport.UpdateOrderStatusRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "update_status_error", "invalid body", err)
	}

	order, err := h.Svc.UpdateStatus(ctx, principal(c), id, req.Status)
	if err != nil {
		return fail(l, "update_status_error", err)
	}
	return c.JSON(http.StatusOK, order)
}

func (h *OrderHTTP) Cancel(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "order.cancel")

	id, err := paramID(c, "id")
	if err != nil {
		return badRequest(l, "cancel_order_error", err.Error(), err)
	}
	order, err := h.Svc.Cancel(ctx, principal(c), id)
	if err != nil {
		return fail(l, "cancel_order_error", err)
	}
	return c.JSON(http.StatusOK, order)
}
