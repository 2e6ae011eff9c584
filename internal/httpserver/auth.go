package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/transport"
	"github.com/Skotchmaster/storefront/internal/util"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.Credentials
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "register_error", "invalid body", err)
	}

	user, err := h.Svc.Register(ctx, req.Username, req.Password)
	if err != nil {
		return fail(l, "register_error", err)
	}

	l.Info("register_successful", "user_id", user.ID)
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.Credentials
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "login_error", "invalid body", err)
	}

	res, err := h.Svc.Login(ctx, req.Username, req.Password)
	if err != nil {
		return fail(l, "login_failed", err)
	}

	l.Info("login_successful", "user_id", res.User.ID)
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_refresh")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return badRequest(l, "refresh_error", "refreshToken is required", err)
	}

	res, err := h.Svc.Refresh(ctx, req.RefreshToken)
	if err != nil {
		return fail(l, "refresh_failed", err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_logout")

	var req transport.RefreshRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(l, "logout_error", "invalid body", err)
	}
	if err := h.Svc.Logout(ctx, req.RefreshToken); err != nil {
		return fail(l, "logout_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHTTP) GetUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_get")

	userID, err := paramID(c, "userId")
	if err != nil {
		return badRequest(l, "get_user_error", err.Error(), err)
	}
	user, err := h.Svc.GetUser(ctx, principal(c), userID)
	if err != nil {
		return fail(l, "get_user_error", err)
	}
	return c.JSON(http.StatusOK, user)
}

func (h *AuthHTTP) ListUsers(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_list")

	page := util.ParsePage(c.QueryParam("page"), c.QueryParam("size"))
	total, users, err := h.Svc.ListUsers(ctx, principal(c), page)
	if err != nil {
		return fail(l, "list_users_error", err)
	}
	return c.JSON(http.StatusOK, transport.NewPaged(users, page, total))
}

func (h *AuthHTTP) DeleteUser(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "user_delete")

	userID, err := paramID(c, "userId")
	if err != nil {
		return badRequest(l, "delete_user_error", err.Error(), err)
	}
	if err := h.Svc.DeleteUser(ctx, principal(c), userID); err != nil {
		return fail(l, "delete_user_error", err)
	}
	return c.NoContent(http.StatusNoContent)
}
