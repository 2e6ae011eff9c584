package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/service"
)

var statusBySentinel = []struct {
	err  error
	code int
}{
	{service.ErrUnauthorized, http.StatusUnauthorized},
	{service.ErrForbidden, http.StatusForbidden},
	{service.ErrNotFound, http.StatusNotFound},
	{service.ErrConflict, http.StatusConflict},
	{service.ErrValidation, http.StatusBadRequest},
}

// fail logs err and turns it into the HTTP error the client sees. Anything
// that is not a service sentinel is reported as a bare 500.
func fail(l *slog.Logger, event string, err error) error {
	for _, s := range statusBySentinel {
		if errors.Is(err, s.err) {
			msg := strings.TrimSuffix(err.Error(), ": "+s.err.Error())
			l.Warn(event, "status", s.code, "reason", msg)
			return echo.NewHTTPError(s.code, msg)
		}
	}
	l.Error(event, "status", http.StatusInternalServerError, "error", err)
	return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
}

func badRequest(l *slog.Logger, event, reason string, err error) error {
	l.Warn(event, "status", http.StatusBadRequest, "reason", reason, "error", err)
	return echo.NewHTTPError(http.StatusBadRequest, reason)
}

func paramID(c echo.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New(name + " must be a positive integer")
	}
	return uint(id), nil
}

// principal is only called behind RequireAuth; an anonymous caller gets the
// zero Principal, which owns nothing.
func principal(c echo.Context) models.Principal {
	p, _ := authmw.PrincipalFrom(c)
	return p
}
