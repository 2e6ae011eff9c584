package httpserver

import (
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/Skotchmaster/storefront/internal/metrics"
	loggingmw "github.com/Skotchmaster/storefront/internal/middleware/logging"
)

// NewEcho builds the echo instance with the shared middleware stack. Metrics
// wrap the request logger so they observe the status it wrote.
func NewEcho(l *slog.Logger, m *metrics.Metrics, corsOrigins []string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	if len(corsOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: corsOrigins,
			AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		}))
	}
	if m != nil {
		e.Use(m.Middleware())
	}
	e.Use(loggingmw.RequestLogger(l))
	return e
}
