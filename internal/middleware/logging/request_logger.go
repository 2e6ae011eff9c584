package loggingmw

import (
	"log/slog"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
	authmw "github.com/Skotchmaster/storefront/internal/middleware/auth"
)

// quietPrefixes are probed constantly and only logged at debug.
var quietPrefixes = []string{"/health/", "/metrics"}

func levelFor(path string, status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	}
	for _, p := range quietPrefixes {
		if strings.HasPrefix(path, p) {
			return slog.LevelDebug
		}
	}
	return slog.LevelInfo
}

// RequestLogger stores a request-scoped logger in the request context and
// writes one summary line after the handler returns. Handler errors are
// rendered here so the logged status matches what the client received.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = c.Response().Header().Get(echo.HeaderXRequestID)
			}

			l := base.With("method", req.Method, "route", c.Path(), "request_id", rid)
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))
			if rid != "" {
				c.Response().Header().Set(echo.HeaderXRequestID, rid)
			}

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			res := c.Response()
			attrs := []slog.Attr{
				slog.Int("status", res.Status),
				slog.Int64("duration_ms", time.Since(start).Milliseconds()),
				slog.Int64("bytes", res.Size),
				slog.String("remote_ip", c.RealIP()),
			}
			if p, ok := authmw.PrincipalFrom(c); ok {
				attrs = append(attrs, slog.Uint64("user_id", uint64(p.UserID)))
			}
			if err != nil && res.Status >= 500 {
				attrs = append(attrs, slog.String("error", err.Error()))
			}
			l.LogAttrs(req.Context(), levelFor(req.URL.Path, res.Status), "request completed", attrs...)
			return nil
		}
	}
}
