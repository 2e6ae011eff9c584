package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

const (
	CtxPrincipal = "principal"

	// QueryToken carries the bearer token for websocket upgrades, where browsers
	// cannot set headers.
	QueryToken = "access_token"
)

type BearerAuth struct {
	JWTSecret []byte
}

func NewBearerAuth(secret []byte) *BearerAuth {
	return &BearerAuth{JWTSecret: secret}
}

type ValidatorFunc func(p models.Principal) error

func (m *BearerAuth) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, nil)
}

func (m *BearerAuth) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireAuthWithValidator(next, func(p models.Principal) error {
		if !p.IsAdmin() {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return nil
	})
}

func (m *BearerAuth) requireAuthWithValidator(next echo.HandlerFunc, validator ValidatorFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		raw := TokenFromRequest(c)
		if raw == "" {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}

		p, err := m.Authenticate(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		if validator != nil {
			if err := validator(p); err != nil {
				return err
			}
		}

		c.Set(CtxPrincipal, p)
		return next(c)
	}
}

// OptionalAuth records the principal when a valid token is present and lets
// anonymous requests through untouched.
func (m *BearerAuth) OptionalAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if raw := TokenFromRequest(c); raw != "" {
			if p, err := m.Authenticate(raw); err == nil {
				c.Set(CtxPrincipal, p)
			}
		}
		return next(c)
	}
}

// Authenticate turns a raw access token into a Principal.
func (m *BearerAuth) Authenticate(raw string) (models.Principal, error) {
	claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
	if err != nil {
		return models.Principal{}, err
	}
	id, err := claims.UserID()
	if err != nil {
		return models.Principal{}, err
	}
	return models.Principal{UserID: id, Role: claims.Role}, nil
}

// TokenFromRequest reads "Authorization: Bearer <token>", falling back to the
// access_token query parameter.
func TokenFromRequest(c echo.Context) string {
	h := c.Request().Header.Get(echo.HeaderAuthorization)
	if scheme, tok, ok := strings.Cut(h, " "); ok && strings.EqualFold(scheme, "Bearer") {
		return strings.TrimSpace(tok)
	}
	return c.QueryParam(QueryToken)
}

func PrincipalFrom(c echo.Context) (models.Principal, bool) {
	p, ok := c.Get(CtxPrincipal).(models.Principal)
	return p, ok
}
