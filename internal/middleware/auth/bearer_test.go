package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

var secret = []byte("test-jwt-secret")

func token(t *testing.T, id uint, role string) string {
	t.Helper()
	tok, err := tokens.NewAccessToken(secret, id, role, time.Now().Add(time.Minute))
	require.NoError(t, err)
	return tok
}

func newServer() *echo.Echo {
	mw := NewBearerAuth(secret)
	e := echo.New()
	whoami := func(c echo.Context) error {
		p, ok := PrincipalFrom(c)
		if !ok {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.JSON(http.StatusOK, p)
	}
	e.GET("/me", whoami, mw.RequireAuth)
	e.GET("/admin", whoami, mw.RequireAdmin)
	return e
}

func do(e *echo.Echo, path, authz string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authz != "" {
		req.Header.Set(echo.HeaderAuthorization, authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRequireAuth(t *testing.T) {
	e := newServer()

	assert.Equal(t, http.StatusUnauthorized, do(e, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(e, "/me", "Bearer garbage").Code)

	rec := do(e, "/me", "Bearer "+token(t, 5, models.RoleUser))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"UserID":5,"Role":"user"}`, rec.Body.String())

	rec = do(e, "/me?access_token="+token(t, 6, models.RoleUser), "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	e := newServer()

	assert.Equal(t, http.StatusForbidden, do(e, "/admin", "Bearer "+token(t, 5, models.RoleUser)).Code)
	assert.Equal(t, http.StatusOK, do(e, "/admin", "bearer "+token(t, 1, models.RoleAdmin)).Code)
}

func TestOptionalAuth(t *testing.T) {
	mw := NewBearerAuth(secret)
	e := echo.New()
	e.GET("/opt", func(c echo.Context) error {
		p, ok := PrincipalFrom(c)
		if !ok {
			return c.String(http.StatusOK, "anonymous")
		}
		return c.JSON(http.StatusOK, p)
	}, mw.OptionalAuth)

	assert.Equal(t, "anonymous", do(e, "/opt", "").Body.String())
	assert.Equal(t, "anonymous", do(e, "/opt", "Bearer garbage").Body.String())

	rec := do(e, "/opt", "Bearer "+token(t, 9, models.RoleAdmin))
	assert.JSONEq(t, `{"UserID":9,"Role":"admin"}`, rec.Body.String())
}
