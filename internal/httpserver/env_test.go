package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/logging"
	"github.com/Skotchmaster/storefront/internal/metrics"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/notify"
	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/service"
	"github.com/Skotchmaster/storefront/internal/testutil"
	"github.com/Skotchmaster/storefront/internal/tokens"
)

var (
	testJWTSecret     = []byte("http-test-jwt")
	testRefreshSecret = []byte("http-test-refresh")
)

type testEnv struct {
	E   *echo.Echo
	DB  *gorm.DB
	Hub *notify.Hub
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db := testutil.NewDB(t)
	r := &repo.GormRepo{DB: db}
	m := metrics.New(prometheus.NewRegistry())
	hub := notify.NewHub()

	e := NewEcho(logging.NewWithWriter(&bytes.Buffer{}, "error"), m, nil)
	Register(e, &Deps{
		Auth:    &AuthHTTP{Svc: &service.AuthService{Repo: r, JWTSecret: testJWTSecret, RefreshSecret: testRefreshSecret}},
		Catalog: &CatalogHTTP{Svc: &service.CatalogService{Repo: r}},
		Cart:    &CartHTTP{Svc: &service.CartService{Repo: r}},
		Order: &OrderHTTP{Svc: &service.OrderService{
			Repo:     r,
			Notifier: notify.NewRelay(hub, nil, m),
			Metrics:  m,
		}},
		Account: &AccountHTTP{
			Svc:      &service.AccountService{Repo: r},
			Wishlist: &service.WishlistService{Repo: r},
		},
		Hub:       hub,
		Metrics:   m,
		DB:        r,
		JWTSecret: testJWTSecret,
	})

	return &testEnv{E: e, DB: db, Hub: hub}
}

func (env *testEnv) bearer(t *testing.T, u *models.User) string {
	t.Helper()
	tok, err := tokens.NewAccessToken(testJWTSecret, u.ID, u.Role, time.Now().Add(time.Minute))
	require.NoError(t, err)
	return "Bearer " + tok
}

func (env *testEnv) doJSONRequest(method, path, authz string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if authz != "" {
		req.Header.Set(echo.HeaderAuthorization, authz)
	}
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[map[string]string](t, rec)["message"]
}
