package tokens

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	accessSecret  = []byte("test-jwt-secret")
	refreshSecret = []byte("test-refresh-secret")
)

func TestAccessToken_RoundTrip(t *testing.T) {
	t.Parallel()

	exp := time.Now().Add(AccessTTL).UTC()
	token, err := NewAccessToken(accessSecret, 42, "admin", exp)
	require.NoError(t, err)

	claims, err := AccessClaimsFromToken(token, accessSecret)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Role)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)
	assert.WithinDuration(t, exp, claims.ExpiresAt.Time, time.Second)
}

func TestAccessToken_WrongSecretAndExpired(t *testing.T) {
	t.Parallel()

	token, err := NewAccessToken(accessSecret, 1, "user", time.Now().Add(time.Minute))
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(token, []byte("other"))
	require.Error(t, err)

	expired, err := NewAccessToken(accessSecret, 1, "user", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	_, err = AccessClaimsFromToken(expired, accessSecret)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestRefreshToken_CarriesJTI(t *testing.T) {
	t.Parallel()

	token, jti, err := NewRefreshToken(refreshSecret, 7, time.Now().Add(RefreshTTL))
	require.NoError(t, err)
	require.NotEmpty(t, jti)

	claims, err := RefreshClaimsFromToken(token, refreshSecret)
	require.NoError(t, err)
	assert.Equal(t, jti, claims.ID)
	id, err := claims.UserID()
	require.NoError(t, err)
	assert.EqualValues(t, 7, id)
}

func TestRejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	tok := jwt.NewWithClaims(jwt.SigningMethodHS512, AccessClaims{
		Role:             "user",
		RegisteredClaims: jwt.RegisteredClaims{Subject: "1"},
	})
	signed, err := tok.SignedString(accessSecret)
	require.NoError(t, err)

	_, err = AccessClaimsFromToken(signed, accessSecret)
	require.Error(t, err)
}

func TestSha256Hex(t *testing.T) {
	t.Parallel()
	assert.Len(t, Sha256Hex("abc"), 64)
	assert.Equal(t, Sha256Hex("abc"), Sha256Hex("abc"))
}
