package utils

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	m := NewTokenManager("test-secret", 30*24*time.Hour)
	fixed := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return fixed }

	token, expiresAt, err := m.GenerateToken("u1", "alice")
	require.NoError(t, err)
	assert.Equal(t, fixed.Add(30*24*time.Hour), expiresAt)

	claims, err := m.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, expiresAt.Unix(), claims.ExpiresAt.Unix())
}

func TestParseTokenExpired(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	token, _, err := m.GenerateToken("u1", "alice")
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.ParseToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, _, err := NewTokenManager("one", time.Hour).GenerateToken("u1", "alice")
	require.NoError(t, err)

	_, err = NewTokenManager("two", time.Hour).ParseToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestParseTokenTampered(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)
	token, _, err := m.GenerateToken("u1", "alice")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	other, _, err := m.GenerateToken("u2", "mallory")
	require.NoError(t, err)
	parts[1] = strings.Split(other, ".")[1]

	_, err = m.ParseToken(strings.Join(parts, "."))
	assert.Error(t, err)
}

func TestParseTokenRejectsUnsignedAndMissingClaims(t *testing.T) {
	m := NewTokenManager("test-secret", time.Hour)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = m.ParseToken(unsigned)
	assert.Error(t, err)

	noExp := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: "u1"})
	signed, err := noExp.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = m.ParseToken(signed)
	assert.Error(t, err)

	noUser := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err = noUser.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	_, err = m.ParseToken(signed)
	assert.Error(t, err)
}
