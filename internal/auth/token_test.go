package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sign(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("backend-secret"))
	require.NoError(t, err)
	return token
}

func TestInspect_SubjectAndExpiry(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	token := sign(t, jwt.MapClaims{"sub": "u-1", "exp": exp.Unix()})

	claims, err := Inspect(token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.True(t, exp.Equal(claims.ExpiresAt))
}

func TestInspect_IDClaimFallback(t *testing.T) {
	token := sign(t, jwt.MapClaims{"id": "65f1c2a9e4b0a1b2c3d4e5f6", "iat": time.Now().Unix()})

	claims, err := Inspect(token)
	require.NoError(t, err)
	assert.Equal(t, "65f1c2a9e4b0a1b2c3d4e5f6", claims.UserID)
	assert.True(t, claims.ExpiresAt.IsZero())
}

func TestInspect_Malformed(t *testing.T) {
	for _, token := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := Inspect(token)
		assert.ErrorIs(t, err, ErrMalformedToken, token)
	}
}

func TestInspect_BadExpClaim(t *testing.T) {
	token := sign(t, jwt.MapClaims{"sub": "u-1", "exp": "tomorrow"})

	_, err := Inspect(token)
	assert.ErrorIs(t, err, ErrMalformedToken)
}

func TestExpired(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"future exp", sign(t, jwt.MapClaims{"exp": now.Add(time.Minute).Unix()}), false},
		{"past exp", sign(t, jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()}), true},
		{"exp equals now", sign(t, jwt.MapClaims{"exp": now.Unix()}), true},
		{"no exp", sign(t, jwt.MapClaims{"id": "u-1"}), false},
		{"garbage", "garbage", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Expired(tt.token, now))
		})
	}
}
