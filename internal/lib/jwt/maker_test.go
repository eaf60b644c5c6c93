package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedMaker(secret string, ttl time.Duration, at time.Time) *HMACMaker {
	m := NewJWTMaker(secret, ttl)
	m.now = func() time.Time { return at }
	return m
}

func TestHMACMaker_RoundTrip(t *testing.T) {
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	maker := fixedMaker("secret", time.Hour, issued)

	tests := []struct {
		name     string
		username string
		role     string
	}{
		{name: "authenticated member", username: "ann", role: "authenticated"},
		{name: "mentor", username: "mentor_user", role: "mentor"},
		{name: "event manager", username: "events@example.com", role: "event_manager"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := maker.GenerateToken(tt.username, tt.role, "uid-"+tt.username)
			require.NoError(t, err)

			claims, err := maker.ParseToken(token)
			require.NoError(t, err)
			assert.Equal(t, tt.username, claims.Username)
			assert.Equal(t, tt.role, claims.Role)
			assert.Equal(t, "uid-"+tt.username, claims.UserUID)
			assert.Equal(t, "uid-"+tt.username, claims.Subject)
			assert.Equal(t, Issuer, claims.Issuer)
			assert.Equal(t, issued, claims.IssuedAt.Time.UTC())
			assert.Equal(t, issued.Add(time.Hour), claims.ExpiresAt.Time.UTC())
		})
	}
}

func TestHMACMaker_Expiry(t *testing.T) {
	issued := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	maker := fixedMaker("secret", time.Minute, issued)

	token, err := maker.GenerateToken("ann", "authenticated", "uid-1")
	require.NoError(t, err)

	t.Run("within leeway", func(t *testing.T) {
		maker.now = func() time.Time { return issued.Add(time.Minute + 10*time.Second) }
		_, err := maker.ParseToken(token)
		assert.NoError(t, err)
	})

	t.Run("past leeway", func(t *testing.T) {
		maker.now = func() time.Time { return issued.Add(2 * time.Minute) }
		claims, err := maker.ParseToken(token)
		assert.ErrorIs(t, err, ErrExpired)
		assert.Nil(t, claims)
	})
}

func TestHMACMaker_RejectsInvalidTokens(t *testing.T) {
	maker := NewJWTMaker("secret", time.Hour)

	valid, err := maker.GenerateToken("ann", "authenticated", "uid-1")
	require.NoError(t, err)
	foreign, err := NewJWTMaker("other-secret", time.Hour).GenerateToken("ann", "authenticated", "uid-1")
	require.NoError(t, err)
	noUID, err := maker.GenerateToken("ann", "authenticated", "")
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{name: "empty", token: ""},
		{name: "malformed", token: "invalid.token.here"},
		{name: "tampered", token: valid + "x"},
		{name: "wrong secret", token: foreign},
		{name: "missing user uid", token: noUID},
		{name: "foreign issuer", token: signRaw(t, "secret", jwt.SigningMethodHS256, jwt.MapClaims{
			"iss": "someone-else", "user_uid": "uid-1", "exp": time.Now().Add(time.Hour).Unix(),
		})},
		{name: "no expiry", token: signRaw(t, "secret", jwt.SigningMethodHS256, jwt.MapClaims{
			"iss": Issuer, "user_uid": "uid-1",
		})},
		{name: "HS512 algorithm", token: signRaw(t, "secret", jwt.SigningMethodHS512, jwt.MapClaims{
			"iss": Issuer, "user_uid": "uid-1", "exp": time.Now().Add(time.Hour).Unix(),
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := maker.ParseToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalid)
			assert.Nil(t, claims)
		})
	}
}

func signRaw(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}
