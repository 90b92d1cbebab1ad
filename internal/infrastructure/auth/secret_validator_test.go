package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "super-secret-signing-key"

func signHS256(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func baseClaims() jwt.MapClaims {
	now := time.Now()
	return jwt.MapClaims{
		"sub":   "user-123",
		"iss":   "https://auth.example.com",
		"aud":   "authenticated",
		"email": "jane@example.com",
		"role":  "authenticated",
		"iat":   now.Unix(),
		"exp":   now.Add(time.Hour).Unix(),
	}
}

func TestSecretValidatorAccepts(t *testing.T) {
	v, err := NewSecretValidator(testSecret, "https://auth.example.com", "authenticated", 30*time.Second)
	require.NoError(t, err)

	claims, err := v.Verify(context.Background(), signHS256(t, testSecret, baseClaims()))
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, []string{"authenticated"}, claims.Audience)
	assert.Contains(t, claims.Roles, "authenticated")
	assert.True(t, v.Ready())
}

func TestSecretValidatorRejects(t *testing.T) {
	v, err := NewSecretValidator(testSecret, "https://auth.example.com", "authenticated", 0)
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(jwt.MapClaims)
		secret string
	}{
		{name: "wrong secret", secret: "other-secret"},
		{name: "expired", mutate: func(c jwt.MapClaims) { c["exp"] = time.Now().Add(-time.Hour).Unix() }},
		{name: "not yet valid", mutate: func(c jwt.MapClaims) { c["nbf"] = time.Now().Add(time.Hour).Unix() }},
		{name: "wrong issuer", mutate: func(c jwt.MapClaims) { c["iss"] = "https://evil.example.com" }},
		{name: "wrong audience", mutate: func(c jwt.MapClaims) { c["aud"] = []string{"other"} }},
		{name: "missing subject", mutate: func(c jwt.MapClaims) { delete(c, "sub") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims := baseClaims()
			if tt.mutate != nil {
				tt.mutate(claims)
			}
			secret := testSecret
			if tt.secret != "" {
				secret = tt.secret
			}
			_, err := v.Verify(context.Background(), signHS256(t, secret, claims))
			assert.Error(t, err)
		})
	}
}

func TestSecretValidatorRejectsOtherAlgorithms(t *testing.T) {
	v, err := NewSecretValidator(testSecret, "", "", 0)
	require.NoError(t, err)

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, baseClaims()).SignedString([]byte(testSecret))
	require.NoError(t, err)
	_, err = v.Verify(context.Background(), token)
	assert.Error(t, err)

	_, err = v.Verify(context.Background(), "not-a-jwt")
	assert.Error(t, err)
}

func TestSecretValidatorRequiresSecret(t *testing.T) {
	_, err := NewSecretValidator("", "", "", 0)
	assert.Error(t, err)
}
