package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func TestGenerateParse(t *testing.T) {
	tok, err := Generate(secret, "user-1", "pui-pos", 5)
	require.NoError(t, err)

	userID, err := Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)
}

func TestParse_Errors(t *testing.T) {
	valid, err := Generate(secret, "user-1", "pui-pos", 5)
	require.NoError(t, err)
	expired, err := Generate(secret, "user-1", "pui-pos", -1)
	require.NoError(t, err)
	noUser, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute))},
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "user-1"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name   string
		secret string
		token  string
	}{
		{"firma con otro secreto", "otro", valid},
		{"expirado", secret, expired},
		{"sin usuario", secret, noUser},
		{"alg none", secret, none},
		{"basura", secret, "no-es-un-token"},
		{"secreto vacío", "", valid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.secret, tt.token)
			assert.Error(t, err)
		})
	}
}

func TestParse_SubjectFallback(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "user-9",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}).SignedString([]byte(secret))
	require.NoError(t, err)

	userID, err := Parse(secret, tok)
	require.NoError(t, err)
	assert.Equal(t, "user-9", userID)
}

func TestGenerate_EmptySecret(t *testing.T) {
	_, err := Generate("", "user-1", "pui-pos", 5)
	assert.Error(t, err)
}
