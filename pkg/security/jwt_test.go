package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewJWTManager_RequiresSecret(t *testing.T) {
	_, err := NewJWTManager(&JWTConfig{})
	assert.ErrorIs(t, err, ErrSecretKeyEmpty)
}

func TestGenerateAndValidateToken(t *testing.T) {
	m, err := NewJWTManager(&JWTConfig{SecretKey: "test-secret"})
	require.NoError(t, err)

	token, err := m.GenerateToken(&Claims{
		Payload: map[string]any{"username": "admin", "role": "admin"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Payload["username"])
	assert.Equal(t, "admin", claims.Payload["role"])
	assert.Equal(t, "halolab", claims.Issuer)
}

func TestValidateToken_StripsBearerPrefix(t *testing.T) {
	m, err := NewJWTManager(&JWTConfig{SecretKey: "test-secret"})
	require.NoError(t, err)

	token, err := m.GenerateToken(&Claims{})
	require.NoError(t, err)

	_, err = m.ValidateToken("Bearer " + token)
	assert.NoError(t, err)
}

func TestValidateToken_Expired(t *testing.T) {
	m, err := NewJWTManager(&JWTConfig{
		SecretKey: "test-secret",
		ExpiresIn: -time.Minute,
	})
	require.NoError(t, err)

	token, err := m.GenerateToken(&Claims{})
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateToken_Malformed(t *testing.T) {
	m, err := NewJWTManager(&JWTConfig{SecretKey: "test-secret"})
	require.NoError(t, err)

	_, err = m.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrTokenMalformed)

	_, err = m.ValidateToken("")
	assert.ErrorIs(t, err, ErrTokenMissing)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	m1, err := NewJWTManager(&JWTConfig{SecretKey: "secret-a"})
	require.NoError(t, err)
	m2, err := NewJWTManager(&JWTConfig{SecretKey: "secret-b"})
	require.NoError(t, err)

	token, err := m1.GenerateToken(&Claims{})
	require.NoError(t, err)

	_, err = m2.ValidateToken(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
