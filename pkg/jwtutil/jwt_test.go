package jwtutil_test

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Reiman-Gardens/flutr/pkg/config"
	"github.com/Reiman-Gardens/flutr/pkg/jwtutil"
)

func TestGenerateAndValidateToken(t *testing.T) {
	j := jwtutil.NewJWTUtil(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	token, err := j.GenerateToken(42, "keeper@iowa.example", "org_admin", 3)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := j.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "keeper@iowa.example", claims.Email)
	assert.Equal(t, "org_admin", claims.Role)
	assert.Equal(t, uint(3), claims.InstitutionID)
	assert.Equal(t, strconv.Itoa(42), claims.Subject)
	assert.NotNil(t, claims.ExpiresAt)
}

func TestValidateTokenWrongKey(t *testing.T) {
	issuer := jwtutil.NewJWTUtil(&config.JWTConfig{SigningKey: "key-one", ExpirationHours: 1})
	verifier := jwtutil.NewJWTUtil(&config.JWTConfig{SigningKey: "key-two", ExpirationHours: 1})

	token, err := issuer.GenerateToken(42, "keeper@iowa.example", "org_admin", 3)
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateExpiredToken(t *testing.T) {
	j := jwtutil.NewJWTUtil(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: -1})

	token, err := j.GenerateToken(42, "keeper@iowa.example", "org_admin", 3)
	require.NoError(t, err)

	_, err = j.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateGarbage(t *testing.T) {
	j := jwtutil.NewJWTUtil(&config.JWTConfig{SigningKey: "test-signing-key", ExpirationHours: 1})

	_, err := j.ValidateToken("not-a-token")
	assert.Error(t, err)
}
