package tokens

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	gen := NewGenerator("test-secret", time.Minute)

	token, err := gen.Generate("triage")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := gen.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "triage", claims.Service)
	assert.Equal(t, "aegis-triage", claims.Issuer)
}

func TestValidateWrongSecret(t *testing.T) {
	gen := NewGenerator("test-secret", time.Minute)
	other := NewGenerator("other-secret", time.Minute)

	token, err := gen.Generate("triage")
	require.NoError(t, err)

	_, err = other.Validate(token)
	assert.Error(t, err)
}

func TestValidateExpiredToken(t *testing.T) {
	gen := NewGenerator("test-secret", time.Millisecond)

	token, err := gen.Generate("triage")
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)

	_, err = gen.Validate(token)
	assert.Error(t, err)
}

func TestValidateGarbage(t *testing.T) {
	gen := NewGenerator("test-secret", time.Minute)

	_, err := gen.Validate("not-a-token")
	assert.Error(t, err)
}

func TestDefaultTTL(t *testing.T) {
	gen := NewGenerator("test-secret", 0)

	token, err := gen.Generate("triage")
	require.NoError(t, err)

	claims, err := gen.Validate(token)
	require.NoError(t, err)

	ttl := time.Until(claims.ExpiresAt.Time)
	assert.Greater(t, ttl, 4*time.Minute)
	assert.LessOrEqual(t, ttl, 5*time.Minute)
}
