package utils

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_RoundTrip(t *testing.T) {
	m := NewJWTManager("test-secret", "ventech-test", time.Hour)

	token, expiresAt, err := m.Generate("admin-1", "ops@ventech.id", "owner")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := m.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.UserID)
	assert.Equal(t, "ops@ventech.id", claims.Email)
	assert.Equal(t, "owner", claims.Role)
	assert.Equal(t, "ventech-test", claims.Issuer)
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager("test-secret", "ventech-test", time.Hour)
	token, _, err := m.Generate("admin-1", "ops@ventech.id", "staff")
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewJWTManager("other", "ventech-test", time.Hour).Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		_, err := NewJWTManager("test-secret", "someone-else", time.Hour).Validate(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := m.Validate("not.a.token")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		later := NewJWTManager("test-secret", "ventech-test", time.Hour)
		later.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
		_, err := later.Validate(token)
		assert.ErrorIs(t, err, ErrExpiredToken)
	})
}

func TestStatusFor(t *testing.T) {
	status, code := StatusFor(ErrDealProductNotFound)
	assert.Equal(t, 404, status)
	assert.Equal(t, "DEAL_PRODUCT_NOT_FOUND", code)

	status, code = StatusFor(fmt.Errorf("signup: %w", ErrEmailTaken))
	assert.Equal(t, 409, status)
	assert.Equal(t, "EMAIL_TAKEN", code)

	status, code = StatusFor(assert.AnError)
	assert.Equal(t, 500, status)
	assert.Equal(t, "INTERNAL_ERROR", code)
}
