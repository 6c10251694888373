package account_test

import (
	"testing"
	"time"

	"github.com/goliatone/go-account"
	"github.com/stretchr/testify/assert"
)

func TestNewTokenClaims(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	claims := account.NewTokenClaims("user-123", account.KindRefresh, issuedAt, time.Hour)

	assert.Equal(t, "user-123", claims.Subject())
	assert.Equal(t, account.KindRefresh, claims.TokenKind())
	assert.Equal(t, issuedAt, claims.IssuedTime())
	assert.Equal(t, issuedAt.Add(time.Hour), claims.Expires())
}

func TestTokenClaimsExpiredAt(t *testing.T) {
	issuedAt := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	claims := account.NewTokenClaims("user-123", account.KindAccess, issuedAt, time.Hour)

	t.Run("inside the window", func(t *testing.T) {
		assert.False(t, claims.ExpiredAt(issuedAt.Add(59*time.Minute)))
	})

	t.Run("exactly at expiry", func(t *testing.T) {
		assert.True(t, claims.ExpiredAt(issuedAt.Add(time.Hour)))
	})

	t.Run("past the window", func(t *testing.T) {
		assert.True(t, claims.ExpiredAt(issuedAt.Add(2*time.Hour)))
	})
}

func TestTokenClaimsWithoutExpiry(t *testing.T) {
	claims := &account.TokenClaims{}

	assert.True(t, claims.ExpiredAt(time.Now()), "missing exp fails closed")
	assert.True(t, claims.Expires().IsZero())
	assert.True(t, claims.IssuedTime().IsZero())
}
