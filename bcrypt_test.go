package account_test

import (
	"testing"

	"github.com/goliatone/go-account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := account.HashPassword("securePassword123!")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "securePassword123!", hash)

	assert.NoError(t, account.ComparePasswordAndHash("securePassword123!", hash))

	err = account.ComparePasswordAndHash("wrongPassword", hash)
	assert.ErrorIs(t, err, account.ErrMismatchedHashAndPassword)
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := account.HashPassword("")
	assert.ErrorIs(t, err, account.ErrNoEmptyString)
}

func TestComparePasswordAndHashInvalidHash(t *testing.T) {
	err := account.ComparePasswordAndHash("whatever", "not-a-bcrypt-hash")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, account.ErrMismatchedHashAndPassword)
}

func TestHasherImplementsPasswordAuthenticator(t *testing.T) {
	var hasher account.PasswordAuthenticator = account.Hasher{}

	hash, err := hasher.HashPassword("securePassword123!")
	require.NoError(t, err)
	assert.NoError(t, hasher.ComparePasswordAndHash("securePassword123!", hash))
}
