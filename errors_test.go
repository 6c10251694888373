package account_test

import (
	"fmt"
	"testing"

	"github.com/goliatone/go-account"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTextCodes(t *testing.T) {
	testCases := []struct {
		err  error
		code string
	}{
		{account.ErrTokenMalformed, "TOKEN_MALFORMED"},
		{account.ErrTokenExpired, "TOKEN_EXPIRED"},
		{account.ErrWrongTokenKind, "WRONG_TOKEN_TYPE"},
		{account.ErrAccountNotFound, "USER_NOT_FOUND"},
		{account.ErrDuplicateEmail, "EMAIL_ALREADY_EXISTS"},
		{account.ErrAlreadyDeactivated, "ACCOUNT_ALREADY_DEACTIVATED"},
		{account.ErrAccountDisabled, "ERR_USER_DISABLED"},
		{account.ErrMismatchedHashAndPassword, "BAD_CREDENTIALS"},
	}

	for _, tc := range testCases {
		t.Run(tc.code, func(t *testing.T) {
			var richErr *goerrors.Error
			require.True(t, goerrors.As(tc.err, &richErr))
			assert.Equal(t, tc.code, richErr.TextCode)
		})
	}
}

func TestErrorsSurviveWrapping(t *testing.T) {
	wrapped := fmt.Errorf("outer context: %w", account.ErrTokenExpired)
	assert.ErrorIs(t, wrapped, account.ErrTokenExpired)

	withMeta := account.ErrDuplicateEmail.Clone().WithMetadata(map[string]any{"email": "x@example.com"})
	assert.ErrorIs(t, withMeta, account.ErrDuplicateEmail)
	assert.Nil(t, account.ErrDuplicateEmail.Metadata, "sentinel must stay pristine")
}

func TestIsTokenExpiredError(t *testing.T) {
	assert.False(t, account.IsTokenExpiredError(nil))
	assert.True(t, account.IsTokenExpiredError(account.ErrTokenExpired))
	assert.True(t, account.IsTokenExpiredError(fmt.Errorf("token is expired")))
	assert.False(t, account.IsTokenExpiredError(account.ErrTokenMalformed))
}

func TestIsMalformedError(t *testing.T) {
	assert.False(t, account.IsMalformedError(nil))
	assert.True(t, account.IsMalformedError(account.ErrTokenMalformed))
	assert.True(t, account.IsMalformedError(fmt.Errorf("token is malformed")))
	assert.False(t, account.IsMalformedError(account.ErrTokenExpired))
}
