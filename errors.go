package account

import (
	"strings"

	"github.com/goliatone/go-errors"
)

// Token failures. Signature and structural mismatches are collapsed into a
// single malformed error because callers treat them identically.
var (
	ErrTokenMalformed = errors.New("invalid or malformed token", errors.CategoryAuth).
				WithTextCode("TOKEN_MALFORMED").
				WithCode(errors.CodeUnauthorized)

	ErrTokenExpired = errors.New("token expired", errors.CategoryAuth).
			WithTextCode("TOKEN_EXPIRED").
			WithCode(errors.CodeUnauthorized)

	ErrWrongTokenKind = errors.New("wrong token type", errors.CategoryAuth).
				WithTextCode("WRONG_TOKEN_TYPE").
				WithCode(errors.CodeUnauthorized)
)

// Key loading failures, all fatal at startup.
var (
	ErrKeyRead = errors.New("unable to read key resource", errors.CategoryInternal).
			WithTextCode("KEY_READ_FAILED")

	ErrMalformedPEM = errors.New("malformed PEM resource", errors.CategoryInternal).
			WithTextCode("KEY_MALFORMED_PEM")

	ErrInvalidKeyEncoding = errors.New("bytes do not decode to a key of the configured algorithm", errors.CategoryInternal).
				WithTextCode("KEY_INVALID_ENCODING")

	ErrUnsupportedAlgorithm = errors.New("unsupported key algorithm", errors.CategoryInternal).
				WithTextCode("KEY_UNSUPPORTED_ALGORITHM")

	ErrWeakKey = errors.New("key size below minimum strength", errors.CategoryInternal).
			WithTextCode("KEY_TOO_WEAK")
)

// Domain validation failures surfaced with stable machine codes.
var (
	ErrAccountNotFound = errors.New("account not found", errors.CategoryNotFound).
				WithTextCode("USER_NOT_FOUND").
				WithCode(errors.CodeNotFound)

	ErrDuplicateEmail = errors.New("email already exists", errors.CategoryConflict).
				WithTextCode("EMAIL_ALREADY_EXISTS").
				WithCode(errors.CodeBadRequest)

	ErrDuplicatePhone = errors.New("phone number already exists", errors.CategoryConflict).
				WithTextCode("PHONE_ALREADY_EXISTS").
				WithCode(errors.CodeBadRequest)

	ErrPasswordMismatch = errors.New("password and confirmation do not match", errors.CategoryValidation).
				WithTextCode("PASSWORD_MISMATCH").
				WithCode(errors.CodeBadRequest)

	ErrInvalidCurrentPassword = errors.New("current password is invalid", errors.CategoryValidation).
					WithTextCode("INVALID_CURRENT_PASSWORD").
					WithCode(errors.CodeBadRequest)

	ErrAlreadyDeactivated = errors.New("account is already deactivated", errors.CategoryConflict).
				WithTextCode("ACCOUNT_ALREADY_DEACTIVATED").
				WithCode(errors.CodeBadRequest)

	ErrAlreadyActivated = errors.New("account is already activated", errors.CategoryConflict).
				WithTextCode("ACCOUNT_ALREADY_ACTIVATED").
				WithCode(errors.CodeBadRequest)
)

// Authentication failures.
var (
	ErrIdentityNotFound = errors.New("identity not found", errors.CategoryAuth).
				WithTextCode("IDENTITY_NOT_FOUND").
				WithCode(errors.CodeUnauthorized)

	ErrAccountDisabled = errors.New("account is disabled", errors.CategoryAuth).
				WithTextCode("ERR_USER_DISABLED").
				WithCode(errors.CodeUnauthorized)

	ErrAccountLocked = errors.New("account is locked", errors.CategoryAuth).
				WithTextCode("ERR_USER_LOCKED").
				WithCode(errors.CodeUnauthorized)

	ErrMismatchedHashAndPassword = errors.New("username and/or password is incorrect", errors.CategoryAuth).
					WithTextCode("BAD_CREDENTIALS").
					WithCode(errors.CodeUnauthorized)

	ErrNoEmptyString = errors.New("value must not be empty", errors.CategoryBadInput).
				WithTextCode("EMPTY_VALUE")
)

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenMalformed) {
		return true
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
