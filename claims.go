package account

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenKind discriminates access tokens from refresh tokens via the
// token_type claim.
type TokenKind = string

const (
	// KindAccess marks short-lived tokens presented on every request
	KindAccess TokenKind = "ACCESS_TOKEN"
	// KindRefresh marks long-lived tokens only accepted by the refresh exchange
	KindRefresh TokenKind = "REFRESH_TOKEN"
)

// TokenClaims is the signed token payload: subject, token kind, and the
// issuance/expiry window. Value type, produced by the codec on decode.
type TokenClaims struct {
	jwt.RegisteredClaims
	Kind TokenKind `json:"token_type,omitempty"`
}

// NewTokenClaims builds the claim set for a token issued now with the given ttl.
func NewTokenClaims(subject string, kind TokenKind, issuedAt time.Time, ttl time.Duration) *TokenClaims {
	return &TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(ttl)),
		},
		Kind: kind,
	}
}

// Subject returns the identity key the token was issued for.
func (c *TokenClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// TokenKind returns the token_type claim.
func (c *TokenClaims) TokenKind() TokenKind {
	return c.Kind
}

// Expires returns the expiry timestamp, zero when the claim is absent.
func (c *TokenClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedTime returns the issuance timestamp, zero when the claim is absent.
func (c *TokenClaims) IssuedTime() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// ExpiredAt reports whether the token validity window has closed at the
// given instant. Tokens without an exp claim are treated as expired.
func (c *TokenClaims) ExpiredAt(now time.Time) bool {
	expires := c.Expires()
	if expires.IsZero() {
		return true
	}
	return !expires.After(now)
}
