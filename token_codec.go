package account

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenCodec is the pure encode/decode boundary for signed tokens. It never
// checks expiry; validity windows are the token service's responsibility.
type TokenCodec struct {
	keys   *KeyProvider
	parser *jwt.Parser
}

// NewTokenCodec creates a codec bound to the provider's current key material.
// Key reloads are picked up on the next encode/decode.
func NewTokenCodec(keys *KeyProvider) *TokenCodec {
	return &TokenCodec{
		keys: keys,
		// expiry is checked by callers, keep decode a pure signature gate
		parser: jwt.NewParser(jwt.WithoutClaimsValidation()),
	}
}

// Encode signs the claims with the current private key.
func (c *TokenCodec) Encode(claims *TokenClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	material, err := c.keys.Material()
	if err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(material.SigningMethod(), claims)

	signed, err := token.SignedString(material.PrivateKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign token")
	}

	return signed, nil
}

// Decode verifies the signature against the current public key and parses
// the claims. Structural and cryptographic mismatches collapse into
// ErrTokenMalformed since callers treat them identically.
func (c *TokenCodec) Decode(tokenString string) (*TokenClaims, error) {
	material, err := c.keys.Material()
	if err != nil {
		return nil, err
	}

	expectedAlg := material.SigningMethod().Alg()

	token, err := c.parser.ParseWithClaims(tokenString, &TokenClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != expectedAlg {
			return nil, ErrTokenMalformed.Clone().WithMetadata(map[string]any{
				"alg": t.Header["alg"],
			})
		}
		return material.PublicKey, nil
	})

	if err != nil {
		return nil, ErrTokenMalformed
	}

	claims, ok := token.Claims.(*TokenClaims)
	if !ok || !token.Valid {
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
