package account

import (
	"time"
)

// TokenTypeBearer is the token type echoed with every issued pair.
const TokenTypeBearer = "Bearer"

// TokenPair is the issuance result returned to login and refresh callers.
// Tokens are opaque to clients and never persisted.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// TokenService issues access/refresh token pairs and validates presented
// tokens. Issuance and verification are stateless and safe for concurrent use.
type TokenService struct {
	codec      *TokenCodec
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
	logger     Logger
}

// NewTokenService creates a TokenService over the provider's key material
// with independently configured access and refresh TTLs.
func NewTokenService(keys *KeyProvider, cfg Config) *TokenService {
	return &TokenService{
		codec:      NewTokenCodec(keys),
		accessTTL:  cfg.GetAccessTokenTTL(),
		refreshTTL: cfg.GetRefreshTokenTTL(),
		now:        time.Now,
		logger:     defLogger{},
	}
}

func (ts *TokenService) WithLogger(logger Logger) *TokenService {
	if logger != nil {
		ts.logger = logger
	}
	return ts
}

// WithClock injects a custom clock (useful for tests).
func (ts *TokenService) WithClock(clock func() time.Time) *TokenService {
	if clock != nil {
		ts.now = clock
	}
	return ts
}

// IssueAccessToken signs a short-lived access token for the subject.
func (ts *TokenService) IssueAccessToken(subject string) (string, error) {
	return ts.codec.Encode(NewTokenClaims(subject, KindAccess, ts.now(), ts.accessTTL))
}

// IssueRefreshToken signs a refresh token for the subject.
func (ts *TokenService) IssueRefreshToken(subject string) (string, error) {
	return ts.codec.Encode(NewTokenClaims(subject, KindRefresh, ts.now(), ts.refreshTTL))
}

// IssueTokenPair signs an access/refresh pair for the subject.
func (ts *TokenService) IssueTokenPair(subject string) (TokenPair, error) {
	access, err := ts.IssueAccessToken(subject)
	if err != nil {
		return TokenPair{}, err
	}

	refresh, err := ts.IssueRefreshToken(subject)
	if err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    TokenTypeBearer,
	}, nil
}

// IsValid reports whether the token verifies, carries the expected subject,
// and is inside its validity window. It fails closed and never errors.
func (ts *TokenService) IsValid(tokenString, expectedSubject string) bool {
	claims, err := ts.codec.Decode(tokenString)
	if err != nil {
		return false
	}

	if claims.Subject() != expectedSubject {
		return false
	}

	return !claims.ExpiredAt(ts.now())
}

// ExtractSubject decodes the token and returns its subject, propagating
// decode failures.
func (ts *TokenService) ExtractSubject(tokenString string) (string, error) {
	claims, err := ts.codec.Decode(tokenString)
	if err != nil {
		return "", err
	}
	return claims.Subject(), nil
}

// RefreshAccess exchanges a live refresh token for a new access token. The
// refresh token itself is never rotated; callers echo it back unchanged.
func (ts *TokenService) RefreshAccess(refreshToken string) (string, error) {
	claims, err := ts.codec.Decode(refreshToken)
	if err != nil {
		return "", err
	}

	if claims.TokenKind() != KindRefresh {
		return "", ErrWrongTokenKind.Clone().WithMetadata(map[string]any{
			"token_type": claims.TokenKind(),
		})
	}

	if claims.ExpiredAt(ts.now()) {
		return "", ErrTokenExpired
	}

	return ts.IssueAccessToken(claims.Subject())
}

// Decode exposes raw claim decoding for collaborators that need claim
// introspection beyond subject extraction.
func (ts *TokenService) Decode(tokenString string) (*TokenClaims, error) {
	return ts.codec.Decode(tokenString)
}
