package account

import (
	"context"

	"github.com/goliatone/go-account/middleware/authgate"
)

// Authenticator drives the credential-based login flow and the refresh
// exchange, the two issuance paths in front of the TokenService.
type Authenticator struct {
	provider IdentityProvider
	tokens   *TokenService
	logger   Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, tokens *TokenService) *Authenticator {
	return &Authenticator{
		provider: provider,
		tokens:   tokens,
		logger:   defLogger{},
	}
}

func (a *Authenticator) WithLogger(logger Logger) *Authenticator {
	if logger != nil {
		a.logger = logger
	}
	return a
}

// TokenService returns the TokenService instance used by this Authenticator
func (a *Authenticator) TokenService() *TokenService {
	return a.tokens
}

// Login verifies the credentials and issues an access/refresh token pair.
// Disabled and locked accounts are rejected before issuance.
func (a *Authenticator) Login(ctx context.Context, identifier, password string) (TokenPair, error) {
	identity, err := a.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		a.logger.Error("login verify identity error", "error", err)
		return TokenPair{}, err
	}

	pair, err := a.tokens.IssueTokenPair(identity.Subject())
	if err != nil {
		a.logger.Error("login token issuance error", "error", err)
		return TokenPair{}, err
	}

	return pair, nil
}

// Refresh exchanges a refresh token for a new access token. The refresh
// token is echoed back unchanged; this service never rotates it.
func (a *Authenticator) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	access, err := a.tokens.RefreshAccess(refreshToken)
	if err != nil {
		a.logger.Error("refresh exchange error", "error", err)
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  access,
		RefreshToken: refreshToken,
		TokenType:    TokenTypeBearer,
	}, nil
}

// GateResolver adapts an IdentityProvider into the gate's resolver shape.
func GateResolver(provider IdentityProvider) authgate.IdentityResolver {
	return func(ctx context.Context, subject string) (authgate.Principal, error) {
		identity, err := provider.FindIdentityByIdentifier(ctx, subject)
		if err != nil {
			return authgate.Principal{}, err
		}

		return authgate.Principal{
			Subject: identity.Subject(),
			Enabled: identity.Enabled(),
			Locked:  identity.Locked(),
			Roles:   identity.Authorities(),
		}, nil
	}
}
