package account

import (
	"github.com/goliatone/go-router"

	"github.com/goliatone/go-account/middleware/authgate"
)

// NewAuthGate assembles the request gate from the shared configuration:
// routes under the configured public prefixes bypass verification, everything
// else must present a bearer token that resolves to a live identity.
func NewAuthGate(cfg Config, tokens *TokenService, provider IdentityProvider) router.MiddlewareFunc {
	return authgate.New(authgate.Config{
		Verifier:       tokens,
		Resolver:       GateResolver(provider),
		PublicPrefixes: cfg.GetPublicRoutePrefixes(),
		AuthScheme:     cfg.GetAuthScheme(),
		ContextKey:     cfg.GetContextKey(),
	})
}
