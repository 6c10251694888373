package authgate

import (
	"context"
	"errors"
	"strings"

	"github.com/goliatone/go-router"
)

// ErrUnauthorized terminates the request pipeline with the fixed 401 body.
var ErrUnauthorized = errors.New("invalid JWT or user not found")

// TokenVerifier mirrors the token service surface the gate needs without
// creating an import cycle with the root package.
type TokenVerifier interface {
	ExtractSubject(tokenString string) (string, error)
	IsValid(tokenString, expectedSubject string) bool
}

// Principal is the authenticated identity attached to the request after
// successful verification.
type Principal struct {
	Subject string   `json:"subject"`
	Enabled bool     `json:"enabled"`
	Locked  bool     `json:"locked"`
	Roles   []string `json:"roles,omitempty"`
}

// IdentityResolver looks up the principal for a verified token subject.
type IdentityResolver func(ctx context.Context, subject string) (Principal, error)

// UnauthorizedBody is the fixed response payload for rejected requests.
type UnauthorizedBody struct {
	Status  int    `json:"status"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

type Config struct {
	// Verifier is required for token verification
	Verifier TokenVerifier
	// Resolver is required to map a token subject to an identity
	Resolver IdentityResolver
	// PublicPrefixes bypass the gate entirely
	PublicPrefixes []string
	// Filter skips the gate for matching requests, evaluated after PublicPrefixes
	Filter         func(router.Context) bool
	SuccessHandler router.HandlerFunc
	ErrorHandler   router.ErrorHandler
	AuthScheme     string
	ContextKey     string
}

// GetDefaultConfig fills in the defaults for any zero-value fields.
func GetDefaultConfig(config ...Config) Config {
	var cfg Config
	if len(config) > 0 {
		cfg = config[0]
	}

	if cfg.AuthScheme == "" {
		cfg.AuthScheme = "Bearer"
	}

	if cfg.ContextKey == "" {
		cfg.ContextKey = "principal"
	}

	if cfg.SuccessHandler == nil {
		cfg.SuccessHandler = func(ctx router.Context) error {
			return ctx.Next()
		}
	}

	if cfg.ErrorHandler == nil {
		cfg.ErrorHandler = defaultErrorHandler
	}

	return cfg
}

// New builds the authentication gate. Requests to public prefixes pass
// through untouched; requests without a bearer token pass through without a
// principal so downstream authorization can decide; requests with a token
// either establish a principal or stop with 401. Verification happens once
// per request.
func New(config ...Config) router.MiddlewareFunc {
	cfg := GetDefaultConfig(config...)

	return func(hf router.HandlerFunc) router.HandlerFunc {
		return func(ctx router.Context) error {
			if isPublicPath(ctx.Path(), cfg.PublicPrefixes) {
				return ctx.Next()
			}

			if cfg.Filter != nil && cfg.Filter(ctx) {
				return ctx.Next()
			}

			raw, ok := extractBearerToken(ctx, cfg.AuthScheme)
			if !ok {
				// absent or malformed header is not the gate's call to reject
				return ctx.Next()
			}

			subject, err := cfg.Verifier.ExtractSubject(raw)
			if err != nil {
				return reject(ctx, cfg, err)
			}

			principal, err := cfg.Resolver(ctx.Context(), subject)
			if err != nil {
				return reject(ctx, cfg, err)
			}

			if !cfg.Verifier.IsValid(raw, principal.Subject) {
				return reject(ctx, cfg, ErrUnauthorized)
			}

			ctx.Locals(cfg.ContextKey, principal)
			ctx.SetContext(WithPrincipal(ctx.Context(), principal))

			return cfg.SuccessHandler(ctx)
		}
	}
}

// reject clears any partially established identity and terminates the
// request. This is a hard stop, not a fallthrough.
func reject(ctx router.Context, cfg Config, err error) error {
	ctx.Locals(cfg.ContextKey, nil)
	ctx.SetContext(ClearPrincipal(ctx.Context()))
	return cfg.ErrorHandler(ctx, err)
}

func defaultErrorHandler(ctx router.Context, _ error) error {
	return ctx.JSON(router.StatusUnauthorized, UnauthorizedBody{
		Status:  router.StatusUnauthorized,
		Error:   "Unauthorized",
		Message: ErrUnauthorized.Error(),
	})
}

func isPublicPath(path string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if prefix != "" && strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func extractBearerToken(ctx router.Context, scheme string) (string, bool) {
	header := ctx.GetString(router.HeaderAuthorization, "")
	if header == "" {
		return "", false
	}

	prefix := scheme + " "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}

	token := strings.TrimSpace(header[len(prefix):])
	if token == "" {
		return "", false
	}

	return token, true
}

type contextKey struct{ name string }

var principalCtxKey = &contextKey{"principal"}

// WithPrincipal stores the principal in the standard context so handlers
// beyond the router boundary can read the authenticated identity.
func WithPrincipal(ctx context.Context, principal Principal) context.Context {
	return context.WithValue(ctx, principalCtxKey, principal)
}

// ClearPrincipal removes any principal from the context.
func ClearPrincipal(ctx context.Context) context.Context {
	return context.WithValue(ctx, principalCtxKey, nil)
}

// PrincipalFromContext finds the principal in the context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	principal, ok := ctx.Value(principalCtxKey).(Principal)
	return principal, ok
}
