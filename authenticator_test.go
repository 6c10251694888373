package account_test

import (
	"context"
	"testing"

	"github.com/goliatone/go-account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockIdentityProvider implements account.IdentityProvider for testing
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, identifier, password string) (account.Identity, error) {
	args := m.Called(ctx, identifier, password)
	if identity := args.Get(0); identity != nil {
		return identity.(account.Identity), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (account.Identity, error) {
	args := m.Called(ctx, identifier)
	if identity := args.Get(0); identity != nil {
		return identity.(account.Identity), args.Error(1)
	}
	return nil, args.Error(1)
}

// TestIdentity is a plain account.Identity value for tests
type TestIdentity struct {
	id      string
	subject string
	enabled bool
	locked  bool
	roles   []string
}

func (t TestIdentity) ID() string            { return t.id }
func (t TestIdentity) Subject() string       { return t.subject }
func (t TestIdentity) Enabled() bool         { return t.enabled }
func (t TestIdentity) Locked() bool          { return t.locked }
func (t TestIdentity) Authorities() []string { return t.roles }

func TestAuthenticatorLogin(t *testing.T) {
	ctx := context.Background()
	tokens := newTestTokenService(t)

	identity := TestIdentity{
		id:      "a1d4c9f1-0000-4000-8000-000000000001",
		subject: "jane.doe@example.com",
		enabled: true,
		roles:   []string{account.RoleUser},
	}

	t.Run("issues a pair on valid credentials", func(t *testing.T) {
		provider := new(MockIdentityProvider)
		provider.On("VerifyIdentity", ctx, identity.subject, "password123").
			Return(identity, nil).Once()

		auther := account.NewAuthenticator(provider, tokens)

		pair, err := auther.Login(ctx, identity.subject, "password123")
		require.NoError(t, err)

		assert.Equal(t, account.TokenTypeBearer, pair.TokenType)
		assert.True(t, tokens.IsValid(pair.AccessToken, identity.subject))
		assert.True(t, tokens.IsValid(pair.RefreshToken, identity.subject))

		provider.AssertExpectations(t)
	})

	t.Run("propagates credential failures", func(t *testing.T) {
		provider := new(MockIdentityProvider)
		provider.On("VerifyIdentity", ctx, identity.subject, "wrong").
			Return(nil, account.ErrMismatchedHashAndPassword).Once()

		auther := account.NewAuthenticator(provider, tokens)

		pair, err := auther.Login(ctx, identity.subject, "wrong")
		assert.ErrorIs(t, err, account.ErrMismatchedHashAndPassword)
		assert.Empty(t, pair.AccessToken)
	})

	t.Run("propagates disabled account", func(t *testing.T) {
		provider := new(MockIdentityProvider)
		provider.On("VerifyIdentity", ctx, identity.subject, "password123").
			Return(nil, account.ErrAccountDisabled).Once()

		auther := account.NewAuthenticator(provider, tokens)

		_, err := auther.Login(ctx, identity.subject, "password123")
		assert.ErrorIs(t, err, account.ErrAccountDisabled)
	})
}

func TestAuthenticatorRefresh(t *testing.T) {
	ctx := context.Background()
	tokens := newTestTokenService(t)
	provider := new(MockIdentityProvider)
	auther := account.NewAuthenticator(provider, tokens)

	pair, err := tokens.IssueTokenPair("jane.doe@example.com")
	require.NoError(t, err)

	t.Run("exchanges refresh for a new access token", func(t *testing.T) {
		refreshed, err := auther.Refresh(ctx, pair.RefreshToken)
		require.NoError(t, err)

		assert.Equal(t, pair.RefreshToken, refreshed.RefreshToken, "refresh token is never rotated")
		assert.True(t, tokens.IsValid(refreshed.AccessToken, "jane.doe@example.com"))
	})

	t.Run("rejects an access token", func(t *testing.T) {
		_, err := auther.Refresh(ctx, pair.AccessToken)
		assert.ErrorIs(t, err, account.ErrWrongTokenKind)
	})
}

func TestGateResolver(t *testing.T) {
	ctx := context.Background()

	identity := TestIdentity{
		id:      "a1d4c9f1-0000-4000-8000-000000000001",
		subject: "jane.doe@example.com",
		enabled: true,
		roles:   []string{account.RoleUser},
	}

	provider := new(MockIdentityProvider)
	provider.On("FindIdentityByIdentifier", ctx, identity.subject).
		Return(identity, nil).Once()

	resolver := account.GateResolver(provider)

	principal, err := resolver(ctx, identity.subject)
	require.NoError(t, err)

	assert.Equal(t, identity.subject, principal.Subject)
	assert.True(t, principal.Enabled)
	assert.False(t, principal.Locked)
	assert.Equal(t, []string{account.RoleUser}, principal.Roles)
}
