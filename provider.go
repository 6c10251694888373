package account

import (
	"context"

	"github.com/goliatone/go-errors"
)

// AccountProvider resolves identities out of the accounts store. It is the
// identity lookup collaborator behind both the login flow and the gate.
type AccountProvider struct {
	store  Accounts
	hasher PasswordAuthenticator
	logger Logger
}

var _ IdentityProvider = (*AccountProvider)(nil)

// NewAccountProvider will create a new AccountProvider
func NewAccountProvider(store Accounts) *AccountProvider {
	return &AccountProvider{
		store:  store,
		hasher: Hasher{},
		logger: defLogger{},
	}
}

func (p *AccountProvider) WithLogger(logger Logger) *AccountProvider {
	if logger != nil {
		p.logger = logger
	}
	return p
}

func (p *AccountProvider) WithHasher(hasher PasswordAuthenticator) *AccountProvider {
	if hasher != nil {
		p.hasher = hasher
	}
	return p
}

// VerifyIdentity will find the account, compare the password, and return
// the identity. Lookup misses surface as bad credentials so callers cannot
// probe which emails exist.
func (p *AccountProvider) VerifyIdentity(ctx context.Context, identifier, password string) (Identity, error) {
	record, err := p.store.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrMismatchedHashAndPassword
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to retrieve account during verification")
	}

	if err := ensureAuthenticatableAccount(record); err != nil {
		return nil, err
	}

	if err := p.hasher.ComparePasswordAndHash(password, record.PasswordHash); err != nil {
		return nil, ErrMismatchedHashAndPassword
	}

	return identityFromAccount(record), nil
}

// FindIdentityByIdentifier resolves an identity without credential checks;
// the gate uses it after token verification.
func (p *AccountProvider) FindIdentityByIdentifier(ctx context.Context, identifier string) (Identity, error) {
	record, err := p.store.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrIdentityNotFound
		}
		return nil, err
	}

	if err := ensureAuthenticatableAccount(record); err != nil {
		return nil, err
	}

	return identityFromAccount(record), nil
}

func ensureAuthenticatableAccount(record *Account) error {
	if record == nil {
		return ErrIdentityNotFound
	}

	if !record.Enabled {
		return ErrAccountDisabled.Clone().WithMetadata(map[string]any{
			"id": record.ID.String(),
		})
	}

	if record.Locked {
		return ErrAccountLocked.Clone().WithMetadata(map[string]any{
			"id": record.ID.String(),
		})
	}

	return nil
}

type accountIdentity struct {
	id          string
	subject     string
	enabled     bool
	locked      bool
	authorities []string
}

var _ Identity = accountIdentity{}

func identityFromAccount(record *Account) accountIdentity {
	return accountIdentity{
		id:          record.ID.String(),
		subject:     record.Email,
		enabled:     record.Enabled,
		locked:      record.Locked,
		authorities: record.Authorities(),
	}
}

func (a accountIdentity) ID() string {
	return a.id
}

func (a accountIdentity) Subject() string {
	return a.subject
}

func (a accountIdentity) Enabled() bool {
	return a.enabled
}

func (a accountIdentity) Locked() bool {
	return a.locked
}

func (a accountIdentity) Authorities() []string {
	return a.authorities
}
