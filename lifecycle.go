package account

import (
	"context"
	"sync/atomic"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

const (
	// DefaultDeletionRetention is the window between a deletion request and
	// the purge sweep hard-deleting the row.
	DefaultDeletionRetention = 24 * time.Hour
	// DefaultSweepBatchSize bounds per-transaction work during the sweep.
	DefaultSweepBatchSize = 50
)

// Lifecycle governs the account state machine: registration, credential and
// profile mutation, activation flips, and the deferred deletion sweep.
type Lifecycle struct {
	repo      RepositoryManager
	hasher    PasswordAuthenticator
	retention time.Duration
	batchSize int
	now       func() time.Time
	logger    Logger
	sweeping  atomic.Bool
}

// LifecycleOption customizes Lifecycle construction.
type LifecycleOption func(*Lifecycle)

// WithLifecycleLogger overrides the default logger.
func WithLifecycleLogger(logger Logger) LifecycleOption {
	return func(l *Lifecycle) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithLifecycleClock injects a custom clock (useful for tests).
func WithLifecycleClock(clock func() time.Time) LifecycleOption {
	return func(l *Lifecycle) {
		if clock != nil {
			l.now = clock
		}
	}
}

// WithLifecycleHasher overrides the bcrypt default.
func WithLifecycleHasher(hasher PasswordAuthenticator) LifecycleOption {
	return func(l *Lifecycle) {
		if hasher != nil {
			l.hasher = hasher
		}
	}
}

// WithDeletionRetention overrides the purge retention window.
func WithDeletionRetention(retention time.Duration) LifecycleOption {
	return func(l *Lifecycle) {
		if retention > 0 {
			l.retention = retention
		}
	}
}

// WithSweepBatchSize overrides the sweep batch size.
func WithSweepBatchSize(size int) LifecycleOption {
	return func(l *Lifecycle) {
		if size > 0 {
			l.batchSize = size
		}
	}
}

// NewLifecycle creates the lifecycle service over the given repositories.
func NewLifecycle(repo RepositoryManager, opts ...LifecycleOption) *Lifecycle {
	l := &Lifecycle{
		repo:      repo,
		hasher:    Hasher{},
		retention: DefaultDeletionRetention,
		batchSize: DefaultSweepBatchSize,
		now:       time.Now,
		logger:    defLogger{},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}

	return l
}

// Register validates the candidate, rejects duplicates, and persists a new
// enabled account carrying the default role. Runs in one transaction.
func (l *Lifecycle) Register(ctx context.Context, msg RegistrationMessage) (*Account, error) {
	if err := msg.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid registration request")
	}

	if msg.Password != msg.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	if exists, err := l.repo.Accounts().EmailExists(ctx, msg.Email); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check email uniqueness")
	} else if exists {
		return nil, ErrDuplicateEmail.Clone().WithMetadata(map[string]any{"email": msg.Email})
	}

	if exists, err := l.repo.Accounts().PhoneExists(ctx, msg.Phone); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check phone uniqueness")
	} else if exists {
		return nil, ErrDuplicatePhone.Clone().WithMetadata(map[string]any{"phone": msg.Phone})
	}

	record := &Account{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	err := l.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		hash, err := l.hasher.HashPassword(msg.Password)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		role, err := l.repo.Roles().GetByNameTx(ctx, tx, RoleUser)
		if err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "default role is not seeded")
		}

		record.FirstName = msg.FirstName
		record.LastName = msg.LastName
		record.Email = msg.Email
		record.Phone = msg.Phone
		record.PasswordHash = hash
		record.DateOfBirth = msg.DateOfBirth
		record.Enabled = true

		if msg.UseHashid {
			if id, err := hashid.NewUUID(msg.Email); err == nil {
				record.ID = id
			}
		}

		if record, err = l.repo.Accounts().RegisterTx(ctx, tx, record); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryConflict, "could not create account")
		}

		if err := l.repo.Accounts().AttachRoleTx(ctx, tx, record.ID, role.ID); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not attach default role")
		}

		record.Roles = append(record.Roles, role)
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, richErr
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "registration transaction failed")
	}

	l.logger.Info("registered account %s", record.ID)
	return record, nil
}

// ChangePassword replaces the stored hash after checking the confirmation
// and the current password.
func (l *Lifecycle) ChangePassword(ctx context.Context, id string, msg ChangePasswordMessage) error {
	if err := msg.Validate(); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryValidation, "invalid password change request")
	}

	if msg.NewPassword != msg.ConfirmPassword {
		return ErrPasswordMismatch
	}

	record, err := l.getAccount(ctx, id)
	if err != nil {
		return err
	}

	if err := l.hasher.ComparePasswordAndHash(msg.CurrentPassword, record.PasswordHash); err != nil {
		return ErrInvalidCurrentPassword
	}

	hash, err := l.hasher.HashPassword(msg.NewPassword)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	return l.repo.Accounts().UpdatePassword(ctx, record.ID, hash)
}

// UpdateProfile merges the non-blank changed fields into the stored record.
func (l *Lifecycle) UpdateProfile(ctx context.Context, id string, msg ProfileUpdateMessage) (*Account, error) {
	if err := msg.Validate(); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "invalid profile update request")
	}

	record, err := l.getAccount(ctx, id)
	if err != nil {
		return nil, err
	}

	patch := &Account{ID: record.ID}
	changed := false

	if msg.FirstName != "" && msg.FirstName != record.FirstName {
		patch.FirstName = msg.FirstName
		changed = true
	}
	if msg.LastName != "" && msg.LastName != record.LastName {
		patch.LastName = msg.LastName
		changed = true
	}
	if msg.DateOfBirth != nil && !timePtrEqual(msg.DateOfBirth, record.DateOfBirth) {
		patch.DateOfBirth = msg.DateOfBirth
		changed = true
	}

	if !changed {
		return record, nil
	}

	updated, err := l.repo.Accounts().Update(ctx, patch, repository.UpdateByID(record.ID.String()))
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update profile")
	}

	return updated, nil
}

// Deactivate disables an enabled account.
func (l *Lifecycle) Deactivate(ctx context.Context, id string) error {
	record, err := l.getAccount(ctx, id)
	if err != nil {
		return err
	}

	if !record.Enabled {
		return ErrAlreadyDeactivated.Clone().WithMetadata(map[string]any{"id": record.ID.String()})
	}

	return l.repo.Accounts().SetEnabled(ctx, record.ID, false)
}

// Reactivate enables a disabled account.
func (l *Lifecycle) Reactivate(ctx context.Context, id string) error {
	record, err := l.getAccount(ctx, id)
	if err != nil {
		return err
	}

	if record.Enabled {
		return ErrAlreadyActivated.Clone().WithMetadata(map[string]any{"id": record.ID.String()})
	}

	return l.repo.Accounts().SetEnabled(ctx, record.ID, true)
}

// RequestDeletion marks the account for the purge sweep. Marking an already
// marked account resets the retention clock rather than failing; deletion is
// a user intent, repeating it should never error.
func (l *Lifecycle) RequestDeletion(ctx context.Context, id string) error {
	record, err := l.getAccount(ctx, id)
	if err != nil {
		return err
	}

	if err := l.repo.Accounts().SetDeletionMark(ctx, record.ID, l.now()); err != nil {
		return err
	}

	l.logger.Info("account %s marked for deletion", record.ID)
	return nil
}

// SweepDeletions hard-deletes every account whose retention window elapsed,
// severing role associations first. Work happens in batches, one transaction
// per batch, so a mid-sweep failure keeps earlier batches deleted. Concurrent
// invocations are single-flighted; the loser returns immediately.
func (l *Lifecycle) SweepDeletions(ctx context.Context) (int, error) {
	if !l.sweeping.CompareAndSwap(false, true) {
		l.logger.Warn("deletion sweep already running, skipping")
		return 0, nil
	}
	defer l.sweeping.Store(false)

	cutoff := l.now().Add(-l.retention)
	deleted := 0

	for {
		batch, err := l.repo.Accounts().FindDueForDeletion(ctx, cutoff, l.batchSize)
		if err != nil {
			return deleted, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to select accounts due for deletion")
		}

		if len(batch) == 0 {
			break
		}

		err = l.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			for _, record := range batch {
				l.logger.Debug("deleting account %s", record.ID)

				if err := l.repo.Accounts().DetachRolesTx(ctx, tx, record.ID); err != nil {
					return err
				}
				if err := l.repo.Accounts().HardDeleteTx(ctx, tx, record.ID); err != nil {
					return err
				}
			}
			return nil
		})
		if err != nil {
			return deleted, goerrors.Wrap(err, goerrors.CategoryInternal, "deletion sweep batch failed")
		}

		deleted += len(batch)

		if len(batch) < l.batchSize {
			break
		}
	}

	if deleted > 0 {
		l.logger.Info("processed %d deletions", deleted)
	}

	return deleted, nil
}

func (l *Lifecycle) getAccount(ctx context.Context, id string) (*Account, error) {
	record, err := l.repo.Accounts().GetByIdentifier(ctx, id)
	if err != nil {
		if goerrors.IsNotFound(err) || repository.IsRecordNotFound(err) {
			return nil, ErrAccountNotFound.Clone().WithMetadata(map[string]any{"id": id})
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load account")
	}
	return record, nil
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
