package account

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var updatePasswordSQL = `UPDATE "accounts" AS "acc"
SET
	"password_hash" = ?,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"acc"."id" = ?
RETURNING *;`

// Accounts is the persistence surface for account records.
type Accounts interface {
	repository.Repository[*Account]

	Register(ctx context.Context, record *Account) (*Account, error)
	RegisterTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error)
	Create(ctx context.Context, record *Account, criteria ...repository.InsertCriteria) (*Account, error)
	CreateTx(ctx context.Context, tx bun.IDB, record *Account, criteria ...repository.InsertCriteria) (*Account, error)

	GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*Account, error)
	GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (*Account, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	PhoneExists(ctx context.Context, phone string) (bool, error)

	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdatePasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error
	SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error
	SetDeletionMark(ctx context.Context, id uuid.UUID, markedAt time.Time) error

	AttachRoleTx(ctx context.Context, tx bun.IDB, accountID, roleID uuid.UUID) error
	DetachRolesTx(ctx context.Context, tx bun.IDB, accountID uuid.UUID) error
	HardDeleteTx(ctx context.Context, tx bun.IDB, accountID uuid.UUID) error

	FindDueForDeletion(ctx context.Context, cutoff time.Time, limit int) ([]*Account, error)
}

type accounts struct {
	repository.Repository[*Account]
	db *bun.DB
}

var (
	_ Accounts                        = (*accounts)(nil)
	_ repository.Repository[*Account] = (*accounts)(nil)
)

func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &accounts{
		Repository: repo,
		db:         db,
	}
}

func (a *accounts) Register(ctx context.Context, record *Account) (*Account, error) {
	return a.RegisterTx(ctx, a.db, record)
}

func (a *accounts) RegisterTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error) {
	return a.CreateTx(ctx, tx, record)
}

func (a *accounts) Create(ctx context.Context, record *Account, criteria ...repository.InsertCriteria) (*Account, error) {
	return a.CreateTx(ctx, a.db, record, criteria...)
}

func (a *accounts) CreateTx(ctx context.Context, tx bun.IDB, record *Account, criteria ...repository.InsertCriteria) (*Account, error) {
	prepareAccountDefaults(record)
	return a.Repository.CreateTx(ctx, tx, record, criteria...)
}

func (a *accounts) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (*Account, error) {
	return a.GetByIdentifierTx(ctx, a.db, identifier, criteria...)
}

func (a *accounts) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (*Account, error) {
	options := resolveAccountIdentifier(identifier)
	if len(options) == 0 {
		options = []identifierOption{
			{
				column: "id",
				value:  strings.TrimSpace(identifier),
			},
		}
	}

	for _, opt := range options {
		record := &Account{}
		q := tx.NewSelect().Model(record).Relation("Roles")

		for _, c := range criteria {
			q.Apply(c)
		}

		err := q.
			Where(fmt.Sprintf("?TableAlias.%s = ?", opt.column), opt.value).
			Limit(1).
			Scan(ctx)

		if err != nil {
			if repository.IsRecordNotFound(err) {
				continue
			}
			return nil, err
		}

		return record, nil
	}

	return nil, repository.NewRecordNotFound().
		WithMetadata(map[string]any{
			"identifier": identifier,
		})
}

func (a *accounts) EmailExists(ctx context.Context, email string) (bool, error) {
	return a.db.NewSelect().
		Model((*Account)(nil)).
		Where("LOWER(?TableAlias.email) = LOWER(?)", strings.TrimSpace(email)).
		Exists(ctx)
}

func (a *accounts) PhoneExists(ctx context.Context, phone string) (bool, error) {
	return a.db.NewSelect().
		Model((*Account)(nil)).
		Where("?TableAlias.phone_number = ?", strings.TrimSpace(phone)).
		Exists(ctx)
}

func (a *accounts) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return a.UpdatePasswordTx(ctx, a.db, id, passwordHash)
}

func (a *accounts) UpdatePasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	res, err := a.Repository.RawTx(ctx, tx, updatePasswordSQL, passwordHash, id.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

// SetEnabled flips the enabled flag with a raw update. The ORM omits zero
// values on partial updates, which would silently drop enabled=false.
func (a *accounts) SetEnabled(ctx context.Context, id uuid.UUID, enabled bool) error {
	res, err := a.db.NewRaw(`
		UPDATE "accounts" AS "acc"
		SET
			"is_enabled" = ?,
			"updated_at" = CURRENT_TIMESTAMP
		WHERE ("acc"."id" = ?)
		RETURNING *;
	`, enabled, id).Exec(ctx)
	if err != nil {
		return err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

// SetDeletionMark stamps the account for the purge sweep. Both fields move
// together so marked_at is set exactly when marked_for_deletion is true.
func (a *accounts) SetDeletionMark(ctx context.Context, id uuid.UUID, markedAt time.Time) error {
	res, err := a.db.NewRaw(`
		UPDATE "accounts" AS "acc"
		SET
			"marked_for_deletion" = ?,
			"marked_at" = ?,
			"updated_at" = CURRENT_TIMESTAMP
		WHERE ("acc"."id" = ?)
		RETURNING *;
	`, true, markedAt, id).Exec(ctx)
	if err != nil {
		return err
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

func (a *accounts) AttachRoleTx(ctx context.Context, tx bun.IDB, accountID, roleID uuid.UUID) error {
	_, err := tx.NewInsert().
		Model(&AccountRole{
			AccountID: accountID,
			RoleID:    roleID,
		}).
		Exec(ctx)
	return err
}

// DetachRolesTx severs every role association before the row itself goes
// away, so no dangling join-table references survive the purge.
func (a *accounts) DetachRolesTx(ctx context.Context, tx bun.IDB, accountID uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*AccountRole)(nil)).
		Where("account_id = ?", accountID).
		Exec(ctx)
	return err
}

func (a *accounts) HardDeleteTx(ctx context.Context, tx bun.IDB, accountID uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*Account)(nil)).
		Where("id = ?", accountID).
		Exec(ctx)
	return err
}

func (a *accounts) FindDueForDeletion(ctx context.Context, cutoff time.Time, limit int) ([]*Account, error) {
	var records []*Account
	q := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.marked_for_deletion = ?", true).
		Where("?TableAlias.marked_at < ?", cutoff).
		OrderExpr("?TableAlias.marked_at ASC")

	if limit > 0 {
		q = q.Limit(limit)
	}

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	return records, nil
}

func prepareAccountDefaults(record *Account) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

type identifierOption struct {
	column string
	value  string
}

func resolveAccountIdentifier(identifier string) []identifierOption {
	trimmed := strings.TrimSpace(identifier)
	if trimmed == "" {
		return nil
	}

	options := make([]identifierOption, 0, 3)

	if _, err := uuid.Parse(trimmed); err == nil {
		options = append(options, identifierOption{column: "id", value: trimmed})
		return options
	}

	if _, err := mail.ParseAddress(trimmed); err == nil {
		options = append(options, identifierOption{column: "email", value: trimmed})
		return options
	}

	options = append(options,
		identifierOption{column: "phone_number", value: trimmed},
		identifierOption{column: "email", value: trimmed},
	)

	return options
}
