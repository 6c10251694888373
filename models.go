package account

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// RoleUser is the default role attached at registration. Seeded once at
// process start if absent.
const RoleUser = "ROLE_USER"

// Account is the account model. Email and phone are unique across all
// accounts; MarkedAt is set if and only if MarkedForDeletion is true.
type Account struct {
	bun.BaseModel     `bun:"table:accounts,alias:acc"`
	ID                uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	FirstName         string     `bun:"first_name,notnull" json:"first_name,omitempty"`
	LastName          string     `bun:"last_name,notnull" json:"last_name,omitempty"`
	Email             string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Phone             string     `bun:"phone_number,notnull,unique" json:"phone_number,omitempty"`
	PasswordHash      string     `bun:"password_hash,notnull" json:"-"`
	DateOfBirth       *time.Time `bun:"date_of_birth,nullzero" json:"date_of_birth,omitempty"`
	Enabled           bool       `bun:"is_enabled" json:"is_enabled"`
	Locked            bool       `bun:"is_account_locked" json:"is_account_locked"`
	CredentialExpired bool       `bun:"is_credential_expired" json:"is_credential_expired"`
	EmailVerified     bool       `bun:"is_email_verified" json:"is_email_verified"`
	PhoneVerified     bool       `bun:"is_phone_verified" json:"is_phone_verified"`
	MarkedForDeletion bool       `bun:"marked_for_deletion" json:"marked_for_deletion"`
	MarkedAt          *time.Time `bun:"marked_at,nullzero" json:"marked_at,omitempty"`
	Roles             []*Role    `bun:"m2m:accounts_roles,join:Account=Role" json:"roles,omitempty"`
	CreatedAt         *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt         *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Authorities returns the granted role names.
func (a *Account) Authorities() []string {
	if len(a.Roles) == 0 {
		return nil
	}
	names := make([]string, 0, len(a.Roles))
	for _, role := range a.Roles {
		if role != nil {
			names = append(names, role.Name)
		}
	}
	return names
}

// MarkForDeletion flags the account for the purge sweep. Re-marking an
// already marked account resets the retention clock.
func (a *Account) MarkForDeletion(at time.Time) {
	a.MarkedForDeletion = true
	a.MarkedAt = &at
}

// ClearDeletionMark removes the purge flag and its timestamp together.
func (a *Account) ClearDeletionMark() {
	a.MarkedForDeletion = false
	a.MarkedAt = nil
}

// Role is a grantable authority, many-to-many with accounts.
type Role struct {
	bun.BaseModel `bun:"table:roles,alias:rol"`
	ID            uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name          string     `bun:"name,notnull,unique" json:"name,omitempty"`
	CreatedAt     *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// AccountRole is the join row linking accounts to roles. Rows are severed
// before an account is hard-deleted to preserve relational integrity.
type AccountRole struct {
	bun.BaseModel `bun:"table:accounts_roles,alias:acr"`
	AccountID     uuid.UUID `bun:"account_id,pk,type:uuid" json:"account_id,omitempty"`
	Account       *Account  `bun:"rel:belongs-to,join:account_id=id" json:"account,omitempty"`
	RoleID        uuid.UUID `bun:"role_id,pk,type:uuid" json:"role_id,omitempty"`
	Role          *Role     `bun:"rel:belongs-to,join:role_id=id" json:"role,omitempty"`
}
