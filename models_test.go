package account_test

import (
	"testing"
	"time"

	"github.com/goliatone/go-account"
	"github.com/stretchr/testify/assert"
)

func TestAccountAuthorities(t *testing.T) {
	record := &account.Account{}
	assert.Nil(t, record.Authorities())

	record.Roles = []*account.Role{
		{Name: account.RoleUser},
		nil,
		{Name: "ROLE_ADMIN"},
	}

	assert.Equal(t, []string{account.RoleUser, "ROLE_ADMIN"}, record.Authorities())
}

func TestAccountDeletionMark(t *testing.T) {
	record := &account.Account{}

	at := time.Now()
	record.MarkForDeletion(at)

	assert.True(t, record.MarkedForDeletion)
	assert.NotNil(t, record.MarkedAt)
	assert.True(t, at.Equal(*record.MarkedAt))

	later := at.Add(time.Hour)
	record.MarkForDeletion(later)
	assert.True(t, later.Equal(*record.MarkedAt), "re-marking resets the timestamp")

	record.ClearDeletionMark()
	assert.False(t, record.MarkedForDeletion)
	assert.Nil(t, record.MarkedAt, "timestamp and flag move together")
}
