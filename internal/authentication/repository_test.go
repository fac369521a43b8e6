package authentication

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mehmetcc/credential-session-service/internal/account"
)

func seedAccount(t *testing.T, repo account.Repository, email string) *account.Account {
	t.Helper()
	a := account.NewAccount(email, "hash", "First", "Last")
	require.NoError(t, repo.Create(context.Background(), a))
	return a
}

func TestSessionRepository_IssueAndRead(t *testing.T) {
	db := newTestDB(t)
	accounts := account.NewAccountRepository(db)
	sessions := NewSessionRepository(db)
	ctx := context.Background()
	a := seedAccount(t, accounts, "a@x.com")

	_, err := sessions.ReadByToken(ctx, "t1")
	assert.ErrorIs(t, err, ErrRecordNotFoundByGivenToken)

	require.NoError(t, sessions.Issue(ctx, a.ID, "t1", epoch))
	got, err := sessions.ReadByToken(ctx, "t1")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	require.NotNil(t, got.RefreshTokenExpiryTime)
	assert.True(t, got.RefreshTokenExpiryTime.Equal(epoch))

	require.NoError(t, sessions.Issue(ctx, a.ID, "t2", epoch.Add(time.Hour)))
	_, err = sessions.ReadByToken(ctx, "t1")
	assert.ErrorIs(t, err, ErrRecordNotFoundByGivenToken)

	err = sessions.Issue(ctx, a.ID+100, "t3", epoch)
	assert.ErrorIs(t, err, ErrRecordNotFoundByGivenID)
}

func TestSessionRepository_RotateOnlyOnce(t *testing.T) {
	db := newTestDB(t)
	accounts := account.NewAccountRepository(db)
	sessions := NewSessionRepository(db)
	ctx := context.Background()
	a := seedAccount(t, accounts, "a@x.com")
	require.NoError(t, sessions.Issue(ctx, a.ID, "old", epoch))

	require.NoError(t, sessions.Rotate(ctx, "old", "new", epoch.Add(time.Hour)))
	assert.ErrorIs(t, sessions.Rotate(ctx, "old", "other", epoch.Add(time.Hour)), ErrRecordNotFoundByGivenToken)

	got, err := sessions.ReadByToken(ctx, "new")
	require.NoError(t, err)
	assert.Equal(t, a.ID, got.ID)
	assert.True(t, got.RefreshTokenExpiryTime.Equal(epoch.Add(time.Hour)))
}

func TestSessionRepository_Revoke(t *testing.T) {
	db := newTestDB(t)
	accounts := account.NewAccountRepository(db)
	sessions := NewSessionRepository(db)
	ctx := context.Background()
	a := seedAccount(t, accounts, "a@x.com")
	require.NoError(t, sessions.Issue(ctx, a.ID, "t1", epoch))

	ok, err := sessions.Revoke(ctx, "t1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = sessions.Revoke(ctx, "t1")
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := accounts.ReadByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Nil(t, got.RefreshToken)
	assert.Nil(t, got.RefreshTokenExpiryTime)
}
