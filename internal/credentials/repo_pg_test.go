package credentials

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestPGRepoGetByUserNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectQuery("FROM oauth_credentials").
		WithArgs("user-1", ProviderGoogle).
		WillReturnError(sql.ErrNoRows)

	_, err = (&PGRepo{DB: db}).GetByUser(context.Background(), "user-1", ProviderGoogle)
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoGetByUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "user_id", "provider", "access_token", "refresh_token", "scope", "expiry", "created_at", "updated_at"}).
		AddRow("cred-1", "user-1", ProviderGoogle, "access", "refresh", "drive.readonly", now, now, now)
	mock.ExpectQuery("FROM oauth_credentials").WithArgs("user-1", ProviderGoogle).WillReturnRows(rows)

	cred, err := (&PGRepo{DB: db}).GetByUser(context.Background(), "user-1", ProviderGoogle)
	require.NoError(t, err)
	assert.Equal(t, "refresh", cred.RefreshToken)
	require.NotNil(t, cred.Expiry)
	assert.Equal(t, now, cred.Token().Expiry)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoReplaceForUser(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM oauth_credentials").
		WithArgs("user-1", ProviderGoogle).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO oauth_credentials").
		WithArgs("cred-2", "user-1", ProviderGoogle, "access", "refresh", "scope", nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	err = (&PGRepo{DB: db}).ReplaceForUser(context.Background(), OAuthCredential{
		ID: "cred-2", UserID: "user-1", Provider: ProviderGoogle,
		AccessToken: "access", RefreshToken: "refresh", Scope: "scope",
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoUpdateTokenMissingRow(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectExec("UPDATE oauth_credentials").
		WithArgs("fresh", "", nil, "cred-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = (&PGRepo{DB: db}).UpdateToken(context.Background(), "cred-1", &oauth2.Token{AccessToken: "fresh"})
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}
