package health

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckWithoutDatabase(t *testing.T) {
	assert.Equal(t, Status{OK: true, Database: "memory"}, NewService(nil).Check(context.Background()))
}

func TestCheckPingsDatabase(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mock.ExpectPing()
	assert.Equal(t, Status{OK: true, Database: "up"}, NewService(db).Check(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	assert.Equal(t, Status{OK: false, Database: "down"}, NewService(db).Check(context.Background()))
	require.NoError(t, mock.ExpectationsWereMet())
}
