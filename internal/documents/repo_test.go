package documents

import (
	"context"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// passthrough lets text[] arguments reach the mock unchanged, the way the pgx
// stdlib driver accepts them.
type passthrough struct{}

func (passthrough) ConvertValue(v any) (driver.Value, error) { return v, nil }

func strPtr(s string) *string { return &s }

func TestPGRepoListByKeysKeepsKeyOrder(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.ValueConverterOption(passthrough{}))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	uploaded := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "user_id", "file_name", "document_type", "storage_id", "uploaded_at"}).
		AddRow("doc-2", "user-1", "passport.jpg", "identity", "drive-2", uploaded).
		AddRow("doc-1", "user-1", "justificatif.pdf", "address", nil, uploaded)

	mock.ExpectQuery("FROM unnest").
		WithArgs([]string{"doc-2", "doc-1"}, []string{"user-1", "user-1"}).
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	docs, err := repo.ListByKeys(context.Background(), KeysFor("user-1", []string{"doc-2", "doc-1"}))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "doc-2", docs[0].ID)
	require.NotNil(t, docs[0].StorageID)
	assert.Equal(t, "drive-2", *docs[0].StorageID)
	assert.Nil(t, docs[1].StorageID)
	assert.False(t, docs[1].HasStorage())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPGRepoListByKeysEmptySkipsQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	docs, err := repo.ListByKeys(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, docs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMemoryRepoListByKeysFiltersOwner(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryRepo()
	require.NoError(t, repo.Put(ctx, Document{ID: "a", UserID: "alice", FileName: "a.pdf", StorageID: strPtr("s-a")}))
	require.NoError(t, repo.Put(ctx, Document{ID: "b", UserID: "bob", FileName: "b.pdf", StorageID: strPtr("s-b")}))
	require.NoError(t, repo.Put(ctx, Document{ID: "c", UserID: "alice", FileName: "c.pdf"}))

	docs, err := repo.ListByKeys(ctx, KeysFor("alice", []string{"c", "b", "missing", "a", "c"}))
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "c", docs[0].ID)
	assert.Equal(t, "a", docs[1].ID)
}
