package remote

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dossier-backend/internal/credentials"
	"dossier-backend/internal/shared/storage/object"
	"dossier-backend/internal/shared/storage/object/local"
)

func TestStoreFetcherReadsLocalObject(t *testing.T) {
	ctx := context.Background()
	store := local.New(t.TempDir())
	_, err := store.Put(ctx, "storage-1", "image/jpeg", strings.NewReader("jpeg"))
	require.NoError(t, err)

	f := &StoreFetcher{Store: store}
	rc, err := f.Fetch(ctx, credentials.Credential{}, "storage-1")
	require.NoError(t, err)
	defer rc.Close()
	body, _ := io.ReadAll(rc)
	assert.Equal(t, "jpeg", string(body))

	_, err = f.Fetch(ctx, credentials.Credential{}, "missing")
	assert.True(t, errors.Is(err, object.ErrNotFound))
}
