package remote

import (
	"context"
	"io"

	"dossier-backend/internal/credentials"
	"dossier-backend/internal/shared/storage/object"
)

// StoreFetcher reads content from an object store keyed by storage id. The
// credential is not consulted; access is governed by the store itself.
type StoreFetcher struct {
	Store object.ObjectStore
}

// Fetch opens the object stored under storageID.
func (f *StoreFetcher) Fetch(ctx context.Context, _ credentials.Credential, storageID string) (io.ReadCloser, error) {
	return f.Store.Open(ctx, storageID)
}

var _ Fetcher = (*StoreFetcher)(nil)
