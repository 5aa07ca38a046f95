// Package remote fetches document bytes from the storage backend that holds them.
package remote

import (
	"context"
	"io"

	"dossier-backend/internal/credentials"
)

// Fetcher opens the content stored under storageID. Callers close the reader.
type Fetcher interface {
	Fetch(ctx context.Context, cred credentials.Credential, storageID string) (io.ReadCloser, error)
}
