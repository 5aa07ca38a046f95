package remote

import (
	"context"
	"fmt"
	"io"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"dossier-backend/internal/credentials"
)

// DriveFetcher downloads files from Google Drive on behalf of the credential owner.
type DriveFetcher struct {
	// Options are appended after the credential's HTTP client, e.g. a test endpoint.
	Options []option.ClientOption
}

// Fetch downloads the file content of a Drive file id.
func (f *DriveFetcher) Fetch(ctx context.Context, cred credentials.Credential, storageID string) (io.ReadCloser, error) {
	opts := append([]option.ClientOption{option.WithHTTPClient(cred.HTTPClient(ctx))}, f.Options...)
	svc, err := drive.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("drive client: %w", err)
	}

	resp, err := svc.Files.Get(storageID).SupportsAllDrives(true).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("drive download %s: %w", storageID, err)
	}
	return resp.Body, nil
}

var _ Fetcher = (*DriveFetcher)(nil)
