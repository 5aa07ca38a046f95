package object

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound indicates no object exists under the requested key.
var ErrNotFound = errors.New("object not found")

// ObjectStore stores file bytes under opaque storage keys.
type ObjectStore interface {
	Put(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}
