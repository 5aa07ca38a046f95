package documents

import "context"

// Repo defines read operations the export pipeline needs on documents.
type Repo interface {
	// ListByKeys returns the documents matching keys, in key order.
	// Keys that do not resolve are skipped.
	ListByKeys(ctx context.Context, keys []OwnedKey) ([]Document, error)
}
