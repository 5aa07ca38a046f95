package documents

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Document // document id -> document
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Document),
	}
}

// Put stores or overwrites a document.
func (r *MemoryRepo) Put(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[doc.ID] = doc
	return nil
}

// ListByKeys returns documents matching both id and owner, in key order.
func (r *MemoryRepo) ListByKeys(ctx context.Context, keys []OwnedKey) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Document, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		doc, ok := r.data[key.ID]
		if !ok || doc.UserID != key.OwnerID {
			continue
		}
		if _, dup := seen[doc.ID]; dup {
			continue
		}
		seen[doc.ID] = struct{}{}
		out = append(out, doc)
	}
	return out, nil
}
