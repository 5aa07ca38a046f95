package procedures

import (
	"context"
	"maps"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Procedure
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string]Procedure),
	}
}

// Put stores or overwrites a procedure.
func (r *MemoryRepo) Put(ctx context.Context, p Procedure) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p.DocumentMap = maps.Clone(p.DocumentMap)
	r.data[p.ID] = p
	return nil
}

// GetWithTemplate returns a stored procedure.
func (r *MemoryRepo) GetWithTemplate(ctx context.Context, id string) (Procedure, error) {
	if err := ctx.Err(); err != nil {
		return Procedure{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.data[id]
	if !ok {
		return Procedure{}, ErrNotFound
	}
	p.DocumentMap = maps.Clone(p.DocumentMap)
	return p, nil
}
