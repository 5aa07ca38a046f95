package credentials

import (
	"context"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]OAuthCredential // id -> credential
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]OAuthCredential)}
}

// GetByUser returns the credential linked for a user and provider.
func (r *MemoryRepo) GetByUser(ctx context.Context, userID, provider string) (OAuthCredential, error) {
	if err := ctx.Err(); err != nil {
		return OAuthCredential{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, cred := range r.data {
		if cred.UserID == userID && cred.Provider == provider {
			return cred, nil
		}
	}
	return OAuthCredential{}, ErrNotFound
}

// ReplaceForUser drops prior links for the provider and stores cred.
func (r *MemoryRepo) ReplaceForUser(ctx context.Context, cred OAuthCredential) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.data {
		if existing.UserID == cred.UserID && existing.Provider == cred.Provider {
			delete(r.data, id)
		}
	}
	now := time.Now().UTC()
	cred.CreatedAt = now
	cred.UpdatedAt = now
	r.data[cred.ID] = cred
	return nil
}

// UpdateToken stores a refreshed token.
func (r *MemoryRepo) UpdateToken(ctx context.Context, id string, tok *oauth2.Token) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	cred, ok := r.data[id]
	if !ok {
		return ErrNotFound
	}
	cred.AccessToken = tok.AccessToken
	if tok.RefreshToken != "" {
		cred.RefreshToken = tok.RefreshToken
	}
	if tok.Expiry.IsZero() {
		cred.Expiry = nil
	} else {
		expiry := tok.Expiry
		cred.Expiry = &expiry
	}
	cred.UpdatedAt = time.Now().UTC()
	r.data[id] = cred
	return nil
}
