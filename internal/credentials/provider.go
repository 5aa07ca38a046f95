package credentials

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"

	"dossier-backend/internal/shared/telemetry"
)

// Provider resolves a user's remote storage credential.
type Provider struct {
	Repo  Repo
	OAuth *oauth2.Config
}

// Resolve loads the stored Google credential for userID. It performs no
// network call; refresh happens on first use of the returned credential.
func (p *Provider) Resolve(ctx context.Context, userID string) (Credential, error) {
	rec, err := p.Repo.GetByUser(ctx, userID, ProviderGoogle)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Credential{}, ErrCredentialMissing
		}
		return Credential{}, fmt.Errorf("load credential: %w", err)
	}
	return Credential{
		ID:     rec.ID,
		UserID: rec.UserID,
		token:  rec.Token(),
		config: p.OAuth,
		repo:   p.Repo,
	}, nil
}

// Credential is a resolved OAuth credential seeded with stored tokens.
type Credential struct {
	ID     string
	UserID string

	token  *oauth2.Token
	config *oauth2.Config
	repo   Repo
}

// NewStaticCredential wraps a fixed token with no refresh or persistence.
func NewStaticCredential(userID string, tok *oauth2.Token) Credential {
	return Credential{UserID: userID, token: tok}
}

// TokenSource returns a token source that refreshes on demand and persists
// refreshed tokens back to the repository.
func (c Credential) TokenSource(ctx context.Context) oauth2.TokenSource {
	if c.token == nil {
		return oauth2.StaticTokenSource(&oauth2.Token{})
	}
	if c.config == nil {
		return oauth2.StaticTokenSource(c.token)
	}
	return &persistingSource{
		ctx:    context.WithoutCancel(ctx),
		id:     c.ID,
		base:   c.config.TokenSource(ctx, c.token),
		repo:   c.repo,
		access: c.token.AccessToken,
	}
}

// HTTPClient returns an http.Client authorizing requests with the credential.
func (c Credential) HTTPClient(ctx context.Context) *http.Client {
	return oauth2.NewClient(ctx, c.TokenSource(ctx))
}

type persistingSource struct {
	ctx  context.Context
	id   string
	base oauth2.TokenSource
	repo Repo

	mu     sync.Mutex
	access string
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken == s.access {
		return tok, nil
	}
	s.access = tok.AccessToken
	if s.repo != nil && s.id != "" {
		if err := s.repo.UpdateToken(s.ctx, s.id, tok); err != nil {
			telemetry.Warn("credentials.persist_failed", map[string]any{
				"credential_id": s.id,
				"error":         err,
			})
		}
	}
	return tok, nil
}
