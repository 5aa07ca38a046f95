package credentials

import (
	"context"

	"golang.org/x/oauth2"
)

// Repo defines persistence operations for OAuth credentials.
type Repo interface {
	GetByUser(ctx context.Context, userID, provider string) (OAuthCredential, error)
	// ReplaceForUser removes any credential the user holds for the same
	// provider and stores cred in its place.
	ReplaceForUser(ctx context.Context, cred OAuthCredential) error
	UpdateToken(ctx context.Context, id string, tok *oauth2.Token) error
}
