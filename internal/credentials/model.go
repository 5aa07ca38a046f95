package credentials

import (
	"time"

	"golang.org/x/oauth2"
)

// ProviderGoogle identifies credentials linked through Google OAuth.
const ProviderGoogle = "google"

// OAuthCredential is a stored OAuth token pair for a user's remote storage account.
type OAuthCredential struct {
	ID           string
	UserID       string
	Provider     string
	AccessToken  string
	RefreshToken string
	Scope        string
	Expiry       *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Token converts the stored record into an oauth2 token.
func (c OAuthCredential) Token() *oauth2.Token {
	tok := &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    "Bearer",
	}
	if c.Expiry != nil {
		tok.Expiry = *c.Expiry
	}
	return tok
}
