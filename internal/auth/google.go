// Package auth links a user's Google Drive account for document exports.
package auth

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"google.golang.org/api/drive/v3"

	"dossier-backend/internal/credentials"
	"dossier-backend/internal/shared/server/middleware"
	"dossier-backend/internal/shared/server/respond"
	"dossier-backend/internal/shared/telemetry"
)

// GoogleService handles the Google Drive link flow.
type GoogleService struct {
	oauthConfig *oauth2.Config
	repo        credentials.Repo
	uiRedirect  string
	stateTTL    time.Duration
	stateStore  *stateStore
	now         func() time.Time
}

// NewGoogleService builds a GoogleService around an OAuth config whose
// scopes are replaced with read-only Drive access.
func NewGoogleService(cfg *oauth2.Config, repo credentials.Repo, uiRedirect string) *GoogleService {
	linkCfg := *cfg
	linkCfg.Scopes = []string{drive.DriveReadonlyScope}
	return &GoogleService{
		oauthConfig: &linkCfg,
		repo:        repo,
		uiRedirect:  uiRedirect,
		stateTTL:    10 * time.Minute,
		stateStore:  newStateStore(),
		now:         time.Now,
	}
}

// RegisterRoutes attaches Google link routes.
func (s *GoogleService) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/auth/google/link/start", s.start)
	rg.GET("/auth/google/callback", s.callback)
}

func (s *GoogleService) configured() bool {
	return s.oauthConfig.ClientID != "" && s.oauthConfig.ClientSecret != "" && s.oauthConfig.RedirectURL != ""
}

func (s *GoogleService) start(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "Missing identity", nil)
		return
	}
	if !s.configured() {
		respond.Error(c, http.StatusInternalServerError, "auth_not_configured", "Google auth not configured", nil)
		return
	}

	state := uuid.NewString()
	now := s.now()
	s.stateStore.put(state, userID, now, now.Add(s.stateTTL))

	// Consent is forced so Google returns a refresh token on every link.
	url := s.oauthConfig.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	c.Redirect(http.StatusFound, url)
}

func (s *GoogleService) callback(c *gin.Context) {
	if errParam := c.Query("error"); errParam != "" {
		s.redirectResult(c, "denied")
		return
	}

	state := c.Query("state")
	code := c.Query("code")
	if state == "" || code == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "missing state or code", nil)
		return
	}

	userID, ok := s.stateStore.consume(state, s.now())
	if !ok {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "invalid or expired state", nil)
		return
	}

	ctx := c.Request.Context()
	token, err := s.oauthConfig.Exchange(ctx, code)
	if err != nil {
		telemetry.Warn("auth.google_exchange_failed", map[string]any{"user_id": userID, "error": err})
		respond.Error(c, http.StatusBadRequest, "invalid_request", "failed to exchange code", nil)
		return
	}
	if token.RefreshToken == "" {
		telemetry.Warn("auth.google_missing_refresh_token", map[string]any{"user_id": userID})
	}

	cred := credentials.OAuthCredential{
		ID:           uuid.NewString(),
		UserID:       userID,
		Provider:     credentials.ProviderGoogle,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		Scope:        grantedScope(token),
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry.UTC()
		cred.Expiry = &expiry
	}

	if err := s.repo.ReplaceForUser(ctx, cred); err != nil {
		telemetry.Error("auth.google_link_store_failed", map[string]any{"user_id": userID, "error": err})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store credential", nil)
		return
	}

	telemetry.Info("auth.google_linked", map[string]any{"user_id": userID})
	s.redirectResult(c, "linked")
}

func (s *GoogleService) redirectResult(c *gin.Context, result string) {
	redirectURL, err := appendQuery(s.uiRedirect, "google", result)
	if err != nil {
		respond.JSON(c, http.StatusOK, gin.H{"google": result})
		return
	}
	c.Redirect(http.StatusFound, redirectURL)
}

func grantedScope(token *oauth2.Token) string {
	if scope, ok := token.Extra("scope").(string); ok && scope != "" {
		return scope
	}
	return drive.DriveReadonlyScope
}

type pendingState struct {
	userID  string
	expires time.Time
}

type stateStore struct {
	items map[string]pendingState
	mu    sync.Mutex
}

func newStateStore() *stateStore {
	return &stateStore{items: make(map[string]pendingState)}
}

func (s *stateStore) put(state, userID string, now, exp time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key, item := range s.items {
		if now.After(item.expires) {
			delete(s.items, key)
		}
	}
	s.items[state] = pendingState{userID: userID, expires: exp}
}

// consume returns the user bound to state. A state can be used once.
func (s *stateStore) consume(state string, now time.Time) (string, bool) {
	s.mu.Lock()
	item, ok := s.items[state]
	if ok {
		delete(s.items, state)
	}
	s.mu.Unlock()
	if !ok || now.After(item.expires) {
		return "", false
	}
	return item.userID, true
}

func appendQuery(rawURL, key, value string) (string, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", errors.New("redirect url required")
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}
	q := u.Query()
	q.Set(key, value)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
