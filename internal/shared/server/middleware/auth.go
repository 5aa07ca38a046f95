package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"dossier-backend/internal/shared/auth"
	"dossier-backend/internal/shared/server/respond"
)

const (
	userIDKey    = "userId"
	userEmailKey = "userEmail"
	userNameKey  = "userName"
)

// AuthOption configures Auth.
type AuthOption func(*authConfig)

type authConfig struct {
	plainText func(c *gin.Context) bool
}

// WithPlainTextErrors makes rejections plain text on routes matched by fn,
// for clients expecting a file rather than JSON.
func WithPlainTextErrors(fn func(c *gin.Context) bool) AuthOption {
	return func(cfg *authConfig) {
		cfg.plainText = fn
	}
}

// Auth validates bearer JWTs and stores identity in context. Requests without
// an Authorization header pass through anonymously; handlers decide whether an
// identity is required.
func Auth(opts ...AuthOption) gin.HandlerFunc {
	var cfg authConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	reject := func(c *gin.Context) {
		if cfg.plainText != nil && cfg.plainText(c) {
			respond.Text(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
	}

	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			c.Next()
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			reject(c)
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if token == "" {
			reject(c)
			return
		}

		claims, err := auth.VerifyJWT(token)
		if err != nil {
			reject(c)
			return
		}

		c.Set(userIDKey, claims.Subject)
		if claims.Email != "" {
			c.Set(userEmailKey, claims.Email)
		}
		if claims.Name != "" {
			c.Set(userNameKey, claims.Name)
		}
		c.Next()
	}
}

// UserIDFromContext fetches the user ID set by the auth middleware.
func UserIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// UserEmailFromContext fetches the user email set by the auth middleware.
func UserEmailFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userEmailKey)
	if email, ok := val.(string); ok {
		return email
	}
	return ""
}

// UserNameFromContext fetches the user name set by the auth middleware.
func UserNameFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(userNameKey)
	if name, ok := val.(string); ok {
		return name
	}
	return ""
}
