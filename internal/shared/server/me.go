package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"dossier-backend/internal/credentials"
	"dossier-backend/internal/shared/server/middleware"
	"dossier-backend/internal/shared/server/respond"
)

// registerMeRoutes attaches the /me endpoint. The response tells the UI
// whether exports can reach the user's Drive before one is attempted.
func registerMeRoutes(rg *gin.RouterGroup, creds credentials.Repo) {
	rg.GET("/me", func(c *gin.Context) {
		userID := middleware.UserIDFromContext(c)
		if userID == "" {
			respond.Error(c, http.StatusUnauthorized, "unauthorized", "missing or invalid token", nil)
			return
		}

		response := gin.H{"userId": userID}
		if email := middleware.UserEmailFromContext(c); email != "" {
			response["email"] = email
		}
		if name := middleware.UserNameFromContext(c); name != "" {
			response["name"] = name
		}

		if creds != nil {
			_, err := creds.GetByUser(c.Request.Context(), userID, credentials.ProviderGoogle)
			switch {
			case err == nil:
				response["googleLinked"] = true
			case errors.Is(err, credentials.ErrNotFound):
				response["googleLinked"] = false
			default:
				respond.Error(c, http.StatusInternalServerError, "internal", "failed to load account links", nil)
				return
			}
		}

		respond.JSON(c, http.StatusOK, response)
	})
}
