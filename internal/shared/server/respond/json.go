package respond

import (
	"github.com/gin-gonic/gin"

	"dossier-backend/internal/shared/telemetry"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// logFailure records a failed request with the identifiers the
// middleware attached to c.
func logFailure(c *gin.Context, fields map[string]any) {
	fields["path"] = c.Request.URL.Path
	fields["method"] = c.Request.Method
	fields["request_id"] = c.GetString("requestId")
	if userID := c.GetString("userId"); userID != "" {
		fields["user_id"] = userID
	}
	if procedureID := c.GetString("procedureId"); procedureID != "" {
		fields["procedure_id"] = procedureID
	}
	telemetry.Error("http.error", fields)
}
