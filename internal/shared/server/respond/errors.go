package respond

import "github.com/gin-gonic/gin"

// ErrorBody is the JSON error object returned by non-download routes.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// ErrorResponse wraps the error body.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// Error aborts with a JSON error body.
func Error(c *gin.Context, status int, code, message string, details any) {
	logFailure(c, map[string]any{"status": status, "code": code, "message": message})
	c.AbortWithStatusJSON(status, ErrorResponse{
		Error: ErrorBody{Code: code, Message: message, Details: details},
	})
}
