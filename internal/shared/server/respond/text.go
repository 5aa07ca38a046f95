package respond

import "github.com/gin-gonic/gin"

// Text aborts with a short plain-text body. Download endpoints use it so
// clients expecting a binary payload never have to parse JSON.
func Text(c *gin.Context, status int, message string) {
	logFailure(c, map[string]any{"status": status, "message": message})
	c.Header("Content-Type", "text/plain; charset=utf-8")
	c.AbortWithStatus(status)
	_, _ = c.Writer.WriteString(message)
}
