package export

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"dossier-backend/internal/mailer"
	"dossier-backend/internal/queue"
	"dossier-backend/internal/shared/server/middleware"
	"dossier-backend/internal/shared/server/respond"
	"dossier-backend/internal/shared/telemetry"
)

// Exporter is the export operations the handler serves.
type Exporter interface {
	ExportAsStream(ctx context.Context, procedureID, userID string) (Stream, error)
	ExportAsBuffer(ctx context.Context, procedureID, userID string) (Buffer, error)
	Validate(ctx context.Context, procedureID, userID string) error
}

// Handler wires HTTP handlers to the export service. When Queue is set,
// email exports are validated inline and delivered by the worker.
type Handler struct {
	Svc    Exporter
	Mailer mailer.Sender
	Queue  queue.Client
}

// NewHandler constructs a Handler.
func NewHandler(svc Exporter, sender mailer.Sender) *Handler {
	return &Handler{Svc: svc, Mailer: sender}
}

// RegisterRoutes attaches export routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/procedures/:id/export", h.download)
	rg.POST("/procedures/:id/export/email", h.email)
}

func (h *Handler) download(c *gin.Context) {
	c.Set("exportMode", ModeStream)
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Text(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	procedureID := c.Param("id")
	c.Set("procedureId", procedureID)

	result, err := h.Svc.ExportAsStream(c.Request.Context(), procedureID, userID)
	if err != nil {
		status, msg := statusFor(err)
		respond.Text(c, status, msg)
		return
	}
	defer result.Stream.Close()

	c.Header("Content-Type", "application/zip")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, result.Stream); err != nil {
		// Headers are already sent; the truncated body is all the client gets.
		telemetry.Error("export.stream_failed", map[string]any{
			"procedure_id": procedureID,
			"user_id":      userID,
			"error":        err,
		})
	}
}

type emailRequest struct {
	To string `json:"to" binding:"required,email"`
}

func (h *Handler) email(c *gin.Context) {
	c.Set("exportMode", ModeBuffer)
	userID := middleware.UserIDFromContext(c)
	if userID == "" {
		respond.Text(c, http.StatusUnauthorized, "Authentication required")
		return
	}
	procedureID := c.Param("id")
	c.Set("procedureId", procedureID)

	// Ownership and document checks come before the body so a stranger
	// learns nothing from a malformed request.
	if err := h.Svc.Validate(c.Request.Context(), procedureID, userID); err != nil {
		status, msg := statusFor(err)
		respond.Text(c, status, msg)
		return
	}

	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Text(c, http.StatusBadRequest, "A valid recipient email address is required")
		return
	}

	if h.Queue != nil {
		h.enqueueEmail(c, procedureID, userID, req.To)
		return
	}

	result, err := SendEmail(c.Request.Context(), h.Svc, h.Mailer, procedureID, userID, req.To)
	if err != nil {
		if errors.Is(err, ErrMailFailed) {
			telemetry.Error("export.email_failed", map[string]any{
				"procedure_id": procedureID,
				"user_id":      userID,
				"error":        err,
			})
			respond.Text(c, http.StatusInternalServerError, "Failed to send the export email")
			return
		}
		status, msg := statusFor(err)
		respond.Text(c, status, msg)
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{
		"sent":     true,
		"filename": result.Filename,
		"bytes":    len(result.Data),
	})
}

func (h *Handler) enqueueEmail(c *gin.Context, procedureID, userID, to string) {
	msg := queue.Message{
		ProcedureID: procedureID,
		UserID:      userID,
		To:          to,
		RequestID:   middleware.RequestIDFromContext(c),
		EnqueuedAt:  time.Now().UTC().Format(time.RFC3339),
		Version:     queue.MessageVersion,
	}
	if err := h.Queue.Send(c.Request.Context(), msg); err != nil {
		telemetry.Error("export.enqueue_failed", map[string]any{
			"procedure_id": procedureID,
			"user_id":      userID,
			"error":        err,
		})
		respond.Text(c, http.StatusInternalServerError, "Failed to schedule the export email")
		return
	}

	respond.JSON(c, http.StatusAccepted, gin.H{"queued": true})
}

func statusFor(err error) (int, string) {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound, "Procedure not found"
	case errors.Is(err, ErrUnauthorized):
		return http.StatusForbidden, "You do not have access to this procedure"
	case errors.Is(err, ErrNoDocuments):
		return http.StatusBadRequest, "This procedure has no documents to export"
	case errors.Is(err, ErrNoValidDocuments):
		return http.StatusBadRequest, "None of the documents linked to this procedure are available"
	default:
		return http.StatusInternalServerError, "Failed to export procedure documents"
	}
}
