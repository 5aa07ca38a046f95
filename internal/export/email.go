package export

import (
	"context"
	"fmt"
	"strings"

	"dossier-backend/internal/mailer"
)

// BufferExporter builds an in-memory archive.
type BufferExporter interface {
	ExportAsBuffer(ctx context.Context, procedureID, userID string) (Buffer, error)
}

// SendEmail builds the archive of a procedure and mails it to to. Export
// failures are returned unchanged; delivery failures wrap ErrMailFailed.
func SendEmail(ctx context.Context, svc BufferExporter, sender mailer.Sender, procedureID, userID, to string) (Buffer, error) {
	result, err := svc.ExportAsBuffer(ctx, procedureID, userID)
	if err != nil {
		return Buffer{}, err
	}
	if err := sender.Send(ctx, EmailMessage(result, to)); err != nil {
		return result, fmt.Errorf("%w: %w", ErrMailFailed, err)
	}
	return result, nil
}

// EmailMessage wraps an assembled archive in the outbound message.
func EmailMessage(result Buffer, to string) mailer.Message {
	return mailer.Message{
		To:      []string{strings.TrimSpace(to)},
		Subject: fmt.Sprintf("Documents: %s", result.Title),
		Body: fmt.Sprintf("Please find attached the documents for %q.\n", result.Title) +
			"Files that could not be retrieved are replaced by a short _error.txt note.\n",
		Attachments: []mailer.Attachment{{
			Name:        result.Filename,
			ContentType: "application/zip",
			Data:        result.Data,
		}},
	}
}
