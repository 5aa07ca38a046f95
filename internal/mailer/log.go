package mailer

import (
	"context"

	"dossier-backend/internal/shared/telemetry"
)

// LogSender logs messages instead of sending them. Used when SMTP is not configured.
type LogSender struct{}

// Send logs the message envelope.
func (LogSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(msg.To) == 0 {
		return ErrNoRecipient
	}
	var total int
	names := make([]string, 0, len(msg.Attachments))
	for _, att := range msg.Attachments {
		names = append(names, att.Name)
		total += len(att.Data)
	}
	telemetry.Info("mail.logged", map[string]any{
		"to":               msg.To,
		"subject":          msg.Subject,
		"attachments":      names,
		"attachment_bytes": total,
	})
	return nil
}

var _ Sender = LogSender{}
