// Package mailer delivers outbound email with attachments.
package mailer

import (
	"context"
	"errors"
)

// ErrNoRecipient is returned when a message has no recipient.
var ErrNoRecipient = errors.New("mail recipient required")

// Attachment is an in-memory file attached to a message.
type Attachment struct {
	Name        string
	ContentType string
	Data        []byte
}

// Message is an outbound email.
type Message struct {
	To          []string
	Subject     string
	Body        string
	Attachments []Attachment
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
