// Package workerproc turns queued export jobs into delivered emails.
package workerproc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"

	"dossier-backend/internal/export"
	"dossier-backend/internal/mailer"
	"dossier-backend/internal/queue"
)

// MessageMeta captures details useful for logging and diagnostics.
type MessageMeta struct {
	BodyLen int
	BodySHA string
}

// ComputeMeta returns the body length and SHA-256 hash.
func ComputeMeta(body string) MessageMeta {
	if body == "" {
		return MessageMeta{}
	}
	sum := sha256.Sum256([]byte(body))
	return MessageMeta{BodyLen: len(body), BodySHA: hex.EncodeToString(sum[:])}
}

// ErrEmptyBody indicates an empty queue payload.
type ErrEmptyBody struct {
	Meta MessageMeta
}

func (e ErrEmptyBody) Error() string { return "empty message body" }

// ErrDecode indicates a JSON decode failure.
type ErrDecode struct {
	Meta MessageMeta
	Err  error
}

func (e ErrDecode) Error() string {
	if e.Err == nil {
		return "decode message"
	}
	return "decode message: " + e.Err.Error()
}

func (e ErrDecode) Unwrap() error { return e.Err }

// ErrIncomplete indicates a decoded job missing a required field.
type ErrIncomplete struct {
	Meta      MessageMeta
	RequestID string
}

func (e ErrIncomplete) Error() string { return queue.ErrIncompleteMessage.Error() }

func (e ErrIncomplete) Unwrap() error { return queue.ErrIncompleteMessage }

// ErrProcess indicates processing failed after successful parsing.
type ErrProcess struct {
	ProcedureID string
	RequestID   string
	Err         error
}

func (e ErrProcess) Error() string {
	if e.Err == nil {
		return "process export job"
	}
	return "process export job: " + e.Err.Error()
}

func (e ErrProcess) Unwrap() error { return e.Err }

// ParseMessage validates and decodes the queue payload.
func ParseMessage(body string) (queue.Message, MessageMeta, error) {
	meta := ComputeMeta(body)
	if strings.TrimSpace(body) == "" {
		return queue.Message{}, meta, ErrEmptyBody{Meta: meta}
	}

	msg, err := queue.DecodeMessage([]byte(body))
	if err != nil {
		return queue.Message{}, meta, ErrDecode{Meta: meta, Err: err}
	}
	if err := msg.Validate(); err != nil {
		return msg, meta, ErrIncomplete{Meta: meta, RequestID: msg.RequestID}
	}
	return msg, meta, nil
}

// Processor delivers export jobs by email.
type Processor struct {
	Exporter export.BufferExporter
	Mailer   mailer.Sender
}

// HandleMessage parses a payload and processes the job it carries.
func (p *Processor) HandleMessage(ctx context.Context, body string) error {
	msg, _, err := ParseMessage(body)
	if err != nil {
		return err
	}
	return p.Process(ctx, msg)
}

// Process builds and mails the archive described by msg.
func (p *Processor) Process(ctx context.Context, msg queue.Message) error {
	if p == nil || p.Exporter == nil || p.Mailer == nil {
		return errors.New("export worker not configured")
	}
	if _, err := export.SendEmail(ctx, p.Exporter, p.Mailer, msg.ProcedureID, msg.UserID, msg.To); err != nil {
		return ErrProcess{ProcedureID: msg.ProcedureID, RequestID: msg.RequestID, Err: err}
	}
	return nil
}

// IsPermanent reports whether retrying the job cannot succeed. Malformed
// payloads and rejected exports are permanent; fetch, mail and storage
// outages are not.
func IsPermanent(err error) bool {
	var (
		empty      ErrEmptyBody
		decode     ErrDecode
		incomplete ErrIncomplete
	)
	switch {
	case errors.As(err, &empty), errors.As(err, &decode), errors.As(err, &incomplete):
		return true
	case errors.Is(err, export.ErrNotFound),
		errors.Is(err, export.ErrUnauthorized),
		errors.Is(err, export.ErrNoDocuments),
		errors.Is(err, export.ErrNoValidDocuments),
		errors.Is(err, export.ErrCredentialMissing):
		return true
	default:
		return false
	}
}
