package mailer

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dossier-backend/internal/shared/telemetry"
)

func TestBuildMsgIncludesAttachment(t *testing.T) {
	m, err := buildMsg("exports@example.com", Message{
		To:      []string{"alice@example.com"},
		Subject: "Documents for Passport renewal",
		Body:    "Your documents are attached.",
		Attachments: []Attachment{{
			Name:        "Passport_documents.zip",
			ContentType: "application/zip",
			Data:        []byte("PK\x05\x06"),
		}},
	})
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = m.WriteTo(&buf)
	require.NoError(t, err)
	raw := buf.String()
	assert.Contains(t, raw, "Subject: Documents for Passport renewal")
	assert.Contains(t, raw, "alice@example.com")
	assert.Contains(t, raw, "Passport_documents.zip")
	assert.Contains(t, raw, "application/zip")
}

func TestBuildMsgRequiresRecipient(t *testing.T) {
	_, err := buildMsg("exports@example.com", Message{Subject: "x"})
	assert.ErrorIs(t, err, ErrNoRecipient)
}

func TestBuildMsgRejectsBadAddress(t *testing.T) {
	_, err := buildMsg("exports@example.com", Message{To: []string{"not an address"}})
	assert.Error(t, err)
}

func TestNewSMTPSenderRequiresHost(t *testing.T) {
	_, err := NewSMTPSender(SMTPConfig{})
	assert.Error(t, err)
}

func TestLogSenderLogsEnvelope(t *testing.T) {
	var buf bytes.Buffer
	telemetry.Configure(&buf, "json", "info")
	t.Cleanup(func() { telemetry.Configure(nil, "json", "info") })

	err := LogSender{}.Send(context.Background(), Message{
		To:          []string{"bob@example.com"},
		Subject:     "hello",
		Attachments: []Attachment{{Name: "a.zip", Data: []byte("1234")}},
	})
	require.NoError(t, err)
	line := buf.String()
	assert.True(t, strings.Contains(line, `"mail.logged"`), line)
	assert.Contains(t, line, `"attachment_bytes":4`)

	assert.ErrorIs(t, LogSender{}.Send(context.Background(), Message{}), ErrNoRecipient)
}
