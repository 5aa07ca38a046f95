package queue

import (
	"errors"
	"testing"
)

func TestMessageRoundTrip(t *testing.T) {
	msg := Message{
		ProcedureID: "proc-1",
		UserID:      "alice",
		To:          "alice@example.com",
		RequestID:   "request-456",
		EnqueuedAt:  "2026-01-30T22:00:00Z",
	}

	payload, err := EncodeMessage(msg)
	if err != nil {
		t.Fatalf("encode message: %v", err)
	}

	got, err := DecodeMessage(payload)
	if err != nil {
		t.Fatalf("decode message: %v", err)
	}

	msg.Version = MessageVersion
	if got != msg {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, msg)
	}
}

func TestMessageValidate(t *testing.T) {
	ok := Message{ProcedureID: "proc-1", UserID: "alice", To: "alice@example.com"}
	if err := ok.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, m := range []Message{
		{UserID: "alice", To: "alice@example.com"},
		{ProcedureID: "proc-1", To: "alice@example.com"},
		{ProcedureID: "proc-1", UserID: "alice", To: "  "},
	} {
		if err := m.Validate(); !errors.Is(err, ErrIncompleteMessage) {
			t.Fatalf("expected ErrIncompleteMessage for %+v, got %v", m, err)
		}
	}
}
