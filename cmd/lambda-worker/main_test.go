package main

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"

	"dossier-backend/internal/export"
	"dossier-backend/internal/workerproc"
)

type stubHandler map[string]error

func (s stubHandler) HandleMessage(ctx context.Context, body string) error {
	return s[body]
}

func TestProcessBatchReportsOnlyTransientFailures(t *testing.T) {
	h := stubHandler{
		"ok":        nil,
		"transient": errors.New("smtp down"),
		"permanent": workerproc.ErrProcess{Err: export.ErrNotFound},
	}
	event := events.SQSEvent{Records: []events.SQSMessage{
		{MessageId: "1", Body: "ok"},
		{MessageId: "2", Body: "transient"},
		{MessageId: "3", Body: "permanent"},
	}}

	resp := processBatch(context.Background(), h, event)

	if len(resp.BatchItemFailures) != 1 || resp.BatchItemFailures[0].ItemIdentifier != "2" {
		t.Fatalf("unexpected failures: %+v", resp.BatchItemFailures)
	}
}
