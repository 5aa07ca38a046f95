// Package queue carries deferred export jobs between the API and the worker.
package queue

import (
	"encoding/json"
	"errors"
	"strings"
)

// MessageVersion is the payload version written by Encode.
const MessageVersion = 1

// ErrIncompleteMessage is returned when a decoded job lacks a required field.
var ErrIncompleteMessage = errors.New("incomplete export job")

// Message asks the worker to email a procedure archive.
type Message struct {
	ProcedureID string `json:"procedureId"`
	UserID      string `json:"userId"`
	To          string `json:"to"`
	RequestID   string `json:"requestId,omitempty"`
	EnqueuedAt  string `json:"enqueuedAt"`
	Version     int    `json:"version"`
}

// Validate reports whether the job names a procedure, its owner and a recipient.
func (m Message) Validate() error {
	if strings.TrimSpace(m.ProcedureID) == "" || strings.TrimSpace(m.UserID) == "" || strings.TrimSpace(m.To) == "" {
		return ErrIncompleteMessage
	}
	return nil
}

// EncodeMessage returns the JSON representation of a message.
func EncodeMessage(msg Message) ([]byte, error) {
	if msg.Version == 0 {
		msg.Version = MessageVersion
	}
	return json.Marshal(msg)
}

// DecodeMessage parses a JSON payload into a Message.
func DecodeMessage(payload []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		return Message{}, err
	}
	return msg, nil
}
