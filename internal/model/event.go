package model

import (
	"time"
)

// ExchangeStatus is the outcome of a prompt/answer exchange.
type ExchangeStatus string

const (
	ExchangeStatusOK    ExchangeStatus = "ok"
	ExchangeStatusError ExchangeStatus = "error"
)

// ExchangeEvent is published once per exchange handled by the gateway.
type ExchangeEvent struct {
	ID              string         `json:"id"`
	ConversationID  string         `json:"conversation_id"`
	UserID          string         `json:"user_id,omitempty"`
	Status          ExchangeStatus `json:"status"`
	Prompt          string         `json:"prompt"`
	Answer          string         `json:"answer,omitempty"`
	AttachmentNames []string       `json:"attachment_names,omitempty"`
	ErrorCode       string         `json:"error_code,omitempty"`
	DurationMs      int64          `json:"duration_ms"`
	CreatedAt       time.Time      `json:"created_at"`
}
