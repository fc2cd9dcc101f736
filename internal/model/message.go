package model

import (
	"github.com/capitalize-ai/claude-web-client/pkg/claude"
)

// SendMessageRequest is the JSON form of a message request. Multipart
// requests carry the same fields plus ordered "files" parts.
type SendMessageRequest struct {
	Prompt         string `json:"prompt"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

// SendMessageResponse is the response after a completed exchange.
type SendMessageResponse struct {
	ConversationID string              `json:"conversation_id"`
	Answer         string              `json:"answer"`
	Attachments    []claude.Attachment `json:"attachments"`
	DurationMs     int64               `json:"duration_ms"`
}

// AttachmentEvent is streamed after each upload, in upload order.
type AttachmentEvent struct {
	Index      int               `json:"index"`
	Attachment claude.Attachment `json:"attachment"`
}

// CompletionEvent carries the decoded answer.
type CompletionEvent struct {
	Completion string `json:"completion"`
}

// DoneEvent closes a successful stream.
type DoneEvent struct {
	DurationMs int64 `json:"duration_ms"`
}

// ErrorEvent represents an error event.
type ErrorEvent struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
