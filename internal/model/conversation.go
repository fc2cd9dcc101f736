// Package model defines the gateway request, response and event payloads.
package model

import (
	"github.com/capitalize-ai/claude-web-client/pkg/claude"
)

// CreateConversationRequest is the request to create a new conversation.
type CreateConversationRequest struct {
	Name string `json:"name"`
}

// RenameConversationRequest is the request to retitle a conversation.
type RenameConversationRequest struct {
	Title string `json:"title"`
}

// ListConversationsResponse is the response for listing conversations.
type ListConversationsResponse struct {
	Conversations []claude.Conversation `json:"conversations"`
	Total         int                   `json:"total"`
}

// HistoryResponse is the response for a conversation's history.
type HistoryResponse struct {
	ConversationID string               `json:"conversation_id"`
	Messages       []claude.ChatMessage `json:"messages"`
}

// ResetResponse reports a completed reset.
type ResetResponse struct {
	Deleted int `json:"deleted"`
}
