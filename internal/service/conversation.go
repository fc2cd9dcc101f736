// Package service wraps the chat client with the gateway's logging, metrics
// and event publishing.
package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/capitalize-ai/claude-web-client/pkg/claude"
	"github.com/capitalize-ai/claude-web-client/pkg/logger"
	"github.com/capitalize-ai/claude-web-client/pkg/metrics"
)

// ChatClient is the subset of *claude.Client used by the services.
type ChatClient interface {
	ListConversations(ctx context.Context) ([]claude.Conversation, error)
	CreateConversation(ctx context.Context, name string) (*claude.Conversation, error)
	ConversationHistory(ctx context.Context, conversationID string) ([]claude.ChatMessage, error)
	DeleteConversation(ctx context.Context, conversationID string) error
	RenameConversation(ctx context.Context, conversationID, title string) error
	SendMessage(ctx context.Context, req *claude.SendMessageRequest) (string, error)
}

// ConversationService handles conversation operations.
type ConversationService struct {
	client ChatClient
	logger *logger.Logger
}

// NewConversationService creates a new conversation service.
func NewConversationService(client ChatClient, log *logger.Logger) *ConversationService {
	return &ConversationService{
		client: client,
		logger: log,
	}
}

// Create creates a new conversation.
func (s *ConversationService) Create(ctx context.Context, name string) (*claude.Conversation, error) {
	conv, err := s.client.CreateConversation(ctx, name)
	if err != nil {
		return nil, err
	}

	metrics.ConversationsTotal.Inc()
	s.logger.Info("conversation created", zap.String("conversation_id", conv.UUID))
	return conv, nil
}

// List returns every conversation of the organization.
func (s *ConversationService) List(ctx context.Context) ([]claude.Conversation, error) {
	return s.client.ListConversations(ctx)
}

// History returns the messages of a conversation.
func (s *ConversationService) History(ctx context.Context, conversationID string) ([]claude.ChatMessage, error) {
	return s.client.ConversationHistory(ctx, conversationID)
}

// Rename sets a conversation's title.
func (s *ConversationService) Rename(ctx context.Context, conversationID, title string) error {
	if err := s.client.RenameConversation(ctx, conversationID, title); err != nil {
		return err
	}
	s.logger.Info("conversation renamed", zap.String("conversation_id", conversationID))
	return nil
}

// Delete removes a conversation.
func (s *ConversationService) Delete(ctx context.Context, conversationID string) error {
	if err := s.client.DeleteConversation(ctx, conversationID); err != nil {
		return err
	}
	s.logger.Info("conversation deleted", zap.String("conversation_id", conversationID))
	return nil
}

// Reset deletes every conversation one at a time and returns how many were
// removed. The first failure stops the sweep; the count reflects the
// deletions that succeeded before it.
func (s *ConversationService) Reset(ctx context.Context) (int, error) {
	convs, err := s.client.ListConversations(ctx)
	if err != nil {
		return 0, err
	}

	for i, conv := range convs {
		if err := s.client.DeleteConversation(ctx, conv.UUID); err != nil {
			s.logger.Warn("reset stopped",
				zap.String("conversation_id", conv.UUID),
				zap.Int("deleted", i),
				zap.Error(err),
			)
			return i, err
		}
	}

	s.logger.Info("conversations reset", zap.Int("deleted", len(convs)))
	return len(convs), nil
}
