package claude

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

func (c *Client) conversationsPath() string {
	return fmt.Sprintf("/api/organizations/%s/chat_conversations", url.PathEscape(c.orgID))
}

func (c *Client) conversationPath(conversationID string) string {
	return c.conversationsPath() + "/" + url.PathEscape(conversationID)
}

// ListConversations returns every conversation of the organization. An
// organization without conversations yields an empty, non-nil slice.
func (c *Client) ListConversations(ctx context.Context) (convs []Conversation, err error) {
	const op = "list_conversations"
	ctx, finish := c.startOp(ctx, op)
	defer func() { finish(err) }()

	if err := c.doJSON(ctx, op, http.MethodGet, c.conversationsPath(), nil, &convs); err != nil {
		return nil, err
	}
	if convs == nil {
		convs = []Conversation{}
	}
	return convs, nil
}

// CreateConversation creates a conversation with the given name. A uuid is
// proposed, but the one returned by the service is authoritative.
func (c *Client) CreateConversation(ctx context.Context, name string) (conv *Conversation, err error) {
	const op = "create_conversation"
	proposed := uuid.New().String()
	ctx, finish := c.startOp(ctx, op, attribute.String("conversation.proposed_uuid", proposed))
	defer func() { finish(err) }()

	conv = &Conversation{}
	payload := createConversationPayload{UUID: proposed, Name: name}
	if err := c.doJSON(ctx, op, http.MethodPost, c.conversationsPath(), payload, conv); err != nil {
		return nil, err
	}
	if conv.UUID == "" {
		return nil, newError(CodeDecode, op, "response carries no conversation uuid", nil)
	}
	if conv.UUID != proposed {
		c.log.Debug("service assigned a different conversation uuid",
			zap.String("proposed", proposed),
			zap.String("assigned", conv.UUID),
		)
	}
	return conv, nil
}

// ConversationHistory returns the messages of a conversation in service order.
func (c *Client) ConversationHistory(ctx context.Context, conversationID string) (msgs []ChatMessage, err error) {
	const op = "conversation_history"
	ctx, finish := c.startOp(ctx, op, attribute.String("conversation.uuid", conversationID))
	defer func() { finish(err) }()

	var resp historyResponse
	if err := c.doJSON(ctx, op, http.MethodGet, c.conversationPath(conversationID), nil, &resp); err != nil {
		return nil, err
	}
	if resp.ChatMessages == nil {
		resp.ChatMessages = []ChatMessage{}
	}
	return resp.ChatMessages, nil
}

// DeleteConversation removes a conversation. An unknown id yields CodeNotFound.
func (c *Client) DeleteConversation(ctx context.Context, conversationID string) (err error) {
	const op = "delete_conversation"
	ctx, finish := c.startOp(ctx, op, attribute.String("conversation.uuid", conversationID))
	defer func() { finish(err) }()

	payload := deleteConversationPayload{ConversationID: conversationID}
	return c.doJSON(ctx, op, http.MethodDelete, c.conversationPath(conversationID), payload, nil)
}

// RenameConversation sets the conversation title. The title is not checked
// locally; a rejection by the service yields CodeValidation.
func (c *Client) RenameConversation(ctx context.Context, conversationID, title string) (err error) {
	const op = "rename_conversation"
	ctx, finish := c.startOp(ctx, op, attribute.String("conversation.uuid", conversationID))
	defer func() { finish(err) }()

	payload := renamePayload{
		OrganizationUUID: c.orgID,
		ConversationUUID: conversationID,
		Title:            title,
	}
	return c.doJSON(ctx, op, http.MethodPost, "/api/rename_chat", payload, nil)
}

// ResetAll deletes every conversation, one at a time. The first failure stops the sweep.
func (c *Client) ResetAll(ctx context.Context) (err error) {
	const op = "reset_all"
	ctx, finish := c.startOp(ctx, op)
	defer func() { finish(err) }()

	convs, err := c.ListConversations(ctx)
	if err != nil {
		return err
	}
	for _, conv := range convs {
		if err := c.DeleteConversation(ctx, conv.UUID); err != nil {
			return err
		}
	}
	c.log.Debug("conversations reset", zap.Int("deleted", len(convs)))
	return nil
}
