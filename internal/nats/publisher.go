package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/capitalize-ai/claude-web-client/internal/model"
)

// SubjectPrefix is the prefix for all exchange subjects.
const SubjectPrefix = "claude"

// subjectEscaper replaces characters NATS reserves for subject tokens.
var subjectEscaper = strings.NewReplacer(".", "_", "*", "_", ">", "_", " ", "_")

// ExchangeSubject returns the subject an exchange on conversationID is published to.
func ExchangeSubject(conversationID string) string {
	return fmt.Sprintf("%s.%s.exchange", SubjectPrefix, subjectEscaper.Replace(conversationID))
}

// ConversationFilter returns the wildcard subject matching every event of a conversation.
func ConversationFilter(conversationID string) string {
	return fmt.Sprintf("%s.%s.>", SubjectPrefix, subjectEscaper.Replace(conversationID))
}

// conn is the part of *nats.Conn the publisher needs.
type conn interface {
	Publish(subject string, data []byte) error
}

// Publisher sends exchange events. Delivery is fire-and-forget: nothing is
// persisted and subscribers that are offline miss the event.
type Publisher struct {
	conn conn
}

// NewPublisher creates a publisher on the client's connection.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{conn: client.Conn()}
}

// Publish marshals event and publishes it on its exchange subject.
func (p *Publisher) Publish(ctx context.Context, event *model.ExchangeEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := p.conn.Publish(ExchangeSubject(event.ConversationID), data); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}
