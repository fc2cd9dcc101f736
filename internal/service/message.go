package service

import (
	"context"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/capitalize-ai/claude-web-client/internal/model"
	"github.com/capitalize-ai/claude-web-client/pkg/claude"
	"github.com/capitalize-ai/claude-web-client/pkg/logger"
	"github.com/capitalize-ai/claude-web-client/pkg/metrics"
)

// Publisher delivers exchange events.
type Publisher interface {
	Publish(ctx context.Context, event *model.ExchangeEvent) error
}

// MessageService handles prompt/answer exchanges.
type MessageService struct {
	client    ChatClient
	publisher Publisher
	logger    *logger.Logger
}

// NewMessageService creates a new message service. publisher may be nil.
func NewMessageService(client ChatClient, publisher Publisher, log *logger.Logger) *MessageService {
	return &MessageService{
		client:    client,
		publisher: publisher,
		logger:    log,
	}
}

// SendInput describes one exchange.
type SendInput struct {
	UserID          string
	ConversationID  string
	Prompt          string
	AttachmentPaths []string
	Timeout         time.Duration
}

// AttachmentCallback is called after each upload, in upload order.
type AttachmentCallback func(index int, att claude.Attachment) error

// Send uploads the attachments, sends the prompt and returns the answer.
func (s *MessageService) Send(ctx context.Context, in *SendInput) (*model.SendMessageResponse, error) {
	return s.SendWithCallback(ctx, in, nil)
}

// SendWithCallback is Send with onAttachment invoked for every uploaded
// attachment. A callback error does not abort the exchange; it is logged.
func (s *MessageService) SendWithCallback(ctx context.Context, in *SendInput, onAttachment AttachmentCallback) (*model.SendMessageResponse, error) {
	start := time.Now()
	attachments := make([]claude.Attachment, 0, len(in.AttachmentPaths))

	answer, err := s.client.SendMessage(ctx, &claude.SendMessageRequest{
		ConversationID:  in.ConversationID,
		Prompt:          in.Prompt,
		AttachmentPaths: in.AttachmentPaths,
		Timeout:         in.Timeout,
		OnAttachment: func(att claude.Attachment) {
			attachments = append(attachments, att)
			if onAttachment == nil {
				return
			}
			if err := onAttachment(len(attachments)-1, att); err != nil {
				s.logger.Debug("attachment callback failed", zap.Error(err))
			}
		},
	})
	duration := time.Since(start)

	s.publish(ctx, in, answer, attachments, duration, err)

	if err != nil {
		metrics.MessagesTotal.WithLabelValues("error").Inc()
		s.logger.Warn("exchange failed",
			zap.String("conversation_id", in.ConversationID),
			zap.String("code", string(claude.CodeOf(err))),
			zap.Error(err),
		)
		return nil, err
	}

	metrics.MessagesTotal.WithLabelValues("ok").Inc()
	s.logger.Info("exchange completed",
		zap.String("conversation_id", in.ConversationID),
		zap.Int("attachments", len(attachments)),
		zap.Int("answer_len", len(answer)),
		zap.Duration("duration", duration),
	)

	return &model.SendMessageResponse{
		ConversationID: in.ConversationID,
		Answer:         answer,
		Attachments:    attachments,
		DurationMs:     duration.Milliseconds(),
	}, nil
}

// publish emits the exchange event. Publishing failures are logged only.
func (s *MessageService) publish(ctx context.Context, in *SendInput, answer string, attachments []claude.Attachment, duration time.Duration, sendErr error) {
	if s.publisher == nil {
		return
	}

	names := make([]string, 0, len(in.AttachmentPaths))
	for _, p := range in.AttachmentPaths {
		names = append(names, filepath.Base(p))
	}

	event := &model.ExchangeEvent{
		ID:              uuid.Must(uuid.NewV7()).String(),
		ConversationID:  in.ConversationID,
		UserID:          in.UserID,
		Status:          model.ExchangeStatusOK,
		Prompt:          in.Prompt,
		Answer:          answer,
		AttachmentNames: names,
		DurationMs:      duration.Milliseconds(),
		CreatedAt:       time.Now().UTC(),
	}
	if sendErr != nil {
		event.Status = model.ExchangeStatusError
		event.ErrorCode = string(claude.CodeOf(sendErr))
	}

	// The request context may already be done after a timeout.
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Warn("failed to publish exchange event",
			zap.String("conversation_id", in.ConversationID),
			zap.Error(err),
		)
	}
}
