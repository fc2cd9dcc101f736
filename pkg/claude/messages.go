package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/capitalize-ai/claude-web-client/pkg/metrics"
)

// SendMessage uploads the request's attachments in order, appends the prompt
// to the conversation, and returns the decoded answer. Upload and decode
// errors are returned unchanged; nothing is retried. Uploads get the larger
// of req.Timeout and Config.RequestTimeout each.
func (c *Client) SendMessage(ctx context.Context, req *SendMessageRequest) (answer string, err error) {
	const op = "send_message"
	if req == nil {
		return "", newError(CodeValidation, op, "nil request", nil)
	}
	ctx, finish := c.startOp(ctx, op,
		attribute.String("conversation.uuid", req.ConversationID),
		attribute.Int("attachments.count", len(req.AttachmentPaths)),
	)
	defer func() { finish(err) }()

	// Sequential on purpose: descriptors must keep the caller's order.
	uploadTimeout := max(req.Timeout, c.cfg.RequestTimeout)
	attachments := make([]Attachment, 0, len(req.AttachmentPaths))
	for _, path := range req.AttachmentPaths {
		att, err := c.uploadAttachment(ctx, path, uploadTimeout)
		if err != nil {
			return "", err
		}
		attachments = append(attachments, *att)
		if req.OnAttachment != nil {
			req.OnAttachment(*att)
		}
	}

	payload := appendMessagePayload{
		Completion: completionParams{
			Prompt:   req.Prompt,
			Timezone: c.cfg.Timezone,
			Model:    c.cfg.Model,
		},
		OrganizationUUID: c.orgID,
		ConversationUUID: req.ConversationID,
		Text:             req.Prompt,
		Attachments:      attachments,
	}

	body, err := c.appendMessage(ctx, payload, req.Timeout)
	if err != nil {
		return "", err
	}

	frames, err := ParseFrames(body)
	if err != nil {
		return "", err
	}

	completions := 0
	for _, f := range frames {
		if f.Completion != nil {
			completions++
		}
	}
	metrics.RecordFrames(completions, len(frames)-completions)

	answer = joinCompletions(frames)
	c.log.Debug("message answered",
		zap.String("conversation_uuid", req.ConversationID),
		zap.Int("frames", len(frames)),
		zap.Int("answer_len", len(answer)),
	)
	return answer, nil
}

// appendMessage posts payload and returns the full response body. The
// timeout covers the request and the body read.
func (c *Client) appendMessage(ctx context.Context, payload appendMessagePayload, timeout time.Duration) (string, error) {
	const op = "append_message"
	if timeout <= 0 {
		timeout = c.cfg.MessageTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	data, err := json.Marshal(payload)
	if err != nil {
		return "", newError(CodeValidation, op, "failed to marshal request", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/api/append_message", bytes.NewReader(data))
	if err != nil {
		return "", newError(CodeNetwork, op, "failed to create request", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", transportError(op, err)
	}
	defer resp.Body.Close()

	// Partial bodies are discarded when the deadline hits mid-read.
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", transportError(op, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", statusError(op, resp.StatusCode, raw)
	}
	return string(raw), nil
}
