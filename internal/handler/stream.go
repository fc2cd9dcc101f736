package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/capitalize-ai/claude-web-client/internal/model"
	"github.com/capitalize-ai/claude-web-client/internal/service"
	"github.com/capitalize-ai/claude-web-client/pkg/claude"
	"github.com/capitalize-ai/claude-web-client/pkg/logger"
	"github.com/capitalize-ai/claude-web-client/pkg/metrics"
)

// StreamHandler handles SSE streaming endpoints.
type StreamHandler struct {
	messageService *service.MessageService
	logger         *logger.Logger
	uploadMaxBytes int64
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(msgSvc *service.MessageService, log *logger.Logger, uploadMaxBytes int64) *StreamHandler {
	return &StreamHandler{
		messageService: msgSvc,
		logger:         log,
		uploadMaxBytes: uploadMaxBytes,
	}
}

// StreamWithMessage handles POST /api/v1/conversations/{id}/stream. It
// accepts the same body as Send and reports progress as server-sent
// events: one "attachment" per upload in order, then "completion" and
// "done", or a single "error".
func (h *StreamHandler) StreamWithMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	in, err := parseSendInput(w, r, h.uploadMaxBytes, h.logger)
	if err != nil {
		writeRequestError(w, h.logger, err)
		return
	}
	defer in.cleanup(h.logger)

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	// Track active connection
	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	resp, err := h.messageService.SendWithCallback(ctx, in.SendInput, func(index int, att claude.Attachment) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return sendSSEEvent(w, flusher, "attachment", &model.AttachmentEvent{
			Index:      index,
			Attachment: att,
		})
	})
	if err != nil {
		code := claude.CodeOf(err)
		message := "internal error"
		var cerr *claude.Error
		if errors.As(err, &cerr) {
			message = cerr.Message
			if message == "" {
				message = cerr.Error()
			}
		}
		if sseErr := sendSSEEvent(w, flusher, "error", &model.ErrorEvent{
			Code:    string(code),
			Message: message,
		}); sseErr != nil {
			h.logger.Debug("SSE client gone before error event", zap.Error(sseErr))
		}
		return
	}

	if err := sendSSEEvent(w, flusher, "completion", &model.CompletionEvent{Completion: resp.Answer}); err != nil {
		h.logger.Debug("SSE client gone before completion", zap.Error(err))
		return
	}
	_ = sendSSEEvent(w, flusher, "done", &model.DoneEvent{DurationMs: resp.DurationMs})

	h.logger.Debug("SSE exchange finished",
		zap.String("conversation_id", in.ConversationID),
		zap.Duration("duration", time.Duration(resp.DurationMs)*time.Millisecond),
	)
}

func sendSSEEvent(w http.ResponseWriter, flusher http.Flusher, event string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return err
	}
	flusher.Flush()

	return nil
}
