package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/capitalize-ai/claude-web-client/internal/middleware"
	"github.com/capitalize-ai/claude-web-client/internal/model"
	"github.com/capitalize-ai/claude-web-client/internal/service"
	"github.com/capitalize-ai/claude-web-client/pkg/logger"
)

// MessageHandler handles message endpoints.
type MessageHandler struct {
	messageService *service.MessageService
	logger         *logger.Logger
	uploadMaxBytes int64
}

// NewMessageHandler creates a new message handler. uploadMaxBytes bounds
// the whole request body, attachments included.
func NewMessageHandler(msgSvc *service.MessageService, log *logger.Logger, uploadMaxBytes int64) *MessageHandler {
	return &MessageHandler{
		messageService: msgSvc,
		logger:         log,
		uploadMaxBytes: uploadMaxBytes,
	}
}

// Send handles POST /api/v1/conversations/{id}/messages
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	in, err := parseSendInput(w, r, h.uploadMaxBytes, h.logger)
	if err != nil {
		writeRequestError(w, h.logger, err)
		return
	}
	defer in.cleanup(h.logger)

	resp, err := h.messageService.Send(r.Context(), in.SendInput)
	if err != nil {
		writeClientError(w, h.logger, "send message", err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// requestError is a malformed request, reported with its status.
type requestError struct {
	status  int
	message string
	err     error
}

func (e *requestError) Error() string {
	if e.err != nil {
		return e.message + ": " + e.err.Error()
	}
	return e.message
}

func (e *requestError) Unwrap() error {
	return e.err
}

func badRequest(message string) *requestError {
	return &requestError{status: http.StatusBadRequest, message: message}
}

func writeRequestError(w http.ResponseWriter, log *logger.Logger, err error) {
	var rerr *requestError
	if !errors.As(err, &rerr) {
		rerr = &requestError{status: http.StatusInternalServerError, message: "internal error", err: err}
	}
	if rerr.status >= http.StatusInternalServerError {
		log.Error("failed to read message request", zap.Error(err))
	}
	writeError(w, rerr.status, rerr.message)
}

// parsedInput is a validated message request. Multipart attachments are
// spooled to dir, one sub-directory per file so names survive unchanged.
type parsedInput struct {
	*service.SendInput
	dir string
}

func (p *parsedInput) cleanup(log *logger.Logger) {
	if p.dir == "" {
		return
	}
	if err := os.RemoveAll(p.dir); err != nil {
		log.Warn("failed to remove spooled attachments", zap.Error(err))
	}
}

// parseSendInput reads a JSON or multipart message request for the
// conversation in the URL.
func parseSendInput(w http.ResponseWriter, r *http.Request, maxBytes int64, log *logger.Logger) (*parsedInput, error) {
	conversationID := chi.URLParam(r, "id")
	if err := middleware.ValidateConversationID(conversationID); err != nil {
		return nil, badRequest(err.Error())
	}

	if maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	}

	in := &parsedInput{SendInput: &service.SendInput{
		UserID:         middleware.GetUserID(r.Context()),
		ConversationID: conversationID,
	}}

	var timeoutSeconds int
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		secs, err := in.readMultipart(r)
		if err != nil {
			in.cleanup(log)
			return nil, err
		}
		timeoutSeconds = secs
	} else {
		var req model.SendMessageRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return nil, bodyError(err, "invalid request body")
		}
		in.Prompt = req.Prompt
		timeoutSeconds = req.TimeoutSeconds
	}

	if err := middleware.ValidatePrompt(in.Prompt); err != nil {
		in.cleanup(log)
		return nil, badRequest(err.Error())
	}
	if err := middleware.ValidateTimeoutSeconds(timeoutSeconds); err != nil {
		in.cleanup(log)
		return nil, badRequest(err.Error())
	}
	in.Timeout = time.Duration(timeoutSeconds) * time.Second

	return in, nil
}

// readMultipart consumes the form part by part. "files" parts are kept in
// the order they arrive, which is the order they are uploaded in.
func (p *parsedInput) readMultipart(r *http.Request) (int, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return 0, badRequest("invalid multipart body")
	}

	timeoutSeconds := 0
	for {
		part, err := mr.NextPart()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, bodyError(err, "invalid multipart body")
		}

		switch part.FormName() {
		case "prompt":
			data, err := io.ReadAll(part)
			if err != nil {
				return 0, bodyError(err, "invalid prompt field")
			}
			p.Prompt = string(data)
		case "timeout_seconds":
			data, err := io.ReadAll(io.LimitReader(part, 16))
			if err != nil {
				return 0, bodyError(err, "invalid timeout_seconds field")
			}
			secs, err := strconv.Atoi(strings.TrimSpace(string(data)))
			if err != nil {
				return 0, badRequest("timeout_seconds must be an integer")
			}
			timeoutSeconds = secs
		case "files":
			if err := p.spool(part.FileName(), part); err != nil {
				return 0, err
			}
		default:
			_, _ = io.Copy(io.Discard, part)
		}
		part.Close()
	}
	return timeoutSeconds, nil
}

// spool writes one attachment to disk and records its path.
func (p *parsedInput) spool(fileName string, src io.Reader) error {
	name := filepath.Base(filepath.Clean("/" + fileName))
	if fileName == "" || name == "/" || name == "." {
		return badRequest("every file part needs a file name")
	}

	if p.dir == "" {
		dir, err := os.MkdirTemp("", "claude-upload-*")
		if err != nil {
			return fmt.Errorf("failed to create spool directory: %w", err)
		}
		p.dir = dir
	}

	slot := filepath.Join(p.dir, strconv.Itoa(len(p.AttachmentPaths)))
	if err := os.Mkdir(slot, 0o700); err != nil {
		return fmt.Errorf("failed to create spool slot: %w", err)
	}

	path := filepath.Join(slot, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create spool file: %w", err)
	}
	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		return bodyError(err, "failed to read file part")
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write spool file: %w", err)
	}

	p.AttachmentPaths = append(p.AttachmentPaths, path)
	return nil
}

// bodyError reports an oversized body as 413 and anything else as 400.
func bodyError(err error, message string) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return &requestError{status: http.StatusRequestEntityTooLarge, message: "request body too large", err: err}
	}
	return &requestError{status: http.StatusBadRequest, message: message, err: err}
}
