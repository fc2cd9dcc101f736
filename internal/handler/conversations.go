package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/capitalize-ai/claude-web-client/internal/middleware"
	"github.com/capitalize-ai/claude-web-client/internal/model"
	"github.com/capitalize-ai/claude-web-client/internal/service"
	"github.com/capitalize-ai/claude-web-client/pkg/logger"
)

// ConversationHandler handles conversation endpoints.
type ConversationHandler struct {
	service *service.ConversationService
	logger  *logger.Logger
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(svc *service.ConversationService, log *logger.Logger) *ConversationHandler {
	return &ConversationHandler{
		service: svc,
		logger:  log,
	}
}

// Create handles POST /api/v1/conversations. The body is optional.
func (h *ConversationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateTitle(req.Name); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conv, err := h.service.Create(r.Context(), req.Name)
	if err != nil {
		writeClientError(w, h.logger, "create conversation", err)
		return
	}

	writeJSON(w, http.StatusCreated, conv)
}

// List handles GET /api/v1/conversations
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	convs, err := h.service.List(r.Context())
	if err != nil {
		writeClientError(w, h.logger, "list conversations", err)
		return
	}

	writeJSON(w, http.StatusOK, &model.ListConversationsResponse{
		Conversations: convs,
		Total:         len(convs),
	})
}

// Get handles GET /api/v1/conversations/{id} and returns the history.
func (h *ConversationHandler) Get(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")
	if err := middleware.ValidateConversationID(conversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	msgs, err := h.service.History(r.Context(), conversationID)
	if err != nil {
		writeClientError(w, h.logger, "conversation history", err)
		return
	}

	writeJSON(w, http.StatusOK, &model.HistoryResponse{
		ConversationID: conversationID,
		Messages:       msgs,
	})
}

// Update handles PUT /api/v1/conversations/{id} and renames the conversation.
func (h *ConversationHandler) Update(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")
	if err := middleware.ValidateConversationID(conversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req model.RenameConversationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateTitle(req.Title); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.Rename(r.Context(), conversationID, req.Title); err != nil {
		writeClientError(w, h.logger, "rename conversation", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Delete handles DELETE /api/v1/conversations/{id}
func (h *ConversationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "id")
	if err := middleware.ValidateConversationID(conversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.Delete(r.Context(), conversationID); err != nil {
		writeClientError(w, h.logger, "delete conversation", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Reset handles DELETE /api/v1/conversations and removes every conversation.
func (h *ConversationHandler) Reset(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.service.Reset(r.Context())
	if err != nil {
		writeClientError(w, h.logger, "reset conversations", err)
		return
	}

	writeJSON(w, http.StatusOK, &model.ResetResponse{Deleted: deleted})
}
