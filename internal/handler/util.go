// Package handler provides HTTP handlers for the gateway.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/capitalize-ai/claude-web-client/pkg/claude"
	"github.com/capitalize-ai/claude-web-client/pkg/logger"
)

// errorResponse is the JSON body of every error reply.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// statusForCode maps a client error code to the gateway's HTTP status.
func statusForCode(code claude.ErrorCode) int {
	switch code {
	case claude.CodeNotFound:
		return http.StatusNotFound
	case claude.CodeValidation:
		return http.StatusBadRequest
	case claude.CodeTimeout:
		return http.StatusGatewayTimeout
	case claude.CodeAuthentication, claude.CodeNetwork, claude.CodeDecode, claude.CodeUpload:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeClientError translates an error returned by the chat client.
func writeClientError(w http.ResponseWriter, log *logger.Logger, op string, err error) {
	code := claude.CodeOf(err)
	status := statusForCode(code)

	message := "internal error"
	var cerr *claude.Error
	if errors.As(err, &cerr) && status != http.StatusInternalServerError {
		message = cerr.Message
		if message == "" {
			message = string(cerr.Code)
		}
	}

	if status >= http.StatusInternalServerError {
		log.Error(op+" failed", zap.String("code", string(code)), zap.Error(err))
	} else {
		log.Debug(op+" rejected", zap.String("code", string(code)), zap.Error(err))
	}

	writeJSON(w, status, errorResponse{Error: message, Code: string(code)})
}
