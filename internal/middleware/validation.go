package middleware

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const (
	maxPromptBytes = 100000
	maxTitleBytes  = 256
)

// ValidatePrompt validates prompt text.
func ValidatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return errors.New("prompt cannot be empty")
	}
	if len(prompt) > maxPromptBytes {
		return errors.New("prompt exceeds maximum length")
	}
	if !utf8.ValidString(prompt) {
		return errors.New("prompt must be valid UTF-8")
	}
	return nil
}

// ValidateConversationID validates a conversation ID.
func ValidateConversationID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return errors.New("invalid conversation ID format")
	}
	return nil
}

// ValidateTitle validates a conversation title. Emptiness is left to the
// chat service, which owns that rule.
func ValidateTitle(title string) error {
	if len(title) > maxTitleBytes {
		return errors.New("title exceeds maximum length")
	}
	if !utf8.ValidString(title) {
		return errors.New("title must be valid UTF-8")
	}
	return nil
}

// ValidateTimeoutSeconds validates a per-request timeout override.
func ValidateTimeoutSeconds(seconds int) error {
	if seconds < 0 {
		return errors.New("timeout_seconds cannot be negative")
	}
	if seconds > 3600 {
		return errors.New("timeout_seconds exceeds one hour")
	}
	return nil
}
