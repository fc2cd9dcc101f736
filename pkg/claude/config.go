package claude

import (
	"net/http"
	"strings"
	"time"

	"github.com/capitalize-ai/claude-web-client/pkg/logger"
)

const (
	// DefaultBaseURL is the service origin.
	DefaultBaseURL = "https://claude.ai"

	// DefaultUserAgent is sent on every request.
	DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/117.0.0.0 Safari/537.36"

	// DefaultModel is the model named in append_message payloads.
	DefaultModel = "claude-2"

	// DefaultTimezone is reported with every prompt.
	DefaultTimezone = "UTC"

	// DefaultMessageTimeout bounds the append_message request.
	DefaultMessageTimeout = 500 * time.Second

	// DefaultRequestTimeout bounds every other call.
	DefaultRequestTimeout = 60 * time.Second
)

// Config holds the client configuration.
type Config struct {
	// BaseURL is the service origin; it must use https.
	BaseURL string
	// UserAgent overrides DefaultUserAgent.
	UserAgent string
	// Model and Timezone are embedded in the completion payload.
	Model    string
	Timezone string
	// MessageTimeout is the default deadline of SendMessage.
	MessageTimeout time.Duration
	// RequestTimeout is the deadline of every other call.
	RequestTimeout time.Duration
	// Transport replaces the default TLS transport. Tests use it to trust httptest certificates.
	Transport http.RoundTripper
	// Logger receives debug output; nil discards it.
	Logger *logger.Logger
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() Config {
	return Config{
		BaseURL:        DefaultBaseURL,
		UserAgent:      DefaultUserAgent,
		Model:          DefaultModel,
		Timezone:       DefaultTimezone,
		MessageTimeout: DefaultMessageTimeout,
		RequestTimeout: DefaultRequestTimeout,
	}
}

// withDefaults fills zero fields from DefaultConfig.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.BaseURL == "" {
		c.BaseURL = d.BaseURL
	}
	c.BaseURL = strings.TrimSuffix(c.BaseURL, "/")
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	if c.Model == "" {
		c.Model = d.Model
	}
	if c.Timezone == "" {
		c.Timezone = d.Timezone
	}
	if c.MessageTimeout <= 0 {
		c.MessageTimeout = d.MessageTimeout
	}
	if c.RequestTimeout <= 0 {
		c.RequestTimeout = d.RequestTimeout
	}
	if c.Logger == nil {
		c.Logger = logger.NewNop()
	}
	return c
}
