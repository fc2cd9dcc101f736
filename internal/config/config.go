// Package config provides environment configuration for the gateway and CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/capitalize-ai/claude-web-client/pkg/claude"
	"github.com/capitalize-ai/claude-web-client/pkg/logger"
)

// Config holds all configuration for the application.
type Config struct {
	// Session settings
	SessionID  string
	SessionKey string
	RawCookie  string

	// Chat service settings
	BaseURL        string
	Timezone       string
	Model          string
	MessageTimeout time.Duration

	// Server settings
	ServerPort         string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	UploadMaxBytes     int64

	// NATS settings; an empty URL disables exchange publishing.
	NATSURL      string
	NATSCAFile   string
	NATSCertFile string
	NATSKeyFile  string
	NATSToken    string

	// JWT settings
	JWTSecret string

	// Rate limiting
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Logging
	LogLevel string

	// Tracing
	TracingEndpoint string
	TracingEnabled  bool
}

// Load reads configuration from environment variables.
func Load() *Config {
	return &Config{
		// Session
		SessionID:  getEnv("SESSION_ID", ""),
		SessionKey: getEnv("SESSION_KEY", ""),
		RawCookie:  getEnv("CLAUDE_COOKIE", ""),

		// Chat service
		BaseURL:        getEnv("CLAUDE_BASE_URL", claude.DefaultBaseURL),
		Timezone:       getEnv("CLAUDE_TIMEZONE", claude.DefaultTimezone),
		Model:          getEnv("CLAUDE_MODEL", claude.DefaultModel),
		MessageTimeout: getDurationEnv("CLAUDE_MESSAGE_TIMEOUT", claude.DefaultMessageTimeout),

		// Server
		ServerPort:         getEnv("PORT", "8080"),
		ServerReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		ServerWriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 600*time.Second),
		UploadMaxBytes:     getInt64Env("UPLOAD_MAX_BYTES", 32<<20),

		// NATS
		NATSURL:      getEnv("NATS_URL", ""),
		NATSCAFile:   getEnv("NATS_CA_FILE", ""),
		NATSCertFile: getEnv("NATS_CERT_FILE", ""),
		NATSKeyFile:  getEnv("NATS_KEY_FILE", ""),
		NATSToken:    getEnv("NATS_TOKEN", ""),

		// JWT
		JWTSecret: getEnv("JWT_SECRET", "development-secret-change-in-production"),

		// Rate limiting
		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 60),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),

		// Tracing
		TracingEndpoint: getEnv("TRACING_ENDPOINT", "localhost:4318"),
		TracingEnabled:  getBoolEnv("TRACING_ENABLED", false),
	}
}

// Cookie returns the session credential. CLAUDE_COOKIE is used verbatim when
// set; otherwise the cookie is assembled from SESSION_ID and SESSION_KEY.
func (c *Config) Cookie() string {
	if c.RawCookie != "" {
		return c.RawCookie
	}
	if c.SessionKey == "" {
		return ""
	}
	return fmt.Sprintf("activitySessionId=%s; sessionKey=%s", c.SessionID, c.SessionKey)
}

// Validate reports settings that make the process unusable.
func (c *Config) Validate() error {
	var errs []error
	if c.Cookie() == "" {
		errs = append(errs, errors.New("SESSION_KEY or CLAUDE_COOKIE must be set"))
	}
	if !strings.HasPrefix(c.BaseURL, "https://") {
		errs = append(errs, fmt.Errorf("CLAUDE_BASE_URL %q must use https", c.BaseURL))
	}
	if c.MessageTimeout <= 0 {
		errs = append(errs, errors.New("CLAUDE_MESSAGE_TIMEOUT must be positive"))
	}
	return errors.Join(errs...)
}

// ClientConfig maps the settings onto a claude.Config.
func (c *Config) ClientConfig(log *logger.Logger) claude.Config {
	cfg := claude.DefaultConfig()
	cfg.BaseURL = c.BaseURL
	cfg.Timezone = c.Timezone
	cfg.Model = c.Model
	cfg.MessageTimeout = c.MessageTimeout
	cfg.Logger = log
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
