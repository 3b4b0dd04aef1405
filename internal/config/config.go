package config

import (
	"errors"
	"fmt"
	"time"
)

// ErrMissingCredential is returned when the eBird API key is not configured.
// The server must not start without it.
var ErrMissingCredential = errors.New("EBIRD_API_KEY environment variable not set")

// ErrMissingChatCredential is returned by the chat client without a Gemini key.
var ErrMissingChatCredential = errors.New("GOOGLE_API_KEY environment variable not set")

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: %s", e.Message)
}

const (
	DefaultBaseURL   = "https://api.ebird.org/v2"
	DefaultLocale    = "en"
	DefaultTimeout   = 30 * time.Second
	DefaultAddr      = "127.0.0.1:8000"
	DefaultChatModel = "gemini-1.5-flash"
)

// Defaults returns a Config with sensible defaults applied.
func Defaults() Config {
	return Config{
		EBird: EBirdConfig{
			BaseURL: DefaultBaseURL,
			Locale:  DefaultLocale,
			Timeout: DefaultTimeout,
		},
		Server: ServerConfig{
			Transport: "stdio",
			Addr:      DefaultAddr,
		},
		Chat: ChatConfig{
			Model:     DefaultChatModel,
			ServerURL: "http://" + DefaultAddr + "/mcp",
			MaxRounds: 5,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// RequireCredential fails fast when no eBird API key is available.
func (c *Config) RequireCredential() error {
	if c.EBird.APIKey == "" {
		return ErrMissingCredential
	}
	return nil
}

// RequireChatCredential fails fast when no Gemini API key is available.
func (c *Config) RequireChatCredential() error {
	if c.Chat.APIKey == "" {
		return ErrMissingChatCredential
	}
	return nil
}
