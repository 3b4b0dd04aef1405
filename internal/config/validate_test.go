package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate_ValidDefaults(t *testing.T) {
	cfg := Defaults()
	assert.Empty(t, Validate(&cfg))
}

func TestValidate_InvalidTransport(t *testing.T) {
	cfg := Defaults()
	cfg.Server.Transport = "grpc"
	issues := Validate(&cfg)
	assert.NotEmpty(t, issues)
	assert.Equal(t, "server.transport", issues[0].Path)
}

func TestValidate_HTTPNeedsAddr(t *testing.T) {
	cfg := Defaults()
	cfg.Server.Transport = "http"
	cfg.Server.Addr = ""
	issues := Validate(&cfg)
	assert.Len(t, issues, 1)
	assert.Equal(t, "server.addr", issues[0].Path)
}

func TestValidate_NegativeValues(t *testing.T) {
	cfg := Defaults()
	cfg.EBird.Timeout = -1
	cfg.Chat.MaxRounds = -2
	issues := Validate(&cfg)
	assert.Len(t, issues, 2)
}

func TestValidate_LogLevel(t *testing.T) {
	for _, level := range []string{"silent", "debug", "info", ""} {
		cfg := Defaults()
		cfg.Logging.Level = level
		assert.Empty(t, Validate(&cfg), "level %q should be valid", level)
	}

	cfg := Defaults()
	cfg.Logging.Level = "verbose"
	issues := Validate(&cfg)
	assert.NotEmpty(t, issues)
	assert.Contains(t, issues[0].String(), "logging.level")
}
