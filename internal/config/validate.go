package config

import (
	"fmt"
	"slices"
)

// ValidationIssue describes a problem with a config value.
type ValidationIssue struct {
	Path    string
	Message string
}

func (v ValidationIssue) String() string {
	return fmt.Sprintf("%s: %s", v.Path, v.Message)
}

// Validate checks a Config for issues. Returns nil if valid.
// The eBird credential is not checked here; see RequireCredential.
func Validate(cfg *Config) []ValidationIssue {
	var issues []ValidationIssue

	if cfg.EBird.Timeout < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "ebird.timeout",
			Message: fmt.Sprintf("must not be negative, got %s", cfg.EBird.Timeout),
		})
	}

	validTransports := []string{"stdio", "http"}
	if cfg.Server.Transport != "" && !slices.Contains(validTransports, cfg.Server.Transport) {
		issues = append(issues, ValidationIssue{
			Path:    "server.transport",
			Message: fmt.Sprintf("must be one of %v, got %q", validTransports, cfg.Server.Transport),
		})
	}

	if cfg.Server.Transport == "http" && cfg.Server.Addr == "" {
		issues = append(issues, ValidationIssue{
			Path:    "server.addr",
			Message: "required when transport is http",
		})
	}

	if cfg.Chat.MaxRounds < 0 {
		issues = append(issues, ValidationIssue{
			Path:    "chat.maxRounds",
			Message: fmt.Sprintf("must not be negative, got %d", cfg.Chat.MaxRounds),
		})
	}

	validLogLevels := []string{"silent", "fatal", "error", "warn", "info", "debug", "trace"}
	if cfg.Logging.Level != "" && !slices.Contains(validLogLevels, cfg.Logging.Level) {
		issues = append(issues, ValidationIssue{
			Path:    "logging.level",
			Message: fmt.Sprintf("must be one of %v, got %q", validLogLevels, cfg.Logging.Level),
		})
	}

	return issues
}
