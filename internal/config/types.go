package config

import "time"

// Config is the root configuration for ebird-mcp.
type Config struct {
	EBird   EBirdConfig   `yaml:"ebird,omitempty"`
	Server  ServerConfig  `yaml:"server,omitempty"`
	Chat    ChatConfig    `yaml:"chat,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty"`
}

// EBirdConfig configures the upstream observation API and the taxonomy cache.
type EBirdConfig struct {
	APIKey  string `yaml:"apiKey,omitempty"` // usually ${EBIRD_API_KEY}
	BaseURL string `yaml:"baseUrl,omitempty"`
	Locale  string `yaml:"locale,omitempty"` // taxonomy common-name locale

	// TaxonomyCache is the snapshot file; empty means cache/ebird_taxonomy.json.
	TaxonomyCache string `yaml:"taxonomyCache,omitempty"`

	// Timeout bounds every upstream request, including the taxonomy fetch.
	Timeout time.Duration `yaml:"timeout,omitempty"`
}

// ServerConfig controls the MCP tool server.
type ServerConfig struct {
	Transport string `yaml:"transport,omitempty"` // "stdio" | "http"
	Addr      string `yaml:"addr,omitempty"`      // listen address for http
	Warm      bool   `yaml:"warm,omitempty"`      // load the taxonomy at startup

	// AuthToken, when set, is required as a bearer token by the http
	// transport and sent by the chat client. Usually ${EBIRDMCP_TOKEN}.
	AuthToken   string   `yaml:"authToken,omitempty"`
	CORSOrigins []string `yaml:"corsOrigins,omitempty"`
}

// ChatConfig configures the demo chat client.
type ChatConfig struct {
	APIKey    string `yaml:"apiKey,omitempty"` // usually ${GOOGLE_API_KEY}
	Model     string `yaml:"model,omitempty"`
	ServerURL string `yaml:"serverUrl,omitempty"`
	MaxRounds int    `yaml:"maxRounds,omitempty"` // tool-call rounds per prompt
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level string `yaml:"level,omitempty"`
	File  string `yaml:"file,omitempty"`
}
