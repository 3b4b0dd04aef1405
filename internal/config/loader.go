package config

import (
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// envVarPattern matches ${VAR_NAME} patterns in strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// expandEnvVars replaces ${VAR} patterns with environment variable values.
// Unset variables are left unchanged.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

// expandSensitiveFields resolves ${ENV_VAR} references in credential fields.
func expandSensitiveFields(cfg *Config) {
	cfg.EBird.APIKey = expandEnvVars(cfg.EBird.APIKey)
	cfg.Chat.APIKey = expandEnvVars(cfg.Chat.APIKey)
	cfg.Server.AuthToken = expandEnvVars(cfg.Server.AuthToken)
}

// Load reads the config file, applies environment overrides, and returns
// a merged Config. A missing file yields defaults plus environment.
func Load(path string) (Config, error) {
	cfg := Defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}

	applyDefaults(&cfg)
	expandSensitiveFields(&cfg)
	applyEnvOverrides(&cfg)
	return cfg, nil
}

// LoadRaw reads the config file into a generic map for path-based access.
func LoadRaw(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]any{}, nil
		}
		return nil, err
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &ConfigError{Message: "failed to parse config: " + err.Error()}
	}
	if raw == nil {
		raw = map[string]any{}
	}
	return raw, nil
}

// SaveRaw writes a generic map back to a YAML config file.
func SaveRaw(path string, raw map[string]any) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// applyDefaults fills zero-value fields left empty by the file.
func applyDefaults(cfg *Config) {
	d := Defaults()
	if cfg.EBird.BaseURL == "" {
		cfg.EBird.BaseURL = d.EBird.BaseURL
	}
	if cfg.EBird.Locale == "" {
		cfg.EBird.Locale = d.EBird.Locale
	}
	if cfg.EBird.Timeout <= 0 {
		cfg.EBird.Timeout = d.EBird.Timeout
	}
	if cfg.Server.Transport == "" {
		cfg.Server.Transport = d.Server.Transport
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = d.Server.Addr
	}
	if cfg.Chat.Model == "" {
		cfg.Chat.Model = d.Chat.Model
	}
	if cfg.Chat.ServerURL == "" {
		cfg.Chat.ServerURL = d.Chat.ServerURL
	}
	if cfg.Chat.MaxRounds <= 0 {
		cfg.Chat.MaxRounds = d.Chat.MaxRounds
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = d.Logging.Level
	}
}

// applyEnvOverrides reads credentials and EBIRDMCP_* variables. Environment
// always wins over the file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("EBIRD_API_KEY"); v != "" {
		cfg.EBird.APIKey = v
	}
	if v := os.Getenv("GOOGLE_API_KEY"); v != "" {
		cfg.Chat.APIKey = v
	}
	if v := os.Getenv("EBIRDMCP_TOKEN"); v != "" {
		cfg.Server.AuthToken = v
	}
	if v := os.Getenv("EBIRDMCP_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("EBIRDMCP_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
}
