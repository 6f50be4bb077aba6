package config

import (
	"errors"
	"fmt"
)

var validSSLModes = map[string]bool{
	"disable":     true,
	"allow":       true,
	"prefer":      true,
	"require":     true,
	"verify-ca":   true,
	"verify-full": true,
}

var validModes = map[string]bool{
	"chat":     true,
	"qa":       true,
	"analysis": true,
}

// Validate checks the configuration for structural errors. It does not
// require an API key or a reachable database; chat commands check those
// at the point of use so that read-only commands keep working without
// credentials.
func (c *Config) Validate() error {
	var errs []error

	if c.ModelName == "" {
		errs = append(errs, errors.New("model_name must not be empty"))
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		errs = append(errs, fmt.Errorf("temperature must be in [0, 2], got %v", c.Temperature))
	}
	if c.MaxTokens <= 0 {
		errs = append(errs, fmt.Errorf("max_tokens must be positive, got %d", c.MaxTokens))
	}
	if !validModes[c.Mode] {
		errs = append(errs, fmt.Errorf("mode must be one of chat, qa, analysis; got %q", c.Mode))
	}
	if c.HistoryDir == "" {
		errs = append(errs, errors.New("history_dir must not be empty"))
	}
	if c.RateBurst < 0 {
		errs = append(errs, fmt.Errorf("rate_burst must not be negative, got %d", c.RateBurst))
	}

	if c.MirrorEnabled {
		if c.PostgresHost == "" {
			errs = append(errs, errors.New("postgres_host must not be empty when mirror is enabled"))
		}
		if c.PostgresPort < 1 || c.PostgresPort > 65535 {
			errs = append(errs, fmt.Errorf("postgres_port must be in [1, 65535], got %d", c.PostgresPort))
		}
		if c.PostgresDBName == "" {
			errs = append(errs, errors.New("postgres_db_name must not be empty when mirror is enabled"))
		}
		if !validSSLModes[c.PostgresSSLMode] {
			errs = append(errs, fmt.Errorf("invalid postgres_ssl_mode %q", c.PostgresSSLMode))
		}
	}

	return errors.Join(errs...)
}

// RequireAPIKey returns an error when no Gemini API key is configured.
// Commands that call the model check this before constructing a client.
func (c *Config) RequireAPIKey() error {
	if c.GeminiAPIKey == "" {
		return errors.New("GEMINI_API_KEY is not set (export it or add gemini_api_key to config.yaml)")
	}
	return nil
}
