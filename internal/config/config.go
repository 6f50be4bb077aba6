// Package config provides application configuration with multi-source
// priority.
//
// Sources, highest to lowest:
//  1. Environment variables (GEMINI_API_KEY, DATABASE_URL, ASKCAMPUS_*)
//  2. Config file (~/.askcampus/config.yaml, or ./config.yaml)
//  3. Defaults
//
// Load produces an explicit *Config that is passed into every component
// constructor; nothing outside this package reads the environment for
// configuration. Sensitive fields are masked in MarshalJSON and String.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	// DefaultModel is the Gemini model used when none is configured.
	DefaultModel = "gemini-2.5-flash"

	// DefaultHistoryDir is where per-user history files live, relative to
	// the working directory unless overridden.
	DefaultHistoryDir = "user_histories"

	// DefaultKnowledgeBasePath is the campus knowledge base document.
	DefaultKnowledgeBasePath = "knowledge_base.json"

	// DefaultServeAddr is the dashboard API listen address.
	DefaultServeAddr = ":8080"
)

// Config stores application configuration.
// SECURITY: sensitive fields are explicitly masked in MarshalJSON.
// When adding new sensitive fields, update MarshalJSON.
type Config struct {
	// Assistant configuration
	ModelName    string  `mapstructure:"model_name" json:"model_name"`
	Temperature  float32 `mapstructure:"temperature" json:"temperature"`
	MaxTokens    int     `mapstructure:"max_tokens" json:"max_tokens"`
	Language     string  `mapstructure:"language" json:"language"`
	Mode         string  `mapstructure:"mode" json:"mode"`
	GeminiAPIKey string  `mapstructure:"gemini_api_key" json:"gemini_api_key"` // SENSITIVE: masked in MarshalJSON

	// Local persistence
	HistoryDir        string `mapstructure:"history_dir" json:"history_dir"`
	KnowledgeBasePath string `mapstructure:"knowledge_base_path" json:"knowledge_base_path"`

	// Remote mirror (PostgreSQL). The mirror is best-effort: when disabled
	// or unreachable the rest of the system runs on local files alone.
	MirrorEnabled    bool   `mapstructure:"mirror_enabled" json:"mirror_enabled"`
	PostgresHost     string `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password" json:"postgres_password"` // SENSITIVE: masked in MarshalJSON
	PostgresDBName   string `mapstructure:"postgres_db_name" json:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode" json:"postgres_ssl_mode"`

	// Dashboard API (serve mode)
	ServeAddr  string `mapstructure:"serve_addr" json:"serve_addr"`
	TrustProxy bool   `mapstructure:"trust_proxy" json:"trust_proxy"` // Trust X-Real-IP/X-Forwarded-For (set true behind a reverse proxy)
	RateBurst  int    `mapstructure:"rate_burst" json:"rate_burst"`   // Per-IP rate limiter burst (0 = default)
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".askcampus")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // Also support current directory

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is not an error; defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL, when set, overrides the individual postgres_* values.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("model_name", DefaultModel)
	v.SetDefault("temperature", 0.7)
	v.SetDefault("max_tokens", 2048)
	v.SetDefault("language", "en")
	v.SetDefault("mode", "chat")

	v.SetDefault("history_dir", DefaultHistoryDir)
	v.SetDefault("knowledge_base_path", DefaultKnowledgeBasePath)

	v.SetDefault("mirror_enabled", false)
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "askcampus")
	v.SetDefault("postgres_password", "askcampus_dev_password")
	v.SetDefault("postgres_db_name", "askcampus")
	v.SetDefault("postgres_ssl_mode", "disable")

	v.SetDefault("serve_addr", DefaultServeAddr)
	v.SetDefault("trust_proxy", false)
	v.SetDefault("rate_burst", 0)
}

// bindEnvVariables binds environment overrides explicitly.
// GEMINI_API_KEY keeps its conventional unprefixed name; everything else
// uses the ASKCAMPUS_ prefix.
func bindEnvVariables(v *viper.Viper) {
	// Hardcoded keys cannot fail to bind; a panic here is a bug.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("gemini_api_key", "GEMINI_API_KEY")
	mustBind("model_name", "ASKCAMPUS_MODEL_NAME")
	mustBind("language", "ASKCAMPUS_LANGUAGE")
	mustBind("mode", "ASKCAMPUS_MODE")
	mustBind("history_dir", "ASKCAMPUS_HISTORY_DIR")
	mustBind("knowledge_base_path", "ASKCAMPUS_KNOWLEDGE_BASE")
	mustBind("mirror_enabled", "ASKCAMPUS_MIRROR_ENABLED")
	mustBind("serve_addr", "ASKCAMPUS_SERVE_ADDR")
	mustBind("trust_proxy", "ASKCAMPUS_TRUST_PROXY")
	mustBind("rate_burst", "ASKCAMPUS_RATE_BURST")

	// NOTE: DATABASE_URL is handled separately in parseDatabaseURL because
	// it expands into several postgres_* fields at once.
}

// maskedValue is the placeholder for masked sensitive data. Full-width
// blocks avoid substring matches against real secret content.
const maskedValue = "████████"

// maskSecret masks a secret for safe logging. Secrets of 8 bytes or fewer
// are fully masked; longer ones show the first and last two characters.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with sensitive field masking.
//
// Masked fields: GeminiAPIKey, PostgresPassword.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.GeminiAPIKey = maskSecret(a.GeminiAPIKey)
	a.PostgresPassword = maskSecret(a.PostgresPassword)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
