// Package config loads Clario settings from defaults, an optional YAML file
// and CLARIO_* environment variables, in that order of precedence.
package config

import (
	"fmt"
	"net/mail"
	"net/url"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/clario-app/clario/internal/logging"
)

// ConfigPathEnvVar names the config file when --config is not given.
const ConfigPathEnvVar = "CLARIO_CONFIG"

// Storage backends.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendMemory = "memory"
)

// Config holds all Clario configuration.
type Config struct {
	Storage     StorageConfig     `koanf:"storage"`
	Log         LogConfig         `koanf:"log"`
	Catalog     CatalogConfig     `koanf:"catalog"`
	Suggestions SuggestionsConfig `koanf:"suggestions"`
	Server      ServerConfig      `koanf:"server"`
	SMTP        SMTPConfig        `koanf:"smtp"`
}

// StorageConfig selects where session state lives.
type StorageConfig struct {
	// Backend is sqlite, badger or memory.
	Backend string `koanf:"backend"`

	// Path is the SQLite file. Empty means the default data directory.
	Path string `koanf:"path"`
}

// LogConfig configures the zerolog logger.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// CatalogConfig points at an optional catalog override file.
type CatalogConfig struct {
	Path string `koanf:"path"`
}

// SuggestionsConfig configures the suggestions API client.
type SuggestionsConfig struct {
	APIURL  string        `koanf:"api_url"`
	Timeout time.Duration `koanf:"timeout"`
	Retry   RetryConfig   `koanf:"retry"`
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int           `koanf:"max_attempts"`
	InitialWait time.Duration `koanf:"initial_wait"`
	MaxWait     time.Duration `koanf:"max_wait"`
	Multiplier  float64       `koanf:"multiplier"`
}

// ServerConfig configures the suggestions HTTP server.
type ServerConfig struct {
	Addr       string        `koanf:"addr"`
	RateLimit  int           `koanf:"rate_limit"`
	RateWindow time.Duration `koanf:"rate_window"`
}

// SMTPConfig holds the mail relay used to forward suggestions.
type SMTPConfig struct {
	Host string `koanf:"host"`
	Port int    `koanf:"port"`
	User string `koanf:"user"`
	Pass string `koanf:"pass"`
	To   string `koanf:"to"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Backend: BackendSQLite,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "console",
		},
		Suggestions: SuggestionsConfig{
			APIURL:  "http://localhost:8000",
			Timeout: 10 * time.Second,
			Retry: RetryConfig{
				MaxAttempts: 3,
				InitialWait: 500 * time.Millisecond,
				MaxWait:     5 * time.Second,
				Multiplier:  2.0,
			},
		},
		Server: ServerConfig{
			Addr:       ":8000",
			RateLimit:  10,
			RateWindow: time.Minute,
		},
		SMTP: SMTPConfig{
			Host: "smtp.gmail.com",
			Port: 587,
		},
	}
}

// Load builds the configuration. path may be empty, in which case
// CLARIO_CONFIG is consulted; a missing file is only an error when it was
// named explicitly.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("load defaults: %w", err)
	}

	if path == "" {
		path = os.Getenv(ConfigPathEnvVar)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	// Empty variables count as unset.
	envProvider := env.ProviderWithValue("CLARIO_", ".", func(key, value string) (string, interface{}) {
		if value == "" {
			return "", nil
		}
		return envTransformFunc(key), value
	})
	if err := k.Load(envProvider, nil); err != nil {
		return Config{}, fmt.Errorf("load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envKeys maps CLARIO_* variables (prefix removed, lower-cased) to config
// paths. Variables not listed are ignored.
var envKeys = map[string]string{
	"storage_backend":                "storage.backend",
	"storage_path":                   "storage.path",
	"log_level":                      "log.level",
	"log_format":                     "log.format",
	"catalog_path":                   "catalog.path",
	"suggestions_api_url":            "suggestions.api_url",
	"suggestions_timeout":            "suggestions.timeout",
	"suggestions_retry_max_attempts": "suggestions.retry.max_attempts",
	"suggestions_retry_initial_wait": "suggestions.retry.initial_wait",
	"suggestions_retry_max_wait":     "suggestions.retry.max_wait",
	"suggestions_retry_multiplier":   "suggestions.retry.multiplier",
	"server_addr":                    "server.addr",
	"server_rate_limit":              "server.rate_limit",
	"server_rate_window":             "server.rate_window",
	"smtp_host":                      "smtp.host",
	"smtp_port":                      "smtp.port",
	"smtp_user":                      "smtp.user",
	"smtp_pass":                      "smtp.pass",
	"smtp_to":                        "smtp.to",
}

// envTransformFunc turns CLARIO_SMTP_HOST into smtp.host.
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, "CLARIO_"))
	return envKeys[key]
}

// Validate checks every section and reports all problems at once.
func (c Config) Validate() error {
	var errs []string

	backends := []string{BackendSQLite, BackendBadger, BackendMemory}
	if !slices.Contains(backends, c.Storage.Backend) {
		errs = append(errs, fmt.Sprintf("storage.backend: %q is not one of %s", c.Storage.Backend, strings.Join(backends, ", ")))
	}

	if !logging.ValidLevel(c.Log.Level) {
		errs = append(errs, fmt.Sprintf("log.level: unknown level %q", c.Log.Level))
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		errs = append(errs, fmt.Sprintf("log.format: %q is not json or console", c.Log.Format))
	}

	if u, err := url.Parse(c.Suggestions.APIURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, fmt.Sprintf("suggestions.api_url: %q is not an http(s) URL", c.Suggestions.APIURL))
	}
	if c.Suggestions.Timeout <= 0 {
		errs = append(errs, "suggestions.timeout: must be positive")
	}
	r := c.Suggestions.Retry
	if r.MaxAttempts < 1 {
		errs = append(errs, "suggestions.retry.max_attempts: must be at least 1")
	}
	if r.InitialWait < 0 || r.MaxWait < r.InitialWait {
		errs = append(errs, "suggestions.retry: need 0 <= initial_wait <= max_wait")
	}
	if r.Multiplier < 1 {
		errs = append(errs, "suggestions.retry.multiplier: must be at least 1")
	}

	if c.Server.Addr == "" {
		errs = append(errs, "server.addr: required")
	}
	if c.Server.RateLimit < 1 {
		errs = append(errs, "server.rate_limit: must be at least 1")
	}
	if c.Server.RateWindow <= 0 {
		errs = append(errs, "server.rate_window: must be positive")
	}

	if c.SMTP.Port < 1 || c.SMTP.Port > 65535 {
		errs = append(errs, fmt.Sprintf("smtp.port: %d out of range", c.SMTP.Port))
	}
	if c.SMTP.To != "" {
		if _, err := mail.ParseAddress(c.SMTP.To); err != nil {
			errs = append(errs, fmt.Sprintf("smtp.to: %v", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}

// Logging returns the logger configuration for this config.
func (c Config) Logging() logging.Config {
	return logging.Config{Level: c.Log.Level, Format: c.Log.Format}
}
