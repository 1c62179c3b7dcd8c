// Package config loads innkeeper configuration from config.yaml and INNKEEPER_
// environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/tjfontaine/innkeeper/internal/archive"
	"github.com/tjfontaine/innkeeper/internal/provider"
	"github.com/tjfontaine/innkeeper/internal/ratelimit"
)

// EnvPrefix marks environment variables read as configuration. A double underscore
// separates nesting levels: INNKEEPER_SERVER__PORT sets server.port.
const EnvPrefix = "INNKEEPER_"

// DefaultPath is read when no config file is named.
const DefaultPath = "config.yaml"

type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Log       LogConfig       `koanf:"log"`
	Storage   StorageConfig   `koanf:"storage"`
	Auth      AuthConfig      `koanf:"auth"`
	AI        AIConfig        `koanf:"ai"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Archive   archive.Config  `koanf:"archive"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

type ServerConfig struct {
	Port                  int           `koanf:"port"`
	RequestTimeout        time.Duration `koanf:"request_timeout"`
	SecureCookies         bool          `koanf:"secure_cookies"`
	ContentSecurityPolicy string        `koanf:"content_security_policy"`
	// ExpireInterval is how often stale drafts and sessions are swept.
	ExpireInterval time.Duration `koanf:"expire_interval"`
}

type LogConfig struct {
	Level string `koanf:"level"` // debug, info, warn, error
}

type StorageConfig struct {
	Driver string `koanf:"driver"` // sqlite, postgres
	DSN    string `koanf:"dsn"`
}

type AuthConfig struct {
	SessionTTL       time.Duration `koanf:"session_ttl"`
	ImpersonationTTL time.Duration `koanf:"impersonation_ttl"`
	DraftTTL         time.Duration `koanf:"draft_ttl"`
	// SigningKey signs impersonation cookies. At least 32 bytes.
	SigningKey string `koanf:"signing_key"`
}

// AIConfig configures the front-desk assistant. The assistant is off when
// Provider.Type is empty.
type AIConfig struct {
	Provider           provider.Config `koanf:"provider"`
	Model              string          `koanf:"model"`
	Temperature        *float32        `koanf:"temperature"`
	MaxTokens          int             `koanf:"max_tokens"`
	SystemPrompt       string          `koanf:"system_prompt"`
	MaxSteps           int             `koanf:"max_steps"`
	HistoryTokenBudget int             `koanf:"history_token_budget"`
}

// Enabled reports whether a model provider is configured.
func (c AIConfig) Enabled() bool {
	return c.Provider.Type != ""
}

// RateLimitConfig sets per-client login limits and per-staff chat limits. Both share
// RedisURL; without it counters are kept in process memory.
type RateLimitConfig struct {
	RedisURL string           `koanf:"redis_url"`
	Login    ratelimit.Config `koanf:"login"`
	Chat     ratelimit.Config `koanf:"chat"`
}

// LoginLimiter returns the login limit with the shared Redis URL applied.
func (c RateLimitConfig) LoginLimiter() ratelimit.Config {
	cfg := c.Login
	cfg.RedisURL = c.RedisURL
	return cfg
}

// ChatLimiter returns the chat limit with the shared Redis URL applied.
func (c RateLimitConfig) ChatLimiter() ratelimit.Config {
	cfg := c.Chat
	cfg.RedisURL = c.RedisURL
	return cfg
}

type TelemetryConfig struct {
	Tracing bool `koanf:"tracing"`
}

var defaults = map[string]any{
	"server.port":               8080,
	"server.request_timeout":    "60s",
	"server.expire_interval":    "1m",
	"log.level":                 "info",
	"storage.driver":            "sqlite",
	"storage.dsn":               "innkeeper.db",
	"auth.session_ttl":          "12h",
	"auth.impersonation_ttl":    "1h",
	"auth.draft_ttl":            "15m",
	"ai.model":                  "gpt-4o-mini",
	"ai.max_tokens":             1024,
	"ai.max_steps":              6,
	"ai.history_token_budget":   6000,
	"rate_limit.login.requests": 10,
	"rate_limit.login.window":   "1m",
	"rate_limit.chat.requests":  30,
	"rate_limit.chat.window":    "1m",
	"archive.prefix":            "exports/",
	"archive.region":            "us-east-1",
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Load reads path (DefaultPath when empty), then INNKEEPER_ variables, then fills in
// defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath
	}
	k := koanf.New(".")

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	// Environment variables override the file.
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	for key, v := range defaults {
		if !k.Exists(key) {
			if err := k.Set(key, v); err != nil {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// Secrets may reference the environment as ${VAR}.
	for _, s := range []*string{
		&cfg.Storage.DSN,
		&cfg.Auth.SigningKey,
		&cfg.AI.Provider.APIKey,
		&cfg.AI.Provider.BaseURL,
		&cfg.RateLimit.RedisURL,
		&cfg.Archive.AccessKey,
		&cfg.Archive.SecretKey,
	} {
		*s = substituteEnvVars(*s)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	switch c.Storage.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("storage.driver %q is not supported", c.Storage.Driver)
	}
	if c.Storage.DSN == "" {
		return errors.New("storage.dsn is required")
	}
	if c.Auth.SigningKey != "" && len(c.Auth.SigningKey) < 32 {
		return errors.New("auth.signing_key must be at least 32 bytes")
	}
	if c.Auth.SessionTTL <= 0 {
		return errors.New("auth.session_ttl must be positive")
	}
	if c.AI.Enabled() && c.AI.Model == "" {
		return errors.New("ai.model is required when ai.provider is set")
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level)
	}
	return nil
}

func substituteEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := envVarPattern.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}
