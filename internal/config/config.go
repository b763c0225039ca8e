// Package config loads application configuration from environment variables.
package config

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v10"
)

// secretKeyLen is the AES-256 key size in bytes.
const secretKeyLen = 32

// Config holds the application configuration loaded from environment variables.
type Config struct {
	ListenAddr string `env:"GLBT_LISTEN_ADDR" envDefault:"127.0.0.1:8080"`
	DBPath     string `env:"GLBT_DB_PATH" envDefault:"glbt.db"`

	// SecretKey is the hex-encoded AES-256 key used to encrypt the persisted
	// session. Without it the session is not remembered across restarts.
	SecretKey string `env:"GLBT_SECRET_KEY"`

	// GitLabURL and GitLabToken bootstrap a session when none is persisted.
	GitLabURL   string `env:"GLBT_GITLAB_URL"`
	GitLabToken string `env:"GLBT_GITLAB_TOKEN"`

	LogLevel  string `env:"GLBT_LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"GLBT_LOG_FORMAT" envDefault:"text"`

	BulkConcurrency int `env:"GLBT_BULK_CONCURRENCY" envDefault:"4"`
}

// Load reads configuration from environment variables and returns a validated
// Config. Every variable is optional.
func Load() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}

	if cfg.SecretKey != "" {
		if _, err := cfg.EncryptionKey(); err != nil {
			return nil, err
		}
	}
	if cfg.BulkConcurrency < 1 {
		return nil, fmt.Errorf("GLBT_BULK_CONCURRENCY must be at least 1, got %d", cfg.BulkConcurrency)
	}
	switch cfg.LogFormat {
	case "text", "json":
	default:
		return nil, fmt.Errorf("GLBT_LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	return &cfg, nil
}

// HasGitLabCredentials returns true when both bootstrap credentials are set.
func (c *Config) HasGitLabCredentials() bool {
	return c.GitLabURL != "" && c.GitLabToken != ""
}

// EncryptionKey decodes SecretKey. It returns (nil, nil) when no key is set.
func (c *Config) EncryptionKey() ([]byte, error) {
	if c.SecretKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("GLBT_SECRET_KEY is not valid hex: %w", err)
	}
	if len(key) != secretKeyLen {
		return nil, fmt.Errorf("GLBT_SECRET_KEY must be %d hex characters, got %d", secretKeyLen*2, len(c.SecretKey))
	}
	return key, nil
}

// ParseLogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) ParseLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
