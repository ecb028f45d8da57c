// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/olegiv/blog-editor/internal/scheduler"
)

// DefaultSecretKey is the development fallback for SECRET_KEY.
const DefaultSecretKey = "dev-secret-key-change-in-production"

// knownWeakSecrets contains default/example secrets that must be rejected in production.
var knownWeakSecrets = []string{
	DefaultSecretKey,
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// GitHub OAuth application
	GitHubClientID     string `env:"GITHUB_CLIENT_ID,required"`
	GitHubClientSecret string `env:"GITHUB_CLIENT_SECRET,required"`
	GitHubRedirectURI  string `env:"GITHUB_REDIRECT_URI" envDefault:"http://localhost:8000/api/auth/callback"`

	// Content repository
	RepoOwner   string `env:"GITHUB_REPO_OWNER,required"`
	RepoName    string `env:"GITHUB_REPO_NAME,required"`
	Branch      string `env:"GITHUB_BRANCH" envDefault:"main"`
	ContentPath string `env:"BLOG_CONTENT_PATH" envDefault:"src/content/blog"`

	SecretKey      string   `env:"SECRET_KEY" envDefault:"dev-secret-key-change-in-production"`
	FrontendURL    string   `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	Env            string   `env:"ENVIRONMENT" envDefault:"development"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" envDefault:"http://localhost:3000" envSeparator:","`

	ServerHost string `env:"SERVER_HOST" envDefault:"0.0.0.0"`
	ServerPort int    `env:"SERVER_PORT" envDefault:"8000"`
	LogLevel   string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat  string `env:"LOG_FORMAT" envDefault:"text"`

	// State store
	RedisURL           string `env:"REDIS_URL"`                               // Optional; memory store when empty
	StatePrefix        string `env:"STATE_PREFIX" envDefault:"blog-editor:"` // Redis key prefix
	StateSweepSchedule string `env:"STATE_SWEEP_SCHEDULE" envDefault:"*/5 * * * *"`

	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`
	MaxUploadSize  int64         `env:"MAX_UPLOAD_SIZE" envDefault:"5242880"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true when ENVIRONMENT is production.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedis returns true if the Redis state store is configured.
func (c Config) UseRedis() bool {
	return c.RedisURL != ""
}

// Origins returns the CORS allow-list: the configured origins plus the
// frontend, trimmed and without duplicates.
func (c Config) Origins() []string {
	seen := make(map[string]bool)
	var out []string
	for _, o := range append(append([]string{}, c.AllowedOrigins...), c.FrontendURL) {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "" || seen[o] {
			continue
		}
		seen[o] = true
		out = append(out, o)
	}
	return out
}

// MinSecretKeyLength is the minimum SECRET_KEY length accepted in production.
const MinSecretKeyLength = 32

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	cfg.ContentPath = strings.Trim(cfg.ContentPath, "/")
	cfg.Env = strings.ToLower(strings.TrimSpace(cfg.Env))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values env tags cannot express.
func (c *Config) Validate() error {
	var errs []error

	if c.ServerPort < 1 || c.ServerPort > 65535 {
		errs = append(errs, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.ServerPort))
	}
	if c.MaxUploadSize <= 0 {
		errs = append(errs, fmt.Errorf("MAX_UPLOAD_SIZE must be positive, got %d", c.MaxUploadSize))
	}
	if c.RequestTimeout <= 0 {
		errs = append(errs, fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.RequestTimeout))
	}
	if err := checkURL("FRONTEND_URL", c.FrontendURL); err != nil {
		errs = append(errs, err)
	}
	if err := checkURL("GITHUB_REDIRECT_URI", c.GitHubRedirectURI); err != nil {
		errs = append(errs, err)
	}
	if err := scheduler.ValidateSchedule(c.StateSweepSchedule); err != nil {
		errs = append(errs, fmt.Errorf("STATE_SWEEP_SCHEDULE: %w", err))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat))
	}

	if err := c.checkSecret(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// checkSecret enforces a strong SECRET_KEY in production and only warns elsewhere.
func (c *Config) checkSecret() error {
	if !c.IsProduction() {
		if c.SecretKey == DefaultSecretKey {
			slog.Warn("SECRET_KEY uses the development default; set a random value before deploying")
		}
		return nil
	}

	if len(c.SecretKey) < MinSecretKeyLength {
		return fmt.Errorf("SECRET_KEY must be at least %d bytes long in production, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSecretKeyLength, len(c.SecretKey))
	}
	for _, weak := range knownWeakSecrets {
		if c.SecretKey == weak {
			return fmt.Errorf("SECRET_KEY is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}
	if !hasMinimumEntropy(c.SecretKey) {
		slog.Warn("SECRET_KEY has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}
	return nil
}

func checkURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", name, raw)
	}
	return nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
