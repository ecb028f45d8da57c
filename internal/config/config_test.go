// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"os"
	"reflect"
	"testing"
	"time"
)

func setEnv(t *testing.T, key, value string) {
	t.Helper()
	if err := os.Setenv(key, value); err != nil {
		t.Fatalf("failed to set %s: %v", key, err)
	}
}

// setRequired clears the environment and sets only the required variables.
func setRequired(t *testing.T) {
	t.Helper()
	os.Clearenv()
	setEnv(t, "GITHUB_CLIENT_ID", "client-id")
	setEnv(t, "GITHUB_CLIENT_SECRET", "client-secret")
	setEnv(t, "GITHUB_REPO_OWNER", "octocat")
	setEnv(t, "GITHUB_REPO_NAME", "blog")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.GitHubRedirectURI != "http://localhost:8000/api/auth/callback" {
		t.Errorf("GitHubRedirectURI = %q", cfg.GitHubRedirectURI)
	}
	if cfg.Branch != "main" {
		t.Errorf("Branch = %q, want %q", cfg.Branch, "main")
	}
	if cfg.ContentPath != "src/content/blog" {
		t.Errorf("ContentPath = %q, want %q", cfg.ContentPath, "src/content/blog")
	}
	if cfg.SecretKey != DefaultSecretKey {
		t.Errorf("SecretKey = %q, want default", cfg.SecretKey)
	}
	if cfg.FrontendURL != "http://localhost:3000" {
		t.Errorf("FrontendURL = %q", cfg.FrontendURL)
	}
	if cfg.ServerHost != "0.0.0.0" {
		t.Errorf("ServerHost = %q, want %q", cfg.ServerHost, "0.0.0.0")
	}
	if cfg.ServerPort != 8000 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8000)
	}
	if cfg.Env != "development" {
		t.Errorf("Env = %q, want %q", cfg.Env, "development")
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("LogLevel, LogFormat = %q, %q, want info, text", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.RedisURL != "" || cfg.UseRedis() {
		t.Errorf("RedisURL = %q, want empty", cfg.RedisURL)
	}
	if cfg.StatePrefix != "blog-editor:" {
		t.Errorf("StatePrefix = %q", cfg.StatePrefix)
	}
	if cfg.RequestTimeout != 30*time.Second {
		t.Errorf("RequestTimeout = %v, want 30s", cfg.RequestTimeout)
	}
	if cfg.MaxUploadSize != 5*1024*1024 {
		t.Errorf("MaxUploadSize = %d, want %d", cfg.MaxUploadSize, 5*1024*1024)
	}
	if cfg.StateSweepSchedule != "*/5 * * * *" {
		t.Errorf("StateSweepSchedule = %q", cfg.StateSweepSchedule)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	setRequired(t)
	setEnv(t, "GITHUB_BRANCH", "drafts")
	setEnv(t, "BLOG_CONTENT_PATH", "/content/posts/")
	setEnv(t, "SERVER_PORT", "9000")
	setEnv(t, "ALLOWED_ORIGINS", "https://a.example,https://b.example")
	setEnv(t, "REDIS_URL", "redis://localhost:6379/0")
	setEnv(t, "REQUEST_TIMEOUT", "5s")
	setEnv(t, "MAX_UPLOAD_SIZE", "1024")
	setEnv(t, "LOG_FORMAT", "json")
	setEnv(t, "ENVIRONMENT", "Staging")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Branch != "drafts" {
		t.Errorf("Branch = %q, want %q", cfg.Branch, "drafts")
	}
	if cfg.ContentPath != "content/posts" {
		t.Errorf("ContentPath = %q, want %q", cfg.ContentPath, "content/posts")
	}
	if cfg.ServerPort != 9000 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 9000)
	}
	if want := []string{"https://a.example", "https://b.example"}; !reflect.DeepEqual(cfg.AllowedOrigins, want) {
		t.Errorf("AllowedOrigins = %v, want %v", cfg.AllowedOrigins, want)
	}
	if !cfg.UseRedis() {
		t.Error("UseRedis() = false, want true")
	}
	if cfg.RequestTimeout != 5*time.Second {
		t.Errorf("RequestTimeout = %v, want 5s", cfg.RequestTimeout)
	}
	if cfg.MaxUploadSize != 1024 {
		t.Errorf("MaxUploadSize = %d, want 1024", cfg.MaxUploadSize)
	}
	if cfg.Env != "staging" {
		t.Errorf("Env = %q, want %q", cfg.Env, "staging")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	for _, key := range []string{"GITHUB_CLIENT_ID", "GITHUB_CLIENT_SECRET", "GITHUB_REPO_OWNER", "GITHUB_REPO_NAME"} {
		t.Run(key, func(t *testing.T) {
			setRequired(t)
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("unset %s: %v", key, err)
			}

			if _, err := Load(); err == nil {
				t.Fatalf("Load() should fail when %s is not set", key)
			}
		})
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port out of range", "SERVER_PORT", "70000"},
		{"zero upload size", "MAX_UPLOAD_SIZE", "0"},
		{"bad frontend url", "FRONTEND_URL", "not a url"},
		{"relative redirect", "GITHUB_REDIRECT_URI", "/api/auth/callback"},
		{"bad schedule", "STATE_SWEEP_SCHEDULE", "sometimes"},
		{"bad log format", "LOG_FORMAT", "xml"},
		{"unparsable timeout", "REQUEST_TIMEOUT", "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			setEnv(t, tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Fatalf("Load() should fail with %s=%q", tt.key, tt.value)
			}
		})
	}
}

func TestLoad_ProductionSecret(t *testing.T) {
	tests := []struct {
		name    string
		secret  string
		wantErr bool
	}{
		{"development default", DefaultSecretKey, true},
		{"short", "short", true},
		{"31_bytes", "1234567890123456789012345678901", true},
		{"known weak", "change-me-to-32-byte-secret-key!", true},
		{"32_bytes", "12345678901234567890123456789012", false},
		{"strong", "Zq8#xT2!mP9$wL4@vN7&kR3*bH6^cJ1%", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			setEnv(t, "ENVIRONMENT", "production")
			setEnv(t, "SECRET_KEY", tt.secret)

			_, err := Load()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoad_DevelopmentAcceptsDefaultSecret(t *testing.T) {
	setRequired(t)
	setEnv(t, "SECRET_KEY", "short")

	if _, err := Load(); err != nil {
		t.Fatalf("Load() error: %v", err)
	}
}

func TestConfig_Environment(t *testing.T) {
	tests := []struct {
		env      string
		wantDev  bool
		wantProd bool
	}{
		{"development", true, false},
		{"production", false, true},
		{"staging", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			cfg := Config{Env: tt.env}
			if got := cfg.IsDevelopment(); got != tt.wantDev {
				t.Errorf("IsDevelopment() = %v, want %v", got, tt.wantDev)
			}
			if got := cfg.IsProduction(); got != tt.wantProd {
				t.Errorf("IsProduction() = %v, want %v", got, tt.wantProd)
			}
		})
	}
}

func TestConfig_ServerAddr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"localhost", 8080, "localhost:8080"},
		{"0.0.0.0", 8000, "0.0.0.0:8000"},
		{"127.0.0.1", 443, "127.0.0.1:443"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			cfg := Config{ServerHost: tt.host, ServerPort: tt.port}
			if got := cfg.ServerAddr(); got != tt.want {
				t.Errorf("ServerAddr() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConfig_Origins(t *testing.T) {
	cfg := Config{
		AllowedOrigins: []string{" https://a.example/ ", "https://b.example", "", "https://a.example"},
		FrontendURL:    "https://b.example/",
	}

	want := []string{"https://a.example", "https://b.example"}
	if got := cfg.Origins(); !reflect.DeepEqual(got, want) {
		t.Errorf("Origins() = %v, want %v", got, want)
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	tests := []struct {
		secret string
		want   bool
	}{
		{"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", false},
		{"aaaaAAAAaaaaAAAAaaaaAAAAaaaaAAAA", false},
		{"aaaaAAAA1111aaaaAAAA1111aaaaAAAA", true},
		{"abc123!@#abc123!@#abc123!@#abc12", true},
	}

	for _, tt := range tests {
		t.Run(tt.secret, func(t *testing.T) {
			if got := hasMinimumEntropy(tt.secret); got != tt.want {
				t.Errorf("hasMinimumEntropy(%q) = %v, want %v", tt.secret, got, tt.want)
			}
		})
	}
}
