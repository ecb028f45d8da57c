// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"strconv"
	"strings"
)

const (
	// apiContentSecurityPolicy forbids everything: responses are JSON or raw
	// image bytes and are never rendered as documents.
	apiContentSecurityPolicy = "default-src 'none'; img-src 'self' data:; base-uri 'none'; form-action 'none'; frame-ancestors 'none'"

	apiPermissionsPolicy = "camera=(), geolocation=(), microphone=(), payment=(), browsing-topics=()"

	hstsOneYear = 31536000
)

// SecurityHeadersConfig holds configuration for security headers.
type SecurityHeadersConfig struct {
	ContentSecurityPolicy string
	PermissionsPolicy     string
	ReferrerPolicy        string

	// HSTSMaxAge is the Strict-Transport-Security max-age in seconds.
	// Zero disables HSTS.
	HSTSMaxAge            int
	HSTSIncludeSubDomains bool

	// ExcludePaths are path prefixes that skip security headers.
	ExcludePaths []string
}

// DefaultSecurityHeadersConfig returns the headers of the JSON API. HSTS is
// only sent outside development, where the API runs behind TLS.
func DefaultSecurityHeadersConfig(isDev bool) SecurityHeadersConfig {
	cfg := SecurityHeadersConfig{
		ContentSecurityPolicy: apiContentSecurityPolicy,
		PermissionsPolicy:     apiPermissionsPolicy,
		ReferrerPolicy:        "no-referrer",
	}
	if !isDev {
		cfg.HSTSMaxAge = hstsOneYear
		cfg.HSTSIncludeSubDomains = true
	}
	return cfg
}

// hstsValue renders the Strict-Transport-Security header, or "" when disabled.
func (c SecurityHeadersConfig) hstsValue() string {
	if c.HSTSMaxAge <= 0 {
		return ""
	}
	v := "max-age=" + strconv.Itoa(c.HSTSMaxAge)
	if c.HSTSIncludeSubDomains {
		v += "; includeSubDomains"
	}
	return v
}

// SecurityHeaders returns a middleware that adds security headers to responses.
func SecurityHeaders(cfg SecurityHeadersConfig) func(http.Handler) http.Handler {
	static := http.Header{}
	static.Set("X-Content-Type-Options", "nosniff")
	static.Set("X-Frame-Options", "DENY")
	if cfg.ContentSecurityPolicy != "" {
		static.Set("Content-Security-Policy", cfg.ContentSecurityPolicy)
	}
	if cfg.ReferrerPolicy != "" {
		static.Set("Referrer-Policy", cfg.ReferrerPolicy)
	}
	if cfg.PermissionsPolicy != "" {
		static.Set("Permissions-Policy", cfg.PermissionsPolicy)
	}
	if hsts := cfg.hstsValue(); hsts != "" {
		static.Set("Strict-Transport-Security", hsts)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, prefix := range cfg.ExcludePaths {
				if strings.HasPrefix(r.URL.Path, prefix) {
					next.ServeHTTP(w, r)
					return
				}
			}

			h := w.Header()
			for k, v := range static {
				h.Set(k, v[0])
			}
			next.ServeHTTP(w, r)
		})
	}
}
