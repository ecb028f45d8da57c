// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net/http"
	"net/url"

	"filippo.io/csrf/gorilla"
)

// CSRFConfig holds configuration for CSRF protection.
// filippo.io/csrf/gorilla checks Fetch metadata and Origin headers, so no
// token has to travel with API requests.
type CSRFConfig struct {
	// AuthKey is kept for API compatibility with gorilla/csrf and is unused
	// by the Fetch metadata implementation.
	AuthKey []byte

	// ErrorHandler is called when CSRF validation fails.
	ErrorHandler http.Handler

	// TrustedOrigins are hosts (without scheme) allowed to make
	// cross-origin state-changing requests.
	TrustedOrigins []string
}

// NewCSRFConfig trusts the hosts of the given origin URLs. Entries that are
// not absolute URLs are ignored.
func NewCSRFConfig(authKey []byte, origins []string) CSRFConfig {
	cfg := CSRFConfig{AuthKey: authKey}
	seen := make(map[string]bool)
	for _, origin := range origins {
		u, err := url.Parse(origin)
		if err != nil || u.Host == "" || seen[u.Host] {
			continue
		}
		seen[u.Host] = true
		cfg.TrustedOrigins = append(cfg.TrustedOrigins, u.Host)
	}
	return cfg
}

// CSRF returns a middleware that rejects cross-site state-changing requests
// from browsers that are not on the trusted list.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	var opts []csrf.Option

	if cfg.ErrorHandler != nil {
		opts = append(opts, csrf.ErrorHandler(cfg.ErrorHandler))
	} else {
		opts = append(opts, csrf.ErrorHandler(http.HandlerFunc(csrfErrorHandler)))
	}

	if len(cfg.TrustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(cfg.TrustedOrigins))
	}

	return csrf.Protect(cfg.AuthKey, opts...)
}

// csrfErrorHandler handles CSRF validation failures.
func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	reason := csrf.FailureReason(r)
	reasonStr := "unknown"
	if reason != nil {
		reasonStr = reason.Error()
	}
	slog.Warn("CSRF validation failed",
		"reason", reasonStr,
		"method", r.Method,
		"path", r.URL.Path,
		"origin", r.Header.Get("Origin"),
		"sec_fetch_site", r.Header.Get("Sec-Fetch-Site"),
	)
	writeError(w, http.StatusForbidden, "forbidden", "Cross-site request rejected")
}
