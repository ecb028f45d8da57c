// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/olegiv/blog-editor/internal/auth"
)

// SessionCookieName is the cookie carrying the session identifier.
const SessionCookieName = "session_id"

// Authenticator resolves a session identifier to a credential.
type Authenticator interface {
	Authenticate(ctx context.Context, sessionID string) (string, error)
}

// RequireSession rejects requests without a live session and stores the
// caller's credential in the request context for downstream handlers.
func RequireSession(gate Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sessionID string
			if c, err := r.Cookie(SessionCookieName); err == nil {
				sessionID = c.Value
			}

			credential, err := gate.Authenticate(r.Context(), sessionID)
			if err != nil {
				if !errors.Is(err, auth.ErrUnauthenticated) {
					logger.Error("session lookup failed", "error", err, "path", r.URL.Path)
					writeError(w, http.StatusInternalServerError, "internal_error", "An internal error occurred")
					return
				}
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeError(w, http.StatusUnauthorized, "unauthorized", "Not authenticated")
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithCredential(r.Context(), credential)))
		})
	}
}
