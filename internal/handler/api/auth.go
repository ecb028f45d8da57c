// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/mileusna/useragent"

	"github.com/olegiv/blog-editor/internal/auth"
	"github.com/olegiv/blog-editor/internal/middleware"
	"github.com/olegiv/blog-editor/internal/state"
)

// Login handles GET /api/auth/login.
// Issues a handshake token and redirects to the GitHub consent page.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	token, err := h.sessions.CreateHandshake(r.Context())
	if err != nil {
		h.writeFailure(w, r, "Failed to start login", err)
		return
	}
	http.Redirect(w, r, h.oauth.AuthCodeURL(token), http.StatusFound)
}

// Callback handles GET /api/auth/callback.
// Redeems the handshake token, exchanges the code for an access token,
// opens a session and sends the browser back to the frontend.
func (h *Handler) Callback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	code, token := q.Get("code"), q.Get("state")
	if code == "" || token == "" {
		WriteBadRequest(w, "Missing code or state parameter")
		return
	}

	if err := h.sessions.ConsumeHandshake(ctx, token); err != nil {
		h.writeFailure(w, r, "Failed to verify login state", err)
		return
	}

	accessToken, err := h.oauth.Exchange(ctx, code)
	if err != nil {
		h.writeFailure(w, r, "Failed to exchange code for token", err)
		return
	}

	sessionID, err := h.sessions.CreateSession(ctx, accessToken)
	if err != nil {
		h.writeFailure(w, r, "Failed to create session", err)
		return
	}

	ua := useragent.Parse(r.UserAgent())
	h.logger.Info("user signed in",
		"browser", ua.Name,
		"os", ua.OS,
		"device", deviceType(ua),
		"ip", r.RemoteAddr,
	)

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(state.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	http.Redirect(w, r, h.cfg.FrontendURL, http.StatusFound)
}

// Me handles GET /api/auth/me.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	credential, ok := auth.CredentialFrom(r.Context())
	if !ok {
		WriteUnauthorized(w, "Not authenticated")
		return
	}

	identity, err := h.connector.Identity(r.Context(), credential)
	if err != nil {
		h.writeFailure(w, r, "Failed to get user info", err)
		return
	}
	WriteJSON(w, http.StatusOK, identity)
}

// Logout handles POST /api/auth/logout.
// Always clears the cookie, even when the session is already gone.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(middleware.SessionCookieName); err == nil && c.Value != "" {
		if err := h.sessions.DestroySession(r.Context(), c.Value); err != nil {
			h.logger.Warn("failed to destroy session", "error", err)
		}
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cfg.SecureCookies,
		SameSite: http.SameSiteStrictMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func deviceType(ua useragent.UserAgent) string {
	switch {
	case ua.Bot:
		return "bot"
	case ua.Tablet:
		return "tablet"
	case ua.Mobile:
		return "mobile"
	case ua.Desktop:
		return "desktop"
	default:
		return "unknown"
	}
}
