// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func newTestProvider(t *testing.T, handler http.HandlerFunc) *GitHubProvider {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewGitHubProvider(ProviderConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:8000/api/auth/callback",
		Endpoint: oauth2.Endpoint{
			AuthURL:   srv.URL + "/login/oauth/authorize",
			TokenURL:  srv.URL + "/login/oauth/access_token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	})
}

func TestAuthCodeURL(t *testing.T) {
	p := NewGitHubProvider(ProviderConfig{
		ClientID:    "client-id",
		RedirectURL: "http://localhost:8000/api/auth/callback",
	})

	u, err := url.Parse(p.AuthCodeURL("state-123"))
	require.NoError(t, err)
	assert.Equal(t, "github.com", u.Host)

	q := u.Query()
	assert.Equal(t, "client-id", q.Get("client_id"))
	assert.Equal(t, "state-123", q.Get("state"))
	assert.Equal(t, "repo read:user", q.Get("scope"))
	assert.Equal(t, "http://localhost:8000/api/auth/callback", q.Get("redirect_uri"))
}

func TestExchange(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "good-code", r.PostForm.Get("code"))
		assert.Equal(t, "client-id", r.PostForm.Get("client_id"))
		assert.Equal(t, "client-secret", r.PostForm.Get("client_secret"))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access_token": "gho_abc",
			"token_type":   "bearer",
			"scope":        "repo,read:user",
		})
	})

	token, err := p.Exchange(context.Background(), "good-code")
	require.NoError(t, err)
	assert.Equal(t, "gho_abc", token)
}

func TestExchange_Rejected(t *testing.T) {
	p := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_ = json.NewEncoder(w).Encode(map[string]string{
			"error":             "bad_verification_code",
			"error_description": "The code passed is incorrect or expired.",
		})
	})

	_, err := p.Exchange(context.Background(), "stale-code")
	assert.ErrorIs(t, err, ErrAuthFailed)
}

func TestExchange_Unreachable(t *testing.T) {
	p := NewGitHubProvider(ProviderConfig{
		ClientID: "client-id",
		Endpoint: oauth2.Endpoint{
			AuthURL:  "http://127.0.0.1:1/authorize",
			TokenURL: "http://127.0.0.1:1/token",
		},
	})

	_, err := p.Exchange(context.Background(), "code")
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrAuthFailed), "transport failure reported as auth failure: %v", err)
}
