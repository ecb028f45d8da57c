// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
)

// Scopes requested from GitHub: repository contents and the user profile.
var Scopes = []string{"repo", "read:user"}

// ProviderConfig configures the GitHub OAuth application.
type ProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string

	// Endpoint overrides the GitHub endpoints. Zero means github.com.
	Endpoint oauth2.Endpoint
}

// GitHubProvider performs the authorization code flow against GitHub.
type GitHubProvider struct {
	oauth *oauth2.Config
}

// NewGitHubProvider creates a provider for the configured OAuth application.
func NewGitHubProvider(cfg ProviderConfig) *GitHubProvider {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" && endpoint.TokenURL == "" {
		endpoint = github.Endpoint
	}

	return &GitHubProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       Scopes,
			Endpoint:     endpoint,
		},
	}
}

// AuthCodeURL returns the GitHub authorization URL carrying state.
func (p *GitHubProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for an access token. A code GitHub
// rejects yields ErrAuthFailed; network and server failures are returned
// wrapped.
func (p *GitHubProvider) Exchange(ctx context.Context, code string) (string, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return "", fmt.Errorf("%w: %s", ErrAuthFailed, retrieveErr.ErrorCode)
		}
		return "", fmt.Errorf("exchanging code: %w", err)
	}
	return token.AccessToken, nil
}
