// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"log/slog"

	"github.com/olegiv/blog-editor/internal/model"
	"github.com/olegiv/blog-editor/internal/remote"
	"github.com/olegiv/blog-editor/internal/store"
)

// GitHubConnector builds a GitHub client per request from the caller's
// access token. Clients are cheap and never shared between users.
type GitHubConnector struct {
	remote remote.Config
	store  store.Config
	logger *slog.Logger
}

var _ Connector = (*GitHubConnector)(nil)

// NewGitHubConnector creates a connector for one content repository.
func NewGitHubConnector(rc remote.Config, sc store.Config, logger *slog.Logger) *GitHubConnector {
	return &GitHubConnector{remote: rc, store: sc, logger: logger}
}

// Repository returns the document repository as seen with credential.
func (c *GitHubConnector) Repository(ctx context.Context, credential string) (Repository, error) {
	client, err := remote.New(ctx, credential, c.remote)
	if err != nil {
		return nil, err
	}
	return store.NewRepository(client, c.store, c.logger), nil
}

// Identity returns the GitHub account behind credential.
func (c *GitHubConnector) Identity(ctx context.Context, credential string) (*model.Identity, error) {
	client, err := remote.New(ctx, credential, c.remote)
	if err != nil {
		return nil, err
	}
	return client.Identity(ctx)
}
