// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package remote implements store.Remote on top of the GitHub REST API.
package remote

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/go-github/v66/github"
	"golang.org/x/oauth2"

	"github.com/olegiv/blog-editor/internal/model"
	"github.com/olegiv/blog-editor/internal/store"
)

// ErrBadCredentials indicates GitHub rejected the access token.
var ErrBadCredentials = errors.New("github rejected the access token")

// encodingNone is reported by the contents API for files too large to inline.
const encodingNone = "none"

// Config identifies the repository a client operates on.
type Config struct {
	Owner string
	Repo  string

	// BaseURL overrides the API endpoint. Empty means api.github.com.
	BaseURL string
}

// Client is a store.Remote bound to one repository and one access token.
type Client struct {
	gh    *github.Client
	owner string
	repo  string
}

var _ store.Remote = (*Client)(nil)

// New creates a client that authenticates with token.
func New(ctx context.Context, token string, cfg Config) (*Client, error) {
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token}))
	return NewWithHTTPClient(httpClient, cfg)
}

// NewWithHTTPClient creates a client on top of an already authenticated
// HTTP client.
func NewWithHTTPClient(httpClient *http.Client, cfg Config) (*Client, error) {
	if cfg.Owner == "" || cfg.Repo == "" {
		return nil, errors.New("repository owner and name are required")
	}

	gh := github.NewClient(httpClient)
	if cfg.BaseURL != "" {
		base, err := url.Parse(cfg.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("parsing base URL: %w", err)
		}
		if !strings.HasSuffix(base.Path, "/") {
			base.Path += "/"
		}
		gh.BaseURL = base
	}

	return &Client{gh: gh, owner: cfg.Owner, repo: cfg.Repo}, nil
}

// Identity returns the account that owns the token.
func (c *Client) Identity(ctx context.Context) (*model.Identity, error) {
	user, _, err := c.gh.Users.Get(ctx, "")
	if err != nil {
		return nil, classify(err, false)
	}
	return &model.Identity{
		Login:     user.GetLogin(),
		Name:      user.GetName(),
		AvatarURL: user.GetAvatarURL(),
		Email:     user.GetEmail(),
	}, nil
}

// Tree implements store.Remote. A missing branch is store.ErrNotFound.
func (c *Client) Tree(ctx context.Context, branch string, recursive bool) ([]store.TreeEntry, error) {
	tree, _, err := c.gh.Git.GetTree(ctx, c.owner, c.repo, branch, recursive)
	if err != nil {
		return nil, classify(err, false)
	}

	entries := make([]store.TreeEntry, 0, len(tree.Entries))
	for _, e := range tree.Entries {
		entries = append(entries, store.TreeEntry{
			Path: e.GetPath(),
			SHA:  e.GetSHA(),
			Type: e.GetType(),
		})
	}
	return entries, nil
}

// Blob implements store.Remote.
func (c *Client) Blob(ctx context.Context, sha string) ([]byte, error) {
	data, _, err := c.gh.Git.GetBlobRaw(ctx, c.owner, c.repo, sha)
	if err != nil {
		return nil, classify(err, false)
	}
	return data, nil
}

// File implements store.Remote. Files too large for the contents API are
// read through the blob API.
func (c *Client) File(ctx context.Context, path, branch string) (*store.File, error) {
	file, _, _, err := c.gh.Repositories.GetContents(ctx, c.owner, c.repo, path, &github.RepositoryContentGetOptions{Ref: branch})
	if err != nil {
		return nil, classify(err, false)
	}
	if file == nil {
		return nil, fmt.Errorf("%s is a directory: %w", path, store.ErrNotFound)
	}

	var content []byte
	if file.GetEncoding() == encodingNone {
		content, err = c.Blob(ctx, file.GetSHA())
		if err != nil {
			return nil, err
		}
	} else {
		text, err := file.GetContent()
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		content = []byte(text)
	}

	return &store.File{
		Path:    file.GetPath(),
		Name:    file.GetName(),
		SHA:     file.GetSHA(),
		Type:    file.GetType(),
		Content: content,
	}, nil
}

// Dir implements store.Remote.
func (c *Client) Dir(ctx context.Context, path, branch string) ([]store.File, error) {
	_, dir, _, err := c.gh.Repositories.GetContents(ctx, c.owner, c.repo, path, &github.RepositoryContentGetOptions{Ref: branch})
	if err != nil {
		return nil, classify(err, false)
	}
	if dir == nil {
		return nil, fmt.Errorf("%s is not a directory: %w", path, store.ErrNotFound)
	}

	files := make([]store.File, 0, len(dir))
	for _, entry := range dir {
		files = append(files, store.File{
			Path: entry.GetPath(),
			Name: entry.GetName(),
			SHA:  entry.GetSHA(),
			Type: entry.GetType(),
		})
	}
	return files, nil
}

// CreateFile implements store.Remote. It returns the new blob SHA.
func (c *Client) CreateFile(ctx context.Context, path string, content []byte, branch, message string) (string, error) {
	res, _, err := c.gh.Repositories.CreateFile(ctx, c.owner, c.repo, path, &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: content,
		Branch:  github.String(branch),
	})
	if err != nil {
		return "", classify(err, true)
	}
	return blobSHA(res), nil
}

// UpdateFile implements store.Remote. A stale sha is store.ErrConflict.
func (c *Client) UpdateFile(ctx context.Context, path string, content []byte, sha, branch, message string) (string, error) {
	res, _, err := c.gh.Repositories.UpdateFile(ctx, c.owner, c.repo, path, &github.RepositoryContentFileOptions{
		Message: github.String(message),
		Content: content,
		SHA:     github.String(sha),
		Branch:  github.String(branch),
	})
	if err != nil {
		return "", classify(err, false)
	}
	return blobSHA(res), nil
}

// DeleteFile implements store.Remote.
func (c *Client) DeleteFile(ctx context.Context, path, sha, branch, message string) error {
	_, _, err := c.gh.Repositories.DeleteFile(ctx, c.owner, c.repo, path, &github.RepositoryContentFileOptions{
		Message: github.String(message),
		SHA:     github.String(sha),
		Branch:  github.String(branch),
	})
	if err != nil {
		return classify(err, false)
	}
	return nil
}

func blobSHA(res *github.RepositoryContentResponse) string {
	if res == nil || res.Content == nil {
		return ""
	}
	return res.Content.GetSHA()
}

// classify maps GitHub API failures onto the store error kinds. GitHub
// answers a create over an existing path with 422, so creating marks that
// status as a conflict too.
func classify(err error, creating bool) error {
	var apiErr *github.ErrorResponse
	if !errors.As(err, &apiErr) || apiErr.Response == nil {
		return err
	}

	switch status := apiErr.Response.StatusCode; {
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", store.ErrNotFound, apiErr.Message)
	case status == http.StatusConflict:
		return fmt.Errorf("%w: %s", store.ErrConflict, apiErr.Message)
	case status == http.StatusUnprocessableEntity && creating:
		return fmt.Errorf("%w: %s", store.ErrConflict, apiErr.Message)
	case status == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrBadCredentials, apiErr.Message)
	default:
		return err
	}
}
