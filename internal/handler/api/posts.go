// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/blog-editor/internal/model"
	"github.com/olegiv/blog-editor/internal/store"
)

// ListPosts handles GET /api/posts
// Query parameters:
//   - include_drafts: true (default) or false
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	includeDrafts := true
	if v := r.URL.Query().Get("include_drafts"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			WriteValidationError(w, map[string]string{"include_drafts": "Must be true or false"})
			return
		}
		includeDrafts = b
	}

	repo, ok := h.repository(w, r)
	if !ok {
		return
	}

	posts, err := repo.ListPosts(r.Context(), includeDrafts)
	if err != nil {
		h.writeFailure(w, r, "Failed to fetch posts", err)
		return
	}
	if posts == nil {
		posts = []model.PostSummary{}
	}
	WriteJSON(w, http.StatusOK, model.PostList{Posts: posts, Total: len(posts)})
}

// GetPost handles GET /api/posts/{slug}
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	slug, ok := requireSlug(w, r)
	if !ok {
		return
	}
	repo, ok := h.repository(w, r)
	if !ok {
		return
	}

	post, err := repo.GetPost(r.Context(), slug)
	if err != nil {
		h.writePostFailure(w, r, slug, "Failed to fetch post", err)
		return
	}
	WriteJSON(w, http.StatusOK, post)
}

// CreatePost handles POST /api/posts
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req model.CreatePostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteBadRequest(w, "Invalid JSON body")
		return
	}

	fields, verrs := req.Validate()
	if verrs != nil {
		WriteValidationError(w, verrs)
		return
	}

	repo, ok := h.repository(w, r)
	if !ok {
		return
	}

	post, err := repo.CreatePost(r.Context(), req.Slug, fields)
	if err != nil {
		h.writePostFailure(w, r, req.Slug, "Failed to create post", err)
		return
	}

	h.logger.Info("post created", "slug", post.Slug, "path", post.FilePath)
	WriteJSON(w, http.StatusCreated, post)
}

// UpdatePost handles PUT /api/posts/{slug}
// Fields absent from the body, or null, keep their stored value.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	slug, ok := requireSlug(w, r)
	if !ok {
		return
	}

	var req model.UpdatePostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteBadRequest(w, "Invalid JSON body")
		return
	}

	patch, verrs := req.Validate()
	if verrs != nil {
		WriteValidationError(w, verrs)
		return
	}

	repo, ok := h.repository(w, r)
	if !ok {
		return
	}

	post, err := repo.UpdatePost(r.Context(), slug, patch)
	if err != nil {
		h.writePostFailure(w, r, slug, "Failed to update post", err)
		return
	}

	h.logger.Info("post updated", "slug", slug, "path", post.FilePath)
	WriteJSON(w, http.StatusOK, post)
}

// DeletePost handles DELETE /api/posts/{slug}
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	slug, ok := requireSlug(w, r)
	if !ok {
		return
	}
	repo, ok := h.repository(w, r)
	if !ok {
		return
	}

	if err := repo.DeletePost(r.Context(), slug); err != nil {
		h.writePostFailure(w, r, slug, "Failed to delete post", err)
		return
	}

	h.logger.Info("post deleted", "slug", slug)
	w.WriteHeader(http.StatusNoContent)
}

// requireSlug reads the {slug} URL parameter. A malformed slug cannot name
// an existing post, so it is answered with 404 before any remote call.
func requireSlug(w http.ResponseWriter, r *http.Request) (string, bool) {
	slug := chi.URLParam(r, "slug")
	if !model.IsValidSlug(slug) {
		WriteNotFound(w, "Post not found")
		return "", false
	}
	return slug, true
}

// writePostFailure names the slug in not-found and already-exists responses
// and defers to writeFailure for everything else.
func (h *Handler) writePostFailure(w http.ResponseWriter, r *http.Request, slug, operation string, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		WriteNotFound(w, fmt.Sprintf("Post with slug '%s' not found", slug))
	case errors.Is(err, store.ErrAlreadyExists):
		WriteError(w, http.StatusConflict, "already_exists", fmt.Sprintf("Post with slug '%s' already exists", slug), nil)
	default:
		h.writeFailure(w, r, operation, err)
	}
}
