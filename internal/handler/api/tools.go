// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strings"

	"github.com/olegiv/blog-editor/internal/render"
	"github.com/olegiv/blog-editor/internal/util"
)

// serviceName is reported by Root.
const serviceName = "Blog Editor API"

// docsURL points API consumers at the project documentation.
const docsURL = "https://github.com/olegiv/blog-editor#readme"

// RootResponse describes the service.
type RootResponse struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Docs    string `json:"docs"`
}

// Root handles GET /
func (h *Handler) Root(w http.ResponseWriter, _ *http.Request) {
	v := h.cfg.Version.Version
	if v == "" {
		v = "dev"
	}
	WriteJSON(w, http.StatusOK, RootResponse{Name: serviceName, Version: v, Docs: docsURL})
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// Slugify handles GET /api/slugify?title=
func (h *Handler) Slugify(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if strings.TrimSpace(title) == "" {
		WriteValidationError(w, map[string]string{"title": "Title is required"})
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"slug": util.Slugify(title)})
}

// PreviewRequest is the body of a preview call.
type PreviewRequest struct {
	Content string `json:"content"`
}

// Preview handles POST /api/preview
// Renders Markdown to sanitised HTML without touching the repository.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	var req PreviewRequest
	if err := decodeJSON(w, r, &req); err != nil {
		WriteBadRequest(w, "Invalid JSON body")
		return
	}

	html, err := render.Preview(req.Content)
	if err != nil {
		h.writeFailure(w, r, "Failed to render preview", err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"html": html})
}
