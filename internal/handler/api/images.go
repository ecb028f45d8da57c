// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/blog-editor/internal/imaging"
	"github.com/olegiv/blog-editor/internal/model"
	"github.com/olegiv/blog-editor/internal/store"
	"github.com/olegiv/blog-editor/internal/util"
)

// multipartOverhead is the allowance for multipart framing on top of the
// file size limit.
const multipartOverhead = 1 << 20

// imageCacheControl lets browsers reuse proxied images for an hour.
const imageCacheControl = "public, max-age=3600"

// UploadResponse is returned after a successful image upload.
type UploadResponse struct {
	Success bool `json:"success"`
	*model.ImageRef
}

// UploadImage handles POST /api/images/upload/{slug}
// Accepts multipart/form-data with the image in the "file" field.
func (h *Handler) UploadImage(w http.ResponseWriter, r *http.Request) {
	slug, ok := requireSlug(w, r)
	if !ok {
		return
	}

	maxSize := h.cfg.MaxUploadSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeTooLarge(w)
			return
		}
		WriteBadRequest(w, "Failed to parse multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteBadRequest(w, "No file provided. Use the 'file' field")
		return
	}
	defer func() { _ = file.Close() }()

	if header.Size > maxSize {
		h.writeTooLarge(w)
		return
	}
	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		WriteBadRequest(w, "Failed to read uploaded file")
		return
	}
	if int64(len(data)) > maxSize {
		h.writeTooLarge(w)
		return
	}

	contentType := declaredType(header.Header.Get("Content-Type"))
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = imaging.DetectContentType(data)
	}
	if !model.IsSupportedImageType(contentType) {
		WriteBadRequest(w, "Invalid file type. Allowed: "+strings.Join(model.SupportedImageTypes(), ", "))
		return
	}

	repo, ok := h.repository(w, r)
	if !ok {
		return
	}

	optimized := h.optimizer.Optimize(data, contentType)
	filename := util.ImageFilename(header.Filename, optimized.Extension)

	ref, err := repo.UploadImage(r.Context(), slug, filename, optimized.Data)
	if err != nil {
		h.writeFailure(w, r, "Failed to upload image", err)
		return
	}

	h.logger.Info("image uploaded",
		"slug", slug,
		"filename", filename,
		"original_size", len(data),
		"stored_size", len(optimized.Data),
	)
	WriteJSON(w, http.StatusOK, UploadResponse{Success: true, ImageRef: ref})
}

// ProxyImage handles GET /api/images/proxy/{slug}/{filename}
// Streams an image stored next to a post so the editor can preview it.
func (h *Handler) ProxyImage(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if !model.IsValidSlug(slug) {
		WriteNotFound(w, "Image not found")
		return
	}
	filename := chi.URLParam(r, "filename")
	if !util.ValidImageFilename(filename) {
		WriteBadRequest(w, "Invalid filename")
		return
	}

	repo, ok := h.repository(w, r)
	if !ok {
		return
	}

	data, err := repo.GetImage(r.Context(), slug, filename)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			WriteNotFound(w, "Image not found")
			return
		}
		h.writeFailure(w, r, "Failed to fetch image", err)
		return
	}

	contentType, _ := model.ContentTypeForFilename(filename)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Cache-Control", imageCacheControl)
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *Handler) writeTooLarge(w http.ResponseWriter) {
	WriteError(w, http.StatusRequestEntityTooLarge, "payload_too_large",
		fmt.Sprintf("File too large. Maximum size: %s", formatSize(h.cfg.MaxUploadSize)), nil)
}

// declaredType strips parameters from a part's Content-Type.
func declaredType(header string) string {
	if header == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	return strings.ToLower(mediaType)
}

func formatSize(n int64) string {
	const mb = 1 << 20
	if n >= mb && n%mb == 0 {
		return fmt.Sprintf("%dMB", n/mb)
	}
	return fmt.Sprintf("%d bytes", n)
}
