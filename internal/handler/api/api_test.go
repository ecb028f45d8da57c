// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/olegiv/blog-editor/internal/auth"
	"github.com/olegiv/blog-editor/internal/model"
	"github.com/olegiv/blog-editor/internal/remote"
	"github.com/olegiv/blog-editor/internal/state"
	"github.com/olegiv/blog-editor/internal/store"
	"github.com/olegiv/blog-editor/internal/testutil"
)

func TestWriteFailure(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", model.ValidationErrors{"title": "Title is required"}, http.StatusUnprocessableEntity, "validation_error"},
		{"unauthenticated", auth.ErrUnauthenticated, http.StatusUnauthorized, "unauthorized"},
		{"revoked token", fmt.Errorf("tree: %w", remote.ErrBadCredentials), http.StatusUnauthorized, "unauthorized"},
		{"invalid state", state.ErrInvalidState, http.StatusBadRequest, "bad_request"},
		{"auth failed", fmt.Errorf("%w: bad_verification_code", auth.ErrAuthFailed), http.StatusBadRequest, "bad_request"},
		{"not found", fmt.Errorf("post: %w", store.ErrNotFound), http.StatusNotFound, "not_found"},
		{"already exists", store.ErrAlreadyExists, http.StatusConflict, "already_exists"},
		{"conflict", store.ErrConflict, http.StatusConflict, "conflict"},
		{"deadline", fmt.Errorf("listing: %w", context.DeadlineExceeded), http.StatusServiceUnavailable, "unavailable"},
		{"transient", errors.New("secret upstream detail"), http.StatusInternalServerError, "internal_error"},
	}

	h := NewHandler(Config{}, Deps{Logger: testutil.TestLoggerSilent()})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/posts", nil)

			h.writeFailure(rec, req, "Failed to do things", tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			detail := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, detail.Code)
			assert.NotContains(t, detail.Message, "secret upstream detail")
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, "Bearer", rec.Header().Get("WWW-Authenticate"))
			}
		})
	}
}

func TestWriteFailure_ValidationDetails(t *testing.T) {
	h := NewHandler(Config{}, Deps{Logger: testutil.TestLoggerSilent()})
	rec := httptest.NewRecorder()

	h.writeFailure(rec, httptest.NewRequest(http.MethodPost, "/api/posts", nil), "Failed to create post",
		model.ValidationErrors{"slug": "bad", "date": "bad"})

	detail := decodeError(t, rec)
	assert.Equal(t, map[string]string{"slug": "bad", "date": "bad"}, detail.Details)
}

func TestRepository_MissingCredential(t *testing.T) {
	h := NewHandler(Config{}, Deps{Logger: testutil.TestLoggerSilent()})
	rec := httptest.NewRecorder()

	_, ok := h.repository(rec, httptest.NewRequest(http.MethodGet, "/api/posts", nil))

	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
