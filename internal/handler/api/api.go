// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the REST handlers of the blog editor.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/blog-editor/internal/auth"
	"github.com/olegiv/blog-editor/internal/imaging"
	"github.com/olegiv/blog-editor/internal/model"
	"github.com/olegiv/blog-editor/internal/remote"
	"github.com/olegiv/blog-editor/internal/state"
	"github.com/olegiv/blog-editor/internal/store"
	"github.com/olegiv/blog-editor/internal/version"
)

// maxJSONBody caps JSON request bodies.
const maxJSONBody = 1 << 20

// Repository is the document store the post and image handlers operate on.
type Repository interface {
	ListPosts(ctx context.Context, includeDrafts bool) ([]model.PostSummary, error)
	GetPost(ctx context.Context, slug string) (*model.Post, error)
	CreatePost(ctx context.Context, slug string, fields model.PostFields) (*model.Post, error)
	UpdatePost(ctx context.Context, slug string, patch model.PostPatch) (*model.Post, error)
	DeletePost(ctx context.Context, slug string) error
	UploadImage(ctx context.Context, slug, filename string, data []byte) (*model.ImageRef, error)
	GetImage(ctx context.Context, slug, filename string) ([]byte, error)
}

// Connector opens GitHub access on behalf of one credential.
type Connector interface {
	Repository(ctx context.Context, credential string) (Repository, error)
	Identity(ctx context.Context, credential string) (*model.Identity, error)
}

// Sessions is the login flow state the auth handlers drive.
type Sessions interface {
	CreateHandshake(ctx context.Context) (string, error)
	ConsumeHandshake(ctx context.Context, token string) error
	CreateSession(ctx context.Context, credential string) (string, error)
	DestroySession(ctx context.Context, id string) error
}

// OAuthProvider performs the GitHub authorization code flow.
type OAuthProvider interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (string, error)
}

// ImageOptimizer shrinks uploaded images. It never fails; on any problem it
// hands back the input.
type ImageOptimizer interface {
	Optimize(data []byte, contentType string) imaging.Result
}

// Config holds the HTTP-facing settings of the handlers.
type Config struct {
	FrontendURL   string
	SecureCookies bool
	MaxUploadSize int64
	Version       version.Info
}

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	cfg       Config
	connector Connector
	sessions  Sessions
	oauth     OAuthProvider
	optimizer ImageOptimizer
	logger    *slog.Logger
}

// Deps groups the collaborators of a Handler.
type Deps struct {
	Connector Connector
	Sessions  Sessions
	OAuth     OAuthProvider
	Optimizer ImageOptimizer
	Logger    *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(cfg Config, deps Deps) *Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		cfg:       cfg,
		connector: deps.Connector,
		sessions:  deps.Sessions,
		oauth:     deps.OAuth,
		optimizer: deps.Optimizer,
		logger:    logger,
	}
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, nil)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteUnauthorized writes a 401 Unauthorized response with a Bearer challenge.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("WWW-Authenticate", "Bearer")
	WriteError(w, http.StatusUnauthorized, "unauthorized", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// writeFailure maps err to a response. operation names what failed, as in
// "Failed to update post". Unexpected errors are logged in full and the
// client only sees operation.
func (h *Handler) writeFailure(w http.ResponseWriter, r *http.Request, operation string, err error) {
	var verrs model.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		WriteValidationError(w, verrs)
	case errors.Is(err, auth.ErrUnauthenticated), errors.Is(err, remote.ErrBadCredentials):
		WriteUnauthorized(w, "Not authenticated")
	case errors.Is(err, state.ErrInvalidState):
		WriteBadRequest(w, "Invalid state parameter")
	case errors.Is(err, auth.ErrAuthFailed):
		WriteBadRequest(w, "GitHub rejected the authorization code")
	case errors.Is(err, store.ErrNotFound):
		WriteNotFound(w, "Resource not found")
	case errors.Is(err, store.ErrAlreadyExists):
		WriteError(w, http.StatusConflict, "already_exists", "Resource already exists", nil)
	case errors.Is(err, store.ErrConflict):
		WriteError(w, http.StatusConflict, "conflict", "The post was changed by someone else; reload and try again", nil)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		h.logger.Warn(operation+": timed out", "error", err, "request_id", chimw.GetReqID(r.Context()))
		WriteError(w, http.StatusServiceUnavailable, "unavailable", "GitHub did not respond in time", nil)
	default:
		h.logger.Error(operation, "error", err, "path", r.URL.Path, "request_id", chimw.GetReqID(r.Context()))
		WriteError(w, http.StatusInternalServerError, "internal_error", operation+". Please try again later.", nil)
	}
}

// repository opens the caller's repository. It writes the error response
// and returns false on failure.
func (h *Handler) repository(w http.ResponseWriter, r *http.Request) (Repository, bool) {
	credential, ok := auth.CredentialFrom(r.Context())
	if !ok {
		WriteUnauthorized(w, "Not authenticated")
		return nil, false
	}
	repo, err := h.connector.Repository(r.Context(), credential)
	if err != nil {
		h.writeFailure(w, r, "Failed to connect to GitHub", err)
		return nil, false
	}
	return repo, true
}

// decodeJSON decodes a size-limited JSON body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	return json.NewDecoder(r.Body).Decode(v)
}
