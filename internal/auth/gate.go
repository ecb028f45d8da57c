// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth resolves callers to their delegated GitHub credential and
// drives the OAuth handshake with GitHub.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/olegiv/blog-editor/internal/state"
)

// Error represents an error type for authentication.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrUnauthenticated indicates a missing, unknown or expired session.
	ErrUnauthenticated Error = "not authenticated"

	// ErrAuthFailed indicates GitHub refused the authorization code.
	ErrAuthFailed Error = "github authorization failed"
)

// SessionResolver looks up the credential stored for a session.
type SessionResolver interface {
	ResolveSession(ctx context.Context, sessionID string) (string, error)
}

// Gate turns a session identifier into the credential that repository
// operations run with.
type Gate struct {
	sessions SessionResolver
}

// NewGate creates a gate over the given session resolver.
func NewGate(sessions SessionResolver) *Gate {
	return &Gate{sessions: sessions}
}

// Authenticate returns the credential for sessionID. It fails with
// ErrUnauthenticated when sessionID is empty or does not resolve. Backend
// failures are returned as they are.
func (g *Gate) Authenticate(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", ErrUnauthenticated
	}

	credential, err := g.sessions.ResolveSession(ctx, sessionID)
	if errors.Is(err, state.ErrMissing) {
		return "", ErrUnauthenticated
	}
	if err != nil {
		return "", fmt.Errorf("resolving session: %w", err)
	}
	return credential, nil
}

type contextKey struct{}

// WithCredential returns a copy of ctx carrying credential.
func WithCredential(ctx context.Context, credential string) context.Context {
	return context.WithValue(ctx, contextKey{}, credential)
}

// CredentialFrom returns the credential stored by WithCredential.
func CredentialFrom(ctx context.Context) (string, bool) {
	credential, ok := ctx.Value(contextKey{}).(string)
	return credential, ok && credential != ""
}
