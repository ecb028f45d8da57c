// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package state

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"
)

const (
	// HandshakeTTL bounds the time between login initiation and callback.
	HandshakeTTL = 10 * time.Minute

	// SessionTTL is the lifetime of an authenticated session.
	SessionTTL = 7 * 24 * time.Hour

	// tokenBytes is the entropy of generated state tokens and session ids.
	tokenBytes = 32
)

// Manager exposes the login flow operations over two independent key spaces.
type Manager struct {
	handshakes Store
	sessions   Store
	newToken   func() (string, error)
}

// NewManager creates a manager over the given handshake and session stores.
func NewManager(handshakes, sessions Store) *Manager {
	return &Manager{
		handshakes: handshakes,
		sessions:   sessions,
		newToken:   NewToken,
	}
}

// NewMemoryManager creates a manager backed by two in-memory stores.
func NewMemoryManager() *Manager {
	return NewManager(NewMemoryStore(), NewMemoryStore())
}

// CreateHandshake issues a fresh OAuth state token valid for HandshakeTTL.
func (m *Manager) CreateHandshake(ctx context.Context) (string, error) {
	token, err := m.newToken()
	if err != nil {
		return "", err
	}
	if err := m.handshakes.Put(ctx, token, time.Now().UTC().Format(time.RFC3339), HandshakeTTL); err != nil {
		return "", fmt.Errorf("storing handshake: %w", err)
	}
	return token, nil
}

// ConsumeHandshake redeems a state token. It succeeds at most once per token;
// unknown, expired and already redeemed tokens yield ErrInvalidState.
func (m *Manager) ConsumeHandshake(ctx context.Context, token string) error {
	if token == "" {
		return ErrInvalidState
	}
	_, err := m.handshakes.Take(ctx, token)
	if errors.Is(err, ErrMissing) {
		return ErrInvalidState
	}
	if err != nil {
		return fmt.Errorf("consuming handshake: %w", err)
	}
	return nil
}

// CreateSession stores credential under a new session id valid for SessionTTL.
func (m *Manager) CreateSession(ctx context.Context, credential string) (string, error) {
	id, err := m.newToken()
	if err != nil {
		return "", err
	}
	if err := m.sessions.Put(ctx, id, credential, SessionTTL); err != nil {
		return "", fmt.Errorf("storing session: %w", err)
	}
	return id, nil
}

// ResolveSession returns the credential for a live session.
// Returns ErrMissing when the session is unknown or expired.
func (m *Manager) ResolveSession(ctx context.Context, id string) (string, error) {
	if id == "" {
		return "", ErrMissing
	}
	credential, err := m.sessions.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return credential, nil
}

// DestroySession removes a session. Unknown ids are ignored.
func (m *Manager) DestroySession(ctx context.Context, id string) error {
	if id == "" {
		return nil
	}
	if err := m.sessions.Delete(ctx, id); err != nil {
		return fmt.Errorf("destroying session: %w", err)
	}
	return nil
}

// Sweep drops expired entries from both key spaces.
func (m *Manager) Sweep(ctx context.Context) (int, error) {
	h, err := m.handshakes.Sweep(ctx)
	if err != nil {
		return h, fmt.Errorf("sweeping handshakes: %w", err)
	}
	s, err := m.sessions.Sweep(ctx)
	if err != nil {
		return h + s, fmt.Errorf("sweeping sessions: %w", err)
	}
	return h + s, nil
}

// Close closes both stores.
func (m *Manager) Close() error {
	return errors.Join(m.handshakes.Close(), m.sessions.Close())
}

// NewToken returns a URL-safe token carrying 256 bits of randomness.
func NewToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
