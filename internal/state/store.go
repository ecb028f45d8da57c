// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package state holds short-lived login state: OAuth handshake tokens and
// authenticated sessions. Both live in a key/value Store with per-key expiry,
// either in process memory or in Redis.
package state

import (
	"context"
	"time"
)

// Store is a key/value space with per-key expiry.
// All implementations must be safe for concurrent use, and every method must
// be atomic with respect to other callers on the same key.
type Store interface {
	// Put records value under key until ttl elapses, replacing any entry.
	Put(ctx context.Context, key, value string, ttl time.Duration) error

	// Get returns the live value for key.
	// Returns ErrMissing if the key is absent or expired; an expired entry is removed.
	Get(ctx context.Context, key string) (string, error)

	// Take returns the live value for key and removes it in the same step,
	// so at most one caller can observe a given entry.
	// Returns ErrMissing if the key is absent or expired.
	Take(ctx context.Context, key string) (string, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Sweep removes every expired entry and reports how many were dropped.
	// Backends with native expiry return zero.
	Sweep(ctx context.Context) (int, error)

	// Close releases any resources held by the store.
	Close() error
}

// Error represents an error type for state operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrMissing indicates the key was absent or had expired.
	ErrMissing Error = "state: key missing or expired"

	// ErrInvalidState indicates an OAuth handshake token that is unknown,
	// expired or already consumed.
	ErrInvalidState Error = "invalid or expired OAuth state"

	// ErrClosed indicates the store has been closed.
	ErrClosed Error = "state: store closed"
)
