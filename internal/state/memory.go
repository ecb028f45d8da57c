// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package state

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local Store. Contents are lost on restart and are
// not shared between instances; use RedisStore when running more than one.
//
// One mutex guards the whole key space. Every mutation first drops all
// expired entries, so memory stays bounded without a background goroutine.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	closed  bool
	now     func() time.Time
}

// memoryEntry holds a value with its expiration time.
type memoryEntry struct {
	value     string
	expiresAt time.Time
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

// Put implements Store.
func (s *MemoryStore) Put(_ context.Context, key, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	now := s.now()
	s.sweepLocked(now)
	s.entries[key] = memoryEntry{value: value, expiresAt: now.Add(ttl)}
	return nil
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrClosed
	}

	entry, ok := s.entries[key]
	if !ok {
		return "", ErrMissing
	}
	if entry.expired(s.now()) {
		delete(s.entries, key)
		return "", ErrMissing
	}
	return entry.value, nil
}

// Take implements Store.
func (s *MemoryStore) Take(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return "", ErrClosed
	}

	now := s.now()
	entry, ok := s.entries[key]
	delete(s.entries, key)
	s.sweepLocked(now)

	if !ok || entry.expired(now) {
		return "", ErrMissing
	}
	return entry.value, nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	delete(s.entries, key)
	s.sweepLocked(s.now())
	return nil
}

// Sweep implements Store.
func (s *MemoryStore) Sweep(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, ErrClosed
	}
	return s.sweepLocked(s.now()), nil
}

// Close implements Store. The entries are dropped.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.entries = make(map[string]memoryEntry)
	return nil
}

// Len returns the number of stored entries, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// sweepLocked drops expired entries. Caller must hold s.mu.
func (s *MemoryStore) sweepLocked(now time.Time) int {
	removed := 0
	for key, entry := range s.entries {
		if entry.expired(now) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

func (e memoryEntry) expired(now time.Time) bool {
	return now.After(e.expiresAt)
}
