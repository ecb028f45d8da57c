// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package state

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mini.Close)

	client, err := OpenRedis(context.Background(), RedisOptions{URL: "redis://" + mini.Addr()})
	if err != nil {
		t.Fatalf("OpenRedis() error: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	return mini, client
}

func TestOpenRedis_Errors(t *testing.T) {
	if _, err := OpenRedis(context.Background(), RedisOptions{}); err == nil {
		t.Error("OpenRedis() with empty URL: expected error")
	}
	if _, err := OpenRedis(context.Background(), RedisOptions{URL: "not a url"}); err == nil {
		t.Error("OpenRedis() with invalid URL: expected error")
	}
}

func TestRedisStore_PutGetDelete(t *testing.T) {
	mini, client := newMiniRedis(t)
	s := NewRedisStore(client, "test:session:")
	ctx := context.Background()

	if err := s.Put(ctx, "id", "cred", time.Hour); err != nil {
		t.Fatalf("Put() error: %v", err)
	}
	if !mini.Exists("test:session:id") {
		t.Error("key not stored under prefix")
	}

	got, err := s.Get(ctx, "id")
	if err != nil || got != "cred" {
		t.Errorf("Get() = %q, %v, want %q, nil", got, err, "cred")
	}

	if err := s.Delete(ctx, "id"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if _, err := s.Get(ctx, "id"); !errors.Is(err, ErrMissing) {
		t.Errorf("Get() after Delete error = %v, want ErrMissing", err)
	}
	if err := s.Delete(ctx, "id"); err != nil {
		t.Errorf("second Delete() error = %v, want nil", err)
	}
}

func TestRedisStore_Expiry(t *testing.T) {
	mini, client := newMiniRedis(t)
	s := NewRedisStore(client, "test:")
	ctx := context.Background()

	_ = s.Put(ctx, "k", "v", time.Minute)
	mini.FastForward(time.Minute + time.Second)

	for i := 0; i < 2; i++ {
		if _, err := s.Get(ctx, "k"); !errors.Is(err, ErrMissing) {
			t.Errorf("Get() call %d error = %v, want ErrMissing", i+1, err)
		}
	}

	n, err := s.Sweep(ctx)
	if err != nil || n != 0 {
		t.Errorf("Sweep() = %d, %v, want 0, nil", n, err)
	}
}

func TestRedisStore_TakeOneShot(t *testing.T) {
	_, client := newMiniRedis(t)
	s := NewRedisStore(client, "test:oauth:")
	ctx := context.Background()

	_ = s.Put(ctx, "state", "1", time.Minute)

	if _, err := s.Take(ctx, "state"); err != nil {
		t.Fatalf("Take() error: %v", err)
	}
	if _, err := s.Take(ctx, "state"); !errors.Is(err, ErrMissing) {
		t.Errorf("second Take() error = %v, want ErrMissing", err)
	}
}

func TestRedisStore_WithManager(t *testing.T) {
	mini, client := newMiniRedis(t)
	m := NewManager(NewRedisStore(client, "h:"), NewRedisStore(client, "s:"))
	ctx := context.Background()

	token, err := m.CreateHandshake(ctx)
	if err != nil {
		t.Fatalf("CreateHandshake() error: %v", err)
	}
	if ttl := mini.TTL("h:" + token); ttl != HandshakeTTL {
		t.Errorf("handshake TTL = %v, want %v", ttl, HandshakeTTL)
	}
	if err := m.ConsumeHandshake(ctx, token); err != nil {
		t.Errorf("ConsumeHandshake() error: %v", err)
	}
	if err := m.ConsumeHandshake(ctx, token); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second ConsumeHandshake() error = %v, want ErrInvalidState", err)
	}

	id, err := m.CreateSession(ctx, "cred")
	if err != nil {
		t.Fatalf("CreateSession() error: %v", err)
	}
	if ttl := mini.TTL("s:" + id); ttl != SessionTTL {
		t.Errorf("session TTL = %v, want %v", ttl, SessionTTL)
	}

	mini.FastForward(SessionTTL + time.Second)
	if _, err := m.ResolveSession(ctx, id); !errors.Is(err, ErrMissing) {
		t.Errorf("ResolveSession() after expiry error = %v, want ErrMissing", err)
	}
}

func TestRedisStore_ServerDown(t *testing.T) {
	mini, client := newMiniRedis(t)
	s := NewRedisStore(client, "test:")
	mini.Close()

	_, err := s.Get(context.Background(), "k")
	if err == nil || errors.Is(err, ErrMissing) {
		t.Errorf("Get() with server down error = %v, want transport error", err)
	}
}
