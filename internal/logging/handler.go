// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging builds the service's slog handler and provides a wrapper
// that masks credentials before records reach the output.
package logging

import (
	"context"
	"io"
	"log/slog"
	"strings"
)

// Redacted replaces the value of a sensitive attribute.
const Redacted = "[REDACTED]"

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// DefaultSensitiveKeys lists attribute keys whose values are never logged.
var DefaultSensitiveKeys = []string{
	"token",
	"access_token",
	"credential",
	"session_id",
	"state",
	"code",
	"client_secret",
}

// ParseLevel maps a configured level name to a slog level. Unknown names
// fall back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New creates a logger writing to w in the given format at the given level.
// Every record passes through a RedactHandler.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var inner slog.Handler
	if strings.EqualFold(format, FormatJSON) {
		inner = slog.NewJSONHandler(w, opts)
	} else {
		inner = slog.NewTextHandler(w, opts)
	}
	return slog.New(NewRedactHandler(inner, DefaultSensitiveKeys...))
}

// RedactHandler is a slog.Handler that wraps another handler and replaces
// the values of sensitive attributes, including ones nested in groups.
type RedactHandler struct {
	inner slog.Handler
	keys  map[string]struct{}
}

// NewRedactHandler wraps inner. Key matching is case-insensitive.
func NewRedactHandler(inner slog.Handler, keys ...string) *RedactHandler {
	set := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		set[strings.ToLower(k)] = struct{}{}
	}
	return &RedactHandler{inner: inner, keys: set}
}

// Enabled implements slog.Handler.
func (h *RedactHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *RedactHandler) Handle(ctx context.Context, r slog.Record) error {
	clean := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		clean.AddAttrs(h.redact(a))
		return true
	})
	return h.inner.Handle(ctx, clean)
}

// WithAttrs implements slog.Handler.
func (h *RedactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	cleaned := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		cleaned[i] = h.redact(a)
	}
	return &RedactHandler{inner: h.inner.WithAttrs(cleaned), keys: h.keys}
}

// WithGroup implements slog.Handler.
func (h *RedactHandler) WithGroup(name string) slog.Handler {
	return &RedactHandler{inner: h.inner.WithGroup(name), keys: h.keys}
}

func (h *RedactHandler) redact(a slog.Attr) slog.Attr {
	if _, ok := h.keys[strings.ToLower(a.Key)]; ok {
		return slog.String(a.Key, Redacted)
	}

	v := a.Value.Resolve()
	if v.Kind() != slog.KindGroup {
		return slog.Attr{Key: a.Key, Value: v}
	}

	group := v.Group()
	cleaned := make([]any, len(group))
	for i, ga := range group {
		cleaned[i] = h.redact(ga)
	}
	return slog.Group(a.Key, cleaned...)
}
