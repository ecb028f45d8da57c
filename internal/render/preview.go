// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render converts post Markdown into sanitised HTML for the editor preview.
package render

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/olegiv/blog-editor/internal/frontmatter"
)

// markdown is safe for concurrent use; each Convert call keeps its own state.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// sanitizer strips scripts, event handlers and other dangerous markup that
// raw HTML blocks inside the Markdown may carry.
var sanitizer = bluemonday.UGCPolicy()

// Preview renders Markdown to HTML. A leading frontmatter block is dropped
// so a whole document can be previewed as well as a bare body.
func Preview(content string) (string, error) {
	_, body := frontmatter.Decode(content)

	var buf bytes.Buffer
	if err := markdown.Convert([]byte(body), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return sanitizer.Sanitize(buf.String()), nil
}
