// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"strings"
	"testing"
)

func TestPreview(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "heading and emphasis",
			input:    "# Title\n\nSome *text*.",
			contains: []string{"<h1", "Title</h1>", "<em>text</em>"},
		},
		{
			name:     "gfm table",
			input:    "| a | b |\n|---|---|\n| 1 | 2 |",
			contains: []string{"<table>", "<td>1</td>"},
		},
		{
			name:     "strikethrough",
			input:    "~~gone~~",
			contains: []string{"<del>gone</del>"},
		},
		{
			name:     "script removed",
			input:    "hello\n\n<script>alert(1)</script>",
			contains: []string{"hello"},
			excludes: []string{"<script", "alert(1)"},
		},
		{
			name:     "event handler removed",
			input:    `<img src="x.png" onerror="alert(1)">`,
			excludes: []string{"onerror"},
		},
		{
			name:     "javascript link removed",
			input:    "[click](javascript:alert(1))",
			excludes: []string{"javascript:"},
		},
		{
			name:     "frontmatter dropped",
			input:    "---\ntitle: Hello\n---\n\nBody text",
			contains: []string{"<p>Body text</p>"},
			excludes: []string{"title: Hello"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Preview(tt.input)
			if err != nil {
				t.Fatalf("Preview() error = %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("Preview() = %q, want it to contain %q", got, want)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(got, bad) {
					t.Errorf("Preview() = %q, must not contain %q", got, bad)
				}
			}
		})
	}
}

func TestPreview_Empty(t *testing.T) {
	got, err := Preview("")
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if got != "" {
		t.Errorf("Preview(\"\") = %q, want empty", got)
	}
}
