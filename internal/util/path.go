// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"fmt"
	"path"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/olegiv/blog-editor/internal/model"
)

const (
	// MaxImageBaseLength caps the sanitised base name of an uploaded image.
	MaxImageBaseLength = 50

	defaultImageBase = "image"
	uniqueSuffixLen  = 8
)

// SanitizeFilename extracts only the base filename, removing any directory
// components sent by the client. Both slash styles are treated as separators.
// Returns an error if nothing usable remains.
func SanitizeFilename(filename string) (string, error) {
	safe := path.Base(strings.ReplaceAll(filename, `\`, "/"))
	if safe == "." || safe == ".." || safe == "" || safe == "/" {
		return "", fmt.Errorf("invalid filename: %q", filename)
	}
	return safe, nil
}

// ImageFilename builds the stored name of an uploaded image: the client's
// base name with anything other than letters, digits, hyphens and
// underscores replaced by hyphens, a short random suffix, and ext.
func ImageFilename(original, ext string) string {
	base := defaultImageBase
	if safe, err := SanitizeFilename(original); err == nil {
		if i := strings.LastIndex(safe, "."); i >= 0 {
			safe = safe[:i]
		}
		if cleaned := cleanBase(safe); cleaned != "" {
			base = cleaned
		}
	}

	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:uniqueSuffixLen]
	return base + "-" + suffix + ext
}

func cleanBase(s string) string {
	var b strings.Builder
	n := 0
	for _, r := range s {
		if n == MaxImageBaseLength {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
		n++
	}
	return b.String()
}

// ValidImageFilename reports whether name can be used to address an image
// inside a post's images directory. It rejects path separators, parent
// references, hidden files and names without an image extension.
func ValidImageFilename(name string) bool {
	if name == "" || strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") || strings.HasPrefix(name, ".") {
		return false
	}
	for _, r := range name {
		if !(unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_' || r == '.') {
			return false
		}
	}
	_, ok := model.ContentTypeForFilename(name)
	return ok
}
