// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

// Extension is the format of a post's index file.
type Extension int

// Known extensions, in ascending read priority.
const (
	Md Extension = iota
	Mdx
)

// byPriority lists extensions from most to least preferred for reads.
var byPriority = []Extension{Mdx, Md}

// String returns the file extension including the dot.
func (e Extension) String() string {
	switch e {
	case Mdx:
		return ".mdx"
	default:
		return ".md"
	}
}

// IndexFile returns the index filename for e.
func (e Extension) IndexFile() string {
	return "index" + e.String()
}

// Outranks reports whether e is preferred over other when both exist.
func (e Extension) Outranks(other Extension) bool {
	return e > other
}

// indexExtension returns the extension of an index filename.
func indexExtension(name string) (Extension, bool) {
	for _, ext := range byPriority {
		if name == ext.IndexFile() {
			return ext, true
		}
	}
	return 0, false
}
