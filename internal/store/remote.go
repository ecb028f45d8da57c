// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store maps blog posts and their images onto files in a hosted Git
// repository. Every read goes to the remote branch head and every write is a
// single commit; nothing is cached between calls.
package store

import (
	"context"
)

// Tree entry types.
const (
	EntryBlob = "blob"
	EntryTree = "tree"
)

// TreeEntry is one node of a repository tree listing.
type TreeEntry struct {
	Path string
	SHA  string
	Type string
}

// File is a single file read through the contents API.
type File struct {
	Path    string
	Name    string
	SHA     string
	Type    string
	Content []byte
}

// Remote is the file API of the hosted repository, already bound to one
// owner, repository and caller credential.
//
// Implementations return ErrNotFound when a path, blob or branch is absent
// and ErrConflict when a create targets an existing path or an update or
// delete carries a stale SHA. Any other error is a transient failure.
type Remote interface {
	// Tree lists the tree at branch, descending into subtrees when recursive is set.
	Tree(ctx context.Context, branch string, recursive bool) ([]TreeEntry, error)

	// Blob returns the raw bytes of a blob.
	Blob(ctx context.Context, sha string) ([]byte, error)

	// File returns the file at path on branch, with its content and blob SHA.
	File(ctx context.Context, path, branch string) (*File, error)

	// Dir lists the entries of the directory at path on branch, without content.
	Dir(ctx context.Context, path, branch string) ([]File, error)

	// CreateFile commits a new file and returns its blob SHA.
	CreateFile(ctx context.Context, path string, content []byte, branch, message string) (string, error)

	// UpdateFile replaces the file whose current blob is sha and returns the new blob SHA.
	UpdateFile(ctx context.Context, path string, content []byte, sha, branch, message string) (string, error)

	// DeleteFile removes the file whose current blob is sha.
	DeleteFile(ctx context.Context, path, sha, branch, message string) error
}

// Error represents an error type for repository operations.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	// ErrNotFound indicates the post, image, path or branch does not exist.
	ErrNotFound Error = "not found"

	// ErrAlreadyExists indicates a post with the requested slug already exists.
	ErrAlreadyExists Error = "already exists"

	// ErrConflict indicates the remote content changed since it was read.
	ErrConflict Error = "conflict: remote content changed"
)
