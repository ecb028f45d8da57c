// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package testutil

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/olegiv/blog-editor/internal/store"
)

// Remote method names, as used by FakeRemote.Fail and FakeRemote.Calls.
const (
	MethodTree   = "Tree"
	MethodBlob   = "Blob"
	MethodFile   = "File"
	MethodDir    = "Dir"
	MethodCreate = "CreateFile"
	MethodUpdate = "UpdateFile"
	MethodDelete = "DeleteFile"
)

// Call records one invocation of a FakeRemote method.
type Call struct {
	Method  string
	Path    string
	Message string
}

// FakeRemote is an in-memory store.Remote holding a single branch.
// Blob SHAs are computed the way git computes them, so content written twice
// yields the same SHA.
type FakeRemote struct {
	mu     sync.Mutex
	branch string
	files  map[string]string // path -> sha
	blobs  map[string][]byte // sha -> content
	calls  []Call
	fail   map[string]error
}

var _ store.Remote = (*FakeRemote)(nil)

// NewFakeRemote creates an empty fake repository with the given branch.
func NewFakeRemote(branch string) *FakeRemote {
	return &FakeRemote{
		branch: branch,
		files:  make(map[string]string),
		blobs:  make(map[string][]byte),
		fail:   make(map[string]error),
	}
}

// Put seeds a file without recording a call and returns its blob SHA.
func (f *FakeRemote) Put(p, content string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.putLocked(p, []byte(content))
}

// Content returns the current content at p.
func (f *FakeRemote) Content(p string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sha, ok := f.files[p]
	if !ok {
		return "", false
	}
	return string(f.blobs[sha]), true
}

// SHA returns the current blob SHA at p, or "".
func (f *FakeRemote) SHA(p string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.files[p]
}

// Paths returns every file path, sorted.
func (f *FakeRemote) Paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	paths := make([]string, 0, len(f.files))
	for p := range f.files {
		paths = append(paths, p)
	}
	slices.Sort(paths)
	return paths
}

// Fail makes method return err. A non-empty key restricts the failure to one
// path (or blob SHA for Blob).
func (f *FakeRemote) Fail(method, key string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[method+" "+key] = err
}

// Calls returns every recorded call in order.
func (f *FakeRemote) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.calls)
}

// Mutations returns the recorded create, update and delete calls.
func (f *FakeRemote) Mutations() []Call {
	var out []Call
	for _, c := range f.Calls() {
		switch c.Method {
		case MethodCreate, MethodUpdate, MethodDelete:
			out = append(out, c)
		}
	}
	return out
}

func (f *FakeRemote) Tree(_ context.Context, branch string, recursive bool) ([]store.TreeEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(MethodTree, "", "", branch); err != nil {
		return nil, err
	}

	dirs := make(map[string]bool)
	var entries []store.TreeEntry
	for p, sha := range f.files {
		if !recursive && strings.Contains(p, "/") {
			top, _, _ := strings.Cut(p, "/")
			dirs[top] = true
			continue
		}
		entries = append(entries, store.TreeEntry{Path: p, SHA: sha, Type: store.EntryBlob})
		for dir := path.Dir(p); dir != "."; dir = path.Dir(dir) {
			dirs[dir] = true
		}
	}
	for dir := range dirs {
		entries = append(entries, store.TreeEntry{Path: dir, Type: store.EntryTree})
	}
	slices.SortFunc(entries, func(a, b store.TreeEntry) int { return strings.Compare(a.Path, b.Path) })
	return entries, nil
}

func (f *FakeRemote) Blob(_ context.Context, sha string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(MethodBlob, sha, "", f.branch); err != nil {
		return nil, err
	}
	data, ok := f.blobs[sha]
	if !ok {
		return nil, store.ErrNotFound
	}
	return slices.Clone(data), nil
}

func (f *FakeRemote) File(_ context.Context, p, branch string) (*store.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(MethodFile, p, "", branch); err != nil {
		return nil, err
	}
	sha, ok := f.files[p]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &store.File{
		Path:    p,
		Name:    path.Base(p),
		SHA:     sha,
		Type:    "file",
		Content: slices.Clone(f.blobs[sha]),
	}, nil
}

func (f *FakeRemote) Dir(_ context.Context, p, branch string) ([]store.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(MethodDir, p, "", branch); err != nil {
		return nil, err
	}

	prefix := strings.TrimSuffix(p, "/") + "/"
	subdirs := make(map[string]bool)
	var out []store.File
	for fp, sha := range f.files {
		rest, ok := strings.CutPrefix(fp, prefix)
		if !ok {
			continue
		}
		if sub, _, nested := strings.Cut(rest, "/"); nested {
			subdirs[sub] = true
			continue
		}
		out = append(out, store.File{Path: fp, Name: rest, SHA: sha, Type: "file"})
	}
	for sub := range subdirs {
		out = append(out, store.File{Path: prefix + sub, Name: sub, Type: "dir"})
	}
	if len(out) == 0 {
		return nil, store.ErrNotFound
	}
	slices.SortFunc(out, func(a, b store.File) int { return strings.Compare(a.Path, b.Path) })
	return out, nil
}

func (f *FakeRemote) CreateFile(_ context.Context, p string, content []byte, branch, message string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(MethodCreate, p, message, branch); err != nil {
		return "", err
	}
	if _, exists := f.files[p]; exists {
		return "", store.ErrConflict
	}
	return f.putLocked(p, content), nil
}

func (f *FakeRemote) UpdateFile(_ context.Context, p string, content []byte, sha, branch, message string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(MethodUpdate, p, message, branch); err != nil {
		return "", err
	}
	current, exists := f.files[p]
	if !exists {
		return "", store.ErrNotFound
	}
	if current != sha {
		return "", store.ErrConflict
	}
	return f.putLocked(p, content), nil
}

func (f *FakeRemote) DeleteFile(_ context.Context, p, sha, branch, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.begin(MethodDelete, p, message, branch); err != nil {
		return err
	}
	current, exists := f.files[p]
	if !exists {
		return store.ErrNotFound
	}
	if current != sha {
		return store.ErrConflict
	}
	delete(f.files, p)
	return nil
}

// begin records the call and returns an injected failure or branch error.
func (f *FakeRemote) begin(method, key, message, branch string) error {
	f.calls = append(f.calls, Call{Method: method, Path: key, Message: message})
	if err, ok := f.fail[method+" "+key]; ok {
		return err
	}
	if err, ok := f.fail[method+" "]; ok {
		return err
	}
	if branch != f.branch {
		return fmt.Errorf("branch %q: %w", branch, store.ErrNotFound)
	}
	return nil
}

func (f *FakeRemote) putLocked(p string, content []byte) string {
	sha := BlobSHA(content)
	f.blobs[sha] = slices.Clone(content)
	f.files[p] = sha
	return sha
}

// BlobSHA returns the git blob hash of content.
func BlobSHA(content []byte) string {
	h := sha1.New()
	_, _ = fmt.Fprintf(h, "blob %d\x00", len(content))
	_, _ = h.Write(content)
	return hex.EncodeToString(h.Sum(nil))
}
