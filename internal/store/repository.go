// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/olegiv/blog-editor/internal/frontmatter"
	"github.com/olegiv/blog-editor/internal/model"
)

// DefaultFetchLimit bounds concurrent blob fetches while listing.
const DefaultFetchLimit = 8

// Config locates the blog inside the repository.
type Config struct {
	// Branch is the branch all reads and commits target.
	Branch string

	// Root is the directory holding one subdirectory per post, without
	// leading or trailing slashes. Empty means the repository root.
	Root string

	// FetchLimit bounds concurrent blob fetches (0 = DefaultFetchLimit).
	FetchLimit int
}

// Repository is the post and image CRUD engine over a Remote.
// It is cheap to create and is normally built per request with the
// caller's credential.
type Repository struct {
	remote     Remote
	branch     string
	root       string
	fetchLimit int
	logger     *slog.Logger
	now        func() time.Time
}

// NewRepository creates a repository over remote.
func NewRepository(remote Remote, cfg Config, logger *slog.Logger) *Repository {
	limit := cfg.FetchLimit
	if limit <= 0 {
		limit = DefaultFetchLimit
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		remote:     remote,
		branch:     cfg.Branch,
		root:       strings.Trim(cfg.Root, "/"),
		fetchLimit: limit,
		logger:     logger,
		now:        time.Now,
	}
}

// candidate is the index file chosen for one slug while listing.
type candidate struct {
	slug  string
	entry TreeEntry
	ext   Extension
}

// ListPosts returns post summaries ordered by date, newest first, then by
// slug. Listing is best-effort: a failed tree fetch yields an empty result
// and files that cannot be fetched or lack a title or description are
// skipped. Only a cancelled or expired ctx is reported as an error.
func (r *Repository) ListPosts(ctx context.Context, includeDrafts bool) ([]model.PostSummary, error) {
	entries, err := r.remote.Tree(ctx, r.branch, true)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		r.logger.Warn("listing repository tree failed", "branch", r.branch, "error", err)
		return []model.PostSummary{}, nil
	}

	chosen := make(map[string]candidate)
	for _, entry := range entries {
		if entry.Type != EntryBlob {
			continue
		}
		slug, ext, ok := r.parseIndexPath(entry.Path)
		if !ok {
			continue
		}
		if cur, seen := chosen[slug]; seen && !ext.Outranks(cur.ext) {
			continue
		}
		chosen[slug] = candidate{slug: slug, entry: entry, ext: ext}
	}

	candidates := make([]candidate, 0, len(chosen))
	for _, c := range chosen {
		candidates = append(candidates, c)
	}
	slices.SortFunc(candidates, func(a, b candidate) int { return cmp.Compare(a.slug, b.slug) })

	posts := make([]*model.Post, len(candidates))
	var g errgroup.Group
	g.SetLimit(r.fetchLimit)
	for i, c := range candidates {
		g.Go(func() error {
			data, err := r.remote.Blob(ctx, c.entry.SHA)
			if err != nil {
				r.logger.Warn("fetching post blob failed", "path", c.entry.Path, "error", err)
				return nil
			}
			post, ok := r.parsePost(c.slug, c.entry.Path, data)
			if !ok {
				r.logger.Debug("skipping post without title or description", "path", c.entry.Path)
				return nil
			}
			posts[i] = post
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	summaries := make([]model.PostSummary, 0, len(posts))
	for _, post := range posts {
		if post == nil || (post.Draft && !includeDrafts) {
			continue
		}
		summaries = append(summaries, post.Summary())
	}

	slices.SortStableFunc(summaries, func(a, b model.PostSummary) int {
		if c := b.Date.Compare(a.Date.Time); c != 0 {
			return c
		}
		return cmp.Compare(a.Slug, b.Slug)
	})

	return summaries, nil
}

// GetPost returns the post for slug. The .mdx file is read first; a file
// that is missing or lacks a title or description falls through to the next
// extension. Returns ErrNotFound when neither resolves.
func (r *Repository) GetPost(ctx context.Context, slug string) (*model.Post, error) {
	for _, ext := range byPriority {
		path := r.postPath(slug, ext)

		file, err := r.remote.File(ctx, path, r.branch)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		post, ok := r.parsePost(slug, path, file.Content)
		if !ok {
			r.logger.Debug("post file without title or description", "path", path)
			continue
		}
		post.Revision = file.SHA
		return post, nil
	}
	return nil, ErrNotFound
}

// CreatePost writes a new post at the .md path. It fails with
// ErrAlreadyExists when an index file of either extension exists, or when
// the remote rejects the create because the path appeared in the meantime.
func (r *Repository) CreatePost(ctx context.Context, slug string, fields model.PostFields) (*model.Post, error) {
	for _, ext := range byPriority {
		_, err := r.remote.File(ctx, r.postPath(slug, ext), r.branch)
		if err == nil {
			return nil, fmt.Errorf("post %q: %w", slug, ErrAlreadyExists)
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("checking post %q: %w", slug, err)
		}
	}

	text, err := render(fields)
	if err != nil {
		return nil, err
	}

	path := r.postPath(slug, Md)
	sha, err := r.remote.CreateFile(ctx, path, []byte(text), r.branch, "Create post: "+fields.Title)
	if errors.Is(err, ErrConflict) {
		return nil, fmt.Errorf("post %q: %w", slug, ErrAlreadyExists)
	}
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}

	return newPost(slug, path, sha, fields), nil
}

// UpdatePost merges patch over the stored post and writes it back to the
// same file, guarded by the SHA that was read. Returns ErrNotFound when the
// post does not exist and ErrConflict when it changed in between.
func (r *Repository) UpdatePost(ctx context.Context, slug string, patch model.PostPatch) (*model.Post, error) {
	current, err := r.GetPost(ctx, slug)
	if err != nil {
		return nil, err
	}

	fields := patch.Apply(current.Fields())
	text, err := render(fields)
	if err != nil {
		return nil, err
	}

	sha, err := r.remote.UpdateFile(ctx, current.FilePath, []byte(text), current.Revision, r.branch, "Update post: "+fields.Title)
	if err != nil {
		return nil, fmt.Errorf("updating %s: %w", current.FilePath, err)
	}

	return newPost(slug, current.FilePath, sha, fields), nil
}

// DeletePost removes the post file and then, best-effort, every file in the
// post's images directory. Returns ErrNotFound without touching the remote
// when the post does not exist.
func (r *Repository) DeletePost(ctx context.Context, slug string) error {
	current, err := r.GetPost(ctx, slug)
	if err != nil {
		return err
	}

	if err := r.remote.DeleteFile(ctx, current.FilePath, current.Revision, r.branch, "Delete post: "+current.Title); err != nil {
		return fmt.Errorf("deleting %s: %w", current.FilePath, err)
	}

	r.deleteImages(ctx, slug)
	return nil
}

// deleteImages removes every file under the images directory of slug.
// Failures are logged and otherwise ignored.
func (r *Repository) deleteImages(ctx context.Context, slug string) {
	dir := r.imagesDir(slug)

	files, err := r.remote.Dir(ctx, dir, r.branch)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			r.logger.Warn("listing post images failed", "dir", dir, "error", err)
		}
		return
	}

	deleted := 0
	for _, f := range files {
		if f.Type != "file" {
			continue
		}
		if err := r.remote.DeleteFile(ctx, f.Path, f.SHA, r.branch, "Delete image: "+f.Name); err != nil {
			r.logger.Warn("deleting post image failed", "path", f.Path, "error", err)
			continue
		}
		deleted++
	}
	r.logger.Debug("deleted post images", "slug", slug, "count", deleted, "total", len(files))
}

// UploadImage stores data as <slug>/images/<filename>, overwriting an
// existing file of the same name.
func (r *Repository) UploadImage(ctx context.Context, slug, filename string, data []byte) (*model.ImageRef, error) {
	path := r.imagePath(slug, filename)

	existing, err := r.remote.File(ctx, path, r.branch)
	switch {
	case err == nil:
		_, err = r.remote.UpdateFile(ctx, path, data, existing.SHA, r.branch, "Update image: "+filename)
	case errors.Is(err, ErrNotFound):
		_, err = r.remote.CreateFile(ctx, path, data, r.branch, "Add image: "+filename)
	}
	if err != nil {
		return nil, fmt.Errorf("uploading %s: %w", path, err)
	}

	relative := "./images/" + filename
	return &model.ImageRef{
		Filename:     filename,
		Path:         path,
		RelativePath: relative,
		Markdown:     fmt.Sprintf("![%s](%s)", filename, relative),
	}, nil
}

// GetImage returns the bytes of <slug>/images/<filename>.
func (r *Repository) GetImage(ctx context.Context, slug, filename string) ([]byte, error) {
	file, err := r.remote.File(ctx, r.imagePath(slug, filename), r.branch)
	if err != nil {
		return nil, err
	}
	return file.Content, nil
}

// parsePost projects a document onto a Post. It fails when the metadata
// lacks a title or description. An unparseable date becomes today.
func (r *Repository) parsePost(slug, path string, data []byte) (*model.Post, bool) {
	meta, body := frontmatter.Decode(string(data))
	if !meta.Complete() {
		return nil, false
	}

	date := model.DateOf(r.now())
	if d, ok := meta.Date(); ok {
		date = model.DateOf(d)
	}

	tags := meta.Tags()
	if tags == nil {
		tags = []string{}
	}

	return &model.Post{
		Slug:        slug,
		Title:       meta.Title(),
		Description: meta.Description(),
		Date:        date,
		Draft:       meta.Draft(),
		Tags:        tags,
		Content:     body,
		FilePath:    path,
	}, true
}

// parseIndexPath extracts slug and extension from <root>/<slug>/index.<ext>.
func (r *Repository) parseIndexPath(path string) (string, Extension, bool) {
	rest := path
	if r.root != "" {
		var ok bool
		rest, ok = strings.CutPrefix(path, r.root+"/")
		if !ok {
			return "", 0, false
		}
	}

	slug, name, ok := strings.Cut(rest, "/")
	if !ok || slug == "" || strings.Contains(name, "/") {
		return "", 0, false
	}

	ext, ok := indexExtension(name)
	if !ok {
		return "", 0, false
	}
	return slug, ext, true
}

func (r *Repository) postDir(slug string) string {
	if r.root == "" {
		return slug
	}
	return r.root + "/" + slug
}

func (r *Repository) postPath(slug string, ext Extension) string {
	return r.postDir(slug) + "/" + ext.IndexFile()
}

func (r *Repository) imagesDir(slug string) string {
	return r.postDir(slug) + "/images"
}

func (r *Repository) imagePath(slug, filename string) string {
	return r.imagesDir(slug) + "/" + filename
}

// render encodes fields as a complete post document.
func render(fields model.PostFields) (string, error) {
	header, err := frontmatter.Encode(fields.Title, fields.Description, fields.Date.Time, fields.Draft, fields.Tags)
	if err != nil {
		return "", err
	}
	return frontmatter.Compose(header, fields.Content), nil
}

func newPost(slug, path, sha string, fields model.PostFields) *model.Post {
	tags := fields.Tags
	if tags == nil {
		tags = []string{}
	}
	return &model.Post{
		Slug:        slug,
		Title:       fields.Title,
		Description: fields.Description,
		Date:        fields.Date,
		Draft:       fields.Draft,
		Tags:        tags,
		Content:     fields.Content,
		FilePath:    path,
		Revision:    sha,
	}
}
