// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package remote

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/blog-editor/internal/store"
)

func newTestClient(t *testing.T, mux *http.ServeMux) *Client {
	t.Helper()
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c, err := New(context.Background(), "test-token", Config{Owner: "octo", Repo: "blog", BaseURL: srv.URL})
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_RequiresRepository(t *testing.T) {
	_, err := New(context.Background(), "t", Config{Owner: "octo"})
	assert.Error(t, err)
}

func TestTree(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octo/blog/git/trees/main", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
		assert.Equal(t, "1", r.URL.Query().Get("recursive"))
		writeJSON(w, http.StatusOK, map[string]any{
			"sha": "root",
			"tree": []map[string]any{
				{"path": "posts", "type": "tree", "sha": "t1"},
				{"path": "posts/a/index.md", "type": "blob", "sha": "b1"},
			},
		})
	})

	c := newTestClient(t, mux)
	entries, err := c.Tree(context.Background(), "main", true)
	require.NoError(t, err)
	assert.Equal(t, []store.TreeEntry{
		{Path: "posts", SHA: "t1", Type: store.EntryTree},
		{Path: "posts/a/index.md", SHA: "b1", Type: store.EntryBlob},
	}, entries)
}

func TestTree_MissingBranch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octo/blog/git/trees/gone", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
	})

	c := newTestClient(t, mux)
	_, err := c.Tree(context.Background(), "gone", true)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octo/blog/contents/posts/a/index.md", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "main", r.URL.Query().Get("ref"))
		writeJSON(w, http.StatusOK, map[string]any{
			"type":     "file",
			"name":     "index.md",
			"path":     "posts/a/index.md",
			"sha":      "abc",
			"encoding": "base64",
			"content":  base64.StdEncoding.EncodeToString([]byte("hello")),
		})
	})

	c := newTestClient(t, mux)
	f, err := c.File(context.Background(), "posts/a/index.md", "main")
	require.NoError(t, err)
	assert.Equal(t, "abc", f.SHA)
	assert.Equal(t, "index.md", f.Name)
	assert.Equal(t, []byte("hello"), f.Content)
}

func TestFile_LargeFallsBackToBlob(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octo/blog/contents/big.png", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"type": "file", "name": "big.png", "path": "big.png", "sha": "big1", "encoding": "none", "content": "",
		})
	})
	mux.HandleFunc("GET /repos/octo/blog/git/blobs/big1", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("raw bytes"))
	})

	c := newTestClient(t, mux)
	f, err := c.File(context.Background(), "big.png", "main")
	require.NoError(t, err)
	assert.Equal(t, []byte("raw bytes"), f.Content)
}

func TestFile_NotFound(t *testing.T) {
	c := newTestClient(t, http.NewServeMux())
	_, err := c.File(context.Background(), "missing.md", "main")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDir(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/octo/blog/contents/posts/a/images", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []map[string]any{
			{"type": "file", "name": "x.png", "path": "posts/a/images/x.png", "sha": "s1"},
			{"type": "dir", "name": "sub", "path": "posts/a/images/sub", "sha": "s2"},
		})
	})

	c := newTestClient(t, mux)
	files, err := c.Dir(context.Background(), "posts/a/images", "main")
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "x.png", files[0].Name)
	assert.Equal(t, "dir", files[1].Type)
}

func TestCreateFile(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("PUT /repos/octo/blog/contents/posts/a/index.md", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Message string `json:"message"`
			Content string `json:"content"`
			Branch  string `json:"branch"`
			SHA     string `json:"sha"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Create post: A", body.Message)
		assert.Equal(t, "main", body.Branch)
		assert.Empty(t, body.SHA)
		decoded, _ := base64.StdEncoding.DecodeString(body.Content)
		assert.Equal(t, "doc", string(decoded))

		writeJSON(w, http.StatusCreated, map[string]any{"content": map[string]any{"sha": "new1"}})
	})

	c := newTestClient(t, mux)
	sha, err := c.CreateFile(context.Background(), "posts/a/index.md", []byte("doc"), "main", "Create post: A")
	require.NoError(t, err)
	assert.Equal(t, "new1", sha)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		call   func(*Client) error
		want   error
	}{
		{
			name:   "create over existing path",
			status: http.StatusUnprocessableEntity,
			call: func(c *Client) error {
				_, err := c.CreateFile(context.Background(), "p.md", []byte("x"), "main", "m")
				return err
			},
			want: store.ErrConflict,
		},
		{
			name:   "update with stale sha",
			status: http.StatusConflict,
			call: func(c *Client) error {
				_, err := c.UpdateFile(context.Background(), "p.md", []byte("x"), "old", "main", "m")
				return err
			},
			want: store.ErrConflict,
		},
		{
			name:   "delete missing",
			status: http.StatusNotFound,
			call: func(c *Client) error {
				return c.DeleteFile(context.Background(), "p.md", "old", "main", "m")
			},
			want: store.ErrNotFound,
		},
		{
			name:   "revoked token",
			status: http.StatusUnauthorized,
			call: func(c *Client) error {
				_, err := c.UpdateFile(context.Background(), "p.md", []byte("x"), "old", "main", "m")
				return err
			},
			want: ErrBadCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := http.NewServeMux()
			mux.HandleFunc("/repos/octo/blog/contents/p.md", func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, map[string]string{"message": http.StatusText(tt.status)})
			})

			err := tt.call(newTestClient(t, mux))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestUpdateFile_ServerErrorIsTransient(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/blog/contents/p.md", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Invalid request"})
	})

	_, err := newTestClient(t, mux).UpdateFile(context.Background(), "p.md", []byte("x"), "s", "main", "m")
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrConflict)
	assert.NotErrorIs(t, err, store.ErrNotFound)
}

func TestIdentity(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /user", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"login": "octocat", "name": "Mona", "avatar_url": "https://example.com/a.png", "email": "mona@example.com",
		})
	})

	id, err := newTestClient(t, mux).Identity(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "octocat", id.Login)
	assert.Equal(t, "Mona", id.Name)
	assert.Equal(t, "https://example.com/a.png", id.AvatarURL)
}
