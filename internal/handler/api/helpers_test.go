// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/blog-editor/internal/auth"
	"github.com/olegiv/blog-editor/internal/imaging"
	"github.com/olegiv/blog-editor/internal/middleware"
	"github.com/olegiv/blog-editor/internal/model"
	"github.com/olegiv/blog-editor/internal/state"
	"github.com/olegiv/blog-editor/internal/store"
	"github.com/olegiv/blog-editor/internal/testutil"
	"github.com/olegiv/blog-editor/internal/version"
)

const (
	testBranch     = "main"
	testRoot       = "src/content/blog"
	testCredential = "gho_test"
	testFrontend   = "http://localhost:3000"
	testMaxUpload  = 1 << 20
)

// fakeConnector serves a repository over a FakeRemote for any credential.
type fakeConnector struct {
	remote      *testutil.FakeRemote
	identity    *model.Identity
	identityErr error

	mu          sync.Mutex
	credentials []string
}

func (c *fakeConnector) Repository(_ context.Context, credential string) (Repository, error) {
	c.mu.Lock()
	c.credentials = append(c.credentials, credential)
	c.mu.Unlock()
	return store.NewRepository(c.remote, store.Config{Branch: testBranch, Root: testRoot}, testutil.TestLoggerSilent()), nil
}

func (c *fakeConnector) Identity(_ context.Context, credential string) (*model.Identity, error) {
	c.mu.Lock()
	c.credentials = append(c.credentials, credential)
	c.mu.Unlock()
	return c.identity, c.identityErr
}

// fakeOAuth accepts the codes it knows and rejects everything else.
type fakeOAuth struct {
	tokens map[string]string
	err    error
}

func (o *fakeOAuth) AuthCodeURL(state string) string {
	return "https://github.com/login/oauth/authorize?state=" + url.QueryEscape(state)
}

func (o *fakeOAuth) Exchange(_ context.Context, code string) (string, error) {
	if o.err != nil {
		return "", o.err
	}
	if token, ok := o.tokens[code]; ok {
		return token, nil
	}
	return "", fmt.Errorf("%w: bad_verification_code", auth.ErrAuthFailed)
}

type testEnv struct {
	handler   *Handler
	router    http.Handler
	remote    *testutil.FakeRemote
	sessions  *state.Manager
	connector *fakeConnector
	oauth     *fakeOAuth
	sessionID string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	remote := testutil.NewFakeRemote(testBranch)
	sessions := state.NewMemoryManager()
	connector := &fakeConnector{
		remote:   remote,
		identity: &model.Identity{Login: "octocat", Name: "The Octocat", AvatarURL: "https://avatars.example/octocat", Email: "octocat@example.com"},
	}
	oauth := &fakeOAuth{tokens: map[string]string{"good-code": "gho_new"}}
	logger := testutil.TestLoggerSilent()

	h := NewHandler(Config{
		FrontendURL:   testFrontend,
		MaxUploadSize: testMaxUpload,
		Version:       version.Info{Version: "v1.2.3"},
	}, Deps{
		Connector: connector,
		Sessions:  sessions,
		OAuth:     oauth,
		Optimizer: imaging.NewOptimizer(),
		Logger:    logger,
	})

	r := chi.NewRouter()
	h.Register(r, RouteMiddleware{Session: middleware.RequireSession(auth.NewGate(sessions), logger)})

	sessionID, err := sessions.CreateSession(context.Background(), testCredential)
	require.NoError(t, err)

	return &testEnv{
		handler:   h,
		router:    r,
		remote:    remote,
		sessions:  sessions,
		connector: connector,
		oauth:     oauth,
		sessionID: sessionID,
	}
}

// do sends a request carrying the test session cookie.
func (e *testEnv) do(method, target string, body io.Reader, header ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: e.sessionID})
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

// doAnonymous sends a request without a session cookie.
func (e *testEnv) doAnonymous(method, target string, body io.Reader) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, body)
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorDetail {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), "body: %s", rec.Body.String())
	return resp.Error
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func postDoc(title, date string, draft bool) string {
	s := "---\ntitle: " + title + "\ndescription: About " + title + "\ndate: '" + date + "'\n"
	if draft {
		s += "draft: true\n"
	}
	return s + "---\n\nBody of " + title + "."
}
