// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Route patterns.
const (
	RouteRoot        = "/"
	RouteHealth      = "/health"
	RouteAuthLogin   = "/api/auth/login"
	RouteAuthBack    = "/api/auth/callback"
	RouteAuthMe      = "/api/auth/me"
	RouteAuthLogout  = "/api/auth/logout"
	RoutePosts       = "/api/posts"
	RoutePostsSlug   = "/api/posts/{slug}"
	RouteImageUpload = "/api/images/upload/{slug}"
	RouteImageProxy  = "/api/images/proxy/{slug}/{filename}"
	RouteSlugify     = "/api/slugify"
	RoutePreview     = "/api/preview"
)

// RouteMiddleware holds the middleware applied to groups of routes.
type RouteMiddleware struct {
	// Session rejects requests without a live session. Required.
	Session func(http.Handler) http.Handler

	// AuthLimiter throttles the OAuth endpoints. Optional.
	AuthLimiter func(http.Handler) http.Handler
}

// Register mounts every API route on r.
func (h *Handler) Register(r chi.Router, mw RouteMiddleware) {
	r.Get(RouteRoot, h.Root)
	r.Get(RouteHealth, h.Health)

	// OAuth endpoints
	r.Group(func(r chi.Router) {
		if mw.AuthLimiter != nil {
			r.Use(mw.AuthLimiter)
		}
		r.Get(RouteAuthLogin, h.Login)
		r.Get(RouteAuthBack, h.Callback)
		r.Post(RouteAuthLogout, h.Logout)
		r.With(mw.Session).Get(RouteAuthMe, h.Me)
	})

	// Session required
	r.Group(func(r chi.Router) {
		r.Use(mw.Session)

		r.Get(RoutePosts, h.ListPosts)
		r.Post(RoutePosts, h.CreatePost)
		r.Get(RoutePostsSlug, h.GetPost)
		r.Put(RoutePostsSlug, h.UpdatePost)
		r.Delete(RoutePostsSlug, h.DeletePost)

		r.Post(RouteImageUpload, h.UploadImage)
		r.Get(RouteImageProxy, h.ProxyImage)

		r.Get(RouteSlugify, h.Slugify)
		r.Post(RoutePreview, h.Preview)
	})
}
