// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/blog-editor/internal/auth"
	"github.com/olegiv/blog-editor/internal/config"
	"github.com/olegiv/blog-editor/internal/handler/api"
	"github.com/olegiv/blog-editor/internal/imaging"
	"github.com/olegiv/blog-editor/internal/logging"
	"github.com/olegiv/blog-editor/internal/middleware"
	"github.com/olegiv/blog-editor/internal/remote"
	"github.com/olegiv/blog-editor/internal/scheduler"
	"github.com/olegiv/blog-editor/internal/state"
	"github.com/olegiv/blog-editor/internal/store"
	"github.com/olegiv/blog-editor/internal/version"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

// OAuth endpoints are public, so they get a per-IP budget.
const (
	authRateLimit = 0.5
	authBurst     = 10
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Blog Editor - Git-backed blog editing API\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GITHUB_CLIENT_ID       OAuth application client ID (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GITHUB_CLIENT_SECRET   OAuth application client secret (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GITHUB_REDIRECT_URI    OAuth callback URL (default: http://localhost:8000/api/auth/callback)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GITHUB_REPO_OWNER      Owner of the blog repository (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GITHUB_REPO_NAME       Name of the blog repository (required)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GITHUB_BRANCH          Branch to read and commit to (default: main)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  BLOG_CONTENT_PATH      Directory holding the posts (default: src/content/blog)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SECRET_KEY             CSRF key (min 32 bytes in production)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  FRONTEND_URL           Editor frontend URL (default: http://localhost:3000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ENVIRONMENT            development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  ALLOWED_ORIGINS        Comma-separated CORS origins\n")
		_, _ = fmt.Fprintf(os.Stderr, "  SERVER_PORT            Server port (default: 8000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  LOG_LEVEL, LOG_FORMAT  debug|info|warn|error, text|json\n")
		_, _ = fmt.Fprintf(os.Stderr, "  REDIS_URL              Redis URL for shared sessions (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "\nFor more information, see: https://github.com/olegiv/blog-editor\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	if *showVersion {
		_, _ = fmt.Println(versionInfo.String())
		os.Exit(0)
	}

	if err := run(versionInfo); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run(versionInfo version.Info) error {
	// Load .env files if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	sessions, closeState, err := openState(cfg, logger)
	if err != nil {
		return err
	}
	defer closeState()

	sweeper, err := scheduler.New(sessions, cfg.StateSweepSchedule, logger)
	if err != nil {
		return fmt.Errorf("creating sweeper: %w", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	provider := auth.NewGitHubProvider(auth.ProviderConfig{
		ClientID:     cfg.GitHubClientID,
		ClientSecret: cfg.GitHubClientSecret,
		RedirectURL:  cfg.GitHubRedirectURI,
	})
	connector := api.NewGitHubConnector(
		remote.Config{Owner: cfg.RepoOwner, Repo: cfg.RepoName},
		store.Config{Branch: cfg.Branch, Root: cfg.ContentPath},
		logger,
	)

	apiHandler := api.NewHandler(api.Config{
		FrontendURL:   cfg.FrontendURL,
		SecureCookies: cfg.IsProduction(),
		MaxUploadSize: cfg.MaxUploadSize,
		Version:       versionInfo,
	}, api.Deps{
		Connector: connector,
		Sessions:  sessions,
		OAuth:     provider,
		Optimizer: imaging.NewOptimizer(),
		Logger:    logger,
	})

	origins := cfg.Origins()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.Timeout(cfg.RequestTimeout, logger))
	r.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: origins}))
	r.Use(middleware.CSRF(middleware.NewCSRFConfig([]byte(cfg.SecretKey), origins)))

	apiHandler.Register(r, api.RouteMiddleware{
		Session:     middleware.RequireSession(auth.NewGate(sessions), logger),
		AuthLimiter: middleware.NewRateLimiter(authRateLimit, authBurst, logger).Middleware(),
	})

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		api.WriteNotFound(w, "Not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		api.WriteError(w, http.StatusMethodNotAllowed, "method_not_allowed", "Method not allowed", nil)
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Uploads and slow GitHub round trips
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server",
			"addr", cfg.ServerAddr(),
			"env", cfg.Env,
			"repository", cfg.RepoOwner+"/"+cfg.RepoName,
			"branch", cfg.Branch,
			"version", versionInfo.Version,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}

// openState builds the handshake and session stores. Redis is used when
// REDIS_URL is set so several instances can share sessions.
func openState(cfg *config.Config, logger *slog.Logger) (*state.Manager, func(), error) {
	if !cfg.UseRedis() {
		logger.Info("using in-memory session store")
		m := state.NewMemoryManager()
		return m, func() { _ = m.Close() }, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := state.OpenRedis(ctx, state.RedisOptions{URL: cfg.RedisURL, DialTimeout: 5 * time.Second})
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to redis: %w", err)
	}
	logger.Info("using redis session store", "prefix", cfg.StatePrefix)

	m := state.NewManager(
		state.NewRedisStore(client, cfg.StatePrefix+"handshake:"),
		state.NewRedisStore(client, cfg.StatePrefix+"session:"),
	)
	closeFn := func() {
		_ = m.Close()
		if err := client.Close(); err != nil {
			logger.Error("error closing redis connection", "error", err)
		}
	}
	return m, closeFn, nil
}
