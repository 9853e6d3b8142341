package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/janisto/enseada-console/internal/config"
	"github.com/janisto/enseada-console/internal/console"
	"github.com/janisto/enseada-console/internal/http/health"
	"github.com/janisto/enseada-console/internal/http/v1/routes"
	"github.com/janisto/enseada-console/internal/listpage"
	"github.com/janisto/enseada-console/internal/platform/firebase"
	applog "github.com/janisto/enseada-console/internal/platform/logging"
	appmiddleware "github.com/janisto/enseada-console/internal/platform/middleware"
	"github.com/janisto/enseada-console/internal/platform/respond"
	"github.com/janisto/enseada-console/internal/resource"
	fsstore "github.com/janisto/enseada-console/internal/service/firestore"
	"github.com/janisto/enseada-console/internal/service/memory"
	"github.com/janisto/enseada-console/internal/service/upstream"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

const docsPath = "/api-docs"

func main() {
	defer func() {
		if err := applog.Sync(); err != nil {
			applog.LogError(context.Background(), "logger sync error", err)
		}
	}()
	if err := applog.Err(); err != nil {
		applog.LogError(context.Background(), "logger init error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		applog.LogError(context.Background(), "config error", err)
		os.Exit(1)
	}
	if err := applog.SetLevel(cfg.LogLevel); err != nil {
		applog.LogWarn(context.Background(), "invalid log level, keeping info", zap.String("level", cfg.LogLevel))
	}

	ctx := context.Background()
	src, closeSource, err := newSource(ctx, cfg)
	if err != nil {
		applog.LogError(ctx, "backend init failed", err, zap.String("backend", string(cfg.Backend)))
		os.Exit(1)
	}
	defer func() {
		if err := closeSource(); err != nil {
			applog.LogError(context.Background(), "backend close error", err)
		}
	}()

	mgr := console.NewManager(src,
		console.WithPageSize(cfg.PageSize),
		console.WithMaxViews(cfg.MaxViews),
		console.WithIdleTimeout(cfg.ViewIdleTimeout),
	)
	evictCtx, stopEvictor := context.WithCancel(context.Background())
	defer stopEvictor()
	go mgr.RunEvictor(evictCtx, evictInterval(cfg.ViewIdleTimeout))
	router, _ := newRouter(cfg, mgr)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(router, "enseada-console"),
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		// Deletes fan out to the backend before the page is reloaded.
		WriteTimeout:   30 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 64 << 10, // 64 KB
	}

	listenErr := make(chan error, 1)
	go func() {
		applog.LogInfo(context.Background(), "server listening",
			zap.String("addr", srv.Addr),
			zap.String("backend", string(cfg.Backend)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-listenErr:
		applog.LogError(context.Background(), "listen failed", err, zap.String("addr", srv.Addr))
		os.Exit(1)
	case <-stop:
		applog.LogInfo(context.Background(), "shutdown signal received")
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		applog.LogError(shutdownCtx, "server shutdown error", err)
	}
	applog.LogInfo(context.Background(), "server exited")
}

// evictInterval sweeps a few times per idle timeout and at least once a minute.
func evictInterval(idle time.Duration) time.Duration {
	return min(idle/4, time.Minute)
}

// newRouter builds the router with the middleware stack, health check and API routes.
func newRouter(cfg config.Config, mgr *console.Manager) (*chi.Mux, huma.API) {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	// Base middleware stack
	router.Use(
		appmiddleware.Security(docsPath),
		appmiddleware.Vary(),
		appmiddleware.CORS(cfg.CORSAllowedOrigins),
		appmiddleware.RequestID(),
		// RealIP extracts client IP from X-Real-IP or X-Forwarded-For headers.
		// SECURITY: Only use behind a trusted reverse proxy (e.g., Cloud Run, nginx).
		chimiddleware.RealIP,
		chimiddleware.RequestSize(1<<20), // 1 MB limit
		applog.RequestLogger(),
		applog.AccessLogger(),
		respond.Recoverer(),
	)

	kinds := mgr.Kinds()
	keys := make([]string, len(kinds))
	for i, k := range kinds {
		keys[i] = k.Key
	}
	router.Get("/health", health.Handler(string(cfg.Backend), keys))

	humaCfg := huma.DefaultConfig("Enseada Console API", Version)
	humaCfg.DocsPath = docsPath
	api := humachi.New(router, humaCfg)
	addCBORContent(api)

	routes.Register(api, mgr)
	return router, api
}

// addCBORContent advertises application/cbor next to every JSON request and response body.
func addCBORContent(api huma.API) {
	api.OpenAPI().OnAddOperation = append(api.OpenAPI().OnAddOperation,
		func(_ *huma.OpenAPI, op *huma.Operation) {
			if op.RequestBody != nil && op.RequestBody.Content != nil {
				if jsonContent, ok := op.RequestBody.Content["application/json"]; ok {
					op.RequestBody.Content["application/cbor"] = jsonContent
				}
			}
			for _, resp := range op.Responses {
				if resp.Content == nil {
					continue
				}
				if jsonContent, ok := resp.Content["application/json"]; ok {
					resp.Content["application/cbor"] = jsonContent
				}
			}
		},
	)
}

// newSource connects the configured backend. The returned func releases its clients.
func newSource(ctx context.Context, cfg config.Config) (console.Source, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Backend {
	case config.BackendMemory:
		b := memory.NewBackend()
		if cfg.SeedData {
			b.Seed(time.Now())
		}
		return console.Source{
			Users:          listpage.Static[resource.User](b.Users),
			Roles:          listpage.Static[resource.Role](b.Roles),
			Tokens:         listpage.Static[resource.PersonalAccessToken](b.Tokens),
			ContainerRepos: listpage.Static[resource.ContainerRepo](b.ContainerRepos),
			MavenArtifacts: listpage.Static[resource.MavenArtifact](b.MavenArtifacts),
		}, noop, nil

	case config.BackendFirestore:
		clients, err := firebase.InitializeClients(ctx, firebase.Config{
			ProjectID:                    cfg.Firebase.ProjectID,
			GoogleApplicationCredentials: cfg.Firebase.Credentials,
		})
		if err != nil {
			return console.Source{}, noop, err
		}
		b := fsstore.NewBackend(clients.Firestore)
		return console.Source{
			Users:          listpage.Static[resource.User](b.Users),
			Roles:          listpage.Static[resource.Role](b.Roles),
			Tokens:         listpage.Static[resource.PersonalAccessToken](b.Tokens),
			ContainerRepos: listpage.Static[resource.ContainerRepo](b.ContainerRepos),
			MavenArtifacts: listpage.Static[resource.MavenArtifact](b.MavenArtifacts),
		}, clients.Close, nil

	case config.BackendUpstream:
		client := upstream.NewClient(nil,
			upstream.WithBaseURL(cfg.Upstream.URL),
			upstream.WithToken(cfg.Upstream.Token),
			upstream.WithRateLimit(cfg.Upstream.RPS, cfg.Upstream.Burst),
		)
		b := upstream.NewBackend(client)
		return console.Source{
			Users:          b.Users,
			Roles:          b.Roles,
			Tokens:         b.Tokens,
			ContainerRepos: b.ContainerRepos,
			MavenArtifacts: b.MavenArtifacts,
		}, noop, nil
	}
	return console.Source{}, noop, fmt.Errorf("unknown backend %q", cfg.Backend)
}
