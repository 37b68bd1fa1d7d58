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
	"go.uber.org/zap"

	"github.com/janisto/linkhub/internal/http/health"
	"github.com/janisto/linkhub/internal/http/v1/routes"
	"github.com/janisto/linkhub/internal/platform/auth"
	"github.com/janisto/linkhub/internal/platform/config"
	"github.com/janisto/linkhub/internal/platform/firebase"
	"github.com/janisto/linkhub/internal/platform/logging"
	"github.com/janisto/linkhub/internal/platform/metrics"
	appmiddleware "github.com/janisto/linkhub/internal/platform/middleware"
	"github.com/janisto/linkhub/internal/platform/respond"
	profilesvc "github.com/janisto/linkhub/internal/service/profile"
)

// Version can be overridden at build time: -ldflags "-X main.Version=1.2.3"
var Version = "dev"

const (
	apiPrefix = "/v1"
	docsPath  = "/api-docs"
)

func main() {
	defer func() {
		if err := logging.Sync(); err != nil {
			logging.LogError(context.Background(), "logger sync error", err)
		}
	}()
	if err := logging.Err(); err != nil {
		logging.LogError(context.Background(), "logger init error", err)
	}
	if err := run(); err != nil {
		logging.LogError(context.Background(), "server failed", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logging.SetLevel(cfg.LogLevel); err != nil {
		return err
	}

	clients, err := firebase.InitializeClients(ctx, firebase.Config{
		ProjectID:                    cfg.FirebaseProjectID,
		GoogleApplicationCredentials: cfg.GoogleApplicationCredentials,
		WithFirestore:                cfg.ProfileStore == config.StoreFirestore,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := clients.Close(); err != nil {
			logging.LogError(ctx, "firebase close error", err)
		}
	}()

	store, checks, closeStore, err := openStore(cfg, clients)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeStore(); err != nil {
			logging.LogError(ctx, "profile store close error", err)
		}
	}()

	router := newRouter(cfg, auth.NewFirebaseVerifier(clients.Auth), profilesvc.NewRegistry(store), checks...)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    64 << 10, // 64 KB
	}

	listenErr := make(chan error, 1)
	go func() {
		logging.LogInfo(ctx, "server listening",
			zap.String("addr", srv.Addr),
			zap.String("store", cfg.ProfileStore),
			zap.String("version", Version),
			zap.Stringer("logLevel", logging.Level()),
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
		return fmt.Errorf("listen on %s: %w", srv.Addr, err)
	case <-stop:
		logging.LogInfo(ctx, "shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.LogError(shutdownCtx, "server shutdown error", err)
	}
	logging.LogInfo(ctx, "server exited")
	return nil
}

// openStore builds the profile store cfg selects, along with health checks
// for its backing service and a close func for its connections.
func openStore(cfg *config.Config, clients *firebase.Clients) (profilesvc.Store, []health.Check, func() error, error) {
	var (
		store     profilesvc.Store
		checks    []health.Check
		closeFunc = func() error { return nil }
	)

	switch cfg.ProfileStore {
	case config.StoreMemory:
		store = profilesvc.NewMemoryStore()
	case config.StoreFirestore:
		if clients == nil || clients.Firestore == nil {
			return nil, nil, nil, errors.New("firestore store requires a firestore client")
		}
		store = profilesvc.NewFirestoreStore(clients.Firestore)
	case config.StoreSQLite:
		db, err := profilesvc.OpenSQLite(cfg.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, nil, nil, fmt.Errorf("sqlite handle: %w", err)
		}
		s, err := profilesvc.NewSQLiteStore(db)
		if err != nil {
			_ = sqlDB.Close()
			return nil, nil, nil, err
		}
		store = s
		checks = append(checks, health.Check{Name: "sqlite", Fn: sqlDB.PingContext})
		closeFunc = sqlDB.Close
	case config.StoreRedis:
		client := profilesvc.NewRedisClient(profilesvc.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			UseTLS:   cfg.RedisTLS,
		})
		store = profilesvc.NewRedisStore(client)
		checks = append(checks, health.Check{Name: "redis", Fn: func(ctx context.Context) error {
			return client.Ping(ctx).Err()
		}})
		closeFunc = client.Close
	default:
		return nil, nil, nil, fmt.Errorf("unknown profile store %q", cfg.ProfileStore)
	}

	if cfg.ProfileCacheTTL > 0 && cfg.ProfileStore != config.StoreMemory {
		store = profilesvc.NewCachedStore(store, cfg.ProfileCacheTTL)
	}
	return store, checks, closeFunc, nil
}

// newRouter assembles the middleware stack, operational endpoints and the v1 API.
func newRouter(
	cfg *config.Config,
	verifier auth.Verifier,
	profileService profilesvc.Service,
	checks ...health.Check,
) chi.Router {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	// Base middleware stack
	router.Use(
		appmiddleware.Security(apiPrefix+docsPath),
		appmiddleware.Vary(),
		appmiddleware.CORS(cfg.CORSAllowedOrigins...),
		appmiddleware.RequestID(),
		// RealIP trusts X-Real-IP and X-Forwarded-For.
		// SECURITY: Only use behind a trusted reverse proxy (e.g., Cloud Run, nginx).
		chimiddleware.RealIP,
		chimiddleware.RequestSize(1<<20), // 1 MB limit
		logging.RequestLogger(),
		logging.AccessLogger(),
		metrics.Middleware(),
		respond.Recoverer(),
	)

	router.Get("/health", health.Handler(checks...))
	router.Handle("/metrics", metrics.Handler())

	router.Route(apiPrefix, func(r chi.Router) {
		// Unmatched paths below the prefix still get problem responses.
		r.NotFound(respond.NotFoundHandler())
		r.MethodNotAllowed(respond.MethodNotAllowedHandler())

		api := humachi.New(r, newAPIConfig())
		routes.Register(api, verifier, profileService)
	})
	return router
}

func newAPIConfig() huma.Config {
	cfg := huma.DefaultConfig("Linkhub API", Version)
	cfg.Info.Description = "Link-in-bio profiles: one profile per identity with an ordered list of links."
	cfg.Servers = []*huma.Server{{URL: apiPrefix}}
	cfg.DocsPath = docsPath
	if cfg.Components.SecuritySchemes == nil {
		cfg.Components.SecuritySchemes = map[string]*huma.SecurityScheme{}
	}
	cfg.Components.SecuritySchemes["bearerAuth"] = &huma.SecurityScheme{
		Type:         "http",
		Scheme:       "bearer",
		BearerFormat: "JWT",
		Description:  "Firebase ID token",
	}
	// Huma matches Accept exactly and falls back to JSON for wildcards and
	// unsupported types (RFC 9110 section 12.4.1 allows this).
	cfg.OpenAPI.OnAddOperation = append(cfg.OpenAPI.OnAddOperation, addCBORContent)
	return cfg
}

// addCBORContent documents application/cbor next to every JSON body.
func addCBORContent(_ *huma.OpenAPI, op *huma.Operation) {
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
}
