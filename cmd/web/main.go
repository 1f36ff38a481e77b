// Copyright (c) 2026 Gukkan. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command web is the entry point for the Gukkan web server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Build the hosted backend client.
//  4. Connect to PostgreSQL and run migrations (postgres backend only).
//  5. Connect to Redis (revocation list, optional).
//  6. Wire the session gate, screens and health checks.
//  7. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/gukkan/internal/api"
	"github.com/taibuivan/gukkan/internal/library"
	"github.com/taibuivan/gukkan/internal/login"
	"github.com/taibuivan/gukkan/internal/platform/config"
	"github.com/taibuivan/gukkan/internal/platform/constants"
	"github.com/taibuivan/gukkan/internal/platform/metrics"
	"github.com/taibuivan/gukkan/internal/platform/middleware"
	"github.com/taibuivan/gukkan/internal/platform/migration"
	pgstore "github.com/taibuivan/gukkan/internal/platform/postgres"
	redisstore "github.com/taibuivan/gukkan/internal/platform/redis"
	"github.com/taibuivan/gukkan/internal/platform/supabase"
	"github.com/taibuivan/gukkan/internal/session"
	"github.com/taibuivan/gukkan/internal/web"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	log := newLogger(slog.LevelInfo)
	slog.SetDefault(log)

	log.Info("service_initializing", slog.String("version", constants.AppVersion))

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		log = newLogger(slog.LevelDebug)
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
		slog.String("library_backend", cfg.LibraryBackend),
		slog.Bool("local_jwt_verification", cfg.SupabaseJWTSecret != ""),
		slog.Bool("revocation_list", cfg.RedisURL != ""),
	)

	// Root context for the process; cancelled on shutdown.
	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()

	// Startup deadline so misconfiguration is caught quickly.
	startupCtx, startupCancel := context.WithTimeout(rootCtx, 30*time.Second)
	defer startupCancel()

	registry := metrics.New()

	// ── 3. Hosted Backend ─────────────────────────────────────────────────
	backend, err := supabase.New(supabase.Config{URL: cfg.SupabaseURL, APIKey: cfg.SupabaseAnonKey})
	must(log, err, "build backend client")

	// ── 4. PostgreSQL (optional) ──────────────────────────────────────────
	var pool *pgxpool.Pool
	if cfg.UsesPostgres() {
		pool, err = pgstore.Open(startupCtx, pgstore.Options{
			DSN:              cfg.DatabaseURL,
			StatementTimeout: cfg.BackendTimeout,
			ReadOnly:         true,
		}, log)
		must(log, err, "connect to postgres")
		defer func() {
			log.Info("postgres_pool_closing")
			pool.Close()
		}()

		if cfg.MigrateOnStart {
			_, err = migration.Up(cfg.DatabaseURL, cfg.MigrationPath, log)
			must(log, err, "run migrations")
		}
	}

	// ── 5. Redis (optional) ───────────────────────────────────────────────
	var redisClient *redis.Client
	var revocations session.Revocations = session.NopRevocations{}
	if cfg.RedisURL != "" {
		redisClient, err = redisstore.NewClient(startupCtx, cfg.RedisURL, log)
		must(log, err, "connect to redis")
		defer func() {
			log.Info("redis_client_closing")
			if cerr := redisClient.Close(); cerr != nil {
				log.Error("redis_close_failed", slog.Any("error", cerr))
			}
		}()
		revocations = session.NewRedisRevocations(redisClient)
	}

	// ── 6. Domain Wiring ──────────────────────────────────────────────────
	renderer, err := web.NewRenderer()
	must(log, err, "parse templates")

	var verifier session.Verifier = session.NewRemoteVerifier(backend)
	if cfg.SupabaseJWTSecret != "" {
		verifier = session.NewLocalVerifier(cfg.SupabaseJWTSecret)
	}

	codec := session.NewCodec(cfg.CookieName(), cfg.CookieSecure)
	gate := session.NewGate(session.GateConfig{
		Codec:       codec,
		Refresher:   backend,
		Verifier:    verifier,
		Revocations: revocations,
		Observer:    registry,
		Timeout:     cfg.BackendTimeout,
	})

	var repository library.Repository = library.NewPostgRESTRepository(backend)
	if pool != nil {
		repository = library.NewPostgresRepository(pool)
	}
	libraryHandler := library.NewHandler(library.NewService(repository, cfg.BackendTimeout, registry), renderer)

	loginService := login.NewService(login.ServiceConfig{
		Auth:        backend,
		Revocations: revocations,
		EmailDomain: cfg.PseudoEmailDomain,
		Timeout:     cfg.BackendTimeout,
	})
	loginHandler := login.NewHandler(loginService, codec, renderer)

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	deps := api.HealthDependencies{CheckBackend: backend.Health}
	if pool != nil {
		deps.CheckDatabase = func(ctx context.Context) error { return pgstore.Ping(ctx, pool) }
	}
	if redisClient != nil {
		deps.CheckCache = func(ctx context.Context) error { return redisstore.Ping(ctx, redisClient) }
	}
	liveness, readiness := api.NewHealthHandlers(deps, log)

	// ── 8. HTTP Server ────────────────────────────────────────────────────
	proxies, err := middleware.NewProxyPolicy(cfg.TrustedProxies)
	must(log, err, "parse TRUSTED_PROXIES")

	server := api.NewServer(rootCtx, cfg, log, registry, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Library:   libraryHandler,
		Login:     loginHandler,
		Gate:      gate,
		Proxies:   proxies,
	})

	// ── 9. Graceful Shutdown ──────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown_signal_received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server_startup_failed", slog.Any("error", err))
	}

	log.Info("server_shutting_down", slog.Duration("timeout", constants.ShutdownTimeout))

	if err := server.Shutdown(constants.ShutdownTimeout); err != nil {
		log.Error("shutdown_failed", slog.Any("error", err))
		os.Exit(1)
	}

	log.Info("server_stopped")
}

// newLogger builds the JSON logger every entry point shares.
func newLogger(level slog.Level) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", constants.AppName))
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is limited to startup wiring. After startup, all errors are returned and
// handled explicitly.
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup_failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
