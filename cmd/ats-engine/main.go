package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/terra-clan/ats-engine/internal/ai"
	"github.com/terra-clan/ats-engine/internal/api"
	"github.com/terra-clan/ats-engine/internal/cache"
	"github.com/terra-clan/ats-engine/internal/config"
	"github.com/terra-clan/ats-engine/internal/extract"
	"github.com/terra-clan/ats-engine/internal/health"
	"github.com/terra-clan/ats-engine/internal/hiring"
	"github.com/terra-clan/ats-engine/internal/metrics"
	"github.com/terra-clan/ats-engine/internal/pipeline"
	"github.com/terra-clan/ats-engine/internal/reconcile"
	"github.com/terra-clan/ats-engine/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	level, _ := cfg.SlogLevel()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	slog.Info("starting ats-engine",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"database_driver", cfg.Database.Driver,
	)

	metrics.Register()

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	repo, err := openRepository(initCtx, cfg.Database)
	if err != nil {
		slog.Error("failed to open repository", "error", err)
		os.Exit(1)
	}

	store, err := openCache(initCtx, cfg)
	if err != nil {
		slog.Error("failed to open cache", "error", err)
		os.Exit(1)
	}

	// A missing API key leaves the service up; analysis requests report it
	var generator ai.Generator
	if cfg.AI.APIKey != "" {
		gemini, err := ai.NewGeminiClient(initCtx, ai.GeminiConfig{
			APIKey:            cfg.AI.APIKey,
			Model:             cfg.AI.Model,
			RequestsPerMinute: cfg.AI.RequestsPerMin,
			RequestsPerDay:    cfg.AI.RequestsPerDay,
			MaxAttempts:       cfg.AI.MaxAttempts,
		})
		if err != nil {
			slog.Error("failed to create gemini client", "error", err)
			os.Exit(1)
		}
		defer gemini.Close()
		generator = gemini
		slog.Info("gemini client ready", "model", gemini.ModelName())
	} else {
		slog.Warn("GEMINI_API_KEY not set, resume analysis is disabled")
	}

	requestor := ai.NewRequestor(generator,
		ai.WithCache(store),
		ai.WithTimeout(cfg.AI.Timeout),
		ai.WithModelName(cfg.AI.Model),
	)

	manager := hiring.NewManager(repo)
	builder := pipeline.NewBuilder(manager, repo, requestor)
	extractor := extract.NewExtractor(cfg.Upload.Dir, cfg.Upload.ExtractionTimeout)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start candidate counter reconciler
	var reconciler *reconcile.Reconciler
	if cfg.Reconcile.Schedule != "" {
		reconciler, err = reconcile.NewReconciler(repo, cfg.Reconcile.Schedule)
		if err != nil {
			slog.Error("failed to create reconciler", "error", err)
			os.Exit(1)
		}
		reconciler.Start(ctx)
	}

	checks := health.NewRegistry()
	checks.Register("database", health.CheckFunc(repo.Ping))
	checks.Register("cache", health.CheckFunc(store.Ping))

	// Setup HTTP server
	server := api.NewServer(cfg.Server, api.Deps{
		Manager:        manager,
		Builder:        builder,
		Extractor:      extractor,
		Repo:           repo,
		Checks:         checks,
		SeedDir:        cfg.Seed.Dir,
		UploadMaxBytes: cfg.Upload.MaxBytes,
	})
	httpServer := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: server.Router(),
		// Analysis can run up to the request timeout
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Server.RequestTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Cancel context to stop background workers
	cancel()
	if reconciler != nil {
		reconciler.Stop()
	}

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	if err := store.Close(); err != nil {
		slog.Error("cache close error", "error", err)
	}
	if err := repo.Close(); err != nil {
		slog.Error("repository close error", "error", err)
	}

	slog.Info("ats-engine stopped")
}

func openRepository(ctx context.Context, cfg config.DatabaseConfig) (storage.Repository, error) {
	if cfg.Driver == config.DriverMemory {
		slog.Warn("using in-memory repository, data is lost on restart")
		return storage.NewMemoryRepository(), nil
	}

	repo, err := storage.NewPostgresRepository(ctx, storage.PostgresConfig{
		DSN:          cfg.DSN,
		MaxOpenConns: int32(cfg.MaxOpenConns),
		MaxIdleConns: int32(cfg.MaxIdleConns),
	})
	if err != nil {
		return nil, err
	}

	slog.Info("running database migrations", "dir", cfg.MigrationsDir)
	if err := storage.MigrateDir(ctx, repo, cfg.MigrationsDir); err != nil {
		repo.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("database connected successfully")
	return repo, nil
}

func openCache(ctx context.Context, cfg *config.Config) (cache.Store, error) {
	if cfg.Redis.Address == "" {
		return cache.NewMemoryStore(cfg.Cache.TTL), nil
	}
	return cache.NewRedisStore(ctx, cache.RedisConfig{
		Address:  cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Prefix:   "ats:",
		TTL:      cfg.Cache.TTL,
	})
}
