// Package main is the entry point for the PaperHub API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/Shimizu-Technology/paperhub-api/internal/config"
	"github.com/Shimizu-Technology/paperhub-api/internal/database"
	"github.com/Shimizu-Technology/paperhub-api/internal/handlers"
	"github.com/Shimizu-Technology/paperhub-api/internal/live"
	"github.com/Shimizu-Technology/paperhub-api/internal/logger"
	"github.com/Shimizu-Technology/paperhub-api/internal/middleware"
	"github.com/Shimizu-Technology/paperhub-api/internal/mongostore"
	"github.com/Shimizu-Technology/paperhub-api/internal/router"
	"github.com/Shimizu-Technology/paperhub-api/internal/services/draft"
	"github.com/Shimizu-Technology/paperhub-api/internal/services/extraction"
	"github.com/Shimizu-Technology/paperhub-api/internal/services/worker"
	"github.com/Shimizu-Technology/paperhub-api/internal/services/workspace"
	"github.com/Shimizu-Technology/paperhub-api/internal/store"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	// Step 1: Load Configuration
	cfg, err := config.Load()
	if err == nil {
		err = cfg.ValidateServer()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Configure(logger.Config{
		Level:  logger.LogLevel(cfg.LogLevel),
		Pretty: cfg.LogPretty,
	})
	log.Info().Str("version", Version).Msg("🚀 PaperHub API starting...")
	log.Info().
		Str("port", cfg.Port).
		Str("store", cfg.StoreBackend).
		Str("provider", cfg.ExtractionProvider).
		Int("workers", cfg.WorkerCount).
		Str("gin_mode", cfg.GinMode).
		Msg("📋 Config loaded")

	gin.SetMode(cfg.GinMode)

	// Go Pattern: main only reports the error. run owns every resource,
	// so its defers close them before the process exits.
	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("❌ PaperHub API stopped")
	}
	log.Info().Msg("👋 Server stopped. Goodbye!")
}

// run wires the services, serves until a signal or a listener failure,
// then shuts down in reverse order.
func run(cfg *config.Config, log zerolog.Logger) error {
	// ctx is cancelled on SIGINT/SIGTERM and stops every background loop
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Step 2: Connect to the store
	base, err := openStore(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer base.Close()

	// Step 3: Live updates. Every successful write is announced on the hub.
	hub, err := openHub(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	if closer, ok := hub.(interface{ Close() error }); ok {
		defer closer.Close()
	}
	s := live.WithNotifications(base, hub)

	// Step 4: Create Services
	backend, err := extraction.NewBackend(cfg)
	if err != nil {
		return fmt.Errorf("failed to configure extraction backend: %w", err)
	}
	gateway, err := extraction.NewGateway(backend, extraction.OptionsFromConfig(cfg), logger.Component("extraction"))
	if err != nil {
		return fmt.Errorf("failed to build extraction gateway: %w", err)
	}
	log.Info().Str("provider", gateway.Provider()).Dur("timeout", cfg.ExtractionTimeout).Msg("✅ Extraction gateway ready")

	drafts := draft.NewSessions(func() *draft.Engine {
		return draft.NewEngine(s, s)
	}, cfg.DraftIdleTimeout, logger.Component("drafts"))
	go drafts.RunJanitor(ctx, time.Minute)

	ws := workspace.NewService(s, logger.Component("workspace"))

	// Step 5: Create and Start Worker Pool
	wp := worker.NewPool(cfg.WorkerCount, cfg.JobQueueSize, s, gateway, logger.Component("worker"))
	wp.Start()
	defer wp.Stop()

	// Step 6: Setup HTTP Router
	h := handlers.NewHandler(s, gateway, drafts, ws, wp, hub, cfg, logger.Component("http"))
	rateLimiter := middleware.NewRateLimiter(ctx, cfg.ExtractionRateLimit)
	r := router.Setup(h, rateLimiter, logger.Component("request"))

	// Step 7: Start the HTTP Server
	srv := &http.Server{
		Addr:        fmt.Sprintf(":%s", cfg.Port),
		Handler:     r,
		ReadTimeout: 30 * time.Second,
		// No WriteTimeout: live feeds stream for as long as the client
		// stays, and extraction calls are bounded by the gateway timeout.
		IdleTimeout: 60 * time.Second,
	}
	srv.RegisterOnShutdown(h.CloseStreams)

	serverErr := make(chan error, 1)
	go func() {
		log.Info().Msgf("🌐 Server listening on http://localhost:%s", cfg.Port)
		log.Info().Msgf("📖 Docs: http://localhost:%s/api/docs", cfg.Port)

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Step 8: Graceful Shutdown
	var serveErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("🛑 Received shutdown signal, shutting down gracefully...")
	case serveErr = <-serverErr:
		log.Error().Err(serveErr).Msg("❌ Server failed")
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("⚠️  Server forced to shutdown")
	}
	return serveErr
}

// openStore connects the configured backend. Postgres runs its
// migrations before serving.
func openStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (store.Store, error) {
	switch cfg.StoreBackend {
	case "memory":
		log.Warn().Msg("⚠️  Using the in-memory store; data is lost on restart")
		return store.NewMemory(), nil

	case "mongo":
		s, err := mongostore.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase, logger.Component("mongo"))
		if err != nil {
			return nil, err
		}
		log.Info().Str("database", cfg.MongoDatabase).Msg("✅ MongoDB connected")
		return s, nil

	default:
		db, err := database.New(cfg.DatabaseURL, cfg.DatabaseDriver)
		if err != nil {
			return nil, err
		}
		log.Info().Str("driver", cfg.DatabaseDriver).Msg("✅ Database connected")

		if err := db.RunMigrations(cfg.MigrationsPath, log); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	}
}

// openHub returns a Redis-backed hub when REDIS_URL is set, so every
// instance sees every write, and an in-process hub otherwise.
func openHub(ctx context.Context, cfg *config.Config, log zerolog.Logger) (live.Hub, error) {
	if cfg.RedisURL == "" {
		log.Info().Msg("📡 Live updates: in-process")
		return live.NewLocalHub(), nil
	}

	hub, err := live.NewRedisHub(ctx, cfg.RedisURL, logger.Component("live"))
	if err != nil {
		return nil, err
	}
	go hub.Run(ctx)
	log.Info().Msg("📡 Live updates: Redis pub/sub")
	return hub, nil
}
