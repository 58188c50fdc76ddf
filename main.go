package main

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/academy-stats/internal/auth"
	"github.com/mauv0809/academy-stats/internal/catalog"
	"github.com/mauv0809/academy-stats/internal/config"
	"github.com/mauv0809/academy-stats/internal/dashboard"
	"github.com/mauv0809/academy-stats/internal/database"
	server "github.com/mauv0809/academy-stats/internal/http"
	"github.com/mauv0809/academy-stats/internal/metrics"
	"github.com/mauv0809/academy-stats/internal/notifier/slack"
	"github.com/mauv0809/academy-stats/internal/pubsub"
	"github.com/mauv0809/academy-stats/internal/records"
	"github.com/redis/go-redis/v9"
)

func main() {
	// Start profiling timer
	startTime := time.Now()
	log.SetFormatter(log.JSONFormatter)
	cfg := config.Load()

	metricsSvc := metrics.NewService()
	metricsHandler := metrics.NewMetricsHandler()

	var (
		catalogStore catalog.Persister
		backend      records.Backend
	)
	switch cfg.StorageBackend {
	case config.BackendSQL:
		db, dbTeardown := openDB(cfg)
		defer func() {
			log.Info("Closing database connection")
			dbTeardown()
		}()
		catalogStore = catalog.NewSQLStore(db)
		backend = records.NewSQLBackend(db)
	default:
		catalogStore = catalog.NewFileStore(cfg.CatalogPath)
		backend = records.NewCSVBackend(cfg.DataDir)
	}
	log.Info("Storage configured", "backend", cfg.StorageBackend)

	catalogSvc, err := catalog.NewService(catalogStore)
	if err != nil {
		log.Fatalf("Failed to load position catalog: %s", err)
	}

	cache, cacheTeardown := newCache(cfg)
	defer cacheTeardown()
	store := records.NewStore(backend, cache, metricsSvc)

	notifier := slack.NewNotifier(cfg.Slack.Token, cfg.Slack.ChannelID, metricsSvc)
	pubsub := pubsub.New(cfg.ProjectID)
	defer pubsub.Close()

	dash := dashboard.New(catalogSvc, store, records.NewTeams(cfg.Teams), metricsSvc, notifier, pubsub)
	sessions := auth.NewSessionManager(cfg.Coach.Password, cfg.Coach.SessionTTL)

	s := server.NewServer(dash, sessions, metricsHandler, cfg, notifier)

	// --- Record startup time ---
	startupDuration := time.Since(startTime)
	metricsSvc.SetStartupTime(startupDuration.Seconds())
	log.Info("Startup time recorded", "duration_ms", startupDuration.Milliseconds())

	// --- Graceful shutdown setup ---
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the server
	serverErrors := make(chan error, 1)

	go func() {
		log.Info("Server started", "port", cfg.Port)
		serverErrors <- srv.ListenAndServe()
	}()

	// Channel to listen for interrupt signals
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Block until we receive a signal or an error
	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", "signal", sig)

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Server shutdown failed", "error", err)
		} else {
			log.Info("Server gracefully stopped")
		}
	}

	log.Info("Server process shutting down")
}

func openDB(cfg config.Config) (*sql.DB, func()) {
	start := time.Now()
	db, dbTeardown, err := database.InitDB(cfg.DBName, cfg.Turso.PrimaryURL, cfg.Turso.AuthToken)
	if err != nil {
		log.Fatalf("Failed to initialize database: %s", err)
	}
	log.Info("Database initialization time recorded", "duration_ms", time.Since(start).Milliseconds())
	return db, dbTeardown
}

// newCache returns the Redis cache when REDIS_URL is set and the in-process
// cache otherwise.
func newCache(cfg config.Config) (records.Cache, func()) {
	if cfg.Cache.RedisURL == "" {
		log.Info("Using in-memory read cache", "ttl", cfg.Cache.TTL)
		return records.NewMemoryCache(cfg.Cache.TTL), func() {}
	}
	opts, err := redis.ParseURL(cfg.Cache.RedisURL)
	if err != nil {
		log.Fatalf("Invalid REDIS_URL: %s", err)
	}
	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %s", err)
	}
	log.Info("Using Redis read cache", "addr", opts.Addr, "ttl", cfg.Cache.TTL)
	return records.NewRedisCache(client, cfg.Cache.TTL), func() {
		if err := client.Close(); err != nil {
			log.Error("Failed to close Redis client", "error", err)
		}
	}
}
