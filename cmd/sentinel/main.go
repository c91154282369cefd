package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/raaihank/compliance-sentinel/internal/api"
	"github.com/raaihank/compliance-sentinel/internal/cache"
	"github.com/raaihank/compliance-sentinel/internal/config"
	"github.com/raaihank/compliance-sentinel/internal/logger"
	"github.com/raaihank/compliance-sentinel/internal/store"
)

var (
	version = api.Version
	commit  = "dev"
	date    = "unknown"
)

func main() {
	var (
		configPath  = flag.String("config", "", "Path to configuration file")
		showVersion = flag.Bool("version", false, "Show version information")
		healthCheck = flag.Bool("health-check", false, "Perform health check and exit")
		healthURL   = flag.String("health-url", "http://localhost:8080/health", "Health endpoint used by -health-check")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("Compliance-Sentinel %s (commit: %s, built: %s)\n", version, commit, date)
		os.Exit(0)
	}

	if *healthCheck {
		performHealthCheck(*healthURL)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	loggerConfig := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	}
	if cfg.Logging.File.Enabled {
		loggerConfig.File = &logger.FileConfig{
			Enabled: true,
			Path:    cfg.Logging.File.Path,
		}
	}

	log, err := logger.New(loggerConfig)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting Compliance-Sentinel",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("build_date", date),
		zap.Int("port", cfg.Server.Port),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	deps, cleanup, err := initializeBackends(ctx, cfg, log)
	cancel()
	if err != nil {
		log.Fatal("Failed to initialize backends", zap.Error(err))
	}
	defer cleanup()

	server, err := api.New(cfg, log, deps)
	if err != nil {
		log.Fatal("Failed to create API server", zap.Error(err))
	}

	if *configPath != "" {
		err := config.Watch(func(updated *config.Config) {
			if err := server.SetLogLevel(updated.Logging.Level); err != nil {
				log.Warn("Failed to apply log level", zap.Error(err))
				return
			}
			log.Info("Configuration reloaded", zap.String("log_level", updated.Logging.Level))
		}, func(err error) {
			log.Warn("Ignoring configuration change", zap.Error(err))
		})
		if err != nil {
			log.Warn("Configuration hot reload disabled", zap.Error(err))
		}
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.Int("port", cfg.Server.Port))
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			log.Error("Server error", zap.Error(err))
		}
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		// Give outstanding requests 30 seconds to complete
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := server.Stop(ctx); err != nil {
			log.Error("Failed to shutdown server gracefully", zap.Error(err))
			return
		}

		log.Info("Server shutdown complete")
	}
}

// initializeBackends connects the optional Redis cache and Postgres store
func initializeBackends(ctx context.Context, cfg *config.Config, log *logger.Logger) (api.Dependencies, func(), error) {
	var (
		deps    api.Dependencies
		closers []func() error
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil {
				log.Warn("Failed to close backend", zap.Error(err))
			}
		}
	}

	if cfg.Cache.Enabled {
		assessmentCache, err := cache.New(ctx, &cache.Config{
			RedisURL:       cfg.Cache.RedisURL,
			MaxConnections: cfg.Cache.MaxConnections,
			MinIdleConns:   cfg.Cache.MinIdleConns,
			DefaultTTL:     cfg.Cache.DefaultTTL,
			KeyPrefix:      cfg.Cache.KeyPrefix,
		}, log.WithComponent("cache").Logger)
		if err != nil {
			// the cache only saves work, so run without it
			log.Warn("Assessment cache unavailable, continuing without it", zap.Error(err))
		} else {
			deps.Cache = assessmentCache
			closers = append(closers, assessmentCache.Close)
		}
	}

	if cfg.Database.Enabled {
		reportStore, err := store.NewStore(ctx, &store.Config{
			DatabaseURL:     cfg.Database.DatabaseURL,
			MaxOpenConns:    cfg.Database.MaxOpenConns,
			MaxIdleConns:    cfg.Database.MaxIdleConns,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		}, log.WithComponent("store").Logger)
		if err != nil {
			cleanup()
			return deps, nil, fmt.Errorf("failed to connect report store: %w", err)
		}
		closers = append(closers, reportStore.Close)

		if err := reportStore.Migrate(ctx); err != nil {
			cleanup()
			return deps, nil, fmt.Errorf("failed to migrate report store: %w", err)
		}
		deps.Store = reportStore
	}

	return deps, cleanup, nil
}

// performHealthCheck performs a health check against the running server
func performHealthCheck(url string) {
	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	resp, err := client.Get(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Health check failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		fmt.Fprintf(os.Stderr, "Health check failed: HTTP %d\n", resp.StatusCode)
		os.Exit(1)
	}

	fmt.Println("Health check passed")
	os.Exit(0)
}
