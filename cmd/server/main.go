package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/JonMunkholm/scenecsv/internal/broker"
	"github.com/JonMunkholm/scenecsv/internal/catalog"
	"github.com/JonMunkholm/scenecsv/internal/config"
	"github.com/JonMunkholm/scenecsv/internal/core"
	"github.com/JonMunkholm/scenecsv/internal/logging"
	"github.com/JonMunkholm/scenecsv/internal/profile"
	"github.com/JonMunkholm/scenecsv/internal/scene"
	"github.com/JonMunkholm/scenecsv/internal/source"
	"github.com/JonMunkholm/scenecsv/internal/web"
)

func main() {
	// Overload so a local .env wins over the shell environment
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	logger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"source_root", cfg.Source.Root,
		"profiles_dir", cfg.Profiles.Dir,
		"database", cfg.Database.Enabled(),
		"broker", cfg.Broker.Enabled(),
		"spawn_max_concurrent", cfg.Spawn.MaxConcurrent,
	)
	logger.Debug("effective configuration", "config", cfg.String())

	ctx := context.Background()

	profiles, err := profile.LoadDir(cfg.Profiles.Dir)
	if err != nil {
		logger.Error("failed to load profiles", "dir", cfg.Profiles.Dir, "error", err)
		os.Exit(1)
	}
	logger.Info("profiles loaded", "count", profiles.Len(), "names", profiles.Names())

	resolver, closeCatalog, err := openCatalog(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to open prefab catalog", "error", err)
		os.Exit(1)
	}
	defer closeCatalog()

	var sinks []scene.Sink
	if cfg.Broker.Enabled() {
		pub, err := broker.Connect(broker.Config{
			URL:         cfg.Broker.URL,
			ClientID:    cfg.Broker.ClientID,
			Username:    cfg.Broker.Username,
			Password:    cfg.Broker.Password,
			TopicPrefix: cfg.Broker.TopicPrefix,
			Scene:       cfg.Broker.Scene,
			QoS:         byte(cfg.Broker.QoS),
		}, logger)
		if err != nil {
			logger.Error("failed to connect to broker", "error", err)
			os.Exit(1)
		}
		defer pub.Close()
		sinks = append(sinks, pub)
	}

	service, err := core.NewService(core.Options{
		Profiles:      profiles,
		Source:        source.NewFileProvider(cfg.Source.Root, cfg.Source.MaxSize),
		Catalog:       resolver,
		Sinks:         sinks,
		MaxConcurrent: cfg.Spawn.MaxConcurrent,
		MaxWait:       cfg.Spawn.MaxWaitTime,
		Timeout:       cfg.Spawn.Timeout,
		HistorySize:   cfg.Spawn.HistorySize,
		Logger:        logger,
	})
	if err != nil {
		logger.Error("failed to create service", "error", err)
		os.Exit(1)
	}

	server := web.NewServer(service, web.Options{
		RequestTimeout: cfg.Server.RequestTimeout,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxBodySize:    cfg.Server.MaxBodySize,
		TrustedProxies: cfg.Server.TrustedProxies,
		APIKeys:        cfg.Server.APIKeys,
	})

	jobCtx, cancelJobs := context.WithCancel(context.Background())

	go service.StartHistoryPruner(jobCtx, core.PruneConfig{
		MaxAge:        cfg.Spawn.HistoryMaxAge,
		CheckInterval: cfg.Spawn.PruneInterval,
	})

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		logger.Info("shutting down...")
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if status := service.LimiterStatus(); status.Active > 0 {
			logger.Info("waiting for spawns to complete", "active", status.Active)
			if err := service.WaitForDrain(shutdownCtx); err != nil {
				logger.Warn("spawns did not complete in time", "error", err)
			} else {
				logger.Info("all spawns completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", "error", err)
		}
	}()

	addr := cfg.Server.Addr()
	logger.Info("server starting", "addr", addr)
	if err := server.Start(addr); err != nil {
		logger.Info("server stopped", "error", err)
	}
}

// openCatalog returns the Postgres catalog when a database is configured and
// an in-memory one otherwise. CATALOG_PREFABS seeds either.
func openCatalog(ctx context.Context, cfg *config.Config, logger *slog.Logger) (catalog.Resolver, func(), error) {
	if !cfg.Database.Enabled() {
		mem := catalog.NewMemory()
		mem.RegisterNames(cfg.Catalog.Prefabs...)
		logger.Info("using in-memory prefab catalog", "prefabs", mem.Len())
		return mem, func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	if u, err := url.Parse(cfg.Database.URL); err == nil {
		logger.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		logger.Info("connected to database")
	}

	pg := catalog.NewPostgres(pool)
	if err := pg.EnsureSchema(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	seed := make([]catalog.Prefab, 0, len(cfg.Catalog.Prefabs))
	for _, name := range cfg.Catalog.Prefabs {
		seed = append(seed, catalog.Prefab{Name: name})
	}
	if err := pg.Seed(ctx, seed); err != nil {
		pool.Close()
		return nil, nil, err
	}

	return pg, pool.Close, nil
}
