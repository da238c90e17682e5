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

	"github.com/oceandata/cruisedash/internal/audit"
	"github.com/oceandata/cruisedash/internal/check"
	"github.com/oceandata/cruisedash/internal/config"
	"github.com/oceandata/cruisedash/internal/dataset"
	"github.com/oceandata/cruisedash/internal/logging"
	"github.com/oceandata/cruisedash/internal/store"
	"github.com/oceandata/cruisedash/internal/submit"
	"github.com/oceandata/cruisedash/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"store_root", cfg.Store.Root,
		"checker_url", cfg.Checker.URL,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	// Parse and configure connection pool for the QC event database
	poolConfig, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		slog.Error("failed to parse database URL", "error", err)
		os.Exit(1)
	}
	poolConfig.MaxConns = int32(cfg.Database.MaxConns)
	poolConfig.MinConns = int32(cfg.Database.MinConns)
	poolConfig.MaxConnLifetime = cfg.Database.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Database.MaxConnIdleTime

	ctx := context.Background()
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		os.Exit(1)
	}

	// Log which database we connected to
	if u, err := url.Parse(cfg.Database.URL); err == nil {
		dbName := strings.TrimPrefix(u.Path, "/")
		slog.Info("connected to database", "name", dbName)
	} else {
		slog.Info("connected to database")
	}

	events := audit.NewStore(pool)
	if err := events.EnsureSchema(ctx); err != nil {
		slog.Error("failed to create QC event schema", "error", err)
		os.Exit(1)
	}

	datasets, err := store.NewFileStore(cfg.Store.Root)
	if err != nil {
		slog.Error("failed to open dataset store", "error", err)
		os.Exit(1)
	}

	reindexer, err := submit.NewFileReindexer(cfg.Submit.ReindexDir)
	if err != nil {
		slog.Error("failed to open reindex spool", "error", err)
		os.Exit(1)
	}

	engine := check.NewHTTPEngine(cfg.Checker.URL, cfg.Checker.Timeout)
	checker := check.NewDatasetChecker(engine, dataset.DefaultVocabulary())

	submitter := &submit.Submitter{
		Datasets:            datasets,
		Checker:             checker,
		Events:              events,
		Reindex:             reindexer,
		MaxAcceptableErrors: cfg.Submit.MaxAcceptableErrors,
		Version:             cfg.Submit.Version,
	}

	server := web.NewServer(cfg, datasets, checker, submitter, events)

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(cfg.Server.Addr()); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
