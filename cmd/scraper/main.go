package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"tippmix_scraper/internal/config"
	"tippmix_scraper/internal/fetcher"
	"tippmix_scraper/internal/parser"
	"tippmix_scraper/internal/pipeline"
	"tippmix_scraper/internal/scheduler"
	"tippmix_scraper/internal/storage"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if config.IsHelp(err) {
			return
		}
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	store, err := storage.NewSQLite(cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = store.Close() }()

	tables := parser.DefaultTables()
	if cfg.AliasFile != "" {
		tables, err = parser.LoadTables(cfg.AliasFile)
		if err != nil {
			log.Error("load alias tables", "path", cfg.AliasFile, "error", err)
			os.Exit(1)
		}
	}

	pipe := pipeline.New(store, parser.NewWithTables(tables), log)

	f := fetcher.New(&http.Client{Timeout: 30 * time.Second})
	f.SetUserAgent(cfg.UserAgent)

	sched := scheduler.NewWithFetcher(pipe, f, cfg.Endpoints, log)
	sched.SetTickInterval(cfg.Interval())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("starting scraper", "endpoints", len(cfg.Endpoints), "interval", cfg.Interval())

	sched.Run(ctx)

	log.Info("scraper stopped")
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
