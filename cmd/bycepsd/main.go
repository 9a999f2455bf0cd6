// Copyright (c) 2014-2026 Jochen Kupperschmidt
// SPDX-License-Identifier: BSD-3-Clause

// Command bycepsd serves versioned content: site pages by URL path,
// published news items by slug, and snippets over the JSON API.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/byceps/byceps-go/internal/cache"
	"github.com/byceps/byceps-go/internal/config"
	"github.com/byceps/byceps-go/internal/handler"
	"github.com/byceps/byceps-go/internal/handler/api"
	"github.com/byceps/byceps-go/internal/i18n"
	"github.com/byceps/byceps-go/internal/logging"
	"github.com/byceps/byceps-go/internal/middleware"
	"github.com/byceps/byceps-go/internal/render"
	"github.com/byceps/byceps-go/internal/scheduler"
	"github.com/byceps/byceps-go/internal/service"
	"github.com/byceps/byceps-go/internal/store"
	"github.com/byceps/byceps-go/internal/webhook"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("bycepsd %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load a .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure the data directory exists
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// Stores
	snippetStore := store.NewSnippetStore(db)
	pageStore := store.NewPageStore(db)
	newsStore := store.NewNewsStore(db)
	siteStore := store.NewSiteStore(db)
	userStore := store.NewUserStore(db)
	eventStore := store.NewEventStore(db)

	// Upgrade the logger to also write WARN and ERROR entries to the
	// event log table
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(logging.NewEventLogHandler(textHandler, eventStore))
	slog.SetDefault(logger)

	clock := service.SystemClock{}
	idGen := service.UUIDGenerator{}
	sites := service.NewStoreSiteDirectory(siteStore)
	users := service.NewStoreUserDirectory(userStore)

	eventService := service.NewEventService(eventStore, clock, logger)

	// Domain events go to the audit log and, if configured, to webhooks
	sinks := service.MultiEventSink{service.NewAuditEventSink(eventService)}

	var dispatcher *webhook.Dispatcher
	if cfg.WebhooksEnabled() {
		endpoints := make([]webhook.Endpoint, 0, len(cfg.WebhookURLs))
		for _, url := range cfg.WebhookURLs {
			endpoints = append(endpoints, webhook.Endpoint{URL: url, Secret: cfg.WebhookSecret})
		}
		dispatcher = webhook.NewDispatcher(webhook.Config{Endpoints: endpoints}, logger)
		dispatcher.Start()
		defer dispatcher.Stop()
		sinks = append(sinks, dispatcher)
		slog.Info("webhook dispatcher started", "endpoints", len(endpoints))
	}

	// Services
	snippets := service.NewSnippetService(snippetStore, clock, idGen, sinks, logger)
	pages := service.NewPageService(pageStore, clock, idGen, sinks, logger)
	renderer := render.New(snippets, cache.NewResolver(pages), cfg.DefaultLanguage, logger)
	news := service.NewNewsService(newsStore, sites, users, renderer, clock, idGen, sinks, logger)

	negotiator, err := i18n.NewNegotiator(cfg.SupportedLanguages, cfg.DefaultLanguage)
	if err != nil {
		return fmt.Errorf("configuring language negotiation: %w", err)
	}

	// Background jobs
	sched := scheduler.New(eventService,
		time.Duration(cfg.EventRetentionDays)*24*time.Hour, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	// Handlers
	publicHandler := handler.New(pages, news, sites, renderer, negotiator, logger)
	apiHandler := api.NewHandler(snippets, renderer, logger)
	healthHandler := handler.NewHealthHandler(db)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(logger))
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(cache.Middleware(pages))

	r.Get("/health", healthHandler.Health)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.RateLimit(cfg.APIRateLimit, cfg.APIRateBurst))
		r.Get("/snippets/by_name/{scope_type}/{scope_name}/{name}/{language}",
			apiHandler.GetSnippetByName)
	})

	r.Route("/{site_id}", func(r chi.Router) {
		r.Get("/news", publicHandler.ServeNewsIndex)
		r.Get("/news/{slug}", publicHandler.ServeNewsItem)
		r.Get("/*", publicHandler.ServePage)
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
