// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

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

	"github.com/innovationlab/innolab/internal/cache"
	"github.com/innovationlab/innolab/internal/config"
	"github.com/innovationlab/innolab/internal/geoip"
	"github.com/innovationlab/innolab/internal/handler"
	"github.com/innovationlab/innolab/internal/handler/api"
	"github.com/innovationlab/innolab/internal/imaging"
	"github.com/innovationlab/innolab/internal/logging"
	"github.com/innovationlab/innolab/internal/middleware"
	"github.com/innovationlab/innolab/internal/scheduler"
	"github.com/innovationlab/innolab/internal/service"
	"github.com/innovationlab/innolab/internal/session"
	"github.com/innovationlab/innolab/internal/store"
	"github.com/innovationlab/innolab/internal/version"
)

const requestTimeout = 30 * time.Second

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "innolab - Innovation Lab content API\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  INNOLAB_SESSION_SECRET    Session and CSRF key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  INNOLAB_DB_PATH           SQLite database path (default: ./data/innolab.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  INNOLAB_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  INNOLAB_ENV               development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  INNOLAB_UPLOADS_DIR       Gallery upload directory (default: ./uploads)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  INNOLAB_REDIS_URL         Redis URL for the response cache (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  INNOLAB_GEOIP_DB_PATH     GeoLite2 country database (optional)\n")
	}
	flag.Parse()

	if *showVersion {
		_, _ = fmt.Printf("innolab %s\n", version.Get())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
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
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(textHandler))

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	if err := os.MkdirAll(cfg.UploadsDir, 0o755); err != nil {
		return fmt.Errorf("creating uploads directory: %w", err)
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

	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	// From here on, warnings and errors also land in the activity log.
	logger := slog.New(logging.NewActivityLogHandler(textHandler, db))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.DoSeed {
		if err := store.SeedAdmin(ctx, db, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
			return fmt.Errorf("seeding admin: %w", err)
		}
	}

	geo, err := geoip.Open(cfg.GeoIPDBPath)
	if err != nil {
		slog.Warn("geoip database unavailable, country lookup disabled", "path", cfg.GeoIPDBPath, "error", err)
	}
	defer func() { _ = geo.Close() }()

	sessions := session.New(db, cfg.SessionLifetime, cfg.IsDevelopment())
	activity := service.NewActivityService(db)
	authService := service.NewAuthService(db, sessions, geo, activity)

	backend := cache.New(ctx, cache.Config{
		RedisURL: cfg.RedisURL,
		Prefix:   cfg.CachePrefix,
		TTL:      time.Duration(cfg.CacheTTL) * time.Second,
		MaxSize:  cfg.CacheMaxSize,
	}, logger)
	defer func() { _ = backend.Close() }()
	responses := cache.NewResponses(backend, time.Duration(cfg.CacheTTL)*time.Second, logger)

	var cachePinger handler.Pinger
	if p, ok := backend.(handler.Pinger); ok {
		cachePinger = p
	}

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	defer loginProtection.Close()

	sched := scheduler.New(logger)
	for _, job := range scheduler.MaintenanceJobs(scheduler.Deps{
		DB:                db,
		Activity:          activity,
		GeoIP:             geo,
		ActivityRetention: time.Duration(cfg.ActivityRetentionDays) * 24 * time.Hour,
		OnContentChange:   responses.Invalidate,
		Logger:            logger,
	}) {
		if err := sched.Add(job); err != nil {
			return fmt.Errorf("scheduling %s: %w", job.Name, err)
		}
	}
	sched.Start()
	defer sched.Stop()

	apiHandler := api.NewHandler(api.Deps{
		DB:              db,
		Auth:            authService,
		Activity:        activity,
		LoginProtection: loginProtection,
		ContactLimiter:  middleware.NewRateLimiter("contact", cfg.ContactRate, cfg.ContactBurst),
		Responses:       responses,
		Images:          imaging.NewProcessor(cfg.UploadsDir),
	})
	health := handler.NewHealthHandler(db, cachePinger, cfg.UploadsDir)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	if cfg.TrustProxy {
		r.Use(chimw.RealIP)
	}
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.StripSlashes)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig([]byte(cfg.SessionSecret), cfg.IsDevelopment(), cfg.TrustedOrigins)))
	r.Use(sessions.Load)
	r.Use(middleware.CurrentUser(authService))

	r.Mount("/api", apiHandler.Routes(health))

	// Uploads: cache for 1 week
	uploads := middleware.StaticCache(604800)(http.StripPrefix("/uploads/", http.FileServer(http.Dir(cfg.UploadsDir))))
	r.Handle("/uploads/*", uploads)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serveErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", version.Get().Version)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
