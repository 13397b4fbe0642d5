package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/terra-clan/graduate-survey/internal/api"
	"github.com/terra-clan/graduate-survey/internal/auth"
	"github.com/terra-clan/graduate-survey/internal/catalog"
	"github.com/terra-clan/graduate-survey/internal/cleanup"
	"github.com/terra-clan/graduate-survey/internal/config"
	"github.com/terra-clan/graduate-survey/internal/events"
	"github.com/terra-clan/graduate-survey/internal/health"
	"github.com/terra-clan/graduate-survey/internal/sessions"
	"github.com/terra-clan/graduate-survey/internal/storage"
	"github.com/terra-clan/graduate-survey/internal/submissions"
	"github.com/terra-clan/graduate-survey/internal/survey"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	closeLog := setupLogging(cfg.Log)
	defer closeLog()

	slog.Info("starting graduate-survey",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"storage", cfg.Database.Driver,
		"sessions", cfg.Sessions.Driver,
	)

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	// Load catalogs
	catalogs := catalog.NewLoader()
	if err := catalogs.LoadFromDir(cfg.Catalog.Dir); err != nil {
		slog.Error("failed to load catalogs", "dir", cfg.Catalog.Dir, "error", err)
		os.Exit(1)
	}
	if _, err := catalogs.Get(cfg.Catalog.DefaultLanguage); err != nil {
		slog.Error("default language has no catalog", "language", cfg.Catalog.DefaultLanguage, "error", err)
		os.Exit(1)
	}

	hub := events.NewHub()
	registry := health.NewRegistry()

	// Submission storage
	var (
		repo     storage.Repository
		listener *storage.Listener
		svcOpts  []submissions.Option
	)
	switch cfg.Database.Driver {
	case config.DriverPostgres:
		pg, err := storage.NewPostgresRepository(initCtx, storage.PostgresConfig{
			DSN:          cfg.Database.DSN,
			MaxOpenConns: cfg.Database.MaxConns,
			MaxIdleConns: cfg.Database.MinConns,
		})
		if err != nil {
			slog.Error("failed to create database repository", "error", err)
			os.Exit(1)
		}
		slog.Info("running database migrations", "dir", cfg.Database.MigrationsDir)
		if err := storage.RunMigrations(initCtx, pg.Pool(), cfg.Database.MigrationsDir); err != nil {
			slog.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		repo = pg
		listener = storage.NewListener(cfg.Database.DSN)
		slog.Info("database connected successfully")
	default:
		repo = storage.NewMemoryRepository()
		svcOpts = append(svcOpts, submissions.WithNotifier(hub.Publish))
		slog.Warn("using in-memory submission storage, data is lost on restart")
	}
	registry.Register("storage", repo)

	// Respondent sessions
	var (
		store  sessions.Store
		purger cleanup.SessionPurger
	)
	switch cfg.Sessions.Driver {
	case config.DriverRedis:
		rs, err := sessions.NewRedisStore(initCtx, sessions.RedisConfig{
			Address:  cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			slog.Error("failed to create redis session store", "error", err)
			os.Exit(1)
		}
		store = rs
	default:
		ms := sessions.NewMemoryStore()
		store = ms
		purger = ms
	}
	registry.Register("sessions", store)

	pageOpts := survey.PageOptions{
		PageSize:           cfg.Pages.PageSize,
		BigCheckboxOptions: cfg.Pages.BigCheckboxOptions,
		MatrixMinRun:       cfg.Pages.MatrixMinRun,
		Matrix:             cfg.Pages.Matrix,
	}

	svc := submissions.NewService(repo, svcOpts...)
	manager := sessions.NewManager(store, catalogs, svc, pageOpts, cfg.Sessions.TTL)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start background workers
	cleanup.NewCleaner(purger, repo, cfg.Cleanup.PartialRetention, cfg.Cleanup.Interval).Start(ctx)

	if listener != nil {
		go func() {
			if err := listener.Run(ctx, hub.Publish); err != nil {
				slog.Error("submission listener failed", "error", err)
			}
		}()
	}

	// Setup HTTP server
	server := api.NewServer(cfg.Server, api.Deps{
		Catalogs:    catalogs,
		Submissions: svc,
		Sessions:    manager,
		Auth: auth.NewManager(auth.Config{
			Password:     cfg.Admin.Password,
			PasswordHash: cfg.Admin.PasswordHash,
			Secret:       cfg.Admin.TokenSecret,
			TTL:          cfg.Admin.TokenTTL,
		}),
		Health:          registry,
		Events:          hub,
		PageOptions:     pageOpts,
		DefaultLanguage: cfg.Catalog.DefaultLanguage,
		Location:        cfg.Location(),
	})
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

	// Shutdown HTTP server with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	if err := store.Close(); err != nil {
		slog.Error("session store close error", "error", err)
	}
	if err := repo.Close(); err != nil {
		slog.Error("repository close error", "error", err)
	}

	slog.Info("graduate-survey stopped")
}

// setupLogging installs the JSON slog handler, teeing into a rotated file
// when LOG_FILE is set
func setupLogging(cfg config.LogConfig) func() {
	opts := &slog.HandlerOptions{Level: cfg.SlogLevel()}

	if cfg.File == "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, opts)))
		return func() {}
	}

	logFile := &lumberjack.Logger{
		Filename:   cfg.File,
		MaxSize:    50, // megabytes
		MaxAge:     30, // days
		MaxBackups: 5,
		Compress:   true,
	}
	w := io.MultiWriter(os.Stdout, logFile)
	slog.SetDefault(slog.New(slog.NewJSONHandler(w, opts)))
	return func() { logFile.Close() }
}
