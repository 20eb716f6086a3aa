package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/taskhub-api/internal/config"
	"github.com/phrazzld/taskhub-api/internal/platform/database"
	"github.com/phrazzld/taskhub-api/internal/platform/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/crypto/bcrypt"
)

// application holds the shared dependencies of a running taskhub process
// and releases them on shutdown.
type application struct {
	config   *config.Config
	logger   *slog.Logger
	closeLog func() error

	db     *database.DB
	stores database.Stores

	registry *prometheus.Registry
}

// newApplication sets up logging, opens the database and, when the profile
// asks for it, applies pending migrations.
func newApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	log, closeLog, err := logger.Setup(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	log.Info("configuration loaded",
		slog.String("profile", cfg.Profile.String()),
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Log.Level))

	db, err := database.Open(ctx, cfg.Database, log)
	if err != nil {
		_ = closeLog()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	app := newApplicationWithDB(cfg, log, db)
	app.closeLog = closeLog

	if cfg.Database.AutoMigrate {
		if err := db.MigrateUp(ctx, log); err != nil {
			app.cleanup()
			return nil, fmt.Errorf("failed to apply migrations: %w", err)
		}
	}

	return app, nil
}

// newApplicationWithDB wires the stores and metrics registry around an
// already open database.
func newApplicationWithDB(cfg *config.Config, log *slog.Logger, db *database.DB) *application {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &application{
		config:   cfg,
		logger:   log,
		closeLog: func() error { return nil },
		db:       db,
		stores:   db.Stores(bcrypt.DefaultCost, log),
		registry: registry,
	}
}

// Run serves HTTP until ctx is canceled or a shutdown signal arrives.
func (app *application) Run(ctx context.Context) error {
	router, err := app.setupRouter()
	if err != nil {
		return fmt.Errorf("failed to set up router: %w", err)
	}

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup closes the database and the log file.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", slog.String("error", err.Error()))
		}
	}

	app.logger.Info("application shutdown completed")

	if err := app.closeLog(); err != nil {
		app.logger.Error("error closing log file", slog.String("error", err.Error()))
	}
}
