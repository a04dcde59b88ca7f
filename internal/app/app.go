package app

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/sundayezeilo/videorecords/internal/config"
	"github.com/sundayezeilo/videorecords/internal/db"
	"github.com/sundayezeilo/videorecords/internal/server"
	"github.com/sundayezeilo/videorecords/internal/video"
)

// App holds the application dependencies and configuration.
type App struct {
	Config  *config.Config
	Logger  *slog.Logger
	DBPool  *pgxpool.Pool // set when DB_DRIVER=postgres
	SQLite  *sql.DB       // set when DB_DRIVER=sqlite
	Server  *server.Server
	Handler *video.Handler
}

// New initializes and returns a new App instance with all dependencies wired up.
func New(ctx context.Context) (*App, error) {
	if err := loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load environment: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := setupLogger(cfg.App.LogLevel)

	logger.Info("starting application",
		"env", cfg.App.Environment,
		"service", cfg.App.ServiceName,
		"version", cfg.App.ServiceVersion,
	)

	a := &App{
		Config: cfg,
		Logger: logger,
	}

	repo, err := a.openRepository(ctx)
	if err != nil {
		_ = a.Shutdown()
		return nil, err
	}

	svc := video.NewService(repo)
	a.Handler = video.NewHandler(video.HandlerConfig{
		Service: svc,
		Logger:  logger,
	})
	a.Server = server.New(cfg, logger, a.Handler)

	logger.Info("application initialized",
		"port", cfg.Server.Port,
		"driver", cfg.Database.Driver,
	)

	return a, nil
}

// Start starts the application server.
func (a *App) Start(ctx context.Context) error {
	a.Logger.Info("server starting", "port", a.Config.Server.Port)

	if err := a.Server.Start(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown() error {
	a.Logger.Info("shutting down application")

	if a.DBPool != nil {
		a.DBPool.Close()
		a.Logger.Info("database connection closed")
	}

	if a.SQLite != nil {
		if err := a.SQLite.Close(); err != nil {
			return fmt.Errorf("failed to close database: %w", err)
		}
		a.Logger.Info("database connection closed")
	}

	return nil
}

// openRepository migrates (when enabled) and connects to the configured
// storage engine, returning the matching Repository.
func (a *App) openRepository(ctx context.Context) (video.Repository, error) {
	dbCfg := a.Config.Database

	if dbCfg.AutoMigrate {
		a.Logger.Info("applying migrations", "driver", dbCfg.Driver)
		if err := db.Migrate(dbCfg.Driver, dbCfg.DSN()); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	switch dbCfg.Driver {
	case config.DriverPostgres:
		pool, err := db.OpenPostgres(ctx, dbCfg, a.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.DBPool = pool
		return video.NewPostgresRepository(pool), nil

	case config.DriverSQLite:
		conn, err := db.OpenSQLite(ctx, dbCfg.Path, a.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		a.SQLite = conn
		return video.NewSQLiteRepository(conn), nil

	default:
		return nil, fmt.Errorf("unsupported database driver: %s", dbCfg.Driver)
	}
}

// loadEnv loads .env file only in non-production environments.
func loadEnv() error {
	env := os.Getenv("APP_ENV")
	if env == "development" || env == "test" {
		if err := godotenv.Load(); err != nil {
			log.Println("no .env file found.")
		}
	}
	return nil
}

// setupLogger creates a structured logger based on the log level.
func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: logLevel,
	}

	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
