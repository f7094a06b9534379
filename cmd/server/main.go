package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartcity/transit-optimizer/internal/config"
	"github.com/smartcity/transit-optimizer/internal/delivery/http"
	"github.com/smartcity/transit-optimizer/internal/logging"
	"github.com/smartcity/transit-optimizer/internal/metrics"
	"github.com/smartcity/transit-optimizer/internal/repository/postgres"
	"github.com/smartcity/transit-optimizer/internal/repository/sqlite"
	"github.com/smartcity/transit-optimizer/internal/service"
)

func main() {
	// Configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logging.NewStructuredLogger(os.Stdout, logging.ParseLevel(cfg.LogLevel))
	slog.SetDefault(log)

	// Dependency Injection: Repositories
	repo, cleanup := openRepository(cfg, log)
	defer cleanup()

	// Dependency Injection: Services
	m := metrics.New()
	analysisSvc := service.NewAnalysisService(repo, cfg.Analysis, m, log)

	// Fiber App
	app := fiber.New(fiber.Config{
		AppName:      "Transit Frequency Optimizer v1.0",
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		BodyLimit:    32 * 1024 * 1024,
		ErrorHandler: http.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(http.RequestLogger(log))

	// Routes
	http.SetupRoutes(app, analysisSvc, m, cfg.WindowDays)

	// Graceful shutdown
	go func() {
		log.Info("server starting",
			slog.String("port", cfg.Port),
			slog.String("env", cfg.Env),
			slog.Float64("critical_threshold", cfg.Analysis.CriticalThreshold))
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		logging.LogError(log, "server forced to shutdown", err)
	}
	analysisSvc.WaitBackground()
	log.Info("server exited gracefully")
}

// openRepository picks PostgreSQL, then SQLite, then the in-memory demo network
func openRepository(cfg *config.Config, log *slog.Logger) (service.RidershipRepository, func()) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err == nil {
			err = pool.Ping(ctx)
		}
		if err == nil {
			repo := postgres.NewPostgresRepository(pool)
			if err = repo.EnsureSchema(ctx); err == nil {
				log.Info("connected to PostgreSQL")
				return repo, pool.Close
			}
		}
		if pool != nil {
			pool.Close()
		}
		logging.LogError(log, "could not connect to database", err)
	}

	if cfg.SQLitePath != "" {
		repo, err := sqlite.New(ctx, cfg.SQLitePath)
		if err == nil {
			err = seedIfEmpty(ctx, repo, log)
		}
		if err == nil {
			log.Info("opened SQLite store", slog.String("path", cfg.SQLitePath))
			return repo, func() { _ = repo.Close() }
		}
		if repo != nil {
			_ = repo.Close()
		}
		logging.LogError(log, "could not open SQLite store", err)
	}

	log.Warn("running with mock data only")
	return postgres.NewMockRepository(), func() {}
}

// seedIfEmpty loads the demo network into a fresh SQLite store
func seedIfEmpty(ctx context.Context, repo *sqlite.Repository, log *slog.Logger) error {
	lines, err := repo.ListLines(ctx)
	if err != nil || len(lines) > 0 {
		return err
	}

	demo := postgres.NewMockRepository()
	if lines, err = demo.ListLines(ctx); err != nil {
		return err
	}
	records, err := demo.ListRidership(ctx, time.Time{}, time.Now().UTC())
	if err != nil {
		return err
	}

	if err := repo.UpsertLines(ctx, lines); err != nil {
		return err
	}
	if err := repo.InsertRidership(ctx, records); err != nil {
		return err
	}
	log.Info("seeded SQLite store with demo network",
		slog.Int("lines", len(lines)),
		slog.Int("records", len(records)))
	return nil
}
