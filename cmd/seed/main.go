package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/taskvault/taskvault/pkg/database"
	"github.com/taskvault/taskvault/pkg/logger"

	"github.com/taskvault/taskvault/internal/config"
	"github.com/taskvault/taskvault/internal/repository/postgres"
	"github.com/taskvault/taskvault/internal/seed"
	"github.com/taskvault/taskvault/migrations"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.New("taskvault-seed", cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pgCfg := database.DefaultPostgresConfig()
	pgCfg.Host = cfg.PostgresHost
	pgCfg.Port = cfg.PostgresPort
	pgCfg.User = cfg.PostgresUser
	pgCfg.Password = cfg.PostgresPass
	pgCfg.DBName = cfg.PostgresDB
	pgCfg.SSLMode = cfg.PostgresSSL

	pool, err := database.NewPostgresPoolWithLogger(ctx, &pgCfg, log)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	// Seeding may run before the server has ever started, so ensure the
	// schema exists first.
	if err := database.RunMigrations(ctx, pool, migrations.FS, log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	userRepo := postgres.NewUserRepository(pool)
	if err := seed.New(userRepo, log).Run(ctx); err != nil {
		return fmt.Errorf("seed database: %w", err)
	}

	log.Info("seeding complete")
	return nil
}
