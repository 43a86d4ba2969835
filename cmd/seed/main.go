package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lumina/storefront/internal/infrastructure/config"
	"github.com/lumina/storefront/internal/infrastructure/logger"
	"github.com/lumina/storefront/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func main() {
	var (
		password string
		logLevel string
		timeout  time.Duration
	)

	flag.StringVar(&password, "password", "password", "Password given to every demo account")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.DurationVar(&timeout, "timeout", time.Minute, "Overall seed timeout")
	flag.Parse()

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(logLevel))
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	seeder := NewSeeder(
		persistence.NewGormUserRepository(db.DB),
		persistence.NewGormProductRepository(db.DB),
		persistence.NewGormSettingsRepository(db.DB),
		password,
		log,
	)
	result, err := seeder.Run(ctx)
	if err != nil {
		log.Fatal("Seed failed", zap.Error(err))
	}

	log.Info("Seed finished",
		zap.String("driver", cfg.Database.Driver),
		zap.Int("users_created", result.UsersCreated),
		zap.Int("products_created", result.ProductsCreated),
		zap.Int("products_updated", result.ProductsUpdated),
		zap.Bool("settings_created", result.SettingsCreated),
	)
}
