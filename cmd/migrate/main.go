package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/taskrally/taskrally-backend/taskrally"
	"github.com/taskrally/taskrally-backend/taskrally/database"
	"github.com/taskrally/taskrally-backend/taskrally/logger"
)

// Standalone schema migration for deploys that do not want the server to own
// DDL. Safe to run repeatedly; every statement is IF NOT EXISTS.
func main() {
	slog.SetDefault(slog.New(logger.NewHandler("TaskRally-Migrate")))

	configPath := "config.toml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	cfg, err := taskrally.LoadConfig(configPath)
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	db, err := database.New(ctx, database.DBConfig{
		Host:     cfg.DB.Host,
		Port:     cfg.DB.Port,
		User:     cfg.DB.User,
		Password: cfg.DB.Password,
		Database: cfg.DB.Database,
		PoolSize: cfg.DB.PoolSize,
	})
	if err != nil {
		slog.Error("Failed to connect to database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	if err := db.InitializeSchema(ctx); err != nil {
		slog.Error("Migration failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("Migration complete")
}
