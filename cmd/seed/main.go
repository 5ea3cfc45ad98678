package main

import (
	"context"
	"os"

	"smallbiz-crm/internal/config"
	"smallbiz-crm/internal/db"
	"smallbiz-crm/internal/logging"
	"smallbiz-crm/internal/seed"
)

func main() {
	cfg := config.FromEnv()
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat).With("cmd", "seed")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, db.PoolOptions{MaxConns: int32(cfg.DBMaxConns)}, logger)
	if err != nil {
		logger.Error("connect db", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := seed.Apply(ctx, pool, logger); err != nil {
		logger.Error("seed apply", "error", err)
		pool.Close()
		os.Exit(1)
	}

	logger.Info("seed applied")
}
