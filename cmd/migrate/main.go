package main

import (
	"context"
	"flag"
	"os"

	"smallbiz-crm/internal/config"
	"smallbiz-crm/internal/db"
	"smallbiz-crm/internal/logging"
	"smallbiz-crm/internal/migrate"
)

func main() {
	down := flag.Int("down", 0, "roll back this many migrations instead of migrating up")
	flag.Parse()

	cfg := config.FromEnv()
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat).With("cmd", "migrate")

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString, db.PoolOptions{MaxConns: int32(cfg.DBMaxConns)}, logger)
	if err != nil {
		logger.Error("connect db", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if *down > 0 {
		err = migrate.Rollback(ctx, pool, *down)
	} else {
		err = migrate.Apply(ctx, pool)
	}
	if err != nil {
		logger.Error("migrations failed", "error", err)
		pool.Close()
		os.Exit(1)
	}

	version, dirty, err := migrate.Version(ctx, pool)
	if err != nil {
		logger.Error("read schema version", "error", err)
		pool.Close()
		os.Exit(1)
	}
	logger.Info("migrations applied", "version", version, "dirty", dirty)
}
