package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"smallbiz-crm/internal/config"
	"smallbiz-crm/internal/db"
	"smallbiz-crm/internal/importer"
	"smallbiz-crm/internal/logging"
	customerrepo "smallbiz-crm/internal/repository/customer"
	leadrepo "smallbiz-crm/internal/repository/lead"
	customersvc "smallbiz-crm/internal/service/customer"
)

func main() {
	var (
		filePath string
		kind     string
	)
	flag.StringVar(&filePath, "file", "", "Path to a .csv or .xlsx spreadsheet")
	flag.StringVar(&kind, "type", "customers", "Entity to import: customers or leads")
	flag.Parse()

	if filePath == "" {
		flag.Usage()
		os.Exit(2)
	}
	entity, err := importer.ParseEntity(kind)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg := config.FromEnv()
	logger := logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat).With("cmd", "importer")
	ctx := context.Background()

	f, err := os.Open(filePath)
	if err != nil {
		logger.Error("open file", "error", err)
		os.Exit(1)
	}
	defer f.Close()

	rows, err := importer.ReadTable(filepath.Base(filePath), f)
	if err != nil {
		logger.Error("read spreadsheet", "file", filePath, "error", err)
		os.Exit(1)
	}
	res, err := importer.Normalizer{PhonePrefix: cfg.ImportPhonePrefix}.Normalize(rows)
	if err != nil {
		logger.Error("normalize rows", "file", filePath, "error", err)
		os.Exit(1)
	}

	pool, err := db.Connect(ctx, cfg.DBConnString, db.PoolOptions{MaxConns: int32(cfg.DBMaxConns)}, logger)
	if err != nil {
		logger.Error("connect db", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	customers := customerrepo.NewPostgres(pool, logger)
	imp := importer.New(customers, leadrepo.NewPostgres(pool, logger), customersvc.New(customers, nil, logger), logger)

	start := time.Now()
	summary := imp.Import(ctx, entity, res.ValidRecords)

	fmt.Printf("Imported %d %s (%d created, %d updated) in %s\n",
		summary.Count, entity, summary.Created, summary.Updated, time.Since(start).Truncate(time.Millisecond))
	for _, msg := range append(res.RowErrors, summary.Errors...) {
		fmt.Printf("  %s\n", msg)
	}
}
