package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"smallbiz-crm/internal/config"
	"smallbiz-crm/internal/db"
	"smallbiz-crm/internal/httpserver"
	"smallbiz-crm/internal/importer"
	"smallbiz-crm/internal/logging"
	"smallbiz-crm/internal/report"
	"smallbiz-crm/internal/repository"
	customerrepo "smallbiz-crm/internal/repository/customer"
	leadrepo "smallbiz-crm/internal/repository/lead"
	productrepo "smallbiz-crm/internal/repository/product"
	salerepo "smallbiz-crm/internal/repository/sale"
	customersvc "smallbiz-crm/internal/service/customer"
	exportsvc "smallbiz-crm/internal/service/export"
	leadsvc "smallbiz-crm/internal/service/lead"
	productsvc "smallbiz-crm/internal/service/product"
	salesvc "smallbiz-crm/internal/service/sale"
	"smallbiz-crm/internal/webhook"
)

func main() {
	cfg := config.FromEnv()
	logger := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat).With("cmd", "api")

	ctx := context.Background()
	dbpool, err := db.Connect(ctx, cfg.DBConnString, db.PoolOptions{MaxConns: int32(cfg.DBMaxConns)}, logger)
	if err != nil {
		logger.Error("connect to db", "error", err)
		os.Exit(1)
	}
	defer dbpool.Close()

	notifier := webhook.New(map[string][]string{
		webhook.CustomerCreated: cfg.CustomerWebhookURLs,
		webhook.SaleCreated:     cfg.SaleWebhookURLs,
		webhook.OrderCreated:    cfg.SaleWebhookURLs,
	}, cfg.WebhookTimeout, logger)

	customerRepo := customerrepo.NewPostgres(dbpool, logger)
	leadRepo := leadrepo.NewPostgres(dbpool, logger)
	saleRepo := salerepo.NewPostgres(dbpool, logger)
	productRepo := productrepo.NewPostgres(dbpool, logger)

	customerService := customersvc.New(customerRepo, notifier, logger)
	leadService := leadsvc.New(leadRepo, customerService, logger)
	saleService := salesvc.New(saleRepo, customerRepo, notifier, logger)
	productService := productsvc.New(productRepo)

	// imports convert won leads without announcing the customers they create
	importConverter := customersvc.New(customerRepo, nil, logger)

	listing := repository.Listing{Customers: customerRepo, Leads: leadRepo, Sales: saleRepo}

	srv := httpserver.New(cfg.HTTPAddr, logger, dbpool, httpserver.Deps{
		Customers:          customerService,
		Leads:              leadService,
		Sales:              saleService,
		Products:           productService,
		Reports:            report.NewService(listing),
		Exports:            exportsvc.New(listing),
		Importer:           importer.New(customerRepo, leadRepo, importConverter, logger),
		Normalizer:         importer.Normalizer{PhonePrefix: cfg.ImportPhonePrefix},
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		MaxUploadBytes:     cfg.ImportMaxFileBytes,
		MaxImportRows:      cfg.ImportMaxRows,
	})

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := srv.Run(ctx, cfg.ShutdownTimeout); err != nil {
		logger.Error("http server", "error", err)
	}

	waitCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := notifier.Wait(waitCtx); err != nil {
		logger.Warn("webhook deliveries still pending", "error", err)
	}
}
