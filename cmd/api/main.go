package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/salesdeskhq/salesdesk-backend/api/routes"
	"github.com/salesdeskhq/salesdesk-backend/internal/cashflow"
	"github.com/salesdeskhq/salesdesk-backend/internal/customers"
	"github.com/salesdeskhq/salesdesk-backend/internal/products"
	"github.com/salesdeskhq/salesdesk-backend/internal/sales"
	"github.com/salesdeskhq/salesdesk-backend/internal/users"
	"github.com/salesdeskhq/salesdesk-backend/pkg/config"
	"github.com/salesdeskhq/salesdesk-backend/pkg/db"
	"github.com/salesdeskhq/salesdesk-backend/pkg/logger"
	"github.com/salesdeskhq/salesdesk-backend/pkg/migrate"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	conn := dbClient.DB()
	customerRepo := customers.NewRepository(conn)
	productRepo := products.NewRepository(conn)
	userRepo := users.NewRepository(conn)
	saleRepo := sales.NewRepository(conn)
	ledgerRepo := cashflow.NewRepository(conn)

	customerService, err := customers.NewService(customerRepo, userRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create customer service", err)
		os.Exit(1)
	}
	productService, err := products.NewService(productRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create product service", err)
		os.Exit(1)
	}
	cashFlowService, err := cashflow.NewService(ledgerRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create cashflow service", err)
		os.Exit(1)
	}
	saleService, err := sales.NewService(
		dbClient,
		saleRepo,
		customerRepo,
		ledgerRepo,
		productRepo,
		userRepo,
		cfg.Sales,
		logg,
	)
	if err != nil {
		logg.Error(context.Background(), "failed to create sales service", err)
		os.Exit(1)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(routes.Deps{
			Config:    cfg,
			Logger:    logg,
			DB:        dbClient,
			Registry:  registry,
			Customers: customerService,
			Products:  productService,
			Sales:     saleService,
			CashFlow:  cashFlowService,
		}),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
