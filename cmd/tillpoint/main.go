package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/tillpoint/tillpoint/internal/app"
	"github.com/tillpoint/tillpoint/internal/auth"
	"github.com/tillpoint/tillpoint/internal/catalog/categories"
	"github.com/tillpoint/tillpoint/internal/catalog/discounts"
	"github.com/tillpoint/tillpoint/internal/catalog/modifiers"
	"github.com/tillpoint/tillpoint/internal/catalog/products"
	"github.com/tillpoint/tillpoint/internal/catalog/taxes"
	"github.com/tillpoint/tillpoint/internal/inventory"
	"github.com/tillpoint/tillpoint/internal/observability"
	"github.com/tillpoint/tillpoint/internal/platform/cache"
	"github.com/tillpoint/tillpoint/internal/platform/db"
	"github.com/tillpoint/tillpoint/internal/reports"
	reporthttp "github.com/tillpoint/tillpoint/internal/reports/http"
	"github.com/tillpoint/tillpoint/internal/sales"
	"github.com/tillpoint/tillpoint/internal/scope"
	"github.com/tillpoint/tillpoint/internal/stores"
	"github.com/tillpoint/tillpoint/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN, cfg.PGMaxConns)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Warn("redis unavailable, reports run uncached", slog.Any("error", err))
		redisClient = nil
	}
	defer func() {
		if redisClient == nil {
			return
		}
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	metrics := observability.NewMetrics()

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	authRepo := auth.NewRepository(dbpool)
	authService := auth.NewService(authRepo, tokens)
	authHandler := auth.NewHandler(logger, authService)

	reportCache := reports.NewCache(redisClient, cfg.ReportCacheTTL)

	inventoryRepo := inventory.NewRepository(dbpool)

	productsRepo := products.NewRepository(dbpool)

	inventoryService := inventory.NewService(logger, inventoryRepo, productsRepo)
	inventoryHandler := inventory.NewHandler(logger, inventoryService)

	productsService := products.NewService(logger, productsRepo, productsRepo, inventoryService)
	productsHandler := products.NewHandler(logger, productsService)

	categoriesHandler := categories.NewHandler(logger, categories.NewService(categories.NewRepository(dbpool)))
	taxesHandler := taxes.NewHandler(logger, taxes.NewService(taxes.NewRepository(dbpool)))
	discountsHandler := discounts.NewHandler(logger, discounts.NewService(discounts.NewRepository(dbpool)))
	modifiersHandler := modifiers.NewHandler(logger, modifiers.NewService(modifiers.NewRepository(dbpool)))
	storesHandler := stores.NewHandler(logger, stores.NewRepository(dbpool))

	salesRepo := sales.NewRepository(dbpool, inventoryRepo)
	salesService := sales.NewService(logger, salesRepo, productsRepo, productsRepo, reportCache)
	salesHandler := sales.NewHandler(logger, salesService)

	scopeResolver := scope.NewResolver(scope.NewRepository(dbpool), logger)
	reportsService := reports.NewService(logger, reports.NewRepository(dbpool), scopeResolver, reportCache)
	reportsHandler := reporthttp.NewHandler(logger, reportsService)

	var jobsHandler *jobs.Handler
	if redisClient != nil {
		inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
		jobsHandler = jobs.NewHandler(inspector, logger)
	}

	router := app.NewRouter(app.RouterParams{
		Logger:      logger,
		Config:      cfg,
		Verifier:    tokens,
		Maintenance: authService,

		AuthHandler:       authHandler,
		ProductsHandler:   productsHandler,
		CategoriesHandler: categoriesHandler,
		TaxesHandler:      taxesHandler,
		DiscountsHandler:  discountsHandler,
		ModifiersHandler:  modifiersHandler,
		StoresHandler:     storesHandler,
		InventoryHandler:  inventoryHandler,
		SalesHandler:      salesHandler,
		ReportsHandler:    reportsHandler,
		JobsHandler:       jobsHandler,

		Metrics: metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.AppWriteTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server run", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
