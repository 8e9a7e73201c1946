package main

import (
	"context"
	"crypto/tls"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/andesalud/citas-platform/internal/api/router"
	"github.com/andesalud/citas-platform/internal/availability"
	"github.com/andesalud/citas-platform/internal/booking"
	"github.com/andesalud/citas-platform/internal/catalog"
	appconfig "github.com/andesalud/citas-platform/internal/config"
	"github.com/andesalud/citas-platform/internal/observability/metrics"
	"github.com/andesalud/citas-platform/internal/payments"
	"github.com/andesalud/citas-platform/internal/reservations"
	"github.com/andesalud/citas-platform/internal/slots"
	"github.com/andesalud/citas-platform/pkg/logging"
)

func main() {
	// Local development convenience; the file is absent in deployment.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting citas-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	var (
		catalogRepo catalog.Repository
		slotStore   slots.Store
		engine      reservations.Engine
		paymentRepo payments.Repository
	)
	if cfg.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Error("failed to create database pool", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		if err := pool.Ping(ctx); err != nil {
			logger.Error("failed to reach database", "error", err)
			os.Exit(1)
		}
		catalogRepo = catalog.NewPostgresRepository(pool)
		slotStore = slots.NewPostgresStore(pool)
		engine = reservations.NewPostgresEngine(pool, logger)
		paymentRepo = payments.NewPostgresRepository(pool)
		logger.Info("using postgres storage")
	} else {
		// Memory mode: demo catalogue, nothing survives a restart.
		regions, communes, areas, medics := catalog.DemoData()
		catalogRepo = catalog.NewInMemoryRepository(regions, communes, areas, medics)
		memStore := slots.NewInMemoryStore()
		slotStore = memStore
		engine = reservations.NewMemoryEngine(memStore, logger)
		paymentRepo = payments.NewInMemoryRepository()
		logger.Warn("DATABASE_URL not set, using in-memory storage")
	}

	if cfg.RedisAddr != "" {
		opts := &redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}
		if cfg.RedisTLS {
			opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		}
		redisClient := redis.NewClient(opts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unreachable, catalog cache disabled", "error", err)
		} else {
			catalogRepo = catalog.NewCachedRepository(catalogRepo, redisClient, cfg.CatalogCacheTTL, logger)
			logger.Info("catalog cache enabled", "ttl", cfg.CatalogCacheTTL)
		}
	}

	var gateway payments.Gateway
	if cfg.AllowFakeGateway && !cfg.IsProduction() {
		gateway = payments.NewFakeGateway()
		logger.Warn("using fake payment gateway")
	} else {
		gateway = payments.NewWebpayClient(cfg.WebpayCommerceCode, cfg.WebpayAPIKey, logger).
			WithBaseURL(cfg.WebpayBaseURL)
	}
	returnURL := cfg.PublicBaseURL + "/payments/return"

	registry := prometheus.NewRegistry()
	bookingMetrics := metrics.NewBookingMetrics(registry)

	finder := availability.NewFinder(catalogRepo, slotStore, logger.Named("availability"))
	coordinator := payments.NewCoordinator(paymentRepo, gateway, returnURL, logger.Named("payments"))
	facade := booking.NewFacade(finder, engine, coordinator, logger.Named("booking"), bookingMetrics)
	importer := slots.NewImporter(slotStore)

	r := router.New(&router.Config{
		Logger:             logger,
		BookingHandler:     booking.NewHandler(facade, logger.Named("booking")),
		CatalogHandler:     catalog.NewHandler(catalogRepo, logger.Named("catalog")),
		ImportHandler:      slots.NewImportHandler(importer, logger.Named("slots")),
		MetricsHandler:     promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
