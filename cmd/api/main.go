package main

import (
	"context"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tiffinworks/commerce-backend/api/routes"
	"github.com/tiffinworks/commerce-backend/internal/cart"
	"github.com/tiffinworks/commerce-backend/internal/catalog"
	"github.com/tiffinworks/commerce-backend/internal/pricing"
	"github.com/tiffinworks/commerce-backend/internal/session"
	"github.com/tiffinworks/commerce-backend/internal/uploads"
	"github.com/tiffinworks/commerce-backend/pkg/config"
	"github.com/tiffinworks/commerce-backend/pkg/logger"
	"github.com/tiffinworks/commerce-backend/pkg/metrics"
	"github.com/tiffinworks/commerce-backend/pkg/multipass"
	"github.com/tiffinworks/commerce-backend/pkg/redis"
	"github.com/tiffinworks/commerce-backend/pkg/shopify"
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

	redisClient, err := redis.New(context.Background(), cfg.Redis)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	commerceMetrics := metrics.NewCommerceMetrics(registry)

	storefront, err := shopify.NewStorefrontClient(cfg.Shopify, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create storefront client", err)
		os.Exit(1)
	}

	admin, err := shopify.NewAdminClient(cfg.Admin, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create admin client", err)
		os.Exit(1)
	}

	encoder, err := multipass.NewEncoder(cfg.Multipass.Secret)
	if err != nil {
		logg.Error(context.Background(), "failed to create multipass encoder", err)
		os.Exit(1)
	}

	sessionService, err := session.NewService(encoder, storefront)
	if err != nil {
		logg.Error(context.Background(), "failed to create session service", err)
		os.Exit(1)
	}

	assembler, err := cart.NewAssembler(storefront, cfg.Checkout, logg, commerceMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create cart assembler", err)
		os.Exit(1)
	}

	pipeline, err := uploads.NewPipeline(admin, cfg.Uploads, logg, commerceMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to create upload pipeline", err)
		os.Exit(1)
	}

	catalogStore := catalog.NewStore()
	pricingEngine := pricing.NewEngine()

	keeper, err := catalog.NewSnapshotKeeper(catalogStore, redisClient, logg, cfg.Catalog.SnapshotTTL)
	if err != nil {
		logg.Error(context.Background(), "failed to create snapshot keeper", err)
		os.Exit(1)
	}
	if err := keeper.Load(context.Background()); err != nil {
		logg.Error(context.Background(), "failed to warm catalog from snapshot", err)
	}
	catalogStore.Subscribe(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := keeper.Save(ctx); err != nil {
			logg.Error(ctx, "failed to persist catalog snapshot", err)
		}
	})

	handler := routes.NewRouter(routes.Deps{
		Config:          cfg,
		Logger:          logg,
		Redis:           redisClient,
		CatalogStore:    catalogStore,
		PricingEngine:   pricingEngine,
		SessionService:  sessionService,
		CartAssembler:   assembler,
		UploadPipeline:  pipeline,
		MetricsGatherer: registry,
	})

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
		Addr:    addr,
		Handler: handler,
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
