package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/coinvest_backend/internal/adapters/cache"
	"github.com/SscSPs/coinvest_backend/internal/adapters/memory"
	portsrepo "github.com/SscSPs/coinvest_backend/internal/core/ports/repositories"
	"github.com/SscSPs/coinvest_backend/internal/core/services"
	"github.com/SscSPs/coinvest_backend/internal/events"
	"github.com/SscSPs/coinvest_backend/internal/handlers"
	"github.com/SscSPs/coinvest_backend/internal/jobs"
	"github.com/SscSPs/coinvest_backend/internal/middleware"
	"github.com/SscSPs/coinvest_backend/internal/platform/config"
	"github.com/SscSPs/coinvest_backend/internal/repositories/database/pgsql"
	"github.com/SscSPs/coinvest_backend/internal/utils"
	"github.com/SscSPs/coinvest_backend/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/ulule/limiter/v3"
	limitermemory "github.com/ulule/limiter/v3/drivers/store/memory"
)

const shutdownTimeout = 15 * time.Second

// @title Coinvest Ledger API
// @version 1.0
// @description Ledger-backed balances, deposit/withdrawal/investment requests and their approval workflow.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize store", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer closeStore()

	balanceCache, closeCache := openCache(ctx, cfg, logger)
	defer closeCache()

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, cfg.PosthogEndpoint, logger)
	defer posthogClient.Close()

	bus := events.NewBus()
	bus.SubscribeAll(events.LogSink())
	bus.SubscribeAll(events.PosthogSink(posthogClient))

	serviceContainer := services.NewServiceContainer(cfg, repos, balanceCache, services.WithEventPublisher(bus))

	scheduler := jobs.NewScheduler(jobs.Config{
		AccrualSchedule: cfg.ROIAccrualSchedule,
		SweepSchedule:   cfg.SettlementSweepSchedule,
		SweepAge:        cfg.SettlementSweepAge,
	}, serviceContainer.Investment, serviceContainer.Workflow, logger)
	if err := scheduler.Start(ctx); err != nil {
		logger.Error("Failed to start scheduler", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer scheduler.Stop()

	if err := handlers.RegisterValidators(); err != nil {
		logger.Error("Failed to register validators", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid RATE_LIMIT", slog.String("value", cfg.RateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}
	rateLimiter := limiter.New(limitermemory.NewStore(), rate)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Idempotency-Key"},
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.PosthogMiddleware(posthogClient))

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, rateLimiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port), slog.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Server failed to run", slog.String("error", err.Error()))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
}

// openStore builds the repository provider for the configured driver. The
// memory driver keeps everything in process and is meant for local runs.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.RepositoryProvider, func(), error) {
	if cfg.StoreDriver == config.StoreDriverMemory {
		logger.Warn("Using in-memory store; all data is lost on restart")
		return memory.NewRepositoryProvider(memory.NewStore()), func() {}, nil
	}

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck, logger)
	if err != nil {
		return portsrepo.RepositoryProvider{}, nil, err
	}
	if err := database.RunMigrations(cfg.DatabaseURL, "file://migrations", logger); err != nil {
		database.ClosePgxPool(dbPool, logger)
		return portsrepo.RepositoryProvider{}, nil, err
	}
	return pgsql.NewRepositoryProvider(dbPool, cfg.StoreTimeout), func() { database.ClosePgxPool(dbPool, logger) }, nil
}

// openCache prefers Redis and falls back to the in-process cache when Redis
// is not configured or unreachable.
func openCache(ctx context.Context, cfg *config.Config, logger *slog.Logger) (portsrepo.BalanceCache, func()) {
	if cfg.RedisURL == "" {
		return cache.NewMemoryBalanceCache(), func() {}
	}
	client, err := cache.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		logger.Warn("Redis unavailable, using in-process balance cache", slog.String("error", err.Error()))
		return cache.NewMemoryBalanceCache(), func() {}
	}
	logger.Info("Balance cache backed by Redis")
	return cache.NewRedisBalanceCache(client, ""), func() {
		if err := client.Close(); err != nil {
			logger.Error("Error closing redis client", slog.String("error", err.Error()))
		}
	}
}
