package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"radiator-erp/internal/cache"
	"radiator-erp/internal/config"
	"radiator-erp/internal/database"
	"radiator-erp/internal/handlers"
	"radiator-erp/internal/middleware"
	"radiator-erp/internal/repository"
	"radiator-erp/internal/routes"
	"radiator-erp/internal/services"
)

const referenceCacheTTL = 5 * time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Logging.Level)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	postgresDB, err := database.NewPostgresDB(
		cfg.Database.URL,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
		cfg.Database.ConnMaxLifetime,
		logger,
	)
	if err != nil {
		logger.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	defer postgresDB.Close()

	// Redis is optional. Without it the reference cache degrades to a
	// pass-through and the rate limiter falls back to memory.
	redisDB, err := database.NewRedisDB(cfg.Redis.URL, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Warn("Redis unavailable, continuing without cache", zap.Error(err))
		redisDB = nil
	} else {
		defer redisDB.Close()
	}

	// Repositories
	materialRepo := repository.NewMaterialRepository(postgresDB.DB)
	productRepo := repository.NewProductRepository(postgresDB.DB)
	ledgerRepo := repository.NewLedgerRepository(postgresDB.DB)
	purchaseRepo := repository.NewPurchaseRepository(postgresDB.DB)
	salesRepo := repository.NewSalesRepository(postgresDB.DB)
	dispatchRepo := repository.NewDispatchRepository(postgresDB.DB)
	costFileRepo := repository.NewCostFileRepository(postgresDB.DB)
	recordsRepo := repository.NewRecordsRepository(postgresDB.DB)
	userRepo := repository.NewUserRepository(postgresDB.DB)

	var redisClient *redis.Client
	if redisDB != nil {
		redisClient = redisDB.Client
	}
	refCache := cache.NewReferenceCache(redisClient, referenceCacheTTL, logger)

	// Services
	purchaseService := services.NewPurchaseService(postgresDB, purchaseRepo, materialRepo, productRepo, ledgerRepo, logger)
	salesService := services.NewSalesService(postgresDB, salesRepo, materialRepo, productRepo, ledgerRepo, logger)
	productionService := services.NewProductionService(postgresDB, dispatchRepo, costFileRepo, materialRepo, productRepo, ledgerRepo, logger)
	costFileService := services.NewCostFileService(postgresDB, costFileRepo, materialRepo, productRepo, logger)
	recordsService := services.NewRecordsService(recordsRepo, refCache, logger)
	authService := services.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.ExpiryHours, logger)
	monitoringService := services.NewMonitoringService(postgresDB.DB, redisClient, logger)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService, logger)
	purchaseHandler := handlers.NewPurchaseHandler(purchaseService, logger)
	salesHandler := handlers.NewSalesHandler(salesService, logger)
	productionHandler := handlers.NewProductionHandler(productionService, logger)
	costFileHandler := handlers.NewCostFileHandler(costFileService, logger)
	recordsHandler := handlers.NewRecordsHandler(recordsService, logger)
	monitoringHandler := handlers.NewMonitoringHandler(monitoringService, logger)
	healthChecker := middleware.NewHealthChecker(postgresDB, redisDB, logger)

	gin.SetMode(cfg.Server.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.RateLimitMiddleware(
		newCounterStore(cfg.RateLimit.Backend, redisClient, logger),
		cfg.RateLimit.Requests,
		cfg.RateLimit.Window,
		logger,
	))
	router.Use(monitoringHandler.RecordRequestMiddleware())

	authMiddleware := middleware.AuthMiddleware(cfg.JWT.Secret, logger)
	routes.SetupRoutes(router,
		authHandler, purchaseHandler, salesHandler, productionHandler,
		costFileHandler, recordsHandler, monitoringHandler,
		healthChecker, authMiddleware,
	)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	middleware.ServerInfo(cfg.Server.Port, logger)

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("forced shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger(level string) (*zap.Logger, error) {
	zapLevel, err := zapcore.ParseLevel(level)
	if err != nil {
		zapLevel = zapcore.InfoLevel
	}
	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(zapLevel)
	return zapCfg.Build()
}

func newCounterStore(backend string, redisClient *redis.Client, logger *zap.Logger) middleware.CounterStore {
	if backend == "redis" && redisClient != nil {
		return middleware.NewRedisCounterStore(redisClient)
	}
	if backend == "redis" {
		logger.Warn("redis rate limit backend requested but Redis is down, using memory")
	}
	return middleware.NewMemoryCounterStore()
}
