package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/keyshopvn/keyshop/config"
	"github.com/keyshopvn/keyshop/internal/adapter/keyhub"
	apihandler "github.com/keyshopvn/keyshop/internal/handler/api"
	"github.com/keyshopvn/keyshop/internal/notifier/telegram"
	"github.com/keyshopvn/keyshop/internal/pricing"
	"github.com/keyshopvn/keyshop/internal/repository/postgres"
	redisrepo "github.com/keyshopvn/keyshop/internal/repository/redis"
	"github.com/keyshopvn/keyshop/internal/usecase"
	"github.com/keyshopvn/keyshop/internal/worker"
	"github.com/keyshopvn/keyshop/pkg/auth"
	"github.com/keyshopvn/keyshop/pkg/logger"
	"github.com/keyshopvn/keyshop/pkg/observability"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	// Initialize logger
	logger.Init(cfg.App.Environment)
	defer logger.Close()

	// Print configuration in development mode
	if cfg.App.IsDevelopment() {
		cfg.Print()
	}

	// Initialize database connection
	db, err := sqlx.Connect("postgres", cfg.Database.GetDSN())
	if err != nil {
		logger.Fatal("Failed to connect to database", logger.ErrorField(err))
	}
	defer db.Close()

	// Initialize Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})

	// Test Redis connection
	_, err = rdb.Ping(context.Background()).Result()
	if err != nil {
		logger.Fatal("Failed to connect to Redis", logger.ErrorField(err))
	}
	defer rdb.Close()

	logger.Info("Database and Redis connections established")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)
	productRepo := postgres.NewProductRepository(db)
	settingsRepo := postgres.NewSettingsRepository(db)
	cacheRepo := redisrepo.NewCacheRepository(rdb)

	// Load discount settings once at startup; failures fall back to the
	// configured defaults.
	settings := pricing.LoadSettings(settingsRepo, pricing.Settings{
		ReferralBuyerDiscount: cfg.Discount.ReferralBuyerDiscount,
		ReferralMaxDiscount:   cfg.Discount.ReferralMaxDiscount,
	})
	logger.Info("Discount settings loaded",
		logger.Int("referral_buyer_discount", settings.ReferralBuyerDiscount),
		logger.Int("referral_max_discount", settings.ReferralMaxDiscount),
	)

	// Initialize the remote purchase gateway
	gateway := keyhub.NewAdapter(cfg.KeyHub, nil)

	// Initialize use cases
	catalogUC := usecase.NewCatalogUsecase(productRepo, cacheRepo)
	purchaseUC := usecase.NewPurchaseUsecase(
		userRepo,
		productRepo,
		gateway,
		cacheRepo,
		catalogUC,
		cacheRepo,
		settings,
	)

	// Initialize handlers
	catalogHandler := apihandler.NewCatalogHandler(catalogUC)
	purchaseHandler := apihandler.NewPurchaseHandler(purchaseUC)

	// Start background notification worker
	notifier := telegram.NewNotifier(cfg.Telegram, nil)
	notificationWorker := worker.NewNotificationWorker(cacheRepo, notifier, worker.NotificationWorkerConfig{})
	workerCtx, workerCancel := context.WithCancel(context.Background())
	defer workerCancel()
	go notificationWorker.Start(workerCtx)

	// Set Gin mode
	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize auth service
	authService := auth.NewJWTAuthService(cfg.Auth)

	// Initialize metrics handler with dependency checks
	metricsHandler := observability.NewMetricsHandler(
		db.Ping,
		cacheRepo.Ping,
	)

	// Create Gin router
	router := gin.New()

	// Add middleware
	router.Use(observability.ObservabilityMiddleware())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())

	// Setup metrics and health endpoints
	router.GET("/metrics", metricsHandler.MetricsEndpoint())
	router.GET("/health", metricsHandler.HealthEndpoint())
	router.GET("/ready", metricsHandler.ReadinessEndpoint())
	router.GET("/live", metricsHandler.LivenessEndpoint())

	// Setup API routes
	apihandler.SetupRoutes(router, catalogHandler, purchaseHandler, authService)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.API.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.API.TimeoutSeconds) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server",
			logger.String("port", cfg.App.Port),
			logger.String("environment", cfg.App.Environment),
		)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", logger.ErrorField(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	workerCancel()

	logger.Info("Shutting down server...")

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Attempt graceful shutdown
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("Server exited")
}

// corsMiddleware handles CORS
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
