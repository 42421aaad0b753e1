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
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"

	"storefront-svc/cache"
	"storefront-svc/checkout"
	"storefront-svc/config"
	"storefront-svc/handlers"
	"storefront-svc/imageurl"
	"storefront-svc/kafka"
	"storefront-svc/middleware"
	"storefront-svc/upstream"
)

func main() {
	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	cfg := config.Load()

	// Initialize Redis for staged checkout sessions
	redisClient, err := checkout.InitRedis(cfg.RedisHost+":"+cfg.RedisPort, cfg.RedisPassword, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}

	// Initialize Kafka producer for checkout events
	producer, err := kafka.InitProducer(cfg.KafkaBroker, cfg.KafkaTopic, logger)
	if err != nil {
		logger.Fatal("Failed to initialize Kafka producer", zap.Error(err))
	}

	// Initialize OpenTelemetry
	shutdownTracing, err := middleware.InitTracing("storefront")
	if err != nil {
		logger.Fatal("Failed to initialize tracing", zap.Error(err))
	}

	api := upstream.NewClient(cfg.BackendAPIURL, cfg.UpstreamTimeout, logger)
	resolver := imageurl.NewResolver(cfg.ServerOrigin())
	productCache := cache.NewProductCache(cfg.ProductCacheTTL, nil)
	checkoutSvc := checkout.NewService(checkout.NewRedisStore(redisClient), api, producer, logger)

	productHandler := handlers.NewProductHandler(api, productCache, resolver, logger)
	catalogHandler := handlers.NewCatalogHandler(api, logger)
	cartHandler := handlers.NewCartHandler(api, resolver, logger)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutSvc, logger)
	orderHandler := handlers.NewOrderHandler(api, resolver, logger)
	userHandler := handlers.NewUserHandler(api, logger)

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	// OpenTelemetry middleware must be first to extract trace context
	router.Use(otelgin.Middleware("storefront"))
	router.Use(middleware.LoggerMiddleware(logger))
	router.Use(middleware.MetricsMiddleware())

	// Health check endpoint
	router.GET("/health", handlers.HealthCheck)

	// Metrics endpoint
	router.GET("/metrics", middleware.PrometheusHandler())

	// Public storefront endpoints
	router.GET("/products", productHandler.GetProducts)
	router.GET("/products/:id", productHandler.GetProduct)
	router.GET("/catalogs", catalogHandler.GetCatalogs)

	// Customer endpoints
	auth := router.Group("/", middleware.AuthMiddleware(cfg.JWTSecret))
	auth.GET("/cart", cartHandler.GetCart)
	auth.POST("/cart", cartHandler.AddItem)
	auth.PUT("/cart/:productId", cartHandler.UpdateItem)
	auth.DELETE("/cart/:productId", cartHandler.RemoveItem)
	auth.DELETE("/cart", cartHandler.ClearCart)
	auth.POST("/checkout", checkoutHandler.Stage)
	auth.GET("/checkout", checkoutHandler.GetStaged)
	auth.POST("/checkout/confirm", checkoutHandler.Confirm)
	auth.GET("/orders", orderHandler.ListOrders)
	auth.GET("/orders/:id", orderHandler.GetOrder)
	auth.PUT("/orders/:id/cancel", orderHandler.CancelOrder)
	auth.PUT("/orders/:id/upload-proof", orderHandler.UploadProof)

	// Admin back office endpoints
	admin := router.Group("/", middleware.AuthMiddleware(cfg.JWTSecret), middleware.AdminOnly())
	admin.POST("/products", productHandler.CreateProduct)
	admin.PUT("/products/:id", productHandler.UpdateProduct)
	admin.DELETE("/products/:id", productHandler.DeleteProduct)
	admin.POST("/catalogs", catalogHandler.CreateCatalog)
	admin.PUT("/catalogs/:id", catalogHandler.UpdateCatalog)
	admin.DELETE("/catalogs/:id", catalogHandler.DeleteCatalog)
	admin.PUT("/orders/:id/admin/status", orderHandler.AdminUpdateStatus)
	admin.GET("/users", userHandler.ListUsers)
	admin.DELETE("/users/:id", userHandler.DeleteUser)

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	logger.Info("Storefront gateway started", zap.String("port", cfg.Port))

	gracefulShutdown(srv, redisClient, producer, shutdownTracing, logger)
}

// gracefulShutdown handles SIGINT/SIGTERM and shuts down all services gracefully
func gracefulShutdown(
	srv *http.Server,
	redisClient *redis.Client,
	producer *kafka.Producer,
	shutdownTracing func(),
	logger *zap.Logger,
) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutdown signal received. Exiting...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Stop REST server
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("REST server forced to shutdown", zap.Error(err))
	} else {
		logger.Info("REST server stopped gracefully")
	}

	// Close Kafka producer
	if err := producer.Close(); err != nil {
		logger.Error("Failed to close Kafka producer", zap.Error(err))
	} else {
		logger.Info("Kafka producer closed gracefully")
	}

	// Close Redis
	if err := redisClient.Close(); err != nil {
		logger.Error("Failed to close Redis", zap.Error(err))
	} else {
		logger.Info("Redis connection closed gracefully")
	}

	// Shutdown tracing
	shutdownTracing()
	logger.Info("Storefront gateway exited gracefully")
}
