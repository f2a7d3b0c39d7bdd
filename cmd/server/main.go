package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"

	catalogapp "github.com/stitchline/backend/internal/application/catalog"
	inventoryapp "github.com/stitchline/backend/internal/application/inventory"
	"github.com/stitchline/backend/internal/infrastructure/cache"
	"github.com/stitchline/backend/internal/infrastructure/config"
	"github.com/stitchline/backend/internal/infrastructure/event"
	"github.com/stitchline/backend/internal/infrastructure/logger"
	"github.com/stitchline/backend/internal/infrastructure/persistence"
	"github.com/stitchline/backend/internal/interfaces/http/handler"
	"github.com/stitchline/backend/internal/interfaces/http/middleware"
	"github.com/stitchline/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Stitchline backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Initialize database connection
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize repositories
	skuRepo := persistence.NewGormSkuRepository(db.DB)
	entryRepo := persistence.NewGormLedgerEntryRepository(db.DB)
	sessionRepo := persistence.NewGormReconciliationSessionRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Initialize event bus with the audit trail subscriber
	eventBus := event.NewInMemoryEventBus(log, event.WithHandlerTimeout(cfg.Event.HandlerTimeout))
	eventBus.Subscribe(event.NewAuditLogHandler(log))
	if err := eventBus.Start(context.Background()); err != nil {
		log.Fatal("Failed to start event bus", zap.Error(err))
	}

	// Balance cache invalidation over Redis pub/sub, when enabled
	var invalidator inventoryapp.BalanceCacheInvalidator
	if cfg.Redis.Enabled {
		redisInvalidator, err := cache.NewRedisBalanceInvalidator(cfg.Redis, cache.WithInvalidatorLogger(log))
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		defer func() {
			if err := redisInvalidator.Close(); err != nil {
				log.Error("Error closing Redis invalidator", zap.Error(err))
			}
		}()
		invalidator = redisInvalidator
		log.Info("Balance cache invalidation enabled", zap.String("addr", cfg.Redis.Addr()))
	} else {
		invalidator = inventoryapp.NewNoOpBalanceCacheInvalidator()
	}

	// Initialize application services
	skuService := catalogapp.NewSkuService(skuRepo)
	ledgerService := inventoryapp.NewLedgerService(entryRepo, skuRepo, eventBus, invalidator, log)
	reconciliationService := inventoryapp.NewReconciliationService(
		sessionRepo, skuRepo, entryRepo, txScope, eventBus, invalidator, log,
	).WithSubmitBudget(inventoryapp.SubmitBudget{
		Base:    cfg.Submit.BaseTimeout,
		PerItem: cfg.Submit.PerItemTimeout,
	})

	// Initialize handlers
	skuHandler := handler.NewSkuHandler(skuService)
	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	reconciliationHandler := handler.NewReconciliationHandler(reconciliationService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack in order: request id, panic recovery, request
	// logging, security headers, CORS
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfigFromHTTP(cfg.HTTP)))

	// Health check endpoint, outside API versioning
	engine.GET("/health", healthHandler(db))

	// Register API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(skuHandler).
		Register(ledgerHandler).
		Register(reconciliationHandler)
	r.Setup()

	engine.GET("/api/v1/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}
	if err := eventBus.Stop(ctx); err != nil {
		log.Warn("Event bus did not stop cleanly", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// gormLogLevel maps the application log level onto GORM's logger
func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "debug":
		return gormlogger.Info
	case "warn", "error":
		return gormlogger.Error
	default:
		return gormlogger.Warn
	}
}

// healthHandler reports liveness of the service and its database
func healthHandler(db *persistence.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
		})
	}
}
