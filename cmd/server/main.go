package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	appdashboard "github.com/rentalhub/backend/internal/application/dashboard"
	"github.com/rentalhub/backend/internal/infrastructure/auth"
	"github.com/rentalhub/backend/internal/infrastructure/config"
	"github.com/rentalhub/backend/internal/infrastructure/logger"
	"github.com/rentalhub/backend/internal/infrastructure/persistence"
	"github.com/rentalhub/backend/internal/interfaces/http/handler"
	"github.com/rentalhub/backend/internal/interfaces/http/middleware"
	"github.com/rentalhub/backend/internal/interfaces/http/router"
	"go.uber.org/zap"
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
		_ = log.Sync()
	}()

	log.Info("Starting RentalHub Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully",
		zap.String("driver", cfg.Database.Driver))

	// Initialize repositories
	statsRepo := persistence.NewGormStatsRepository(db.DB, log)
	userDirectory := persistence.NewGormUserDirectory(db.DB)

	// Initialize application services
	jwtService := auth.NewJWTService(cfg.JWT)
	rankingAggregator := appdashboard.NewRankingAggregator(userDirectory, log)
	dashboardService := appdashboard.NewService(statsRepo, rankingAggregator, log)

	// Initialize HTTP handlers
	dashboardHandler := handler.NewDashboardHandler(dashboardService, cfg.Dashboard.RequestTimeout, log)

	// Set Gin mode based on environment
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Middleware stack: request ID, panic recovery, request logging, CORS
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORS())

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db))

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))

	// Apply JWT authentication middleware to API routes
	jwtConfig := middleware.JWTMiddlewareConfig{
		JWTService: jwtService,
		Logger:     log,
	}
	engine.Use(middleware.JWTAuthMiddlewareWithConfig(jwtConfig))

	r.Register(dashboardHandler)
	r.Setup()

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

	log.Info("Server exited gracefully")
}

// healthHandler returns a handler for health check endpoints
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
