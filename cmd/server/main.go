package main

import (
	"fmt"
	"log"
	"net/http"

	"swyft/internal/config"
	"swyft/internal/handlers"
	"swyft/internal/middleware"
	"swyft/internal/repositories/mongodb"
	"swyft/internal/services"
	"swyft/internal/utils"
	"swyft/pkg/cache"
	"swyft/pkg/database"
	"swyft/pkg/logger"
	"swyft/pkg/websocket"
	"swyft/routes"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  logger.LogLevel(cfg.App.LogLevel),
		Format: cfg.App.LogFormat,
		Output: "stdout",
		Colors: cfg.App.Debug,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// MongoDB
	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer db.Close()

	if err := database.NewMigrator(db.Database).Up(); err != nil {
		appLogger.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis is optional; without it the repositories go straight to Mongo.
	var cacheService services.CacheService
	if cfg.Redis.Enabled {
		redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			appLogger.Fatalf("Failed to connect to Redis: %v", err)
		}
		defer redisCache.Close()
		cacheService = services.NewCacheService(redisCache, appLogger)
	}

	// Realtime notifier
	wsHandler := websocket.NewHandler(appLogger)

	// Repositories and services
	rideRepo := mongodb.NewRideRepository(db.Database, cacheService)
	userRepo := mongodb.NewUserRepository(db.Database)
	rideService := services.NewRideService(rideRepo, userRepo, wsHandler.GetHub(), cacheService, appLogger)
	userService := services.NewUserService(userRepo)

	// Handlers
	rideHandler := handlers.NewRideHandler(rideService)
	driverHandler := handlers.NewDriverHandler(userService)

	// Initialize Gin router
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.MetricsMiddleware())

	// API routes
	api := router.Group("/api")
	{
		routes.SetupRideRoutes(api, rideHandler, driverHandler)
	}

	// Realtime endpoint
	router.GET("/ws", wsHandler.HandleWebSocket)

	// Health check
	router.GET("/health", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": utils.AppVersion,
		})
	})

	// Prometheus metrics
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	appLogger.Infof("Starting server on %s", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		appLogger.Fatalf("Server stopped: %v", err)
	}
}
