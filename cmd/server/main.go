package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/rcallahan/fpl-optimizer/internal/api"
	"github.com/rcallahan/fpl-optimizer/internal/api/handlers"
	"github.com/rcallahan/fpl-optimizer/internal/api/middleware"
	"github.com/rcallahan/fpl-optimizer/internal/providers"
	"github.com/rcallahan/fpl-optimizer/internal/services"
	"github.com/rcallahan/fpl-optimizer/pkg/config"
	"github.com/rcallahan/fpl-optimizer/pkg/database"
	"github.com/rcallahan/fpl-optimizer/pkg/logger"
	"github.com/rcallahan/fpl-optimizer/pkg/utils"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}

	log := logger.InitLogger()
	if cfg.IsDevelopment() {
		log.SetLevel(logrus.DebugLevel)
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	runStore := services.NewRunStore(db)
	if err := runStore.Migrate(); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Connect to Redis. The cache is an optimization, not a dependency; a
	// missing Redis just means every request pays the upstream fetch.
	var cacheService *services.CacheService
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := redis.NewClient(opt)
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Warnf("Redis unavailable, running without cache: %v", err)
	} else {
		cacheService = services.NewCacheService(redisClient)
		defer redisClient.Close()
	}

	// Initialize services
	fplClient := providers.NewFPLClient(cfg.FPLBaseURL, cfg.FPLTimeout, cfg.FPLRequestsPerSec, log)
	squadService := services.NewSquadService(fplClient, cacheService, runStore, cfg, log)

	if cacheService != nil {
		dataFetcher := services.NewDataFetcherService(fplClient, cacheService, log, cfg.RefreshInterval, cfg.BootstrapCacheTTL)
		if err := dataFetcher.Start(); err != nil {
			log.Errorf("Failed to start data fetcher: %v", err)
		}
		defer dataFetcher.Stop()
	}

	// Setup Gin router
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger())
	router.Use(middleware.CORS(cfg.CorsOrigins))

	router.GET("/health", handlers.Health)
	router.NoRoute(func(c *gin.Context) {
		utils.SendNotFound(c, "Route not found")
	})

	// Setup API routes under /api/v1
	apiV1 := router.Group("/api/v1")
	api.SetupRoutes(apiV1, squadService, runStore, cfg)

	// Setup server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}
