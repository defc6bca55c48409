// backend/cmd/server/main.go
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
	"github.com/joho/godotenv"
	"github.com/stayfinder/backend/internal/api/handlers"
	"github.com/stayfinder/backend/internal/config"
	"github.com/stayfinder/backend/internal/database"
	"github.com/stayfinder/backend/internal/health"
	"github.com/stayfinder/backend/internal/jobs"
	"github.com/stayfinder/backend/internal/middleware"
	"github.com/stayfinder/backend/internal/repository"
	"github.com/stayfinder/backend/internal/search"
	"github.com/stayfinder/backend/pkg/utils"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	logger := utils.GetLogger()
	logger.Info("Starting stayfinder backend...")

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Configuration validation failed")
	}

	dbConfig := &database.Config{
		DatabaseURL: cfg.Database.URL,
		RedisURL:    cfg.Redis.URL,
		LogLevel:    os.Getenv("LOG_LEVEL"),
	}

	dbManager, err := database.NewManager(dbConfig, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database manager")
	}
	defer dbManager.Close()

	if err := dbManager.Migrate(); err != nil {
		logger.WithError(err).Fatal("Database migration failed")
	}

	repoManager := repository.NewRepositoryManager(dbManager.DB)
	cache := database.NewCache(dbManager.Redis, logger)

	pipeline := search.NewPipeline(repoManager.Hotel, repoManager.Room, repoManager.Offer, logger)
	searchService := search.NewService(pipeline, repoManager.Search, cache, logger, cfg.Search.ResultTTL)

	queueConfig := jobs.DefaultConfig()
	queueConfig.Workers = cfg.Search.Workers
	queueConfig.JobTimeout = cfg.Search.JobTimeout
	queue := jobs.NewQueue(queueConfig, logger)
	queue.Start()

	checker := health.NewHealthChecker(dbManager, logger)

	searchHandler := handlers.NewSearchHandler(searchService, queue, repoManager, cache, logger)
	bookingHandler := handlers.NewBookingHandler(repoManager, logger)
	locationHandler := handlers.NewLocationHandler(repoManager, logger)
	authHandler := handlers.NewAuthHandler(repoManager, cache, cfg.Session.TTL, logger)
	healthHandler := handlers.NewHealthHandler(checker)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.SecurityHeaders())

	rateLimiter := middleware.NewRateLimiter(60, time.Minute)
	router.Use(rateLimiter.RateLimit())

	// Public endpoints
	router.GET("/health", healthHandler.HandleHealth)
	router.GET("/locations/autocomplete", locationHandler.HandleAutocomplete)
	router.POST("/auth/signup", authHandler.HandleSignup)
	router.POST("/auth/login", authHandler.HandleLogin)

	// Protected endpoints: session token or API token
	authed := router.Group("/", middleware.Auth(cache, repoManager.ApiToken, logger))
	authed.POST("/auth/logout", authHandler.HandleLogout)
	authed.GET("/me", authHandler.HandleMe)
	authed.GET("/api-tokens", authHandler.HandleListTokens)
	authed.POST("/api-tokens", authHandler.HandleCreateToken)
	authed.DELETE("/api-tokens/:token_id", authHandler.HandleDeleteToken)
	authed.POST("/search", searchHandler.HandleCreateSearch)
	authed.GET("/search/:search_id", searchHandler.HandleGetSearch)
	authed.POST("/bookings", bookingHandler.HandleCreateBooking)
	authed.GET("/bookings/:booking_id", bookingHandler.HandleGetBooking)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("HTTP server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("HTTP server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Error("HTTP server shutdown failed")
	}

	queue.Shutdown()
	logger.Info("Shutdown complete")
}
