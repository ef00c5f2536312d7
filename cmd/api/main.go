package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/playsignal/feedback-api/internal/api"
	"github.com/playsignal/feedback-api/internal/config"
	"github.com/playsignal/feedback-api/internal/middleware"
	"github.com/playsignal/feedback-api/internal/ratelimit"
	"github.com/playsignal/feedback-api/internal/repository"
	"github.com/playsignal/feedback-api/internal/repository/memory"
	"github.com/playsignal/feedback-api/internal/repository/postgres"
	"github.com/playsignal/feedback-api/internal/service"
	"github.com/playsignal/feedback-api/internal/service/pubsub"
	"github.com/playsignal/feedback-api/pkg/logger"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	appLogger := logger.NewLogger(os.Getenv("APP_ENV"))

	cfg, err := config.Load()
	if err != nil {
		appLogger.Fatal("Failed to load config", err)
	}

	// With no database configured the service runs entirely in memory with
	// the fixed dev credential. The bypass is wired only on this path.
	var repo repository.Repository
	var gameService *service.GameService
	dbConfigured := cfg.DatabaseURL != ""
	if dbConfigured {
		db, err := config.NewDatabase(cfg.DatabaseURL)
		if err != nil {
			appLogger.Fatal("Failed to connect to database", err)
		}
		repo = postgres.NewPostgresRepository(db)
		gameService = service.NewGameService(repo)
		appLogger.Info("Database connection established")
	} else {
		repo = memory.NewMemoryRepository()
		gameService = service.NewGameServiceWithDevBypass(repo, cfg.DevAPIKey, cfg.DevGameID)
		appLogger.Warn("DATABASE_URL not set, using in-memory storage (development only)")
	}

	feedbackService := service.NewFeedbackService(repo)
	betaService := service.NewBetaAccessService(repo)

	// Redis is optional: with it the limiter and live-feedback fan-out are
	// shared across processes, without it both stay in-process.
	var limiter ratelimit.Limiter
	var feedbackPubSub *pubsub.RedisPubSub
	var fixedWindow *ratelimit.FixedWindow
	if redisConfig := config.RedisConfigFromEnv(); redisConfig != nil {
		redisClient, err := redisConfig.GetClient()
		if err != nil {
			appLogger.Fatal("Failed to connect to Redis", err)
		}
		defer redisClient.Close()
		limiter = ratelimit.NewRedisFixedWindow(redisClient)
		feedbackPubSub = pubsub.NewRedisPubSub(redisClient, appLogger)
		appLogger.Info("Redis connection established")
	} else {
		fixedWindow = ratelimit.NewFixedWindow()
		fixedWindow.StartSweeping(cfg.RateLimitWindow)
		defer fixedWindow.Stop()
		limiter = fixedWindow
	}

	gameAuth := middleware.NewGameAuthMiddleware(gameService, appLogger)
	dashboardAuth := middleware.NewDashboardAuthMiddleware(cfg)
	rateLimit := middleware.NewRateLimitMiddleware(limiter, cfg, appLogger)

	feedbackHandler := api.NewFeedbackHandler(feedbackService)
	gameHandler := api.NewGameHandler(gameService, feedbackService, betaService, cfg.BetaAccessRequired)
	websocketHandler := api.NewWebSocketHandler(gameService, appLogger, feedbackPubSub)

	server := api.NewServer(
		feedbackHandler,
		gameHandler,
		websocketHandler,
		gameAuth,
		dashboardAuth,
		rateLimit,
		repo,
		dbConfigured,
	)

	feedbackService.SetBroadcaster(websocketHandler)
	server.StartWebSocketHub()
	defer server.StopWebSocketHub()

	if os.Getenv("APP_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	server.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	go func() {
		appLogger.Infof("Listening on :%d", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Fatal("Server forced to shutdown", err)
	}

	appLogger.Info("Server exiting")
	appLogger.Sync()
}
