package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/playsignal/feedback-api/internal/middleware"
	"github.com/playsignal/feedback-api/internal/repository"
)

type Server struct {
	feedback      *FeedbackHandler
	game          *GameHandler
	websocket     *WebSocketHandler
	gameAuth      *middleware.GameAuthMiddleware
	dashboardAuth *middleware.DashboardAuthMiddleware
	rateLimit     *middleware.RateLimitMiddleware

	repo         repository.Repository
	dbConfigured bool
}

func NewServer(
	feedback *FeedbackHandler,
	game *GameHandler,
	websocket *WebSocketHandler,
	gameAuth *middleware.GameAuthMiddleware,
	dashboardAuth *middleware.DashboardAuthMiddleware,
	rateLimit *middleware.RateLimitMiddleware,
	repo repository.Repository,
	dbConfigured bool,
) *Server {
	return &Server{
		feedback:      feedback,
		game:          game,
		websocket:     websocket,
		gameAuth:      gameAuth,
		dashboardAuth: dashboardAuth,
		rateLimit:     rateLimit,
		repo:          repo,
		dbConfigured:  dbConfigured,
	}
}

func (s *Server) SetupRoutes(router *gin.Engine) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/ready", s.ready)

	v1 := router.Group("/v1")
	{
		v1.POST("/feedback",
			s.gameAuth.RequireGameAuth(),
			s.rateLimit.GameRateLimit(),
			s.feedback.CreateFeedback,
		)

		games := v1.Group("/games", s.dashboardAuth.RequireDashboardAuth())
		{
			games.GET("", s.game.ListGames)
			games.POST("", s.game.CreateGame)
			games.GET("/:gameId/feedback", s.game.ListGameFeedback)
			games.GET("/:gameId/feedback/stream", s.websocket.HandleFeedbackStream)
			games.PATCH("/:gameId/feedback/:feedbackId", s.game.UpdateGameFeedback)
			games.DELETE("/:gameId/feedback/:feedbackId", s.game.DeleteGameFeedback)
			games.POST("/:gameId/feedback/bulk-delete", s.game.BulkDeleteGameFeedback)
			games.GET("/:gameId/analytics", s.game.GetGameAnalytics)
		}
	}
}

// StartWebSocketHub starts the hub broadcasting live feedback.
func (s *Server) StartWebSocketHub() {
	go s.websocket.Start()
}

func (s *Server) StopWebSocketHub() {
	s.websocket.Stop()
}

// GetWebSocketHandler exposes the handler for wiring up broadcasting.
func (s *Server) GetWebSocketHandler() *WebSocketHandler {
	return s.websocket
}

func (s *Server) ready(c *gin.Context) {
	if !s.dbConfigured {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"reason": "DATABASE_URL not configured",
		})
		return
	}

	if err := s.repo.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"reason": "database connection failed",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
