package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/playsignal/feedback-api/internal/api/dto"
	"github.com/playsignal/feedback-api/internal/service"
	"github.com/playsignal/feedback-api/internal/utils"
	"github.com/playsignal/feedback-api/pkg/logger"
)

type GameAuthMiddleware struct {
	games  *service.GameService
	logger *logger.Logger
}

func NewGameAuthMiddleware(games *service.GameService, logger *logger.Logger) *GameAuthMiddleware {
	return &GameAuthMiddleware{games: games, logger: logger}
}

// RequireGameAuth resolves the request's API credential to a game and stores
// it in the context. Unknown and revoked keys produce the same response as a
// wrong key so the endpoint leaks nothing about which keys exist.
func (m *GameAuthMiddleware) RequireGameAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := extractAPIKey(c)
		if apiKey == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Error{Code: dto.CodeMissingAPIKey})
			return
		}

		game, err := m.games.GetByAPIKey(c.Request.Context(), apiKey)
		if err != nil {
			m.logger.Error("failed to validate API key", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.Error{Code: dto.CodeAuthError})
			return
		}
		if game == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Error{Code: dto.CodeInvalidAPIKey})
			return
		}

		c.Set(string(utils.GameKey), game)
		c.Next()
	}
}

// extractAPIKey reads the bearer token first and falls back to the
// x-api-key header.
func extractAPIKey(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}

	return strings.TrimSpace(c.GetHeader("x-api-key"))
}
