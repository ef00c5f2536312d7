package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/playsignal/feedback-api/internal/api/dto"
	"github.com/playsignal/feedback-api/internal/config"
	"github.com/playsignal/feedback-api/internal/domain"
	"github.com/playsignal/feedback-api/internal/ratelimit"
	"github.com/playsignal/feedback-api/internal/utils"
	"github.com/playsignal/feedback-api/pkg/logger"
)

const anonymousIdentity = "anonymous"

type RateLimitMiddleware struct {
	limiter ratelimit.Limiter
	config  *config.Config
	logger  *logger.Logger
}

func NewRateLimitMiddleware(limiter ratelimit.Limiter, config *config.Config, logger *logger.Logger) *RateLimitMiddleware {
	return &RateLimitMiddleware{limiter: limiter, config: config, logger: logger}
}

// GameRateLimit enforces the per-game quota, bucketed by the submitting
// end user. Anonymous submissions from one game share a single bucket.
// Runs after game auth.
func (m *RateLimitMiddleware) GameRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get(string(utils.GameKey))
		game, ok := value.(*domain.Game)
		if !exists || !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Error{Code: dto.CodeUnauthorized})
			return
		}

		limit, window := m.resolveLimit(game)
		key := game.ID + ":" + m.identityFromBody(c)

		result, err := m.limiter.Allow(c.Request.Context(), key, limit, window)
		if err != nil {
			// Shared-store limiter hiccup; admit rather than take
			// feedback ingestion down with it.
			m.logger.Error("rate limiter error", err)
			c.Next()
			return
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(result.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(result.ResetUnix(), 10))

		if !result.Allowed {
			c.Header("Retry-After", strconv.Itoa(result.RetryAfterSeconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, dto.Error{
				Code:              dto.CodeRateLimited,
				RetryAfterSeconds: result.RetryAfterSeconds,
			})
			return
		}

		c.Next()
	}
}

// resolveLimit applies the game's settings override before the process-wide
// defaults.
func (m *RateLimitMiddleware) resolveLimit(game *domain.Game) (int, time.Duration) {
	limit := m.config.RateLimitMax
	window := m.config.RateLimitWindow

	if settings := game.Settings.RateLimit; settings != nil {
		if settings.Max > 0 {
			limit = settings.Max
		}
		if settings.WindowMs > 0 {
			window = time.Duration(settings.WindowMs) * time.Millisecond
		}
	}
	return limit, window
}

// identityFromBody peeks at the request payload for identity.userId without
// consuming the body; the handler still binds it afterwards.
func (m *RateLimitMiddleware) identityFromBody(c *gin.Context) string {
	if c.Request.Body == nil {
		return anonymousIdentity
	}

	raw, err := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return anonymousIdentity
	}

	var payload struct {
		Identity struct {
			UserID string `json:"userId"`
		} `json:"identity"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil || payload.Identity.UserID == "" {
		return anonymousIdentity
	}
	return payload.Identity.UserID
}
