package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/playsignal/feedback-api/internal/api/dto"
	"github.com/playsignal/feedback-api/internal/config"
	"github.com/playsignal/feedback-api/internal/utils"
)

type DashboardAuthMiddleware struct {
	config *config.Config
}

func NewDashboardAuthMiddleware(config *config.Config) *DashboardAuthMiddleware {
	return &DashboardAuthMiddleware{config: config}
}

// RequireDashboardAuth assigns the configured account identity to the
// request. With DASHBOARD_TOKEN set, the bearer token must match it exactly.
// With no token configured every caller is accepted as the default account;
// that open mode exists for local development and is unsafe anywhere shared.
func (m *DashboardAuthMiddleware) RequireDashboardAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.config.DashboardToken != "" {
			token := bearerToken(c)
			if token == "" || token != m.config.DashboardToken {
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Error{Code: dto.CodeInvalidDashToken})
				return
			}
		}

		c.Set(string(utils.AccountIDKey), m.config.DashboardAccountID)
		c.Next()
	}
}

// bearerToken also accepts ?token= because browsers cannot attach headers
// to websocket upgrades.
func bearerToken(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	}
	return c.Query("token")
}
