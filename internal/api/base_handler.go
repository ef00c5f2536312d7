package api

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/playsignal/feedback-api/internal/utils"
)

type BaseHandler struct{}

// RequestCtx copies gin context keys into the request context under typed
// keys so services see the same identity the middleware resolved.
func (h *BaseHandler) RequestCtx(ginCtx *gin.Context) context.Context {
	ctx := ginCtx.Request.Context()
	for k, v := range ginCtx.Keys {
		contextKey := utils.ContextKey(k)
		ctx = context.WithValue(ctx, contextKey, v)
	}
	return ctx
}
