package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/playsignal/feedback-api/internal/api/dto"
	"github.com/playsignal/feedback-api/internal/domain"
	"github.com/playsignal/feedback-api/internal/service"
	"github.com/playsignal/feedback-api/internal/utils"
)

const (
	defaultFeedbackPageSize = 50
	maxFeedbackPageSize     = 100
)

//go:generate mockery --name GameService --output ../mocks
type GameService interface {
	Create(ctx context.Context, accountID, name string) (*domain.Game, string, error)
	GetByIDAndAccount(ctx context.Context, gameID, accountID string) (*domain.Game, error)
	ListByAccount(ctx context.Context, accountID string) ([]domain.Game, error)
}

//go:generate mockery --name BetaAccessService --output ../mocks
type BetaAccessService interface {
	Validate(ctx context.Context, rawKey string) (string, error)
	Consume(ctx context.Context, keyID string) (bool, error)
	Create(ctx context.Context, maxUses int, expiresAt time.Time) (string, *domain.BetaAccessKey, error)
}

type GameHandler struct {
	*BaseHandler
	games        GameService
	feedback     FeedbackService
	beta         BetaAccessService
	betaRequired bool
}

func NewGameHandler(games GameService, feedback FeedbackService, beta BetaAccessService, betaRequired bool) *GameHandler {
	return &GameHandler{
		games:        games,
		feedback:     feedback,
		beta:         beta,
		betaRequired: betaRequired,
	}
}

// accountID pulls the identity the dashboard gate resolved.
func (h *GameHandler) accountID(c *gin.Context) (string, bool) {
	accountID, err := utils.GetAccountIDFromContext(h.RequestCtx(c))
	if err != nil || accountID == "" {
		c.JSON(http.StatusUnauthorized, dto.Error{Code: dto.CodeUnauthorized})
		return "", false
	}
	return accountID, true
}

// ownedGame resolves the path game for the caller's account. Unknown and
// unowned games both read as 404 so existence is never confirmed to
// outsiders.
func (h *GameHandler) ownedGame(c *gin.Context, accountID string) (*domain.Game, bool) {
	game, err := h.games.GetByIDAndAccount(h.RequestCtx(c), c.Param("gameId"), accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.Error{Code: dto.CodeInternalError})
		return nil, false
	}
	if game == nil {
		c.JSON(http.StatusNotFound, dto.Error{Code: dto.CodeGameNotFound})
		return nil, false
	}
	return game, true
}

// ListGames godoc
// @Summary List the account's games
// @Produce json
// @Param stats query string false "Set to 1 to include per-game aggregates"
// @Success 200 {object} dto.ListGamesResponse
// @Router /v1/games [get]
func (h *GameHandler) ListGames(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}

	games, err := h.games.ListByAccount(h.RequestCtx(c), accountID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.Error{Code: dto.CodeInternalError})
		return
	}

	withStats := c.Query("stats") == "1"
	responses := make([]dto.GameResponse, 0, len(games))
	for i := range games {
		resp := dto.NewGameResponse(&games[i])
		if withStats {
			stats, err := h.feedback.GetStats(h.RequestCtx(c), games[i].ID)
			if err != nil {
				c.JSON(http.StatusInternalServerError, dto.Error{Code: dto.CodeInternalError})
				return
			}
			var reports7d int64
			for _, day := range stats.Last7Days {
				reports7d += day.Count
			}
			resp.Stats = &dto.GameStatsSummary{
				OpenCount: stats.OpenCount,
				BugPct:    stats.BugPct,
				Reports7d: reports7d,
			}
		}
		responses = append(responses, resp)
	}

	c.JSON(http.StatusOK, dto.ListGamesResponse{Games: responses})
}

// CreateGame godoc
// @Summary Register a new game
// @Description Creates a game and mints its API key; beta-gated when enabled
// @Accept json
// @Produce json
// @Param body body dto.CreateGameRequest true "Game to create"
// @Success 201 {object} dto.CreateGameResponse
// @Failure 400 {object} dto.Error
// @Failure 403 {object} dto.Error
// @Router /v1/games [post]
func (h *GameHandler) CreateGame(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}

	var req dto.CreateGameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error{Code: dto.CodeValidationError, Message: err.Error()})
		return
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		c.JSON(http.StatusBadRequest, dto.Error{Code: dto.CodeNameRequired})
		return
	}

	if h.betaRequired {
		keyID, err := h.beta.Validate(h.RequestCtx(c), strings.TrimSpace(req.BetaAccessKey))
		if err != nil || keyID == "" {
			c.JSON(http.StatusForbidden, dto.Error{
				Code:    dto.CodeBetaAccessRequired,
				Message: "A valid beta access key is required to add an experience.",
			})
			return
		}
		consumed, err := h.beta.Consume(h.RequestCtx(c), keyID)
		if err != nil || !consumed {
			c.JSON(http.StatusForbidden, dto.Error{
				Code:    dto.CodeBetaAccessRequired,
				Message: "This beta key has no remaining uses.",
			})
			return
		}
	}

	game, apiKey, err := h.games.Create(h.RequestCtx(c), accountID, name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.Error{Code: dto.CodeInternalError})
		return
	}

	c.JSON(http.StatusCreated, dto.CreateGameResponse{
		Game:   dto.NewGameResponse(game),
		APIKey: apiKey,
	})
}

// ListGameFeedback godoc
// @Summary List feedback for a game
// @Produce json
// @Param gameId path string true "Game ID"
// @Param status query string false "Filter by status"
// @Param type query string false "Filter by type"
// @Success 200 {object} dto.ListFeedbackResponse
// @Failure 404 {object} dto.Error
// @Router /v1/games/{gameId}/feedback [get]
func (h *GameHandler) ListGameFeedback(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}
	game, ok := h.ownedGame(c, accountID)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.Query("limit"))
	if limit <= 0 {
		limit = defaultFeedbackPageSize
	}
	if limit > maxFeedbackPageSize {
		limit = maxFeedbackPageSize
	}
	offset, _ := strconv.Atoi(c.Query("offset"))
	if offset < 0 {
		offset = 0
	}

	feedback, err := h.feedback.List(h.RequestCtx(c), domain.FeedbackFilter{
		GameID: game.ID,
		Status: c.Query("status"),
		Type:   c.Query("type"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.Error{Code: dto.CodeInternalError})
		return
	}

	c.JSON(http.StatusOK, dto.ListFeedbackResponse{Feedback: feedback})
}

// UpdateGameFeedback godoc
// @Summary Triage one feedback item
// @Accept json
// @Produce json
// @Param gameId path string true "Game ID"
// @Param feedbackId path string true "Feedback ID"
// @Param body body dto.UpdateFeedbackRequest true "Fields to change"
// @Success 200 {object} domain.Feedback
// @Failure 400 {object} dto.Error
// @Failure 404 {object} dto.Error
// @Router /v1/games/{gameId}/feedback/{feedbackId} [patch]
func (h *GameHandler) UpdateGameFeedback(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}
	game, ok := h.ownedGame(c, accountID)
	if !ok {
		return
	}

	var req dto.UpdateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error{Code: dto.CodeValidationError, Message: err.Error()})
		return
	}

	if req.Status != nil && !domain.ValidFeedbackStatus(*req.Status) {
		c.JSON(http.StatusBadRequest, dto.Error{Code: dto.CodeInvalidStatus})
		return
	}

	update := domain.FeedbackUpdate{Status: req.Status}
	if len(req.DeveloperNotes) > 0 {
		update.DeveloperNotesSet = true
		if !bytes.Equal(req.DeveloperNotes, []byte("null")) {
			var notes string
			if err := json.Unmarshal(req.DeveloperNotes, &notes); err != nil {
				c.JSON(http.StatusBadRequest, dto.Error{Code: dto.CodeValidationError, Message: "developerNotes must be a string or null"})
				return
			}
			update.DeveloperNotes = &notes
		}
	}

	feedback, err := h.feedback.Update(h.RequestCtx(c), c.Param("feedbackId"), game.ID, update)
	if errors.Is(err, service.ErrFeedbackNotFound) {
		c.JSON(http.StatusNotFound, dto.Error{Code: dto.CodeFeedbackNotFound})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.Error{Code: dto.CodeInternalError})
		return
	}

	c.JSON(http.StatusOK, feedback)
}

// GetGameAnalytics godoc
// @Summary Aggregate feedback statistics for a game
// @Produce json
// @Param gameId path string true "Game ID"
// @Success 200 {object} domain.FeedbackStats
// @Failure 404 {object} dto.Error
// @Router /v1/games/{gameId}/analytics [get]
func (h *GameHandler) GetGameAnalytics(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}
	game, ok := h.ownedGame(c, accountID)
	if !ok {
		return
	}

	stats, err := h.feedback.GetStats(h.RequestCtx(c), game.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.Error{Code: dto.CodeInternalError})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// DeleteGameFeedback godoc
// @Summary Delete one feedback item
// @Param gameId path string true "Game ID"
// @Param feedbackId path string true "Feedback ID"
// @Success 204
// @Failure 404 {object} dto.Error
// @Router /v1/games/{gameId}/feedback/{feedbackId} [delete]
func (h *GameHandler) DeleteGameFeedback(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}
	game, ok := h.ownedGame(c, accountID)
	if !ok {
		return
	}

	err := h.feedback.Delete(h.RequestCtx(c), c.Param("feedbackId"), game.ID)
	if errors.Is(err, service.ErrFeedbackNotFound) {
		c.JSON(http.StatusNotFound, dto.Error{Code: dto.CodeFeedbackNotFound})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.Error{Code: dto.CodeInternalError})
		return
	}

	c.Status(http.StatusNoContent)
}

// BulkDeleteGameFeedback godoc
// @Summary Delete several feedback items
// @Accept json
// @Produce json
// @Param gameId path string true "Game ID"
// @Param body body dto.BulkDeleteFeedbackRequest true "IDs to delete"
// @Success 200 {object} dto.BulkDeleteFeedbackResponse
// @Failure 404 {object} dto.Error
// @Router /v1/games/{gameId}/feedback/bulk-delete [post]
func (h *GameHandler) BulkDeleteGameFeedback(c *gin.Context) {
	accountID, ok := h.accountID(c)
	if !ok {
		return
	}
	game, ok := h.ownedGame(c, accountID)
	if !ok {
		return
	}

	var req dto.BulkDeleteFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error{Code: dto.CodeValidationError, Message: err.Error()})
		return
	}

	deleted, err := h.feedback.BulkDelete(h.RequestCtx(c), game.ID, req.IDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.Error{Code: dto.CodeInternalError})
		return
	}

	c.JSON(http.StatusOK, dto.BulkDeleteFeedbackResponse{Deleted: deleted})
}
