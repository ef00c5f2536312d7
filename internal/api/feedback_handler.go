package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/playsignal/feedback-api/internal/api/dto"
	"github.com/playsignal/feedback-api/internal/domain"
	"github.com/playsignal/feedback-api/internal/utils"
)

//go:generate mockery --name FeedbackService --output ../mocks
type FeedbackService interface {
	Create(ctx context.Context, gameID string, req dto.CreateFeedbackRequest) (*domain.Feedback, error)
	List(ctx context.Context, filter domain.FeedbackFilter) ([]domain.Feedback, error)
	Update(ctx context.Context, feedbackID, gameID string, update domain.FeedbackUpdate) (*domain.Feedback, error)
	Delete(ctx context.Context, feedbackID, gameID string) error
	BulkDelete(ctx context.Context, gameID string, ids []string) (int64, error)
	GetStats(ctx context.Context, gameID string) (*domain.FeedbackStats, error)
}

type FeedbackHandler struct {
	*BaseHandler
	service FeedbackService
}

func NewFeedbackHandler(service FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{service: service}
}

// CreateFeedback godoc
// @Summary Submit player feedback
// @Description Accepts one feedback item for the authenticated game
// @Tags feedback
// @Accept json
// @Produce json
// @Param body body dto.CreateFeedbackRequest true "Feedback payload"
// @Success 201 {object} dto.CreateFeedbackResponse
// @Failure 400 {object} dto.Error
// @Failure 401 {object} dto.Error
// @Failure 429 {object} dto.Error
// @Router /v1/feedback [post]
func (h *FeedbackHandler) CreateFeedback(c *gin.Context) {
	game, err := utils.GetGameFromContext(h.RequestCtx(c))
	if err != nil {
		c.JSON(http.StatusUnauthorized, dto.Error{Code: dto.CodeUnauthorized})
		return
	}

	var req dto.CreateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.Error{Code: dto.CodeValidationError, Message: err.Error()})
		return
	}

	if msg := validateCreateFeedback(req); msg != "" {
		c.JSON(http.StatusBadRequest, dto.Error{Code: dto.CodeValidationError, Message: msg})
		return
	}

	if code := checkFeatureToggles(game.Settings.Features, req); code != "" {
		c.JSON(http.StatusBadRequest, dto.Error{Code: code})
		return
	}

	feedback, err := h.service.Create(h.RequestCtx(c), game.ID, req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.Error{Code: dto.CodeInternalError})
		return
	}

	c.JSON(http.StatusCreated, dto.CreateFeedbackResponse{ID: feedback.ID})
}

func validateCreateFeedback(req dto.CreateFeedbackRequest) string {
	if !domain.ValidFeedbackType(req.Type) {
		return "type must be one of bug_report, feature_request, general"
	}
	if !domain.ValidIdentityOption(req.IdentityOption) {
		return "identityOption must be one of anonymous, userId, usernameUserId"
	}
	if len(req.Body) == 0 || len(req.Body) > 4000 {
		return "body must be between 1 and 4000 characters"
	}
	if req.Category != nil && (len(*req.Category) == 0 || len(*req.Category) > 100) {
		return "category must be between 1 and 100 characters"
	}
	if len(req.Tags) > 10 {
		return "at most 10 tags are allowed"
	}
	for _, tag := range req.Tags {
		if len(tag) == 0 || len(tag) > 50 {
			return "tags must be between 1 and 50 characters"
		}
	}
	if req.Severity != nil && !domain.ValidSeverity(*req.Severity) {
		return "severity must be one of low, medium, high, critical"
	}
	if req.IdentityOption == domain.IdentityOptionAnonymous && req.Identity != nil {
		return "identity must be omitted when identityOption is anonymous"
	}
	if req.Identity != nil && req.Identity.UserID == "" && req.Identity.Username == "" {
		return "identity must include userId and/or username"
	}
	return ""
}

// checkFeatureToggles rejects fields the game has explicitly switched off.
func checkFeatureToggles(features *domain.FeatureToggles, req dto.CreateFeedbackRequest) string {
	if features == nil {
		return ""
	}

	if req.Category != nil && features.Categories != nil && !*features.Categories {
		return dto.CodeCategoriesDisabled
	}
	if req.Severity != nil && features.Severity != nil && !*features.Severity {
		return dto.CodeSeverityDisabled
	}
	if len(req.Metadata) > 0 && features.Attachments != nil && !*features.Attachments {
		var metadata map[string]json.RawMessage
		if err := json.Unmarshal(req.Metadata, &metadata); err == nil {
			if _, ok := metadata["attachments"]; ok {
				return dto.CodeAttachmentsDisabled
			}
		}
	}
	return ""
}
