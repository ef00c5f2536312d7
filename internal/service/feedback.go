package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/playsignal/feedback-api/internal/api/dto"
	"github.com/playsignal/feedback-api/internal/domain"
	"github.com/playsignal/feedback-api/internal/repository"
)

// FeedbackBroadcaster pushes freshly created feedback to live dashboard
// listeners. Delivery is best-effort.
type FeedbackBroadcaster interface {
	BroadcastFeedback(feedback *domain.Feedback)
}

type FeedbackService struct {
	repo        repository.Repository
	broadcaster FeedbackBroadcaster
}

func NewFeedbackService(repo repository.Repository) *FeedbackService {
	return &FeedbackService{repo: repo}
}

func (s *FeedbackService) SetBroadcaster(b FeedbackBroadcaster) {
	s.broadcaster = b
}

func (s *FeedbackService) Create(ctx context.Context, gameID string, req dto.CreateFeedbackRequest) (*domain.Feedback, error) {
	feedback := &domain.Feedback{
		ID:             uuid.NewString(),
		GameID:         gameID,
		Type:           req.Type,
		IdentityOption: req.IdentityOption,
		Status:         domain.FeedbackStatusNew,
		Body:           req.Body,
		Category:       req.Category,
		Tags:           req.Tags,
		Severity:       req.Severity,
		Metadata:       req.Metadata,
		CreatedAt:      time.Now(),
	}
	if feedback.Tags == nil {
		feedback.Tags = []string{}
	}
	if req.Identity != nil {
		identity, err := marshalIdentity(req.Identity)
		if err != nil {
			return nil, err
		}
		feedback.Identity = identity
	}

	if err := s.repo.Feedback().Create(ctx, feedback); err != nil {
		return nil, err
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastFeedback(feedback)
	}
	return feedback, nil
}

func marshalIdentity(identity *dto.FeedbackIdentity) (json.RawMessage, error) {
	raw, err := json.Marshal(identity)
	if err != nil {
		return nil, err
	}
	return raw, nil
}

func (s *FeedbackService) List(ctx context.Context, filter domain.FeedbackFilter) ([]domain.Feedback, error) {
	feedback, err := s.repo.Feedback().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if feedback == nil {
		feedback = []domain.Feedback{}
	}
	return feedback, nil
}

func (s *FeedbackService) Update(ctx context.Context, feedbackID, gameID string, update domain.FeedbackUpdate) (*domain.Feedback, error) {
	feedback, err := s.repo.Feedback().Update(ctx, feedbackID, gameID, update)
	if err != nil {
		return nil, err
	}
	if feedback == nil {
		return nil, ErrFeedbackNotFound
	}
	return feedback, nil
}

func (s *FeedbackService) Delete(ctx context.Context, feedbackID, gameID string) error {
	deleted, err := s.repo.Feedback().Delete(ctx, feedbackID, gameID)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrFeedbackNotFound
	}
	return nil
}

func (s *FeedbackService) BulkDelete(ctx context.Context, gameID string, ids []string) (int64, error) {
	return s.repo.Feedback().BulkDelete(ctx, gameID, ids)
}

func (s *FeedbackService) GetStats(ctx context.Context, gameID string) (*domain.FeedbackStats, error) {
	return s.repo.Feedback().GetStats(ctx, gameID, time.Now())
}
