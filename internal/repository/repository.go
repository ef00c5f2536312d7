package repository

import (
	"context"
	"time"

	"github.com/playsignal/feedback-api/internal/domain"
)

// GameRepository persists games and their hashed API credentials. Lookups by
// credential return (nil, nil) when no live key matches, so callers cannot
// distinguish unknown from revoked keys.
type GameRepository interface {
	Create(ctx context.Context, game *domain.Game, keyHash string) error
	GetByAPIKeyHash(ctx context.Context, keyHash string) (*domain.Game, error)
	GetByIDAndAccount(ctx context.Context, id, accountID string) (*domain.Game, error)
	ListByAccount(ctx context.Context, accountID string) ([]domain.Game, error)
}

type FeedbackRepository interface {
	Create(ctx context.Context, feedback *domain.Feedback) error
	List(ctx context.Context, filter domain.FeedbackFilter) ([]domain.Feedback, error)
	Update(ctx context.Context, feedbackID, gameID string, update domain.FeedbackUpdate) (*domain.Feedback, error)
	Delete(ctx context.Context, feedbackID, gameID string) (bool, error)
	BulkDelete(ctx context.Context, gameID string, ids []string) (int64, error)
	GetStats(ctx context.Context, gameID string, now time.Time) (*domain.FeedbackStats, error)
}

// BetaKeyRepository backs the beta access gate. ConsumeUse must perform the
// check-and-increment as one atomic storage operation.
type BetaKeyRepository interface {
	Create(ctx context.Context, key *domain.BetaAccessKey) error
	FindValidByHash(ctx context.Context, keyHash string, now time.Time) (*domain.BetaAccessKey, error)
	ConsumeUse(ctx context.Context, id string) (bool, error)
}

type Repository interface {
	Game() GameRepository
	Feedback() FeedbackRepository
	BetaKey() BetaKeyRepository
	Ping(ctx context.Context) error
}
