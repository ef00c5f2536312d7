package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/playsignal/feedback-api/internal/repository"
)

type postgresRepository struct {
	db           *gorm.DB
	gameRepo     repository.GameRepository
	feedbackRepo repository.FeedbackRepository
	betaKeyRepo  repository.BetaKeyRepository
}

func NewPostgresRepository(db *gorm.DB) repository.Repository {
	return &postgresRepository{
		db:           db,
		gameRepo:     NewGameRepository(db),
		feedbackRepo: NewFeedbackRepository(db),
		betaKeyRepo:  NewBetaKeyRepository(db),
	}
}

func (r *postgresRepository) Game() repository.GameRepository {
	return r.gameRepo
}

func (r *postgresRepository) Feedback() repository.FeedbackRepository {
	return r.feedbackRepo
}

func (r *postgresRepository) BetaKey() repository.BetaKeyRepository {
	return r.betaKeyRepo
}

func (r *postgresRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
