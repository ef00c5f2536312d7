package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/playsignal/feedback-api/internal/domain"
)

type GameRepository struct {
	db *gorm.DB
}

func NewGameRepository(db *gorm.DB) *GameRepository {
	return &GameRepository{db: db}
}

// Create inserts the game and its hashed API credential in one transaction
// so a game never exists without a key.
func (r *GameRepository) Create(ctx context.Context, game *domain.Game, keyHash string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(game).Error; err != nil {
			return err
		}
		apiKey := &domain.GameAPIKey{
			GameID:  game.ID,
			KeyHash: keyHash,
		}
		return tx.Create(apiKey).Error
	})
}

func (r *GameRepository) GetByAPIKeyHash(ctx context.Context, keyHash string) (*domain.Game, error) {
	var game domain.Game
	err := r.db.WithContext(ctx).
		Joins("JOIN game_api_keys ON game_api_keys.game_id = games.id").
		Where("game_api_keys.key_hash = ? AND game_api_keys.revoked_at IS NULL", keyHash).
		First(&game).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (r *GameRepository) GetByIDAndAccount(ctx context.Context, id, accountID string) (*domain.Game, error) {
	var game domain.Game
	err := r.db.WithContext(ctx).
		First(&game, "id = ? AND account_id = ?", id, accountID).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &game, nil
}

func (r *GameRepository) ListByAccount(ctx context.Context, accountID string) ([]domain.Game, error) {
	var games []domain.Game
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Find(&games).Error
	return games, err
}
