package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/playsignal/feedback-api/internal/domain"
)

type BetaKeyRepository struct {
	db *gorm.DB
}

func NewBetaKeyRepository(db *gorm.DB) *BetaKeyRepository {
	return &BetaKeyRepository{db: db}
}

func (r *BetaKeyRepository) Create(ctx context.Context, key *domain.BetaAccessKey) error {
	return r.db.WithContext(ctx).Create(key).Error
}

func (r *BetaKeyRepository) FindValidByHash(ctx context.Context, keyHash string, now time.Time) (*domain.BetaAccessKey, error) {
	var key domain.BetaAccessKey
	err := r.db.WithContext(ctx).
		First(&key, "key_hash = ? AND expires_at > ?", keyHash, now).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &key, nil
}

// ConsumeUse performs the check-and-increment as a single conditional UPDATE
// so concurrent consumers can never push uses_count past max_uses.
func (r *BetaKeyRepository) ConsumeUse(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.BetaAccessKey{}).
		Where("id = ? AND uses_count < max_uses", id).
		UpdateColumn("uses_count", gorm.Expr("uses_count + 1"))
	return res.RowsAffected > 0, res.Error
}
