package postgres

import (
	"context"
	"errors"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/playsignal/feedback-api/internal/domain"
)

type FeedbackRepository struct {
	db *gorm.DB
}

func NewFeedbackRepository(db *gorm.DB) *FeedbackRepository {
	return &FeedbackRepository{db: db}
}

func (r *FeedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

func (r *FeedbackRepository) List(ctx context.Context, filter domain.FeedbackFilter) ([]domain.Feedback, error) {
	query := r.db.WithContext(ctx).Where("game_id = ?", filter.GameID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}

	var feedback []domain.Feedback
	err := query.
		Order("created_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&feedback).Error
	return feedback, err
}

func (r *FeedbackRepository) Update(ctx context.Context, feedbackID, gameID string, update domain.FeedbackUpdate) (*domain.Feedback, error) {
	var feedback domain.Feedback
	err := r.db.WithContext(ctx).
		First(&feedback, "id = ? AND game_id = ?", feedbackID, gameID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if update.Status != nil {
		updates["status"] = *update.Status
	}
	if update.DeveloperNotesSet {
		updates["developer_notes"] = update.DeveloperNotes
	}
	if len(updates) == 0 {
		return &feedback, nil
	}

	if err := r.db.WithContext(ctx).
		Model(&feedback).
		Updates(updates).Error; err != nil {
		return nil, err
	}
	return &feedback, nil
}

func (r *FeedbackRepository) Delete(ctx context.Context, feedbackID, gameID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Delete(&domain.Feedback{}, "id = ? AND game_id = ?", feedbackID, gameID)
	return res.RowsAffected > 0, res.Error
}

func (r *FeedbackRepository) BulkDelete(ctx context.Context, gameID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).
		Delete(&domain.Feedback{}, "game_id = ? AND id IN ?", gameID, ids)
	return res.RowsAffected, res.Error
}

type statusCount struct {
	Status string
	Count  int64
}

type typeCount struct {
	Type  string
	Count int64
}

type dayCount struct {
	Date  time.Time
	Count int64
}

func (r *FeedbackRepository) GetStats(ctx context.Context, gameID string, now time.Time) (*domain.FeedbackStats, error) {
	base := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&domain.Feedback{}).Where("game_id = ?", gameID)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, err
	}

	var statusRows []statusCount
	if err := base().
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&statusRows).Error; err != nil {
		return nil, err
	}

	var typeRows []typeCount
	if err := base().
		Select("type, COUNT(*) as count").
		Group("type").
		Scan(&typeRows).Error; err != nil {
		return nil, err
	}

	since := now.AddDate(0, 0, -6).Truncate(24 * time.Hour)
	var dayRows []dayCount
	if err := base().
		Select("created_at::date as date, COUNT(*) as count").
		Where("created_at >= ?", since).
		Group("created_at::date").
		Scan(&dayRows).Error; err != nil {
		return nil, err
	}

	byStatus := make(map[string]int64, len(statusRows))
	for _, row := range statusRows {
		byStatus[row.Status] = row.Count
	}
	byType := make(map[string]int64, len(typeRows))
	for _, row := range typeRows {
		byType[row.Type] = row.Count
	}

	dayMap := make(map[string]int64, len(dayRows))
	for _, row := range dayRows {
		dayMap[row.Date.Format("2006-01-02")] = row.Count
	}
	last7 := make([]domain.DailyCount, 0, 7)
	for i := 6; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		last7 = append(last7, domain.DailyCount{Date: date, Count: dayMap[date]})
	}

	var bugPct int64
	if total > 0 {
		bugPct = int64(math.Round(float64(byType[domain.FeedbackTypeBugReport]) / float64(total) * 100))
	}

	return &domain.FeedbackStats{
		Total:         total,
		OpenCount:     byStatus[domain.FeedbackStatusNew] + byStatus[domain.FeedbackStatusTriaged],
		ResolvedCount: byStatus[domain.FeedbackStatusResolved],
		BugPct:        bugPct,
		ByStatus:      byStatus,
		ByType:        byType,
		Last7Days:     last7,
	}, nil
}
