// Package memory implements the repository interfaces with process-local
// maps. It backs the no-database development posture and the test suites;
// it is not suitable for anything shared or durable.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/playsignal/feedback-api/internal/domain"
	"github.com/playsignal/feedback-api/internal/repository"
)

type memoryRepository struct {
	gameRepo     *GameRepository
	feedbackRepo *FeedbackRepository
	betaKeyRepo  *BetaKeyRepository
}

func NewMemoryRepository() repository.Repository {
	return &memoryRepository{
		gameRepo:     NewGameRepository(),
		feedbackRepo: NewFeedbackRepository(),
		betaKeyRepo:  NewBetaKeyRepository(),
	}
}

func (r *memoryRepository) Game() repository.GameRepository {
	return r.gameRepo
}

func (r *memoryRepository) Feedback() repository.FeedbackRepository {
	return r.feedbackRepo
}

func (r *memoryRepository) BetaKey() repository.BetaKeyRepository {
	return r.betaKeyRepo
}

func (r *memoryRepository) Ping(ctx context.Context) error {
	return nil
}

type GameRepository struct {
	mu       sync.RWMutex
	games    map[string]*domain.Game
	keyHash  map[string]string // key hash -> game id
	accounts map[string][]string
}

func NewGameRepository() *GameRepository {
	return &GameRepository{
		games:    make(map[string]*domain.Game),
		keyHash:  make(map[string]string),
		accounts: make(map[string][]string),
	}
}

func (r *GameRepository) Create(ctx context.Context, game *domain.Game, keyHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *game
	r.games[game.ID] = &copied
	r.keyHash[keyHash] = game.ID
	r.accounts[game.AccountID] = append([]string{game.ID}, r.accounts[game.AccountID]...)
	return nil
}

func (r *GameRepository) GetByAPIKeyHash(ctx context.Context, keyHash string) (*domain.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	gameID, ok := r.keyHash[keyHash]
	if !ok {
		return nil, nil
	}
	game, ok := r.games[gameID]
	if !ok {
		return nil, nil
	}
	copied := *game
	return &copied, nil
}

func (r *GameRepository) GetByIDAndAccount(ctx context.Context, id, accountID string) (*domain.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	game, ok := r.games[id]
	if !ok || game.AccountID != accountID {
		return nil, nil
	}
	copied := *game
	return &copied, nil
}

func (r *GameRepository) ListByAccount(ctx context.Context, accountID string) ([]domain.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := r.accounts[accountID]
	games := make([]domain.Game, 0, len(ids))
	for _, id := range ids {
		if game, ok := r.games[id]; ok {
			games = append(games, *game)
		}
	}
	return games, nil
}

type FeedbackRepository struct {
	mu     sync.RWMutex
	byGame map[string][]*domain.Feedback
}

func NewFeedbackRepository() *FeedbackRepository {
	return &FeedbackRepository{
		byGame: make(map[string][]*domain.Feedback),
	}
}

func (r *FeedbackRepository) Create(ctx context.Context, feedback *domain.Feedback) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *feedback
	r.byGame[feedback.GameID] = append([]*domain.Feedback{&copied}, r.byGame[feedback.GameID]...)
	return nil
}

func (r *FeedbackRepository) List(ctx context.Context, filter domain.FeedbackFilter) ([]domain.Feedback, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Feedback
	for _, f := range r.byGame[filter.GameID] {
		if filter.Status != "" && f.Status != filter.Status {
			continue
		}
		if filter.Type != "" && f.Type != filter.Type {
			continue
		}
		out = append(out, *f)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if filter.Offset >= len(out) {
		return []domain.Feedback{}, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *FeedbackRepository) Update(ctx context.Context, feedbackID, gameID string, update domain.FeedbackUpdate) (*domain.Feedback, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, f := range r.byGame[gameID] {
		if f.ID != feedbackID {
			continue
		}
		if update.Status != nil {
			f.Status = *update.Status
		}
		if update.DeveloperNotesSet {
			f.DeveloperNotes = update.DeveloperNotes
		}
		copied := *f
		return &copied, nil
	}
	return nil, nil
}

func (r *FeedbackRepository) Delete(ctx context.Context, feedbackID, gameID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := r.byGame[gameID]
	for i, f := range list {
		if f.ID == feedbackID {
			r.byGame[gameID] = append(list[:i], list[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (r *FeedbackRepository) BulkDelete(ctx context.Context, gameID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	idSet := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}

	list := r.byGame[gameID]
	kept := list[:0]
	var deleted int64
	for _, f := range list {
		if _, ok := idSet[f.ID]; ok {
			deleted++
			continue
		}
		kept = append(kept, f)
	}
	r.byGame[gameID] = kept
	return deleted, nil
}

func (r *FeedbackRepository) GetStats(ctx context.Context, gameID string, now time.Time) (*domain.FeedbackStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := r.byGame[gameID]
	byStatus := make(map[string]int64)
	byType := make(map[string]int64)
	dayMap := make(map[string]int64)
	for _, f := range list {
		byStatus[f.Status]++
		byType[f.Type]++
		dayMap[f.CreatedAt.Format("2006-01-02")]++
	}

	last7 := make([]domain.DailyCount, 0, 7)
	for i := 6; i >= 0; i-- {
		date := now.AddDate(0, 0, -i).Format("2006-01-02")
		last7 = append(last7, domain.DailyCount{Date: date, Count: dayMap[date]})
	}

	total := int64(len(list))
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

type BetaKeyRepository struct {
	mu     sync.Mutex
	byID   map[string]*domain.BetaAccessKey
	byHash map[string]string
}

func NewBetaKeyRepository() *BetaKeyRepository {
	return &BetaKeyRepository{
		byID:   make(map[string]*domain.BetaAccessKey),
		byHash: make(map[string]string),
	}
}

func (r *BetaKeyRepository) Create(ctx context.Context, key *domain.BetaAccessKey) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	copied := *key
	r.byID[key.ID] = &copied
	r.byHash[key.KeyHash] = key.ID
	return nil
}

func (r *BetaKeyRepository) FindValidByHash(ctx context.Context, keyHash string, now time.Time) (*domain.BetaAccessKey, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id, ok := r.byHash[keyHash]
	if !ok {
		return nil, nil
	}
	key, ok := r.byID[id]
	if !ok || !key.ExpiresAt.After(now) {
		return nil, nil
	}
	copied := *key
	return &copied, nil
}

// ConsumeUse holds the lock across check and increment, the in-process
// equivalent of the conditional UPDATE.
func (r *BetaKeyRepository) ConsumeUse(ctx context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	key, ok := r.byID[id]
	if !ok || key.UsesCount >= key.MaxUses {
		return false, nil
	}
	key.UsesCount++
	return true, nil
}
