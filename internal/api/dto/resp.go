package dto

import (
	"github.com/playsignal/feedback-api/internal/domain"
)

type CreateFeedbackResponse struct {
	ID string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
}

// GameStatsSummary is the compact per-game aggregate shown on the dashboard
// overview when ?stats=1 is requested.
type GameStatsSummary struct {
	OpenCount int64 `json:"openCount" example:"12"`
	BugPct    int64 `json:"bugPct" example:"40"`
	Reports7d int64 `json:"reports7d" example:"31"`
}

type GameResponse struct {
	ID       string              `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name     string              `json:"name" example:"Starfall Arena"`
	Settings domain.GameSettings `json:"settings"`
	Stats    *GameStatsSummary   `json:"stats,omitempty"`
}

func NewGameResponse(game *domain.Game) GameResponse {
	return GameResponse{
		ID:       game.ID,
		Name:     game.Name,
		Settings: game.Settings,
	}
}

type ListGamesResponse struct {
	Games []GameResponse `json:"games"`
}

// CreateGameResponse carries the plaintext API key, the only time it is
// ever visible.
type CreateGameResponse struct {
	Game   GameResponse `json:"game"`
	APIKey string       `json:"apiKey"`
}

type ListFeedbackResponse struct {
	Feedback []domain.Feedback `json:"feedback"`
}

type BulkDeleteFeedbackResponse struct {
	Deleted int64 `json:"deleted" example:"3"`
}
