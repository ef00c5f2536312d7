package domain

import (
	"time"
)

// RateLimitSettings overrides the process-wide admission quota for one game.
type RateLimitSettings struct {
	WindowMs int `json:"windowMs,omitempty"`
	Max      int `json:"max,omitempty"`
}

// FeatureToggles switches optional feedback fields per game. A nil pointer
// means the feature is enabled; only an explicit false disables it.
type FeatureToggles struct {
	Categories       *bool `json:"categories,omitempty"`
	Severity         *bool `json:"severity,omitempty"`
	Attachments      *bool `json:"attachments,omitempty"`
	StatusVisibility *bool `json:"statusVisibility,omitempty"`
}

type GameSettings struct {
	RateLimit *RateLimitSettings `json:"rateLimit,omitempty"`
	Features  *FeatureToggles    `json:"features,omitempty"`
}

type Game struct {
	ID        string       `gorm:"primaryKey;type:uuid" json:"id"`
	AccountID string       `gorm:"type:text;not null;index" json:"account_id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Settings  GameSettings `gorm:"type:jsonb;serializer:json" json:"settings"`
	CreatedAt time.Time    `gorm:"type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Game) TableName() string {
	return "games"
}
