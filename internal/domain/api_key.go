package domain

import (
	"time"
)

// GameAPIKey stores only the SHA-256 hex digest of the credential. The
// plaintext is generated once at game creation and never persisted.
type GameAPIKey struct {
	ID        string     `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	GameID    string     `gorm:"type:uuid;not null;index" json:"game_id"`
	KeyHash   string     `gorm:"type:text;not null;uniqueIndex" json:"-"`
	RevokedAt *time.Time `gorm:"type:timestamp with time zone" json:"revoked_at,omitempty"`
	CreatedAt time.Time  `gorm:"type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (GameAPIKey) TableName() string {
	return "game_api_keys"
}
