package domain

import (
	"time"
)

// BetaAccessKey is a single-use-capped invitation code gating game creation.
// Only the SHA-256 hex digest of the code is stored; KeyPrefix keeps a short
// human-readable fragment for admin identification.
type BetaAccessKey struct {
	ID        string    `gorm:"primaryKey;type:uuid;default:gen_random_uuid()" json:"id"`
	KeyHash   string    `gorm:"type:text;not null;uniqueIndex" json:"-"`
	KeyPrefix string    `gorm:"type:text;not null" json:"key_prefix"`
	MaxUses   int       `gorm:"not null;default:1" json:"max_uses"`
	UsesCount int       `gorm:"not null;default:0" json:"uses_count"`
	ExpiresAt time.Time `gorm:"type:timestamp with time zone;not null" json:"expires_at"`
	CreatedAt time.Time `gorm:"type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (BetaAccessKey) TableName() string {
	return "beta_access_keys"
}
