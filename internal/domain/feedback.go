package domain

import (
	"encoding/json"
	"time"
)

const (
	FeedbackTypeBugReport      = "bug_report"
	FeedbackTypeFeatureRequest = "feature_request"
	FeedbackTypeGeneral        = "general"

	FeedbackStatusNew      = "new"
	FeedbackStatusTriaged  = "triaged"
	FeedbackStatusResolved = "resolved"
	FeedbackStatusIgnored  = "ignored"

	IdentityOptionAnonymous      = "anonymous"
	IdentityOptionUserID         = "userId"
	IdentityOptionUsernameUserID = "usernameUserId"
)

func ValidFeedbackType(t string) bool {
	switch t {
	case FeedbackTypeBugReport, FeedbackTypeFeatureRequest, FeedbackTypeGeneral:
		return true
	}
	return false
}

func ValidFeedbackStatus(s string) bool {
	switch s {
	case FeedbackStatusNew, FeedbackStatusTriaged, FeedbackStatusResolved, FeedbackStatusIgnored:
		return true
	}
	return false
}

func ValidIdentityOption(o string) bool {
	switch o {
	case IdentityOptionAnonymous, IdentityOptionUserID, IdentityOptionUsernameUserID:
		return true
	}
	return false
}

func ValidSeverity(s string) bool {
	switch s {
	case "low", "medium", "high", "critical":
		return true
	}
	return false
}

type Feedback struct {
	ID             string          `gorm:"primaryKey;type:uuid" json:"id"`
	GameID         string          `gorm:"type:uuid;not null;index" json:"gameId"`
	Type           string          `gorm:"type:text;not null" json:"type"`
	IdentityOption string          `gorm:"type:text;not null" json:"identityOption"`
	Status         string          `gorm:"type:text;not null;default:new" json:"status"`
	Body           string          `gorm:"type:text;not null" json:"body"`
	Category       *string         `gorm:"type:text" json:"category"`
	Tags           []string        `gorm:"type:jsonb;serializer:json" json:"tags"`
	Severity       *string         `gorm:"type:text" json:"severity"`
	Identity       json.RawMessage `gorm:"type:jsonb" json:"identity,omitempty"`
	Metadata       json.RawMessage `gorm:"type:jsonb" json:"metadata,omitempty"`
	DeveloperNotes *string         `gorm:"type:text" json:"developerNotes"`
	CreatedAt      time.Time       `gorm:"type:timestamp with time zone;default:CURRENT_TIMESTAMP" json:"createdAt"`
}

func (Feedback) TableName() string {
	return "feedback"
}

// DailyCount is one day of submission volume for the analytics chart.
type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

type FeedbackStats struct {
	Total         int64            `json:"total"`
	OpenCount     int64            `json:"openCount"`
	ResolvedCount int64            `json:"resolvedCount"`
	BugPct        int64            `json:"bugPct"`
	ByStatus      map[string]int64 `json:"byStatus"`
	ByType        map[string]int64 `json:"byType"`
	Last7Days     []DailyCount     `json:"last7Days"`
}

// FeedbackUpdate carries the triage fields a dashboard PATCH may change.
// DeveloperNotesSet distinguishes "clear the notes" from "leave untouched".
type FeedbackUpdate struct {
	Status            *string
	DeveloperNotes    *string
	DeveloperNotesSet bool
}

type FeedbackFilter struct {
	GameID string
	Status string
	Type   string
	Limit  int
	Offset int
}
