package dto

import (
	"encoding/json"
)

type FeedbackIdentity struct {
	UserID   string `json:"userId,omitempty"`
	Username string `json:"username,omitempty"`
}

type CreateFeedbackRequest struct {
	Type           string            `json:"type" binding:"required" example:"bug_report"`
	IdentityOption string            `json:"identityOption" binding:"required" example:"anonymous"`
	Body           string            `json:"body" binding:"required" example:"The boss fight crashes on phase two"`
	Category       *string           `json:"category,omitempty" example:"combat"`
	Tags           []string          `json:"tags,omitempty"`
	Severity       *string           `json:"severity,omitempty" example:"high"`
	Identity       *FeedbackIdentity `json:"identity,omitempty"`
	Metadata       json.RawMessage   `json:"metadata,omitempty" swaggertype:"string"`
}

type CreateGameRequest struct {
	Name          string `json:"name" example:"Starfall Arena"`
	BetaAccessKey string `json:"betaAccessKey,omitempty"`
}

// UpdateFeedbackRequest distinguishes an omitted developerNotes field from
// an explicit null (which clears the notes), so the raw message is kept.
type UpdateFeedbackRequest struct {
	Status         *string         `json:"status,omitempty" example:"triaged"`
	DeveloperNotes json.RawMessage `json:"developerNotes,omitempty" swaggertype:"string"`
}

type BulkDeleteFeedbackRequest struct {
	IDs []string `json:"ids"`
}
