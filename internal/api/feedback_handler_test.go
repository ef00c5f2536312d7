package api

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/playsignal/feedback-api/internal/api/dto"
	"github.com/playsignal/feedback-api/internal/domain"
)

func validRequest() dto.CreateFeedbackRequest {
	return dto.CreateFeedbackRequest{
		Type:           domain.FeedbackTypeBugReport,
		IdentityOption: domain.IdentityOptionAnonymous,
		Body:           "The boss fight crashes on phase two",
	}
}

func TestValidateCreateFeedback(t *testing.T) {
	assert.Empty(t, validateCreateFeedback(validRequest()))

	tests := []struct {
		name   string
		mutate func(*dto.CreateFeedbackRequest)
	}{
		{"unknown type", func(r *dto.CreateFeedbackRequest) { r.Type = "rant" }},
		{"unknown identity option", func(r *dto.CreateFeedbackRequest) { r.IdentityOption = "email" }},
		{"empty body", func(r *dto.CreateFeedbackRequest) { r.Body = "" }},
		{"body too long", func(r *dto.CreateFeedbackRequest) { r.Body = strings.Repeat("x", 4001) }},
		{"empty category", func(r *dto.CreateFeedbackRequest) {
			empty := ""
			r.Category = &empty
		}},
		{"too many tags", func(r *dto.CreateFeedbackRequest) {
			r.Tags = make([]string, 11)
			for i := range r.Tags {
				r.Tags[i] = "tag"
			}
		}},
		{"tag too long", func(r *dto.CreateFeedbackRequest) { r.Tags = []string{strings.Repeat("x", 51)} }},
		{"unknown severity", func(r *dto.CreateFeedbackRequest) {
			severity := "catastrophic"
			r.Severity = &severity
		}},
		{"identity with anonymous option", func(r *dto.CreateFeedbackRequest) {
			r.Identity = &dto.FeedbackIdentity{UserID: "player-42"}
		}},
		{"empty identity object", func(r *dto.CreateFeedbackRequest) {
			r.IdentityOption = domain.IdentityOptionUserID
			r.Identity = &dto.FeedbackIdentity{}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			assert.NotEmpty(t, validateCreateFeedback(req))
		})
	}
}

func TestCheckFeatureToggles(t *testing.T) {
	off := false
	category := "combat"
	severity := "high"

	// No toggles configured means everything is accepted.
	req := validRequest()
	req.Category = &category
	req.Severity = &severity
	assert.Empty(t, checkFeatureToggles(nil, req))

	features := &domain.FeatureToggles{Categories: &off, Severity: &off, Attachments: &off}

	withCategory := validRequest()
	withCategory.Category = &category
	assert.Equal(t, dto.CodeCategoriesDisabled, checkFeatureToggles(features, withCategory))

	withSeverity := validRequest()
	withSeverity.Severity = &severity
	assert.Equal(t, dto.CodeSeverityDisabled, checkFeatureToggles(features, withSeverity))

	withAttachments := validRequest()
	withAttachments.Metadata = json.RawMessage(`{"attachments":["s3://bucket/shot.png"]}`)
	assert.Equal(t, dto.CodeAttachmentsDisabled, checkFeatureToggles(features, withAttachments))

	// Metadata without attachments passes even when attachments are off.
	withMetadata := validRequest()
	withMetadata.Metadata = json.RawMessage(`{"build":"1.4.2"}`)
	assert.Empty(t, checkFeatureToggles(features, withMetadata))
}
