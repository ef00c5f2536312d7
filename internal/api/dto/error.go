package dto

// Stable machine-readable error codes. Auth failures deliberately share one
// shape so callers cannot probe which credentials exist.
const (
	CodeMissingAPIKey      = "missing_api_key"
	CodeInvalidAPIKey      = "invalid_api_key"
	CodeAuthError          = "auth_error"
	CodeUnauthorized       = "unauthorized"
	CodeInvalidDashToken   = "missing_or_invalid_dashboard_token"
	CodeRateLimited        = "rate_limited"
	CodeBetaAccessRequired = "beta_access_required"
	CodeValidationError    = "validation_error"
	CodeNameRequired       = "name_required"
	CodeInvalidStatus      = "invalid_status"
	CodeGameNotFound       = "game_not_found"
	CodeFeedbackNotFound   = "feedback_not_found"
	CodeInternalError      = "internal_error"

	CodeCategoriesDisabled  = "categories_disabled"
	CodeSeverityDisabled    = "severity_disabled"
	CodeAttachmentsDisabled = "attachments_disabled"
)

// Error is the standard error response body.
type Error struct {
	Code              string `json:"error" example:"invalid_api_key"`
	Message           string `json:"message,omitempty" example:"human readable detail"`
	RetryAfterSeconds int    `json:"retryAfterSeconds,omitempty" example:"42"`
}
