package services

import (
	"errors"
	"fmt"

	"github.com/CyberLabs-Edu/labs-service/internal/validator"
)

// ===== SENTINEL ERRORS =====

var (
	// Lab errors
	ErrLabNotFound      = errors.New("lab not found")
	ErrLabNotActive     = errors.New("lab is not active")
	ErrLabDuplicateSlug = errors.New("lab slug already exists")
	ErrLabPremiumOnly   = errors.New("lab requires a premium subscription")

	// Challenge errors
	ErrChallengeNotFound   = errors.New("challenge not found")
	ErrChallengeOrderTaken = errors.New("challenge order already taken in this lab")

	// Submission errors
	ErrSubmissionNotFound   = errors.New("submission not found")
	ErrEmptySubmission      = errors.New("submission must contain an answer, code or file")
	ErrLabMismatch          = errors.New("challenge does not belong to the given lab")
	ErrSubmissionNotPending = errors.New("submission is not pending review")

	// Progress errors
	ErrProgressNotFound = errors.New("lab progress not found")
	ErrLabNotStarted    = errors.New("lab has not been started")

	// Review errors
	ErrReviewNotFound  = errors.New("review not found")
	ErrDuplicateReview = errors.New("user has already reviewed this lab")

	// Notification and profile errors
	ErrNotificationNotFound = errors.New("notification not found")
	ErrProfileNotFound      = errors.New("profile not found")
	ErrProfilePrivate       = errors.New("profile is private")

	// Generic errors
	ErrValidationFailed        = errors.New("validation failed")
	ErrUnauthorized            = errors.New("unauthorized")
	ErrForbidden               = errors.New("forbidden")
	ErrInsufficientPermissions = errors.New("insufficient permissions")
	ErrBadRequest              = errors.New("bad request")
	ErrConflict                = errors.New("resource conflict")
	ErrInternalError           = errors.New("internal error")
)

// ===== ERROR TYPES =====

// ValidationErrors re-exports the validator type so handlers can match it
// with errors.As against service errors.
type ValidationErrors = validator.ValidationErrors

// NewValidationError builds a single-field validation error
func NewValidationError(field, message string, value interface{}) error {
	return ValidationErrors{{
		Field:   field,
		Message: message,
		Value:   value,
		Rule:    "business_logic",
	}}
}

// PermissionError describes a denied action on a resource
type PermissionError struct {
	UserID     string
	ResourceID uint
	Resource   string
	Action     string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s %d: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

// BusinessRuleError describes a violated domain rule
type BusinessRuleError struct {
	Rule    string
	Message string
	Context map[string]interface{}
}

func (e *BusinessRuleError) Error() string {
	return e.Message
}

func NewBusinessRuleError(rule, message string, context map[string]interface{}) *BusinessRuleError {
	return &BusinessRuleError{
		Rule:    rule,
		Message: message,
		Context: context,
	}
}
