package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CyberLabs-Edu/labs-service/internal/services"
)

// handleServiceError maps service-layer errors onto HTTP responses. Typed
// errors are checked first, then the sentinel chains.
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors services.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: businessRuleError.Message,
			Details: map[string]interface{}{
				"rule":    businessRuleError.Rule,
				"context": businessRuleError.Context,
			},
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
				"reason":   permissionError.Reason,
			},
		})
		return
	}

	switch {
	// Lab errors
	case errors.Is(err, services.ErrLabNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Lab not found",
		})
	case errors.Is(err, services.ErrLabNotActive):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Lab is not published",
		})
	case errors.Is(err, services.ErrLabDuplicateSlug):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "A lab with this title already exists",
		})
	case errors.Is(err, services.ErrLabPremiumOnly):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Lab requires a premium subscription",
		})

	// Challenge errors
	case errors.Is(err, services.ErrChallengeNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Challenge not found",
		})
	case errors.Is(err, services.ErrChallengeOrderTaken):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Challenge order is already taken in this lab",
		})

	// Submission errors
	case errors.Is(err, services.ErrSubmissionNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Submission not found",
		})
	case errors.Is(err, services.ErrEmptySubmission):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Submission payload is empty",
		})
	case errors.Is(err, services.ErrLabMismatch):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Challenge does not belong to the given lab",
		})
	case errors.Is(err, services.ErrSubmissionNotPending):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Submission is not pending review",
		})

	// Progress errors
	case errors.Is(err, services.ErrProgressNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Progress not found",
		})
	case errors.Is(err, services.ErrLabNotStarted):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Lab has not been started",
		})

	// Review errors
	case errors.Is(err, services.ErrReviewNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Review not found",
		})
	case errors.Is(err, services.ErrDuplicateReview):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "You have already reviewed this lab",
		})

	// Notification and profile errors
	case errors.Is(err, services.ErrNotificationNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Notification not found",
		})
	case errors.Is(err, services.ErrProfileNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Profile not found",
		})
	case errors.Is(err, services.ErrProfilePrivate):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Profile is private",
		})

	// Generic errors
	case errors.Is(err, services.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Unauthorized access",
		})
	case errors.Is(err, services.ErrForbidden), errors.Is(err, services.ErrInsufficientPermissions):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Forbidden - insufficient permissions",
		})
	case errors.Is(err, services.ErrBadRequest):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Bad request",
		})
	case errors.Is(err, services.ErrConflict):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Resource conflict",
		})
	default:
		h.LogError(c, err, "Unhandled service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
