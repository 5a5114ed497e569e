package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CyberLabs-Edu/labs-service/internal/repositories"
	"github.com/CyberLabs-Edu/labs-service/internal/services"
	"github.com/CyberLabs-Edu/labs-service/internal/utils"
	"github.com/CyberLabs-Edu/labs-service/internal/validator"
)

type NotificationHandler struct {
	BaseHandler
	notificationService services.NotificationService
	validator           *validator.Validator
}

func NewNotificationHandler(
	notificationService services.NotificationService,
	validator *validator.Validator,
	logger utils.Logger,
) *NotificationHandler {
	return &NotificationHandler{
		BaseHandler:         NewBaseHandler(logger),
		notificationService: notificationService,
		validator:           validator,
	}
}

// BulkNotificationRequest targets a list of users with one notification.
type BulkNotificationRequest struct {
	UserIDs      []string                     `json:"user_ids" validate:"required,min=1,max=1000"`
	Notification services.NotificationRequest `json:"notification" validate:"required"`
}

// ListNotifications lists the requesting user's notifications
// @Summary List notifications
// @Tags notifications
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Param only_unread query bool false "Only unread notifications"
// @Success 200 {object} services.NotificationListResponse
// @Router /notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	limit, offset := parsePagination(c)
	filters := repositories.NotificationFilters{
		OnlyUnread: c.Query("only_unread") == "true",
		Limit:      limit,
		Offset:     offset,
	}

	notifications, err := h.notificationService.List(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, notifications)
}

// SendBulkNotification delivers one notification to many users
// @Summary Send bulk notification
// @Tags notifications
// @Accept json
// @Param request body BulkNotificationRequest true "Bulk notification"
// @Success 200 {object} SuccessResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Router /notifications/bulk [post]
func (h *NotificationHandler) SendBulkNotification(c *gin.Context) {
	var req BulkNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Validation failed", err)
		return
	}

	h.LogRequest(c, "Sending bulk notification", "recipients", len(req.UserIDs))

	if err := h.notificationService.SendBulkNotification(c.Request.Context(), req.UserIDs, &req.Notification); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Bulk notification sent",
	})
}

// MarkNotificationRead marks a single notification as read
// @Summary Mark notification read
// @Tags notifications
// @Param id path uint true "Notification ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /notifications/{id}/read [put]
func (h *NotificationHandler) MarkNotificationRead(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.notificationService.MarkRead(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Notification marked as read",
	})
}

// MarkAllNotificationsRead marks every unread notification as read
// @Summary Mark all notifications read
// @Tags notifications
// @Success 200 {object} SuccessResponse
// @Router /notifications/read-all [put]
func (h *NotificationHandler) MarkAllNotificationsRead(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Marking all notifications read", "user_id", userID)

	if err := h.notificationService.MarkAllRead(c.Request.Context(), userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "All notifications marked as read",
	})
}
