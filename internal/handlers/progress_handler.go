package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CyberLabs-Edu/labs-service/internal/repositories"
	"github.com/CyberLabs-Edu/labs-service/internal/services"
	"github.com/CyberLabs-Edu/labs-service/internal/utils"
)

type ProgressHandler struct {
	BaseHandler
	progressService services.ProgressService
}

func NewProgressHandler(progressService services.ProgressService, logger utils.Logger) *ProgressHandler {
	return &ProgressHandler{
		BaseHandler:     NewBaseHandler(logger),
		progressService: progressService,
	}
}

// StartLab marks a lab as started for the requesting user
// @Summary Start lab
// @Tags progress
// @Produce json
// @Param id path uint true "Lab ID"
// @Success 200 {object} services.ProgressResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /labs/{id}/start [post]
func (h *ProgressHandler) StartLab(c *gin.Context) {
	labID := h.parseIDParam(c, "id")
	if labID == 0 {
		return
	}

	h.LogRequest(c, "Starting lab", "lab_id", labID)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	progress, err := h.progressService.StartLab(c.Request.Context(), labID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// GetLabProgress returns the requesting user's progress for a lab
// @Summary Get lab progress
// @Tags progress
// @Produce json
// @Param id path uint true "Lab ID"
// @Success 200 {object} services.ProgressResponse
// @Failure 404 {object} ErrorResponse
// @Router /labs/{id}/progress [get]
func (h *ProgressHandler) GetLabProgress(c *gin.Context) {
	labID := h.parseIDParam(c, "id")
	if labID == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	progress, err := h.progressService.GetProgress(c.Request.Context(), labID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// GetMyProgress lists the requesting user's progress across labs
// @Summary List my progress
// @Tags progress
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Param is_completed query bool false "Filter by completion"
// @Success 200 {object} services.ProgressListResponse
// @Router /progress/me [get]
func (h *ProgressHandler) GetMyProgress(c *gin.Context) {
	h.LogRequest(c, "Listing user progress")

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	limit, offset := parsePagination(c)
	filters := repositories.ProgressFilters{
		Limit:  limit,
		Offset: offset,
	}
	if completed := c.Query("is_completed"); completed != "" {
		value := completed == "true"
		filters.IsCompleted = &value
	}

	progress, err := h.progressService.GetUserProgress(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}

// RefreshLabProgress recomputes progress from stored submissions
// @Summary Refresh lab progress
// @Tags progress
// @Produce json
// @Param id path uint true "Lab ID"
// @Success 200 {object} models.UserLabProgress
// @Failure 404 {object} ErrorResponse
// @Router /labs/{id}/progress/refresh [post]
func (h *ProgressHandler) RefreshLabProgress(c *gin.Context) {
	labID := h.parseIDParam(c, "id")
	if labID == 0 {
		return
	}

	h.LogRequest(c, "Refreshing lab progress", "lab_id", labID)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	progress, err := h.progressService.RefreshProgress(c.Request.Context(), userID, labID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, progress)
}
