package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CyberLabs-Edu/labs-service/internal/models"
	"github.com/CyberLabs-Edu/labs-service/internal/repositories"
	"github.com/CyberLabs-Edu/labs-service/internal/services"
	"github.com/CyberLabs-Edu/labs-service/internal/utils"
)

type LabHandler struct {
	BaseHandler
	labService services.LabService
}

func NewLabHandler(labService services.LabService, logger utils.Logger) *LabHandler {
	return &LabHandler{
		BaseHandler: NewBaseHandler(logger),
		labService:  labService,
	}
}

// CreateLab creates a new lab
// @Summary Create lab
// @Description Creates a new lab with the provided details
// @Tags labs
// @Accept json
// @Produce json
// @Param lab body services.CreateLabRequest true "Lab data"
// @Success 201 {object} services.LabResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /labs [post]
func (h *LabHandler) CreateLab(c *gin.Context) {
	var req services.CreateLabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	lab, err := h.labService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, lab)
}

// GetLab retrieves a lab by ID
// @Summary Get lab
// @Tags labs
// @Produce json
// @Param id path uint true "Lab ID"
// @Success 200 {object} services.LabResponse
// @Failure 404 {object} ErrorResponse
// @Router /labs/{id} [get]
func (h *LabHandler) GetLab(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	lab, err := h.labService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, lab)
}

// GetLabBySlug retrieves a lab by its URL slug
// @Summary Get lab by slug
// @Tags labs
// @Produce json
// @Param slug path string true "Lab slug"
// @Success 200 {object} services.LabResponse
// @Failure 404 {object} ErrorResponse
// @Router /labs/slug/{slug} [get]
func (h *LabHandler) GetLabBySlug(c *gin.Context) {
	labSlug := c.Param("slug")
	if labSlug == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Lab slug is required",
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	lab, err := h.labService.GetBySlug(c.Request.Context(), labSlug, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, lab)
}

// GetLabWithDetails retrieves a lab with its challenges preloaded
// @Summary Get lab with details
// @Tags labs
// @Produce json
// @Param id path uint true "Lab ID"
// @Success 200 {object} services.LabResponse
// @Failure 404 {object} ErrorResponse
// @Router /labs/{id}/details [get]
func (h *LabHandler) GetLabWithDetails(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Getting lab with details", "lab_id", id)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	lab, err := h.labService.GetByIDWithDetails(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, lab)
}

// UpdateLab updates an existing lab
// @Summary Update lab
// @Tags labs
// @Accept json
// @Produce json
// @Param id path uint true "Lab ID"
// @Param lab body services.UpdateLabRequest true "Lab updates"
// @Success 200 {object} services.LabResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /labs/{id} [put]
func (h *LabHandler) UpdateLab(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating lab", "lab_id", id)

	var req services.UpdateLabRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	lab, err := h.labService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, lab)
}

// DeleteLab deletes a lab
// @Summary Delete lab
// @Tags labs
// @Param id path uint true "Lab ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /labs/{id} [delete]
func (h *LabHandler) DeleteLab(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting lab", "lab_id", id)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.labService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Lab deleted successfully",
	})
}

// ListLabs lists labs with optional filtering
// @Summary List labs
// @Tags labs
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Param category query string false "Filter by category"
// @Param difficulty query string false "Filter by difficulty"
// @Param search query string false "Search in title and description"
// @Success 200 {object} services.LabListResponse
// @Router /labs [get]
func (h *LabHandler) ListLabs(c *gin.Context) {
	h.LogRequest(c, "Listing labs")

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	filters := h.parseLabFilters(c)

	labs, err := h.labService.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, labs)
}

// GetPremiumLabs lists premium labs
// @Summary List premium labs
// @Tags labs
// @Produce json
// @Success 200 {object} services.LabListResponse
// @Router /labs/premium [get]
func (h *LabHandler) GetPremiumLabs(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	filters := h.parseLabFilters(c)

	labs, err := h.labService.GetPremium(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, labs)
}

// GetCategories returns lab counts per category
// @Summary List lab categories
// @Tags labs
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /labs/categories [get]
func (h *LabHandler) GetCategories(c *gin.Context) {
	categories, err := h.labService.GetCategories(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// GetLabsByCreator lists labs owned by a creator
// @Summary List labs by creator
// @Tags labs
// @Produce json
// @Param creator_id path string true "Creator ID"
// @Success 200 {object} services.LabListResponse
// @Router /labs/creator/{creator_id} [get]
func (h *LabHandler) GetLabsByCreator(c *gin.Context) {
	creatorID := c.Param("creator_id")
	if creatorID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Creator ID is required",
		})
		return
	}

	h.LogRequest(c, "Getting labs by creator", "creator_id", creatorID)

	filters := h.parseLabFilters(c)

	labs, err := h.labService.GetByCreator(c.Request.Context(), creatorID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, labs)
}

// PublishLab makes a lab visible to students
// @Summary Publish lab
// @Tags labs
// @Param id path uint true "Lab ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Router /labs/{id}/publish [post]
func (h *LabHandler) PublishLab(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Publishing lab", "lab_id", id)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.labService.Publish(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Lab published successfully",
	})
}

// UnpublishLab hides a lab from students
// @Summary Unpublish lab
// @Tags labs
// @Param id path uint true "Lab ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Router /labs/{id}/unpublish [post]
func (h *LabHandler) UnpublishLab(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Unpublishing lab", "lab_id", id)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.labService.Unpublish(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Lab unpublished successfully",
	})
}

// ===== HELPER METHODS =====

func (h *LabHandler) parseLabFilters(c *gin.Context) repositories.LabFilters {
	limit, offset := parsePagination(c)

	filters := repositories.LabFilters{
		Limit:     limit,
		Offset:    offset,
		Search:    c.Query("search"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if category := c.Query("category"); category != "" {
		value := models.LabCategory(category)
		filters.Category = &value
	}
	if difficulty := c.Query("difficulty"); difficulty != "" {
		value := models.LabDifficulty(difficulty)
		filters.Difficulty = &value
	}
	if premium := c.Query("is_premium"); premium != "" {
		value := premium == "true"
		filters.IsPremium = &value
	}
	if active := c.Query("is_active"); active != "" {
		value := active == "true"
		filters.IsActive = &value
	}

	return filters
}
