package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CyberLabs-Edu/labs-service/internal/repositories"
	"github.com/CyberLabs-Edu/labs-service/internal/services"
	"github.com/CyberLabs-Edu/labs-service/internal/utils"
)

type ReviewHandler struct {
	BaseHandler
	reviewService services.ReviewService
}

func NewReviewHandler(reviewService services.ReviewService, logger utils.Logger) *ReviewHandler {
	return &ReviewHandler{
		BaseHandler:   NewBaseHandler(logger),
		reviewService: reviewService,
	}
}

// CreateReview adds a review for a lab the user has started
// @Summary Create review
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path uint true "Lab ID"
// @Param review body services.CreateReviewRequest true "Review data"
// @Success 201 {object} services.ReviewResponse
// @Failure 409 {object} ErrorResponse
// @Router /labs/{id}/reviews [post]
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	labID := h.parseIDParam(c, "id")
	if labID == 0 {
		return
	}

	h.LogRequest(c, "Creating review", "lab_id", labID)

	var req services.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), labID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

// GetLabReviews lists approved reviews for a lab
// @Summary List lab reviews
// @Tags reviews
// @Produce json
// @Param id path uint true "Lab ID"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Param min_rating query int false "Minimum rating"
// @Success 200 {object} services.ReviewListResponse
// @Router /labs/{id}/reviews [get]
func (h *ReviewHandler) GetLabReviews(c *gin.Context) {
	labID := h.parseIDParam(c, "id")
	if labID == 0 {
		return
	}

	limit, offset := parsePagination(c)
	filters := repositories.ReviewFilters{
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if minRating := parseUintQuery(c, "min_rating"); minRating != 0 {
		value := int(minRating)
		filters.MinRating = &value
	}

	reviews, err := h.reviewService.GetByLab(c.Request.Context(), labID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// GetMyReview returns the requesting user's review of a lab
// @Summary Get my review
// @Tags reviews
// @Produce json
// @Param id path uint true "Lab ID"
// @Success 200 {object} services.ReviewResponse
// @Failure 404 {object} ErrorResponse
// @Router /labs/{id}/reviews/me [get]
func (h *ReviewHandler) GetMyReview(c *gin.Context) {
	labID := h.parseIDParam(c, "id")
	if labID == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	review, err := h.reviewService.GetUserReview(c.Request.Context(), labID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// UpdateReview updates the author's own review
// @Summary Update review
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path uint true "Review ID"
// @Param review body services.UpdateReviewRequest true "Review updates"
// @Success 200 {object} services.ReviewResponse
// @Failure 403 {object} ErrorResponse
// @Router /reviews/{id} [put]
func (h *ReviewHandler) UpdateReview(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating review", "review_id", id)

	var req services.UpdateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	review, err := h.reviewService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, review)
}

// DeleteReview removes a review
// @Summary Delete review
// @Tags reviews
// @Param id path uint true "Review ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Router /reviews/{id} [delete]
func (h *ReviewHandler) DeleteReview(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting review", "review_id", id)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.reviewService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Review deleted successfully",
	})
}

// SetReviewApproval approves or hides a review
// @Summary Moderate review
// @Tags reviews
// @Accept json
// @Param id path uint true "Review ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Router /reviews/{id}/approval [put]
func (h *ReviewHandler) SetReviewApproval(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req struct {
		Approved bool `json:"approved"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	h.LogRequest(c, "Moderating review", "review_id", id, "approved", req.Approved)

	moderatorID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.reviewService.SetApproved(c.Request.Context(), id, req.Approved, moderatorID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Review moderation updated",
	})
}

// MarkReviewHelpful increments the helpful counter on a review
// @Summary Mark review helpful
// @Tags reviews
// @Param id path uint true "Review ID"
// @Success 200 {object} SuccessResponse
// @Failure 404 {object} ErrorResponse
// @Router /reviews/{id}/helpful [post]
func (h *ReviewHandler) MarkReviewHelpful(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.reviewService.MarkHelpful(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Review marked as helpful",
	})
}
