package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CyberLabs-Edu/labs-service/internal/models"
	"github.com/CyberLabs-Edu/labs-service/internal/repositories"
	"github.com/CyberLabs-Edu/labs-service/internal/services"
	"github.com/CyberLabs-Edu/labs-service/internal/utils"
)

type SubmissionHandler struct {
	BaseHandler
	submissionService services.SubmissionService
}

func NewSubmissionHandler(submissionService services.SubmissionService, logger utils.Logger) *SubmissionHandler {
	return &SubmissionHandler{
		BaseHandler:       NewBaseHandler(logger),
		submissionService: submissionService,
	}
}

// SubmitAnswer records an answer for a challenge and grades it
// @Summary Submit answer
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path uint true "Challenge ID"
// @Param submission body services.SubmitAnswerRequest true "Answer payload"
// @Success 201 {object} services.SubmissionResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /challenges/{id}/submissions [post]
func (h *SubmissionHandler) SubmitAnswer(c *gin.Context) {
	challengeID := h.parseIDParam(c, "id")
	if challengeID == 0 {
		return
	}

	h.LogRequest(c, "Submitting answer", "challenge_id", challengeID)

	var req services.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	submission, err := h.submissionService.Submit(c.Request.Context(), challengeID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, submission)
}

// GetSubmission retrieves a submission by ID
// @Summary Get submission
// @Tags submissions
// @Produce json
// @Param id path uint true "Submission ID"
// @Success 200 {object} services.SubmissionResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	submission, err := h.submissionService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

// GetLabSubmissions lists the requesting user's submissions for a lab
// @Summary List my submissions for a lab
// @Tags submissions
// @Produce json
// @Param id path uint true "Lab ID"
// @Success 200 {object} map[string]interface{}
// @Router /labs/{id}/submissions [get]
func (h *SubmissionHandler) GetLabSubmissions(c *gin.Context) {
	labID := h.parseIDParam(c, "id")
	if labID == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	submissions, err := h.submissionService.GetByUserAndLab(c.Request.Context(), labID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"submissions": submissions})
}

// ListSubmissions lists submissions with optional filtering. Students only
// see their own submissions regardless of filters.
// @Summary List submissions
// @Tags submissions
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Param lab_id query uint false "Filter by lab"
// @Param challenge_id query uint false "Filter by challenge"
// @Param status query string false "Filter by status"
// @Success 200 {object} services.SubmissionListResponse
// @Router /submissions [get]
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	h.LogRequest(c, "Listing submissions")

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	filters := h.parseSubmissionFilters(c)

	submissions, err := h.submissionService.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submissions)
}

// GetPendingReview lists submissions awaiting manual review
// @Summary List pending submissions
// @Tags submissions
// @Produce json
// @Success 200 {object} services.SubmissionListResponse
// @Failure 403 {object} ErrorResponse
// @Router /submissions/pending [get]
func (h *SubmissionHandler) GetPendingReview(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	filters := h.parseSubmissionFilters(c)

	submissions, err := h.submissionService.GetPendingReview(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submissions)
}

// ReviewSubmission grades a pending submission manually
// @Summary Review submission
// @Tags submissions
// @Accept json
// @Produce json
// @Param id path uint true "Submission ID"
// @Param review body services.ReviewSubmissionRequest true "Review decision"
// @Success 200 {object} services.SubmissionResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /submissions/{id}/review [post]
func (h *SubmissionHandler) ReviewSubmission(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Reviewing submission", "submission_id", id)

	var req services.ReviewSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	reviewerID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	submission, err := h.submissionService.Review(c.Request.Context(), id, &req, reviewerID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, submission)
}

// ===== HELPER METHODS =====

func (h *SubmissionHandler) parseSubmissionFilters(c *gin.Context) repositories.SubmissionFilters {
	limit, offset := parsePagination(c)

	filters := repositories.SubmissionFilters{
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if labID := parseUintQuery(c, "lab_id"); labID != 0 {
		filters.LabID = &labID
	}
	if challengeID := parseUintQuery(c, "challenge_id"); challengeID != 0 {
		filters.ChallengeID = &challengeID
	}
	if status := c.Query("status"); status != "" {
		value := models.SubmissionStatus(status)
		filters.Status = &value
	}
	if user := c.Query("user_id"); user != "" {
		filters.UserID = &user
	}

	return filters
}
