package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CyberLabs-Edu/labs-service/internal/services"
	"github.com/CyberLabs-Edu/labs-service/internal/utils"
)

type ChallengeHandler struct {
	BaseHandler
	challengeService services.ChallengeService
}

func NewChallengeHandler(challengeService services.ChallengeService, logger utils.Logger) *ChallengeHandler {
	return &ChallengeHandler{
		BaseHandler:      NewBaseHandler(logger),
		challengeService: challengeService,
	}
}

// CreateChallenge adds a challenge to a lab
// @Summary Create challenge
// @Tags challenges
// @Accept json
// @Produce json
// @Param id path uint true "Lab ID"
// @Param challenge body services.CreateChallengeRequest true "Challenge data"
// @Success 201 {object} services.ChallengeResponse
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /labs/{id}/challenges [post]
func (h *ChallengeHandler) CreateChallenge(c *gin.Context) {
	labID := h.parseIDParam(c, "id")
	if labID == 0 {
		return
	}

	h.LogRequest(c, "Creating challenge", "lab_id", labID)

	var req services.CreateChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	challenge, err := h.challengeService.Create(c.Request.Context(), labID, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, challenge)
}

// GetChallenge retrieves a challenge by ID
// @Summary Get challenge
// @Tags challenges
// @Produce json
// @Param id path uint true "Challenge ID"
// @Success 200 {object} services.ChallengeResponse
// @Failure 404 {object} ErrorResponse
// @Router /challenges/{id} [get]
func (h *ChallengeHandler) GetChallenge(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	challenge, err := h.challengeService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, challenge)
}

// GetLabChallenges lists the challenges of a lab in order
// @Summary List lab challenges
// @Tags challenges
// @Produce json
// @Param id path uint true "Lab ID"
// @Success 200 {object} services.ChallengeListResponse
// @Failure 404 {object} ErrorResponse
// @Router /labs/{id}/challenges [get]
func (h *ChallengeHandler) GetLabChallenges(c *gin.Context) {
	labID := h.parseIDParam(c, "id")
	if labID == 0 {
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	challenges, err := h.challengeService.GetByLab(c.Request.Context(), labID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, challenges)
}

// UpdateChallenge updates an existing challenge
// @Summary Update challenge
// @Tags challenges
// @Accept json
// @Produce json
// @Param id path uint true "Challenge ID"
// @Param challenge body services.UpdateChallengeRequest true "Challenge updates"
// @Success 200 {object} services.ChallengeResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /challenges/{id} [put]
func (h *ChallengeHandler) UpdateChallenge(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Updating challenge", "challenge_id", id)

	var req services.UpdateChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	challenge, err := h.challengeService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, challenge)
}

// DeleteChallenge deletes a challenge
// @Summary Delete challenge
// @Tags challenges
// @Param id path uint true "Challenge ID"
// @Success 200 {object} SuccessResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /challenges/{id} [delete]
func (h *ChallengeHandler) DeleteChallenge(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Deleting challenge", "challenge_id", id)

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	if err := h.challengeService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Challenge deleted successfully",
	})
}
