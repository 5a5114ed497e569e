package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/CyberLabs-Edu/labs-service/internal/services"
	"github.com/CyberLabs-Edu/labs-service/internal/utils"
)

type ProfileHandler struct {
	BaseHandler
	profileService services.ProfileService
}

func NewProfileHandler(profileService services.ProfileService, logger utils.Logger) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    NewBaseHandler(logger),
		profileService: profileService,
	}
}

// ProfileUpdateRequest carries the user-editable profile fields. Only the
// fields present in the payload are changed.
type ProfileUpdateRequest struct {
	Bio       *string `json:"bio" validate:"omitempty,max=2000"`
	AvatarURL *string `json:"avatar_url" validate:"omitempty,max=500"`
	IsPublic  *bool   `json:"is_public"`
}

// GetMyProfile returns the requesting user's profile
// @Summary Get my profile
// @Tags profiles
// @Produce json
// @Success 200 {object} services.ProfileResponse
// @Router /profiles/me [get]
func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	profile, err := h.profileService.GetProfile(c.Request.Context(), userID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetProfile returns another user's profile when it is public
// @Summary Get user profile
// @Tags profiles
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} services.ProfileResponse
// @Failure 403 {object} ErrorResponse
// @Router /profiles/{user_id} [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	targetID := c.Param("user_id")
	if targetID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "User ID is required",
		})
		return
	}

	viewerID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	profile, err := h.profileService.GetProfile(c.Request.Context(), targetID, viewerID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateMyProfile updates the requesting user's profile
// @Summary Update my profile
// @Tags profiles
// @Accept json
// @Produce json
// @Param profile body ProfileUpdateRequest true "Profile updates"
// @Success 200 {object} services.ProfileResponse
// @Router /profiles/me [put]
func (h *ProfileHandler) UpdateMyProfile(c *gin.Context) {
	var req ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Updating profile", "user_id", userID)

	profile, err := h.profileService.UpdateProfile(c.Request.Context(), userID, req.Bio, req.AvatarURL, req.IsPublic)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// RefreshMyProfile recomputes the requesting user's derived totals
// @Summary Refresh my profile
// @Tags profiles
// @Produce json
// @Success 200 {object} models.UserProfile
// @Router /profiles/me/refresh [post]
func (h *ProfileHandler) RefreshMyProfile(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Refreshing profile", "user_id", userID)

	profile, err := h.profileService.RefreshProfile(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetLeaderboard returns the points leaderboard
// @Summary Get leaderboard
// @Tags profiles
// @Produce json
// @Param limit query int false "Entries per page (default: 20, max: 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} services.LeaderboardResponse
// @Router /leaderboard [get]
func (h *ProfileHandler) GetLeaderboard(c *gin.Context) {
	limit := 0
	offset := 0
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			offset = v
		}
	}

	leaderboard, err := h.profileService.GetLeaderboard(c.Request.Context(), limit, offset)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, leaderboard)
}
