package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/CyberLabs-Edu/labs-service/internal/models"
	"github.com/CyberLabs-Edu/labs-service/internal/repositories"
	"github.com/CyberLabs-Edu/labs-service/internal/services"
	"github.com/CyberLabs-Edu/labs-service/internal/utils"
)

// UserHandler exposes the read-only user directory. Identity records come
// from Casdoor; single-user lookups are joined with the user's lab profile
// so a directory entry carries their points and completed labs.
type UserHandler struct {
	BaseHandler
	userRepo       repositories.UserRepository
	profileService services.ProfileService
}

func NewUserHandler(userRepo repositories.UserRepository, profileService services.ProfileService, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler:    NewBaseHandler(logger),
		userRepo:       userRepo,
		profileService: profileService,
	}
}

// DirectoryEntry is one directory row: the identity record plus the lab
// profile when the viewer is allowed to see it.
type DirectoryEntry struct {
	User       *models.User              `json:"user"`
	LabProfile *services.ProfileResponse `json:"lab_profile,omitempty"`
}

// DirectoryListResponse is one page of the user directory.
type DirectoryListResponse struct {
	Users []*models.User `json:"users"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

// ListUsers returns a page of the user directory
// @Summary List users
// @Tags users
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Param q query string false "Search query (matched against email)"
// @Success 200 {object} DirectoryListResponse
// @Failure 401 {object} ErrorResponse
// @Router /users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	if _, ok := h.requireUserID(c); !ok {
		return
	}

	h.LogRequest(c, "Listing users")

	limit, offset := parsePagination(c)
	users, total, err := h.userRepo.List(c.Request.Context(), repositories.UserFilters{
		Query:  c.Query("q"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.LogError(c, err, "Failed to list users")
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to list users", err)
		return
	}

	c.JSON(http.StatusOK, buildDirectoryPage(users, total, limit, offset))
}

// SearchUsers searches the directory by name or email
// @Summary Search users
// @Tags users
// @Produce json
// @Param q query string true "Search query"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10, max: 100)"
// @Success 200 {object} DirectoryListResponse
// @Failure 400 {object} ErrorResponse
// @Router /users/search [get]
func (h *UserHandler) SearchUsers(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		h.RespondWithError(c, http.StatusBadRequest, "Search query parameter 'q' is required", nil)
		return
	}

	if _, ok := h.requireUserID(c); !ok {
		return
	}

	h.LogRequest(c, "Searching users", "query", query)

	limit, offset := parsePagination(c)
	users, total, err := h.userRepo.Search(c.Request.Context(), query, repositories.UserFilters{
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.LogError(c, err, "Failed to search users")
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to search users", err)
		return
	}

	c.JSON(http.StatusOK, buildDirectoryPage(users, total, limit, offset))
}

// GetUser returns a single directory entry with the lab profile attached
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} DirectoryEntry
// @Failure 404 {object} ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	targetID := c.Param("id")
	if targetID == "" {
		h.RespondWithError(c, http.StatusBadRequest, "User ID is required", nil)
		return
	}

	viewerID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Getting user", "target_id", targetID)

	user, err := h.userRepo.GetByID(c.Request.Context(), targetID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			h.RespondWithError(c, http.StatusNotFound, "User not found", nil)
			return
		}
		h.LogError(c, err, "Failed to get user")
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to get user", err)
		return
	}

	entry := &DirectoryEntry{User: user}

	// The lab profile is viewer-dependent: private profiles stay hidden
	// from everyone but their owner and admins.
	if profile, err := h.profileService.GetProfile(c.Request.Context(), targetID, viewerID); err == nil {
		entry.LabProfile = profile
	}

	c.JSON(http.StatusOK, entry)
}

func buildDirectoryPage(users []*models.User, total int64, limit, offset int) *DirectoryListResponse {
	if limit <= 0 {
		limit = 1
	}
	return &DirectoryListResponse{
		Users: users,
		Total: total,
		Page:  (offset / limit) + 1,
		Size:  limit,
	}
}
