package services

import (
	"context"
	"time"

	"github.com/CyberLabs-Edu/labs-service/internal/models"
	"github.com/CyberLabs-Edu/labs-service/internal/repositories"
)

// ===== REQUEST/RESPONSE DTOs =====

// Request payloads live next to the models so repositories and handlers
// share one definition.
type CreateLabRequest = models.LabCreateRequest
type UpdateLabRequest = models.LabUpdateRequest
type CreateChallengeRequest = models.ChallengeCreateRequest
type UpdateChallengeRequest = models.ChallengeUpdateRequest
type SubmitAnswerRequest = models.SubmissionCreateRequest
type ReviewSubmissionRequest = models.SubmissionReviewRequest
type CreateReviewRequest = models.ReviewCreateRequest
type UpdateReviewRequest = models.ReviewUpdateRequest

type LabResponse struct {
	*models.Lab
	CanEdit      bool                    `json:"can_edit"`
	CanDelete    bool                    `json:"can_delete"`
	UserProgress *models.UserLabProgress `json:"user_progress,omitempty"`
}

type LabListResponse struct {
	Labs  []*LabResponse `json:"labs"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Size  int            `json:"size"`
}

type ChallengeResponse struct {
	*models.Challenge
	CanEdit bool `json:"can_edit"`
	// Solved reports whether the requesting user already has a correct
	// submission for this challenge.
	Solved bool `json:"solved"`
}

type ChallengeListResponse struct {
	Challenges []*ChallengeResponse `json:"challenges"`
	Total      int64                `json:"total"`
}

// GradeOutcome is the result of grading one submission payload against a
// challenge. Auto-gradable answer types resolve to correct or incorrect
// immediately; everything else stays pending for manual review.
type GradeOutcome struct {
	Status     models.SubmissionStatus `json:"status"`
	Score      int                     `json:"score"`
	IsCorrect  bool                    `json:"is_correct"`
	AutoGraded bool                    `json:"auto_graded"`
}

type SubmissionResponse struct {
	*models.Submission
	// IsNewAttempt is false when the submission overwrote the user's
	// previous attempt for the same challenge.
	IsNewAttempt bool          `json:"is_new_attempt"`
	Outcome      *GradeOutcome `json:"outcome,omitempty"`
}

type SubmissionListResponse struct {
	Submissions []*SubmissionResponse `json:"submissions"`
	Total       int64                 `json:"total"`
	Page        int                   `json:"page"`
	Size        int                   `json:"size"`
}

type ProgressResponse struct {
	*models.UserLabProgress
	CompletedChallengeIDs []uint `json:"completed_challenge_ids"`
}

type ProgressListResponse struct {
	Progress []*ProgressResponse `json:"progress"`
	Total    int64               `json:"total"`
}

type ReviewResponse struct {
	*models.LabReview
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type ReviewListResponse struct {
	Reviews       []*ReviewResponse `json:"reviews"`
	Total         int64             `json:"total"`
	AverageRating float64           `json:"average_rating"`
}

type DashboardResponse struct {
	Platform    *repositories.PlatformStats `json:"platform"`
	TopLabs     []*models.LabStatistics     `json:"top_labs"`
	GeneratedAt time.Time                   `json:"generated_at"`
}

type ProfileResponse struct {
	*models.UserProfile
	FullName string `json:"full_name,omitempty"`
}

type LeaderboardResponse struct {
	Entries []models.LeaderboardEntry `json:"entries"`
	Total   int64                     `json:"total"`
}

type NotificationRequest struct {
	Type               models.NotificationType `json:"type" validate:"required"`
	Title              string                  `json:"title" validate:"required,max=200"`
	Message            string                  `json:"message" validate:"required,max=2000"`
	Link               *string                 `json:"link" validate:"omitempty,max=500"`
	RelatedLabID       *uint                   `json:"related_lab_id"`
	RelatedChallengeID *uint                   `json:"related_challenge_id"`

	// EventType overrides the event type derived from Type. Internal
	// callers use it to tag domain events; it is ignored on the HTTP path.
	EventType string `json:"-"`
}

type NotificationListResponse struct {
	Notifications []*models.Notification `json:"notifications"`
	Total         int64                  `json:"total"`
	UnreadCount   int64                  `json:"unread_count"`
}

// ===== SERVICE INTERFACES =====

type LabService interface {
	// Core CRUD operations
	Create(ctx context.Context, req *CreateLabRequest, creatorID string) (*LabResponse, error)
	GetByID(ctx context.Context, id uint, userID string) (*LabResponse, error)
	GetBySlug(ctx context.Context, slug string, userID string) (*LabResponse, error)
	GetByIDWithDetails(ctx context.Context, id uint, userID string) (*LabResponse, error)
	Update(ctx context.Context, id uint, req *UpdateLabRequest, userID string) (*LabResponse, error)
	Delete(ctx context.Context, id uint, userID string) error

	// List and search operations
	List(ctx context.Context, filters repositories.LabFilters, userID string) (*LabListResponse, error)
	GetByCreator(ctx context.Context, creatorID string, filters repositories.LabFilters) (*LabListResponse, error)
	GetPremium(ctx context.Context, filters repositories.LabFilters, userID string) (*LabListResponse, error)
	GetCategories(ctx context.Context) ([]models.CategoryCount, error)

	// Lifecycle
	Publish(ctx context.Context, id uint, userID string) error
	Unpublish(ctx context.Context, id uint, userID string) error

	// Permission checks
	CanEdit(ctx context.Context, labID uint, userID string) (bool, error)
}

type ChallengeService interface {
	// Core CRUD operations
	Create(ctx context.Context, labID uint, req *CreateChallengeRequest, userID string) (*ChallengeResponse, error)
	GetByID(ctx context.Context, id uint, userID string) (*ChallengeResponse, error)
	Update(ctx context.Context, id uint, req *UpdateChallengeRequest, userID string) (*ChallengeResponse, error)
	Delete(ctx context.Context, id uint, userID string) error

	// List operations
	GetByLab(ctx context.Context, labID uint, userID string) (*ChallengeListResponse, error)
}

type SubmissionService interface {
	// Submit records a user's answer for a challenge and grades it.
	Submit(ctx context.Context, challengeID uint, req *SubmitAnswerRequest, userID string) (*SubmissionResponse, error)

	// Get operations
	GetByID(ctx context.Context, id uint, userID string) (*SubmissionResponse, error)
	GetByUserAndLab(ctx context.Context, labID uint, userID string) ([]*SubmissionResponse, error)
	List(ctx context.Context, filters repositories.SubmissionFilters, userID string) (*SubmissionListResponse, error)

	// Manual review of pending submissions by instructors
	GetPendingReview(ctx context.Context, filters repositories.SubmissionFilters, reviewerID string) (*SubmissionListResponse, error)
	Review(ctx context.Context, submissionID uint, req *ReviewSubmissionRequest, reviewerID string) (*SubmissionResponse, error)
}

type ProgressService interface {
	// StartLab marks the lab as started for the user, creating the
	// progress row on first call.
	StartLab(ctx context.Context, labID uint, userID string) (*ProgressResponse, error)

	// Get operations
	GetProgress(ctx context.Context, labID uint, userID string) (*ProgressResponse, error)
	GetUserProgress(ctx context.Context, userID string, filters repositories.ProgressFilters) (*ProgressListResponse, error)

	// RefreshProgress recomputes the user's progress for a lab from the
	// current set of correct submissions.
	RefreshProgress(ctx context.Context, userID string, labID uint) (*models.UserLabProgress, error)
}

type ReviewService interface {
	// Core CRUD operations
	Create(ctx context.Context, labID uint, req *CreateReviewRequest, userID string) (*ReviewResponse, error)
	Update(ctx context.Context, reviewID uint, req *UpdateReviewRequest, userID string) (*ReviewResponse, error)
	Delete(ctx context.Context, reviewID uint, userID string) error

	// List operations
	GetByLab(ctx context.Context, labID uint, filters repositories.ReviewFilters) (*ReviewListResponse, error)
	GetUserReview(ctx context.Context, labID uint, userID string) (*ReviewResponse, error)

	// Moderation
	SetApproved(ctx context.Context, reviewID uint, approved bool, moderatorID string) error
	MarkHelpful(ctx context.Context, reviewID uint, userID string) error
}

type StatisticsService interface {
	// GetLabStatistics returns the stored rollup for a lab.
	GetLabStatistics(ctx context.Context, labID uint) (*models.LabStatistics, error)

	// RefreshLabStatistics recomputes the rollup from progress,
	// submissions and approved reviews.
	RefreshLabStatistics(ctx context.Context, labID uint) (*models.LabStatistics, error)

	// Dashboard and reporting
	GetDashboard(ctx context.Context, userID string) (*DashboardResponse, error)
	ExportLabReport(ctx context.Context, labID uint, userID string) ([]byte, error)
}

type ProfileService interface {
	GetProfile(ctx context.Context, userID string, viewerID string) (*ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID string, bio *string, avatarURL *string, isPublic *bool) (*ProfileResponse, error)

	// RefreshProfile recomputes completed lab count and total points
	// from the user's correct submissions.
	RefreshProfile(ctx context.Context, userID string) (*models.UserProfile, error)

	GetLeaderboard(ctx context.Context, limit, offset int) (*LeaderboardResponse, error)
}

type NotificationService interface {
	// Notify persists a notification for one user and publishes the
	// matching domain event.
	Notify(ctx context.Context, userID string, req *NotificationRequest) (*models.Notification, error)
	SendBulkNotification(ctx context.Context, userIDs []string, req *NotificationRequest) error

	List(ctx context.Context, userID string, filters repositories.NotificationFilters) (*NotificationListResponse, error)
	MarkRead(ctx context.Context, notificationID uint, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	// Core service getters
	Lab() LabService
	Challenge() ChallengeService
	Submission() SubmissionService
	Progress() ProgressService
	Review() ReviewService
	Statistics() StatisticsService
	Profile() ProfileService
	Notification() NotificationService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
