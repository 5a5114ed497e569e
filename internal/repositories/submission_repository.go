package repositories

import (
	"context"

	"github.com/CyberLabs-Edu/labs-service/internal/models"
	"gorm.io/gorm"
)

// SubmissionRepository interface for submission operations
type SubmissionRepository interface {
	// Basic operations
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error) // Include challenge, lab
	GetByUserAndChallenge(ctx context.Context, tx *gorm.DB, userID string, challengeID uint) (*models.Submission, error)
	Update(ctx context.Context, tx *gorm.DB, submission *models.Submission) error

	// Upsert writes the single submission row for (user, challenge): an
	// insert, or an overwrite of the existing row on conflict. Never two rows.
	Upsert(ctx context.Context, tx *gorm.DB, submission *models.Submission) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters SubmissionFilters) ([]*models.Submission, int64, error)
	GetByUserAndLab(ctx context.Context, tx *gorm.DB, userID string, labID uint) ([]*models.Submission, error)
	GetPendingReview(ctx context.Context, tx *gorm.DB, filters SubmissionFilters) ([]*models.Submission, int64, error)

	// Aggregates
	CountByChallenge(ctx context.Context, tx *gorm.DB, challengeID uint) (int64, error)
	CountCorrectByChallenge(ctx context.Context, tx *gorm.DB, challengeID uint) (int64, error)
	CountByLab(ctx context.Context, tx *gorm.DB, labID uint) (int64, error)
	GetProgressTotals(ctx context.Context, tx *gorm.DB, userID string, labID uint) (*ProgressTotals, error)
	GetProfileTotals(ctx context.Context, tx *gorm.DB, userID string) (*ProfileTotals, error)
}

// ProgressRepository interface for per-user lab progress
type ProgressRepository interface {
	// Basic operations
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.UserLabProgress, error)
	GetByUserAndLab(ctx context.Context, tx *gorm.DB, userID string, labID uint) (*models.UserLabProgress, error)
	GetOrCreate(ctx context.Context, tx *gorm.DB, userID string, labID uint) (*models.UserLabProgress, bool, error)
	Update(ctx context.Context, tx *gorm.DB, progress *models.UserLabProgress) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters ProgressFilters) ([]*models.UserLabProgress, int64, error)
	GetByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.UserLabProgress, error)

	// Membership set of solved challenges for one progress row
	ReplaceCompletedChallenges(ctx context.Context, tx *gorm.DB, progressID uint, challengeIDs []uint) error

	// Aggregates
	CountStarted(ctx context.Context, tx *gorm.DB, labID uint) (int64, error)
	CountCompleted(ctx context.Context, tx *gorm.DB, labID uint) (int64, error)
}
