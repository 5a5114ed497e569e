package repositories

import (
	"context"

	"github.com/CyberLabs-Edu/labs-service/internal/models"
	"gorm.io/gorm"
)

// LabRepository interface for lab catalog operations
type LabRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, lab *models.Lab) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Lab, error)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Lab, error) // Include challenges, statistics
	GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*models.Lab, error)
	Update(ctx context.Context, tx *gorm.DB, lab *models.Lab) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters LabFilters) ([]*models.Lab, int64, error)
	GetByCreator(ctx context.Context, tx *gorm.DB, creatorID string, filters LabFilters) ([]*models.Lab, int64, error)
	GetPremium(ctx context.Context, tx *gorm.DB, limit int) ([]*models.Lab, error)
	GetCategoriesWithCounts(ctx context.Context, tx *gorm.DB) ([]*models.CategoryCount, error)

	// Counters
	IncrementViewCount(ctx context.Context, tx *gorm.DB, id uint) error
	UpdateCompletionStats(ctx context.Context, tx *gorm.DB, id uint, completions int, averageScore float64) error

	// Validation and checks
	ExistsBySlug(ctx context.Context, tx *gorm.DB, slug string, excludeID *uint) (bool, error)
}

// ChallengeRepository interface for challenge operations
type ChallengeRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, challenge *models.Challenge) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Challenge, error)
	Update(ctx context.Context, tx *gorm.DB, challenge *models.Challenge) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Lab-scoped queries, ordered by the challenge order column
	GetByLab(ctx context.Context, tx *gorm.DB, labID uint) ([]*models.Challenge, error)
	CountByLab(ctx context.Context, tx *gorm.DB, labID uint) (int64, error)
	MaxOrder(ctx context.Context, tx *gorm.DB, labID uint) (int, error)

	// GetByIDForUpdate locks the challenge row for the duration of the
	// surrounding transaction. Counter updates must go through this.
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Challenge, error)
	UpdateCounters(ctx context.Context, tx *gorm.DB, id uint, counters ChallengeCounters) error

	// Validation
	ExistsByOrder(ctx context.Context, tx *gorm.DB, labID uint, order int, excludeID *uint) (bool, error)
}
