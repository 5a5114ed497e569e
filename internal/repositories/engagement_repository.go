package repositories

import (
	"context"

	"github.com/CyberLabs-Edu/labs-service/internal/models"
	"gorm.io/gorm"
)

// ReviewRepository interface for lab review operations
type ReviewRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, review *models.LabReview) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.LabReview, error)
	GetByUserAndLab(ctx context.Context, tx *gorm.DB, userID string, labID uint) (*models.LabReview, error)
	Update(ctx context.Context, tx *gorm.DB, review *models.LabReview) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters ReviewFilters) ([]*models.LabReview, int64, error)

	// Moderation
	SetApproved(ctx context.Context, tx *gorm.DB, id uint, approved bool) error

	// Aggregates over approved reviews only
	AverageApprovedRating(ctx context.Context, tx *gorm.DB, labID uint) (float64, int64, error)
}

// StatisticsRepository interface for per-lab derived rollups
type StatisticsRepository interface {
	GetByLab(ctx context.Context, tx *gorm.DB, labID uint) (*models.LabStatistics, error)
	Upsert(ctx context.Context, tx *gorm.DB, stats *models.LabStatistics) error

	// GetRollup reads the raw aggregates a refresh is computed from.
	GetRollup(ctx context.Context, tx *gorm.DB, labID uint) (*LabRollup, error)

	// Platform-wide aggregates for the dashboard
	GetPlatformStats(ctx context.Context, tx *gorm.DB) (*PlatformStats, error)
	GetTopLabs(ctx context.Context, tx *gorm.DB, limit int) ([]*models.LabStatistics, error)
}

// NotificationRepository interface for user notifications
type NotificationRepository interface {
	Create(ctx context.Context, tx *gorm.DB, notification *models.Notification) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Notification, error)
	List(ctx context.Context, tx *gorm.DB, userID string, filters NotificationFilters) ([]*models.Notification, int64, error)
	MarkRead(ctx context.Context, tx *gorm.DB, id uint, userID string) error
	MarkAllRead(ctx context.Context, tx *gorm.DB, userID string) error
	CountUnread(ctx context.Context, tx *gorm.DB, userID string) (int64, error)
}

// ProfileRepository interface for derived user profiles
type ProfileRepository interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*models.UserProfile, error)
	GetOrCreate(ctx context.Context, tx *gorm.DB, userID string) (*models.UserProfile, bool, error)
	Update(ctx context.Context, tx *gorm.DB, profile *models.UserProfile) error

	// Leaderboard ordered by total points
	GetLeaderboard(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.UserProfile, int64, error)
}
