package postgres

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/CyberLabs-Edu/labs-service/internal/cache"
	"github.com/CyberLabs-Edu/labs-service/internal/models"
	"github.com/CyberLabs-Edu/labs-service/internal/repositories"
)

type ReviewPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewReviewPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ReviewRepository {
	return &ReviewPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (r *ReviewPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func (r *ReviewPostgreSQL) Create(ctx context.Context, tx *gorm.DB, review *models.LabReview) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Create(review).Error; err != nil {
		return err
	}
	cache.InvalidateStatsCache(ctx, r.cacheManager, review.LabID)
	return nil
}

func (r *ReviewPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.LabReview, error) {
	db := r.getDB(tx)
	var review models.LabReview
	if err := db.WithContext(ctx).First(&review, id).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *ReviewPostgreSQL) GetByUserAndLab(ctx context.Context, tx *gorm.DB, userID string, labID uint) (*models.LabReview, error) {
	db := r.getDB(tx)
	var review models.LabReview
	if err := db.WithContext(ctx).
		Where("user_id = ? AND lab_id = ?", userID, labID).
		First(&review).Error; err != nil {
		return nil, err
	}
	return &review, nil
}

func (r *ReviewPostgreSQL) Update(ctx context.Context, tx *gorm.DB, review *models.LabReview) error {
	db := r.getDB(tx)
	if err := db.WithContext(ctx).Save(review).Error; err != nil {
		return err
	}
	cache.InvalidateStatsCache(ctx, r.cacheManager, review.LabID)
	return nil
}

func (r *ReviewPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := r.getDB(tx)
	var review models.LabReview
	if err := db.WithContext(ctx).First(&review, id).Error; err != nil {
		return err
	}
	if err := db.WithContext(ctx).Delete(&review).Error; err != nil {
		return err
	}
	cache.InvalidateStatsCache(ctx, r.cacheManager, review.LabID)
	return nil
}

func (r *ReviewPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ReviewFilters) ([]*models.LabReview, int64, error) {
	db := r.getDB(tx)
	var reviews []*models.LabReview
	var total int64

	query := db.WithContext(ctx).Model(&models.LabReview{})
	query = r.helpers.ApplyReviewFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = r.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Preload("User").Find(&reviews).Error; err != nil {
		return nil, 0, err
	}

	return reviews, total, nil
}

func (r *ReviewPostgreSQL) SetApproved(ctx context.Context, tx *gorm.DB, id uint, approved bool) error {
	db := r.getDB(tx)
	var review models.LabReview
	if err := db.WithContext(ctx).First(&review, id).Error; err != nil {
		return err
	}
	if err := db.WithContext(ctx).
		Model(&review).
		Update("is_approved", approved).Error; err != nil {
		return err
	}
	cache.InvalidateStatsCache(ctx, r.cacheManager, review.LabID)
	return nil
}

// AverageApprovedRating returns the mean rating over approved reviews and
// how many reviews went into it; (0, 0) when none exist.
func (r *ReviewPostgreSQL) AverageApprovedRating(ctx context.Context, tx *gorm.DB, labID uint) (float64, int64, error) {
	db := r.getDB(tx)
	var row struct {
		Avg   *float64
		Count int64
	}
	err := db.WithContext(ctx).
		Model(&models.LabReview{}).
		Select("AVG(rating) as avg, COUNT(*) as count").
		Where("lab_id = ? AND is_approved = ?", labID, true).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	if row.Avg == nil {
		return 0, row.Count, nil
	}
	return *row.Avg, row.Count, nil
}
