package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/CyberLabs-Edu/labs-service/internal/cache"
	"github.com/CyberLabs-Edu/labs-service/internal/models"
	"github.com/CyberLabs-Edu/labs-service/internal/repositories"
)

type LabPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewLabPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.LabRepository {
	return &LabPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (l *LabPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return l.db
}

func (l *LabPostgreSQL) Create(ctx context.Context, tx *gorm.DB, lab *models.Lab) error {
	db := l.getDB(tx)
	return db.WithContext(ctx).Create(lab).Error
}

func (l *LabPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Lab, error) {
	db := l.getDB(tx)
	cacheKey := fmt.Sprintf("id:%d", id)
	var lab models.Lab

	err := l.cacheManager.Lab.CacheOrExecute(ctx, cacheKey, &lab, cache.LabCacheConfig.TTL, func() (interface{}, error) {
		var dbLab models.Lab
		if err := db.WithContext(ctx).First(&dbLab, id).Error; err != nil {
			return nil, err
		}
		return &dbLab, nil
	})

	return &lab, err
}

func (l *LabPostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Lab, error) {
	db := l.getDB(tx)
	var lab models.Lab
	if err := db.WithContext(ctx).
		Preload("Challenges", func(db *gorm.DB) *gorm.DB {
			return db.Order("challenges.\"order\" ASC")
		}).
		Preload("Statistics").
		First(&lab, id).Error; err != nil {
		return nil, err
	}
	lab.ChallengeCount = len(lab.Challenges)
	return &lab, nil
}

func (l *LabPostgreSQL) GetBySlug(ctx context.Context, tx *gorm.DB, slug string) (*models.Lab, error) {
	db := l.getDB(tx)
	var lab models.Lab
	if err := db.WithContext(ctx).Where("slug = ?", slug).First(&lab).Error; err != nil {
		return nil, err
	}
	return &lab, nil
}

func (l *LabPostgreSQL) Update(ctx context.Context, tx *gorm.DB, lab *models.Lab) error {
	db := l.getDB(tx)
	if err := db.WithContext(ctx).Save(lab).Error; err != nil {
		return err
	}
	l.invalidate(ctx, lab.ID)
	return nil
}

func (l *LabPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := l.getDB(tx)
	if err := db.WithContext(ctx).Delete(&models.Lab{}, id).Error; err != nil {
		return err
	}
	l.invalidate(ctx, id)
	return nil
}

func (l *LabPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.LabFilters) ([]*models.Lab, int64, error) {
	db := l.getDB(tx)
	var labs []*models.Lab
	var total int64

	// apply filter first
	query := db.WithContext(ctx).Model(&models.Lab{})
	query = l.helpers.ApplyLabFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// then apply pagination and sorting
	query = l.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Find(&labs).Error; err != nil {
		return nil, 0, err
	}

	return labs, total, nil
}

func (l *LabPostgreSQL) GetByCreator(ctx context.Context, tx *gorm.DB, creatorID string, filters repositories.LabFilters) ([]*models.Lab, int64, error) {
	filters.CreatedBy = &creatorID
	return l.List(ctx, tx, filters)
}

func (l *LabPostgreSQL) GetPremium(ctx context.Context, tx *gorm.DB, limit int) ([]*models.Lab, error) {
	db := l.getDB(tx)
	var labs []*models.Lab
	if err := db.WithContext(ctx).
		Where("is_premium = ? AND is_active = ?", true, true).
		Order("view_count DESC").
		Limit(limit).
		Find(&labs).Error; err != nil {
		return nil, err
	}
	return labs, nil
}

func (l *LabPostgreSQL) GetCategoriesWithCounts(ctx context.Context, tx *gorm.DB) ([]*models.CategoryCount, error) {
	db := l.getDB(tx)
	var counts []*models.CategoryCount
	err := db.WithContext(ctx).
		Model(&models.Lab{}).
		Select("category, COUNT(*) as count").
		Where("is_active = ?", true).
		Group("category").
		Order("count DESC").
		Scan(&counts).Error
	return counts, err
}

// IncrementViewCount bumps the view counter without a read-modify-write
// round trip.
func (l *LabPostgreSQL) IncrementViewCount(ctx context.Context, tx *gorm.DB, id uint) error {
	db := l.getDB(tx)
	return db.WithContext(ctx).
		Model(&models.Lab{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + 1")).Error
}

func (l *LabPostgreSQL) UpdateCompletionStats(ctx context.Context, tx *gorm.DB, id uint, completions int, averageScore float64) error {
	db := l.getDB(tx)
	if err := db.WithContext(ctx).
		Model(&models.Lab{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"completion_count": completions,
			"average_score":    averageScore,
		}).Error; err != nil {
		return err
	}
	l.invalidate(ctx, id)
	return nil
}

func (l *LabPostgreSQL) ExistsBySlug(ctx context.Context, tx *gorm.DB, slug string, excludeID *uint) (bool, error) {
	db := l.getDB(tx)
	query := db.WithContext(ctx).Model(&models.Lab{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (l *LabPostgreSQL) invalidate(ctx context.Context, id uint) {
	cache.InvalidateLabCache(ctx, l.cacheManager, id)
}
