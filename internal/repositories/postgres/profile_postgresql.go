package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/CyberLabs-Edu/labs-service/internal/cache"
	"github.com/CyberLabs-Edu/labs-service/internal/models"
	"github.com/CyberLabs-Edu/labs-service/internal/repositories"
)

type ProfilePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewProfilePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ProfileRepository {
	return &ProfilePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (p *ProfilePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return p.db
}

func (p *ProfilePostgreSQL) GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*models.UserProfile, error) {
	db := p.getDB(tx)
	var profile models.UserProfile
	if err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (p *ProfilePostgreSQL) GetOrCreate(ctx context.Context, tx *gorm.DB, userID string) (*models.UserProfile, bool, error) {
	db := p.getDB(tx)

	existing, err := p.GetByUserID(ctx, tx, userID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	profile := &models.UserProfile{UserID: userID}
	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoNothing: true,
		}).
		Create(profile)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 0 {
		existing, err := p.GetByUserID(ctx, tx, userID)
		return existing, false, err
	}
	return profile, true, nil
}

func (p *ProfilePostgreSQL) Update(ctx context.Context, tx *gorm.DB, profile *models.UserProfile) error {
	db := p.getDB(tx)
	if err := db.WithContext(ctx).Save(profile).Error; err != nil {
		return err
	}
	_ = p.cacheManager.Profile.Delete(ctx, fmt.Sprintf("user:%s", profile.UserID))
	return nil
}

func (p *ProfilePostgreSQL) GetLeaderboard(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.UserProfile, int64, error) {
	db := p.getDB(tx)
	var profiles []*models.UserProfile
	var total int64

	query := db.WithContext(ctx).
		Model(&models.UserProfile{}).
		Where("is_public = ?", true)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("User").
		Order("total_points DESC, completed_labs_count DESC").
		Limit(limit).
		Offset(offset).
		Find(&profiles).Error; err != nil {
		return nil, 0, err
	}

	return profiles, total, nil
}
