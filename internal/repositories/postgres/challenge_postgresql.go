package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/CyberLabs-Edu/labs-service/internal/cache"
	"github.com/CyberLabs-Edu/labs-service/internal/models"
	"github.com/CyberLabs-Edu/labs-service/internal/repositories"
)

type ChallengePostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewChallengePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ChallengeRepository {
	return &ChallengePostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (c *ChallengePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}

func (c *ChallengePostgreSQL) Create(ctx context.Context, tx *gorm.DB, challenge *models.Challenge) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Create(challenge).Error; err != nil {
		return err
	}
	c.invalidate(ctx, challenge.ID, challenge.LabID)
	return nil
}

func (c *ChallengePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Challenge, error) {
	db := c.getDB(tx)
	cacheKey := fmt.Sprintf("id:%d", id)
	var challenge models.Challenge

	err := c.cacheManager.Challenge.CacheOrExecute(ctx, cacheKey, &challenge, cache.ChallengeCacheConfig.TTL, func() (interface{}, error) {
		var dbChallenge models.Challenge
		if err := db.WithContext(ctx).First(&dbChallenge, id).Error; err != nil {
			return nil, err
		}
		return &dbChallenge, nil
	})

	return &challenge, err
}

// GetByIDForUpdate reads the challenge row under FOR UPDATE. Callers must be
// inside a transaction; the lock serializes counter updates per challenge.
func (c *ChallengePostgreSQL) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Challenge, error) {
	db := c.getDB(tx)
	var challenge models.Challenge
	if err := db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&challenge, id).Error; err != nil {
		return nil, err
	}
	return &challenge, nil
}

func (c *ChallengePostgreSQL) Update(ctx context.Context, tx *gorm.DB, challenge *models.Challenge) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).Save(challenge).Error; err != nil {
		return err
	}
	c.invalidate(ctx, challenge.ID, challenge.LabID)
	return nil
}

func (c *ChallengePostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := c.getDB(tx)
	var challenge models.Challenge
	if err := db.WithContext(ctx).First(&challenge, id).Error; err != nil {
		return err
	}
	if err := db.WithContext(ctx).Delete(&challenge).Error; err != nil {
		return err
	}
	c.invalidate(ctx, id, challenge.LabID)
	return nil
}

func (c *ChallengePostgreSQL) GetByLab(ctx context.Context, tx *gorm.DB, labID uint) ([]*models.Challenge, error) {
	db := c.getDB(tx)
	var challenges []*models.Challenge
	if err := db.WithContext(ctx).
		Where("lab_id = ?", labID).
		Order("\"order\" ASC").
		Find(&challenges).Error; err != nil {
		return nil, err
	}
	return challenges, nil
}

func (c *ChallengePostgreSQL) CountByLab(ctx context.Context, tx *gorm.DB, labID uint) (int64, error) {
	db := c.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Challenge{}).
		Where("lab_id = ?", labID).
		Count(&count).Error
	return count, err
}

func (c *ChallengePostgreSQL) MaxOrder(ctx context.Context, tx *gorm.DB, labID uint) (int, error) {
	db := c.getDB(tx)
	var max *int
	err := db.WithContext(ctx).
		Model(&models.Challenge{}).
		Where("lab_id = ?", labID).
		Select("MAX(\"order\")").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return -1, nil
	}
	return *max, nil
}

// UpdateCounters writes the attempt counter and success rate computed under
// the row lock taken by GetByIDForUpdate.
func (c *ChallengePostgreSQL) UpdateCounters(ctx context.Context, tx *gorm.DB, id uint, counters repositories.ChallengeCounters) error {
	db := c.getDB(tx)
	if err := db.WithContext(ctx).
		Model(&models.Challenge{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"attempts":     counters.Attempts,
			"success_rate": counters.SuccessRate,
		}).Error; err != nil {
		return err
	}
	cache.SafeDelete(ctx, c.cacheManager.Challenge, fmt.Sprintf("id:%d", id))
	return nil
}

func (c *ChallengePostgreSQL) ExistsByOrder(ctx context.Context, tx *gorm.DB, labID uint, order int, excludeID *uint) (bool, error) {
	db := c.getDB(tx)
	query := db.WithContext(ctx).
		Model(&models.Challenge{}).
		Where("lab_id = ? AND \"order\" = ?", labID, order)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (c *ChallengePostgreSQL) invalidate(ctx context.Context, id, labID uint) {
	cache.InvalidateChallengeCache(ctx, c.cacheManager, id, labID)
}
