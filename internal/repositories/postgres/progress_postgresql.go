package postgres

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/CyberLabs-Edu/labs-service/internal/cache"
	"github.com/CyberLabs-Edu/labs-service/internal/models"
	"github.com/CyberLabs-Edu/labs-service/internal/repositories"
)

type ProgressPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewProgressPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ProgressRepository {
	return &ProgressPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (p *ProgressPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return p.db
}

func (p *ProgressPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.UserLabProgress, error) {
	db := p.getDB(tx)
	var progress models.UserLabProgress
	if err := db.WithContext(ctx).
		Preload("CompletedChallenges").
		First(&progress, id).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

func (p *ProgressPostgreSQL) GetByUserAndLab(ctx context.Context, tx *gorm.DB, userID string, labID uint) (*models.UserLabProgress, error) {
	db := p.getDB(tx)
	var progress models.UserLabProgress
	if err := db.WithContext(ctx).
		Where("user_id = ? AND lab_id = ?", userID, labID).
		Preload("CompletedChallenges").
		First(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

// GetOrCreate returns the progress row for (user, lab), creating it lazily
// on first use. The second return value reports whether a row was created.
// The insert ignores unique-index conflicts so concurrent first calls
// converge on one row.
func (p *ProgressPostgreSQL) GetOrCreate(ctx context.Context, tx *gorm.DB, userID string, labID uint) (*models.UserLabProgress, bool, error) {
	db := p.getDB(tx)

	existing, err := p.GetByUserAndLab(ctx, tx, userID, labID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	progress := &models.UserLabProgress{
		UserID: userID,
		LabID:  labID,
	}
	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "lab_id"}},
			DoNothing: true,
		}).
		Create(progress)
	if result.Error != nil {
		return nil, false, result.Error
	}
	if result.RowsAffected == 0 {
		// Lost the race; read the winner's row.
		existing, err := p.GetByUserAndLab(ctx, tx, userID, labID)
		return existing, false, err
	}
	return progress, true, nil
}

func (p *ProgressPostgreSQL) Update(ctx context.Context, tx *gorm.DB, progress *models.UserLabProgress) error {
	db := p.getDB(tx)
	return db.WithContext(ctx).Save(progress).Error
}

func (p *ProgressPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.ProgressFilters) ([]*models.UserLabProgress, int64, error) {
	db := p.getDB(tx)
	var rows []*models.UserLabProgress
	var total int64

	query := db.WithContext(ctx).Model(&models.UserLabProgress{})
	query = p.helpers.ApplyProgressFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = p.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Preload("Lab").Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

func (p *ProgressPostgreSQL) GetByUser(ctx context.Context, tx *gorm.DB, userID string) ([]*models.UserLabProgress, error) {
	db := p.getDB(tx)
	var rows []*models.UserLabProgress
	if err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Preload("Lab").
		Order("updated_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// ReplaceCompletedChallenges rewrites the membership set for one progress
// row to exactly challengeIDs.
func (p *ProgressPostgreSQL) ReplaceCompletedChallenges(ctx context.Context, tx *gorm.DB, progressID uint, challengeIDs []uint) error {
	db := p.getDB(tx)

	if err := db.WithContext(ctx).
		Where("progress_id = ?", progressID).
		Delete(&models.CompletedChallenge{}).Error; err != nil {
		return err
	}

	if len(challengeIDs) == 0 {
		return nil
	}

	rows := make([]models.CompletedChallenge, 0, len(challengeIDs))
	for _, id := range challengeIDs {
		rows = append(rows, models.CompletedChallenge{
			ProgressID:  progressID,
			ChallengeID: id,
		})
	}
	return db.WithContext(ctx).Create(&rows).Error
}

func (p *ProgressPostgreSQL) CountStarted(ctx context.Context, tx *gorm.DB, labID uint) (int64, error) {
	db := p.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.UserLabProgress{}).
		Where("lab_id = ? AND is_started = ?", labID, true).
		Count(&count).Error
	return count, err
}

func (p *ProgressPostgreSQL) CountCompleted(ctx context.Context, tx *gorm.DB, labID uint) (int64, error) {
	db := p.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.UserLabProgress{}).
		Where("lab_id = ? AND is_completed = ?", labID, true).
		Count(&count).Error
	return count, err
}
