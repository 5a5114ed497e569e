package postgres

import (
	"context"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/CyberLabs-Edu/labs-service/internal/cache"
	"github.com/CyberLabs-Edu/labs-service/internal/models"
	"github.com/CyberLabs-Edu/labs-service/internal/repositories"
)

type StatisticsPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewStatisticsPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.StatisticsRepository {
	return &StatisticsPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (s *StatisticsPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

func (s *StatisticsPostgreSQL) GetByLab(ctx context.Context, tx *gorm.DB, labID uint) (*models.LabStatistics, error) {
	db := s.getDB(tx)
	var stats models.LabStatistics
	if err := db.WithContext(ctx).
		Where("lab_id = ?", labID).
		First(&stats).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}

// Upsert writes the single statistics row per lab.
func (s *StatisticsPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, stats *models.LabStatistics) error {
	db := s.getDB(tx)
	if err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "lab_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"total_views", "total_starts", "total_completions", "total_submissions",
				"average_rating", "average_completion_time", "average_score",
				"completion_rate", "success_rate", "dropout_rate", "last_calculated",
			}),
		}).
		Create(stats).Error; err != nil {
		return err
	}
	cache.InvalidateStatsCache(ctx, s.cacheManager, stats.LabID)
	return nil
}

// GetRollup reads the raw aggregates behind a statistics refresh in one pass
// over progress rows, submissions and approved reviews.
func (s *StatisticsPostgreSQL) GetRollup(ctx context.Context, tx *gorm.DB, labID uint) (*repositories.LabRollup, error) {
	db := s.getDB(tx)
	rollup := &repositories.LabRollup{}

	var progressCounts struct {
		Starts      int64
		Completions int64
	}
	if err := db.WithContext(ctx).
		Model(&models.UserLabProgress{}).
		Select("COUNT(*) FILTER (WHERE is_started) as starts, COUNT(*) FILTER (WHERE is_completed) as completions").
		Where("lab_id = ?", labID).
		Scan(&progressCounts).Error; err != nil {
		return nil, err
	}
	rollup.TotalStarts = int(progressCounts.Starts)
	rollup.TotalCompletions = int(progressCounts.Completions)

	var submissionCounts struct {
		Total        int64
		AverageScore *float64
	}
	if err := db.WithContext(ctx).
		Model(&models.Submission{}).
		Select("COUNT(*) as total, AVG(score) as average_score").
		Where("lab_id = ?", labID).
		Scan(&submissionCounts).Error; err != nil {
		return nil, err
	}
	rollup.TotalSubmissions = int(submissionCounts.Total)
	if submissionCounts.AverageScore != nil {
		rollup.AverageScore = *submissionCounts.AverageScore
	}

	var reviewStats struct {
		Avg   *float64
		Count int64
	}
	if err := db.WithContext(ctx).
		Model(&models.LabReview{}).
		Select("AVG(rating) as avg, COUNT(*) as count").
		Where("lab_id = ? AND is_approved = ?", labID, true).
		Scan(&reviewStats).Error; err != nil {
		return nil, err
	}
	rollup.ReviewCount = int(reviewStats.Count)
	if reviewStats.Avg != nil {
		rollup.AverageRating = *reviewStats.Avg
	}

	return rollup, nil
}

func (s *StatisticsPostgreSQL) GetPlatformStats(ctx context.Context, tx *gorm.DB) (*repositories.PlatformStats, error) {
	db := s.getDB(tx)
	stats := &repositories.PlatformStats{}

	if err := db.WithContext(ctx).Model(&models.Lab{}).Count(&stats.TotalLabs).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&models.Lab{}).Where("is_active = ?", true).Count(&stats.ActiveLabs).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&models.Challenge{}).Count(&stats.TotalChallenges).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&models.Submission{}).Count(&stats.TotalSubmissions).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&models.Submission{}).Distinct("user_id").Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.WithContext(ctx).Model(&models.UserLabProgress{}).Where("is_completed = ?", true).Count(&stats.TotalCompletions).Error; err != nil {
		return nil, err
	}

	return stats, nil
}

func (s *StatisticsPostgreSQL) GetTopLabs(ctx context.Context, tx *gorm.DB, limit int) ([]*models.LabStatistics, error) {
	db := s.getDB(tx)
	var rows []*models.LabStatistics
	if err := db.WithContext(ctx).
		Preload("Lab").
		Order("total_completions DESC, average_rating DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
