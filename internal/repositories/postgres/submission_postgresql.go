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

type SubmissionPostgreSQL struct {
	db           *gorm.DB
	helpers      *SharedHelpers
	cacheManager *cache.CacheManager
}

func NewSubmissionPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.SubmissionRepository {
	return &SubmissionPostgreSQL{
		db:           db,
		helpers:      NewSharedHelpers(db),
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (s *SubmissionPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}

func (s *SubmissionPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error) {
	db := s.getDB(tx)
	var submission models.Submission
	if err := db.WithContext(ctx).First(&submission, id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (s *SubmissionPostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Submission, error) {
	db := s.getDB(tx)
	var submission models.Submission
	if err := db.WithContext(ctx).
		Preload("Challenge").
		Preload("Lab").
		First(&submission, id).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (s *SubmissionPostgreSQL) GetByUserAndChallenge(ctx context.Context, tx *gorm.DB, userID string, challengeID uint) (*models.Submission, error) {
	db := s.getDB(tx)
	var submission models.Submission
	if err := db.WithContext(ctx).
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		First(&submission).Error; err != nil {
		return nil, err
	}
	return &submission, nil
}

func (s *SubmissionPostgreSQL) Update(ctx context.Context, tx *gorm.DB, submission *models.Submission) error {
	db := s.getDB(tx)
	return db.WithContext(ctx).Save(submission).Error
}

// Upsert inserts the (user, challenge) submission or overwrites the existing
// row on conflict with the unique index. A resubmission replaces the payload
// and grading result and clears any previous manual review.
func (s *SubmissionPostgreSQL) Upsert(ctx context.Context, tx *gorm.DB, submission *models.Submission) error {
	db := s.getDB(tx)
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}, {Name: "challenge_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"submitted_answer", "submitted_code", "file_url",
				"status", "score", "is_correct",
				"completion_time", "graded_at", "updated_at",
				"reviewed_by", "review_notes", "review_score", "reviewed_at",
			}),
		}).
		Create(submission).Error
}

func (s *SubmissionPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	db := s.getDB(tx)
	var submissions []*models.Submission
	var total int64

	query := db.WithContext(ctx).Model(&models.Submission{})
	query = s.helpers.ApplySubmissionFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filters.SortBy == "" {
		filters.SortBy = "submitted_at"
	}
	query = s.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Preload("Challenge").Find(&submissions).Error; err != nil {
		return nil, 0, err
	}

	return submissions, total, nil
}

func (s *SubmissionPostgreSQL) GetByUserAndLab(ctx context.Context, tx *gorm.DB, userID string, labID uint) ([]*models.Submission, error) {
	db := s.getDB(tx)
	var submissions []*models.Submission
	if err := db.WithContext(ctx).
		Where("user_id = ? AND lab_id = ?", userID, labID).
		Order("submitted_at DESC").
		Find(&submissions).Error; err != nil {
		return nil, err
	}
	return submissions, nil
}

func (s *SubmissionPostgreSQL) GetPendingReview(ctx context.Context, tx *gorm.DB, filters repositories.SubmissionFilters) ([]*models.Submission, int64, error) {
	status := models.SubmissionPending
	filters.Status = &status
	return s.List(ctx, tx, filters)
}

func (s *SubmissionPostgreSQL) CountByChallenge(ctx context.Context, tx *gorm.DB, challengeID uint) (int64, error) {
	db := s.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("challenge_id = ?", challengeID).
		Count(&count).Error
	return count, err
}

func (s *SubmissionPostgreSQL) CountCorrectByChallenge(ctx context.Context, tx *gorm.DB, challengeID uint) (int64, error) {
	db := s.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("challenge_id = ? AND status = ?", challengeID, models.SubmissionCorrect).
		Count(&count).Error
	return count, err
}

func (s *SubmissionPostgreSQL) CountByLab(ctx context.Context, tx *gorm.DB, labID uint) (int64, error) {
	db := s.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Submission{}).
		Where("lab_id = ?", labID).
		Count(&count).Error
	return count, err
}

// GetProgressTotals reads everything a progress refresh needs in two
// queries: the user's correct submissions in the lab, and the lab's
// challenge totals.
func (s *SubmissionPostgreSQL) GetProgressTotals(ctx context.Context, tx *gorm.DB, userID string, labID uint) (*repositories.ProgressTotals, error) {
	db := s.getDB(tx)

	var correct []struct {
		ChallengeID uint
		Score       int
	}
	if err := db.WithContext(ctx).
		Model(&models.Submission{}).
		Select("challenge_id, score").
		Where("user_id = ? AND lab_id = ? AND status = ?", userID, labID, models.SubmissionCorrect).
		Scan(&correct).Error; err != nil {
		return nil, err
	}

	var challengeTotals struct {
		Total       int64
		MaxPossible int64
	}
	if err := db.WithContext(ctx).
		Model(&models.Challenge{}).
		Select("COUNT(*) as total, COALESCE(SUM(points), 0) as max_possible").
		Where("lab_id = ?", labID).
		Scan(&challengeTotals).Error; err != nil {
		return nil, err
	}

	totals := &repositories.ProgressTotals{
		CompletedCount:  len(correct),
		TotalChallenges: int(challengeTotals.Total),
		MaxPossible:     int(challengeTotals.MaxPossible),
	}
	for _, row := range correct {
		totals.TotalScore += row.Score
		totals.CompletedIDs = append(totals.CompletedIDs, row.ChallengeID)
	}
	return totals, nil
}

func (s *SubmissionPostgreSQL) GetProfileTotals(ctx context.Context, tx *gorm.DB, userID string) (*repositories.ProfileTotals, error) {
	db := s.getDB(tx)
	var totals struct {
		CompletedLabsCount int64
		TotalPoints        int64
	}
	err := db.WithContext(ctx).
		Model(&models.Submission{}).
		Select("COUNT(DISTINCT lab_id) as completed_labs_count, COALESCE(SUM(score), 0) as total_points").
		Where("user_id = ? AND status = ?", userID, models.SubmissionCorrect).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	return &repositories.ProfileTotals{
		CompletedLabsCount: int(totals.CompletedLabsCount),
		TotalPoints:        int(totals.TotalPoints),
	}, nil
}
