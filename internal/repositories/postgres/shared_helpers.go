package postgres

import (
	"gorm.io/gorm"

	"github.com/CyberLabs-Edu/labs-service/internal/repositories"
)

// SharedHelpers contains common database operations
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// ApplyLabFilters applies common filters to lab queries
func (h *SharedHelpers) ApplyLabFilters(query *gorm.DB, filters repositories.LabFilters) *gorm.DB {
	if filters.Category != nil {
		query = query.Where("category = ?", *filters.Category)
	}
	if filters.Difficulty != nil {
		query = query.Where("difficulty = ?", *filters.Difficulty)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}
	if filters.IsPremium != nil {
		query = query.Where("is_premium = ?", *filters.IsPremium)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	if filters.Search != "" {
		like := "%" + filters.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", like, like)
	}
	return query
}

// ApplySubmissionFilters applies common filters to submission queries
func (h *SharedHelpers) ApplySubmissionFilters(query *gorm.DB, filters repositories.SubmissionFilters) *gorm.DB {
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.LabID != nil {
		query = query.Where("lab_id = ?", *filters.LabID)
	}
	if filters.ChallengeID != nil {
		query = query.Where("challenge_id = ?", *filters.ChallengeID)
	}
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.DateFrom != nil {
		query = query.Where("submitted_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("submitted_at <= ?", *filters.DateTo)
	}
	return query
}

// ApplyProgressFilters applies common filters to progress queries
func (h *SharedHelpers) ApplyProgressFilters(query *gorm.DB, filters repositories.ProgressFilters) *gorm.DB {
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.LabID != nil {
		query = query.Where("lab_id = ?", *filters.LabID)
	}
	if filters.IsStarted != nil {
		query = query.Where("is_started = ?", *filters.IsStarted)
	}
	if filters.IsCompleted != nil {
		query = query.Where("is_completed = ?", *filters.IsCompleted)
	}
	return query
}

// ApplyReviewFilters applies common filters to review queries
func (h *SharedHelpers) ApplyReviewFilters(query *gorm.DB, filters repositories.ReviewFilters) *gorm.DB {
	if filters.LabID != nil {
		query = query.Where("lab_id = ?", *filters.LabID)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.IsApproved != nil {
		query = query.Where("is_approved = ?", *filters.IsApproved)
	}
	if filters.MinRating != nil {
		query = query.Where("rating >= ?", *filters.MinRating)
	}
	return query
}

// ApplyPaginationAndSort applies pagination and sorting with SQL injection protection
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	// Whitelist allowed sort columns
	allowedSortColumns := map[string]bool{
		"created_at":            true,
		"updated_at":            true,
		"submitted_at":          true,
		"id":                    true,
		"title":                 true,
		"points":                true,
		"difficulty":            true,
		"category":              true,
		"view_count":            true,
		"completion_count":      true,
		"rating":                true,
		"score":                 true,
		"status":                true,
		"completion_percentage": true,
	}

	// Validate and set sort column
	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}

	// Validate and set sort order
	if sortOrder != "asc" && sortOrder != "ASC" {
		sortOrder = "DESC"
	} else {
		sortOrder = "ASC"
	}

	query = query.Order(sortBy + " " + sortOrder)

	if limit > 0 {
		query = query.Limit(limit)
	}
	if offset > 0 {
		query = query.Offset(offset)
	}

	return query
}
