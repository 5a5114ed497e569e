package repositories

import (
	"time"

	"github.com/CyberLabs-Edu/labs-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type LabFilters struct {
	Category   *models.LabCategory   `json:"category"`
	Difficulty *models.LabDifficulty `json:"difficulty"`
	IsActive   *bool                 `json:"is_active"`
	IsPremium  *bool                 `json:"is_premium"`
	CreatedBy  *string               `json:"created_by"`
	Search     string                `json:"search"`
	Limit      int                   `json:"limit"`
	Offset     int                   `json:"offset"`
	SortBy     string                `json:"sort_by"`    // "created_at", "title", "points", "view_count"
	SortOrder  string                `json:"sort_order"` // "asc", "desc"
}

type SubmissionFilters struct {
	UserID      *string                  `json:"user_id"`
	LabID       *uint                    `json:"lab_id"`
	ChallengeID *uint                    `json:"challenge_id"`
	Status      *models.SubmissionStatus `json:"status"`
	DateFrom    *time.Time               `json:"date_from"`
	DateTo      *time.Time               `json:"date_to"`
	Limit       int                      `json:"limit"`
	Offset      int                      `json:"offset"`
	SortBy      string                   `json:"sort_by"`
	SortOrder   string                   `json:"sort_order"`
}

type ProgressFilters struct {
	UserID      *string `json:"user_id"`
	LabID       *uint   `json:"lab_id"`
	IsStarted   *bool   `json:"is_started"`
	IsCompleted *bool   `json:"is_completed"`
	Limit       int     `json:"limit"`
	Offset      int     `json:"offset"`
	SortBy      string  `json:"sort_by"`
	SortOrder   string  `json:"sort_order"`
}

type ReviewFilters struct {
	LabID      *uint   `json:"lab_id"`
	UserID     *string `json:"user_id"`
	IsApproved *bool   `json:"is_approved"`
	MinRating  *int    `json:"min_rating"`
	Limit      int     `json:"limit"`
	Offset     int     `json:"offset"`
	SortBy     string  `json:"sort_by"`
	SortOrder  string  `json:"sort_order"`
}

type NotificationFilters struct {
	OnlyUnread bool `json:"only_unread"`
	Limit      int  `json:"limit"`
	Offset     int  `json:"offset"`
}

// ===== SHARED STATISTICS STRUCTS =====

// ChallengeCounters is the denormalized pair maintained on every recorded
// submission. Updated under a row lock; see the postgres implementation.
type ChallengeCounters struct {
	Attempts    int     `json:"attempts"`
	SuccessRate float64 `json:"success_rate"`
}

// ProgressTotals are the per-user per-lab aggregates read back from
// submissions when progress is refreshed.
type ProgressTotals struct {
	CompletedCount  int   `json:"completed_count"`
	TotalChallenges int   `json:"total_challenges"`
	TotalScore      int   `json:"total_score"`
	MaxPossible     int   `json:"max_possible"`
	CompletedIDs    []uint `json:"completed_ids"`
}

// LabRollup is the raw aggregate row behind RefreshLabStatistics.
type LabRollup struct {
	TotalStarts      int     `json:"total_starts"`
	TotalCompletions int     `json:"total_completions"`
	TotalSubmissions int     `json:"total_submissions"`
	AverageRating    float64 `json:"average_rating"`
	AverageScore     float64 `json:"average_score"`
	ReviewCount      int     `json:"review_count"`
}

// ProfileTotals are the derived user totals behind RefreshProfile.
type ProfileTotals struct {
	CompletedLabsCount int `json:"completed_labs_count"`
	TotalPoints        int `json:"total_points"`
}

type PlatformStats struct {
	TotalLabs        int64 `json:"total_labs"`
	ActiveLabs       int64 `json:"active_labs"`
	TotalChallenges  int64 `json:"total_challenges"`
	TotalSubmissions int64 `json:"total_submissions"`
	TotalUsers       int64 `json:"total_users"`
	TotalCompletions int64 `json:"total_completions"`
}
