package models

import (
	"time"
)

// UserLabProgress is the per-user aggregate for one lab. It is recomputed
// from submissions, never incrementally maintained; the completed flag is
// one-way and completed_at is written exactly once.
type UserLabProgress struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"not null;size:255;uniqueIndex:idx_user_lab,priority:1"`
	LabID  uint   `json:"lab_id" gorm:"not null;uniqueIndex:idx_user_lab,priority:2"`

	IsStarted            bool    `json:"is_started" gorm:"default:false"`
	IsCompleted          bool    `json:"is_completed" gorm:"default:false;index"`
	CompletionPercentage float64 `json:"completion_percentage" gorm:"default:0"`

	TotalScore       int `json:"total_score" gorm:"default:0"`
	MaxPossibleScore int `json:"max_possible_score" gorm:"default:0"`

	StartedAt      *time.Time `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at"`
	TotalTimeSpent int        `json:"total_time_spent" gorm:"default:0;comment:Seconds"`
	AttemptCount   int        `json:"attempt_count" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User                *User                `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Lab                 *Lab                 `json:"lab,omitempty" gorm:"foreignKey:LabID"`
	CompletedChallenges []CompletedChallenge `json:"completed_challenges,omitempty" gorm:"foreignKey:ProgressID;constraint:OnDelete:CASCADE"`
}

// CompletedChallenge is the membership set of challenges a user has solved
// within a lab, unique per progress row.
type CompletedChallenge struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	ProgressID  uint      `json:"progress_id" gorm:"not null;uniqueIndex:idx_progress_challenge,priority:1"`
	ChallengeID uint      `json:"challenge_id" gorm:"not null;uniqueIndex:idx_progress_challenge,priority:2"`
	CompletedAt time.Time `json:"completed_at" gorm:"autoCreateTime"`

	Challenge *Challenge `json:"challenge,omitempty" gorm:"foreignKey:ChallengeID"`
}

func (UserLabProgress) TableName() string {
	return "user_lab_progress"
}

func (CompletedChallenge) TableName() string {
	return "completed_challenges"
}
