package models

import (
	"time"

	"gorm.io/datatypes"
)

type SubmissionStatus string

const (
	SubmissionPending   SubmissionStatus = "pending"
	SubmissionCorrect   SubmissionStatus = "correct"
	SubmissionIncorrect SubmissionStatus = "incorrect"
	SubmissionPartial   SubmissionStatus = "partial"
	SubmissionTimeout   SubmissionStatus = "timeout"
	SubmissionError     SubmissionStatus = "error"
)

// Submission is one user's attempt at a challenge. Re-submitting overwrites
// the existing row; the composite unique index keeps the pair unique under
// concurrent requests.
type Submission struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	UserID      string `json:"user_id" gorm:"not null;size:255;uniqueIndex:idx_user_challenge,priority:1"`
	LabID       uint   `json:"lab_id" gorm:"not null;index"`
	ChallengeID uint   `json:"challenge_id" gorm:"not null;uniqueIndex:idx_user_challenge,priority:2"`

	// Payload; at least one of these is required
	SubmittedAnswer *string `json:"submitted_answer" gorm:"type:text"`
	SubmittedCode   *string `json:"submitted_code" gorm:"type:text"`
	FileURL         *string `json:"file_url" gorm:"size:500"`

	Status    SubmissionStatus `json:"status" gorm:"default:pending;index;size:20"`
	Score     int              `json:"score" gorm:"default:0"`
	IsCorrect bool             `json:"is_correct" gorm:"default:false"`

	// Execution details for code submissions
	ExecutionTime  *float64       `json:"execution_time"`
	CompletionTime *int           `json:"completion_time" gorm:"comment:Seconds from lab start to submission"`
	TestResults    datatypes.JSON `json:"test_results,omitempty" gorm:"type:jsonb"`
	Output         *string        `json:"output" gorm:"type:text"`
	Errors         *string        `json:"errors" gorm:"type:text"`

	// Manual review
	ReviewedBy  *string `json:"reviewed_by" gorm:"size:255"`
	ReviewNotes *string `json:"review_notes" gorm:"type:text"`
	ReviewScore *int    `json:"review_score"`

	SubmittedAt time.Time  `json:"submitted_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time  `json:"updated_at"`
	GradedAt    *time.Time `json:"graded_at"`
	ReviewedAt  *time.Time `json:"reviewed_at"`

	// Relations
	User      *User      `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Lab       *Lab       `json:"lab,omitempty" gorm:"foreignKey:LabID"`
	Challenge *Challenge `json:"challenge,omitempty" gorm:"foreignKey:ChallengeID"`
}

func (Submission) TableName() string {
	return "submissions"
}
