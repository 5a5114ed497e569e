package models

import (
	"time"
)

// LabReview is one user's rating of a lab, unique per (user, lab).
type LabReview struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"not null;size:255;uniqueIndex:idx_review_user_lab,priority:1"`
	LabID  uint   `json:"lab_id" gorm:"not null;uniqueIndex:idx_review_user_lab,priority:2"`

	Rating  int     `json:"rating" gorm:"not null" validate:"required,min=1,max=5"`
	Comment *string `json:"comment" gorm:"type:text"`

	// Sub-ratings
	DifficultyRating int `json:"difficulty_rating" gorm:"not null" validate:"required,min=1,max=5"`
	ContentQuality   int `json:"content_quality" gorm:"not null" validate:"required,min=1,max=5"`
	Usefulness       int `json:"usefulness" gorm:"not null" validate:"required,min=1,max=5"`

	IsApproved   bool `json:"is_approved" gorm:"default:true;index"`
	HelpfulCount int  `json:"helpful_count" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Lab  *Lab  `json:"lab,omitempty" gorm:"foreignKey:LabID"`
}

func (LabReview) TableName() string {
	return "lab_reviews"
}
