package models

import (
	"time"
)

type NotificationType string

const (
	NotificationInfo        NotificationType = "info"
	NotificationSuccess     NotificationType = "success"
	NotificationWarning     NotificationType = "warning"
	NotificationError       NotificationType = "error"
	NotificationAchievement NotificationType = "achievement"
)

type Notification struct {
	ID      uint             `json:"id" gorm:"primaryKey"`
	UserID  string           `json:"user_id" gorm:"not null;index;size:255"`
	Title   string           `json:"title" gorm:"not null;size:200"`
	Message string           `json:"message" gorm:"type:text"`
	Type    NotificationType `json:"type" gorm:"default:info;size:20"`
	IsRead  bool             `json:"is_read" gorm:"default:false;index"`
	Link    *string          `json:"link" gorm:"size:255"`

	RelatedLabID       *uint `json:"related_lab_id"`
	RelatedChallengeID *uint `json:"related_challenge_id"`

	CreatedAt time.Time `json:"created_at"`

	// Relations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (Notification) TableName() string {
	return "notifications"
}
