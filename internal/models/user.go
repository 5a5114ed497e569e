package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string
type Role = UserRole // Alias for compatibility

const (
	RoleStudent    UserRole = "student"
	RoleInstructor UserRole = "instructor"
	RoleModerator  UserRole = "moderator"
	RoleAdmin      UserRole = "admin"
)

type User struct {
	ID       string   `json:"id" gorm:"primaryKey;size:255"`
	FullName string   `json:"full_name" gorm:"not null;size:100"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Role     UserRole `json:"role" gorm:"-"`

	// Profile info
	AvatarURL *string `json:"avatar_url" gorm:"size:500"`

	// Status
	EmailVerified bool `json:"email_verified" gorm:"default:false"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

// UserProfile carries derived totals recomputed from correct submissions on
// demand; it is not a source of truth.
type UserProfile struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"not null;size:255;uniqueIndex"`

	Bio       *string `json:"bio" gorm:"type:text"`
	AvatarURL *string `json:"avatar_url" gorm:"size:500"`

	// Derived totals
	TotalPoints        int `json:"total_points" gorm:"default:0"`
	Rank               int `json:"rank" gorm:"default:0"`
	CompletedLabsCount int `json:"completed_labs_count" gorm:"default:0"`
	StreakDays         int `json:"streak_days" gorm:"default:0"`

	LastActivity time.Time `json:"last_activity" gorm:"autoUpdateTime"`

	// Preferences
	IsPublic      bool `json:"is_public" gorm:"default:true"`
	ReceiveEmails bool `json:"receive_emails" gorm:"default:true"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (User) TableName() string {
	return "users"
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
