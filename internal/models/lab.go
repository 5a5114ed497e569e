package models

import (
	"time"

	"gorm.io/gorm"
)

type LabCategory string

const (
	CategoryWebSecurity        LabCategory = "web_security"
	CategoryNetworkSecurity    LabCategory = "network_security"
	CategoryCryptography       LabCategory = "cryptography"
	CategoryDigitalForensics   LabCategory = "digital_forensics"
	CategoryReverseEngineering LabCategory = "reverse_engineering"
	CategoryMalwareAnalysis    LabCategory = "malware_analysis"
	CategorySocialEngineering  LabCategory = "social_engineering"
	CategoryIoTSecurity        LabCategory = "iot_security"
)

type LabDifficulty string

const (
	DifficultyBeginner     LabDifficulty = "beginner"
	DifficultyIntermediate LabDifficulty = "intermediate"
	DifficultyAdvanced     LabDifficulty = "advanced"
	DifficultyExpert       LabDifficulty = "expert"
)

func ValidLabCategories() []LabCategory {
	return []LabCategory{
		CategoryWebSecurity, CategoryNetworkSecurity, CategoryCryptography,
		CategoryDigitalForensics, CategoryReverseEngineering, CategoryMalwareAnalysis,
		CategorySocialEngineering, CategoryIoTSecurity,
	}
}

type Lab struct {
	ID                 uint    `json:"id" gorm:"primaryKey"`
	Title              string  `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	Slug               string  `json:"slug" gorm:"uniqueIndex;not null;size:200"`
	Description        string  `json:"description" gorm:"type:text" validate:"required"`
	Overview           *string `json:"overview" gorm:"type:text"`
	LearningObjectives *string `json:"learning_objectives" gorm:"type:text"`

	Category   LabCategory   `json:"category" gorm:"not null;index;size:50" validate:"required"`
	Difficulty LabDifficulty `json:"difficulty" gorm:"not null;index;size:20" validate:"required,oneof=beginner intermediate advanced expert"`

	Points        int `json:"points" gorm:"default:100" validate:"min=0"`
	EstimatedTime int `json:"estimated_time" gorm:"default:60;comment:Estimated time in minutes" validate:"min=0"`

	// Attached resources
	ThumbnailURL   *string `json:"thumbnail_url" gorm:"size:500"`
	LabGuideURL    *string `json:"lab_guide_url" gorm:"size:500"`
	StarterFileURL *string `json:"starter_file_url" gorm:"size:500"`

	IsPremium  bool    `json:"is_premium" gorm:"default:false"`
	IsActive   bool    `json:"is_active" gorm:"default:true;index"`
	RequiresVM bool    `json:"requires_vm" gorm:"default:false"`
	VMImage    *string `json:"vm_image" gorm:"size:200"`

	// Denormalized counters, maintained by explicit updates
	ViewCount       int     `json:"view_count" gorm:"default:0"`
	CompletionCount int     `json:"completion_count" gorm:"default:0"`
	AverageScore    float64 `json:"average_score" gorm:"default:0"`

	// Metadata
	CreatedBy   string         `json:"created_by" gorm:"not null;index;size:255"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	PublishedAt *time.Time     `json:"published_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Challenges []Challenge    `json:"challenges,omitempty" gorm:"foreignKey:LabID;constraint:OnDelete:CASCADE"`
	Reviews    []LabReview    `json:"reviews,omitempty" gorm:"foreignKey:LabID;constraint:OnDelete:CASCADE"`
	Statistics *LabStatistics `json:"statistics,omitempty" gorm:"foreignKey:LabID;constraint:OnDelete:CASCADE"`
	Creator    User           `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`

	// Computed fields (not stored)
	ChallengeCount int `json:"challenge_count" gorm:"-"`
}

func (Lab) TableName() string {
	return "labs"
}
