package models

import (
	"time"
)

// LabStatistics is the per-lab rollup. Every field is derived from labs,
// submissions, progress rows and reviews; the row is never authoritative and
// can be recomputed at any time.
type LabStatistics struct {
	ID    uint `json:"id" gorm:"primaryKey"`
	LabID uint `json:"lab_id" gorm:"not null;uniqueIndex"`

	TotalViews       int `json:"total_views" gorm:"default:0"`
	TotalStarts      int `json:"total_starts" gorm:"default:0"`
	TotalCompletions int `json:"total_completions" gorm:"default:0"`
	TotalSubmissions int `json:"total_submissions" gorm:"default:0"`

	AverageRating         float64 `json:"average_rating" gorm:"default:0"`
	AverageCompletionTime float64 `json:"average_completion_time" gorm:"default:0;comment:Seconds"`
	AverageScore          float64 `json:"average_score" gorm:"default:0"`

	CompletionRate float64 `json:"completion_rate" gorm:"default:0"`
	SuccessRate    float64 `json:"success_rate" gorm:"default:0"`
	DropoutRate    float64 `json:"dropout_rate" gorm:"default:0"`

	LastCalculated time.Time `json:"last_calculated" gorm:"autoUpdateTime"`

	// Relations
	Lab *Lab `json:"lab,omitempty" gorm:"foreignKey:LabID"`
}

func (LabStatistics) TableName() string {
	return "lab_statistics"
}
