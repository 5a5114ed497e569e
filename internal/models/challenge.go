package models

import (
	"time"

	"gorm.io/datatypes"
)

type AnswerType string

const (
	AnswerText           AnswerType = "text"
	AnswerCode           AnswerType = "code"
	AnswerFile           AnswerType = "file"
	AnswerFlag           AnswerType = "flag"
	AnswerMultipleChoice AnswerType = "multiple_choice"
	AnswerCodeOutput     AnswerType = "code_output"
)

// AutoGradable reports whether submissions of this answer type are compared
// against the stored correct answer automatically. Every other type stays
// pending until an instructor reviews it.
func (t AnswerType) AutoGradable() bool {
	return t == AnswerText || t == AnswerFlag
}

type ChallengeLevel string

const (
	LevelEasy   ChallengeLevel = "easy"
	LevelMedium ChallengeLevel = "medium"
	LevelHard   ChallengeLevel = "hard"
)

type Challenge struct {
	ID           uint    `json:"id" gorm:"primaryKey"`
	LabID        uint    `json:"lab_id" gorm:"not null;index;uniqueIndex:idx_lab_order,priority:1"`
	Title        string  `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description  string  `json:"description" gorm:"type:text" validate:"required"`
	Instructions *string `json:"instructions" gorm:"type:text"`
	Hint         *string `json:"hint" gorm:"type:text"`
	SolutionHint *string `json:"solution_hint" gorm:"type:text"`

	AnswerType AnswerType     `json:"answer_type" gorm:"not null;size:20" validate:"required,oneof=text code file flag multiple_choice code_output"`
	Level      ChallengeLevel `json:"level" gorm:"default:easy;size:20" validate:"omitempty,oneof=easy medium hard"`

	// Grading material. CorrectAnswer is only consulted for auto-gradable
	// types; the rest are kept for instructor review.
	CorrectAnswer   string         `json:"-" gorm:"type:text;not null"`
	CorrectCode     *string        `json:"-" gorm:"type:text"`
	ExpectedOutput  *string        `json:"-" gorm:"type:text"`
	MultipleChoices datatypes.JSON `json:"multiple_choices,omitempty" gorm:"type:jsonb"`

	Points int `json:"points" gorm:"default:10" validate:"min=0"`
	Order  int `json:"order" gorm:"not null;default:0;uniqueIndex:idx_lab_order,priority:2" validate:"min=0"`

	// Attached resources
	StarterCodeURL *string `json:"starter_code_url" gorm:"size:500"`
	TestCasesURL   *string `json:"test_cases_url" gorm:"size:500"`
	AttachmentURL  *string `json:"attachment_url" gorm:"size:500"`

	// Denormalized counters (see submission recording)
	Attempts    int     `json:"attempts" gorm:"default:0"`
	SuccessRate float64 `json:"success_rate" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Lab         *Lab         `json:"lab,omitempty" gorm:"foreignKey:LabID"`
	Submissions []Submission `json:"-" gorm:"foreignKey:ChallengeID;constraint:OnDelete:CASCADE"`
}

// MultipleChoiceOption is the element schema stored in MultipleChoices.
type MultipleChoiceOption struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

func (Challenge) TableName() string {
	return "challenges"
}
