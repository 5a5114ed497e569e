package models

import (
	"encoding/json"
	"time"
)

type LabCreateRequest struct {
	Title              string          `json:"title" validate:"required,min=1,max=200"`
	Description        string          `json:"description" validate:"required"`
	Overview           *string         `json:"overview"`
	LearningObjectives *string         `json:"learning_objectives"`
	Category           LabCategory     `json:"category" validate:"required,lab_category"`
	Difficulty         LabDifficulty   `json:"difficulty" validate:"required,oneof=beginner intermediate advanced expert"`
	Points             int             `json:"points" validate:"min=0,max=10000"`
	EstimatedTime      int             `json:"estimated_time" validate:"min=0,max=10080"`
	IsPremium          bool            `json:"is_premium"`
	IsActive           *bool           `json:"is_active"`
	RequiresVM         bool            `json:"requires_vm"`
	VMImage            *string         `json:"vm_image" validate:"omitempty,max=200"`
	ThumbnailURL       *string         `json:"thumbnail_url" validate:"omitempty,max=500"`
	LabGuideURL        *string         `json:"lab_guide_url" validate:"omitempty,max=500"`
	StarterFileURL     *string         `json:"starter_file_url" validate:"omitempty,max=500"`
}

type LabUpdateRequest struct {
	Title              *string        `json:"title" validate:"omitempty,min=1,max=200"`
	Description        *string        `json:"description" validate:"omitempty,min=1"`
	Overview           *string        `json:"overview"`
	LearningObjectives *string        `json:"learning_objectives"`
	Category           *LabCategory   `json:"category" validate:"omitempty,lab_category"`
	Difficulty         *LabDifficulty `json:"difficulty" validate:"omitempty,oneof=beginner intermediate advanced expert"`
	Points             *int           `json:"points" validate:"omitempty,min=0,max=10000"`
	EstimatedTime      *int           `json:"estimated_time" validate:"omitempty,min=0,max=10080"`
	IsPremium          *bool          `json:"is_premium"`
	IsActive           *bool          `json:"is_active"`
	RequiresVM         *bool          `json:"requires_vm"`
	VMImage            *string        `json:"vm_image" validate:"omitempty,max=200"`
	ThumbnailURL       *string        `json:"thumbnail_url" validate:"omitempty,max=500"`
	LabGuideURL        *string        `json:"lab_guide_url" validate:"omitempty,max=500"`
	StarterFileURL     *string        `json:"starter_file_url" validate:"omitempty,max=500"`
}

type ChallengeCreateRequest struct {
	Title           string          `json:"title" validate:"required,min=1,max=200"`
	Description     string          `json:"description" validate:"required"`
	Instructions    *string         `json:"instructions"`
	Hint            *string         `json:"hint"`
	SolutionHint    *string         `json:"solution_hint"`
	AnswerType      AnswerType      `json:"answer_type" validate:"required,answer_type"`
	Level           ChallengeLevel  `json:"level" validate:"omitempty,oneof=easy medium hard"`
	CorrectAnswer   *string         `json:"correct_answer"`
	CorrectCode     *string         `json:"correct_code"`
	ExpectedOutput  *string         `json:"expected_output"`
	MultipleChoices json.RawMessage `json:"multiple_choices"`
	Points          int             `json:"points" validate:"min=0,max=1000"`
	Order           *int            `json:"order" validate:"omitempty,min=0"`
	StarterCodeURL  *string         `json:"starter_code_url" validate:"omitempty,max=500"`
	TestCasesURL    *string         `json:"test_cases_url" validate:"omitempty,max=500"`
	AttachmentURL   *string         `json:"attachment_url" validate:"omitempty,max=500"`
}

type ChallengeUpdateRequest struct {
	Title           *string         `json:"title" validate:"omitempty,min=1,max=200"`
	Description     *string         `json:"description" validate:"omitempty,min=1"`
	Instructions    *string         `json:"instructions"`
	Hint            *string         `json:"hint"`
	SolutionHint    *string         `json:"solution_hint"`
	AnswerType      *AnswerType     `json:"answer_type" validate:"omitempty,answer_type"`
	Level           *ChallengeLevel `json:"level" validate:"omitempty,oneof=easy medium hard"`
	CorrectAnswer   *string         `json:"correct_answer" validate:"omitempty,min=1"`
	CorrectCode     *string         `json:"correct_code"`
	ExpectedOutput  *string         `json:"expected_output"`
	MultipleChoices json.RawMessage `json:"multiple_choices"`
	Points          *int            `json:"points" validate:"omitempty,min=0,max=1000"`
	Order           *int            `json:"order" validate:"omitempty,min=0"`
	StarterCodeURL  *string         `json:"starter_code_url" validate:"omitempty,max=500"`
	TestCasesURL    *string         `json:"test_cases_url" validate:"omitempty,max=500"`
	AttachmentURL   *string         `json:"attachment_url" validate:"omitempty,max=500"`
}

// SubmissionCreateRequest carries a user's answer for one challenge. At
// least one of Answer, Code, FileURL must be present; the service rejects
// empty payloads.
type SubmissionCreateRequest struct {
	LabID          *uint   `json:"lab_id"`
	Answer         *string `json:"answer"`
	Code           *string `json:"code"`
	FileURL        *string `json:"file_url" validate:"omitempty,max=500"`
	CompletionTime *int    `json:"completion_time" validate:"omitempty,min=0"`
}

type SubmissionReviewRequest struct {
	Status      SubmissionStatus `json:"status" validate:"required,oneof=correct incorrect partial"`
	Score       *int             `json:"score" validate:"omitempty,min=0"`
	ReviewNotes *string          `json:"review_notes" validate:"omitempty,max=2000"`
}

type ReviewCreateRequest struct {
	Rating           int     `json:"rating" validate:"required,rating_range"`
	Comment          *string `json:"comment" validate:"omitempty,max=2000"`
	DifficultyRating int     `json:"difficulty_rating" validate:"required,rating_range"`
	ContentQuality   int     `json:"content_quality" validate:"required,rating_range"`
	Usefulness       int     `json:"usefulness" validate:"required,rating_range"`
}

type ReviewUpdateRequest struct {
	Rating           *int    `json:"rating" validate:"omitempty,rating_range"`
	Comment          *string `json:"comment" validate:"omitempty,max=2000"`
	DifficultyRating *int    `json:"difficulty_rating" validate:"omitempty,rating_range"`
	ContentQuality   *int    `json:"content_quality" validate:"omitempty,rating_range"`
	Usefulness       *int    `json:"usefulness" validate:"omitempty,rating_range"`
}

// ===== PAGINATION & FILTERING =====

type ListLabsParams struct {
	Page       int           `json:"page" validate:"min=0"`
	Size       int           `json:"size" validate:"min=1,max=100"`
	Category   LabCategory   `json:"category"`
	Difficulty LabDifficulty `json:"difficulty"`
	Search     string        `json:"search"`
	IsActive   *bool         `json:"is_active"`
	IsPremium  *bool         `json:"is_premium"`
	CreatedBy  *string       `json:"created_by"`
	SortBy     string        `json:"sort_by"`
	SortDir    string        `json:"sort_dir" validate:"omitempty,oneof=asc desc"`
}

type ListSubmissionsParams struct {
	Page        int              `json:"page" validate:"min=0"`
	Size        int              `json:"size" validate:"min=1,max=100"`
	UserID      *string          `json:"user_id"`
	LabID       *uint            `json:"lab_id"`
	ChallengeID *uint            `json:"challenge_id"`
	Status      SubmissionStatus `json:"status"`
	SortBy      string           `json:"sort_by"`
	SortDir     string           `json:"sort_dir" validate:"omitempty,oneof=asc desc"`
}

type ListNotificationsParams struct {
	Page     int   `json:"page" validate:"min=0"`
	Size     int   `json:"size" validate:"min=1,max=100"`
	OnlyUnread bool `json:"only_unread"`
}

type PaginatedResponse struct {
	Content          interface{} `json:"content"`
	TotalElements    int64       `json:"total_elements"`
	TotalPages       int         `json:"total_pages"`
	Size             int         `json:"size"`
	Page             int         `json:"page"`
	First            bool        `json:"first"`
	Last             bool        `json:"last"`
	NumberOfElements int         `json:"number_of_elements"`
	Empty            bool        `json:"empty"`
}

// ===== CATALOG & LEADERBOARD DTOs =====

type CategoryCount struct {
	Category LabCategory `json:"category"`
	Count    int64       `json:"count"`
}

type LeaderboardEntry struct {
	Rank               int    `json:"rank"`
	UserID             string `json:"user_id"`
	FullName           string `json:"full_name"`
	TotalPoints        int    `json:"total_points"`
	CompletedLabsCount int    `json:"completed_labs_count"`
}

// ===== ERROR RESPONSES =====

type ValidationErrorResponse struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   string `json:"value"`
	Code    string `json:"code"`
}

type ErrorResponse struct {
	Error            string                    `json:"error"`
	Message          string                    `json:"message"`
	Code             string                    `json:"code"`
	Details          interface{}               `json:"details,omitempty"`
	Timestamp        time.Time                 `json:"timestamp"`
	Path             string                    `json:"path"`
	ValidationErrors []ValidationErrorResponse `json:"validation_errors,omitempty"`
}

type SuccessResponse struct {
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}
