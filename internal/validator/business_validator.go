package validator

import (
	"encoding/json"
	"strings"

	"github.com/CyberLabs-Edu/labs-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// BusinessValidator handles business rule validation
type BusinessValidator struct {
	validate *validator.Validate
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()
	registerCustomRules(validate)

	return &BusinessValidator{validate: validate}
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	err := bv.validate.Struct(s)
	if err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateLabCreate validates lab creation business rules
func (bv *BusinessValidator) ValidateLabCreate(req *models.LabCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if req.RequiresVM && isBlank(req.VMImage) {
		errors = append(errors, ValidationError{
			Field:   "vm_image",
			Message: "is required when the lab needs a virtual machine",
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateLabUpdate validates lab update business rules
func (bv *BusinessValidator) ValidateLabUpdate(req *models.LabUpdateRequest, existing *models.Lab) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if req.RequiresVM != nil && *req.RequiresVM {
		image := existing.VMImage
		if req.VMImage != nil {
			image = req.VMImage
		}
		if isBlank(image) {
			errors = append(errors, ValidationError{
				Field:   "vm_image",
				Message: "is required when the lab needs a virtual machine",
				Rule:    "business_logic",
			})
		}
	}

	return errors
}

// ValidateChallengeCreate validates challenge creation business rules
func (bv *BusinessValidator) ValidateChallengeCreate(req *models.ChallengeCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)
	errors = append(errors, bv.validateChallengeAnswerRules(req.AnswerType, req.CorrectAnswer, req.MultipleChoices)...)

	return errors
}

// validateChallengeAnswerRules checks that the answer configuration matches the
// answer type. Auto-graded types need a reference answer; multiple choice needs
// a choice list with at least two options.
func (bv *BusinessValidator) validateChallengeAnswerRules(answerType models.AnswerType, correctAnswer *string, choices json.RawMessage) ValidationErrors {
	var errors ValidationErrors

	if answerType.AutoGradable() {
		if correctAnswer == nil || strings.TrimSpace(*correctAnswer) == "" {
			errors = append(errors, ValidationError{
				Field:   "correct_answer",
				Message: "is required for auto-graded answer types",
				Value:   answerType,
				Rule:    "business_logic",
			})
		}
	}

	if answerType == models.AnswerMultipleChoice {
		var options []models.MultipleChoiceOption
		if len(choices) == 0 || json.Unmarshal(choices, &options) != nil || len(options) < 2 {
			errors = append(errors, ValidationError{
				Field:   "multiple_choices",
				Message: "must contain at least two options",
				Rule:    "business_logic",
			})
		}
	}

	return errors
}

// ValidateSubmissionCreate validates a submission payload
func (bv *BusinessValidator) ValidateSubmissionCreate(req *models.SubmissionCreateRequest) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(req)...)

	if isBlank(req.Answer) && isBlank(req.Code) && isBlank(req.FileURL) {
		errors = append(errors, ValidationError{
			Field:   "answer",
			Message: "at least one of answer, code or file_url must be provided",
			Rule:    "business_logic",
		})
	}

	return errors
}

// ValidateReviewCreate validates review creation business rules
func (bv *BusinessValidator) ValidateReviewCreate(req *models.ReviewCreateRequest) ValidationErrors {
	return bv.Validate(req)
}

func isBlank(s *string) bool {
	return s == nil || strings.TrimSpace(*s) == ""
}

// registerCustomRules registers the custom validation tags shared by the
// struct validator and the business validator.
func registerCustomRules(validate *validator.Validate) {
	validate.RegisterValidation("lab_category", func(fl validator.FieldLevel) bool {
		category := models.LabCategory(fl.Field().String())
		for _, valid := range models.ValidLabCategories() {
			if category == valid {
				return true
			}
		}
		return false
	})

	validate.RegisterValidation("lab_difficulty", func(fl validator.FieldLevel) bool {
		difficulty := models.LabDifficulty(fl.Field().String())
		switch difficulty {
		case models.DifficultyBeginner, models.DifficultyIntermediate, models.DifficultyAdvanced, models.DifficultyExpert:
			return true
		}
		return false
	})

	validate.RegisterValidation("answer_type", func(fl validator.FieldLevel) bool {
		answerType := models.AnswerType(fl.Field().String())
		switch answerType {
		case models.AnswerText, models.AnswerCode, models.AnswerFile, models.AnswerFlag, models.AnswerMultipleChoice, models.AnswerCodeOutput:
			return true
		}
		return false
	})

	validate.RegisterValidation("challenge_level", func(fl validator.FieldLevel) bool {
		level := models.ChallengeLevel(fl.Field().String())
		switch level {
		case models.LevelEasy, models.LevelMedium, models.LevelHard:
			return true
		}
		return false
	})

	validate.RegisterValidation("rating_range", func(fl validator.FieldLevel) bool {
		rating := fl.Field().Int()
		return rating >= 1 && rating <= 5
	})

	// Lab title validation (1-200 characters after trimming)
	validate.RegisterValidation("lab_title", func(fl validator.FieldLevel) bool {
		title := strings.TrimSpace(fl.Field().String())
		return len(title) >= 1 && len(title) <= 200
	})
}
