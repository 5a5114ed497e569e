package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CyberLabs-Edu/labs-service/internal/models"
)

func strPtr(s string) *string { return &s }

func validLabCreate() *models.LabCreateRequest {
	return &models.LabCreateRequest{
		Title:       "SQL Injection Basics",
		Description: "Learn to find and exploit SQL injection",
		Category:    models.CategoryWebSecurity,
		Difficulty:  models.DifficultyBeginner,
		Points:      100,
	}
}

func TestValidator_LabCreate(t *testing.T) {
	v := New()

	t.Run("valid request", func(t *testing.T) {
		assert.NoError(t, v.Validate(validLabCreate()))
	})

	t.Run("missing title", func(t *testing.T) {
		req := validLabCreate()
		req.Title = ""
		err := v.Validate(req)
		require.Error(t, err)

		verrs, ok := err.(ValidationErrors)
		require.True(t, ok)
		assert.Equal(t, "title", verrs[0].Field)
	})

	t.Run("unknown category", func(t *testing.T) {
		req := validLabCreate()
		req.Category = "knitting"
		assert.Error(t, v.Validate(req))
	})

	t.Run("unknown difficulty", func(t *testing.T) {
		req := validLabCreate()
		req.Difficulty = "impossible"
		assert.Error(t, v.Validate(req))
	})
}

func TestBusinessValidator_LabVMRules(t *testing.T) {
	bv := NewBusinessValidator()

	req := validLabCreate()
	req.RequiresVM = true
	errs := bv.ValidateLabCreate(req)
	require.True(t, errs.HasErrors(), "VM labs need an image")

	req.VMImage = strPtr("kali-2025.2")
	errs = bv.ValidateLabCreate(req)
	assert.False(t, errs.HasErrors())
}

func TestBusinessValidator_ChallengeAnswerRules(t *testing.T) {
	bv := NewBusinessValidator()

	base := func(answerType models.AnswerType) *models.ChallengeCreateRequest {
		return &models.ChallengeCreateRequest{
			Title:       "Find the flag",
			Description: "Locate the hidden flag in the web root",
			AnswerType:  answerType,
			Points:      25,
		}
	}

	t.Run("flag challenge requires reference answer", func(t *testing.T) {
		req := base(models.AnswerFlag)
		assert.True(t, bv.ValidateChallengeCreate(req).HasErrors())

		req.CorrectAnswer = strPtr("FLAG{found}")
		assert.False(t, bv.ValidateChallengeCreate(req).HasErrors())
	})

	t.Run("blank reference answer is rejected", func(t *testing.T) {
		req := base(models.AnswerText)
		req.CorrectAnswer = strPtr("   ")
		assert.True(t, bv.ValidateChallengeCreate(req).HasErrors())
	})

	t.Run("multiple choice needs at least two options", func(t *testing.T) {
		req := base(models.AnswerMultipleChoice)
		req.MultipleChoices = []byte(`[{"id":"a","text":"Only option"}]`)
		assert.True(t, bv.ValidateChallengeCreate(req).HasErrors())

		req.MultipleChoices = []byte(`[{"id":"a","text":"Yes"},{"id":"b","text":"No"}]`)
		assert.False(t, bv.ValidateChallengeCreate(req).HasErrors())
	})

	t.Run("code challenge needs no reference answer", func(t *testing.T) {
		req := base(models.AnswerCode)
		assert.False(t, bv.ValidateChallengeCreate(req).HasErrors())
	})
}

func TestBusinessValidator_SubmissionPayload(t *testing.T) {
	bv := NewBusinessValidator()

	t.Run("empty payload rejected", func(t *testing.T) {
		errs := bv.ValidateSubmissionCreate(&models.SubmissionCreateRequest{})
		assert.True(t, errs.HasErrors())
	})

	t.Run("whitespace only payload rejected", func(t *testing.T) {
		errs := bv.ValidateSubmissionCreate(&models.SubmissionCreateRequest{
			Answer: strPtr("   "),
		})
		assert.True(t, errs.HasErrors())
	})

	t.Run("answer payload accepted", func(t *testing.T) {
		errs := bv.ValidateSubmissionCreate(&models.SubmissionCreateRequest{
			Answer: strPtr("admin' OR 1=1 --"),
		})
		assert.False(t, errs.HasErrors())
	})

	t.Run("code payload accepted", func(t *testing.T) {
		errs := bv.ValidateSubmissionCreate(&models.SubmissionCreateRequest{
			Code: strPtr("print('pwned')"),
		})
		assert.False(t, errs.HasErrors())
	})
}

func TestValidator_ReviewRatingRange(t *testing.T) {
	v := New()

	req := &models.ReviewCreateRequest{
		Rating:           6,
		DifficultyRating: 3,
		ContentQuality:   4,
		Usefulness:       5,
	}
	assert.Error(t, v.Validate(req), "ratings above 5 are invalid")

	req.Rating = 5
	assert.NoError(t, v.Validate(req))
}
