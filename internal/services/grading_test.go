package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/CyberLabs-Edu/labs-service/internal/models"
)

func strPtr(s string) *string { return &s }

func TestGrade_AutoGradableTypes(t *testing.T) {
	challenge := &models.Challenge{
		AnswerType:    models.AnswerFlag,
		CorrectAnswer: "FLAG{s3cr3t}",
		Points:        50,
	}

	tests := []struct {
		name       string
		answer     *string
		wantStatus models.SubmissionStatus
		wantScore  int
	}{
		{
			name:       "exact match",
			answer:     strPtr("FLAG{s3cr3t}"),
			wantStatus: models.SubmissionCorrect,
			wantScore:  50,
		},
		{
			name:       "surrounding whitespace is trimmed",
			answer:     strPtr("  FLAG{s3cr3t}\n"),
			wantStatus: models.SubmissionCorrect,
			wantScore:  50,
		},
		{
			name:       "wrong answer",
			answer:     strPtr("FLAG{wrong}"),
			wantStatus: models.SubmissionIncorrect,
			wantScore:  0,
		},
		{
			name:       "case matters",
			answer:     strPtr("flag{s3cr3t}"),
			wantStatus: models.SubmissionIncorrect,
			wantScore:  0,
		},
		{
			name:       "empty answer is incorrect",
			answer:     strPtr("   "),
			wantStatus: models.SubmissionIncorrect,
			wantScore:  0,
		},
		{
			name:       "nil answer is incorrect",
			answer:     nil,
			wantStatus: models.SubmissionIncorrect,
			wantScore:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Grade(challenge, &SubmitAnswerRequest{Answer: tt.answer})

			assert.Equal(t, tt.wantStatus, outcome.Status)
			assert.Equal(t, tt.wantScore, outcome.Score)
			assert.True(t, outcome.AutoGraded)
			assert.Equal(t, tt.wantStatus == models.SubmissionCorrect, outcome.IsCorrect)
		})
	}
}

func TestGrade_ReferenceAnswerTrimmed(t *testing.T) {
	challenge := &models.Challenge{
		AnswerType:    models.AnswerText,
		CorrectAnswer: "  etc/passwd  ",
		Points:        10,
	}

	outcome := Grade(challenge, &SubmitAnswerRequest{Answer: strPtr("etc/passwd")})

	assert.Equal(t, models.SubmissionCorrect, outcome.Status)
	assert.Equal(t, 10, outcome.Score)
}

func TestGrade_ManualReviewTypes(t *testing.T) {
	for _, answerType := range []models.AnswerType{
		models.AnswerCode,
		models.AnswerFile,
		models.AnswerMultipleChoice,
		models.AnswerCodeOutput,
	} {
		t.Run(string(answerType), func(t *testing.T) {
			challenge := &models.Challenge{
				AnswerType:    answerType,
				CorrectAnswer: "reference",
				Points:        25,
			}

			outcome := Grade(challenge, &SubmitAnswerRequest{Answer: strPtr("reference")})

			assert.Equal(t, models.SubmissionPending, outcome.Status)
			assert.Zero(t, outcome.Score)
			assert.False(t, outcome.IsCorrect)
			assert.False(t, outcome.AutoGraded)
		})
	}
}

func TestGrade_MissingReferenceAnswerStaysPending(t *testing.T) {
	// A text challenge without a stored reference cannot be auto-graded
	challenge := &models.Challenge{
		AnswerType:    models.AnswerText,
		CorrectAnswer: "   ",
		Points:        10,
	}

	outcome := Grade(challenge, &SubmitAnswerRequest{Answer: strPtr("anything")})

	assert.Equal(t, models.SubmissionPending, outcome.Status)
	assert.False(t, outcome.AutoGraded)
}
