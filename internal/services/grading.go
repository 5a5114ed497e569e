package services

import (
	"strings"

	"github.com/CyberLabs-Edu/labs-service/internal/models"
)

// Grade evaluates a submission payload against a challenge.
//
// Text and flag answers are compared against the reference answer after
// trimming surrounding whitespace; a match awards the full challenge
// points. Every other answer type (code, file, multiple choice, code
// output) is left pending for manual review with a zero score.
func Grade(challenge *models.Challenge, req *SubmitAnswerRequest) GradeOutcome {
	expected := strings.TrimSpace(challenge.CorrectAnswer)
	if !challenge.AnswerType.AutoGradable() || expected == "" {
		return GradeOutcome{
			Status:     models.SubmissionPending,
			Score:      0,
			IsCorrect:  false,
			AutoGraded: false,
		}
	}

	submitted := ""
	if req.Answer != nil {
		submitted = strings.TrimSpace(*req.Answer)
	}

	if submitted != "" && submitted == expected {
		return GradeOutcome{
			Status:     models.SubmissionCorrect,
			Score:      challenge.Points,
			IsCorrect:  true,
			AutoGraded: true,
		}
	}

	return GradeOutcome{
		Status:     models.SubmissionIncorrect,
		Score:      0,
		IsCorrect:  false,
		AutoGraded: true,
	}
}
