package services

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CyberLabs-Edu/labs-service/internal/models"
	"github.com/CyberLabs-Edu/labs-service/internal/repositories"
	"github.com/CyberLabs-Edu/labs-service/internal/validator"
)

func submissionFiltersFor(userID string, labID uint) repositories.SubmissionFilters {
	return repositories.SubmissionFilters{UserID: &userID, LabID: &labID}
}

func newSubmissionTestStack(repo *MockLabsRepository) SubmissionService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	v := validator.New()

	progress := NewProgressService(repo, nil, logger, v, nil)
	statistics := NewStatisticsService(repo, nil, logger)
	profiles := NewProfileService(repo, nil, logger)

	return NewSubmissionService(repo, nil, logger, v, progress, statistics, profiles, nil)
}

func seedFlagLab(repo *MockLabsRepository, active bool) (*models.Lab, *models.Challenge, *models.Challenge) {
	lab := repo.AddLab(&models.Lab{
		Title:     "SQL Injection Basics",
		Slug:      "sql-injection-basics",
		Category:  models.CategoryWebSecurity,
		IsActive:  active,
		CreatedBy: "creator-1",
		Points:    100,
	})
	first := repo.AddChallenge(&models.Challenge{
		LabID:         lab.ID,
		Title:         "Bypass the login form",
		AnswerType:    models.AnswerFlag,
		CorrectAnswer: "FLAG{login_bypassed}",
		Points:        50,
		Order:         1,
	})
	second := repo.AddChallenge(&models.Challenge{
		LabID:         lab.ID,
		Title:         "Dump the users table",
		AnswerType:    models.AnswerFlag,
		CorrectAnswer: "FLAG{users_dumped}",
		Points:        50,
		Order:         2,
	})
	return lab, first, second
}

func TestSubmit_CorrectFlagsCompleteTheLab(t *testing.T) {
	repo := NewMockLabsRepository()
	service := newSubmissionTestStack(repo)
	lab, first, second := seedFlagLab(repo, true)
	ctx := context.Background()

	resp, err := service.Submit(ctx, first.ID, &SubmitAnswerRequest{
		Answer: strPtr("FLAG{login_bypassed}"),
	}, "user-1")
	require.NoError(t, err)
	assert.True(t, resp.IsNewAttempt)
	assert.Equal(t, models.SubmissionCorrect, resp.Outcome.Status)
	assert.Equal(t, 50, resp.Outcome.Score)
	assert.True(t, resp.Outcome.AutoGraded)
	require.NotNil(t, resp.Submission.GradedAt)

	locked, err := repo.Challenge().GetByID(ctx, nil, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, locked.Attempts)
	assert.Equal(t, 100.0, locked.SuccessRate)

	progress, err := repo.Progress().GetByUserAndLab(ctx, nil, "user-1", lab.ID)
	require.NoError(t, err)
	assert.True(t, progress.IsStarted)
	assert.False(t, progress.IsCompleted)
	assert.Equal(t, 50.0, progress.CompletionPercentage)
	assert.Equal(t, 50, progress.TotalScore)
	assert.Equal(t, 100, progress.MaxPossibleScore)
	assert.Len(t, progress.CompletedChallenges, 1)

	_, err = service.Submit(ctx, second.ID, &SubmitAnswerRequest{
		Answer: strPtr("FLAG{users_dumped}"),
	}, "user-1")
	require.NoError(t, err)

	progress, err = repo.Progress().GetByUserAndLab(ctx, nil, "user-1", lab.ID)
	require.NoError(t, err)
	assert.True(t, progress.IsCompleted)
	require.NotNil(t, progress.CompletedAt)
	assert.Equal(t, 100.0, progress.CompletionPercentage)
	assert.Equal(t, 100, progress.TotalScore)
	assert.Len(t, progress.CompletedChallenges, 2)
}

func TestSubmit_ResubmissionOverwritesWithoutNewAttempt(t *testing.T) {
	repo := NewMockLabsRepository()
	service := newSubmissionTestStack(repo)
	lab, first, _ := seedFlagLab(repo, true)
	ctx := context.Background()

	wrong, err := service.Submit(ctx, first.ID, &SubmitAnswerRequest{
		Answer: strPtr("FLAG{wrong_guess}"),
	}, "user-1")
	require.NoError(t, err)
	assert.True(t, wrong.IsNewAttempt)
	assert.Equal(t, models.SubmissionIncorrect, wrong.Outcome.Status)

	locked, err := repo.Challenge().GetByID(ctx, nil, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, locked.Attempts)
	assert.Equal(t, 0.0, locked.SuccessRate)

	right, err := service.Submit(ctx, first.ID, &SubmitAnswerRequest{
		Answer: strPtr("FLAG{login_bypassed}"),
	}, "user-1")
	require.NoError(t, err)
	assert.False(t, right.IsNewAttempt)
	assert.Equal(t, models.SubmissionCorrect, right.Outcome.Status)
	assert.Equal(t, wrong.Submission.ID, right.Submission.ID, "resubmission must overwrite the stored row")

	// One row, one attempt; only the success rate moved.
	locked, err = repo.Challenge().GetByID(ctx, nil, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, locked.Attempts)
	assert.Equal(t, 100.0, locked.SuccessRate)

	rows, total, err := repo.Submission().List(ctx, nil, submissionFiltersFor("user-1", lab.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, rows, 1)
	assert.Equal(t, models.SubmissionCorrect, rows[0].Status)

	progress, err := repo.Progress().GetByUserAndLab(ctx, nil, "user-1", lab.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, progress.CompletionPercentage)
	assert.Equal(t, 1, progress.AttemptCount)
}

func TestSubmit_InactiveLabIsRejected(t *testing.T) {
	repo := NewMockLabsRepository()
	service := newSubmissionTestStack(repo)
	lab, first, _ := seedFlagLab(repo, false)
	ctx := context.Background()

	_, err := service.Submit(ctx, first.ID, &SubmitAnswerRequest{
		Answer: strPtr("FLAG{login_bypassed}"),
	}, "user-1")
	assert.ErrorIs(t, err, ErrLabNotActive)

	// Nothing was recorded: no row, no counter movement, no progress.
	_, total, err := repo.Submission().List(ctx, nil, submissionFiltersFor("user-1", lab.ID))
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	locked, err := repo.Challenge().GetByID(ctx, nil, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, locked.Attempts)

	_, err = repo.Progress().GetByUserAndLab(ctx, nil, "user-1", lab.ID)
	assert.Error(t, err)
}

func TestSubmit_LabMismatchIsRejected(t *testing.T) {
	repo := NewMockLabsRepository()
	service := newSubmissionTestStack(repo)
	_, first, _ := seedFlagLab(repo, true)
	ctx := context.Background()

	otherLabID := uint(9999)
	_, err := service.Submit(ctx, first.ID, &SubmitAnswerRequest{
		LabID:  &otherLabID,
		Answer: strPtr("FLAG{login_bypassed}"),
	}, "user-1")
	assert.ErrorIs(t, err, ErrLabMismatch)
}
