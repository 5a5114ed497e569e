package services

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CyberLabs-Edu/labs-service/internal/models"
	"github.com/CyberLabs-Edu/labs-service/internal/validator"
)

func newProgressTestService(repo *MockLabsRepository) ProgressService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewProgressService(repo, nil, logger, validator.New(), nil)
}

func recordCorrectSubmission(t *testing.T, repo *MockLabsRepository, userID string, challenge *models.Challenge) {
	t.Helper()
	err := repo.Submission().Upsert(context.Background(), nil, &models.Submission{
		UserID:      userID,
		LabID:       challenge.LabID,
		ChallengeID: challenge.ID,
		Status:      models.SubmissionCorrect,
		Score:       challenge.Points,
		IsCorrect:   true,
	})
	require.NoError(t, err)
}

func TestRefreshProgress_IsIdempotent(t *testing.T) {
	repo := NewMockLabsRepository()
	service := newProgressTestService(repo)
	lab, first, second := seedFlagLab(repo, true)
	ctx := context.Background()

	recordCorrectSubmission(t, repo, "user-1", first)
	recordCorrectSubmission(t, repo, "user-1", second)

	once, err := service.RefreshProgress(ctx, "user-1", lab.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, once.CompletionPercentage)
	assert.Equal(t, 100, once.TotalScore)
	assert.True(t, once.IsCompleted)
	require.NotNil(t, once.CompletedAt)

	twice, err := service.RefreshProgress(ctx, "user-1", lab.ID)
	require.NoError(t, err)
	assert.Equal(t, once.CompletionPercentage, twice.CompletionPercentage)
	assert.Equal(t, once.TotalScore, twice.TotalScore)
	assert.Equal(t, once.MaxPossibleScore, twice.MaxPossibleScore)
	assert.Equal(t, once.AttemptCount, twice.AttemptCount)
	assert.True(t, twice.IsCompleted)
	require.NotNil(t, twice.CompletedAt)
	assert.True(t, twice.CompletedAt.Equal(*once.CompletedAt), "completed_at is written exactly once")
}

func TestRefreshProgress_LabWithoutChallenges(t *testing.T) {
	repo := NewMockLabsRepository()
	service := newProgressTestService(repo)
	lab := repo.AddLab(&models.Lab{
		Title:     "Empty Shell",
		Slug:      "empty-shell",
		Category:  models.CategoryNetworkSecurity,
		IsActive:  true,
		CreatedBy: "creator-1",
	})
	ctx := context.Background()

	progress, err := service.RefreshProgress(ctx, "user-1", lab.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, progress.CompletionPercentage)
	assert.False(t, progress.IsCompleted)
	assert.Nil(t, progress.CompletedAt)
}

func TestRefreshProgress_CompletionIsSticky(t *testing.T) {
	repo := NewMockLabsRepository()
	service := newProgressTestService(repo)
	lab := repo.AddLab(&models.Lab{
		Title:     "Packet Capture 101",
		Slug:      "packet-capture-101",
		Category:  models.CategoryNetworkSecurity,
		IsActive:  true,
		CreatedBy: "creator-1",
	})
	only := repo.AddChallenge(&models.Challenge{
		LabID:         lab.ID,
		Title:         "Find the beacon",
		AnswerType:    models.AnswerFlag,
		CorrectAnswer: "FLAG{beacon_found}",
		Points:        40,
		Order:         1,
	})
	ctx := context.Background()

	recordCorrectSubmission(t, repo, "user-1", only)

	completed, err := service.RefreshProgress(ctx, "user-1", lab.ID)
	require.NoError(t, err)
	require.True(t, completed.IsCompleted)
	require.NotNil(t, completed.CompletedAt)
	completedAt := *completed.CompletedAt

	// A challenge added after completion lowers the percentage but never
	// takes the completed flag back.
	repo.AddChallenge(&models.Challenge{
		LabID:         lab.ID,
		Title:         "Decode the payload",
		AnswerType:    models.AnswerFlag,
		CorrectAnswer: "FLAG{payload_decoded}",
		Points:        60,
		Order:         2,
	})

	after, err := service.RefreshProgress(ctx, "user-1", lab.ID)
	require.NoError(t, err)
	assert.Equal(t, 50.0, after.CompletionPercentage)
	assert.True(t, after.IsCompleted)
	require.NotNil(t, after.CompletedAt)
	assert.True(t, after.CompletedAt.Equal(completedAt))
}

func TestRefreshProgress_SubmissionImpliesStarted(t *testing.T) {
	repo := NewMockLabsRepository()
	service := newProgressTestService(repo)
	lab, first, _ := seedFlagLab(repo, true)
	ctx := context.Background()

	recordCorrectSubmission(t, repo, "user-1", first)

	progress, err := service.RefreshProgress(ctx, "user-1", lab.ID)
	require.NoError(t, err)
	assert.True(t, progress.IsStarted)
	require.NotNil(t, progress.StartedAt)
}
