package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CyberLabs-Edu/labs-service/internal/models"
)

func newStatisticsTestService(repo *MockLabsRepository) StatisticsService {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	return NewStatisticsService(repo, nil, logger)
}

func TestRefreshLabStatistics_LabWithoutActivity(t *testing.T) {
	repo := NewMockLabsRepository()
	service := newStatisticsTestService(repo)
	lab := repo.AddLab(&models.Lab{
		Title:     "Fresh Lab",
		Slug:      "fresh-lab",
		Category:  models.CategoryCryptography,
		IsActive:  true,
		CreatedBy: "creator-1",
	})
	ctx := context.Background()

	// Zero starts must not divide; every rate stays at zero.
	stats, err := service.RefreshLabStatistics(ctx, lab.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.TotalStarts)
	assert.Equal(t, 0, stats.TotalCompletions)
	assert.Equal(t, 0, stats.TotalSubmissions)
	assert.Equal(t, 0.0, stats.CompletionRate)
	assert.Equal(t, 0.0, stats.DropoutRate)
	assert.Equal(t, 0.0, stats.AverageScore)

	stored, err := repo.Statistics().GetByLab(ctx, nil, lab.ID)
	require.NoError(t, err)
	assert.Equal(t, lab.ID, stored.LabID)
}

func TestRefreshLabStatistics_ComputesRates(t *testing.T) {
	repo := NewMockLabsRepository()
	service := newStatisticsTestService(repo)
	lab, first, _ := seedFlagLab(repo, true)
	ctx := context.Background()

	// Two users started, one finished.
	now := time.Now()
	for _, user := range []string{"user-1", "user-2"} {
		progress, _, err := repo.Progress().GetOrCreate(ctx, nil, user, lab.ID)
		require.NoError(t, err)
		progress.IsStarted = true
		progress.StartedAt = &now
		if user == "user-1" {
			progress.IsCompleted = true
			progress.CompletedAt = &now
		}
		require.NoError(t, repo.Progress().Update(ctx, nil, progress))
	}

	require.NoError(t, repo.Submission().Upsert(ctx, nil, &models.Submission{
		UserID:      "user-1",
		LabID:       lab.ID,
		ChallengeID: first.ID,
		Status:      models.SubmissionCorrect,
		Score:       50,
		IsCorrect:   true,
	}))
	require.NoError(t, repo.Submission().Upsert(ctx, nil, &models.Submission{
		UserID:      "user-2",
		LabID:       lab.ID,
		ChallengeID: first.ID,
		Status:      models.SubmissionIncorrect,
		Score:       0,
	}))

	stats, err := service.RefreshLabStatistics(ctx, lab.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalStarts)
	assert.Equal(t, 1, stats.TotalCompletions)
	assert.Equal(t, 2, stats.TotalSubmissions)
	assert.Equal(t, 50.0, stats.CompletionRate)
	assert.Equal(t, 50.0, stats.DropoutRate)
	assert.Equal(t, 25.0, stats.AverageScore)

	// The denormalized lab counters follow the rollup.
	refreshed, err := repo.Lab().GetByID(ctx, nil, lab.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed.CompletionCount)
}
