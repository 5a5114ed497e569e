package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/CyberLabs-Edu/labs-service/internal/events"
	"github.com/CyberLabs-Edu/labs-service/internal/models"
	"github.com/CyberLabs-Edu/labs-service/internal/repositories"
	"github.com/CyberLabs-Edu/labs-service/internal/validator"
	"gorm.io/gorm"
)

type progressService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator

	notifications NotificationService
}

func NewProgressService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, notifications NotificationService) ProgressService {
	return &progressService{
		repo:          repo,
		db:            db,
		logger:        logger,
		validator:     validator,
		notifications: notifications,
	}
}

// StartLab creates the user's progress row for the lab on first call and
// marks it started. Calling it again is a no-op returning the existing row.
func (s *progressService) StartLab(ctx context.Context, labID uint, userID string) (*ProgressResponse, error) {
	s.logger.Info("Starting lab", "lab_id", labID, "user_id", userID)

	lab, err := s.repo.Lab().GetByID(ctx, nil, labID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLabNotFound
		}
		return nil, fmt.Errorf("failed to get lab: %w", err)
	}
	if !lab.IsActive {
		return nil, ErrLabNotActive
	}

	progress, created, err := s.repo.Progress().GetOrCreate(ctx, nil, userID, labID)
	if err != nil {
		return nil, fmt.Errorf("failed to create progress: %w", err)
	}

	if !progress.IsStarted {
		now := time.Now()
		progress.IsStarted = true
		progress.StartedAt = &now
		if err := s.repo.Progress().Update(ctx, nil, progress); err != nil {
			return nil, fmt.Errorf("failed to mark lab started: %w", err)
		}
	}

	if created {
		s.logger.Info("Lab started", "lab_id", labID, "user_id", userID)
		s.notifyStarted(ctx, lab, userID)
	}

	return s.buildProgressResponse(ctx, progress), nil
}

// notifyStarted welcomes the user to the lab on their first start. Best
// effort; a lost notification never fails the start.
func (s *progressService) notifyStarted(ctx context.Context, lab *models.Lab, userID string) {
	if s.notifications == nil {
		return
	}

	if _, err := s.notifications.Notify(ctx, userID, &NotificationRequest{
		Type:         models.NotificationInfo,
		Title:        fmt.Sprintf("Lab started: %s", lab.Title),
		Message:      fmt.Sprintf("You started %q. Solve its challenges to earn up to %d points.", lab.Title, lab.Points),
		RelatedLabID: &lab.ID,
		EventType:    events.EventLabStarted,
	}); err != nil {
		s.logger.Warn("Failed to send lab started notification", "lab_id", lab.ID, "user_id", userID, "error", err)
	}
}

func (s *progressService) GetProgress(ctx context.Context, labID uint, userID string) (*ProgressResponse, error) {
	progress, err := s.repo.Progress().GetByUserAndLab(ctx, nil, userID, labID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrProgressNotFound
		}
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}

	return s.buildProgressResponse(ctx, progress), nil
}

func (s *progressService) GetUserProgress(ctx context.Context, userID string, filters repositories.ProgressFilters) (*ProgressListResponse, error) {
	filters.UserID = &userID

	rows, total, err := s.repo.Progress().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}

	responses := make([]*ProgressResponse, 0, len(rows))
	for _, row := range rows {
		responses = append(responses, s.buildProgressResponse(ctx, row))
	}

	return &ProgressListResponse{
		Progress: responses,
		Total:    total,
	}, nil
}

// RefreshProgress recomputes the user's lab progress from the current set
// of correct submissions. The completed flag is one-way: once a lab is
// completed it stays completed even if challenges are added later, and
// completed_at is written exactly once.
func (s *progressService) RefreshProgress(ctx context.Context, userID string, labID uint) (*models.UserLabProgress, error) {
	var progress *models.UserLabProgress

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		totals, err := txRepo.Submission().GetProgressTotals(ctx, nil, userID, labID)
		if err != nil {
			return fmt.Errorf("failed to read progress totals: %w", err)
		}

		var created bool
		progress, created, err = txRepo.Progress().GetOrCreate(ctx, nil, userID, labID)
		if err != nil {
			return fmt.Errorf("failed to get progress row: %w", err)
		}
		if created && len(totals.CompletedIDs) > 0 {
			// A submission implies the lab was started even if the start
			// endpoint was never called.
			now := time.Now()
			progress.IsStarted = true
			progress.StartedAt = &now
		}

		percentage := 0.0
		if totals.TotalChallenges > 0 {
			percentage = 100.0 * float64(totals.CompletedCount) / float64(totals.TotalChallenges)
		}

		progress.CompletionPercentage = percentage
		progress.TotalScore = totals.TotalScore
		progress.MaxPossibleScore = totals.MaxPossible

		if !progress.IsCompleted && totals.TotalChallenges > 0 && totals.CompletedCount == totals.TotalChallenges {
			now := time.Now()
			progress.IsCompleted = true
			progress.CompletedAt = &now
		}

		if _, total, err := txRepo.Submission().List(ctx, nil, repositories.SubmissionFilters{
			UserID: &userID,
			LabID:  &labID,
			Limit:  1,
		}); err == nil {
			progress.AttemptCount = int(total)
		}

		if err := txRepo.Progress().Update(ctx, nil, progress); err != nil {
			return fmt.Errorf("failed to update progress: %w", err)
		}

		return txRepo.Progress().ReplaceCompletedChallenges(ctx, nil, progress.ID, totals.CompletedIDs)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("Progress refreshed",
		"user_id", userID,
		"lab_id", labID,
		"completion", progress.CompletionPercentage,
		"completed", progress.IsCompleted)

	return progress, nil
}

func (s *progressService) buildProgressResponse(ctx context.Context, progress *models.UserLabProgress) *ProgressResponse {
	resp := &ProgressResponse{
		UserLabProgress:       progress,
		CompletedChallengeIDs: make([]uint, 0, len(progress.CompletedChallenges)),
	}
	for _, cc := range progress.CompletedChallenges {
		resp.CompletedChallengeIDs = append(resp.CompletedChallengeIDs, cc.ChallengeID)
	}
	return resp
}
