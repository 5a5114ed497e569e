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

type submissionService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator

	progressService   ProgressService
	statisticsService StatisticsService
	profileService    ProfileService
	notifications     NotificationService
}

func NewSubmissionService(
	repo repositories.Repository,
	db *gorm.DB,
	logger *slog.Logger,
	validator *validator.Validator,
	progressService ProgressService,
	statisticsService StatisticsService,
	profileService ProfileService,
	notifications NotificationService,
) SubmissionService {
	return &submissionService{
		repo:              repo,
		db:                db,
		logger:            logger,
		validator:         validator,
		progressService:   progressService,
		statisticsService: statisticsService,
		profileService:    profileService,
		notifications:     notifications,
	}
}

// Submit records the user's answer for a challenge. The per-challenge
// counters are updated under a row lock inside one transaction, so
// concurrent submissions for the same challenge serialize and the
// attempts count and success rate stay consistent with the stored rows.
func (s *submissionService) Submit(ctx context.Context, challengeID uint, req *SubmitAnswerRequest, userID string) (*SubmissionResponse, error) {
	s.logger.Info("Recording submission", "challenge_id", challengeID, "user_id", userID)

	if errors := s.validator.GetBusinessValidator().ValidateSubmissionCreate(req); len(errors) > 0 {
		return nil, errors
	}

	var (
		submission   *models.Submission
		outcome      GradeOutcome
		isNewAttempt bool
		labID        uint
	)

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		challenge, err := txRepo.Challenge().GetByIDForUpdate(ctx, nil, challengeID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrChallengeNotFound
			}
			return fmt.Errorf("failed to lock challenge: %w", err)
		}

		if req.LabID != nil && *req.LabID != challenge.LabID {
			return ErrLabMismatch
		}
		labID = challenge.LabID

		lab, err := txRepo.Lab().GetByID(ctx, nil, labID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrLabNotFound
			}
			return fmt.Errorf("failed to get lab: %w", err)
		}
		if !lab.IsActive {
			return ErrLabNotActive
		}

		prior, err := txRepo.Submission().GetByUserAndChallenge(ctx, nil, userID, challengeID)
		if err != nil && !repositories.IsNotFoundError(err) {
			return fmt.Errorf("failed to load prior submission: %w", err)
		}
		isNewAttempt = prior == nil || repositories.IsNotFoundError(err)

		outcome = Grade(challenge, req)

		submission = &models.Submission{
			UserID:          userID,
			LabID:           challenge.LabID,
			ChallengeID:     challengeID,
			SubmittedAnswer: req.Answer,
			SubmittedCode:   req.Code,
			FileURL:         req.FileURL,
			Status:          outcome.Status,
			Score:           outcome.Score,
			IsCorrect:       outcome.IsCorrect,
			CompletionTime:  req.CompletionTime,
		}
		if outcome.AutoGraded {
			now := time.Now()
			submission.GradedAt = &now
		}

		if err := txRepo.Submission().Upsert(ctx, nil, submission); err != nil {
			return fmt.Errorf("failed to store submission: %w", err)
		}

		// Attempts only grow on a user's first submission for the
		// challenge; overwrites keep the counter unchanged.
		attempts := challenge.Attempts
		if isNewAttempt {
			attempts++
		}

		correct, err := txRepo.Submission().CountCorrectByChallenge(ctx, nil, challengeID)
		if err != nil {
			return fmt.Errorf("failed to count correct submissions: %w", err)
		}

		successRate := 0.0
		if attempts > 0 {
			successRate = 100.0 * float64(correct) / float64(attempts)
		}

		if err := txRepo.Challenge().UpdateCounters(ctx, nil, challengeID, repositories.ChallengeCounters{
			Attempts:    attempts,
			SuccessRate: successRate,
		}); err != nil {
			return fmt.Errorf("failed to update challenge counters: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Submission recorded",
		"challenge_id", challengeID,
		"user_id", userID,
		"status", outcome.Status,
		"score", outcome.Score,
		"new_attempt", isNewAttempt)

	s.cascadeAfterSubmission(ctx, userID, labID, challengeID)
	if outcome.Status == models.SubmissionPending && !outcome.AutoGraded {
		s.notifyPendingReview(ctx, submission)
	}

	return &SubmissionResponse{
		Submission:   submission,
		IsNewAttempt: isNewAttempt,
		Outcome:      &outcome,
	}, nil
}

func (s *submissionService) GetByID(ctx context.Context, id uint, userID string) (*SubmissionResponse, error) {
	submission, err := s.repo.Submission().GetByIDWithDetails(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrSubmissionNotFound
		}
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}

	if submission.UserID != userID {
		allowed, err := s.canReview(ctx, submission, userID)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, NewPermissionError(userID, id, "submission", "read", "not owner or insufficient permissions")
		}
	}

	return &SubmissionResponse{Submission: submission}, nil
}

func (s *submissionService) GetByUserAndLab(ctx context.Context, labID uint, userID string) ([]*SubmissionResponse, error) {
	submissions, err := s.repo.Submission().GetByUserAndLab(ctx, nil, userID, labID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lab submissions: %w", err)
	}

	responses := make([]*SubmissionResponse, 0, len(submissions))
	for _, sub := range submissions {
		responses = append(responses, &SubmissionResponse{Submission: sub})
	}
	return responses, nil
}

func (s *submissionService) List(ctx context.Context, filters repositories.SubmissionFilters, userID string) (*SubmissionListResponse, error) {
	// Non-privileged users only see their own submissions.
	isStaff, err := s.hasAnyRole(ctx, userID, models.RoleInstructor, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if !isStaff {
		filters.UserID = &userID
	}

	submissions, total, err := s.repo.Submission().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}

	return s.buildListResponse(submissions, total, filters.Limit, filters.Offset), nil
}

// ===== MANUAL REVIEW =====

func (s *submissionService) GetPendingReview(ctx context.Context, filters repositories.SubmissionFilters, reviewerID string) (*SubmissionListResponse, error) {
	isStaff, err := s.hasAnyRole(ctx, reviewerID, models.RoleInstructor, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if !isStaff {
		return nil, NewPermissionError(reviewerID, 0, "submission", "review", "instructor role required")
	}

	submissions, total, err := s.repo.Submission().GetPendingReview(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending submissions: %w", err)
	}

	return s.buildListResponse(submissions, total, filters.Limit, filters.Offset), nil
}

// Review resolves a pending submission to a final status. Scores follow the
// given status: correct defaults to the challenge points, incorrect forces
// zero, partial requires an explicit score.
func (s *submissionService) Review(ctx context.Context, submissionID uint, req *ReviewSubmissionRequest, reviewerID string) (*SubmissionResponse, error) {
	s.logger.Info("Reviewing submission", "submission_id", submissionID, "reviewer_id", reviewerID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	if req.Status == models.SubmissionPartial && req.Score == nil {
		return nil, NewValidationError("score", "is required for a partial result", nil)
	}

	var submission *models.Submission

	err := s.repo.WithTransaction(ctx, func(txRepo repositories.Repository) error {
		var err error
		submission, err = txRepo.Submission().GetByID(ctx, nil, submissionID)
		if err != nil {
			if repositories.IsNotFoundError(err) {
				return ErrSubmissionNotFound
			}
			return fmt.Errorf("failed to get submission: %w", err)
		}

		allowed, err := s.canReview(ctx, submission, reviewerID)
		if err != nil {
			return err
		}
		if !allowed {
			return NewPermissionError(reviewerID, submissionID, "submission", "review", "not lab creator or insufficient permissions")
		}

		if submission.Status != models.SubmissionPending {
			return ErrSubmissionNotPending
		}

		challenge, err := txRepo.Challenge().GetByIDForUpdate(ctx, nil, submission.ChallengeID)
		if err != nil {
			return fmt.Errorf("failed to lock challenge: %w", err)
		}

		score := 0
		switch req.Status {
		case models.SubmissionCorrect:
			score = challenge.Points
			if req.Score != nil {
				score = *req.Score
			}
		case models.SubmissionPartial:
			score = *req.Score
		}

		now := time.Now()
		submission.Status = req.Status
		submission.Score = score
		submission.IsCorrect = req.Status == models.SubmissionCorrect
		submission.ReviewedBy = &reviewerID
		submission.ReviewNotes = req.ReviewNotes
		submission.ReviewScore = req.Score
		submission.ReviewedAt = &now
		submission.GradedAt = &now

		if err := txRepo.Submission().Update(ctx, nil, submission); err != nil {
			return fmt.Errorf("failed to update submission: %w", err)
		}

		// Attempts are unchanged by a review; only the correct count moves.
		correct, err := txRepo.Submission().CountCorrectByChallenge(ctx, nil, submission.ChallengeID)
		if err != nil {
			return fmt.Errorf("failed to count correct submissions: %w", err)
		}

		successRate := 0.0
		if challenge.Attempts > 0 {
			successRate = 100.0 * float64(correct) / float64(challenge.Attempts)
		}

		return txRepo.Challenge().UpdateCounters(ctx, nil, submission.ChallengeID, repositories.ChallengeCounters{
			Attempts:    challenge.Attempts,
			SuccessRate: successRate,
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Submission reviewed",
		"submission_id", submissionID,
		"status", submission.Status,
		"score", submission.Score)

	s.cascadeAfterSubmission(ctx, submission.UserID, submission.LabID, submission.ChallengeID)
	s.notifyReviewed(ctx, submission)

	return &SubmissionResponse{Submission: submission}, nil
}

// ===== CASCADE =====

// cascadeAfterSubmission refreshes the derived aggregates that depend on
// submissions. Progress runs synchronously because the response statement
// of the lab depends on it; statistics and the profile are best effort in
// the background.
func (s *submissionService) cascadeAfterSubmission(ctx context.Context, userID string, labID, challengeID uint) {
	var wasCompleted bool
	if prior, err := s.repo.Progress().GetByUserAndLab(ctx, nil, userID, labID); err == nil {
		wasCompleted = prior.IsCompleted
	}

	progress, err := s.progressService.RefreshProgress(ctx, userID, labID)
	if err != nil {
		s.logger.Error("Failed to refresh progress after submission",
			"user_id", userID, "lab_id", labID, "error", err)
	} else if !wasCompleted && progress.IsCompleted {
		s.notifyLabCompleted(ctx, userID, labID)
	}

	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if _, err := s.statisticsService.RefreshLabStatistics(bgCtx, labID); err != nil {
			s.logger.Error("Failed to refresh lab statistics", "lab_id", labID, "error", err)
		}
		if _, err := s.profileService.RefreshProfile(bgCtx, userID); err != nil {
			s.logger.Error("Failed to refresh profile", "user_id", userID, "error", err)
		}
	}()
}

func (s *submissionService) notifyLabCompleted(ctx context.Context, userID string, labID uint) {
	if s.notifications == nil {
		return
	}

	title := "Lab completed"
	message := "You solved every challenge in this lab."
	if lab, err := s.repo.Lab().GetByID(ctx, nil, labID); err == nil {
		title = fmt.Sprintf("Lab completed: %s", lab.Title)
		message = fmt.Sprintf("You solved every challenge in %q and earned %d points.", lab.Title, lab.Points)
	}

	if _, err := s.notifications.Notify(ctx, userID, &NotificationRequest{
		Type:         models.NotificationAchievement,
		Title:        title,
		Message:      message,
		RelatedLabID: &labID,
	}); err != nil {
		s.logger.Warn("Failed to send completion notification", "user_id", userID, "lab_id", labID, "error", err)
	}
}

// notifyPendingReview tells the lab creator that a submission is waiting
// for manual grading.
func (s *submissionService) notifyPendingReview(ctx context.Context, submission *models.Submission) {
	if s.notifications == nil {
		return
	}

	lab, err := s.repo.Lab().GetByID(ctx, nil, submission.LabID)
	if err != nil || lab.CreatedBy == "" || lab.CreatedBy == submission.UserID {
		return
	}

	if _, err := s.notifications.Notify(ctx, lab.CreatedBy, &NotificationRequest{
		Type:               models.NotificationWarning,
		Title:              "Submission awaiting review",
		Message:            fmt.Sprintf("A submission for %q needs manual grading.", lab.Title),
		RelatedLabID:       &submission.LabID,
		RelatedChallengeID: &submission.ChallengeID,
		EventType:          events.EventSubmissionPending,
	}); err != nil {
		s.logger.Warn("Failed to send pending review notification", "lab_id", submission.LabID, "error", err)
	}
}

func (s *submissionService) notifyReviewed(ctx context.Context, submission *models.Submission) {
	if s.notifications == nil {
		return
	}

	notificationType := models.NotificationInfo
	if submission.IsCorrect {
		notificationType = models.NotificationSuccess
	}

	if _, err := s.notifications.Notify(ctx, submission.UserID, &NotificationRequest{
		Type:               notificationType,
		Title:              "Submission reviewed",
		Message:            fmt.Sprintf("Your submission was reviewed: %s (%d points).", submission.Status, submission.Score),
		RelatedLabID:       &submission.LabID,
		RelatedChallengeID: &submission.ChallengeID,
	}); err != nil {
		s.logger.Warn("Failed to send review notification", "submission_id", submission.ID, "error", err)
	}
}

// ===== HELPERS =====

func (s *submissionService) canReview(ctx context.Context, submission *models.Submission, userID string) (bool, error) {
	lab, err := s.repo.Lab().GetByID(ctx, nil, submission.LabID)
	if err == nil && lab.CreatedBy == userID {
		return true, nil
	}
	return s.hasAnyRole(ctx, userID, models.RoleInstructor, models.RoleAdmin)
}

func (s *submissionService) hasAnyRole(ctx context.Context, userID string, roles ...models.UserRole) (bool, error) {
	for _, role := range roles {
		ok, err := s.repo.User().HasRole(ctx, userID, role)
		if err != nil {
			return false, fmt.Errorf("failed to check role: %w", err)
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (s *submissionService) buildListResponse(submissions []*models.Submission, total int64, limit, offset int) *SubmissionListResponse {
	responses := make([]*SubmissionResponse, 0, len(submissions))
	for _, sub := range submissions {
		responses = append(responses, &SubmissionResponse{Submission: sub})
	}

	size := limit
	if size <= 0 {
		size = len(responses)
	}
	page := 0
	if size > 0 {
		page = offset / size
	}

	return &SubmissionListResponse{
		Submissions: responses,
		Total:       total,
		Page:        page,
		Size:        size,
	}
}
