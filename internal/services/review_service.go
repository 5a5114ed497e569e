package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/CyberLabs-Edu/labs-service/internal/events"
	"github.com/CyberLabs-Edu/labs-service/internal/models"
	"github.com/CyberLabs-Edu/labs-service/internal/repositories"
	"github.com/CyberLabs-Edu/labs-service/internal/validator"
	"gorm.io/gorm"
)

type reviewService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator

	statisticsService StatisticsService
	notifications     NotificationService
}

func NewReviewService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator, statisticsService StatisticsService, notifications NotificationService) ReviewService {
	return &reviewService{
		repo:              repo,
		db:                db,
		logger:            logger,
		validator:         validator,
		statisticsService: statisticsService,
		notifications:     notifications,
	}
}

// Create stores one review per (user, lab). The user must have started the
// lab before reviewing it.
func (s *reviewService) Create(ctx context.Context, labID uint, req *CreateReviewRequest, userID string) (*ReviewResponse, error) {
	s.logger.Info("Creating review", "lab_id", labID, "user_id", userID)

	if errors := s.validator.GetBusinessValidator().ValidateReviewCreate(req); len(errors) > 0 {
		return nil, errors
	}

	lab, err := s.repo.Lab().GetByID(ctx, nil, labID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLabNotFound
		}
		return nil, fmt.Errorf("failed to get lab: %w", err)
	}

	progress, err := s.repo.Progress().GetByUserAndLab(ctx, nil, userID, labID)
	if err != nil || !progress.IsStarted {
		if err != nil && !repositories.IsNotFoundError(err) {
			return nil, fmt.Errorf("failed to check progress: %w", err)
		}
		return nil, ErrLabNotStarted
	}

	if _, err := s.repo.Review().GetByUserAndLab(ctx, nil, userID, labID); err == nil {
		return nil, ErrDuplicateReview
	} else if !repositories.IsNotFoundError(err) {
		return nil, fmt.Errorf("failed to check existing review: %w", err)
	}

	review := &models.LabReview{
		UserID:           userID,
		LabID:            labID,
		Rating:           req.Rating,
		Comment:          req.Comment,
		DifficultyRating: req.DifficultyRating,
		ContentQuality:   req.ContentQuality,
		Usefulness:       req.Usefulness,
		IsApproved:       true,
	}

	if err := s.repo.Review().Create(ctx, nil, review); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrDuplicateReview
		}
		return nil, fmt.Errorf("failed to create review: %w", err)
	}

	s.logger.Info("Review created", "review_id", review.ID, "lab_id", labID, "rating", review.Rating)

	s.refreshStats(ctx, labID)
	s.notifyCreator(ctx, lab, review)

	return &ReviewResponse{LabReview: review, CanEdit: true, CanDelete: true}, nil
}

func (s *reviewService) Update(ctx context.Context, reviewID uint, req *UpdateReviewRequest, userID string) (*ReviewResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	review, err := s.repo.Review().GetByID(ctx, nil, reviewID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	if review.UserID != userID {
		return nil, NewPermissionError(userID, reviewID, "review", "update", "not review author")
	}

	if req.Rating != nil {
		review.Rating = *req.Rating
	}
	if req.Comment != nil {
		review.Comment = req.Comment
	}
	if req.DifficultyRating != nil {
		review.DifficultyRating = *req.DifficultyRating
	}
	if req.ContentQuality != nil {
		review.ContentQuality = *req.ContentQuality
	}
	if req.Usefulness != nil {
		review.Usefulness = *req.Usefulness
	}

	if err := s.repo.Review().Update(ctx, nil, review); err != nil {
		return nil, fmt.Errorf("failed to update review: %w", err)
	}

	s.logger.Info("Review updated", "review_id", reviewID)

	s.refreshStats(ctx, review.LabID)

	return &ReviewResponse{LabReview: review, CanEdit: true, CanDelete: true}, nil
}

func (s *reviewService) Delete(ctx context.Context, reviewID uint, userID string) error {
	review, err := s.repo.Review().GetByID(ctx, nil, reviewID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to get review: %w", err)
	}

	if review.UserID != userID {
		isModerator, err := s.hasAnyRole(ctx, userID, models.RoleModerator, models.RoleAdmin)
		if err != nil {
			return err
		}
		if !isModerator {
			return NewPermissionError(userID, reviewID, "review", "delete", "not author or moderator")
		}
	}

	if err := s.repo.Review().Delete(ctx, nil, reviewID); err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}

	s.logger.Info("Review deleted", "review_id", reviewID, "user_id", userID)

	s.refreshStats(ctx, review.LabID)
	return nil
}

func (s *reviewService) GetByLab(ctx context.Context, labID uint, filters repositories.ReviewFilters) (*ReviewListResponse, error) {
	filters.LabID = &labID
	if filters.IsApproved == nil {
		approved := true
		filters.IsApproved = &approved
	}

	reviews, total, err := s.repo.Review().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}

	average, _, err := s.repo.Review().AverageApprovedRating(ctx, nil, labID)
	if err != nil {
		s.logger.Warn("Failed to read average rating", "lab_id", labID, "error", err)
	}

	responses := make([]*ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		responses = append(responses, &ReviewResponse{LabReview: review})
	}

	return &ReviewListResponse{
		Reviews:       responses,
		Total:         total,
		AverageRating: average,
	}, nil
}

func (s *reviewService) GetUserReview(ctx context.Context, labID uint, userID string) (*ReviewResponse, error) {
	review, err := s.repo.Review().GetByUserAndLab(ctx, nil, userID, labID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}

	return &ReviewResponse{LabReview: review, CanEdit: true, CanDelete: true}, nil
}

// ===== MODERATION =====

func (s *reviewService) SetApproved(ctx context.Context, reviewID uint, approved bool, moderatorID string) error {
	isModerator, err := s.hasAnyRole(ctx, moderatorID, models.RoleModerator, models.RoleAdmin)
	if err != nil {
		return err
	}
	if !isModerator {
		return NewPermissionError(moderatorID, reviewID, "review", "moderate", "moderator role required")
	}

	review, err := s.repo.Review().GetByID(ctx, nil, reviewID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to get review: %w", err)
	}

	if err := s.repo.Review().SetApproved(ctx, nil, reviewID, approved); err != nil {
		return fmt.Errorf("failed to moderate review: %w", err)
	}

	s.logger.Info("Review moderated", "review_id", reviewID, "approved", approved, "moderator_id", moderatorID)

	s.refreshStats(ctx, review.LabID)
	return nil
}

func (s *reviewService) MarkHelpful(ctx context.Context, reviewID uint, userID string) error {
	review, err := s.repo.Review().GetByID(ctx, nil, reviewID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrReviewNotFound
		}
		return fmt.Errorf("failed to get review: %w", err)
	}

	review.HelpfulCount++
	if err := s.repo.Review().Update(ctx, nil, review); err != nil {
		return fmt.Errorf("failed to mark review helpful: %w", err)
	}
	return nil
}

// ===== HELPERS =====

// notifyCreator tells the lab creator that a new review landed. Best
// effort; never blocks the review itself.
func (s *reviewService) notifyCreator(ctx context.Context, lab *models.Lab, review *models.LabReview) {
	if s.notifications == nil || lab.CreatedBy == "" || lab.CreatedBy == review.UserID {
		return
	}

	if _, err := s.notifications.Notify(ctx, lab.CreatedBy, &NotificationRequest{
		Type:         models.NotificationInfo,
		Title:        "New lab review",
		Message:      fmt.Sprintf("Your lab %q received a %d-star review.", lab.Title, review.Rating),
		RelatedLabID: &lab.ID,
		EventType:    events.EventReviewSubmitted,
	}); err != nil {
		s.logger.Warn("Failed to send review notification", "lab_id", lab.ID, "error", err)
	}
}

// refreshStats keeps the lab rollup in step with review changes. Best
// effort; the review operation already succeeded.
func (s *reviewService) refreshStats(ctx context.Context, labID uint) {
	if s.statisticsService == nil {
		return
	}
	if _, err := s.statisticsService.RefreshLabStatistics(ctx, labID); err != nil {
		s.logger.Warn("Failed to refresh lab statistics after review change", "lab_id", labID, "error", err)
	}
}

func (s *reviewService) hasAnyRole(ctx context.Context, userID string, roles ...models.UserRole) (bool, error) {
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
