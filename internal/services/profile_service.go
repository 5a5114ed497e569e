package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/CyberLabs-Edu/labs-service/internal/models"
	"github.com/CyberLabs-Edu/labs-service/internal/repositories"
	"gorm.io/gorm"
)

type profileService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewProfileService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) ProfileService {
	return &profileService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

func (s *profileService) GetProfile(ctx context.Context, userID string, viewerID string) (*ProfileResponse, error) {
	profile, _, err := s.repo.Profile().GetOrCreate(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if !profile.IsPublic && userID != viewerID {
		isStaff, err := s.repo.User().HasRole(ctx, viewerID, models.RoleAdmin)
		if err != nil {
			return nil, fmt.Errorf("failed to check role: %w", err)
		}
		if !isStaff {
			return nil, ErrProfilePrivate
		}
	}

	resp := &ProfileResponse{UserProfile: profile}
	if user, err := s.repo.User().GetByID(ctx, userID); err == nil {
		resp.FullName = user.FullName
	}

	return resp, nil
}

func (s *profileService) UpdateProfile(ctx context.Context, userID string, bio *string, avatarURL *string, isPublic *bool) (*ProfileResponse, error) {
	profile, _, err := s.repo.Profile().GetOrCreate(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	if bio != nil {
		profile.Bio = bio
	}
	if avatarURL != nil {
		profile.AvatarURL = avatarURL
	}
	if isPublic != nil {
		profile.IsPublic = *isPublic
	}

	if err := s.repo.Profile().Update(ctx, nil, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Info("Profile updated", "user_id", userID)

	return &ProfileResponse{UserProfile: profile}, nil
}

// RefreshProfile recomputes the derived totals from the user's correct
// submissions: distinct labs completed and the sum of awarded scores.
// Last activity moves on every refresh.
func (s *profileService) RefreshProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	totals, err := s.repo.Submission().GetProfileTotals(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to read profile totals: %w", err)
	}

	profile, _, err := s.repo.Profile().GetOrCreate(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	profile.TotalPoints = totals.TotalPoints
	profile.CompletedLabsCount = totals.CompletedLabsCount
	profile.LastActivity = time.Now()

	if err := s.repo.Profile().Update(ctx, nil, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.logger.Debug("Profile refreshed",
		"user_id", userID,
		"total_points", profile.TotalPoints,
		"completed_labs", profile.CompletedLabsCount)

	return profile, nil
}

func (s *profileService) GetLeaderboard(ctx context.Context, limit, offset int) (*LeaderboardResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	profiles, total, err := s.repo.Profile().GetLeaderboard(ctx, nil, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to read leaderboard: %w", err)
	}

	userIDs := make([]string, 0, len(profiles))
	for _, p := range profiles {
		userIDs = append(userIDs, p.UserID)
	}

	names := make(map[string]string, len(userIDs))
	if len(userIDs) > 0 {
		if users, err := s.repo.User().GetByIDs(ctx, userIDs); err == nil {
			for _, u := range users {
				names[u.ID] = u.FullName
			}
		} else {
			s.logger.Warn("Failed to resolve leaderboard names", "error", err)
		}
	}

	entries := make([]models.LeaderboardEntry, 0, len(profiles))
	for i, p := range profiles {
		entries = append(entries, models.LeaderboardEntry{
			Rank:               offset + i + 1,
			UserID:             p.UserID,
			FullName:           names[p.UserID],
			TotalPoints:        p.TotalPoints,
			CompletedLabsCount: p.CompletedLabsCount,
		})
	}

	return &LeaderboardResponse{
		Entries: entries,
		Total:   total,
	}, nil
}
