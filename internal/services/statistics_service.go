package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/CyberLabs-Edu/labs-service/internal/models"
	"github.com/CyberLabs-Edu/labs-service/internal/repositories"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

type statisticsService struct {
	repo   repositories.Repository
	db     *gorm.DB
	logger *slog.Logger
}

func NewStatisticsService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger) StatisticsService {
	return &statisticsService{
		repo:   repo,
		db:     db,
		logger: logger,
	}
}

func (s *statisticsService) GetLabStatistics(ctx context.Context, labID uint) (*models.LabStatistics, error) {
	stats, err := s.repo.Statistics().GetByLab(ctx, nil, labID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			// No rollup stored yet; compute one on demand.
			return s.RefreshLabStatistics(ctx, labID)
		}
		return nil, fmt.Errorf("failed to get lab statistics: %w", err)
	}
	return stats, nil
}

// RefreshLabStatistics recomputes the per-lab rollup from progress rows,
// submissions and approved reviews. Every rate guards against a zero
// denominator.
func (s *statisticsService) RefreshLabStatistics(ctx context.Context, labID uint) (*models.LabStatistics, error) {
	lab, err := s.repo.Lab().GetByID(ctx, nil, labID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLabNotFound
		}
		return nil, fmt.Errorf("failed to get lab: %w", err)
	}

	rollup, err := s.repo.Statistics().GetRollup(ctx, nil, labID)
	if err != nil {
		return nil, fmt.Errorf("failed to read rollup: %w", err)
	}

	completionRate := 0.0
	dropoutRate := 0.0
	if rollup.TotalStarts > 0 {
		completionRate = 100.0 * float64(rollup.TotalCompletions) / float64(rollup.TotalStarts)
		dropoutRate = 100.0 - completionRate
	}

	stats := &models.LabStatistics{
		LabID:            labID,
		TotalViews:       lab.ViewCount,
		TotalStarts:      rollup.TotalStarts,
		TotalCompletions: rollup.TotalCompletions,
		TotalSubmissions: rollup.TotalSubmissions,
		AverageRating:    rollup.AverageRating,
		AverageScore:     rollup.AverageScore,
		CompletionRate:   completionRate,
		SuccessRate:      rollup.AverageScore,
		DropoutRate:      dropoutRate,
		LastCalculated:   time.Now(),
	}

	if err := s.repo.Statistics().Upsert(ctx, nil, stats); err != nil {
		return nil, fmt.Errorf("failed to store lab statistics: %w", err)
	}

	// Keep the denormalized lab counters in step with the rollup.
	if err := s.repo.Lab().UpdateCompletionStats(ctx, nil, labID, rollup.TotalCompletions, rollup.AverageScore); err != nil {
		s.logger.Warn("Failed to update lab completion counters", "lab_id", labID, "error", err)
	}

	s.logger.Debug("Lab statistics refreshed",
		"lab_id", labID,
		"starts", stats.TotalStarts,
		"completions", stats.TotalCompletions,
		"completion_rate", stats.CompletionRate)

	return stats, nil
}

func (s *statisticsService) GetDashboard(ctx context.Context, userID string) (*DashboardResponse, error) {
	isStaff, err := s.hasAnyRole(ctx, userID, models.RoleInstructor, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if !isStaff {
		return nil, NewPermissionError(userID, 0, "dashboard", "read", "instructor role required")
	}

	platform, err := s.repo.Statistics().GetPlatformStats(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read platform stats: %w", err)
	}

	topLabs, err := s.repo.Statistics().GetTopLabs(ctx, nil, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to read top labs: %w", err)
	}

	return &DashboardResponse{
		Platform:    platform,
		TopLabs:     topLabs,
		GeneratedAt: time.Now(),
	}, nil
}

// ExportLabReport builds an xlsx workbook with the lab rollup and the
// per-challenge counters.
func (s *statisticsService) ExportLabReport(ctx context.Context, labID uint, userID string) ([]byte, error) {
	lab, err := s.repo.Lab().GetByID(ctx, nil, labID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLabNotFound
		}
		return nil, fmt.Errorf("failed to get lab: %w", err)
	}

	if lab.CreatedBy != userID {
		isStaff, err := s.hasAnyRole(ctx, userID, models.RoleAdmin)
		if err != nil {
			return nil, err
		}
		if !isStaff {
			return nil, NewPermissionError(userID, labID, "lab", "export", "not creator or insufficient permissions")
		}
	}

	stats, err := s.GetLabStatistics(ctx, labID)
	if err != nil {
		return nil, err
	}

	challenges, err := s.repo.Challenge().GetByLab(ctx, nil, labID)
	if err != nil {
		return nil, fmt.Errorf("failed to get challenges: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	overview := "Overview"
	f.SetSheetName("Sheet1", overview)

	overviewRows := [][]interface{}{
		{"Lab", lab.Title},
		{"Category", string(lab.Category)},
		{"Difficulty", string(lab.Difficulty)},
		{"Total views", stats.TotalViews},
		{"Total starts", stats.TotalStarts},
		{"Total completions", stats.TotalCompletions},
		{"Total submissions", stats.TotalSubmissions},
		{"Completion rate (%)", stats.CompletionRate},
		{"Average rating", stats.AverageRating},
		{"Average score", stats.AverageScore},
		{"Last calculated", stats.LastCalculated.Format(time.RFC3339)},
	}
	for i, row := range overviewRows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(overview, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write overview row: %w", err)
		}
	}

	sheet := "Challenges"
	if _, err := f.NewSheet(sheet); err != nil {
		return nil, fmt.Errorf("failed to create challenge sheet: %w", err)
	}

	header := []interface{}{"Order", "Title", "Answer type", "Level", "Points", "Attempts", "Success rate (%)"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	for i, challenge := range challenges {
		row := []interface{}{
			challenge.Order,
			challenge.Title,
			string(challenge.AnswerType),
			string(challenge.Level),
			challenge.Points,
			challenge.Attempts,
			challenge.SuccessRate,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write challenge row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to serialize report: %w", err)
	}

	s.logger.Info("Lab report exported", "lab_id", labID, "challenges", len(challenges))

	return buf.Bytes(), nil
}

func (s *statisticsService) hasAnyRole(ctx context.Context, userID string, roles ...models.UserRole) (bool, error) {
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
