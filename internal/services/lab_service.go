package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/CyberLabs-Edu/labs-service/internal/models"
	"github.com/CyberLabs-Edu/labs-service/internal/repositories"
	"github.com/CyberLabs-Edu/labs-service/internal/validator"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type labService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewLabService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) LabService {
	return &labService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

// ===== CRUD OPERATIONS =====

func (s *labService) Create(ctx context.Context, req *CreateLabRequest, creatorID string) (*LabResponse, error) {
	s.logger.Info("Creating lab", "title", req.Title, "creator_id", creatorID)

	if errors := s.validator.GetBusinessValidator().ValidateLabCreate(req); len(errors) > 0 {
		return nil, errors
	}

	labSlug, err := s.uniqueSlug(ctx, req.Title, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate slug: %w", err)
	}

	lab := &models.Lab{
		Title:              req.Title,
		Slug:               labSlug,
		Description:        req.Description,
		Overview:           req.Overview,
		LearningObjectives: req.LearningObjectives,
		Category:           req.Category,
		Difficulty:         req.Difficulty,
		Points:             req.Points,
		EstimatedTime:      req.EstimatedTime,
		IsPremium:          req.IsPremium,
		IsActive:           true,
		RequiresVM:         req.RequiresVM,
		VMImage:            req.VMImage,
		ThumbnailURL:       req.ThumbnailURL,
		LabGuideURL:        req.LabGuideURL,
		StarterFileURL:     req.StarterFileURL,
		CreatedBy:          creatorID,
	}
	if req.IsActive != nil {
		lab.IsActive = *req.IsActive
	}
	if lab.Points == 0 {
		lab.Points = 100
	}

	if err := s.repo.Lab().Create(ctx, nil, lab); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrLabDuplicateSlug
		}
		return nil, fmt.Errorf("failed to create lab: %w", err)
	}

	s.logger.Info("Lab created successfully", "lab_id", lab.ID, "slug", lab.Slug)

	return &LabResponse{Lab: lab, CanEdit: true, CanDelete: true}, nil
}

func (s *labService) GetByID(ctx context.Context, id uint, userID string) (*LabResponse, error) {
	lab, err := s.repo.Lab().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLabNotFound
		}
		return nil, fmt.Errorf("failed to get lab: %w", err)
	}

	return s.buildLabResponse(ctx, lab, userID)
}

func (s *labService) GetBySlug(ctx context.Context, labSlug string, userID string) (*LabResponse, error) {
	lab, err := s.repo.Lab().GetBySlug(ctx, nil, labSlug)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLabNotFound
		}
		return nil, fmt.Errorf("failed to get lab by slug: %w", err)
	}

	return s.buildLabResponse(ctx, lab, userID)
}

// GetByIDWithDetails loads the lab with its ordered challenges and statistics
// and counts the view.
func (s *labService) GetByIDWithDetails(ctx context.Context, id uint, userID string) (*LabResponse, error) {
	lab, err := s.repo.Lab().GetByIDWithDetails(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLabNotFound
		}
		return nil, fmt.Errorf("failed to get lab details: %w", err)
	}

	if err := s.repo.Lab().IncrementViewCount(ctx, nil, id); err != nil {
		// A lost view count never fails the read.
		s.logger.Warn("Failed to increment view count", "lab_id", id, "error", err)
	}

	return s.buildLabResponse(ctx, lab, userID)
}

func (s *labService) Update(ctx context.Context, id uint, req *UpdateLabRequest, userID string) (*LabResponse, error) {
	s.logger.Info("Updating lab", "lab_id", id, "user_id", userID)

	lab, err := s.repo.Lab().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLabNotFound
		}
		return nil, fmt.Errorf("failed to get lab: %w", err)
	}

	canEdit, err := s.canEditLab(ctx, lab, userID)
	if err != nil {
		return nil, err
	}
	if !canEdit {
		return nil, NewPermissionError(userID, id, "lab", "update", "not creator or insufficient permissions")
	}

	if errors := s.validator.GetBusinessValidator().ValidateLabUpdate(req, lab); len(errors) > 0 {
		return nil, errors
	}

	if req.Title != nil && *req.Title != lab.Title {
		lab.Title = *req.Title
		newSlug, err := s.uniqueSlug(ctx, lab.Title, &lab.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to generate slug: %w", err)
		}
		lab.Slug = newSlug
	}
	s.applyLabUpdate(lab, req)

	if err := s.repo.Lab().Update(ctx, nil, lab); err != nil {
		return nil, fmt.Errorf("failed to update lab: %w", err)
	}

	s.logger.Info("Lab updated successfully", "lab_id", id)

	return &LabResponse{Lab: lab, CanEdit: true, CanDelete: true}, nil
}

func (s *labService) Delete(ctx context.Context, id uint, userID string) error {
	s.logger.Info("Deleting lab", "lab_id", id, "user_id", userID)

	lab, err := s.repo.Lab().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrLabNotFound
		}
		return fmt.Errorf("failed to get lab: %w", err)
	}

	canEdit, err := s.canEditLab(ctx, lab, userID)
	if err != nil {
		return err
	}
	if !canEdit {
		return NewPermissionError(userID, id, "lab", "delete", "not creator or insufficient permissions")
	}

	if err := s.repo.Lab().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete lab: %w", err)
	}

	s.logger.Info("Lab deleted successfully", "lab_id", id)
	return nil
}

// ===== LIST AND SEARCH =====

func (s *labService) List(ctx context.Context, filters repositories.LabFilters, userID string) (*LabListResponse, error) {
	// Students only see active labs; creators and admins can list inactive.
	if filters.IsActive == nil {
		isInstructor, err := s.hasAnyRole(ctx, userID, models.RoleInstructor, models.RoleAdmin)
		if err != nil {
			return nil, err
		}
		if !isInstructor {
			active := true
			filters.IsActive = &active
		}
	}

	labs, total, err := s.repo.Lab().List(ctx, nil, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list labs: %w", err)
	}

	return s.buildLabListResponse(ctx, labs, total, filters.Limit, filters.Offset, userID)
}

func (s *labService) GetByCreator(ctx context.Context, creatorID string, filters repositories.LabFilters) (*LabListResponse, error) {
	labs, total, err := s.repo.Lab().GetByCreator(ctx, nil, creatorID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to get labs by creator: %w", err)
	}

	return s.buildLabListResponse(ctx, labs, total, filters.Limit, filters.Offset, creatorID)
}

func (s *labService) GetPremium(ctx context.Context, filters repositories.LabFilters, userID string) (*LabListResponse, error) {
	limit := filters.Limit
	if limit <= 0 {
		limit = 20
	}

	labs, err := s.repo.Lab().GetPremium(ctx, nil, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get premium labs: %w", err)
	}

	return s.buildLabListResponse(ctx, labs, int64(len(labs)), limit, 0, userID)
}

func (s *labService) GetCategories(ctx context.Context) ([]models.CategoryCount, error) {
	counts, err := s.repo.Lab().GetCategoriesWithCounts(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}

	result := make([]models.CategoryCount, 0, len(counts))
	for _, c := range counts {
		result = append(result, *c)
	}
	return result, nil
}

// ===== LIFECYCLE =====

func (s *labService) Publish(ctx context.Context, id uint, userID string) error {
	return s.setActive(ctx, id, userID, true)
}

func (s *labService) Unpublish(ctx context.Context, id uint, userID string) error {
	return s.setActive(ctx, id, userID, false)
}

func (s *labService) setActive(ctx context.Context, id uint, userID string, active bool) error {
	lab, err := s.repo.Lab().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrLabNotFound
		}
		return fmt.Errorf("failed to get lab: %w", err)
	}

	canEdit, err := s.canEditLab(ctx, lab, userID)
	if err != nil {
		return err
	}
	if !canEdit {
		return NewPermissionError(userID, id, "lab", "publish", "not creator or insufficient permissions")
	}

	lab.IsActive = active
	if active && lab.PublishedAt == nil {
		now := time.Now()
		lab.PublishedAt = &now
	}

	if err := s.repo.Lab().Update(ctx, nil, lab); err != nil {
		return fmt.Errorf("failed to update lab status: %w", err)
	}

	s.logger.Info("Lab status changed", "lab_id", id, "is_active", active)
	return nil
}

// ===== PERMISSION CHECKS =====

func (s *labService) CanEdit(ctx context.Context, labID uint, userID string) (bool, error) {
	lab, err := s.repo.Lab().GetByID(ctx, nil, labID)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return false, ErrLabNotFound
		}
		return false, err
	}
	return s.canEditLab(ctx, lab, userID)
}

func (s *labService) canEditLab(ctx context.Context, lab *models.Lab, userID string) (bool, error) {
	if lab.CreatedBy == userID {
		return true, nil
	}
	return s.hasAnyRole(ctx, userID, models.RoleAdmin)
}

func (s *labService) hasAnyRole(ctx context.Context, userID string, roles ...models.UserRole) (bool, error) {
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

// ===== HELPERS =====

// uniqueSlug derives a URL slug from the title and appends a numeric suffix
// until it no longer collides with another lab.
func (s *labService) uniqueSlug(ctx context.Context, title string, excludeID *uint) (string, error) {
	base := slug.Make(title)
	candidate := base

	for i := 2; ; i++ {
		exists, err := s.repo.Lab().ExistsBySlug(ctx, nil, candidate, excludeID)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, i)
	}
}

func (s *labService) applyLabUpdate(lab *models.Lab, req *UpdateLabRequest) {
	if req.Description != nil {
		lab.Description = *req.Description
	}
	if req.Overview != nil {
		lab.Overview = req.Overview
	}
	if req.LearningObjectives != nil {
		lab.LearningObjectives = req.LearningObjectives
	}
	if req.Category != nil {
		lab.Category = *req.Category
	}
	if req.Difficulty != nil {
		lab.Difficulty = *req.Difficulty
	}
	if req.Points != nil {
		lab.Points = *req.Points
	}
	if req.EstimatedTime != nil {
		lab.EstimatedTime = *req.EstimatedTime
	}
	if req.IsPremium != nil {
		lab.IsPremium = *req.IsPremium
	}
	if req.IsActive != nil {
		lab.IsActive = *req.IsActive
	}
	if req.RequiresVM != nil {
		lab.RequiresVM = *req.RequiresVM
	}
	if req.VMImage != nil {
		lab.VMImage = req.VMImage
	}
	if req.ThumbnailURL != nil {
		lab.ThumbnailURL = req.ThumbnailURL
	}
	if req.LabGuideURL != nil {
		lab.LabGuideURL = req.LabGuideURL
	}
	if req.StarterFileURL != nil {
		lab.StarterFileURL = req.StarterFileURL
	}
}

func (s *labService) buildLabResponse(ctx context.Context, lab *models.Lab, userID string) (*LabResponse, error) {
	canEdit := false
	if userID != "" {
		var err error
		canEdit, err = s.canEditLab(ctx, lab, userID)
		if err != nil {
			s.logger.Warn("Failed to resolve lab permissions", "lab_id", lab.ID, "error", err)
			canEdit = false
		}
	}

	resp := &LabResponse{
		Lab:       lab,
		CanEdit:   canEdit,
		CanDelete: canEdit,
	}

	if userID != "" {
		progress, err := s.repo.Progress().GetByUserAndLab(ctx, nil, userID, lab.ID)
		if err == nil {
			resp.UserProgress = progress
		} else if !repositories.IsNotFoundError(err) {
			s.logger.Warn("Failed to load user progress", "lab_id", lab.ID, "user_id", userID, "error", err)
		}
	}

	return resp, nil
}

func (s *labService) buildLabListResponse(ctx context.Context, labs []*models.Lab, total int64, limit, offset int, userID string) (*LabListResponse, error) {
	responses := make([]*LabResponse, 0, len(labs))
	for _, lab := range labs {
		canEdit := lab.CreatedBy == userID
		responses = append(responses, &LabResponse{
			Lab:       lab,
			CanEdit:   canEdit,
			CanDelete: canEdit,
		})
	}

	size := limit
	if size <= 0 {
		size = len(responses)
	}
	page := 0
	if size > 0 {
		page = offset / size
	}

	return &LabListResponse{
		Labs:  responses,
		Total: total,
		Page:  page,
		Size:  size,
	}, nil
}
