package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/CyberLabs-Edu/labs-service/internal/models"
	"github.com/CyberLabs-Edu/labs-service/internal/repositories"
	"github.com/CyberLabs-Edu/labs-service/internal/validator"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type challengeService struct {
	repo      repositories.Repository
	db        *gorm.DB
	logger    *slog.Logger
	validator *validator.Validator
}

func NewChallengeService(repo repositories.Repository, db *gorm.DB, logger *slog.Logger, validator *validator.Validator) ChallengeService {
	return &challengeService{
		repo:      repo,
		db:        db,
		logger:    logger,
		validator: validator,
	}
}

func (s *challengeService) Create(ctx context.Context, labID uint, req *CreateChallengeRequest, userID string) (*ChallengeResponse, error) {
	s.logger.Info("Creating challenge", "lab_id", labID, "title", req.Title, "user_id", userID)

	if errors := s.validator.GetBusinessValidator().ValidateChallengeCreate(req); len(errors) > 0 {
		return nil, errors
	}

	lab, err := s.repo.Lab().GetByID(ctx, nil, labID)
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
		return nil, NewPermissionError(userID, labID, "lab", "add_challenge", "not creator or insufficient permissions")
	}

	order, err := s.resolveOrder(ctx, labID, req.Order)
	if err != nil {
		return nil, err
	}

	challenge := &models.Challenge{
		LabID:          labID,
		Title:          req.Title,
		Description:    req.Description,
		Instructions:   req.Instructions,
		Hint:           req.Hint,
		SolutionHint:   req.SolutionHint,
		AnswerType:     req.AnswerType,
		Level:          req.Level,
		CorrectCode:    req.CorrectCode,
		ExpectedOutput: req.ExpectedOutput,
		Points:         req.Points,
		Order:          order,
		StarterCodeURL: req.StarterCodeURL,
		TestCasesURL:   req.TestCasesURL,
		AttachmentURL:  req.AttachmentURL,
	}
	if req.CorrectAnswer != nil {
		challenge.CorrectAnswer = *req.CorrectAnswer
	}
	if len(req.MultipleChoices) > 0 {
		challenge.MultipleChoices = datatypes.JSON(req.MultipleChoices)
	}
	if challenge.Level == "" {
		challenge.Level = models.LevelEasy
	}
	if challenge.Points == 0 {
		challenge.Points = 10
	}

	if err := s.repo.Challenge().Create(ctx, nil, challenge); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrChallengeOrderTaken
		}
		return nil, fmt.Errorf("failed to create challenge: %w", err)
	}

	s.logger.Info("Challenge created successfully", "challenge_id", challenge.ID, "lab_id", labID, "order", challenge.Order)

	return &ChallengeResponse{Challenge: challenge, CanEdit: true}, nil
}

func (s *challengeService) GetByID(ctx context.Context, id uint, userID string) (*ChallengeResponse, error) {
	challenge, err := s.repo.Challenge().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}

	return s.buildChallengeResponse(ctx, challenge, userID)
}

func (s *challengeService) Update(ctx context.Context, id uint, req *UpdateChallengeRequest, userID string) (*ChallengeResponse, error) {
	s.logger.Info("Updating challenge", "challenge_id", id, "user_id", userID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	challenge, err := s.repo.Challenge().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrChallengeNotFound
		}
		return nil, fmt.Errorf("failed to get challenge: %w", err)
	}

	lab, err := s.repo.Lab().GetByID(ctx, nil, challenge.LabID)
	if err != nil {
		return nil, fmt.Errorf("failed to get lab: %w", err)
	}

	canEdit, err := s.canEditLab(ctx, lab, userID)
	if err != nil {
		return nil, err
	}
	if !canEdit {
		return nil, NewPermissionError(userID, id, "challenge", "update", "not creator or insufficient permissions")
	}

	if req.Order != nil && *req.Order != challenge.Order {
		taken, err := s.repo.Challenge().ExistsByOrder(ctx, nil, challenge.LabID, *req.Order, &challenge.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check challenge order: %w", err)
		}
		if taken {
			return nil, ErrChallengeOrderTaken
		}
		challenge.Order = *req.Order
	}
	s.applyChallengeUpdate(challenge, req)

	if err := s.repo.Challenge().Update(ctx, nil, challenge); err != nil {
		if repositories.IsDuplicateError(err) {
			return nil, ErrChallengeOrderTaken
		}
		return nil, fmt.Errorf("failed to update challenge: %w", err)
	}

	s.logger.Info("Challenge updated successfully", "challenge_id", id)

	return &ChallengeResponse{Challenge: challenge, CanEdit: true}, nil
}

func (s *challengeService) Delete(ctx context.Context, id uint, userID string) error {
	s.logger.Info("Deleting challenge", "challenge_id", id, "user_id", userID)

	challenge, err := s.repo.Challenge().GetByID(ctx, nil, id)
	if err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrChallengeNotFound
		}
		return fmt.Errorf("failed to get challenge: %w", err)
	}

	lab, err := s.repo.Lab().GetByID(ctx, nil, challenge.LabID)
	if err != nil {
		return fmt.Errorf("failed to get lab: %w", err)
	}

	canEdit, err := s.canEditLab(ctx, lab, userID)
	if err != nil {
		return err
	}
	if !canEdit {
		return NewPermissionError(userID, id, "challenge", "delete", "not creator or insufficient permissions")
	}

	if err := s.repo.Challenge().Delete(ctx, nil, id); err != nil {
		return fmt.Errorf("failed to delete challenge: %w", err)
	}

	s.logger.Info("Challenge deleted successfully", "challenge_id", id)
	return nil
}

func (s *challengeService) GetByLab(ctx context.Context, labID uint, userID string) (*ChallengeListResponse, error) {
	if _, err := s.repo.Lab().GetByID(ctx, nil, labID); err != nil {
		if repositories.IsNotFoundError(err) {
			return nil, ErrLabNotFound
		}
		return nil, fmt.Errorf("failed to get lab: %w", err)
	}

	challenges, err := s.repo.Challenge().GetByLab(ctx, nil, labID)
	if err != nil {
		return nil, fmt.Errorf("failed to get challenges: %w", err)
	}

	solved := s.solvedChallenges(ctx, userID, labID)

	responses := make([]*ChallengeResponse, 0, len(challenges))
	for _, challenge := range challenges {
		responses = append(responses, &ChallengeResponse{
			Challenge: challenge,
			Solved:    solved[challenge.ID],
		})
	}

	return &ChallengeListResponse{
		Challenges: responses,
		Total:      int64(len(responses)),
	}, nil
}

// ===== HELPERS =====

// resolveOrder uses the requested order or appends after the current maximum.
func (s *challengeService) resolveOrder(ctx context.Context, labID uint, requested *int) (int, error) {
	if requested != nil {
		taken, err := s.repo.Challenge().ExistsByOrder(ctx, nil, labID, *requested, nil)
		if err != nil {
			return 0, fmt.Errorf("failed to check challenge order: %w", err)
		}
		if taken {
			return 0, ErrChallengeOrderTaken
		}
		return *requested, nil
	}

	maxOrder, err := s.repo.Challenge().MaxOrder(ctx, nil, labID)
	if err != nil {
		return 0, fmt.Errorf("failed to get max order: %w", err)
	}
	return maxOrder + 1, nil
}

func (s *challengeService) applyChallengeUpdate(challenge *models.Challenge, req *UpdateChallengeRequest) {
	if req.Title != nil {
		challenge.Title = *req.Title
	}
	if req.Description != nil {
		challenge.Description = *req.Description
	}
	if req.Instructions != nil {
		challenge.Instructions = req.Instructions
	}
	if req.Hint != nil {
		challenge.Hint = req.Hint
	}
	if req.SolutionHint != nil {
		challenge.SolutionHint = req.SolutionHint
	}
	if req.AnswerType != nil {
		challenge.AnswerType = *req.AnswerType
	}
	if req.Level != nil {
		challenge.Level = *req.Level
	}
	if req.CorrectAnswer != nil {
		challenge.CorrectAnswer = *req.CorrectAnswer
	}
	if req.CorrectCode != nil {
		challenge.CorrectCode = req.CorrectCode
	}
	if req.ExpectedOutput != nil {
		challenge.ExpectedOutput = req.ExpectedOutput
	}
	if len(req.MultipleChoices) > 0 {
		challenge.MultipleChoices = datatypes.JSON(req.MultipleChoices)
	}
	if req.Points != nil {
		challenge.Points = *req.Points
	}
	if req.StarterCodeURL != nil {
		challenge.StarterCodeURL = req.StarterCodeURL
	}
	if req.TestCasesURL != nil {
		challenge.TestCasesURL = req.TestCasesURL
	}
	if req.AttachmentURL != nil {
		challenge.AttachmentURL = req.AttachmentURL
	}
}

func (s *challengeService) buildChallengeResponse(ctx context.Context, challenge *models.Challenge, userID string) (*ChallengeResponse, error) {
	resp := &ChallengeResponse{Challenge: challenge}

	if userID != "" {
		lab, err := s.repo.Lab().GetByID(ctx, nil, challenge.LabID)
		if err == nil {
			canEdit, permErr := s.canEditLab(ctx, lab, userID)
			if permErr == nil {
				resp.CanEdit = canEdit
			}
		}

		submission, err := s.repo.Submission().GetByUserAndChallenge(ctx, nil, userID, challenge.ID)
		if err == nil {
			resp.Solved = submission.IsCorrect
		} else if !repositories.IsNotFoundError(err) {
			s.logger.Warn("Failed to load submission state", "challenge_id", challenge.ID, "user_id", userID, "error", err)
		}
	}

	return resp, nil
}

// solvedChallenges returns the set of challenges the user has answered
// correctly within a lab. Best effort; an empty map on error.
func (s *challengeService) solvedChallenges(ctx context.Context, userID string, labID uint) map[uint]bool {
	solved := make(map[uint]bool)
	if userID == "" {
		return solved
	}

	submissions, err := s.repo.Submission().GetByUserAndLab(ctx, nil, userID, labID)
	if err != nil {
		s.logger.Warn("Failed to load lab submissions", "lab_id", labID, "user_id", userID, "error", err)
		return solved
	}

	for _, sub := range submissions {
		if sub.IsCorrect {
			solved[sub.ChallengeID] = true
		}
	}
	return solved
}

func (s *challengeService) canEditLab(ctx context.Context, lab *models.Lab, userID string) (bool, error) {
	if lab.CreatedBy == userID {
		return true, nil
	}
	ok, err := s.repo.User().HasRole(ctx, userID, models.RoleAdmin)
	if err != nil {
		return false, fmt.Errorf("failed to check role: %w", err)
	}
	return ok, nil
}
