package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/CyberLabs-Edu/labs-service/internal/events"
	"github.com/CyberLabs-Edu/labs-service/internal/models"
	"github.com/CyberLabs-Edu/labs-service/internal/repositories"
	"github.com/CyberLabs-Edu/labs-service/internal/validator"
)

// notificationEventService persists notifications and mirrors them onto the
// event bus so other services can react.
type notificationEventService struct {
	repo           repositories.Repository
	eventPublisher events.EventPublisher
	logger         *slog.Logger
	validator      *validator.Validator
}

func NewNotificationEventService(repo repositories.Repository, eventPublisher events.EventPublisher, logger *slog.Logger, validator *validator.Validator) NotificationService {
	return &notificationEventService{
		repo:           repo,
		eventPublisher: eventPublisher,
		logger:         logger,
		validator:      validator,
	}
}

// NotificationEvent is the payload carried on the notifications topic.
type NotificationEvent struct {
	UserID             string                  `json:"user_id"`
	Type               models.NotificationType `json:"type"`
	Title              string                  `json:"title"`
	Message            string                  `json:"message"`
	RelatedLabID       *uint                   `json:"related_lab_id,omitempty"`
	RelatedChallengeID *uint                   `json:"related_challenge_id,omitempty"`
}

// BulkNotificationEvent fans one notification out to many users.
type BulkNotificationEvent struct {
	UserIDs      []string                `json:"user_ids"`
	Type         models.NotificationType `json:"type"`
	Title        string                  `json:"title"`
	Message      string                  `json:"message"`
	RelatedLabID *uint                   `json:"related_lab_id,omitempty"`
}

func (s *notificationEventService) Notify(ctx context.Context, userID string, req *NotificationRequest) (*models.Notification, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	notification := &models.Notification{
		UserID:             userID,
		Title:              req.Title,
		Message:            req.Message,
		Type:               req.Type,
		Link:               req.Link,
		RelatedLabID:       req.RelatedLabID,
		RelatedChallengeID: req.RelatedChallengeID,
	}

	if err := s.repo.Notification().Create(ctx, nil, notification); err != nil {
		return nil, fmt.Errorf("failed to store notification: %w", err)
	}

	eventType := req.EventType
	if eventType == "" {
		eventType = s.eventTypeFor(req.Type)
	}

	event := events.NewEvent(eventType, &NotificationEvent{
		UserID:             userID,
		Type:               req.Type,
		Title:              req.Title,
		Message:            req.Message,
		RelatedLabID:       req.RelatedLabID,
		RelatedChallengeID: req.RelatedChallengeID,
	})
	if err := s.eventPublisher.Publish(ctx, events.TopicNotifications, event); err != nil {
		// The stored notification is authoritative; a lost event is logged
		// and not surfaced to the caller.
		s.logger.Error("Failed to publish notification event", "user_id", userID, "type", req.Type, "error", err)
	}

	return notification, nil
}

// SendBulkNotification stores one notification per user and publishes a
// single bulk event.
func (s *notificationEventService) SendBulkNotification(ctx context.Context, userIDs []string, req *NotificationRequest) error {
	if err := s.validator.Validate(req); err != nil {
		return err
	}

	for _, userID := range userIDs {
		notification := &models.Notification{
			UserID:       userID,
			Title:        req.Title,
			Message:      req.Message,
			Type:         req.Type,
			Link:         req.Link,
			RelatedLabID: req.RelatedLabID,
		}
		if err := s.repo.Notification().Create(ctx, nil, notification); err != nil {
			s.logger.Error("Failed to store bulk notification", "user_id", userID, "error", err)
		}
	}

	event := events.NewEvent("system.bulk_notification", &BulkNotificationEvent{
		UserIDs:      userIDs,
		Type:         req.Type,
		Title:        req.Title,
		Message:      req.Message,
		RelatedLabID: req.RelatedLabID,
	})
	if err := s.eventPublisher.Publish(ctx, events.TopicNotifications, event); err != nil {
		return fmt.Errorf("failed to publish bulk notification event: %w", err)
	}

	s.logger.Info("Bulk notification sent", "recipients", len(userIDs), "type", req.Type)
	return nil
}

func (s *notificationEventService) List(ctx context.Context, userID string, filters repositories.NotificationFilters) (*NotificationListResponse, error) {
	notifications, total, err := s.repo.Notification().List(ctx, nil, userID, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}

	unread, err := s.repo.Notification().CountUnread(ctx, nil, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count unread notifications: %w", err)
	}

	return &NotificationListResponse{
		Notifications: notifications,
		Total:         total,
		UnreadCount:   unread,
	}, nil
}

func (s *notificationEventService) MarkRead(ctx context.Context, notificationID uint, userID string) error {
	if err := s.repo.Notification().MarkRead(ctx, nil, notificationID, userID); err != nil {
		if repositories.IsNotFoundError(err) {
			return ErrNotificationNotFound
		}
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func (s *notificationEventService) MarkAllRead(ctx context.Context, userID string) error {
	if err := s.repo.Notification().MarkAllRead(ctx, nil, userID); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

// eventTypeFor maps a notification type onto the event taxonomy.
func (s *notificationEventService) eventTypeFor(t models.NotificationType) string {
	switch t {
	case models.NotificationAchievement:
		return events.EventLabCompleted
	case models.NotificationSuccess, models.NotificationInfo:
		return events.EventSubmissionGraded
	default:
		return "notification.created"
	}
}
