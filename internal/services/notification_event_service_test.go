package services

import (
	"context"
	"log/slog"
	"os"
	"testing"

	"gorm.io/gorm"

	"github.com/CyberLabs-Edu/labs-service/internal/events"
	"github.com/CyberLabs-Edu/labs-service/internal/models"
	"github.com/CyberLabs-Edu/labs-service/internal/repositories"
	"github.com/CyberLabs-Edu/labs-service/internal/validator"
)

// MockNotificationRepository stores notifications in memory and satisfies
// the aggregate Repository interface for the domains this test touches.
type MockNotificationRepository struct {
	notifications []*models.Notification
}

type mockNotificationStore struct {
	parent *MockNotificationRepository
}

func (m *mockNotificationStore) Create(ctx context.Context, tx *gorm.DB, notification *models.Notification) error {
	notification.ID = uint(len(m.parent.notifications) + 1)
	m.parent.notifications = append(m.parent.notifications, notification)
	return nil
}

func (m *mockNotificationStore) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Notification, error) {
	for _, n := range m.parent.notifications {
		if n.ID == id {
			return n, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *mockNotificationStore) List(ctx context.Context, tx *gorm.DB, userID string, filters repositories.NotificationFilters) ([]*models.Notification, int64, error) {
	var out []*models.Notification
	for _, n := range m.parent.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out, int64(len(out)), nil
}

func (m *mockNotificationStore) MarkRead(ctx context.Context, tx *gorm.DB, id uint, userID string) error {
	return nil
}

func (m *mockNotificationStore) MarkAllRead(ctx context.Context, tx *gorm.DB, userID string) error {
	return nil
}

func (m *mockNotificationStore) CountUnread(ctx context.Context, tx *gorm.DB, userID string) (int64, error) {
	var count int64
	for _, n := range m.parent.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *MockNotificationRepository) Lab() repositories.LabRepository               { return nil }
func (m *MockNotificationRepository) Challenge() repositories.ChallengeRepository  { return nil }
func (m *MockNotificationRepository) Submission() repositories.SubmissionRepository { return nil }
func (m *MockNotificationRepository) Progress() repositories.ProgressRepository    { return nil }
func (m *MockNotificationRepository) Review() repositories.ReviewRepository        { return nil }
func (m *MockNotificationRepository) Statistics() repositories.StatisticsRepository { return nil }
func (m *MockNotificationRepository) Profile() repositories.ProfileRepository      { return nil }
func (m *MockNotificationRepository) User() repositories.UserRepository            { return nil }
func (m *MockNotificationRepository) Notification() repositories.NotificationRepository {
	return &mockNotificationStore{parent: m}
}
func (m *MockNotificationRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *MockNotificationRepository) Ping(ctx context.Context) error { return nil }
func (m *MockNotificationRepository) Close() error                   { return nil }

func TestNotificationEventService_PublishEvents(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	mockPublisher := events.NewMockEventPublisher(logger)
	v := validator.New()
	mockRepo := &MockNotificationRepository{}

	service := &notificationEventService{
		repo:           mockRepo,
		eventPublisher: mockPublisher,
		logger:         logger,
		validator:      v,
	}

	ctx := context.Background()

	t.Run("Notify", func(t *testing.T) {
		mockPublisher.ClearEvents()

		notification, err := service.Notify(ctx, "user-1", &NotificationRequest{
			Type:    models.NotificationAchievement,
			Title:   "Lab completed",
			Message: "You completed SQL Injection Basics",
		})
		if err != nil {
			t.Fatalf("Failed to send notification: %v", err)
		}
		if notification.ID == 0 {
			t.Error("Notification should have been persisted")
		}

		published := mockPublisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(published))
		}
		if published[0].Type != events.EventLabCompleted {
			t.Errorf("Expected event type %q, got %q", events.EventLabCompleted, published[0].Type)
		}
	})

	t.Run("SendBulkNotification", func(t *testing.T) {
		mockPublisher.ClearEvents()

		userIDs := []string{"user-1", "user-2", "user-3"}
		notification := &NotificationRequest{
			Type:    models.NotificationInfo,
			Title:   "Maintenance window",
			Message: "Lab VMs will be unavailable tonight",
		}

		if err := service.SendBulkNotification(ctx, userIDs, notification); err != nil {
			t.Fatalf("Failed to send bulk notification: %v", err)
		}

		// One stored notification per recipient, one event overall
		published := mockPublisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(published))
		}
		if published[0].Type != "system.bulk_notification" {
			t.Errorf("Expected event type 'system.bulk_notification', got %s", published[0].Type)
		}

		stored := 0
		for _, n := range mockRepo.notifications {
			if n.Title == "Maintenance window" {
				stored++
			}
		}
		if stored != len(userIDs) {
			t.Errorf("Expected %d stored notifications, got %d", len(userIDs), stored)
		}
	})

	t.Run("Event_Structure_Validation", func(t *testing.T) {
		mockPublisher.ClearEvents()

		notification := &NotificationRequest{
			Type:    models.NotificationWarning,
			Title:   "Lab retiring soon",
			Message: "This lab will be unpublished next week",
		}

		if err := service.SendBulkNotification(ctx, []string{"user-42"}, notification); err != nil {
			t.Fatalf("Failed to send notification: %v", err)
		}

		published := mockPublisher.GetPublishedEvents()
		if len(published) != 1 {
			t.Fatalf("Expected 1 event, got %d", len(published))
		}

		event := published[0]
		if event.ID == "" {
			t.Error("Event ID should not be empty")
		}
		if event.Source != "labs-service" {
			t.Errorf("Expected source 'labs-service', got '%s'", event.Source)
		}
		if event.Version != "1.0" {
			t.Errorf("Expected version '1.0', got '%s'", event.Version)
		}
		if event.Timestamp.IsZero() {
			t.Error("Event timestamp should not be zero")
		}
	})

	t.Run("Validation_Rejects_Empty_Title", func(t *testing.T) {
		mockPublisher.ClearEvents()

		_, err := service.Notify(ctx, "user-1", &NotificationRequest{
			Type:    models.NotificationInfo,
			Message: "No title",
		})
		if err == nil {
			t.Fatal("Expected validation error for missing title")
		}
		if len(mockPublisher.GetPublishedEvents()) != 0 {
			t.Error("No event should be published for invalid requests")
		}
	})
}

// Integration test example (would require actual Kafka)
func TestNotificationEventService_KafkaIntegration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test")
	}

	t.Skip("Requires a running Kafka broker")
}

func BenchmarkNotificationEventService_PublishEvent(b *testing.B) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	mockPublisher := events.NewMockEventPublisher(logger)
	v := validator.New()
	mockRepo := &MockNotificationRepository{}

	service := &notificationEventService{
		repo:           mockRepo,
		eventPublisher: mockPublisher,
		logger:         logger,
		validator:      v,
	}

	ctx := context.Background()
	userIDs := []string{"user-1", "user-2", "user-3"}
	notification := &NotificationRequest{
		Type:    models.NotificationInfo,
		Title:   "Benchmark Test",
		Message: "Benchmark message",
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := service.SendBulkNotification(ctx, userIDs, notification); err != nil {
			b.Fatalf("Failed to send notification: %v", err)
		}
	}
}
