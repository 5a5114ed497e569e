package repositories

import "context"

// Repository aggregates all repository interfaces
type Repository interface {
	// Lab domain
	Lab() LabRepository
	Challenge() ChallengeRepository

	// Submission domain
	Submission() SubmissionRepository
	Progress() ProgressRepository

	// Engagement domain
	Review() ReviewRepository
	Statistics() StatisticsRepository
	Notification() NotificationRepository
	Profile() ProfileRepository

	// User domain (read-only for labs service)
	User() UserRepository

	// Transaction support
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	// Health check
	Ping(ctx context.Context) error

	// Close connections
	Close() error
}

// RepositoryManager interface for managing repository lifecycle
type RepositoryManager interface {
	// Initialize repositories with database connections
	Initialize() error

	// Get repository instance
	GetRepository() Repository

	// Health check for all repositories
	HealthCheck(ctx context.Context) error

	// Graceful shutdown
	Shutdown(ctx context.Context) error
}
