package repositories

import "context"

// Repository aggregates all domain repositories behind one interface
type Repository interface {
	// Game task domain
	GameTask() GameTaskRepository

	// Live session domain
	Session() SessionRepository
	Participant() ParticipantRepository
	Attempt() AttemptRepository

	// Question domain
	Question() QuestionRepository

	// User domain (read-only, owned by Casdoor)
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
