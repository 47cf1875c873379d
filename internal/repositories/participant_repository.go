package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/oyna-edu/gameplay-service/internal/models"
)

// ParticipantRepository interface for session players
type ParticipantRepository interface {
	Create(ctx context.Context, tx *gorm.DB, participant *models.Participant) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Participant, error)
	GetByToken(ctx context.Context, tx *gorm.DB, token string) (*models.Participant, error)

	// GetByIDForUpdate takes a row lock; call only inside a transaction.
	// Serializes concurrent submissions from the same participant.
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Participant, error)

	Update(ctx context.Context, tx *gorm.DB, participant *models.Participant) error
	ListBySession(ctx context.Context, tx *gorm.DB, sessionID uint) ([]*models.Participant, error)

	// NicknamesBySession returns the taken nicknames, the input to suffix
	// deduplication on join.
	NicknamesBySession(ctx context.Context, tx *gorm.DB, sessionID uint) ([]string, error)

	CountBySession(ctx context.Context, tx *gorm.DB, sessionID uint) (int64, error)
	Leaderboard(ctx context.Context, tx *gorm.DB, sessionID uint) ([]*LeaderboardEntry, error)
}

// AttemptRepository interface for per-question outcomes
type AttemptRepository interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *models.QuestionAttempt) error
	CreateTestAnswers(ctx context.Context, tx *gorm.DB, answers []models.TestAnswer) error

	// CountByParticipant is the progress cursor: attempts recorded so far
	CountByParticipant(ctx context.Context, tx *gorm.DB, participantID uint) (int64, error)

	ExistsForQuestion(ctx context.Context, tx *gorm.DB, participantID, questionID uint) (bool, error)

	// ListByParticipant returns attempts with questions and selected options
	// preloaded, ordered by creation, for the result review.
	ListByParticipant(ctx context.Context, tx *gorm.DB, participantID uint) ([]*models.QuestionAttempt, error)
}
