package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/oyna-edu/gameplay-service/internal/models"
	"github.com/oyna-edu/gameplay-service/internal/repositories"
)

// Attempts are write-once rows on the hot submission path; nothing here is
// worth caching.
type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a *AttemptPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return a.db
}

// Create inserts the attempt row. A gorm.ErrDuplicatedKey here means a
// concurrent submission for the same question won the race; callers treat
// that as already-answered, not as a failure.
func (a *AttemptPostgreSQL) Create(ctx context.Context, tx *gorm.DB, attempt *models.QuestionAttempt) error {
	db := a.getDB(tx)
	return db.WithContext(ctx).Create(attempt).Error
}

func (a *AttemptPostgreSQL) CreateTestAnswers(ctx context.Context, tx *gorm.DB, answers []models.TestAnswer) error {
	if len(answers) == 0 {
		return nil
	}
	db := a.getDB(tx)
	return db.WithContext(ctx).Create(&answers).Error
}

func (a *AttemptPostgreSQL) CountByParticipant(ctx context.Context, tx *gorm.DB, participantID uint) (int64, error) {
	db := a.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.QuestionAttempt{}).
		Where("participant_id = ?", participantID).
		Count(&count).Error
	return count, err
}

func (a *AttemptPostgreSQL) ExistsForQuestion(ctx context.Context, tx *gorm.DB, participantID, questionID uint) (bool, error) {
	db := a.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.QuestionAttempt{}).
		Where("participant_id = ? AND question_id = ?", participantID, questionID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (a *AttemptPostgreSQL) ListByParticipant(ctx context.Context, tx *gorm.DB, participantID uint) ([]*models.QuestionAttempt, error) {
	db := a.getDB(tx)
	var attempts []*models.QuestionAttempt
	if err := db.WithContext(ctx).
		Where("participant_id = ?", participantID).
		Preload("Question").
		Preload("Question.Options").
		Order("created_at ASC, id ASC").
		Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}
