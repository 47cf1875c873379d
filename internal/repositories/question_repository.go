package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/oyna-edu/gameplay-service/internal/models"
)

// QuestionRepository interface for question reads during play. Authoring
// lives in a different service; this one only renders and grades.
type QuestionRepository interface {
	// GetByID loads the question with its options
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error)
}
