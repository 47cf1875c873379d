package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/oyna-edu/gameplay-service/internal/models"
)

// GameTaskRepository interface for game task reads. Authoring lives in the
// content service; this service only runs published tasks.
type GameTaskRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.GameTask, error)

	// GetWithQuestions loads the task with its question links in play order,
	// options included.
	GetWithQuestions(ctx context.Context, tx *gorm.DB, id uint) (*models.GameTask, error)

	List(ctx context.Context, tx *gorm.DB, filters GameTaskFilters) ([]*models.GameTask, int64, error)

	ExistsByID(ctx context.Context, tx *gorm.DB, id uint) (bool, error)
	IsOwner(ctx context.Context, tx *gorm.DB, id uint, userID string) (bool, error)
	QuestionCount(ctx context.Context, tx *gorm.DB, id uint) (int64, error)
}
