package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/oyna-edu/gameplay-service/internal/models"
)

// SessionRepository interface for live session persistence
type SessionRepository interface {
	Create(ctx context.Context, tx *gorm.DB, session *models.GameTaskSession) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.GameTaskSession, error)
	GetByIDWithTask(ctx context.Context, tx *gorm.DB, id uint) (*models.GameTaskSession, error)

	// GetByPin resolves the join code students type in
	GetByPin(ctx context.Context, tx *gorm.DB, pin string) (*models.GameTaskSession, error)

	Update(ctx context.Context, tx *gorm.DB, session *models.GameTaskSession) error
	Delete(ctx context.Context, tx *gorm.DB, id uint) error
	List(ctx context.Context, tx *gorm.DB, filters SessionFilters) ([]*models.GameTaskSession, int64, error)

	CountByTaskAndStatus(ctx context.Context, tx *gorm.DB, gameTaskID uint, status models.SessionStatus) (int64, error)
	ExistsByPin(ctx context.Context, tx *gorm.DB, pin string) (bool, error)
	Stats(ctx context.Context, tx *gorm.DB, sessionID uint) (*SessionStats, error)
}
