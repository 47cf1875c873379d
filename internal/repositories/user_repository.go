package repositories

import (
	"context"

	"github.com/oyna-edu/gameplay-service/internal/models"
)

// UserRepository interface for user operations (minimal; this service is not
// the owner of user data)
type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	HasRole(ctx context.Context, id string, role models.UserRole) (bool, error)
}
