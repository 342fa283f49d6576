package repositories

import (
	"context"

	"tokoadmin/internal/models"
)

// UserRepository defines the interface for user data access.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uint) (*models.User, error)
	// EmailTakenByOther reports whether email belongs to a user other than id.
	EmailTakenByOther(ctx context.Context, email string, id uint) (bool, error)
	Update(ctx context.Context, user *models.User) error
}
