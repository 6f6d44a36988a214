package interfaces

import (
	"context"

	"swyft/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)

	// GetDriverByEmail resolves a driver account; non-driver roles yield
	// models.ErrDriverNotFound.
	GetDriverByEmail(ctx context.Context, email string) (*models.User, error)

	ListDrivers(ctx context.Context) ([]*models.DriverSummary, error)
}
