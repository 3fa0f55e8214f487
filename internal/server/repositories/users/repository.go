package users

import (
	"context"

	"github.com/dmitrijs2005/passvault/internal/server/models"
)

type Repository interface {
	// Create inserts a new user. A duplicate email yields common.ErrEmailTaken.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	Exists(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
	// FindOrCreateByEmail returns the user with the given email, creating it
	// atomically if absent. Concurrent callers for the same email all
	// observe the same single record.
	FindOrCreateByEmail(ctx context.Context, email, name, passwordHash string) (*models.User, error)
}
