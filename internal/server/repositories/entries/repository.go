package entries

import (
	"context"

	"github.com/dmitrijs2005/passvault/internal/server/models"
)

// Repository stores vault entries. Every read and delete that takes an
// ownerID is scoped by it: an entry owned by someone else is reported as
// common.ErrNotFound, identically to an entry that does not exist.
type Repository interface {
	Create(ctx context.Context, entry *models.Entry) (*models.Entry, error)
	GetByIDAndOwner(ctx context.Context, id, ownerID string) (*models.Entry, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*models.Entry, error)
	Update(ctx context.Context, entry *models.Entry) error
	DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error
	DeleteByOwner(ctx context.Context, ownerID string) error
}
