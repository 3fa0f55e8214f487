package entries

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/server/models"
)

// InMemoryRepository is a map-backed Repository used in tests.
type InMemoryRepository struct {
	mu      sync.Mutex
	entries map[string]*models.Entry
	order   []string
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{entries: make(map[string]*models.Entry)}
}

func copyEntry(e *models.Entry) *models.Entry {
	c := *e
	c.Ciphertext = append([]byte(nil), e.Ciphertext...)
	c.Nonce = append([]byte(nil), e.Nonce...)
	return &c
}

func (r *InMemoryRepository) Create(ctx context.Context, entry *models.Entry) (*models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	saved := copyEntry(entry)
	now := time.Now()
	saved.CreatedAt = now
	saved.UpdatedAt = now
	r.entries[saved.ID] = saved
	r.order = append(r.order, saved.ID)

	return copyEntry(saved), nil
}

func (r *InMemoryRepository) GetByIDAndOwner(ctx context.Context, id, ownerID string) (*models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok || entry.UserID != ownerID {
		return nil, common.ErrNotFound
	}
	return copyEntry(entry), nil
}

func (r *InMemoryRepository) ListByOwner(ctx context.Context, ownerID string) ([]*models.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var result []*models.Entry
	for _, id := range r.order {
		if entry, ok := r.entries[id]; ok && entry.UserID == ownerID {
			result = append(result, copyEntry(entry))
		}
	}
	return result, nil
}

func (r *InMemoryRepository) Update(ctx context.Context, entry *models.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.entries[entry.ID]
	if !ok || existing.UserID != entry.UserID {
		return common.ErrNotFound
	}

	updated := copyEntry(entry)
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now()
	r.entries[entry.ID] = updated

	return nil
}

func (r *InMemoryRepository) DeleteByIDAndOwner(ctx context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.entries[id]
	if !ok || entry.UserID != ownerID {
		return common.ErrNotFound
	}
	delete(r.entries, id)
	return nil
}

func (r *InMemoryRepository) DeleteByOwner(ctx context.Context, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, entry := range r.entries {
		if entry.UserID == ownerID {
			delete(r.entries, id)
		}
	}
	return nil
}
