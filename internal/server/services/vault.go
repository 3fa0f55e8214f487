package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/cryptox"
	"github.com/dmitrijs2005/passvault/internal/server/models"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/repomanager"
	"github.com/google/uuid"
)

// EntryView is the outward representation of a vault entry: the secret is
// decrypted, and ownerID/nonce/ciphertext are never exposed.
type EntryView struct {
	ID         string
	Service    string
	Credential string
	Password   string
}

// VaultService implements the credential vault. Every operation takes the
// owner id as an explicit argument; nothing is read from ambient state, so
// the ownership contract stays auditable. All lookups are scoped by
// (entry id, owner id) and a foreign entry is indistinguishable from a
// missing one.
type VaultService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	key         []byte
	cache       *ListCache
}

// NewVaultService constructs a VaultService. The key is the process-wide
// AES key decoded once at startup.
func NewVaultService(db *sql.DB, m repomanager.RepositoryManager, key []byte, cache *ListCache) *VaultService {
	return &VaultService{
		db:          db,
		repomanager: m,
		key:         key,
		cache:       cache,
	}
}

func (s *VaultService) decryptView(entry *models.Entry) (*EntryView, error) {
	plaintext, err := cryptox.Decrypt(entry.Ciphertext, entry.Nonce, s.key)
	if err != nil {
		// corruption or key mismatch, never downgraded to an empty secret
		return nil, err
	}
	return &EntryView{
		ID:         entry.ID,
		Service:    entry.Service,
		Credential: entry.Credential,
		Password:   string(plaintext),
	}, nil
}

// Create encrypts the secret and persists a new entry owned by ownerID.
// The returned view carries the secret decrypted back from the stored
// ciphertext, so the client gets a round-trip confirmation. Encryption
// failure aborts the operation with nothing persisted.
func (s *VaultService) Create(ctx context.Context, ownerID, service, credential, password string) (*EntryView, error) {
	exists, err := s.repomanager.Users(s.db).Exists(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error checking owner: %w", err)
	}
	if !exists {
		return nil, common.ErrOwnerNotFound
	}

	ciphertext, nonce, err := cryptox.Encrypt([]byte(password), s.key)
	if err != nil {
		return nil, err
	}

	entry := &models.Entry{
		ID:         uuid.NewString(),
		UserID:     ownerID,
		Service:    service,
		Credential: credential,
		Ciphertext: ciphertext,
		Nonce:      nonce,
	}

	saved, err := s.repomanager.Entries(s.db).Create(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("error creating entry: %w", err)
	}

	view, err := s.decryptView(saved)
	if err != nil {
		return nil, err
	}

	// invalidate before acknowledging the write
	s.cache.Invalidate(ownerID)

	return view, nil
}

// List returns every entry owned by ownerID with secrets decrypted. A
// decrypt failure on any record fails the whole call: silently skipping an
// entry would mask data corruption. Results are served from the per-owner
// cache when fresh.
func (s *VaultService) List(ctx context.Context, ownerID string) ([]*EntryView, error) {
	if views, ok := s.cache.Get(ownerID); ok {
		return views, nil
	}

	exists, err := s.repomanager.Users(s.db).Exists(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error checking owner: %w", err)
	}
	if !exists {
		return nil, common.ErrOwnerNotFound
	}

	entries, err := s.repomanager.Entries(s.db).ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("error listing entries: %w", err)
	}

	views := make([]*EntryView, 0, len(entries))
	for _, entry := range entries {
		view, err := s.decryptView(entry)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}

	s.cache.Set(ownerID, views)

	return views, nil
}

// Get returns one entry if it exists and is owned by ownerID, otherwise
// common.ErrEntryNotFound.
func (s *VaultService) Get(ctx context.Context, ownerID, entryID string) (*EntryView, error) {
	entry, err := s.repomanager.Entries(s.db).GetByIDAndOwner(ctx, entryID, ownerID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrEntryNotFound
		}
		return nil, fmt.Errorf("error getting entry: %w", err)
	}

	return s.decryptView(entry)
}

// Update re-encrypts the secret with a freshly generated nonce and
// overwrites service, credential, ciphertext, and nonce on the owned entry.
func (s *VaultService) Update(ctx context.Context, ownerID, entryID, service, credential, password string) (*EntryView, error) {
	entry, err := s.repomanager.Entries(s.db).GetByIDAndOwner(ctx, entryID, ownerID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrEntryNotFound
		}
		return nil, fmt.Errorf("error getting entry: %w", err)
	}

	ciphertext, nonce, err := cryptox.Encrypt([]byte(password), s.key)
	if err != nil {
		return nil, err
	}

	entry.Service = service
	entry.Credential = credential
	entry.Ciphertext = ciphertext
	entry.Nonce = nonce

	if err := s.repomanager.Entries(s.db).Update(ctx, entry); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrEntryNotFound
		}
		return nil, fmt.Errorf("error updating entry: %w", err)
	}

	view, err := s.decryptView(entry)
	if err != nil {
		return nil, err
	}

	s.cache.Invalidate(ownerID)

	return view, nil
}

// Delete removes the owned entry. The ownership check and the removal are a
// single repository operation, never a separate read followed by a delete.
func (s *VaultService) Delete(ctx context.Context, ownerID, entryID string) error {
	err := s.repomanager.Entries(s.db).DeleteByIDAndOwner(ctx, entryID, ownerID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrEntryNotFound
		}
		return fmt.Errorf("error deleting entry: %w", err)
	}

	s.cache.Invalidate(ownerID)

	return nil
}
