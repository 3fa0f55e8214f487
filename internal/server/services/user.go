// Package services contains server-side business logic: local identity
// management, identity resolution for verified tokens, and the credential
// vault itself.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/dbx"
	"github.com/dmitrijs2005/passvault/internal/server/auth"
	"github.com/dmitrijs2005/passvault/internal/server/config"
	"github.com/dmitrijs2005/passvault/internal/server/models"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// UserView is the outward representation of an identity. It never carries
// the password hash.
type UserView struct {
	ID    string
	Name  string
	Email string
}

// UserService provides identity-related operations:
// - Register: create users with a bcrypt-hashed password
// - Login: verify credentials and mint a signed token
// - GetByID / Delete: profile lookup and account removal
type UserService struct {
	db                    *sql.DB
	repomanager           repomanager.RepositoryManager
	cache                 *ListCache
	jwtSecret             []byte
	tokenValidityDuration time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cache *ListCache, cfg *config.Config) *UserService {
	return &UserService{
		db:                    db,
		repomanager:           m,
		cache:                 cache,
		jwtSecret:             []byte(cfg.SecretKey),
		tokenValidityDuration: cfg.TokenValidityDuration,
	}
}

func toUserView(u *models.User) *UserView {
	return &UserView{ID: u.ID, Name: u.Name, Email: u.Email}
}

// Register creates a new user with the given name, email, and password.
// A duplicate email yields common.ErrEmailTaken.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*UserView, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.Create(ctx, &models.User{Name: name, Email: email, PasswordHash: string(hash)})
	if err != nil {
		if errors.Is(err, common.ErrEmailTaken) {
			return nil, common.ErrEmailTaken
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	return toUserView(user), nil
}

// Login verifies the password against the stored bcrypt hash and, on
// success, returns a signed token plus the user's profile. Unknown email,
// wrong password, and auto-provisioned identities all produce the same
// common.ErrUnauthorized so existence is not leaked.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *UserView, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", nil, common.ErrUnauthorized
		}
		return "", nil, common.ErrInternal
	}

	if !user.LocallyAuthenticable() {
		return "", nil, common.ErrUnauthorized
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, common.ErrUnauthorized
	}

	token, err := auth.GenerateToken(user.ID, user.Email, s.jwtSecret, s.tokenValidityDuration)
	if err != nil {
		return "", nil, common.ErrInternal
	}

	return token, toUserView(user), nil
}

// GetByID returns the profile for the given identity.
func (s *UserService) GetByID(ctx context.Context, id string) (*UserView, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error getting user: %w", err)
	}

	return toUserView(user), nil
}

// Delete removes the identity and all of its vault entries in a single
// transaction, then invalidates the owner's cached list.
func (s *UserService) Delete(ctx context.Context, id string) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Entries(tx).DeleteByOwner(ctx, id); err != nil {
			return err
		}
		return s.repomanager.Users(tx).Delete(ctx, id)
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrNotFound
		}
		return fmt.Errorf("error deleting user: %w", err)
	}

	s.cache.Invalidate(id)

	return nil
}
