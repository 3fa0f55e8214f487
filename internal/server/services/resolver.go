package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passvault/internal/common"
	"github.com/dmitrijs2005/passvault/internal/server/auth"
	"github.com/dmitrijs2005/passvault/internal/server/models"
	"github.com/dmitrijs2005/passvault/internal/server/repositories/repomanager"
)

// ResolverService maps the claims of an already-verified token to a stable
// local identity, auto-provisioning one when no identity with the claimed
// email exists yet. Callers must verify the token before resolving.
type ResolverService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewResolverService(db *sql.DB, m repomanager.RepositoryManager) *ResolverService {
	return &ResolverService{db: db, repomanager: m}
}

// Resolve returns the owner id for the given verified claims.
//
// Tokens issued by this server carry the identity id as subject; that id is
// honored as long as the identity still exists. Otherwise resolution falls
// back to the email claim: an existing identity with that email wins, and a
// missing one is created atomically with the auto-provisioned credential
// proof, so two concurrent first-time resolutions for the same email yield
// exactly one identity.
//
// Claims with no usable email yield common.ErrUnresolvedIdentity and the
// request must be treated as unauthenticated.
func (s *ResolverService) Resolve(ctx context.Context, claims *auth.Claims) (string, error) {
	repo := s.repomanager.Users(s.db)

	if claims.Subject != "" {
		exists, err := repo.Exists(ctx, claims.Subject)
		if err != nil {
			return "", fmt.Errorf("error checking subject: %w", err)
		}
		if exists {
			return claims.Subject, nil
		}
	}

	if claims.Email == "" {
		return "", common.ErrUnresolvedIdentity
	}

	name := claims.Name
	if name == "" {
		name = claims.Email
	}

	user, err := repo.FindOrCreateByEmail(ctx, claims.Email, name, models.AutoProvisionedProof)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrUnresolvedIdentity
		}
		return "", fmt.Errorf("error resolving identity: %w", err)
	}

	return user.ID, nil
}
