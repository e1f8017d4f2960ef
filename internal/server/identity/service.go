// Package identity implements the server-side session logic: credential
// verification, upsert-on-login resolution of federated identities, token
// minting and refresh, and the plain user-record operations.
package identity

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/socialride/identity/internal/common"
	"github.com/socialride/identity/internal/cryptox"
	"github.com/socialride/identity/internal/dbx"
	"github.com/socialride/identity/internal/server/config"
	"github.com/socialride/identity/internal/server/models"
	"github.com/socialride/identity/internal/server/policy"
	"github.com/socialride/identity/internal/server/repositories/repomanager"
	"github.com/socialride/identity/internal/server/token"
)

// dummySalt keeps the denial path for unknown usernames doing the same
// derivation work as the wrong-password path.
var dummySalt = make([]byte, cryptox.SaltSize)

// Session bundles the authenticated user with a freshly minted token pair.
type Session struct {
	User         *models.User
	AccessToken  string
	RefreshToken string
}

// Service provides the identity operations backed by the user store and the
// token issuer.
type Service struct {
	db                   *sql.DB
	repomanager          repomanager.RepositoryManager
	issuer               *token.Issuer
	policies             *policy.Evaluator
	accessTokenTTL       time.Duration
	legacyAccessTokenTTL time.Duration
}

// NewService constructs a Service from the server config.
func NewService(db *sql.DB, m repomanager.RepositoryManager, issuer *token.Issuer, policies *policy.Evaluator, cfg *config.Config) *Service {
	return &Service{
		db:                   db,
		repomanager:          m,
		issuer:               issuer,
		policies:             policies,
		accessTokenTTL:       cfg.AccessTokenTTL,
		legacyAccessTokenTTL: cfg.LegacyAccessTokenTTL,
	}
}

// Authenticate verifies a local username/password pair and returns a new
// session. Unknown usernames and wrong passwords are indistinguishable to the
// caller: both cost one derivation and both yield ErrInvalidCredentials.
func (s *Service) Authenticate(ctx context.Context, username, password string) (*Session, error) {
	repo := s.repomanager.Users(s.db)
	user, cred, err := repo.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			cryptox.HashPassword([]byte(password), dummySalt)
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}
	if !cryptox.VerifyPassword([]byte(password), cred.Salt, cred.Hash) {
		return nil, common.ErrInvalidCredentials
	}
	return s.mintSession(user, s.legacyAccessTokenTTL)
}

// AuthenticateExternal resolves an already-verified federated identity to a
// user record, creating or merging it in one atomic step, and returns a new
// session.
func (s *Service) AuthenticateExternal(ctx context.Context, ext models.ExternalIdentity) (*Session, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.Upsert(ctx, ext)
	if err != nil {
		return nil, err
	}
	return s.mintSession(user, s.accessTokenTTL)
}

// Refresh redeems a refresh token for a new access token. The refresh token
// itself stays valid; nothing is rotated or persisted.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.policies.Evaluate(policy.RefreshOnly, refreshToken)
	if err != nil {
		return "", err
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.FindByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.ErrUnknownSubject
		}
		return "", err
	}
	return s.issuer.IssueAccessToken(user, s.accessTokenTTL)
}

// Register creates a local user with a username/password credential. The user
// row and the credential row land in one transaction.
func (s *Service) Register(ctx context.Context, user *models.User, username, password string) (*models.User, error) {
	exists, err := s.repomanager.Users(s.db).ExistsByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, common.ErrUsernameTaken
	}

	salt, err := cryptox.GenerateSalt()
	if err != nil {
		return nil, common.ErrInternal
	}
	cred := &models.Credential{
		Username: username,
		Salt:     salt,
		Hash:     cryptox.HashPassword([]byte(password), salt),
	}

	user.ID = uuid.NewString()
	var created *models.User
	if err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var insErr error
		created, insErr = s.repomanager.Users(tx).Insert(ctx, user, cred)
		return insErr
	}); err != nil {
		if errors.Is(err, common.ErrUsernameTaken) {
			return nil, common.ErrUsernameTaken
		}
		return nil, err
	}
	return created, nil
}

// Available reports whether a username is free to register.
func (s *Service) Available(ctx context.Context, username string) (bool, error) {
	exists, err := s.repomanager.Users(s.db).ExistsByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// GetByID returns the user record for id.
func (s *Service) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.repomanager.Users(s.db).FindByID(ctx, id)
}

// List returns every user record.
func (s *Service) List(ctx context.Context) ([]*models.User, error) {
	return s.repomanager.Users(s.db).List(ctx)
}

// Update replaces the mutable profile fields of an existing user.
func (s *Service) Update(ctx context.Context, user *models.User) (*models.User, error) {
	return s.repomanager.Users(s.db).Update(ctx, user)
}

// Delete removes a user record.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repomanager.Users(s.db).Delete(ctx, id)
}

func (s *Service) mintSession(user *models.User, ttl time.Duration) (*Session, error) {
	access, err := s.issuer.IssueAccessToken(user, ttl)
	if err != nil {
		return nil, common.ErrInternal
	}
	refresh, err := s.issuer.IssueRefreshToken(user)
	if err != nil {
		return nil, common.ErrInternal
	}
	return &Session{User: user, AccessToken: access, RefreshToken: refresh}, nil
}
