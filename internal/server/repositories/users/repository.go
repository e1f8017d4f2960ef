package users

import (
	"context"

	"github.com/socialride/identity/internal/server/models"
)

// Repository is the user-record store consumed by the identity service.
// Implementations must provide atomic find-or-create (Upsert) and atomic
// update-by-id so two concurrent federated logins for a new identity cannot
// create duplicate records.
type Repository interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, *models.Credential, error)

	// Insert persists a new user; cred may be nil for federated identities.
	Insert(ctx context.Context, user *models.User, cred *models.Credential) (*models.User, error)

	// Upsert applies the merge-on-login semantics for a federated identity:
	// create the record if absent, otherwise overwrite only the supplied
	// non-empty fields.
	Upsert(ctx context.Context, ext models.ExternalIdentity) (*models.User, error)

	// Update replaces the stored profile fields of an existing user.
	Update(ctx context.Context, user *models.User) (*models.User, error)

	ExistsByUsername(ctx context.Context, username string) (bool, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*models.User, error)
}
