package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/SAP-F-2025/training-service/internal/models"
)

// UserRepository stores local user accounts.
type UserRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	// GetByIDForUpdate reads the user and holds a row lock on it until tx
	// ends. Promotions use it to serialize per-user profile creation.
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id string) (*models.User, error)
	Create(ctx context.Context, tx *gorm.DB, user *models.User) error
	UpdateRole(ctx context.Context, tx *gorm.DB, userID string, roleID uint) error
	SetInstructureRef(ctx context.Context, tx *gorm.DB, userID string, instructureID *uint) error

	// CountByInstructure counts users whose back-reference points at the
	// instructor profile.
	CountByInstructure(ctx context.Context, tx *gorm.DB, instructureID uint) (int64, error)
	// ReassignFromInstructure clears the back-reference of every user
	// pointing at the instructor profile and moves them to roleID.
	ReassignFromInstructure(ctx context.Context, tx *gorm.DB, instructureID, roleID uint) (int64, error)

	Delete(ctx context.Context, tx *gorm.DB, id string) error
}

// IdentityDirectory looks up accounts held by the external identity
// provider. It is consulted when a verified caller has no local user yet.
type IdentityDirectory interface {
	Lookup(ctx context.Context, userID string) (*models.User, error)
}
