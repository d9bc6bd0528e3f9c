package repositories

import (
	"context"

	"docvault/internal/domain/models"
)

// UserRepository defines data access operations for users.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error

	GetByID(ctx context.Context, id string) (*models.User, error)

	GetByUsername(ctx context.Context, username string) (*models.User, error)

	List(ctx context.Context) ([]models.User, error)

	ListArchived(ctx context.Context) ([]models.User, error)

	Count(ctx context.Context) (int, error)

	// Update persists mutable account fields (username, role,
	// password hash).
	Update(ctx context.Context, user *models.User) error

	// UpdatePermissions persists the global flags and group set.
	UpdatePermissions(ctx context.Context, id string, canUpload, canDownload *bool, groupIDs []string) error

	// AddGroups adds the given groups to the user, skipping duplicates.
	AddGroups(ctx context.Context, id string, groupIDs []string) error

	// AddGroupToRole adds a group to every user holding one of the given
	// roles. Used so admins automatically join new groups.
	AddGroupToRole(ctx context.Context, groupID string, roles []string) error

	// SetFavorites replaces the user's favorites list.
	SetFavorites(ctx context.Context, id string, favorites []models.Favorite) error

	SetArchived(ctx context.Context, id string, archived bool) error
}
