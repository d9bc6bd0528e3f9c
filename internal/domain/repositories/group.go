package repositories

import (
	"context"

	"docvault/internal/domain/models"
)

// GroupRepository defines data access operations for groups.
type GroupRepository interface {
	Create(ctx context.Context, group *models.Group) error

	GetByID(ctx context.Context, id string) (*models.Group, error)

	// GetByName resolves a group by its unique name.
	GetByName(ctx context.Context, name string) (*models.Group, error)

	List(ctx context.Context) ([]models.Group, error)

	// GetByIDs resolves a batch of group IDs, skipping missing ones.
	GetByIDs(ctx context.Context, ids []string) ([]models.Group, error)

	ListArchived(ctx context.Context) ([]models.Group, error)

	// Rename updates the group's name.
	Rename(ctx context.Context, id, name string) error

	// SetArchived flips the archive flag on the group row only; the
	// folder/file cascades are separate calls so the service can wrap
	// all three in one transaction.
	SetArchived(ctx context.Context, id string, archived bool) error
}
