package repositories

import (
	"context"

	"docvault/internal/domain/models"
)

// FolderRepository defines data access operations for folders.
type FolderRepository interface {
	// Create inserts a folder. Fails with ErrConflict if a sibling with
	// the same name already exists under the same parent.
	Create(ctx context.Context, folder *models.Folder) error

	GetByID(ctx context.Context, id string) (*models.Folder, error)

	// GetRoot returns the group's root folder (parent_id IS NULL).
	GetRoot(ctx context.Context, groupID string) (*models.Folder, error)

	// ListChildren returns folders whose materialized path sits exactly
	// one segment below logicalPrefix, scoped to the group.
	ListChildren(ctx context.Context, groupID, logicalPrefix string) ([]models.Folder, error)

	ListArchived(ctx context.Context) ([]models.Folder, error)

	// GetByIDs resolves a batch of folder IDs, skipping missing ones.
	GetByIDs(ctx context.Context, ids []string) ([]models.Folder, error)

	// SetPermissions replaces the folder's group permission entries.
	SetPermissions(ctx context.Context, id string, perms []models.FolderPermission) error

	SetArchived(ctx context.Context, id string, archived bool) error

	// SetArchivedByGroup flips the archive flag on every folder in the
	// group. Part of the group cascade; call inside a transaction.
	SetArchivedByGroup(ctx context.Context, groupID string, archived bool) error

	// RewritePathPrefix replaces oldPrefix with newPrefix on every
	// folder path in the group. Used when a group is renamed.
	RewritePathPrefix(ctx context.Context, groupID, oldPrefix, newPrefix string) error

	// Rename updates the root folder's name on group rename.
	Rename(ctx context.Context, id, name string) error
}
