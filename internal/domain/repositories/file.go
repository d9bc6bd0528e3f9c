package repositories

import (
	"context"

	"docvault/internal/domain/models"
)

// FileRepository defines data access operations for file records.
type FileRepository interface {
	Create(ctx context.Context, file *models.File) error

	GetByID(ctx context.Context, id string) (*models.File, error)

	// ListChildren returns files whose logical path sits exactly one
	// segment below logicalPrefix, scoped to the group.
	ListChildren(ctx context.Context, groupID, logicalPrefix string) ([]models.File, error)

	// ListByArchived returns all files filtered on the archive flag.
	ListByArchived(ctx context.Context, archived bool) ([]models.File, error)

	// GetByIDs resolves a batch of file IDs, skipping missing ones.
	GetByIDs(ctx context.Context, ids []string) ([]models.File, error)

	// SetPermissions replaces the file's per-user permission entries.
	SetPermissions(ctx context.Context, id string, perms []models.FilePermission) error

	SetArchived(ctx context.Context, id string, archived bool) error

	// SetArchivedByGroup flips the archive flag on every file in the
	// group. Part of the group cascade; call inside a transaction.
	SetArchivedByGroup(ctx context.Context, groupID string, archived bool) error

	// RewritePathPrefix replaces oldPrefix with newPrefix on every file
	// path in the group. Used when a group is renamed.
	RewritePathPrefix(ctx context.Context, groupID, oldPrefix, newPrefix string) error
}
