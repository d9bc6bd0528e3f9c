package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
)

// PostgresFolderRepository implements the FolderRepository interface
type PostgresFolderRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFolderRepository creates a new folder repository
func NewFolderRepository(config *RepositoryConfig) repositories.FolderRepository {
	return &PostgresFolderRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const folderColumns = "id, name, path, parent_id, group_id, permissions, is_archived, archived_at, created_at"

func scanFolder(row interface{ Scan(...interface{}) error }) (*models.Folder, error) {
	var f models.Folder
	err := row.Scan(&f.ID, &f.Name, &f.Path, &f.ParentID, &f.GroupID,
		&f.Permissions, &f.IsArchived, &f.ArchivedAt, &f.CreatedAt)
	if err != nil {
		return nil, err
	}
	if f.Permissions == nil {
		f.Permissions = []models.FolderPermission{}
	}
	return &f, nil
}

// Create inserts a folder. Sibling names are unique per parent; both the
// application-level probe and the table constraint map duplicates to a
// ConflictError carrying the existing folder's ID.
func (r *PostgresFolderRepository) Create(ctx context.Context, folder *models.Folder) error {
	existing, err := r.getByNameAndParent(ctx, folder.GroupID, folder.Name, folder.ParentID)
	if err != nil {
		return err
	}
	if existing != nil {
		return &domain.ConflictError{
			Message:      fmt.Sprintf("folder '%s' already exists", folder.Name),
			ResourceType: "folder",
			ResourceID:   existing.ID,
		}
	}

	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
	if folder.CreatedAt.IsZero() {
		folder.CreatedAt = time.Now()
	}
	if folder.Permissions == nil {
		folder.Permissions = []models.FolderPermission{}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, path, parent_id, group_id, permissions, is_archived, archived_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, r.tables.Folders)

	exec := GetExecutor(ctx, r.pool)
	_, err = exec.Exec(ctx, query,
		folder.ID, folder.Name, folder.Path, folder.ParentID, folder.GroupID,
		folder.Permissions, folder.IsArchived, folder.ArchivedAt, folder.CreatedAt)
	if err != nil {
		if isPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("folder '%s' already exists", folder.Name),
				ResourceType: "folder",
			}
		}
		return fmt.Errorf("create folder: %w", err)
	}
	return nil
}

// GetByID retrieves a folder by ID
func (r *PostgresFolderRepository) GetByID(ctx context.Context, id string) (*models.Folder, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, folderColumns, r.tables.Folders)

	exec := GetExecutor(ctx, r.pool)
	folder, err := scanFolder(exec.QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get folder: %w", err)
	}
	return folder, nil
}

// GetRoot returns the group's root folder.
func (r *PostgresFolderRepository) GetRoot(ctx context.Context, groupID string) (*models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE group_id = $1 AND parent_id IS NULL
	`, folderColumns, r.tables.Folders)

	exec := GetExecutor(ctx, r.pool)
	folder, err := scanFolder(exec.QueryRow(ctx, query, groupID))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("root folder for group %s: %w", groupID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get root folder: %w", err)
	}
	return folder, nil
}

// ListChildren returns non-archived folders exactly one path segment
// below logicalPrefix. The anchored LIKE pair keeps this a prefix-index
// scan rather than a tree walk.
func (r *PostgresFolderRepository) ListChildren(ctx context.Context, groupID, logicalPrefix string) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE group_id = $1
		  AND path LIKE $2 || '/%%'
		  AND path NOT LIKE $2 || '/%%/%%'
		  AND NOT is_archived
		ORDER BY name ASC
	`, folderColumns, r.tables.Folders)

	return r.list(ctx, query, groupID, escapeLikePrefix(logicalPrefix))
}

// GetByIDs resolves a batch of folder IDs, skipping missing ones.
func (r *PostgresFolderRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Folder, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ANY($1) ORDER BY name ASC`, folderColumns, r.tables.Folders)
	return r.list(ctx, query, ids)
}

// ListArchived returns all archived folders.
func (r *PostgresFolderRepository) ListArchived(ctx context.Context) ([]models.Folder, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE is_archived ORDER BY path ASC
	`, folderColumns, r.tables.Folders)
	return r.list(ctx, query)
}

func (r *PostgresFolderRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Folder, error) {
	exec := GetExecutor(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var folders []models.Folder
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *folder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}
	return folders, nil
}

// SetPermissions replaces the folder's group permission entries.
func (r *PostgresFolderRepository) SetPermissions(ctx context.Context, id string, perms []models.FolderPermission) error {
	if perms == nil {
		perms = []models.FolderPermission{}
	}
	query := fmt.Sprintf(`UPDATE %s SET permissions = $1 WHERE id = $2`, r.tables.Folders)

	exec := GetExecutor(ctx, r.pool)
	result, err := exec.Exec(ctx, query, perms, id)
	if err != nil {
		return fmt.Errorf("set folder permissions: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// SetArchived flips the archive flag on a single folder. Folder-level
// archive does not cascade to descendants.
func (r *PostgresFolderRepository) SetArchived(ctx context.Context, id string, archived bool) error {
	query := fmt.Sprintf(`
		UPDATE %s SET is_archived = $1, archived_at = $2 WHERE id = $3
	`, r.tables.Folders)

	exec := GetExecutor(ctx, r.pool)
	result, err := exec.Exec(ctx, query, archived, archivedAt(archived), id)
	if err != nil {
		return fmt.Errorf("archive folder: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// SetArchivedByGroup flips the archive flag on every folder in the group.
func (r *PostgresFolderRepository) SetArchivedByGroup(ctx context.Context, groupID string, archived bool) error {
	query := fmt.Sprintf(`
		UPDATE %s SET is_archived = $1, archived_at = $2 WHERE group_id = $3
	`, r.tables.Folders)

	exec := GetExecutor(ctx, r.pool)
	if _, err := exec.Exec(ctx, query, archived, archivedAt(archived), groupID); err != nil {
		return fmt.Errorf("archive folders by group: %w", err)
	}
	return nil
}

// RewritePathPrefix rewrites materialized paths after a group rename.
func (r *PostgresFolderRepository) RewritePathPrefix(ctx context.Context, groupID, oldPrefix, newPrefix string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET path = $1 || substr(path, length($2) + 1)
		WHERE group_id = $3 AND (path = $2 OR path LIKE $4 || '/%%')
	`, r.tables.Folders)

	exec := GetExecutor(ctx, r.pool)
	if _, err := exec.Exec(ctx, query, newPrefix, oldPrefix, groupID, escapeLikePrefix(oldPrefix)); err != nil {
		return fmt.Errorf("rewrite folder paths: %w", err)
	}
	return nil
}

// Rename updates a folder's name.
func (r *PostgresFolderRepository) Rename(ctx context.Context, id, name string) error {
	query := fmt.Sprintf(`UPDATE %s SET name = $1 WHERE id = $2`, r.tables.Folders)

	exec := GetExecutor(ctx, r.pool)
	result, err := exec.Exec(ctx, query, name, id)
	if err != nil {
		return fmt.Errorf("rename folder: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// getByNameAndParent finds a sibling by name, or nil.
func (r *PostgresFolderRepository) getByNameAndParent(ctx context.Context, groupID, name string, parentID *string) (*models.Folder, error) {
	var query string
	var args []interface{}

	if parentID == nil {
		query = fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE group_id = $1 AND name = $2 AND parent_id IS NULL
		`, folderColumns, r.tables.Folders)
		args = append(args, groupID, name)
	} else {
		query = fmt.Sprintf(`
			SELECT %s FROM %s
			WHERE group_id = $1 AND name = $2 AND parent_id = $3
		`, folderColumns, r.tables.Folders)
		args = append(args, groupID, name, *parentID)
	}

	exec := GetExecutor(ctx, r.pool)
	folder, err := scanFolder(exec.QueryRow(ctx, query, args...))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, nil // Not found, not an error
		}
		return nil, fmt.Errorf("get folder by name and parent: %w", err)
	}
	return folder, nil
}
