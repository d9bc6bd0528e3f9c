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

// PostgresFileRepository implements the FileRepository interface
type PostgresFileRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewFileRepository creates a new file repository
func NewFileRepository(config *RepositoryConfig) repositories.FileRepository {
	return &PostgresFileRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const fileColumns = "id, name, original_name, path, group_id, uploaded_by, file_type, size, uploaded_on, permissions, is_archived, archived_at"

func scanFile(row interface{ Scan(...interface{}) error }) (*models.File, error) {
	var f models.File
	err := row.Scan(&f.ID, &f.Name, &f.OriginalName, &f.Path, &f.GroupID, &f.UploadedBy,
		&f.FileType, &f.Size, &f.UploadedOn, &f.Permissions, &f.IsArchived, &f.ArchivedAt)
	if err != nil {
		return nil, err
	}
	if f.Permissions == nil {
		f.Permissions = []models.FilePermission{}
	}
	return &f, nil
}

// Create inserts a file record.
func (r *PostgresFileRepository) Create(ctx context.Context, file *models.File) error {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	if file.UploadedOn.IsZero() {
		file.UploadedOn = time.Now()
	}
	if file.Permissions == nil {
		file.Permissions = []models.FilePermission{}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, original_name, path, group_id, uploaded_by, file_type, size, uploaded_on, permissions, is_archived, archived_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`, r.tables.Files)

	exec := GetExecutor(ctx, r.pool)
	_, err := exec.Exec(ctx, query,
		file.ID, file.Name, file.OriginalName, file.Path, file.GroupID, file.UploadedBy,
		file.FileType, file.Size, file.UploadedOn, file.Permissions, file.IsArchived, file.ArchivedAt)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	return nil
}

// GetByID retrieves a file by ID
func (r *PostgresFileRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, fileColumns, r.tables.Files)

	exec := GetExecutor(ctx, r.pool)
	file, err := scanFile(exec.QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get file: %w", err)
	}
	return file, nil
}

// ListChildren returns non-archived files exactly one path segment below
// logicalPrefix.
func (r *PostgresFileRepository) ListChildren(ctx context.Context, groupID, logicalPrefix string) ([]models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE group_id = $1
		  AND path LIKE $2 || '/%%'
		  AND path NOT LIKE $2 || '/%%/%%'
		  AND NOT is_archived
		ORDER BY name ASC
	`, fileColumns, r.tables.Files)

	return r.list(ctx, query, groupID, escapeLikePrefix(logicalPrefix))
}

// ListByArchived returns all files filtered on the archive flag.
func (r *PostgresFileRepository) ListByArchived(ctx context.Context, archived bool) ([]models.File, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE is_archived = $1 ORDER BY uploaded_on DESC
	`, fileColumns, r.tables.Files)
	return r.list(ctx, query, archived)
}

// GetByIDs resolves a batch of file IDs, skipping missing ones.
func (r *PostgresFileRepository) GetByIDs(ctx context.Context, ids []string) ([]models.File, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`
		SELECT %s FROM %s WHERE id = ANY($1) ORDER BY name ASC
	`, fileColumns, r.tables.Files)
	return r.list(ctx, query, ids)
}

func (r *PostgresFileRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.File, error) {
	exec := GetExecutor(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []models.File
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file: %w", err)
		}
		files = append(files, *file)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate files: %w", err)
	}
	return files, nil
}

// SetPermissions replaces the file's per-user permission entries.
func (r *PostgresFileRepository) SetPermissions(ctx context.Context, id string, perms []models.FilePermission) error {
	if perms == nil {
		perms = []models.FilePermission{}
	}
	query := fmt.Sprintf(`UPDATE %s SET permissions = $1 WHERE id = $2`, r.tables.Files)

	exec := GetExecutor(ctx, r.pool)
	result, err := exec.Exec(ctx, query, perms, id)
	if err != nil {
		return fmt.Errorf("set file permissions: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// SetArchived flips the archive flag on a single file. The physical file
// stays on disk - archiving is logical only.
func (r *PostgresFileRepository) SetArchived(ctx context.Context, id string, archived bool) error {
	query := fmt.Sprintf(`
		UPDATE %s SET is_archived = $1, archived_at = $2 WHERE id = $3
	`, r.tables.Files)

	exec := GetExecutor(ctx, r.pool)
	result, err := exec.Exec(ctx, query, archived, archivedAt(archived), id)
	if err != nil {
		return fmt.Errorf("archive file: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// SetArchivedByGroup flips the archive flag on every file in the group.
func (r *PostgresFileRepository) SetArchivedByGroup(ctx context.Context, groupID string, archived bool) error {
	query := fmt.Sprintf(`
		UPDATE %s SET is_archived = $1, archived_at = $2 WHERE group_id = $3
	`, r.tables.Files)

	exec := GetExecutor(ctx, r.pool)
	if _, err := exec.Exec(ctx, query, archived, archivedAt(archived), groupID); err != nil {
		return fmt.Errorf("archive files by group: %w", err)
	}
	return nil
}

// RewritePathPrefix rewrites logical paths after a group rename.
func (r *PostgresFileRepository) RewritePathPrefix(ctx context.Context, groupID, oldPrefix, newPrefix string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET path = $1 || substr(path, length($2) + 1)
		WHERE group_id = $3 AND path LIKE $4 || '/%%'
	`, r.tables.Files)

	exec := GetExecutor(ctx, r.pool)
	if _, err := exec.Exec(ctx, query, newPrefix, oldPrefix, groupID, escapeLikePrefix(oldPrefix)); err != nil {
		return fmt.Errorf("rewrite file paths: %w", err)
	}
	return nil
}
