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

// PostgresGroupRepository implements the GroupRepository interface
type PostgresGroupRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewGroupRepository creates a new group repository
func NewGroupRepository(config *RepositoryConfig) repositories.GroupRepository {
	return &PostgresGroupRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const groupColumns = "id, name, is_archived, archived_at, created_at"

func scanGroup(row interface{ Scan(...interface{}) error }) (*models.Group, error) {
	var g models.Group
	err := row.Scan(&g.ID, &g.Name, &g.IsArchived, &g.ArchivedAt, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Create inserts a group. Group names are unique; a duplicate maps to
// ErrConflict.
func (r *PostgresGroupRepository) Create(ctx context.Context, group *models.Group) error {
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	if group.CreatedAt.IsZero() {
		group.CreatedAt = time.Now()
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, name, is_archived, archived_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, r.tables.Groups)

	exec := GetExecutor(ctx, r.pool)
	_, err := exec.Exec(ctx, query,
		group.ID, group.Name, group.IsArchived, group.ArchivedAt, group.CreatedAt)
	if err != nil {
		if isPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("group '%s' already exists", group.Name),
				ResourceType: "group",
			}
		}
		return fmt.Errorf("create group: %w", err)
	}
	return nil
}

// GetByID retrieves a group by ID
func (r *PostgresGroupRepository) GetByID(ctx context.Context, id string) (*models.Group, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, groupColumns, r.tables.Groups)

	exec := GetExecutor(ctx, r.pool)
	group, err := scanGroup(exec.QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("group %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get group: %w", err)
	}
	return group, nil
}

// GetByName resolves a group by its unique name.
func (r *PostgresGroupRepository) GetByName(ctx context.Context, name string) (*models.Group, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE name = $1`, groupColumns, r.tables.Groups)

	exec := GetExecutor(ctx, r.pool)
	group, err := scanGroup(exec.QueryRow(ctx, query, name))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("group '%s': %w", name, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get group by name: %w", err)
	}
	return group, nil
}

// List returns all groups ordered by name.
func (r *PostgresGroupRepository) List(ctx context.Context) ([]models.Group, error) {
	return r.list(ctx, fmt.Sprintf(`SELECT %s FROM %s ORDER BY name ASC`, groupColumns, r.tables.Groups))
}

// ListArchived returns archived groups only.
func (r *PostgresGroupRepository) ListArchived(ctx context.Context) ([]models.Group, error) {
	return r.list(ctx, fmt.Sprintf(`SELECT %s FROM %s WHERE is_archived ORDER BY name ASC`, groupColumns, r.tables.Groups))
}

func (r *PostgresGroupRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Group, error) {
	exec := GetExecutor(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	defer rows.Close()

	var groups []models.Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, fmt.Errorf("scan group: %w", err)
		}
		groups = append(groups, *group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate groups: %w", err)
	}
	return groups, nil
}

// GetByIDs resolves a batch of group IDs, skipping missing ones.
func (r *PostgresGroupRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Group, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ANY($1) ORDER BY name ASC`, groupColumns, r.tables.Groups)
	return r.list(ctx, query, ids)
}

// Rename updates the group's name.
func (r *PostgresGroupRepository) Rename(ctx context.Context, id, name string) error {
	query := fmt.Sprintf(`UPDATE %s SET name = $1 WHERE id = $2`, r.tables.Groups)

	exec := GetExecutor(ctx, r.pool)
	result, err := exec.Exec(ctx, query, name, id)
	if err != nil {
		if isPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("group '%s' already exists", name),
				ResourceType: "group",
			}
		}
		return fmt.Errorf("rename group: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("group %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// SetArchived flips the archive flag on the group row.
func (r *PostgresGroupRepository) SetArchived(ctx context.Context, id string, archived bool) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET is_archived = $1, archived_at = $2
		WHERE id = $3
	`, r.tables.Groups)

	exec := GetExecutor(ctx, r.pool)
	result, err := exec.Exec(ctx, query, archived, archivedAt(archived), id)
	if err != nil {
		return fmt.Errorf("archive group: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("group %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// archivedAt returns the timestamp for the archive flag transition:
// now on archive, NULL on restore.
func archivedAt(archived bool) *time.Time {
	if !archived {
		return nil
	}
	now := time.Now()
	return &now
}
