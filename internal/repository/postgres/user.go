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

// PostgresUserRepository implements the UserRepository interface
type PostgresUserRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewUserRepository creates a new user repository
func NewUserRepository(config *RepositoryConfig) repositories.UserRepository {
	return &PostgresUserRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

const userColumns = "id, username, password_hash, role, group_ids, can_upload, can_download, favorites, is_archived, archived_at, created_at"

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.GroupIDs,
		&u.CanUpload, &u.CanDownload, &u.Favorites, &u.IsArchived, &u.ArchivedAt, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	if u.GroupIDs == nil {
		u.GroupIDs = []string{}
	}
	if u.Favorites == nil {
		u.Favorites = []models.Favorite{}
	}
	return &u, nil
}

// Create inserts a user. Usernames are unique; a duplicate maps to
// ErrConflict.
func (r *PostgresUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	if user.GroupIDs == nil {
		user.GroupIDs = []string{}
	}
	if user.Favorites == nil {
		user.Favorites = []models.Favorite{}
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (id, username, password_hash, role, group_ids, can_upload, can_download, favorites, is_archived, archived_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, r.tables.Users)

	exec := GetExecutor(ctx, r.pool)
	_, err := exec.Exec(ctx, query,
		user.ID, user.Username, user.PasswordHash, user.Role, user.GroupIDs,
		user.CanUpload, user.CanDownload, user.Favorites, user.IsArchived, user.ArchivedAt, user.CreatedAt)
	if err != nil {
		if isPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("username '%s' already exists", user.Username),
				ResourceType: "user",
			}
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, userColumns, r.tables.Users)

	exec := GetExecutor(ctx, r.pool)
	user, err := scanUser(exec.QueryRow(ctx, query, id))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// GetByUsername retrieves a user by username.
func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE username = $1`, userColumns, r.tables.Users)

	exec := GetExecutor(ctx, r.pool)
	user, err := scanUser(exec.QueryRow(ctx, query, username))
	if err != nil {
		if isPgNoRowsError(err) {
			return nil, fmt.Errorf("user '%s': %w", username, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return user, nil
}

// List returns all users ordered by username.
func (r *PostgresUserRepository) List(ctx context.Context) ([]models.User, error) {
	return r.list(ctx, fmt.Sprintf(`SELECT %s FROM %s ORDER BY username ASC`, userColumns, r.tables.Users))
}

// ListArchived returns archived users only.
func (r *PostgresUserRepository) ListArchived(ctx context.Context) ([]models.User, error) {
	return r.list(ctx, fmt.Sprintf(`SELECT %s FROM %s WHERE is_archived ORDER BY username ASC`, userColumns, r.tables.Users))
}

func (r *PostgresUserRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.User, error) {
	exec := GetExecutor(ctx, r.pool)
	rows, err := exec.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}

// Count returns the total number of users. Used for the first-user
// registration bypass.
func (r *PostgresUserRepository) Count(ctx context.Context) (int, error) {
	query := fmt.Sprintf(`SELECT count(*) FROM %s`, r.tables.Users)

	var count int
	exec := GetExecutor(ctx, r.pool)
	if err := exec.QueryRow(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return count, nil
}

// Update persists mutable account fields.
func (r *PostgresUserRepository) Update(ctx context.Context, user *models.User) error {
	query := fmt.Sprintf(`
		UPDATE %s SET username = $1, role = $2, password_hash = $3 WHERE id = $4
	`, r.tables.Users)

	exec := GetExecutor(ctx, r.pool)
	result, err := exec.Exec(ctx, query, user.Username, user.Role, user.PasswordHash, user.ID)
	if err != nil {
		if isPgDuplicateError(err) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("username '%s' already exists", user.Username),
				ResourceType: "user",
			}
		}
		return fmt.Errorf("update user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", user.ID, domain.ErrNotFound)
	}
	return nil
}

// UpdatePermissions persists the global flags and group set. Nil flag
// pointers and a nil group slice leave the stored values untouched.
func (r *PostgresUserRepository) UpdatePermissions(ctx context.Context, id string, canUpload, canDownload *bool, groupIDs []string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET can_upload = COALESCE($1, can_upload),
		    can_download = COALESCE($2, can_download),
		    group_ids = COALESCE($3, group_ids)
		WHERE id = $4
	`, r.tables.Users)

	exec := GetExecutor(ctx, r.pool)
	result, err := exec.Exec(ctx, query, canUpload, canDownload, groupIDs, id)
	if err != nil {
		return fmt.Errorf("update user permissions: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// AddGroups adds the given groups to the user, skipping duplicates.
func (r *PostgresUserRepository) AddGroups(ctx context.Context, id string, groupIDs []string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET group_ids = (
			SELECT array_agg(DISTINCT g) FROM unnest(group_ids || $1::text[]) AS g
		)
		WHERE id = $2
	`, r.tables.Users)

	exec := GetExecutor(ctx, r.pool)
	result, err := exec.Exec(ctx, query, groupIDs, id)
	if err != nil {
		return fmt.Errorf("add user groups: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// AddGroupToRole adds a group to every user holding one of the given
// roles, so admins automatically see new groups.
func (r *PostgresUserRepository) AddGroupToRole(ctx context.Context, groupID string, roles []string) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET group_ids = group_ids || $1::text
		WHERE role = ANY($2) AND NOT ($1 = ANY(group_ids))
	`, r.tables.Users)

	exec := GetExecutor(ctx, r.pool)
	if _, err := exec.Exec(ctx, query, groupID, roles); err != nil {
		return fmt.Errorf("add group to role: %w", err)
	}
	return nil
}

// SetFavorites replaces the user's favorites list.
func (r *PostgresUserRepository) SetFavorites(ctx context.Context, id string, favorites []models.Favorite) error {
	if favorites == nil {
		favorites = []models.Favorite{}
	}
	query := fmt.Sprintf(`UPDATE %s SET favorites = $1 WHERE id = $2`, r.tables.Users)

	exec := GetExecutor(ctx, r.pool)
	result, err := exec.Exec(ctx, query, favorites, id)
	if err != nil {
		return fmt.Errorf("set favorites: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return nil
}

// SetArchived flips the archive flag on a user account.
func (r *PostgresUserRepository) SetArchived(ctx context.Context, id string, archived bool) error {
	query := fmt.Sprintf(`
		UPDATE %s SET is_archived = $1, archived_at = $2 WHERE id = $3
	`, r.tables.Users)

	exec := GetExecutor(ctx, r.pool)
	result, err := exec.Exec(ctx, query, archived, archivedAt(archived), id)
	if err != nil {
		return fmt.Errorf("archive user: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
