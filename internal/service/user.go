package service

import (
	"context"
	"fmt"
	"log/slog"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"docvault/internal/auth"
	"docvault/internal/config"
	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
)

// Credentials are the login / registration inputs.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (c *Credentials) validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Username,
			validation.Required,
			validation.Length(1, config.MaxUsernameLength),
		),
		validation.Field(&c.Password,
			validation.Required,
			validation.Length(config.MinPasswordLength, 0),
		),
	)
}

// UpdateUserRequest carries partial account updates. Nil fields are
// left untouched.
type UpdateUserRequest struct {
	Username *string `json:"username"`
	Role     *string `json:"role"`
	Password *string `json:"password"`
}

// UpdatePermissionsRequest carries global-flag and group-set updates.
// Nil flags are left untouched; a nil group list leaves groups alone.
type UpdatePermissionsRequest struct {
	CanUpload   *bool    `json:"can_upload"`
	CanDownload *bool    `json:"can_download"`
	GroupIDs    []string `json:"group_ids"`
}

// UserService handles authentication and account management.
type UserService struct {
	userRepo  repositories.UserRepository
	groupRepo repositories.GroupRepository
	tokens    *auth.TokenManager
	logger    *slog.Logger
}

// NewUserService creates a new user service
func NewUserService(
	userRepo repositories.UserRepository,
	groupRepo repositories.GroupRepository,
	tokens *auth.TokenManager,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		userRepo:  userRepo,
		groupRepo: groupRepo,
		tokens:    tokens,
		logger:    logger,
	}
}

// Login verifies credentials and issues an access token. Archived
// accounts cannot log in. The same error shape covers both unknown
// usernames and wrong passwords.
func (s *UserService) Login(ctx context.Context, username, password string) (token string, user *models.User, err error) {
	user, err = s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return "", nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	if !auth.CheckPassword(user.PasswordHash, password) {
		return "", nil, fmt.Errorf("invalid credentials: %w", domain.ErrUnauthorized)
	}

	if user.IsArchived {
		return "", nil, fmt.Errorf("account is archived: %w", domain.ErrForbidden)
	}

	token, err = s.tokens.Issue(user)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	s.logger.Info("user logged in", "user_id", user.ID, "username", user.Username)
	return token, user, nil
}

// Register creates an account. The very first account becomes a
// superadmin joined to every group; after that the bypass closes and
// only a superadmin may register further accounts, which start as plain
// users with no groups and both global flags off.
//
// The principal is nil on unauthenticated calls.
func (s *UserService) Register(ctx context.Context, principal *models.Principal, creds *Credentials) (*models.User, error) {
	if err := creds.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	count, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	if count > 0 && (principal == nil || principal.Role != models.RoleSuperadmin) {
		return nil, fmt.Errorf("only superadmins can register users: %w", domain.ErrForbidden)
	}

	hash, err := auth.HashPassword(creds.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     creds.Username,
		PasswordHash: hash,
		Role:         models.RoleUser,
		GroupIDs:     []string{},
	}

	if count == 0 {
		// Bootstrap: a fresh deployment has no one to grant roles, so
		// the first registration opens with full privileges.
		user.Role = models.RoleSuperadmin
		user.CanUpload = true
		user.CanDownload = true

		groups, err := s.groupRepo.List(ctx)
		if err != nil {
			return nil, err
		}
		for _, g := range groups {
			user.GroupIDs = append(user.GroupIDs, g.ID)
		}
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "username", user.Username, "role", user.Role)
	return user, nil
}

// CreateUserRequest carries admin-side account creation inputs.
type CreateUserRequest struct {
	Username    string   `json:"username"`
	Password    string   `json:"password"`
	Role        string   `json:"role"`
	GroupIDs    []string `json:"group_ids"`
	CanUpload   bool     `json:"can_upload"`
	CanDownload bool     `json:"can_download"`
}

// CreateUser creates an account with an explicit role, group set and
// flags. Superadmin only; unlike Register there is no bootstrap path.
func (s *UserService) CreateUser(ctx context.Context, principal *models.Principal, req *CreateUserRequest) (*models.User, error) {
	if principal.Role != models.RoleSuperadmin {
		return nil, fmt.Errorf("only superadmins can create users: %w", domain.ErrForbidden)
	}

	creds := &Credentials{Username: req.Username, Password: req.Password}
	if err := creds.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		return nil, fmt.Errorf("invalid role %q: %w", role, domain.ErrValidation)
	}

	if len(req.GroupIDs) > 0 {
		groups, err := s.groupRepo.GetByIDs(ctx, req.GroupIDs)
		if err != nil {
			return nil, err
		}
		if len(groups) != len(dedupe(req.GroupIDs)) {
			return nil, fmt.Errorf("unknown group in list: %w", domain.ErrValidation)
		}
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.User{
		Username:     req.Username,
		PasswordHash: hash,
		Role:         role,
		GroupIDs:     req.GroupIDs,
		CanUpload:    req.CanUpload,
		CanDownload:  req.CanDownload,
	}
	if user.GroupIDs == nil {
		user.GroupIDs = []string{}
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("user created", "user_id", user.ID, "username", user.Username, "role", user.Role)
	return user, nil
}

// GetUser returns one user by ID.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// ListUsers returns all non-archived users. Admin only.
func (s *UserService) ListUsers(ctx context.Context, principal *models.Principal) ([]models.User, error) {
	if !principal.IsAdmin() {
		return nil, fmt.Errorf("only admins can list users: %w", domain.ErrForbidden)
	}
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return users, nil
}

// GetUserGroups resolves the principal's group memberships.
func (s *UserService) GetUserGroups(ctx context.Context, principal *models.Principal) ([]models.Group, error) {
	groups, err := s.groupRepo.GetByIDs(ctx, principal.GroupIDs)
	if err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []models.Group{}
	}
	return groups, nil
}

// UpdateUser applies partial account updates. Username and role changes
// are superadmin only; a user may change their own password, and admins
// may reset anyone's.
func (s *UserService) UpdateUser(ctx context.Context, principal *models.Principal, id string, req *UpdateUserRequest) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Username != nil || req.Role != nil {
		if principal.Role != models.RoleSuperadmin {
			return nil, fmt.Errorf("only superadmins can change usernames or roles: %w", domain.ErrForbidden)
		}
	}

	if req.Username != nil {
		if err := validation.Validate(*req.Username,
			validation.Required,
			validation.Length(1, config.MaxUsernameLength),
		); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		user.Username = *req.Username
	}

	if req.Role != nil {
		if !models.ValidRole(*req.Role) {
			return nil, fmt.Errorf("invalid role %q: %w", *req.Role, domain.ErrValidation)
		}
		user.Role = *req.Role
	}

	if req.Password != nil {
		if !principal.IsAdmin() && principal.UserID != id {
			return nil, fmt.Errorf("cannot change another user's password: %w", domain.ErrForbidden)
		}
		if err := validation.Validate(*req.Password,
			validation.Required,
			validation.Length(config.MinPasswordLength, 0),
		); err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
		}
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hash
	}

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, id)
}

// UpdatePermissions updates the global flags and group memberships.
// Admin only.
func (s *UserService) UpdatePermissions(ctx context.Context, principal *models.Principal, id string, req *UpdatePermissionsRequest) (*models.User, error) {
	if !principal.IsAdmin() {
		return nil, fmt.Errorf("only admins can change permissions: %w", domain.ErrForbidden)
	}

	if _, err := s.userRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if req.GroupIDs != nil {
		// Reject unknown group IDs up front so the stored set never
		// references groups that do not exist.
		groups, err := s.groupRepo.GetByIDs(ctx, req.GroupIDs)
		if err != nil {
			return nil, err
		}
		if len(groups) != len(dedupe(req.GroupIDs)) {
			return nil, fmt.Errorf("unknown group in list: %w", domain.ErrValidation)
		}
	}

	if err := s.userRepo.UpdatePermissions(ctx, id, req.CanUpload, req.CanDownload, req.GroupIDs); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, id)
}

// AddGroups adds group memberships to a user without touching the rest
// of the set. Admin only.
func (s *UserService) AddGroups(ctx context.Context, principal *models.Principal, id string, groupIDs []string) (*models.User, error) {
	if !principal.IsAdmin() {
		return nil, fmt.Errorf("only admins can assign groups: %w", domain.ErrForbidden)
	}
	if len(groupIDs) == 0 {
		return s.userRepo.GetByID(ctx, id)
	}

	groups, err := s.groupRepo.GetByIDs(ctx, groupIDs)
	if err != nil {
		return nil, err
	}
	if len(groups) != len(dedupe(groupIDs)) {
		return nil, fmt.Errorf("unknown group in list: %w", domain.ErrValidation)
	}

	if err := s.userRepo.AddGroups(ctx, id, groupIDs); err != nil {
		return nil, err
	}
	return s.userRepo.GetByID(ctx, id)
}

// ArchiveUser archives an account, locking it out of login and all
// authenticated routes. Superadmin only; self-archive is rejected so a
// deployment cannot lock out its last superadmin.
func (s *UserService) ArchiveUser(ctx context.Context, principal *models.Principal, id string) error {
	return s.setUserArchived(ctx, principal, id, true)
}

// RestoreUser reverses ArchiveUser.
func (s *UserService) RestoreUser(ctx context.Context, principal *models.Principal, id string) error {
	return s.setUserArchived(ctx, principal, id, false)
}

func (s *UserService) setUserArchived(ctx context.Context, principal *models.Principal, id string, archived bool) error {
	if principal.Role != models.RoleSuperadmin {
		return fmt.Errorf("only superadmins can archive users: %w", domain.ErrForbidden)
	}
	if archived && principal.UserID == id {
		return fmt.Errorf("cannot archive your own account: %w", domain.ErrValidation)
	}

	if err := s.userRepo.SetArchived(ctx, id, archived); err != nil {
		return err
	}
	s.logger.Info("user archive state changed", "user_id", id, "archived", archived)
	return nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
