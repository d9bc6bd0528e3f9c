package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"docvault/internal/config"
	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
	"docvault/internal/storage"
)

// groupNamePattern keeps group names usable as physical directory names.
var groupNamePattern = regexp.MustCompile(`^[^/\\]+$`)

// GroupService manages groups and their archive lifecycle.
type GroupService struct {
	groupRepo  repositories.GroupRepository
	folderRepo repositories.FolderRepository
	fileRepo   repositories.FileRepository
	userRepo   repositories.UserRepository
	txManager  repositories.TransactionManager
	store      *storage.Store
	logger     *slog.Logger
}

// NewGroupService creates a new group service
func NewGroupService(
	groupRepo repositories.GroupRepository,
	folderRepo repositories.FolderRepository,
	fileRepo repositories.FileRepository,
	userRepo repositories.UserRepository,
	txManager repositories.TransactionManager,
	store *storage.Store,
	logger *slog.Logger,
) *GroupService {
	return &GroupService{
		groupRepo:  groupRepo,
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		userRepo:   userRepo,
		txManager:  txManager,
		store:      store,
		logger:     logger,
	}
}

// ListGroups returns all groups.
func (s *GroupService) ListGroups(ctx context.Context) ([]models.Group, error) {
	return s.groupRepo.List(ctx)
}

// GetGroup returns one group by ID.
func (s *GroupService) GetGroup(ctx context.Context, id string) (*models.Group, error) {
	return s.groupRepo.GetByID(ctx, id)
}

// CreateGroup creates a group, its implicit root folder and its physical
// directory, and joins every admin to it. Superadmin only.
//
// The group and root folder rows commit in one transaction; the physical
// directory is created after. A crash in between is recoverable - the
// directory is idempotently recreated on the next path resolution.
func (s *GroupService) CreateGroup(ctx context.Context, principal *models.Principal, name string) (*models.Group, error) {
	if principal.Role != models.RoleSuperadmin {
		return nil, fmt.Errorf("only superadmins can create groups: %w", domain.ErrForbidden)
	}

	if err := validation.Validate(name,
		validation.Required,
		validation.Length(1, config.MaxGroupNameLength),
		validation.Match(groupNamePattern).Error("group name cannot contain slashes"),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	group := &models.Group{Name: name}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.groupRepo.Create(txCtx, group); err != nil {
			return err
		}

		root := &models.Folder{
			Name:    name,
			Path:    "/" + name,
			GroupID: group.ID,
		}
		if err := s.folderRepo.Create(txCtx, root); err != nil {
			return err
		}

		// Admins see every group without an explicit assignment step
		return s.userRepo.AddGroupToRole(txCtx, group.ID,
			[]string{models.RoleSuperadmin, models.RoleAdmin})
	})
	if err != nil {
		return nil, err
	}

	if _, err := s.store.ResolvePhysicalDir(group.Name, ""); err != nil {
		s.logger.Warn("group directory not materialized", "group", group.Name, "error", err)
	}

	s.logger.Info("group created", "group_id", group.ID, "name", group.Name)
	return group, nil
}

// RenameGroup renames a group, rewrites every descendant materialized
// path and renames the physical directory. Superadmin only.
func (s *GroupService) RenameGroup(ctx context.Context, principal *models.Principal, id, newName string) (*models.Group, error) {
	if principal.Role != models.RoleSuperadmin {
		return nil, fmt.Errorf("only superadmins can rename groups: %w", domain.ErrForbidden)
	}

	if err := validation.Validate(newName,
		validation.Required,
		validation.Length(1, config.MaxGroupNameLength),
		validation.Match(groupNamePattern).Error("group name cannot contain slashes"),
	); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	group, err := s.groupRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if group.Name == newName {
		return group, nil
	}

	oldName := group.Name
	oldPrefix := "/" + oldName
	newPrefix := "/" + newName

	err = s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.groupRepo.Rename(txCtx, id, newName); err != nil {
			return err
		}

		root, err := s.folderRepo.GetRoot(txCtx, id)
		if err != nil {
			return err
		}
		if err := s.folderRepo.Rename(txCtx, root.ID, newName); err != nil {
			return err
		}

		if err := s.folderRepo.RewritePathPrefix(txCtx, id, oldPrefix, newPrefix); err != nil {
			return err
		}
		return s.fileRepo.RewritePathPrefix(txCtx, id, oldPrefix, newPrefix)
	})
	if err != nil {
		return nil, err
	}

	if err := s.store.RenameGroupDir(oldName, newName); err != nil {
		// Logical rename committed; the physical tree heals on next
		// resolve but existing files under the old directory need the
		// operator's attention.
		s.logger.Error("physical group directory rename failed",
			"group_id", id, "old", oldName, "new", newName, "error", err)
		return nil, err
	}

	group.Name = newName
	s.logger.Info("group renamed", "group_id", id, "old", oldName, "new", newName)
	return group, nil
}

// ArchiveGroup archives the group and cascades to every folder and file
// with the same group ID, in one transaction. Physical files stay on
// disk. Superadmin only.
func (s *GroupService) ArchiveGroup(ctx context.Context, principal *models.Principal, id string) error {
	return s.setGroupArchived(ctx, principal, id, true)
}

// RestoreGroup reverses ArchiveGroup, cascading to folders and files.
func (s *GroupService) RestoreGroup(ctx context.Context, principal *models.Principal, id string) error {
	return s.setGroupArchived(ctx, principal, id, false)
}

func (s *GroupService) setGroupArchived(ctx context.Context, principal *models.Principal, id string, archived bool) error {
	if principal.Role != models.RoleSuperadmin {
		return fmt.Errorf("only superadmins can archive groups: %w", domain.ErrForbidden)
	}

	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		if err := s.groupRepo.SetArchived(txCtx, id, archived); err != nil {
			return err
		}
		if err := s.folderRepo.SetArchivedByGroup(txCtx, id, archived); err != nil {
			return err
		}
		return s.fileRepo.SetArchivedByGroup(txCtx, id, archived)
	})
	if err != nil {
		return err
	}

	s.logger.Info("group archive cascade", "group_id", id, "archived", archived)
	return nil
}
