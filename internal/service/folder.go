package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"docvault/internal/config"
	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
	"docvault/internal/storage"
)

var folderNamePattern = regexp.MustCompile(`^[^/\\]+$`)

// CreateFolderRequest carries the inputs for folder creation. A nil
// ParentFolderID targets the group's root folder.
type CreateFolderRequest struct {
	Name           string  `json:"name"`
	ParentFolderID *string `json:"parent_folder_id"`
	GroupID        string  `json:"group_id"`
}

func (r *CreateFolderRequest) validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.GroupID, validation.Required),
		validation.Field(&r.Name,
			validation.Required,
			validation.Length(1, config.MaxFolderNameLength),
			validation.Match(folderNamePattern).Error("folder name cannot contain slashes"),
		),
	)
}

// DirectoryListing is the direct contents of one logical prefix.
type DirectoryListing struct {
	Folders []models.Folder `json:"folders"`
	Files   []models.File   `json:"files"`
}

// FolderService manages the folder tree.
type FolderService struct {
	folderRepo repositories.FolderRepository
	fileRepo   repositories.FileRepository
	groupRepo  repositories.GroupRepository
	store      *storage.Store
	logger     *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(
	folderRepo repositories.FolderRepository,
	fileRepo repositories.FileRepository,
	groupRepo repositories.GroupRepository,
	store *storage.Store,
	logger *slog.Logger,
) *FolderService {
	return &FolderService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		groupRepo:  groupRepo,
		store:      store,
		logger:     logger,
	}
}

// CreateFolder creates a folder under the given parent (the group root
// when ParentFolderID is nil) and materializes its physical directory.
// The caller needs upload access on the parent folder.
//
// Permission evaluation strictly precedes the filesystem side effect.
func (s *FolderService) CreateFolder(ctx context.Context, principal *models.Principal, req *CreateFolderRequest) (*models.Folder, error) {
	if err := req.validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	group, err := s.groupRepo.GetByID(ctx, req.GroupID)
	if err != nil {
		return nil, err
	}

	var parent *models.Folder
	if req.ParentFolderID != nil && *req.ParentFolderID != "" {
		parent, err = s.folderRepo.GetByID(ctx, *req.ParentFolderID)
		if err != nil {
			return nil, fmt.Errorf("parent folder: %w", err)
		}
		if parent.GroupID != group.ID {
			return nil, fmt.Errorf("parent folder belongs to another group: %w", domain.ErrValidation)
		}
	} else {
		parent, err = s.folderRepo.GetRoot(ctx, group.ID)
		if err != nil {
			return nil, err
		}
	}

	if !CanAccessFolder(principal, ActionUpload, parent) {
		return nil, fmt.Errorf("no upload access on parent folder: %w", domain.ErrForbidden)
	}

	folder := &models.Folder{
		Name:     req.Name,
		Path:     parent.Path + "/" + req.Name,
		ParentID: &parent.ID,
		GroupID:  group.ID,
	}

	if err := s.folderRepo.Create(ctx, folder); err != nil {
		return nil, err
	}

	// Materialize the physical directory. Failure here is tolerable:
	// the directory is recreated from the stored path on next access.
	if _, err := s.store.ResolvePhysicalDir(group.Name, subPathOf(group.Name, folder.Path)); err != nil {
		s.logger.Warn("folder directory not materialized",
			"folder_id", folder.ID, "path", folder.Path, "error", err)
	}

	s.logger.Info("folder created", "folder_id", folder.ID, "path", folder.Path)
	return folder, nil
}

// GetFolder returns one folder by ID.
func (s *FolderService) GetFolder(ctx context.Context, id string) (*models.Folder, error) {
	return s.folderRepo.GetByID(ctx, id)
}

// ListDirectory returns the folders and files directly under the given
// logical prefix within a group. The prefix anchors a one-segment-deep
// match against materialized paths, not a subtree walk.
func (s *FolderService) ListDirectory(ctx context.Context, groupID, subPath string) (*DirectoryListing, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	prefix := storage.LogicalPath(group.Name, subPath, "")

	folders, err := s.folderRepo.ListChildren(ctx, group.ID, prefix)
	if err != nil {
		return nil, err
	}
	files, err := s.fileRepo.ListChildren(ctx, group.ID, prefix)
	if err != nil {
		return nil, err
	}

	if folders == nil {
		folders = []models.Folder{}
	}
	if files == nil {
		files = []models.File{}
	}
	return &DirectoryListing{Folders: folders, Files: files}, nil
}

// ArchiveFolder archives one folder. A leaf action: descendants are not
// cascaded, unlike the group-level archive.
func (s *FolderService) ArchiveFolder(ctx context.Context, principal *models.Principal, id string) (*models.Folder, error) {
	return s.setFolderArchived(ctx, principal, id, true)
}

// RestoreFolder reverses a leaf archive.
func (s *FolderService) RestoreFolder(ctx context.Context, principal *models.Principal, id string) (*models.Folder, error) {
	return s.setFolderArchived(ctx, principal, id, false)
}

func (s *FolderService) setFolderArchived(ctx context.Context, principal *models.Principal, id string, archived bool) (*models.Folder, error) {
	folder, err := s.folderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !CanAccessFolder(principal, ActionUpload, folder) {
		return nil, fmt.Errorf("no upload access on folder: %w", domain.ErrForbidden)
	}

	if err := s.folderRepo.SetArchived(ctx, id, archived); err != nil {
		return nil, err
	}
	return s.folderRepo.GetByID(ctx, id)
}

// SetPermissions replaces a folder's group permission entries.
// Admin only.
func (s *FolderService) SetPermissions(ctx context.Context, principal *models.Principal, id string, perms []models.FolderPermission) (*models.Folder, error) {
	if !principal.IsAdmin() {
		return nil, fmt.Errorf("only admins can change folder permissions: %w", domain.ErrForbidden)
	}

	if _, err := s.folderRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.folderRepo.SetPermissions(ctx, id, perms); err != nil {
		return nil, err
	}
	return s.folderRepo.GetByID(ctx, id)
}

// subPathOf strips the leading "/<group>" from a logical path, yielding
// the sub-path relative to the group root.
func subPathOf(groupName, logicalPath string) string {
	return strings.TrimPrefix(strings.TrimPrefix(logicalPath, "/"+groupName), "/")
}
