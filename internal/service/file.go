package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
	"docvault/internal/filetype"
	"docvault/internal/storage"
)

// UploadTarget is a resolved, permission-checked upload destination.
type UploadTarget struct {
	Group       *models.Group
	SubPath     string // sanitized logical sub-path under the group root
	PhysicalDir string
}

// FileService handles uploads, downloads and the file archive lifecycle.
type FileService struct {
	fileRepo   repositories.FileRepository
	folderRepo repositories.FolderRepository
	groupRepo  repositories.GroupRepository
	userRepo   repositories.UserRepository
	store      *storage.Store
	types      *filetype.Registry
	logger     *slog.Logger
}

// NewFileService creates a new file service
func NewFileService(
	fileRepo repositories.FileRepository,
	folderRepo repositories.FolderRepository,
	groupRepo repositories.GroupRepository,
	userRepo repositories.UserRepository,
	store *storage.Store,
	types *filetype.Registry,
	logger *slog.Logger,
) *FileService {
	return &FileService{
		fileRepo:   fileRepo,
		folderRepo: folderRepo,
		groupRepo:  groupRepo,
		userRepo:   userRepo,
		store:      store,
		types:      types,
		logger:     logger,
	}
}

// ResolveUploadTarget validates the group, evaluates upload access and
// materializes the destination directory. The permission check strictly
// precedes the filesystem side effect: a forbidden caller never causes
// a mkdir.
func (s *FileService) ResolveUploadTarget(ctx context.Context, principal *models.Principal, groupName, subPath string) (*UploadTarget, error) {
	group, err := s.groupRepo.GetByName(ctx, groupName)
	if err != nil {
		return nil, err
	}

	if !CanUploadToGroup(principal, group.ID) {
		return nil, fmt.Errorf("no upload access to group '%s': %w", groupName, domain.ErrForbidden)
	}

	dir, err := s.store.ResolvePhysicalDir(group.Name, subPath)
	if err != nil {
		return nil, err
	}

	return &UploadTarget{
		Group:       group,
		SubPath:     storage.SanitizeSubPath(subPath),
		PhysicalDir: dir,
	}, nil
}

// FinalizeUpload reserves a collision-free filename in the resolved
// target, streams the content to disk and records the file. Two racing
// uploads of the same name each get their own file; the exclusive
// create makes silent overwrite impossible.
func (s *FileService) FinalizeUpload(ctx context.Context, principal *models.Principal, target *UploadTarget, originalName string, content io.Reader) (*models.File, error) {
	// Clients normally send a bare filename, but the reservation must
	// never follow separators out of the target directory.
	originalName = filepath.Base(originalName)
	if originalName == "" || originalName == "." || originalName == ".." || originalName == "/" {
		return nil, fmt.Errorf("file name required: %w", domain.ErrValidation)
	}

	name, size, err := storage.CreateExclusive(target.PhysicalDir, originalName, content)
	if err != nil {
		return nil, err
	}

	file := &models.File{
		Name:         name,
		OriginalName: originalName,
		Path:         storage.LogicalPath(target.Group.Name, target.SubPath, name),
		GroupID:      target.Group.ID,
		UploadedBy:   principal.UserID,
		FileType:     s.types.ForFilename(originalName),
		Size:         size,
	}

	if err := s.fileRepo.Create(ctx, file); err != nil {
		// The record is authoritative; without it the physical file is
		// unreachable, so drop the reservation.
		s.store.RemoveFile(target.PhysicalDir, name)
		return nil, err
	}

	s.logger.Info("file uploaded",
		"file_id", file.ID, "path", file.Path, "size", size, "type", file.FileType)
	return file, nil
}

// Download resolves a file's physical location after evaluating access.
// Returns the on-disk path and the filename to present.
func (s *FileService) Download(ctx context.Context, principal *models.Principal, fileID string) (physicalPath, downloadName string, err error) {
	file, err := s.fileRepo.GetByID(ctx, fileID)
	if err != nil {
		return "", "", err
	}

	if !CanDownloadFile(principal, file) {
		return "", "", fmt.Errorf("no download access to file: %w", domain.ErrForbidden)
	}

	group, err := s.groupRepo.GetByID(ctx, file.GroupID)
	if err != nil {
		return "", "", err
	}

	path := s.store.PhysicalFilePath(group.Name, file.Path)
	if !s.store.Exists(path) {
		return "", "", fmt.Errorf("file missing on storage: %w", domain.ErrNotFound)
	}

	return path, file.Name, nil
}

// ZipTarget is a resolved, permission-checked zip download source.
type ZipTarget struct {
	Name string // suggested archive filename
	Dir  string // physical directory to walk
}

// ResolveFolderZip evaluates download access on a group subtree and
// locates its physical directory. The caller needs the ambient download
// route (membership gated by the global flag) or an admin role.
//
// Resolution is separate from streaming so failures still surface as
// ordinary error responses before any archive bytes are written.
func (s *FileService) ResolveFolderZip(ctx context.Context, principal *models.Principal, groupID, subPath string) (*ZipTarget, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}

	if !principal.IsAdmin() && !(principal.CanDownload && principal.InGroup(group.ID)) {
		return nil, fmt.Errorf("no download access to group '%s': %w", group.Name, domain.ErrForbidden)
	}

	dir := s.store.PhysicalDir(group.Name, subPath)
	if !s.store.Exists(dir) {
		return nil, fmt.Errorf("folder missing on storage: %w", domain.ErrNotFound)
	}

	name := group.Name
	if clean := storage.SanitizeSubPath(subPath); clean != "" {
		name = name + "-" + strings.ReplaceAll(clean, "/", "-")
	}
	return &ZipTarget{Name: name + ".zip", Dir: dir}, nil
}

// StreamZip writes the resolved subtree as a zip archive.
func (s *FileService) StreamZip(w io.Writer, target *ZipTarget) error {
	return storage.WriteZip(w, target.Dir)
}

// ListByArchived returns all files filtered on the archive flag.
func (s *FileService) ListByArchived(ctx context.Context, archived bool) ([]models.File, error) {
	files, err := s.fileRepo.ListByArchived(ctx, archived)
	if err != nil {
		return nil, err
	}
	if files == nil {
		files = []models.File{}
	}
	return files, nil
}

// ArchiveFile archives one file. Leaf action, no cascade; the physical
// file stays readable on disk.
func (s *FileService) ArchiveFile(ctx context.Context, id string) (*models.File, error) {
	return s.setFileArchived(ctx, id, true)
}

// RestoreFile reverses a leaf archive.
func (s *FileService) RestoreFile(ctx context.Context, id string) (*models.File, error) {
	return s.setFileArchived(ctx, id, false)
}

func (s *FileService) setFileArchived(ctx context.Context, id string, archived bool) (*models.File, error) {
	if err := s.fileRepo.SetArchived(ctx, id, archived); err != nil {
		return nil, err
	}
	return s.fileRepo.GetByID(ctx, id)
}

// SetPermissions replaces a file's per-user permission entries.
// Admin only.
func (s *FileService) SetPermissions(ctx context.Context, principal *models.Principal, id string, perms []models.FilePermission) (*models.File, error) {
	if !principal.IsAdmin() {
		return nil, fmt.Errorf("only admins can change file permissions: %w", domain.ErrForbidden)
	}

	if _, err := s.fileRepo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.fileRepo.SetPermissions(ctx, id, perms); err != nil {
		return nil, err
	}
	return s.fileRepo.GetByID(ctx, id)
}

// ArchivedItems is the admin overview of everything archived.
type ArchivedItems struct {
	Files   []models.File   `json:"files"`
	Folders []models.Folder `json:"folders"`
	Users   []models.User   `json:"users"`
	Groups  []models.Group  `json:"groups"`
}

// ListArchivedItems collects archived files, folders, users and groups.
func (s *FileService) ListArchivedItems(ctx context.Context) (*ArchivedItems, error) {
	files, err := s.fileRepo.ListByArchived(ctx, true)
	if err != nil {
		return nil, err
	}
	folders, err := s.folderRepo.ListArchived(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.ListArchived(ctx)
	if err != nil {
		return nil, err
	}
	groups, err := s.groupRepo.ListArchived(ctx)
	if err != nil {
		return nil, err
	}

	items := &ArchivedItems{Files: files, Folders: folders, Users: users, Groups: groups}
	if items.Files == nil {
		items.Files = []models.File{}
	}
	if items.Folders == nil {
		items.Folders = []models.Folder{}
	}
	if items.Users == nil {
		items.Users = []models.User{}
	}
	if items.Groups == nil {
		items.Groups = []models.Group{}
	}
	return items, nil
}
