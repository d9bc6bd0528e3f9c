package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/domain/repositories"
)

// In-memory repository fakes. They implement the same contracts as the
// postgres repositories, minus persistence, so service behavior can be
// exercised without a database.

type fakeGroupRepo struct {
	mu     sync.Mutex
	groups map[string]*models.Group
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{groups: make(map[string]*models.Group)}
}

func (r *fakeGroupRepo) Create(_ context.Context, group *models.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.groups {
		if g.Name == group.Name {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("group '%s' already exists", group.Name),
				ResourceType: "group",
				ResourceID:   g.ID,
			}
		}
	}
	if group.ID == "" {
		group.ID = uuid.NewString()
	}
	group.CreatedAt = time.Now()
	copied := *group
	r.groups[group.ID] = &copied
	return nil
}

func (r *fakeGroupRepo) GetByID(_ context.Context, id string) (*models.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[id]
	if !ok {
		return nil, fmt.Errorf("group %s: %w", id, domain.ErrNotFound)
	}
	copied := *g
	return &copied, nil
}

func (r *fakeGroupRepo) GetByName(_ context.Context, name string) (*models.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, g := range r.groups {
		if g.Name == name {
			copied := *g
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("group '%s': %w", name, domain.ErrNotFound)
}

func (r *fakeGroupRepo) List(_ context.Context) ([]models.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Group
	for _, g := range r.groups {
		if !g.IsArchived {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *fakeGroupRepo) GetByIDs(_ context.Context, ids []string) ([]models.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Group
	for _, id := range ids {
		if g, ok := r.groups[id]; ok {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *fakeGroupRepo) ListArchived(_ context.Context) ([]models.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Group
	for _, g := range r.groups {
		if g.IsArchived {
			out = append(out, *g)
		}
	}
	return out, nil
}

func (r *fakeGroupRepo) Rename(_ context.Context, id, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[id]
	if !ok {
		return fmt.Errorf("group %s: %w", id, domain.ErrNotFound)
	}
	g.Name = name
	return nil
}

func (r *fakeGroupRepo) SetArchived(_ context.Context, id string, archived bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, ok := r.groups[id]
	if !ok {
		return fmt.Errorf("group %s: %w", id, domain.ErrNotFound)
	}
	g.IsArchived = archived
	return nil
}

type fakeFolderRepo struct {
	mu      sync.Mutex
	folders map[string]*models.Folder
}

func newFakeFolderRepo() *fakeFolderRepo {
	return &fakeFolderRepo{folders: make(map[string]*models.Folder)}
}

func (r *fakeFolderRepo) Create(_ context.Context, folder *models.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.folders {
		if f.GroupID == folder.GroupID && f.Name == folder.Name && equalParent(f.ParentID, folder.ParentID) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("folder '%s' already exists", folder.Name),
				ResourceType: "folder",
				ResourceID:   f.ID,
			}
		}
	}
	if folder.ID == "" {
		folder.ID = uuid.NewString()
	}
	folder.CreatedAt = time.Now()
	if folder.Permissions == nil {
		folder.Permissions = []models.FolderPermission{}
	}
	copied := *folder
	r.folders[folder.ID] = &copied
	return nil
}

func equalParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (r *fakeFolderRepo) GetByID(_ context.Context, id string) (*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.folders[id]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	copied := *f
	return &copied, nil
}

func (r *fakeFolderRepo) GetRoot(_ context.Context, groupID string) (*models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.folders {
		if f.GroupID == groupID && f.ParentID == nil {
			copied := *f
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("root folder for group %s: %w", groupID, domain.ErrNotFound)
}

func (r *fakeFolderRepo) ListChildren(_ context.Context, groupID, logicalPrefix string) ([]models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Folder
	for _, f := range r.folders {
		if f.GroupID == groupID && !f.IsArchived && oneSegmentBelow(f.Path, logicalPrefix) {
			out = append(out, *f)
		}
	}
	return out, nil
}

func oneSegmentBelow(path, prefix string) bool {
	if !strings.HasPrefix(path, prefix+"/") {
		return false
	}
	return !strings.Contains(path[len(prefix)+1:], "/")
}

func (r *fakeFolderRepo) ListArchived(_ context.Context) ([]models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Folder
	for _, f := range r.folders {
		if f.IsArchived {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFolderRepo) GetByIDs(_ context.Context, ids []string) ([]models.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Folder
	for _, id := range ids {
		if f, ok := r.folders[id]; ok {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFolderRepo) SetPermissions(_ context.Context, id string, perms []models.FolderPermission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.folders[id]
	if !ok {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	f.Permissions = perms
	return nil
}

func (r *fakeFolderRepo) SetArchived(_ context.Context, id string, archived bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.folders[id]
	if !ok {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	f.IsArchived = archived
	return nil
}

func (r *fakeFolderRepo) SetArchivedByGroup(_ context.Context, groupID string, archived bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.folders {
		if f.GroupID == groupID {
			f.IsArchived = archived
		}
	}
	return nil
}

func (r *fakeFolderRepo) RewritePathPrefix(_ context.Context, groupID, oldPrefix, newPrefix string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.folders {
		if f.GroupID != groupID {
			continue
		}
		if f.Path == oldPrefix {
			f.Path = newPrefix
		} else if strings.HasPrefix(f.Path, oldPrefix+"/") {
			f.Path = newPrefix + f.Path[len(oldPrefix):]
		}
	}
	return nil
}

func (r *fakeFolderRepo) Rename(_ context.Context, id, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.folders[id]
	if !ok {
		return fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	f.Name = name
	return nil
}

type fakeFileRepo struct {
	mu    sync.Mutex
	files map[string]*models.File
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{files: make(map[string]*models.File)}
}

func (r *fakeFileRepo) Create(_ context.Context, file *models.File) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	file.UploadedOn = time.Now()
	if file.Permissions == nil {
		file.Permissions = []models.FilePermission{}
	}
	copied := *file
	r.files[file.ID] = &copied
	return nil
}

func (r *fakeFileRepo) GetByID(_ context.Context, id string) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		return nil, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	copied := *f
	return &copied, nil
}

func (r *fakeFileRepo) ListChildren(_ context.Context, groupID, logicalPrefix string) ([]models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.File
	for _, f := range r.files {
		if f.GroupID == groupID && !f.IsArchived && oneSegmentBelow(f.Path, logicalPrefix) {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFileRepo) ListByArchived(_ context.Context, archived bool) ([]models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.File
	for _, f := range r.files {
		if f.IsArchived == archived {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFileRepo) GetByIDs(_ context.Context, ids []string) ([]models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.File
	for _, id := range ids {
		if f, ok := r.files[id]; ok {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (r *fakeFileRepo) SetPermissions(_ context.Context, id string, perms []models.FilePermission) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	f.Permissions = perms
	return nil
}

func (r *fakeFileRepo) SetArchived(_ context.Context, id string, archived bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.files[id]
	if !ok {
		return fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	f.IsArchived = archived
	return nil
}

func (r *fakeFileRepo) SetArchivedByGroup(_ context.Context, groupID string, archived bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.files {
		if f.GroupID == groupID {
			f.IsArchived = archived
		}
	}
	return nil
}

func (r *fakeFileRepo) RewritePathPrefix(_ context.Context, groupID, oldPrefix, newPrefix string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, f := range r.files {
		if f.GroupID == groupID && strings.HasPrefix(f.Path, oldPrefix+"/") {
			f.Path = newPrefix + f.Path[len(oldPrefix):]
		}
	}
	return nil
}

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*models.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == user.Username {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("username '%s' already taken", user.Username),
				ResourceType: "user",
				ResourceID:   u.ID,
			}
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.CreatedAt = time.Now()
	if user.GroupIDs == nil {
		user.GroupIDs = []string{}
	}
	if user.Favorites == nil {
		user.Favorites = []models.Favorite{}
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, fmt.Errorf("user '%s': %w", username, domain.ErrNotFound)
}

func (r *fakeUserRepo) List(_ context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, u := range r.users {
		if !u.IsArchived {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) ListArchived(_ context.Context) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.User
	for _, u := range r.users {
		if u.IsArchived {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (r *fakeUserRepo) Count(_ context.Context) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users), nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[user.ID]
	if !ok {
		return fmt.Errorf("user %s: %w", user.ID, domain.ErrNotFound)
	}
	u.Username = user.Username
	u.Role = user.Role
	u.PasswordHash = user.PasswordHash
	return nil
}

func (r *fakeUserRepo) UpdatePermissions(_ context.Context, id string, canUpload, canDownload *bool, groupIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	if canUpload != nil {
		u.CanUpload = *canUpload
	}
	if canDownload != nil {
		u.CanDownload = *canDownload
	}
	if groupIDs != nil {
		u.GroupIDs = groupIDs
	}
	return nil
}

func (r *fakeUserRepo) AddGroups(_ context.Context, id string, groupIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	for _, gid := range groupIDs {
		found := false
		for _, existing := range u.GroupIDs {
			if existing == gid {
				found = true
				break
			}
		}
		if !found {
			u.GroupIDs = append(u.GroupIDs, gid)
		}
	}
	return nil
}

func (r *fakeUserRepo) AddGroupToRole(_ context.Context, groupID string, roles []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		for _, role := range roles {
			if u.Role == role && !u.InGroup(groupID) {
				u.GroupIDs = append(u.GroupIDs, groupID)
			}
		}
	}
	return nil
}

func (r *fakeUserRepo) SetFavorites(_ context.Context, id string, favorites []models.Favorite) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	u.Favorites = favorites
	return nil
}

func (r *fakeUserRepo) SetArchived(_ context.Context, id string, archived bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, domain.ErrNotFound)
	}
	u.IsArchived = archived
	return nil
}

// fakeTxManager runs the function directly; the fakes have no
// transactional semantics to roll back.
type fakeTxManager struct{}

func (fakeTxManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}
