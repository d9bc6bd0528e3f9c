package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvault/internal/domain"
	"docvault/internal/domain/models"
	"docvault/internal/storage"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type groupFixture struct {
	groups  *fakeGroupRepo
	folders *fakeFolderRepo
	files   *fakeFileRepo
	users   *fakeUserRepo
	store   *storage.Store
	svc     *GroupService
}

func newGroupFixture(t *testing.T) *groupFixture {
	t.Helper()
	f := &groupFixture{
		groups:  newFakeGroupRepo(),
		folders: newFakeFolderRepo(),
		files:   newFakeFileRepo(),
		users:   newFakeUserRepo(),
		store:   storage.New(t.TempDir()),
	}
	f.svc = NewGroupService(f.groups, f.folders, f.files, f.users, fakeTxManager{}, f.store, discardLogger())
	return f
}

func superadmin() *models.Principal {
	return &models.Principal{UserID: "sa", Role: models.RoleSuperadmin}
}

func TestCreateGroup(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	group, err := f.svc.CreateGroup(ctx, superadmin(), "acme")
	require.NoError(t, err)
	require.NotEmpty(t, group.ID)

	// Implicit root folder with the materialized path
	root, err := f.folders.GetRoot(ctx, group.ID)
	require.NoError(t, err)
	assert.Equal(t, "acme", root.Name)
	assert.Equal(t, "/acme", root.Path)
	assert.Nil(t, root.ParentID)

	// Physical directory materialized
	assert.DirExists(t, filepath.Join(f.store.Root(), "acme"))
}

func TestCreateGroupRequiresSuperadmin(t *testing.T) {
	f := newGroupFixture(t)

	_, err := f.svc.CreateGroup(context.Background(),
		&models.Principal{UserID: "u1", Role: models.RoleAdmin}, "acme")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestCreateGroupRejectsSlash(t *testing.T) {
	f := newGroupFixture(t)

	_, err := f.svc.CreateGroup(context.Background(), superadmin(), "a/b")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestCreateGroupDuplicate(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	_, err := f.svc.CreateGroup(ctx, superadmin(), "acme")
	require.NoError(t, err)

	_, err = f.svc.CreateGroup(ctx, superadmin(), "acme")
	var conflictErr *domain.ConflictError
	assert.ErrorAs(t, err, &conflictErr)
}

func TestCreateGroupJoinsAdmins(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	admin := &models.User{Username: "boss", Role: models.RoleAdmin}
	require.NoError(t, f.users.Create(ctx, admin))
	regular := &models.User{Username: "worker", Role: models.RoleUser}
	require.NoError(t, f.users.Create(ctx, regular))

	group, err := f.svc.CreateGroup(ctx, superadmin(), "acme")
	require.NoError(t, err)

	got, err := f.users.GetByID(ctx, admin.ID)
	require.NoError(t, err)
	assert.True(t, got.InGroup(group.ID), "admin should join new groups automatically")

	got, err = f.users.GetByID(ctx, regular.ID)
	require.NoError(t, err)
	assert.False(t, got.InGroup(group.ID))
}

func TestArchiveGroupCascades(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	group, err := f.svc.CreateGroup(ctx, superadmin(), "acme")
	require.NoError(t, err)

	root, err := f.folders.GetRoot(ctx, group.ID)
	require.NoError(t, err)
	sub := &models.Folder{Name: "reports", Path: "/acme/reports", ParentID: &root.ID, GroupID: group.ID}
	require.NoError(t, f.folders.Create(ctx, sub))

	file := &models.File{Name: "a.pdf", Path: "/acme/reports/a.pdf", GroupID: group.ID}
	require.NoError(t, f.files.Create(ctx, file))

	// File physically present before the archive
	dir, err := f.store.ResolvePhysicalDir("acme", "reports")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("x"), 0o644))

	require.NoError(t, f.svc.ArchiveGroup(ctx, superadmin(), group.ID))

	got, err := f.groups.GetByID(ctx, group.ID)
	require.NoError(t, err)
	assert.True(t, got.IsArchived)

	gotFolder, err := f.folders.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.True(t, gotFolder.IsArchived, "folders cascade")

	gotFile, err := f.files.GetByID(ctx, file.ID)
	require.NoError(t, err)
	assert.True(t, gotFile.IsArchived, "files cascade")

	// Archival is logical only
	assert.FileExists(t, filepath.Join(dir, "a.pdf"))
}

func TestRestoreGroupCascades(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	group, err := f.svc.CreateGroup(ctx, superadmin(), "acme")
	require.NoError(t, err)

	file := &models.File{Name: "a.pdf", Path: "/acme/a.pdf", GroupID: group.ID}
	require.NoError(t, f.files.Create(ctx, file))

	require.NoError(t, f.svc.ArchiveGroup(ctx, superadmin(), group.ID))
	require.NoError(t, f.svc.RestoreGroup(ctx, superadmin(), group.ID))

	gotFile, err := f.files.GetByID(ctx, file.ID)
	require.NoError(t, err)
	assert.False(t, gotFile.IsArchived, "restore cascades to files")

	root, err := f.folders.GetRoot(ctx, group.ID)
	require.NoError(t, err)
	assert.False(t, root.IsArchived, "restore cascades to folders")
}

func TestRenameGroupRewritesPaths(t *testing.T) {
	f := newGroupFixture(t)
	ctx := context.Background()

	group, err := f.svc.CreateGroup(ctx, superadmin(), "acme")
	require.NoError(t, err)

	root, err := f.folders.GetRoot(ctx, group.ID)
	require.NoError(t, err)
	sub := &models.Folder{Name: "reports", Path: "/acme/reports", ParentID: &root.ID, GroupID: group.ID}
	require.NoError(t, f.folders.Create(ctx, sub))

	file := &models.File{Name: "a.pdf", Path: "/acme/reports/a.pdf", GroupID: group.ID}
	require.NoError(t, f.files.Create(ctx, file))

	renamed, err := f.svc.RenameGroup(ctx, superadmin(), group.ID, "acme-corp")
	require.NoError(t, err)
	assert.Equal(t, "acme-corp", renamed.Name)

	gotRoot, err := f.folders.GetByID(ctx, root.ID)
	require.NoError(t, err)
	assert.Equal(t, "/acme-corp", gotRoot.Path)
	assert.Equal(t, "acme-corp", gotRoot.Name)

	gotSub, err := f.folders.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "/acme-corp/reports", gotSub.Path)

	gotFile, err := f.files.GetByID(ctx, file.ID)
	require.NoError(t, err)
	assert.Equal(t, "/acme-corp/reports/a.pdf", gotFile.Path)

	// Physical directory moved with the name
	assert.DirExists(t, filepath.Join(f.store.Root(), "acme-corp"))
	assert.NoDirExists(t, filepath.Join(f.store.Root(), "acme"))
}
