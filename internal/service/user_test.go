package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvault/internal/auth"
	"docvault/internal/domain"
	"docvault/internal/domain/models"
)

type userFixture struct {
	users  *fakeUserRepo
	groups *fakeGroupRepo
	svc    *UserService
}

func newUserFixture(t *testing.T) *userFixture {
	t.Helper()
	f := &userFixture{
		users:  newFakeUserRepo(),
		groups: newFakeGroupRepo(),
	}
	tokens, err := auth.NewTokenManager("test-secret", time.Hour, discardLogger())
	require.NoError(t, err)
	f.svc = NewUserService(f.users, f.groups, tokens, discardLogger())
	return f
}

func TestRegisterFirstUserBecomesSuperadmin(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	g1 := &models.Group{Name: "acme"}
	require.NoError(t, f.groups.Create(ctx, g1))
	g2 := &models.Group{Name: "globex"}
	require.NoError(t, f.groups.Create(ctx, g2))

	user, err := f.svc.Register(ctx, nil, &Credentials{Username: "founder", Password: "hunter2-long"})
	require.NoError(t, err)

	assert.Equal(t, models.RoleSuperadmin, user.Role)
	assert.True(t, user.CanUpload)
	assert.True(t, user.CanDownload)
	assert.True(t, user.InGroup(g1.ID))
	assert.True(t, user.InGroup(g2.ID))
	assert.NotEmpty(t, user.PasswordHash)
}

func TestRegisterLaterUsersStartUnprivileged(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	founder, err := f.svc.Register(ctx, nil, &Credentials{Username: "founder", Password: "hunter2-long"})
	require.NoError(t, err)

	sa := models.PrincipalFromUser(founder)
	user, err := f.svc.Register(ctx, sa, &Credentials{Username: "intern", Password: "hunter2-long"})
	require.NoError(t, err)

	assert.Equal(t, models.RoleUser, user.Role)
	assert.False(t, user.CanUpload)
	assert.False(t, user.CanDownload)
	assert.Empty(t, user.GroupIDs)
}

func TestRegisterClosedAfterBootstrap(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, nil, &Credentials{Username: "founder", Password: "hunter2-long"})
	require.NoError(t, err)

	// Unauthenticated registration only works for the very first account
	_, err = f.svc.Register(ctx, nil, &Credentials{Username: "mallory", Password: "hunter2-long"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	admin := &models.Principal{UserID: "a1", Role: models.RoleAdmin}
	_, err = f.svc.Register(ctx, admin, &Credentials{Username: "mallory", Password: "hunter2-long"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	sa := &models.Principal{UserID: "s1", Role: models.RoleSuperadmin}
	user, err := f.svc.Register(ctx, sa, &Credentials{Username: "mallory", Password: "hunter2-long"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	f := newUserFixture(t)

	_, err := f.svc.Register(context.Background(), nil, &Credentials{Username: "x", Password: "short"})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLogin(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	user, err := f.svc.Register(ctx, nil, &Credentials{Username: "alice", Password: "hunter2-long"})
	require.NoError(t, err)

	token, got, err := f.svc.Login(ctx, "alice", "hunter2-long")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, user.ID, got.ID)

	_, _, err = f.svc.Login(ctx, "alice", "wrong-password")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, _, err = f.svc.Login(ctx, "nobody", "hunter2-long")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLoginArchivedAccount(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	user, err := f.svc.Register(ctx, nil, &Credentials{Username: "alice", Password: "hunter2-long"})
	require.NoError(t, err)
	require.NoError(t, f.users.SetArchived(ctx, user.ID, true))

	_, _, err = f.svc.Login(ctx, "alice", "hunter2-long")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdateUserRoleRequiresSuperadmin(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	user, err := f.svc.Register(ctx, nil, &Credentials{Username: "alice", Password: "hunter2-long"})
	require.NoError(t, err)

	admin := &models.Principal{UserID: "a1", Role: models.RoleAdmin}
	role := models.RoleAdmin
	_, err = f.svc.UpdateUser(ctx, admin, user.ID, &UpdateUserRequest{Role: &role})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	sa := &models.Principal{UserID: "s1", Role: models.RoleSuperadmin}
	updated, err := f.svc.UpdateUser(ctx, sa, user.ID, &UpdateUserRequest{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, updated.Role)
}

func TestUpdateOwnPassword(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	user, err := f.svc.Register(ctx, nil, &Credentials{Username: "alice", Password: "hunter2-long"})
	require.NoError(t, err)

	self := &models.Principal{UserID: user.ID, Role: models.RoleUser}
	newPass := "even-longer-secret"
	_, err = f.svc.UpdateUser(ctx, self, user.ID, &UpdateUserRequest{Password: &newPass})
	require.NoError(t, err)

	_, _, err = f.svc.Login(ctx, "alice", newPass)
	assert.NoError(t, err)

	// Another plain user cannot reset someone else's password
	other := &models.Principal{UserID: "stranger", Role: models.RoleUser}
	_, err = f.svc.UpdateUser(ctx, other, user.ID, &UpdateUserRequest{Password: &newPass})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdatePermissionsValidatesGroups(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	group := &models.Group{Name: "acme"}
	require.NoError(t, f.groups.Create(ctx, group))
	user, err := f.svc.Register(ctx, nil, &Credentials{Username: "alice", Password: "hunter2-long"})
	require.NoError(t, err)

	admin := &models.Principal{UserID: "a1", Role: models.RoleAdmin}
	yes := true
	updated, err := f.svc.UpdatePermissions(ctx, admin, user.ID, &UpdatePermissionsRequest{
		CanUpload: &yes, GroupIDs: []string{group.ID},
	})
	require.NoError(t, err)
	assert.True(t, updated.CanUpload)
	assert.True(t, updated.InGroup(group.ID))

	_, err = f.svc.UpdatePermissions(ctx, admin, user.ID, &UpdatePermissionsRequest{
		GroupIDs: []string{"no-such-group"},
	})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestArchiveUserSelfRejected(t *testing.T) {
	f := newUserFixture(t)
	ctx := context.Background()

	user, err := f.svc.Register(ctx, nil, &Credentials{Username: "root", Password: "hunter2-long"})
	require.NoError(t, err)

	self := &models.Principal{UserID: user.ID, Role: models.RoleSuperadmin}
	err = f.svc.ArchiveUser(ctx, self, user.ID)
	assert.ErrorIs(t, err, domain.ErrValidation)

	other, err := f.svc.Register(ctx, self, &Credentials{Username: "bob", Password: "hunter2-long"})
	require.NoError(t, err)
	require.NoError(t, f.svc.ArchiveUser(ctx, self, other.ID))

	got, err := f.users.GetByID(ctx, other.ID)
	require.NoError(t, err)
	assert.True(t, got.IsArchived)
}
