package seed_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feastly/food-ordering-backend/internal/model"
	"github.com/feastly/food-ordering-backend/internal/repository"
	"github.com/feastly/food-ordering-backend/internal/seed"
	"github.com/feastly/food-ordering-backend/internal/utils"
)

type fakeRoleStore struct {
	roles       map[string]model.Role
	permissions map[string]model.Permission
	grants      map[string][]uint64
	creates     int
	nextID      uint64
}

func newFakeRoleStore() *fakeRoleStore {
	return &fakeRoleStore{
		roles:       make(map[string]model.Role),
		permissions: make(map[string]model.Permission),
		grants:      make(map[string][]uint64),
	}
}

func (s *fakeRoleStore) GetByName(_ context.Context, name string) (model.Role, error) {
	r, ok := s.roles[name]
	if !ok {
		return model.Role{}, repository.ErrNotFound
	}
	return r, nil
}

func (s *fakeRoleStore) GetPermissionByName(_ context.Context, name string) (model.Permission, error) {
	p, ok := s.permissions[name]
	if !ok {
		return model.Permission{}, repository.ErrNotFound
	}
	return p, nil
}

func (s *fakeRoleStore) CreatePermission(_ context.Context, name, description string) (model.Permission, error) {
	s.nextID++
	s.creates++
	p := model.Permission{ID: s.nextID, Name: name, Description: description}
	s.permissions[name] = p
	return p, nil
}

func (s *fakeRoleStore) CreateRole(_ context.Context, name string, canManage bool, permissionIDs []uint64) (model.Role, error) {
	s.nextID++
	s.creates++
	r := model.Role{ID: s.nextID, Name: name, CanManagePermissions: canManage}
	s.roles[name] = r
	s.grants[name] = permissionIDs
	return r, nil
}

type fakeUserStore struct {
	byEmail map[string]model.User
	creates int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: make(map[string]model.User)}
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := s.byEmail[email]
	if !ok {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (s *fakeUserStore) Create(_ context.Context, fullName, email, passwordHash string, roleID uint64) (model.User, error) {
	s.creates++
	u := model.User{ID: uint64(len(s.byEmail) + 1), FullName: fullName, Email: email, PasswordHash: passwordHash, RoleID: roleID}
	s.byEmail[email] = u
	return u, nil
}

func TestSeedCreatesCatalogAndAdmin(t *testing.T) {
	roles := newFakeRoleStore()
	users := newFakeUserStore()
	cat := seed.Default()

	require.NoError(t, seed.Run(context.Background(), roles, users, 4, cat))

	assert.Len(t, roles.permissions, len(cat.Permissions))
	assert.Len(t, roles.roles, 3)

	super := roles.roles[model.RoleSuperAdmin]
	assert.True(t, super.CanManagePermissions)
	assert.False(t, roles.roles[model.RoleCustomer].CanManagePermissions)
	assert.Len(t, roles.grants[model.RoleCustomer], 2)
	assert.Len(t, roles.grants[model.RoleSuperAdmin], len(cat.Permissions))

	admin, ok := users.byEmail[cat.Admin.Email]
	require.True(t, ok)
	assert.Equal(t, super.ID, admin.RoleID)
	assert.True(t, utils.VerifyPassword(admin.PasswordHash, cat.Admin.Password))
}

func TestSeedIsIdempotent(t *testing.T) {
	roles := newFakeRoleStore()
	users := newFakeUserStore()
	cat := seed.Default()

	require.NoError(t, seed.Run(context.Background(), roles, users, 4, cat))
	createsAfterFirst := roles.creates
	userCreatesAfterFirst := users.creates

	require.NoError(t, seed.Run(context.Background(), roles, users, 4, cat))
	assert.Equal(t, createsAfterFirst, roles.creates, "second run must create no roles or permissions")
	assert.Equal(t, userCreatesAfterFirst, users.creates, "second run must create no users")
}

func TestSeedWithoutAdmin(t *testing.T) {
	roles := newFakeRoleStore()
	users := newFakeUserStore()
	cat := seed.Default()
	cat.Admin = nil

	require.NoError(t, seed.Run(context.Background(), roles, users, 4, cat))
	assert.Empty(t, users.byEmail)
}
