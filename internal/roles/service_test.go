package roles

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/meridian-commerce/meridian-admin/internal/platform/httpx"
	"github.com/meridian-commerce/meridian-admin/internal/rbac"
)

type catalogEntry struct {
	moduleKey string
	name      string
}

type memoryRepo struct {
	nextID  int64
	roles   map[int64]Role
	catalog map[int64]catalogEntry
	granted map[int64][]int64
	admins  map[int64]int64
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{
		roles:   make(map[int64]Role),
		catalog: make(map[int64]catalogEntry),
		granted: make(map[int64][]int64),
		admins:  make(map[int64]int64),
	}
}

func (r *memoryRepo) addRole(role Role) Role {
	r.nextID++
	role.ID = r.nextID
	role.CreatedAt = time.Now()
	role.UpdatedAt = role.CreatedAt
	r.roles[role.ID] = role
	return role
}

func (r *memoryRepo) addPermission(id int64, moduleKey, name string) {
	r.catalog[id] = catalogEntry{moduleKey: moduleKey, name: name}
}

func (r *memoryRepo) Create(ctx context.Context, name, key, description string) (Role, error) {
	return r.addRole(Role{Name: name, Key: key, Description: description}), nil
}

func (r *memoryRepo) List(ctx context.Context) ([]RoleSummary, error) {
	summaries := make([]RoleSummary, 0, len(r.roles))
	for id, role := range r.roles {
		summaries = append(summaries, RoleSummary{
			Role:            role,
			PermissionCount: int64(len(r.granted[id])),
			AdminCount:      r.admins[id],
		})
	}
	return summaries, nil
}

func (r *memoryRepo) GetByID(ctx context.Context, id int64) (Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return Role{}, fmt.Errorf("%w: role not found", httpx.ErrNotFound)
	}
	return role, nil
}

func (r *memoryRepo) GetPermissions(ctx context.Context, roleID int64) ([]rbac.Permission, error) {
	perms := make([]rbac.Permission, 0)
	for _, id := range r.granted[roleID] {
		entry := r.catalog[id]
		perms = append(perms, rbac.Permission{
			ID:   id,
			Name: entry.name,
			Key:  rbac.PermissionKey(entry.moduleKey, entry.name),
		})
	}
	return perms, nil
}

func (r *memoryRepo) Update(ctx context.Context, id int64, name, key, description string) (Role, error) {
	role, ok := r.roles[id]
	if !ok {
		return Role{}, fmt.Errorf("%w: role not found", httpx.ErrNotFound)
	}
	role.Name, role.Key, role.Description = name, key, description
	role.UpdatedAt = time.Now()
	r.roles[id] = role
	return role, nil
}

func (r *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := r.roles[id]; !ok {
		return fmt.Errorf("%w: role not found", httpx.ErrNotFound)
	}
	delete(r.roles, id)
	delete(r.granted, id)
	return nil
}

func (r *memoryRepo) CountAdmins(ctx context.Context, roleID int64) (int64, error) {
	return r.admins[roleID], nil
}

func (r *memoryRepo) ExistsNameOrKey(ctx context.Context, name, key string, excludeID int64) (bool, error) {
	for id, role := range r.roles {
		if id == excludeID {
			continue
		}
		if role.Name == name || role.Key == key {
			return true, nil
		}
	}
	return false, nil
}

func (r *memoryRepo) FindPermissionRefs(ctx context.Context, ids []int64) ([]PermissionRef, error) {
	refs := make([]PermissionRef, 0, len(ids))
	for _, id := range ids {
		if entry, ok := r.catalog[id]; ok {
			refs = append(refs, PermissionRef{ID: id, ModuleKey: entry.moduleKey})
		}
	}
	return refs, nil
}

func (r *memoryRepo) ReplacePermissions(ctx context.Context, roleID int64, ids []int64) error {
	r.granted[roleID] = append([]int64(nil), ids...)
	return nil
}

func rawIDs(t *testing.T, values ...any) AssignPermissionsRequest {
	t.Helper()
	req := AssignPermissionsRequest{}
	for _, v := range values {
		data, err := json.Marshal(v)
		require.NoError(t, err)
		req.PermissionIDs = append(req.PermissionIDs, json.RawMessage(data))
	}
	return req
}

func permissionKeys(perms []rbac.Permission) []string {
	keys := make([]string, len(perms))
	for i, p := range perms {
		keys[i] = p.Key
	}
	return keys
}

func newTestService(repo *memoryRepo) *Service {
	return NewService(repo, nil, nil)
}

func seedCatalog(repo *memoryRepo) {
	repo.addPermission(1, "files", "list")
	repo.addPermission(2, "files", "view")
	repo.addPermission(3, "blogs", "edit")
	repo.addPermission(4, "admins", "list")
	repo.addPermission(5, "settings_payments", "edit")
}

func TestCreateRoleDefaultsKeyFromName(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	role, err := svc.Create(context.Background(), CreateRoleRequest{RoleName: "Support Staff"})
	require.NoError(t, err)
	require.Equal(t, "support_staff", role.Key)
	require.False(t, role.IsSystem)

	role, err = svc.Create(context.Background(), CreateRoleRequest{RoleName: "A!!!B"})
	require.NoError(t, err)
	require.Equal(t, "a_b", role.Key)
}

func TestCreateRoleValidation(t *testing.T) {
	svc := newTestService(newMemoryRepo())

	_, err := svc.Create(context.Background(), CreateRoleRequest{RoleName: "   "})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Create(context.Background(), CreateRoleRequest{RoleName: "Editor", RoleKey: "!!!"})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCreateRoleConflict(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)

	_, err := svc.Create(context.Background(), CreateRoleRequest{RoleName: "Editor"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateRoleRequest{RoleName: "Editor"})
	require.ErrorIs(t, err, httpx.ErrConflict)

	// Same key via a different display name.
	_, err = svc.Create(context.Background(), CreateRoleRequest{RoleName: "EDITOR!", RoleKey: "editor"})
	require.ErrorIs(t, err, httpx.ErrConflict)
}

func TestAssignPermissionsReplacesNotMerges(t *testing.T) {
	repo := newMemoryRepo()
	seedCatalog(repo)
	svc := newTestService(repo)
	role := repo.addRole(Role{Name: "Editor", Key: "editor"})
	ctx := context.Background()

	require.NoError(t, svc.AssignPermissions(ctx, role.ID, rawIDs(t, 1, 2)))
	require.NoError(t, svc.AssignPermissions(ctx, role.ID, rawIDs(t, 2, 3)))

	detail, err := svc.Get(ctx, role.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"files:view", "blogs:edit"}, permissionKeys(detail.Permissions))
}

func TestAssignPermissionsEmptyClears(t *testing.T) {
	repo := newMemoryRepo()
	seedCatalog(repo)
	svc := newTestService(repo)
	role := repo.addRole(Role{Name: "Editor", Key: "editor"})
	ctx := context.Background()

	require.NoError(t, svc.AssignPermissions(ctx, role.ID, rawIDs(t, 1, 2)))
	require.NoError(t, svc.AssignPermissions(ctx, role.ID, AssignPermissionsRequest{}))

	detail, err := svc.Get(ctx, role.ID)
	require.NoError(t, err)
	require.Empty(t, detail.Permissions)
}

func TestAssignPermissionsSuperAdminForbidden(t *testing.T) {
	repo := newMemoryRepo()
	seedCatalog(repo)
	svc := newTestService(repo)
	super := repo.addRole(Role{Name: "Super Admin", Key: SuperAdminRoleKey, IsSystem: true})

	// Any assignment, restricted or not, is rejected.
	err := svc.AssignPermissions(context.Background(), super.ID, rawIDs(t, 1))
	require.ErrorIs(t, err, httpx.ErrForbidden)

	err = svc.AssignPermissions(context.Background(), super.ID, rawIDs(t, 4))
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestAssignPermissionsRestrictedModule(t *testing.T) {
	repo := newMemoryRepo()
	seedCatalog(repo)
	svc := newTestService(repo)
	role := repo.addRole(Role{Name: "Editor", Key: "editor"})

	err := svc.AssignPermissions(context.Background(), role.ID, rawIDs(t, 1, 4, 5))
	require.ErrorIs(t, err, httpx.ErrForbidden)

	var restricted *RestrictedAssignmentError
	require.ErrorAs(t, err, &restricted)
	require.Equal(t, []int64{4, 5}, restricted.PermissionIDs)
	require.Equal(t, []string{"admins", "settings_payments"}, restricted.Modules)

	// Nothing was applied.
	detail, getErr := svc.Get(context.Background(), role.ID)
	require.NoError(t, getErr)
	require.Empty(t, detail.Permissions)
}

func TestAssignPermissionsUnknownIDs(t *testing.T) {
	repo := newMemoryRepo()
	seedCatalog(repo)
	svc := newTestService(repo)
	role := repo.addRole(Role{Name: "Editor", Key: "editor"})

	err := svc.AssignPermissions(context.Background(), role.ID, rawIDs(t, 1, 999))
	require.ErrorIs(t, err, httpx.ErrValidation)

	var invalid *InvalidPermissionsError
	require.ErrorAs(t, err, &invalid)
	require.Equal(t, []int64{999}, invalid.PermissionIDs)
}

func TestAssignPermissionsCoercesAndDedupes(t *testing.T) {
	repo := newMemoryRepo()
	seedCatalog(repo)
	svc := newTestService(repo)
	role := repo.addRole(Role{Name: "Editor", Key: "editor"})
	ctx := context.Background()

	// Numeric strings coerce, junk drops silently, duplicates collapse.
	req := rawIDs(t, 1, "2", 1, "not-a-number", true, 3.5)
	require.NoError(t, svc.AssignPermissions(ctx, role.ID, req))

	detail, err := svc.Get(ctx, role.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"files:list", "files:view"}, permissionKeys(detail.Permissions))
}

func TestDeleteRoleInUse(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	role := repo.addRole(Role{Name: "Editor", Key: "editor"})
	repo.admins[role.ID] = 2
	ctx := context.Background()

	err := svc.Delete(ctx, role.ID)
	require.ErrorIs(t, err, httpx.ErrConflict)

	// After all admins are reassigned away the same delete succeeds.
	repo.admins[role.ID] = 0
	require.NoError(t, svc.Delete(ctx, role.ID))

	_, err = svc.Get(ctx, role.ID)
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestSystemRoleProtection(t *testing.T) {
	repo := newMemoryRepo()
	seedCatalog(repo)
	svc := newTestService(repo)
	super := repo.addRole(Role{Name: "Super Admin", Key: SuperAdminRoleKey, IsSystem: true})
	ctx := context.Background()

	name := "Renamed"
	_, err := svc.Update(ctx, super.ID, UpdateRoleRequest{RoleName: &name})
	require.ErrorIs(t, err, httpx.ErrForbidden)

	err = svc.Delete(ctx, super.ID)
	require.ErrorIs(t, err, httpx.ErrForbidden)

	err = svc.AssignPermissions(ctx, super.ID, rawIDs(t, 1))
	require.ErrorIs(t, err, httpx.ErrForbidden)

	// Non-super-admin system roles are still delete-protected.
	system := repo.addRole(Role{Name: "Root Ops", Key: "root_ops", IsSystem: true})
	err = svc.Delete(ctx, system.ID)
	require.ErrorIs(t, err, httpx.ErrForbidden)
}

func TestUpdateRole(t *testing.T) {
	repo := newMemoryRepo()
	svc := newTestService(repo)
	role := repo.addRole(Role{Name: "Editor", Key: "editor"})
	other := repo.addRole(Role{Name: "Viewer", Key: "viewer"})
	ctx := context.Background()

	_, err := svc.Update(ctx, role.ID, UpdateRoleRequest{})
	require.ErrorIs(t, err, httpx.ErrValidation)

	name := "Viewer"
	_, err = svc.Update(ctx, role.ID, UpdateRoleRequest{RoleName: &name})
	require.ErrorIs(t, err, httpx.ErrConflict)

	key := "Senior Editor"
	updated, err := svc.Update(ctx, role.ID, UpdateRoleRequest{RoleKey: &key})
	require.NoError(t, err)
	require.Equal(t, "senior_editor", updated.Key)
	require.Equal(t, "Editor", updated.Name)

	empty := "!!!"
	_, err = svc.Update(ctx, other.ID, UpdateRoleRequest{RoleKey: &empty})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Update(ctx, 999, UpdateRoleRequest{RoleName: &name})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestEditorLifecycleScenario(t *testing.T) {
	repo := newMemoryRepo()
	seedCatalog(repo)
	svc := newTestService(repo)
	ctx := context.Background()

	role, err := svc.Create(ctx, CreateRoleRequest{RoleName: "editor"})
	require.NoError(t, err)

	require.NoError(t, svc.AssignPermissions(ctx, role.ID, rawIDs(t, 1, 2)))

	err = svc.AssignPermissions(ctx, role.ID, rawIDs(t, 1, 2, 4))
	var restricted *RestrictedAssignmentError
	require.ErrorAs(t, err, &restricted)
	require.Equal(t, []string{"admins"}, restricted.Modules)

	require.NoError(t, svc.AssignPermissions(ctx, role.ID, rawIDs(t, 1, 2, 3)))

	detail, err := svc.Get(ctx, role.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"files:list", "files:view", "blogs:edit"}, permissionKeys(detail.Permissions))
}
