package roles

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"log/slog"

	"github.com/meridian-commerce/meridian-admin/internal/platform/httpx"
	"github.com/meridian-commerce/meridian-admin/internal/rbac"
	"github.com/meridian-commerce/meridian-admin/internal/shared"
)

// RepositoryPort defines data access methods for roles.
type RepositoryPort interface {
	Create(ctx context.Context, name, key, description string) (Role, error)
	List(ctx context.Context) ([]RoleSummary, error)
	GetByID(ctx context.Context, id int64) (Role, error)
	GetPermissions(ctx context.Context, roleID int64) ([]rbac.Permission, error)
	Update(ctx context.Context, id int64, name, key, description string) (Role, error)
	Delete(ctx context.Context, id int64) error
	CountAdmins(ctx context.Context, roleID int64) (int64, error)
	ExistsNameOrKey(ctx context.Context, name, key string, excludeID int64) (bool, error)
	FindPermissionRefs(ctx context.Context, ids []int64) ([]PermissionRef, error)
	ReplacePermissions(ctx context.Context, roleID int64, ids []int64) error
}

// Auditor records mutations; nil-safe via the service guard.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service handles role business logic.
type Service struct {
	repo   RepositoryPort
	audit  Auditor
	logger *slog.Logger
}

// NewService builds Service instance. audit may be nil.
func NewService(repo RepositoryPort, audit Auditor, logger *slog.Logger) *Service {
	return &Service{repo: repo, audit: audit, logger: logger}
}

// Create inserts a new role. The role key defaults to the slugified name and
// new roles never start as system roles.
func (s *Service) Create(ctx context.Context, req CreateRoleRequest) (Role, error) {
	name := strings.TrimSpace(req.RoleName)
	if name == "" {
		return Role{}, fmt.Errorf("%w: role name is required", httpx.ErrValidation)
	}

	key := strings.TrimSpace(req.RoleKey)
	if key == "" {
		key = name
	}
	key = Slugify(key)
	if key == "" {
		return Role{}, fmt.Errorf("%w: role key must contain at least one alphanumeric character", httpx.ErrValidation)
	}

	exists, err := s.repo.ExistsNameOrKey(ctx, name, key, 0)
	if err != nil {
		return Role{}, err
	}
	if exists {
		return Role{}, fmt.Errorf("%w: a role with the same name or key already exists", httpx.ErrConflict)
	}

	role, err := s.repo.Create(ctx, name, key, strings.TrimSpace(req.Description))
	if err != nil {
		return Role{}, err
	}
	s.recordAudit(ctx, "role.create", role.ID, map[string]any{"role_name": role.Name, "role_key": role.Key})
	return role, nil
}

// List returns all roles with aggregate counts.
func (s *Service) List(ctx context.Context) ([]RoleSummary, error) {
	return s.repo.List(ctx)
}

// Get fetches a role together with its explicitly granted permissions.
func (s *Service) Get(ctx context.Context, id int64) (RoleDetail, error) {
	role, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return RoleDetail{}, err
	}
	perms, err := s.repo.GetPermissions(ctx, id)
	if err != nil {
		return RoleDetail{}, err
	}
	return RoleDetail{Role: role, Permissions: perms}, nil
}

// Update changes a role's identity fields. The super admin system role is
// frozen entirely.
func (s *Service) Update(ctx context.Context, id int64, req UpdateRoleRequest) (Role, error) {
	role, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Role{}, err
	}
	if role.IsSuperAdmin() {
		return Role{}, fmt.Errorf("%w: the super admin role cannot be modified", httpx.ErrForbidden)
	}
	if req.RoleName == nil && req.RoleKey == nil && req.Description == nil {
		return Role{}, fmt.Errorf("%w: at least one field must be provided", httpx.ErrValidation)
	}

	name := role.Name
	if req.RoleName != nil {
		name = strings.TrimSpace(*req.RoleName)
		if name == "" {
			return Role{}, fmt.Errorf("%w: role name cannot be empty", httpx.ErrValidation)
		}
	}
	key := role.Key
	if req.RoleKey != nil {
		key = Slugify(*req.RoleKey)
		if key == "" {
			return Role{}, fmt.Errorf("%w: role key must contain at least one alphanumeric character", httpx.ErrValidation)
		}
	}
	description := role.Description
	if req.Description != nil {
		description = strings.TrimSpace(*req.Description)
	}

	exists, err := s.repo.ExistsNameOrKey(ctx, name, key, id)
	if err != nil {
		return Role{}, err
	}
	if exists {
		return Role{}, fmt.Errorf("%w: a role with the same name or key already exists", httpx.ErrConflict)
	}

	updated, err := s.repo.Update(ctx, id, name, key, description)
	if err != nil {
		return Role{}, err
	}
	s.recordAudit(ctx, "role.update", id, map[string]any{"role_name": updated.Name, "role_key": updated.Key})
	return updated, nil
}

// Delete removes an unused, non-system role together with its permission
// assignments.
func (s *Service) Delete(ctx context.Context, id int64) error {
	role, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if role.IsSystem {
		return fmt.Errorf("%w: system roles cannot be deleted", httpx.ErrForbidden)
	}
	admins, err := s.repo.CountAdmins(ctx, id)
	if err != nil {
		return err
	}
	if admins > 0 {
		return fmt.Errorf("%w: role is still assigned to %d admin account(s)", httpx.ErrConflict, admins)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, "role.delete", id, map[string]any{"role_name": role.Name, "role_key": role.Key})
	return nil
}

// AssignPermissions replaces the role's complete permission set. An empty set
// is valid and clears all assignments. This is the only mutating entry point
// for the role/permission join.
func (s *Service) AssignPermissions(ctx context.Context, roleID int64, req AssignPermissionsRequest) error {
	role, err := s.repo.GetByID(ctx, roleID)
	if err != nil {
		return err
	}
	if role.IsSuperAdmin() {
		return fmt.Errorf("%w: the super admin role implicitly has all permissions and cannot be assigned to", httpx.ErrForbidden)
	}

	ids := req.NormalizedIDs()
	if len(ids) > 0 {
		refs, err := s.repo.FindPermissionRefs(ctx, ids)
		if err != nil {
			return err
		}
		byID := make(map[int64]PermissionRef, len(refs))
		for _, ref := range refs {
			byID[ref.ID] = ref
		}

		var restrictedIDs []int64
		var restrictedKeys []string
		var unknownIDs []int64
		for _, id := range ids {
			ref, ok := byID[id]
			if !ok {
				unknownIDs = append(unknownIDs, id)
				continue
			}
			if rbac.IsRestrictedModule(ref.ModuleKey) {
				restrictedIDs = append(restrictedIDs, id)
				restrictedKeys = append(restrictedKeys, ref.ModuleKey)
			}
		}
		if len(restrictedIDs) > 0 {
			return &RestrictedAssignmentError{
				PermissionIDs: restrictedIDs,
				Modules:       rbac.RestrictedSubset(restrictedKeys),
			}
		}
		if len(unknownIDs) > 0 {
			return &InvalidPermissionsError{PermissionIDs: unknownIDs}
		}
	}

	if err := s.repo.ReplacePermissions(ctx, roleID, ids); err != nil {
		return err
	}
	s.recordAudit(ctx, "role.assign_permissions", roleID, map[string]any{"permission_ids": ids})
	return nil
}

func (s *Service) recordAudit(ctx context.Context, action string, roleID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	var actorID int64
	if admin := shared.AdminFromContext(ctx); admin != nil {
		actorID = admin.ID
	}
	log := shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "role",
		EntityID: strconv.FormatInt(roleID, 10),
		Meta:     meta,
	}
	if err := s.audit.Record(ctx, log); err != nil && s.logger != nil {
		s.logger.Warn("record audit log", slog.String("action", action), slog.Any("error", err))
	}
}
