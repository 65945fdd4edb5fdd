// Package roles implements the role store: role lifecycle and the replace-all
// permission assignment that feeds the authorization gate.
package roles

import (
	"time"

	"github.com/meridian-commerce/meridian-admin/internal/rbac"
)

// SuperAdminRoleKey identifies the immutable all-access system role.
const SuperAdminRoleKey = "super_admin"

// Role is a named, reusable bundle of permissions assignable to admin accounts.
type Role struct {
	ID          int64     `json:"role_id"`
	Name        string    `json:"role_name"`
	Key         string    `json:"role_key"`
	Description string    `json:"description"`
	IsSystem    bool      `json:"is_system"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsSuperAdmin reports whether this is the frozen super admin system role.
// The role implicitly has every permission and bypasses the join table.
func (r Role) IsSuperAdmin() bool {
	return r.IsSystem && r.Key == SuperAdminRoleKey
}

// RoleSummary is a listing row with aggregate counts.
type RoleSummary struct {
	Role
	PermissionCount int64 `json:"permission_count"`
	AdminCount      int64 `json:"admin_count"`
}

// RoleDetail is a role with its explicitly granted permissions. The list is
// ground truth from the join table, unfiltered by restricted status.
type RoleDetail struct {
	Role
	Permissions []rbac.Permission `json:"permissions"`
}

// PermissionRef is the minimal permission projection used to validate
// assignment requests.
type PermissionRef struct {
	ID        int64
	ModuleKey string
}
