// Package rbac implements the role-based access control core: the restricted
// module registry, the permission catalog and the authorization middleware.
package rbac

import "strings"

// Module is a named functional area of the admin system that owns a set of
// permissions.
type Module struct {
	ID          int64  `json:"module_id"`
	Key         string `json:"module_key"`
	Name        string `json:"module_name"`
	Description string `json:"description"`
	IsSystem    bool   `json:"is_system"`
}

// Permission is an atomic capability within a module.
type Permission struct {
	ID          int64  `json:"permission_id"`
	ModuleID    int64  `json:"module_id"`
	Name        string `json:"permission_name"`
	Description string `json:"description"`
	Key         string `json:"permission_key"`
}

// ModuleWithPermissions is a catalog entry: a module and its permissions.
// Permissions is never nil; modules without permissions carry an empty slice.
type ModuleWithPermissions struct {
	Module
	Permissions []Permission `json:"permissions"`
}

// PermissionKey derives the canonical lower-cased identifier used for all
// authorization comparisons, in the form "module_key:permission_name".
func PermissionKey(moduleKey, permissionName string) string {
	return strings.ToLower(moduleKey + ":" + permissionName)
}
