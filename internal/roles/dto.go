package roles

import (
	"encoding/json"
	"strconv"
	"strings"
)

// CreateRoleRequest is the payload for creating a role.
type CreateRoleRequest struct {
	RoleName    string `json:"role_name" validate:"required,max=150"`
	RoleKey     string `json:"role_key" validate:"omitempty,max=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

// UpdateRoleRequest is the payload for updating a role. All fields are
// optional but at least one must be present.
type UpdateRoleRequest struct {
	RoleName    *string `json:"role_name,omitempty" validate:"omitempty,min=1,max=150"`
	RoleKey     *string `json:"role_key,omitempty" validate:"omitempty,max=100"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=500"`
}

// AssignPermissionsRequest carries the complete new permission set for a role.
// The endpoint replaces, never merges: callers intending to add incrementally
// must fetch the current set first. Elements may arrive as JSON numbers or
// numeric strings; anything else is silently dropped.
type AssignPermissionsRequest struct {
	PermissionIDs []json.RawMessage `json:"permission_ids"`
}

// NormalizedIDs coerces the raw permission id list to unique int64 values,
// preserving first-seen order.
func (r AssignPermissionsRequest) NormalizedIDs() []int64 {
	ids := make([]int64, 0, len(r.PermissionIDs))
	seen := make(map[int64]struct{}, len(r.PermissionIDs))
	for _, raw := range r.PermissionIDs {
		id, ok := coercePermissionID(raw)
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func coercePermissionID(raw json.RawMessage) (int64, bool) {
	var num json.Number
	if err := json.Unmarshal(raw, &num); err == nil {
		if id, err := num.Int64(); err == nil {
			return id, true
		}
		return 0, false
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		if id, err := strconv.ParseInt(strings.TrimSpace(str), 10, 64); err == nil {
			return id, true
		}
	}
	return 0, false
}
