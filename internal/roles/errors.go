package roles

import (
	"fmt"

	"github.com/meridian-commerce/meridian-admin/internal/platform/httpx"
)

// RestrictedAssignmentError rejects an attempt to grant permissions from
// restricted modules to a non-super-admin role. The handler surfaces both
// detail lists in the 403 body.
type RestrictedAssignmentError struct {
	PermissionIDs []int64
	Modules       []string
}

func (e *RestrictedAssignmentError) Error() string {
	return fmt.Sprintf("cannot assign permissions from restricted modules: %v", e.Modules)
}

func (e *RestrictedAssignmentError) Unwrap() error {
	return httpx.ErrForbidden
}

// InvalidPermissionsError rejects permission ids that do not exist in the
// catalog.
type InvalidPermissionsError struct {
	PermissionIDs []int64
}

func (e *InvalidPermissionsError) Error() string {
	return fmt.Sprintf("unknown permission ids: %v", e.PermissionIDs)
}

func (e *InvalidPermissionsError) Unwrap() error {
	return httpx.ErrValidation
}
