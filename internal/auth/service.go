package auth

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-commerce/meridian-admin/internal/platform/httpx"
	"github.com/meridian-commerce/meridian-admin/internal/shared"
)

// ErrInvalidCredentials is returned for any authentication failure. Unknown
// email, inactive account and wrong password are indistinguishable to the
// caller.
var ErrInvalidCredentials = fmt.Errorf("%w: invalid email or password", httpx.ErrUnauthorized)

// Service wraps authentication business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates credentials and returns the fully resolved admin
// identity: super admin flag plus the lower-cased permission key set.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*shared.AdminContext, error) {
	account, err := s.repo.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if !account.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	admin := &shared.AdminContext{
		ID:           account.ID,
		Email:        account.Email,
		IsSuperAdmin: account.IsSuperAdmin,
	}
	if !account.IsSuperAdmin && account.RoleID != nil {
		perms, err := s.repo.ResolvePermissions(ctx, account.ID)
		if err != nil {
			return nil, fmt.Errorf("auth: resolve permissions: %w", err)
		}
		admin.Permissions = perms
	}
	return admin, nil
}
