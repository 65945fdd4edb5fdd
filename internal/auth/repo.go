package auth

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrAccountNotFound indicates no account matches the lookup.
var ErrAccountNotFound = errors.New("auth: account not found")

// Repository defines persistence needed by the auth service.
type Repository interface {
	FindByEmail(ctx context.Context, email string) (*AdminAccount, error)
	ResolvePermissions(ctx context.Context, accountID int64) ([]string, error)
}

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) FindByEmail(ctx context.Context, email string) (*AdminAccount, error) {
	var account AdminAccount
	err := r.pool.QueryRow(ctx, `
		SELECT id, email, name, password_hash, role_id, is_super_admin, is_active, created_at, updated_at
		FROM admin_accounts
		WHERE LOWER(email) = LOWER($1)`, email).Scan(
		&account.ID, &account.Email, &account.Name, &account.PasswordHash,
		&account.RoleID, &account.IsSuperAdmin, &account.IsActive,
		&account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// ResolvePermissions returns the lower-cased permission keys granted through
// the account's role. Accounts without a role resolve to an empty set.
func (r *pgRepository) ResolvePermissions(ctx context.Context, accountID int64) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT LOWER(m.module_key || ':' || p.permission_name)
		FROM admin_accounts a
		JOIN role_permissions rp ON rp.role_id = a.role_id
		JOIN permissions p ON p.id = rp.permission_id
		JOIN modules m ON m.id = p.module_id
		WHERE a.id = $1
		ORDER BY 1`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	perms := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		perms = append(perms, key)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return perms, nil
}
