package roles

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-commerce/meridian-admin/internal/platform/db"
	"github.com/meridian-commerce/meridian-admin/internal/platform/httpx"
	"github.com/meridian-commerce/meridian-admin/internal/rbac"
)

// Repository provides PostgreSQL backed persistence for roles.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const roleColumns = `id, role_name, role_key, COALESCE(description, ''), is_system, created_at, updated_at`

func scanRole(row pgx.Row) (Role, error) {
	var role Role
	err := row.Scan(&role.ID, &role.Name, &role.Key, &role.Description, &role.IsSystem, &role.CreatedAt, &role.UpdatedAt)
	return role, err
}

// Create inserts a new role. Unique violations on role_name/role_key map to
// the conflict taxonomy so concurrent creates fail cleanly.
func (r *Repository) Create(ctx context.Context, name, key, description string) (Role, error) {
	role, err := scanRole(r.pool.QueryRow(ctx, `
		INSERT INTO roles (role_name, role_key, description, is_system)
		VALUES ($1, $2, $3, FALSE)
		RETURNING `+roleColumns,
		name, key, description))
	if err != nil {
		if db.IsUniqueViolation(err) {
			return Role{}, fmt.Errorf("%w: a role with the same name or key already exists", httpx.ErrConflict)
		}
		return Role{}, err
	}
	return role, nil
}

// List returns all roles with permission and admin account counts, ordered by
// role name.
func (r *Repository) List(ctx context.Context) ([]RoleSummary, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.id, r.role_name, r.role_key, COALESCE(r.description, ''), r.is_system, r.created_at, r.updated_at,
		       (SELECT COUNT(*) FROM role_permissions rp WHERE rp.role_id = r.id) AS permission_count,
		       (SELECT COUNT(*) FROM admin_accounts a WHERE a.role_id = r.id) AS admin_count
		FROM roles r
		ORDER BY r.role_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	summaries := make([]RoleSummary, 0)
	for rows.Next() {
		var s RoleSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Key, &s.Description, &s.IsSystem, &s.CreatedAt, &s.UpdatedAt, &s.PermissionCount, &s.AdminCount); err != nil {
			return nil, err
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return summaries, nil
}

// GetByID fetches a role by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (Role, error) {
	role, err := scanRole(r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, fmt.Errorf("%w: role not found", httpx.ErrNotFound)
		}
		return Role{}, err
	}
	return role, nil
}

// GetPermissions returns the role's explicitly granted permissions with their
// canonical keys, ordered by module key then permission name.
func (r *Repository) GetPermissions(ctx context.Context, roleID int64) ([]rbac.Permission, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, p.module_id, p.permission_name, COALESCE(p.description, ''), m.module_key
		FROM role_permissions rp
		JOIN permissions p ON p.id = rp.permission_id
		JOIN modules m ON m.id = p.module_id
		WHERE rp.role_id = $1
		ORDER BY m.module_key ASC, p.permission_name ASC`, roleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	perms := make([]rbac.Permission, 0)
	for rows.Next() {
		var perm rbac.Permission
		var moduleKey string
		if err := rows.Scan(&perm.ID, &perm.ModuleID, &perm.Name, &perm.Description, &moduleKey); err != nil {
			return nil, err
		}
		perm.Key = rbac.PermissionKey(moduleKey, perm.Name)
		perms = append(perms, perm)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return perms, nil
}

// Update rewrites the role's identity fields.
func (r *Repository) Update(ctx context.Context, id int64, name, key, description string) (Role, error) {
	role, err := scanRole(r.pool.QueryRow(ctx, `
		UPDATE roles
		SET role_name = $2, role_key = $3, description = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING `+roleColumns,
		id, name, key, description))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Role{}, fmt.Errorf("%w: role not found", httpx.ErrNotFound)
		}
		if db.IsUniqueViolation(err) {
			return Role{}, fmt.Errorf("%w: a role with the same name or key already exists", httpx.ErrConflict)
		}
		return Role{}, err
	}
	return role, nil
}

// Delete removes the role and its permission assignments as one unit.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM roles WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return fmt.Errorf("%w: role not found", httpx.ErrNotFound)
		}
		return nil
	})
}

// CountAdmins returns how many admin accounts currently reference the role.
func (r *Repository) CountAdmins(ctx context.Context, roleID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM admin_accounts WHERE role_id = $1`, roleID).Scan(&count)
	return count, err
}

// ExistsNameOrKey reports whether another role already uses the given name or
// key, excluding excludeID (0 to check all roles).
func (r *Repository) ExistsNameOrKey(ctx context.Context, name, key string, excludeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM roles
			WHERE (role_name = $1 OR role_key = $2) AND id <> $3
		)`, name, key, excludeID).Scan(&exists)
	return exists, err
}

// FindPermissionRefs resolves permission ids to their owning module keys.
// Unknown ids are simply absent from the result.
func (r *Repository) FindPermissionRefs(ctx context.Context, ids []int64) ([]PermissionRef, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT p.id, m.module_key
		FROM permissions p
		JOIN modules m ON m.id = p.module_id
		WHERE p.id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	refs := make([]PermissionRef, 0, len(ids))
	for rows.Next() {
		var ref PermissionRef
		if err := rows.Scan(&ref.ID, &ref.ModuleKey); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return refs, nil
}

// ReplacePermissions swaps the role's permission set for ids inside a single
// transaction. An empty set clears all assignments.
func (r *Repository) ReplacePermissions(ctx context.Context, roleID int64, ids []int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
			return err
		}
		if len(ids) == 0 {
			return nil
		}
		batch := &pgx.Batch{}
		for _, permissionID := range ids {
			batch.Queue(`INSERT INTO role_permissions (role_id, permission_id) VALUES ($1, $2)`, roleID, permissionID)
		}
		results := tx.SendBatch(ctx, batch)
		for range ids {
			if _, err := results.Exec(); err != nil {
				_ = results.Close()
				return err
			}
		}
		return results.Close()
	})
}
