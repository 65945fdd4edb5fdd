package rbac

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CatalogRow is one row of the module/permission left join. Permission is nil
// for modules without any permissions.
type CatalogRow struct {
	Module     Module
	Permission *Permission
}

// CatalogRepository reads the module/permission catalog from PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository constructs a repository.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// ListModulePermissionRows returns the flattened catalog ordered by module key
// then permission name.
func (r *CatalogRepository) ListModulePermissionRows(ctx context.Context) ([]CatalogRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT m.id, m.module_key, m.module_name, COALESCE(m.description, ''), m.is_system,
		       p.id, p.permission_name, COALESCE(p.description, '')
		FROM modules m
		LEFT JOIN permissions p ON p.module_id = m.id
		ORDER BY m.module_key ASC, p.permission_name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []CatalogRow
	for rows.Next() {
		var row CatalogRow
		var permID *int64
		var permName, permDescription *string
		if err := rows.Scan(
			&row.Module.ID, &row.Module.Key, &row.Module.Name, &row.Module.Description, &row.Module.IsSystem,
			&permID, &permName, &permDescription,
		); err != nil {
			return nil, err
		}
		if permID != nil {
			row.Permission = &Permission{
				ID:       *permID,
				ModuleID: row.Module.ID,
				Name:     *permName,
			}
			if permDescription != nil {
				row.Permission.Description = *permDescription
			}
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
