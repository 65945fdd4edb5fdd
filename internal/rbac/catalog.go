package rbac

import "context"

// CatalogRepositoryPort defines data access for the permission catalog.
type CatalogRepositoryPort interface {
	ListModulePermissionRows(ctx context.Context) ([]CatalogRow, error)
}

// Catalog produces the module → permissions tree consumed by the role editor.
type Catalog struct {
	repo CatalogRepositoryPort
}

// NewCatalog builds a Catalog instance.
func NewCatalog(repo CatalogRepositoryPort) *Catalog {
	return &Catalog{repo: repo}
}

// ListModulesWithPermissions groups the catalog rows by module, preserving
// query order, with restricted modules dropped before grouping. Every
// permission carries its canonical key.
func (c *Catalog) ListModulesWithPermissions(ctx context.Context) ([]ModuleWithPermissions, error) {
	rows, err := c.repo.ListModulePermissionRows(ctx)
	if err != nil {
		return nil, err
	}

	modules := make([]ModuleWithPermissions, 0)
	index := make(map[int64]int)
	for _, row := range rows {
		if IsRestrictedModule(row.Module.Key) {
			continue
		}
		pos, seen := index[row.Module.ID]
		if !seen {
			pos = len(modules)
			index[row.Module.ID] = pos
			modules = append(modules, ModuleWithPermissions{
				Module:      row.Module,
				Permissions: []Permission{},
			})
		}
		if row.Permission != nil {
			perm := *row.Permission
			perm.Key = PermissionKey(row.Module.Key, perm.Name)
			modules[pos].Permissions = append(modules[pos].Permissions, perm)
		}
	}
	return modules, nil
}
