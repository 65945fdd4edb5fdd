package rbac

import (
	"net/http"

	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/meridian-commerce/meridian-admin/internal/platform/httpx"
)

// PermissionsHandler serves the permission catalog.
type PermissionsHandler struct {
	logger  *slog.Logger
	catalog *Catalog
	rbac    Middleware
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(logger *slog.Logger, catalog *Catalog, rbac Middleware) *PermissionsHandler {
	return &PermissionsHandler{logger: logger, catalog: catalog, rbac: rbac}
}

// MountRoutes registers permission catalog routes.
func (h *PermissionsHandler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require("roles:view"))
		r.Get("/", h.listPermissions)
	})
}

func (h *PermissionsHandler) listPermissions(w http.ResponseWriter, r *http.Request) {
	modules, err := h.catalog.ListModulesWithPermissions(r.Context())
	if err != nil {
		h.logger.Error("list permission catalog", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, http.StatusOK, map[string]any{"modules": modules})
}
