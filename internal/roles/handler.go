package roles

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-commerce/meridian-admin/internal/platform/httpx"
	"github.com/meridian-commerce/meridian-admin/internal/rbac"
)

// Handler manages role management endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
	rbac     rbac.Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbac rbac.Middleware) *Handler {
	return &Handler{
		logger:   logger,
		service:  service,
		validate: validator.New(),
		rbac:     rbac,
	}
}

// MountRoutes registers role routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require("roles:view"))
		r.Get("/", h.list)
		r.Get("/{id}", h.get)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require("roles:create"))
		r.Post("/", h.create)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require("roles:update"))
		r.Put("/{id}", h.update)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require("roles:delete"))
		r.Delete("/{id}", h.delete)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.Require("roles:assign_permissions"))
		r.Put("/{id}/permissions", h.assignPermissions)
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list roles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, http.StatusOK, map[string]any{"roles": summaries})
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.roleID(w, r)
	if !ok {
		return
	}
	detail, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.logError("get role", err, id)
		httpx.RespondError(w, err)
		return
	}
	httpx.Success(w, http.StatusOK, map[string]any{"role": detail})
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, validationMessage(err)))
		return
	}

	role, err := h.service.Create(r.Context(), req)
	if err != nil {
		h.logError("create role", err, 0)
		httpx.RespondError(w, err)
		return
	}
	httpx.SuccessMessage(w, http.StatusCreated, map[string]any{"role": role}, "Role created successfully.")
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.roleID(w, r)
	if !ok {
		return
	}
	var req UpdateRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: %s", httpx.ErrValidation, validationMessage(err)))
		return
	}

	role, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		h.logError("update role", err, id)
		httpx.RespondError(w, err)
		return
	}
	httpx.SuccessMessage(w, http.StatusOK, map[string]any{"role": role}, "Role updated successfully.")
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.roleID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.logError("delete role", err, id)
		httpx.RespondError(w, err)
		return
	}
	httpx.SuccessMessage(w, http.StatusOK, nil, "Role deleted successfully.")
}

type assignmentErrorBody struct {
	Status               string   `json:"status"`
	Message              string   `json:"message"`
	InvalidPermissionIDs []int64  `json:"invalidPermissionIds,omitempty"`
	RestrictedModules    []string `json:"restrictedModules,omitempty"`
}

func (h *Handler) assignPermissions(w http.ResponseWriter, r *http.Request) {
	id, ok := h.roleID(w, r)
	if !ok {
		return
	}
	var req AssignPermissionsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}

	if err := h.service.AssignPermissions(r.Context(), id, req); err != nil {
		var restricted *RestrictedAssignmentError
		if errors.As(err, &restricted) {
			httpx.JSON(w, http.StatusForbidden, assignmentErrorBody{
				Status:               "error",
				Message:              "Cannot assign permissions from restricted modules.",
				InvalidPermissionIDs: restricted.PermissionIDs,
				RestrictedModules:    restricted.Modules,
			})
			return
		}
		var invalid *InvalidPermissionsError
		if errors.As(err, &invalid) {
			httpx.JSON(w, http.StatusBadRequest, assignmentErrorBody{
				Status:               "error",
				Message:              "Some permission ids do not exist.",
				InvalidPermissionIDs: invalid.PermissionIDs,
			})
			return
		}
		h.logError("assign role permissions", err, id)
		httpx.RespondError(w, err)
		return
	}
	httpx.SuccessMessage(w, http.StatusOK, nil, "Role permissions updated successfully.")
}

func (h *Handler) roleID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		httpx.Error(w, http.StatusBadRequest, "Invalid role id.")
		return 0, false
	}
	return id, true
}

func (h *Handler) logError(op string, err error, roleID int64) {
	if h.logger == nil {
		return
	}
	h.logger.Error(op, slog.Int64("role_id", roleID), slog.Any("error", err))
}

func validationMessage(err error) string {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		first := fieldErrs[0]
		return fmt.Sprintf("field %s failed validation on %s", first.Field(), first.Tag())
	}
	return "invalid request payload"
}
