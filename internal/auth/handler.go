package auth

import (
	"fmt"
	"net/http"
	"time"

	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-playground/validator/v10"

	"github.com/meridian-commerce/meridian-admin/internal/platform/httpx"
	"github.com/meridian-commerce/meridian-admin/internal/shared"
)

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type identityPayload struct {
	ID           int64    `json:"id"`
	Email        string   `json:"email"`
	IsSuperAdmin bool     `json:"is_super_admin"`
	Permissions  []string `json:"permissions"`
}

// Handler manages authentication endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	sessions *shared.SessionManager
	validate *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager) *Handler {
	return &Handler{logger: logger, service: service, sessions: sessions, validate: validator.New()}
}

// MountRoutes registers auth routes. Login is rate limited per client IP.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(httprate.LimitByIP(10, time.Minute))
		r.Post("/login", h.login)
	})
	r.Post("/logout", h.logout)
	r.Get("/me", h.me)
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, fmt.Errorf("%w: email and password are required", httpx.ErrValidation))
		return
	}

	admin, err := h.service.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if h.logger != nil {
			h.logger.Warn("login failed", slog.String("email", req.Email))
		}
		httpx.RespondError(w, err)
		return
	}

	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		httpx.Error(w, http.StatusInternalServerError, "Internal server error.")
		return
	}
	sess.SetIdentity(admin)

	httpx.SuccessMessage(w, http.StatusOK, map[string]any{"admin": toIdentityPayload(admin)}, "Logged in successfully.")
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.sessions.Destroy(sess)
	}
	httpx.SuccessMessage(w, http.StatusOK, nil, "Logged out successfully.")
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	admin := shared.AdminFromContext(r.Context())
	if admin == nil {
		httpx.Error(w, http.StatusUnauthorized, "Authentication required.")
		return
	}
	httpx.Success(w, http.StatusOK, map[string]any{"admin": toIdentityPayload(admin)})
}

func toIdentityPayload(admin *shared.AdminContext) identityPayload {
	perms := admin.Permissions
	if perms == nil {
		perms = []string{}
	}
	return identityPayload{
		ID:           admin.ID,
		Email:        admin.Email,
		IsSuperAdmin: admin.IsSuperAdmin,
		Permissions:  perms,
	}
}
