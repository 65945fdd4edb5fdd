package rbac

import (
	"net/http"
	"sort"
	"strings"

	"log/slog"

	"github.com/meridian-commerce/meridian-admin/internal/platform/httpx"
	"github.com/meridian-commerce/meridian-admin/internal/shared"
)

// Middleware wires authorization guards for HTTP handlers. Decisions run
// entirely against the permission set resolved at authentication time; no
// database I/O happens here.
type Middleware struct {
	Logger *slog.Logger
}

type deniedBody struct {
	Error              string   `json:"error"`
	MissingPermissions []string `json:"missingPermissions"`
}

type misconfiguredBody struct {
	Error string `json:"error"`
}

// Require ensures the current admin holds every listed permission key.
// Super admins pass unconditionally. On denial the response lists exactly the
// required keys the caller is missing.
func (m Middleware) Require(perms ...string) func(http.Handler) http.Handler {
	required := normalizePermissions(perms)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			admin := shared.AdminFromContext(r.Context())
			if admin == nil {
				// The authentication step was skipped; this is a wiring bug,
				// not an authorization failure.
				if m.Logger != nil {
					m.Logger.Error("rbac: admin context missing", slog.String("path", r.URL.Path))
				}
				httpx.JSON(w, http.StatusInternalServerError, misconfiguredBody{Error: "Admin context missing from request."})
				return
			}
			if admin.IsSuperAdmin {
				next.ServeHTTP(w, r)
				return
			}
			missing := missingPermissions(admin.PermissionSet(), required)
			if len(missing) == 0 {
				next.ServeHTTP(w, r)
				return
			}
			if m.Logger != nil {
				m.Logger.Warn("rbac: access denied",
					slog.Int64("admin_id", admin.ID),
					slog.String("path", r.URL.Path),
					slog.Any("missing", missing))
			}
			httpx.JSON(w, http.StatusForbidden, deniedBody{
				Error:              "Forbidden: insufficient permissions.",
				MissingPermissions: missing,
			})
		})
	}
}

// RequireAuthenticated only checks that an admin identity is present, without
// demanding any particular permission.
func (m Middleware) RequireAuthenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if shared.AdminFromContext(r.Context()) == nil {
			httpx.Error(w, http.StatusUnauthorized, "Authentication required.")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func normalizePermissions(perms []string) []string {
	seen := make(map[string]struct{}, len(perms))
	normalized := make([]string, 0, len(perms))
	for _, p := range perms {
		p = strings.TrimSpace(strings.ToLower(p))
		if p == "" {
			continue
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		normalized = append(normalized, p)
	}
	return normalized
}

func missingPermissions(granted map[string]struct{}, required []string) []string {
	missing := make([]string, 0)
	for _, key := range required {
		if _, ok := granted[key]; !ok {
			missing = append(missing, key)
		}
	}
	sort.Strings(missing)
	return missing
}
