package shared

import (
	"context"
	"strings"
)

// AdminContext is the authenticated admin identity carried on the request
// context. Permissions hold the resolved permission keys, lower-cased,
// computed once at authentication time.
type AdminContext struct {
	ID           int64
	Email        string
	IsSuperAdmin bool
	Permissions  []string
}

// PermissionSet returns the admin's permissions as a lookup set.
func (a *AdminContext) PermissionSet() map[string]struct{} {
	set := make(map[string]struct{}, len(a.Permissions))
	for _, p := range a.Permissions {
		set[strings.ToLower(p)] = struct{}{}
	}
	return set
}

type adminContextKey struct{}

// ContextWithAdmin stores the admin identity in context.
func ContextWithAdmin(ctx context.Context, admin *AdminContext) context.Context {
	return context.WithValue(ctx, adminContextKey{}, admin)
}

// AdminFromContext extracts the admin identity from context, nil when the
// authentication step did not run.
func AdminFromContext(ctx context.Context) *AdminContext {
	admin, _ := ctx.Value(adminContextKey{}).(*AdminContext)
	return admin
}

type sessionContextKey struct{}

// ContextWithSession stores the session in context.
func ContextWithSession(ctx context.Context, sess *Session) context.Context {
	return context.WithValue(ctx, sessionContextKey{}, sess)
}

// SessionFromContext extracts the session from context.
func SessionFromContext(ctx context.Context) *Session {
	sess, _ := ctx.Value(sessionContextKey{}).(*Session)
	return sess
}
