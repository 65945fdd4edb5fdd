// Package auth implements admin account authentication. The account's
// permission set and super admin flag are resolved once here, at login time,
// and carried on the session so authorization never queries the database.
package auth

import "time"

// AdminAccount is an administrator login identity. RoleID is nil for
// accounts without a role; such accounts authenticate but hold no
// permissions.
type AdminAccount struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	RoleID       *int64
	IsSuperAdmin bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
