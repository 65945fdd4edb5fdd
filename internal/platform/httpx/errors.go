package httpx

import (
	"errors"
	"strings"
)

// Sentinel errors for the domain layer. Services wrap these with context via
// fmt.Errorf("%w: ...", ...) and handlers map them through RespondError.
var (
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
)

// UserSafeMessage extracts the part of the error message suitable for clients.
// Wrapped sentinel prefixes are stripped so "validation failed: role name is
// required" surfaces as "role name is required".
func UserSafeMessage(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, sentinel := range []error{ErrValidation, ErrConflict, ErrNotFound, ErrForbidden, ErrUnauthorized} {
		prefix := sentinel.Error() + ": "
		if strings.HasPrefix(msg, prefix) {
			return strings.TrimPrefix(msg, prefix)
		}
	}
	return msg
}
