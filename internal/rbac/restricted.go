package rbac

import "strings"

// Modules only super admins may control. Deployment-frozen on purpose:
// widening the list is a code change, not a data change.
var restrictedModuleKeys = map[string]struct{}{
	"telegram_bot_configuration": {},
	"telegram_bot_config":        {},
	"roles":                      {},
	"admin_roles":                {},
	"profile":                    {},
	"profile_tab_2fa":            {},
	"profile_tab_password":       {},
	"profile_tab_email":          {},
	"offline_payment_methods":    {},
	"admins":                     {},
	"admin_accounts":             {},
}

var restrictedModulePrefixes = []string{"settings_", "seo_settings"}

// IsRestrictedModule reports whether moduleKey identifies a module whose
// permissions may only ever be held by the super admin role.
func IsRestrictedModule(moduleKey string) bool {
	key := strings.ToLower(strings.TrimSpace(moduleKey))
	for _, prefix := range restrictedModulePrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	_, ok := restrictedModuleKeys[key]
	return ok
}

// RestrictedSubset returns the restricted module keys among keys,
// de-duplicated, in first-seen order.
func RestrictedSubset(keys []string) []string {
	var restricted []string
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		normalized := strings.ToLower(strings.TrimSpace(key))
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		if IsRestrictedModule(normalized) {
			restricted = append(restricted, normalized)
		}
	}
	return restricted
}
