package rbac

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsRestrictedModule(t *testing.T) {
	restricted := []string{
		"settings_general",
		"settings_",
		"seo_settings",
		"seo_settings_home",
		"telegram_bot_configuration",
		"telegram_bot_config",
		"roles",
		"admin_roles",
		"profile",
		"profile_tab_2fa",
		"profile_tab_password",
		"profile_tab_email",
		"offline_payment_methods",
		"admins",
		"admin_accounts",
	}
	for _, key := range restricted {
		require.True(t, IsRestrictedModule(key), "expected %q to be restricted", key)
	}

	open := []string{"files", "blogs", "courses", "coupons", "leads", "suppliers", "settings", "profiles"}
	for _, key := range open {
		require.False(t, IsRestrictedModule(key), "expected %q to be open", key)
	}
}

func TestIsRestrictedModuleCaseInsensitive(t *testing.T) {
	require.True(t, IsRestrictedModule("Roles"))
	require.True(t, IsRestrictedModule("  SETTINGS_PAYMENTS  "))
	require.False(t, IsRestrictedModule("Blogs"))
}

func TestRestrictedSubset(t *testing.T) {
	got := RestrictedSubset([]string{"blogs", "admins", "roles", "admins", "files"})
	require.Equal(t, []string{"admins", "roles"}, got)

	require.Empty(t, RestrictedSubset([]string{"blogs", "files"}))
	require.Empty(t, RestrictedSubset(nil))
}
