package roles

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxRoleKeyLength = 100

var deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify turns a role name into a role key: accents stripped, lower-cased,
// runs of non-alphanumerics collapsed to single underscores, trimmed of
// leading/trailing underscores and truncated to 100 characters. Returns ""
// when nothing slug-worthy remains.
func Slugify(name string) string {
	if stripped, _, err := transform.String(deaccent, name); err == nil {
		name = stripped
	}
	name = strings.ToLower(name)

	var b strings.Builder
	b.Grow(len(name))
	pendingSeparator := false
	for _, r := range name {
		alnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !alnum {
			pendingSeparator = b.Len() > 0
			continue
		}
		if pendingSeparator {
			b.WriteByte('_')
			pendingSeparator = false
		}
		b.WriteRune(r)
	}

	slug := b.String()
	if len(slug) > maxRoleKeyLength {
		slug = strings.TrimRight(slug[:maxRoleKeyLength], "_")
	}
	return slug
}
