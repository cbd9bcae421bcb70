// internal/routing/slug.go
//
// URL-slug helper for blog posts, tool pages, and generated documents.
//
// Rules
// -----
// 1. Lower-case ASCII letters and digits survive.
// 2. Every other run of characters collapses to one "-".
// 3. Leading and trailing dashes are trimmed.
// 4. Empty results fall back to "document"; slugs cap at 80 bytes.
//
// Non-ASCII input is not transliterated; localized titles still produce
// stable, if terse, slugs.

package routing

import "strings"

// MakeSlug converts a title into lower-kebab ASCII.
func MakeSlug(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	dash := false
	for _, r := range strings.ToLower(title) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlnum {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "document"
	}
	if len(slug) > 80 {
		slug = strings.Trim(slug[:80], "-")
	}
	return slug
}
