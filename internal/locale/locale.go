// internal/locale/locale.go
//
// Locale set and path-prefix helpers.
//
// Context
// -------
// DocForge serves six languages.  The default locale (English) is never
// shown in canonical URLs; every other locale appears as a leading path
// segment, e.g. `/fr/dashboard`.  The request pipeline relies on three
// pure helpers:
//
//   Split(path)      – detect and separate a supported `/xx` prefix.
//   Strip(path)      – classification always runs on the stripped path.
//   Preferred(...)   – cookie preference, then Accept-Language, then "en".
//
// Notes
// -----
// • All helpers are pure; no I/O, no globals beyond the locale table.
// • Oxford commas, two spaces after periods.

package locale

import (
	"net/http"
	"strings"
)

// Default is the canonical locale, hidden from URLs.
const Default = "en"

// CookieName is the preference cookie set by the language switcher.
const CookieName = "NEXT_LOCALE"

// supported is the fixed locale set.  Order matters only for Supported();
// membership is what the pipeline cares about.
var supported = map[string]struct{}{
	"en": {}, "fr": {}, "de": {}, "es": {}, "it": {}, "pt": {},
}

// All returns the supported locale codes (copy; callers may not mutate
// package state).
func All() []string {
	return []string{"en", "fr", "de", "es", "it", "pt"}
}

// Supported reports whether code is one of the six served locales.
func Supported(code string) bool {
	_, ok := supported[code]
	return ok
}

// Split separates a supported locale prefix from path.  It recognises both
// `/xx` and `/xx/...`.  rest always keeps its leading slash; for a bare
// `/xx` the rest is "/".  ok is false when no supported prefix is present,
// in which case loc is "" and rest is the input unchanged.
func Split(path string) (loc, rest string, ok bool) {
	if len(path) < 3 || path[0] != '/' {
		return "", path, false
	}
	code := path[1:3]
	if !Supported(code) {
		return "", path, false
	}
	switch {
	case len(path) == 3: // "/fr"
		return code, "/", true
	case path[3] == '/': // "/fr/..."
		return code, path[3:], true
	}
	return "", path, false
}

// Strip returns path with any supported locale prefix removed.  Paths
// without a prefix pass through unchanged.
func Strip(path string) string {
	_, rest, _ := Split(path)
	return rest
}

// Prefix joins loc onto path.  The default locale yields the bare path so
// canonical URLs stay clean.
func Prefix(loc, path string) string {
	if loc == "" || loc == Default {
		return path
	}
	if path == "/" {
		return "/" + loc + "/"
	}
	return "/" + loc + path
}

// Preferred resolves the target locale for a prefix-less request:
// preference cookie first, then the Accept-Language header, then Default.
// Unsupported values in either source are ignored.
func Preferred(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && Supported(c.Value) {
		return c.Value
	}
	if lang := FromAcceptLanguage(r.Header.Get("Accept-Language")); lang != "" {
		return lang
	}
	return Default
}

// FromAcceptLanguage returns the first supported primary tag from an
// Accept-Language header, or "" when none match.  Quality factors are
// ignored; the header's own ordering wins.
func FromAcceptLanguage(header string) string {
	for _, part := range strings.Split(header, ",") {
		tag := strings.TrimSpace(part)
		if i := strings.IndexByte(tag, ';'); i != -1 {
			tag = tag[:i]
		}
		if i := strings.IndexByte(tag, '-'); i != -1 {
			tag = tag[:i]
		}
		tag = strings.ToLower(strings.TrimSpace(tag))
		if Supported(tag) {
			return tag
		}
	}
	return ""
}
