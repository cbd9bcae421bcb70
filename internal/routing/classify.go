// internal/routing/classify.go
//
// Route classification.
//
// Context
// -------
// Every pipeline decision (protection, admin gating, maintenance
// exemption, auth-page bounce) starts from one question: what kind of
// path is this?  Classify answers it as a pure function so the answer is
// identical for `/dashboard` and `/fr/dashboard` — callers MUST pass the
// locale-stripped path.  Getting this wrong would let protected routes
// under a non-default locale escape the guard.
//
// Classes
// -------
//   Internal   – API, build assets, well-known files, anything with a file
//                extension.  Never localized, never maintenance-gated.
//   Admin      – back-office namespace.  Unlocalized, role-guarded.
//   Protected  – requires an authenticated session.
//   AuthPage   – sign-in/sign-up; bounced when already authenticated.
//   Public     – everything else.
//
// Notes
// -----
// • Prefix tables are package constants; tenants do not customise them.
// • Oxford commas, two spaces after periods.

package routing

import "strings"

// Class is the coarse route category the pipeline switches on.
type Class int

const (
	ClassPublic Class = iota
	ClassProtected
	ClassAdmin
	ClassAuthPage
	ClassInternal
)

// String implements fmt.Stringer for logs and metrics labels.
func (c Class) String() string {
	switch c {
	case ClassProtected:
		return "protected"
	case ClassAdmin:
		return "admin"
	case ClassAuthPage:
		return "auth_page"
	case ClassInternal:
		return "internal"
	default:
		return "public"
	}
}

var (
	// protectedPrefixes require a session.
	protectedPrefixes = []string{"/dashboard", "/generate", "/documents"}

	// internalPrefixes are exempt from localization and maintenance.
	internalPrefixes = []string{"/api/", "/static/", "/.well-known/"}

	// internalExact matches whole paths only.
	internalExact = map[string]struct{}{
		"/api":         {},
		"/healthz":     {},
		"/metrics":     {},
		"/robots.txt":  {},
		"/sitemap.xml": {},
	}
)

// Classify maps a locale-stripped path to its Class.  Precedence:
// internal > admin > auth-page > protected > public.
func Classify(path string) Class {
	if isInternal(path) {
		return ClassInternal
	}
	if path == "/admin" || strings.HasPrefix(path, "/admin/") {
		return ClassAdmin
	}
	if strings.HasPrefix(path, "/auth/signin") || strings.HasPrefix(path, "/auth/signup") {
		return ClassAuthPage
	}
	for _, p := range protectedPrefixes {
		if path == p || strings.HasPrefix(path, p+"/") {
			return ClassProtected
		}
	}
	return ClassPublic
}

// LocaleExempt reports whether the class is served outside the localized
// URL space.  Admin deliberately stays single-language.
func LocaleExempt(c Class) bool {
	return c == ClassInternal || c == ClassAdmin
}

// isInternal matches API and asset namespaces plus any path carrying a
// file extension (favicon.ico, app.css, and friends).
func isInternal(path string) bool {
	if _, ok := internalExact[path]; ok {
		return true
	}
	for _, p := range internalPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	// A dot in the last segment means a static file.
	if i := strings.LastIndexByte(path, '/'); i != -1 && strings.Contains(path[i:], ".") {
		return true
	}
	return false
}
