// internal/pipeline/stages.go
//
// The six stage implementations.  See pipeline.go for the ordering
// contract; each function here is deliberately small enough to audit
// against it.
//
// Failure policy per stage:
//
//   resolve_session    – identity error ⇒ anonymous (fail closed for the
//                        guards that read it), logged, never a 500.
//   check_maintenance  – flag read error ⇒ off (fail open, handled inside
//                        Flags).  The asymmetry is deliberate.

package pipeline

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/docforge/docforge/internal/locale"
	"github.com/docforge/docforge/internal/metrics"
	"github.com/docforge/docforge/internal/routing"
)

// maintenancePath is the only public page served while the gate is up.
const maintenancePath = "/maintenance"

// resolveSession exchanges cookies for the current identity.  Must run
// first; every authorization decision reads its output.
func (p *Pipeline) resolveSession(ctx context.Context, c *Ctx) Result {
	sess, rotated, err := p.identity.Resolve(ctx, c.Req.Cookies())
	if err != nil {
		// Unreachable identity service degrades to anonymous.
		metrics.IdentityErrorsTotal.Inc()
		zap.S().Warnw("identity resolve degraded to anonymous",
			"path", c.Path, "err", err)
	}
	c.Session = sess
	if len(rotated) > 0 {
		c.SetCookies = rotated
		metrics.SessionRefreshTotal.Inc()
	}
	return Continue()
}

// checkProtected enforces the session requirement on protected routes.
// It runs before the normalizer so an unauthorized request is redirected
// before any rewrite commits.  The sign-in target carries the active
// locale — the path prefix when present, otherwise the visitor's
// preference — so the bounce is a single hop: /fr/dashboard and a
// prefix-less /dashboard with a French preference both land directly on
// /fr/auth/signin.
func (p *Pipeline) checkProtected(_ context.Context, c *Ctx) Result {
	if c.Class != routing.ClassProtected || c.Session.Authenticated() {
		return Continue()
	}
	loc := c.Locale
	if loc == "" {
		loc = locale.Preferred(c.Req)
	}
	return Redirect(locale.Prefix(loc, "/auth/signin"), http.StatusTemporaryRedirect)
}

// normalizeLocale canonicalizes the URL's locale prefix:
//
//   - explicit default prefix   → 308 to the prefix-less path (the default
//     locale never appears in canonical URLs)
//   - explicit other prefix     → already canonical, pass
//   - no prefix, localized path → default preference rewrites internally
//     (no round-trip for the common case); any other preference redirects
//     so the URL visibly carries the locale
//
// Internal and admin paths are never localized.  The root path gets no
// special case.
func (p *Pipeline) normalizeLocale(_ context.Context, c *Ctx) Result {
	if c.Locale != "" {
		if c.Locale == locale.Default {
			return Redirect(c.Routed, http.StatusPermanentRedirect)
		}
		return Continue()
	}

	if routing.LocaleExempt(c.Class) {
		return Continue()
	}

	target := locale.Preferred(c.Req)
	c.Locale = target
	if target == locale.Default {
		return Rewrite("/" + locale.Default + c.Path)
	}
	return Redirect(locale.Prefix(target, c.Path), http.StatusTemporaryRedirect)
}

// checkMaintenance consults the global flag for all non-internal traffic.
// While maintenance is on, the admin namespace, auth pages, the
// maintenance page itself, and admin sessions pass; everyone else is sent
// to a locale-aware maintenance page.
func (p *Pipeline) checkMaintenance(ctx context.Context, c *Ctx) Result {
	if c.Class == routing.ClassInternal {
		return Continue()
	}
	if !p.flags.Maintenance(ctx) {
		return Continue()
	}
	if c.Class == routing.ClassAdmin || c.Class == routing.ClassAuthPage {
		return Continue()
	}
	if c.Routed == maintenancePath {
		return Continue()
	}
	if c.Session.Authenticated() && p.admins.IsAdmin(c.Session.Email(), c.Session.Role()) {
		return Continue()
	}
	return Redirect(locale.Prefix(c.Locale, maintenancePath), http.StatusTemporaryRedirect)
}

// checkAdmin guards the back-office namespace: a session is required, and
// the user must be an admin by either source.  Authenticated non-admins
// land on the dashboard, anonymous visitors on sign-in.
func (p *Pipeline) checkAdmin(_ context.Context, c *Ctx) Result {
	if c.Class != routing.ClassAdmin {
		return Continue()
	}
	if !c.Session.Authenticated() {
		return Redirect("/auth/signin", http.StatusTemporaryRedirect)
	}
	if !p.admins.IsAdmin(c.Session.Email(), c.Session.Role()) {
		return Redirect("/dashboard", http.StatusTemporaryRedirect)
	}
	return Continue()
}

// checkAuthPage bounces authenticated users off sign-in/sign-up.  Runs
// last so an authenticated admin hitting /auth/signin still lands on the
// dashboard.
func (p *Pipeline) checkAuthPage(_ context.Context, c *Ctx) Result {
	if c.Class != routing.ClassAuthPage || !c.Session.Authenticated() {
		return Continue()
	}
	return Redirect(locale.Prefix(c.Locale, "/dashboard"), http.StatusTemporaryRedirect)
}
