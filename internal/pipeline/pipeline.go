// internal/pipeline/pipeline.go
//
// Request-interception pipeline: driver, stage list, and result types.
//
/*
Context
--------
Every inbound request passes through six ordered stages before any
handler runs:

  resolve_session    – cookies → identity, plus rotated-cookie side effect
  check_protected    – session requirement, BEFORE any locale commit
  normalize_locale   – canonicalize the locale prefix (rewrite or redirect)
  check_maintenance  – global kill-switch, fail-open
  check_admin        – back-office RBAC (config list ∪ metadata role)
  check_auth_page    – bounce signed-in users off sign-in/sign-up

The ordering is a contract, not an accident of statement order: the
protection check must see the locale-stripped path before the normalizer
commits a rewrite, otherwise a rewritten-but-unauthorized response could
leak.  Stages are plain functions returning an explicit Result so the
ordering is a visible, testable property.

A redirect Result is terminal and skips all later stages.  A rewrite
mutates the request path and evaluation continues — the maintenance and
admin gates still apply to rewritten traffic.  Whatever the terminal
outcome, refreshed session cookies are attached to the response;
dropping them on a redirect would silently sign the user out.

Instrumentation
---------------
Terminations increment `pipeline_terminations_total{stage,outcome}` and
log a DEBUG span with the path and target.

Notes
-----
  • The pipeline holds no per-request state of its own; everything lives
    in the per-request Ctx.
  • Oxford commas, two spaces after periods.
*/
package pipeline

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/docforge/docforge/internal/locale"
	"github.com/docforge/docforge/internal/metrics"
	"github.com/docforge/docforge/internal/routing"
	"github.com/docforge/docforge/internal/session"
)

/*──────────────────────────── collaborators ────────────────────────────────*/

// Resolver exchanges request cookies for a session plus any rotated
// cookies.  Implemented by *identity.Client.
type Resolver interface {
	Resolve(ctx context.Context, cookies []*http.Cookie) (session.Session, []*http.Cookie, error)
}

// Flags exposes the maintenance kill-switch.  Implemented by
// *settings.Store; the implementation owns the fail-open policy.
type Flags interface {
	Maintenance(ctx context.Context) bool
}

// AdminChecker is the two-source admin test.  Implemented by *roster.Roster.
type AdminChecker interface {
	IsAdmin(email, role string) bool
}

/*──────────────────────────── per-request state ────────────────────────────*/

// Ctx is the mutable state shared by the stages of one request.
type Ctx struct {
	Req *http.Request

	// Path is the raw inbound path; it never changes.
	Path string

	// Locale is the active locale: the path prefix when present, later
	// the normalizer's resolution.  "" until one of those happens.
	Locale string

	// Routed is the locale-stripped path.  Classification and every
	// security decision runs on it — never on Path.
	Routed string

	// Class is Classify(Routed), computed once.
	Class routing.Class

	// Session is the resolved identity; zero value is anonymous.
	Session session.Session

	// SetCookies are rotated session cookies owed to the response.
	SetCookies []*http.Cookie
}

/*──────────────────────────── results ──────────────────────────────────────*/

type action int

const (
	actContinue action = iota
	actRedirect
	actRewrite
)

// Result is a stage verdict.  The zero value continues to the next stage.
type Result struct {
	action action
	target string
	code   int
}

// Continue proceeds to the next stage.
func Continue() Result { return Result{} }

// Redirect terminates the pipeline with an HTTP redirect.
func Redirect(target string, code int) Result {
	return Result{action: actRedirect, target: target, code: code}
}

// Rewrite remaps the request path internally and continues evaluation.
func Rewrite(path string) Result {
	return Result{action: actRewrite, target: path}
}

/*──────────────────────────── pipeline ─────────────────────────────────────*/

// Stage is one named step; the name feeds logs and metrics labels.
type Stage struct {
	Name string
	Run  func(ctx context.Context, c *Ctx) Result
}

// Pipeline evaluates the ordered stage list per request.
type Pipeline struct {
	identity Resolver
	flags    Flags
	admins   AdminChecker
	stages   []Stage
}

// New wires the canonical stage order.
func New(identity Resolver, flags Flags, admins AdminChecker) *Pipeline {
	p := &Pipeline{identity: identity, flags: flags, admins: admins}
	p.stages = []Stage{
		{"resolve_session", p.resolveSession},
		{"check_protected", p.checkProtected},
		{"normalize_locale", p.normalizeLocale},
		{"check_maintenance", p.checkMaintenance},
		{"check_admin", p.checkAdmin},
		{"check_auth_page", p.checkAuthPage},
	}
	return p
}

// Stages exposes the ordered stage names; the ordering test pins them.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name
	}
	return names
}

// Middleware runs the pipeline around next.
func (p *Pipeline) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := &Ctx{Req: r, Path: r.URL.Path}
		if loc, rest, ok := locale.Split(c.Path); ok {
			c.Locale = loc
			c.Routed = rest
		} else {
			c.Routed = c.Path
		}
		c.Class = routing.Classify(c.Routed)

		for _, st := range p.stages {
			res := st.Run(r.Context(), c)
			switch res.action {
			case actRedirect:
				metrics.PipelineTerminations.WithLabelValues(st.Name, "redirect").Inc()
				zap.S().Debugw("pipeline redirect",
					"stage", st.Name, "path", c.Path, "target", res.target)
				attachCookies(w, c)
				http.Redirect(w, r, res.target, res.code)
				return
			case actRewrite:
				metrics.PipelineTerminations.WithLabelValues(st.Name, "rewrite").Inc()
				zap.S().Debugw("pipeline rewrite",
					"stage", st.Name, "path", c.Path, "target", res.target)
				r.URL.Path = res.target
			}
		}

		attachCookies(w, c)
		next.ServeHTTP(w, r.WithContext(session.NewContext(r.Context(), c.Session)))
	})
}

// attachCookies writes any rotated session cookies.  Runs for every
// terminal outcome, redirects included.
func attachCookies(w http.ResponseWriter, c *Ctx) {
	for _, ck := range c.SetCookies {
		http.SetCookie(w, ck)
	}
}
