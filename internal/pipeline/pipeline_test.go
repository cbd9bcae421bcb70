// internal/pipeline/pipeline_test.go
//
// Pipeline tests.
//
// Context
// -------
// The pipeline's value is its ordering, not its stages in isolation, so
// these tests drive the full middleware through httptest and assert on
// the terminal response: status, Location, rewritten path, and cookie
// attachment.  Collaborators are small fakes: a scripted identity
// resolver, a settings flag that can be toggled or made to "fail", and a
// fixture roster.
//
// Run: go test ./internal/pipeline -v

package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/docforge/docforge/internal/locale"
	"github.com/docforge/docforge/internal/roster"
	"github.com/docforge/docforge/internal/session"
)

/*──────────────────────────── fakes ────────────────────────────────────────*/

// fakeResolver scripts the identity service.
type fakeResolver struct {
	sess    session.Session
	rotated []*http.Cookie
	err     error
}

func (f *fakeResolver) Resolve(context.Context, []*http.Cookie) (session.Session, []*http.Cookie, error) {
	if f.err != nil {
		return session.Anonymous(), nil, f.err
	}
	return f.sess, f.rotated, nil
}

// fakeFlags mimics the settings store, including its fail-open contract.
type fakeFlags struct {
	on      bool
	readErr bool
}

func (f *fakeFlags) Maintenance(context.Context) bool {
	if f.readErr {
		return false // the store fails open; mirrored here
	}
	return f.on
}

func user(email, role string) session.Session {
	return session.Session{User: &session.User{ID: "u-1", Email: email, Role: role}}
}

type env struct {
	resolver *fakeResolver
	flags    *fakeFlags
}

// drive runs one request through the pipeline and records what the inner
// handler saw, if it ran at all.
func drive(t *testing.T, e env, target string, cookies ...*http.Cookie) (*httptest.ResponseRecorder, *string) {
	t.Helper()

	admins := roster.New([]string{"boss@docforge.site"}, nil)
	p := New(e.resolver, e.flags, admins)

	var servedPath *string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		servedPath = &path
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, target, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rr := httptest.NewRecorder()
	p.Middleware(inner).ServeHTTP(rr, req)
	return rr, servedPath
}

func wantRedirect(t *testing.T, rr *httptest.ResponseRecorder, loc string) {
	t.Helper()
	if rr.Code != http.StatusTemporaryRedirect && rr.Code != http.StatusPermanentRedirect {
		t.Fatalf("status = %d, want redirect", rr.Code)
	}
	if got := rr.Header().Get("Location"); got != loc {
		t.Fatalf("Location = %q, want %q", got, loc)
	}
}

/*──────────────────────────── scenarios ────────────────────────────────────*/

// Scenario A: /fr/dashboard without a session redirects to the
// locale-aware sign-in page.
func TestProtected_NoSession_LocaleAwareSignin(t *testing.T) {
	rr, served := drive(t, env{&fakeResolver{}, &fakeFlags{}}, "/fr/dashboard")
	wantRedirect(t, rr, "/fr/auth/signin")
	if served != nil {
		t.Fatal("inner handler must not run")
	}
}

// Scenario B: /dashboard with a session and default preference rewrites
// internally; the client sees a plain 200 and the handler sees /en/dashboard.
func TestProtected_Session_DefaultLocaleRewrite(t *testing.T) {
	rr, served := drive(t, env{&fakeResolver{sess: user("ada@example.com", "")}, &fakeFlags{}},
		"/dashboard")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 passthrough", rr.Code)
	}
	if served == nil || *served != "/en/dashboard" {
		t.Fatalf("handler saw %v, want /en/dashboard", served)
	}
}

// Scenario C: authenticated non-admin on /admin/settings lands on the
// dashboard.
func TestAdmin_NonAdminRedirectedToDashboard(t *testing.T) {
	rr, _ := drive(t, env{&fakeResolver{sess: user("user@example.com", "")}, &fakeFlags{}},
		"/admin/settings")
	wantRedirect(t, rr, "/dashboard")
}

// Scenario D: maintenance on, non-admin session, localized protected page.
func TestMaintenance_NonAdminRedirected(t *testing.T) {
	rr, _ := drive(t, env{&fakeResolver{sess: user("user@example.com", "")}, &fakeFlags{on: true}},
		"/de/generate")
	wantRedirect(t, rr, "/de/maintenance")
}

// Scenario E: the API namespace is exempt from the maintenance gate.
func TestMaintenance_APIExempt(t *testing.T) {
	rr, served := drive(t, env{&fakeResolver{}, &fakeFlags{on: true}}, "/api/generate")
	if rr.Code != http.StatusOK || served == nil {
		t.Fatalf("API request blocked by maintenance: status=%d", rr.Code)
	}
}

/*──────────────────────────── properties ───────────────────────────────────*/

// P1: /en/dashboard canonicalizes to /dashboard, and an already-canonical
// non-default path is left alone.
func TestLocale_DefaultPrefixCanonicalized(t *testing.T) {
	rr, _ := drive(t, env{&fakeResolver{sess: user("ada@example.com", "")}, &fakeFlags{}},
		"/en/dashboard")
	if rr.Code != http.StatusPermanentRedirect {
		t.Fatalf("status = %d, want 308", rr.Code)
	}
	if got := rr.Header().Get("Location"); got != "/dashboard" {
		t.Fatalf("Location = %q, want /dashboard", got)
	}
}

func TestLocale_CanonicalPathIsNoop(t *testing.T) {
	rr, served := drive(t, env{&fakeResolver{sess: user("ada@example.com", "")}, &fakeFlags{}},
		"/fr/dashboard")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if served == nil || *served != "/fr/dashboard" {
		t.Fatalf("canonical path mutated: %v", served)
	}
}

// P2: protection is locale-invariant across every supported locale.
func TestProtected_LocaleInvariance(t *testing.T) {
	for _, loc := range locale.All() {
		if loc == locale.Default {
			continue // default prefix canonicalizes first; covered above
		}
		for _, p := range []string{"/dashboard", "/generate"} {
			rr, _ := drive(t, env{&fakeResolver{}, &fakeFlags{}}, "/"+loc+p)
			wantRedirect(t, rr, "/"+loc+"/auth/signin")

			rr, served := drive(t, env{&fakeResolver{sess: user("a@b.c", "")}, &fakeFlags{}},
				"/"+loc+p)
			if rr.Code != http.StatusOK || served == nil {
				t.Fatalf("authenticated /%s%s blocked: status=%d", loc, p, rr.Code)
			}
		}
	}
}

// P4: a failing settings read must not block traffic.
func TestMaintenance_FailOpen(t *testing.T) {
	rr, served := drive(t, env{&fakeResolver{sess: user("a@b.c", "")}, &fakeFlags{on: true, readErr: true}},
		"/fr/dashboard")
	if rr.Code != http.StatusOK || served == nil {
		t.Fatalf("fail-open violated: status=%d", rr.Code)
	}
}

// P5: authenticated users never see the sign-in page.
func TestAuthPage_BouncesAuthenticated(t *testing.T) {
	rr, _ := drive(t, env{&fakeResolver{sess: user("a@b.c", "")}, &fakeFlags{}}, "/fr/auth/signin")
	wantRedirect(t, rr, "/fr/dashboard")

	// Default-locale variant: /auth/signin rewrites to /en/..., then the
	// bounce targets the clean dashboard URL.
	rr, _ = drive(t, env{&fakeResolver{sess: user("a@b.c", "")}, &fakeFlags{}}, "/auth/signin")
	wantRedirect(t, rr, "/dashboard")
}

func TestAuthPage_AnonymousPassesThrough(t *testing.T) {
	rr, served := drive(t, env{&fakeResolver{}, &fakeFlags{}}, "/fr/auth/signin")
	if rr.Code != http.StatusOK || served == nil || *served != "/fr/auth/signin" {
		t.Fatalf("anonymous sign-in visit blocked: status=%d served=%v", rr.Code, served)
	}
}

/*──────────────────────────── locale normalizer ────────────────────────────*/

func TestLocale_PreferenceCookieRedirects(t *testing.T) {
	rr, _ := drive(t, env{&fakeResolver{}, &fakeFlags{}}, "/pricing",
		&http.Cookie{Name: locale.CookieName, Value: "pt"})
	wantRedirect(t, rr, "/pt/pricing")
}

func TestLocale_RootPathTreatedLikeAnyOther(t *testing.T) {
	// Default preference: internal rewrite.
	rr, served := drive(t, env{&fakeResolver{}, &fakeFlags{}}, "/")
	if rr.Code != http.StatusOK || served == nil || *served != "/en/" {
		t.Fatalf("root rewrite: status=%d served=%v", rr.Code, served)
	}

	// Non-default preference: visible redirect.
	rr, _ = drive(t, env{&fakeResolver{}, &fakeFlags{}}, "/",
		&http.Cookie{Name: locale.CookieName, Value: "it"})
	wantRedirect(t, rr, "/it/")
}

func TestLocale_InternalPathsNeverLocalized(t *testing.T) {
	for _, p := range []string{"/api/generate", "/favicon.ico", "/robots.txt", "/static/app.css"} {
		rr, served := drive(t, env{&fakeResolver{}, &fakeFlags{}}, p)
		if rr.Code != http.StatusOK || served == nil || *served != p {
			t.Errorf("internal path %q was localized: status=%d served=%v", p, rr.Code, served)
		}
	}
}

func TestLocale_InvalidPrefixFallsThrough(t *testing.T) {
	// "/xx" is not a supported locale; the path is normalized as a whole.
	rr, served := drive(t, env{&fakeResolver{}, &fakeFlags{}}, "/xx/pricing")
	if rr.Code != http.StatusOK || served == nil || *served != "/en/xx/pricing" {
		t.Fatalf("invalid prefix handling: status=%d served=%v", rr.Code, served)
	}
}

/*──────────────────────────── admin gate ───────────────────────────────────*/

func TestAdmin_AnonymousRedirectedToSignin(t *testing.T) {
	rr, _ := drive(t, env{&fakeResolver{}, &fakeFlags{}}, "/admin")
	wantRedirect(t, rr, "/auth/signin")
}

func TestAdmin_ConfigAdminPasses(t *testing.T) {
	rr, served := drive(t, env{&fakeResolver{sess: user("boss@docforge.site", "")}, &fakeFlags{}},
		"/admin/settings")
	if rr.Code != http.StatusOK || served == nil {
		t.Fatalf("config admin blocked: status=%d", rr.Code)
	}
}

func TestAdmin_MetadataAdminPasses(t *testing.T) {
	rr, served := drive(t, env{&fakeResolver{sess: user("meta@example.com", "admin")}, &fakeFlags{}},
		"/admin/settings")
	if rr.Code != http.StatusOK || served == nil {
		t.Fatalf("metadata admin blocked: status=%d", rr.Code)
	}
}

/*──────────────────────────── maintenance gate ─────────────────────────────*/

func TestMaintenance_AdminSessionPasses(t *testing.T) {
	rr, served := drive(t, env{&fakeResolver{sess: user("boss@docforge.site", "")}, &fakeFlags{on: true}},
		"/fr/dashboard")
	if rr.Code != http.StatusOK || served == nil {
		t.Fatalf("admin blocked by maintenance: status=%d", rr.Code)
	}
}

func TestMaintenance_ExemptSurfaces(t *testing.T) {
	// Auth pages, the admin namespace, and the maintenance page itself
	// stay reachable while the gate is up.
	cases := []string{"/fr/auth/signin", "/fr/maintenance"}
	for _, p := range cases {
		rr, served := drive(t, env{&fakeResolver{}, &fakeFlags{on: true}}, p)
		if rr.Code != http.StatusOK || served == nil {
			t.Errorf("exempt path %q blocked: status=%d", p, rr.Code)
		}
	}

	rr, _ := drive(t, env{&fakeResolver{sess: user("boss@docforge.site", "")}, &fakeFlags{on: true}},
		"/admin")
	if rr.Code != http.StatusOK {
		t.Errorf("admin namespace blocked during maintenance: status=%d", rr.Code)
	}
}

func TestMaintenance_DefaultLocaleTarget(t *testing.T) {
	// A rewritten default-locale request still hits the gate, and the
	// redirect target stays clean of the default prefix.
	rr, _ := drive(t, env{&fakeResolver{sess: user("a@b.c", "")}, &fakeFlags{on: true}}, "/dashboard")
	wantRedirect(t, rr, "/maintenance")
}

/*──────────────────────────── ordering and cookies ─────────────────────────*/

// The protection check must terminate before the locale rewrite commits:
// an anonymous /dashboard request redirects to sign-in, it is never
// rewritten to /en/dashboard first.
func TestOrdering_ProtectionBeforeLocaleCommit(t *testing.T) {
	rr, served := drive(t, env{&fakeResolver{}, &fakeFlags{}}, "/dashboard")
	wantRedirect(t, rr, "/auth/signin")
	if served != nil {
		t.Fatal("rewritten response leaked past the guard")
	}
}

// A prefix-less protected path with a non-default preference bounces to
// the localized sign-in page in one hop, not via /auth/signin.
func TestProtected_PreferenceLocalizesSigninInOneHop(t *testing.T) {
	rr, served := drive(t, env{&fakeResolver{}, &fakeFlags{}}, "/dashboard",
		&http.Cookie{Name: locale.CookieName, Value: "fr"})
	wantRedirect(t, rr, "/fr/auth/signin")
	if served != nil {
		t.Fatal("inner handler must not run")
	}
}

func TestOrdering_StageList(t *testing.T) {
	p := New(&fakeResolver{}, &fakeFlags{}, roster.New(nil, nil))
	want := []string{
		"resolve_session", "check_protected", "normalize_locale",
		"check_maintenance", "check_admin", "check_auth_page",
	}
	got := p.Stages()
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("stage order = %v, want %v", got, want)
	}
}

// Rotated session cookies must ride along on redirect responses too;
// losing them there signs the user out on the next request.
func TestCookies_AttachedToRedirects(t *testing.T) {
	rotated := []*http.Cookie{{Name: "df-access-token", Value: "fresh", Path: "/"}}
	rr, _ := drive(t, env{&fakeResolver{sess: user("a@b.c", ""), rotated: rotated}, &fakeFlags{}},
		"/fr/auth/signin")
	wantRedirect(t, rr, "/fr/dashboard")

	found := false
	for _, ck := range rr.Result().Cookies() {
		if ck.Name == "df-access-token" && ck.Value == "fresh" {
			found = true
		}
	}
	if !found {
		t.Fatal("rotated cookie dropped on redirect")
	}
}

func TestCookies_AttachedToPassthrough(t *testing.T) {
	rotated := []*http.Cookie{{Name: "df-access-token", Value: "fresh", Path: "/"}}
	rr, _ := drive(t, env{&fakeResolver{sess: user("a@b.c", ""), rotated: rotated}, &fakeFlags{}},
		"/fr/dashboard")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	if len(rr.Result().Cookies()) == 0 {
		t.Fatal("rotated cookie dropped on passthrough")
	}
}

// An identity-service failure is anonymous, not a 500: the protected
// redirect still happens, and nothing panics.
func TestIdentityFailure_TreatedAsAnonymous(t *testing.T) {
	rr, _ := drive(t, env{&fakeResolver{err: errors.New("identity down")}, &fakeFlags{}},
		"/fr/dashboard")
	wantRedirect(t, rr, "/fr/auth/signin")
}

// The resolved session is visible to downstream handlers.
func TestSession_AttachedToContext(t *testing.T) {
	admins := roster.New(nil, nil)
	p := New(&fakeResolver{sess: user("ada@example.com", "")}, &fakeFlags{}, admins)

	var got session.Session
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = session.FromContext(r.Context())
	})

	req := httptest.NewRequest(http.MethodGet, "/fr/dashboard", nil)
	p.Middleware(inner).ServeHTTP(httptest.NewRecorder(), req)

	if !got.Authenticated() || got.Email() != "ada@example.com" {
		t.Fatalf("session not propagated: %+v", got)
	}
}
