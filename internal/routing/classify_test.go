// internal/routing/classify_test.go
//
// Unit-tests for route classification.
//
// Context
// -------
// Classification is the correctness-critical invariant of the pipeline:
// it must be computed on the locale-stripped path, and the same stripped
// path must always yield the same class.  The locale-invariance test
// exercises every supported locale against every protected path.
//
// Run: go test ./internal/routing -v

package routing

import (
	"testing"

	"github.com/docforge/docforge/internal/locale"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		path string
		want Class
	}{
		{"/", ClassPublic},
		{"/pricing", ClassPublic},
		{"/blog/how-to-write-an-nda", ClassPublic},
		{"/dashboard", ClassProtected},
		{"/dashboard/settings", ClassProtected},
		{"/generate", ClassProtected},
		{"/generate/invoice", ClassProtected},
		{"/documents", ClassProtected},
		{"/documents/42", ClassProtected},
		{"/dashboards", ClassPublic}, // prefix must respect segment boundary
		{"/admin", ClassAdmin},
		{"/admin/settings", ClassAdmin},
		{"/administration", ClassPublic},
		{"/auth/signin", ClassAuthPage},
		{"/auth/signup", ClassAuthPage},
		{"/api/generate", ClassInternal},
		{"/api", ClassInternal},
		{"/static/app.css", ClassInternal},
		{"/favicon.ico", ClassInternal},
		{"/robots.txt", ClassInternal},
		{"/sitemap.xml", ClassInternal},
		{"/healthz", ClassInternal},
		{"/metrics", ClassInternal},
		{"/.well-known/security.txt", ClassInternal},
	}
	for _, c := range cases {
		if got := Classify(c.path); got != c.want {
			t.Errorf("Classify(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}

// TestClassify_LocaleInvariant asserts that stripping any supported locale
// prefix yields the same class as the bare path.
func TestClassify_LocaleInvariant(t *testing.T) {
	paths := []string{"/dashboard", "/generate", "/admin/users", "/auth/signin", "/pricing"}
	for _, p := range paths {
		want := Classify(p)
		for _, loc := range locale.All() {
			stripped := locale.Strip("/" + loc + p)
			if got := Classify(stripped); got != want {
				t.Errorf("class of %q under locale %s = %v, want %v", p, loc, got, want)
			}
		}
	}
}

func TestLocaleExempt(t *testing.T) {
	if !LocaleExempt(ClassInternal) || !LocaleExempt(ClassAdmin) {
		t.Fatal("internal and admin paths must be exempt from localization")
	}
	if LocaleExempt(ClassProtected) || LocaleExempt(ClassPublic) || LocaleExempt(ClassAuthPage) {
		t.Fatal("localized classes reported exempt")
	}
}

func TestMakeSlug(t *testing.T) {
	cases := map[string]string{
		"Freelance Contract (2024)": "freelance-contract-2024",
		"  NDA — Mutual  ":          "nda-mutual",
		"":                          "document",
		"???":                       "document",
	}
	for in, want := range cases {
		if got := MakeSlug(in); got != want {
			t.Errorf("MakeSlug(%q) = %q, want %q", in, got, want)
		}
	}
}
