// internal/locale/locale_test.go
//
// Unit-tests for locale prefix helpers.
//
// Run: go test ./internal/locale -v

package locale

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSplit(t *testing.T) {
	cases := []struct {
		path string
		loc  string
		rest string
		ok   bool
	}{
		{"/fr/dashboard", "fr", "/dashboard", true},
		{"/fr", "fr", "/", true},
		{"/fr/", "fr", "/", true},
		{"/en/dashboard", "en", "/dashboard", true},
		{"/dashboard", "", "/dashboard", false},
		{"/", "", "/", false},
		{"/french/press", "", "/french/press", false},
		{"/xx/dashboard", "", "/xx/dashboard", false},
		{"", "", "", false},
	}
	for _, c := range cases {
		loc, rest, ok := Split(c.path)
		if loc != c.loc || rest != c.rest || ok != c.ok {
			t.Errorf("Split(%q) = (%q, %q, %v), want (%q, %q, %v)",
				c.path, loc, rest, ok, c.loc, c.rest, c.ok)
		}
	}
}

func TestStrip_Idempotent(t *testing.T) {
	once := Strip("/de/generate")
	if once != "/generate" {
		t.Fatalf("Strip = %q, want /generate", once)
	}
	if again := Strip(once); again != once {
		t.Fatalf("Strip not idempotent: %q → %q", once, again)
	}
}

func TestPrefix(t *testing.T) {
	if got := Prefix("en", "/dashboard"); got != "/dashboard" {
		t.Errorf("default locale must stay hidden, got %q", got)
	}
	if got := Prefix("fr", "/dashboard"); got != "/fr/dashboard" {
		t.Errorf("Prefix fr = %q", got)
	}
	if got := Prefix("pt", "/"); got != "/pt/" {
		t.Errorf("Prefix root = %q", got)
	}
}

func TestPreferred_CookieWins(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/pricing", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "it"})
	r.Header.Set("Accept-Language", "de-DE,de;q=0.9")

	if got := Preferred(r); got != "it" {
		t.Fatalf("Preferred = %q, want it", got)
	}
}

func TestPreferred_AcceptLanguageFallback(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/pricing", nil)
	r.Header.Set("Accept-Language", "nl-NL,nl;q=0.9,es-ES;q=0.8")

	if got := Preferred(r); got != "es" {
		t.Fatalf("Preferred = %q, want es", got)
	}
}

func TestPreferred_Default(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/pricing", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: "klingon"})

	if got := Preferred(r); got != Default {
		t.Fatalf("Preferred = %q, want %q", got, Default)
	}
}
