// internal/i18n/i18n_test.go
//
// Unit-tests for the dictionary catalog: load, cache, fallback chain,
// and reload.
//
// Run: go test ./internal/i18n -v

package i18n

import (
	"os"
	"path/filepath"
	"testing"
)

func writeDict(t *testing.T, dir, loc, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, loc+".json"), []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestLookupAndT(t *testing.T) {
	dir := t.TempDir()
	writeDict(t, dir, "en", `{"maintenance.title": "Back soon", "cta": "Generate"}`)
	writeDict(t, dir, "fr", `{"maintenance.title": "De retour bientôt"}`)

	c := NewCatalog(dir)

	if got := c.T("fr", "maintenance.title"); got != "De retour bientôt" {
		t.Errorf("fr lookup = %q", got)
	}
	// Missing in fr → falls back to the default locale.
	if got := c.T("fr", "cta"); got != "Generate" {
		t.Errorf("fallback to default = %q", got)
	}
	// Missing everywhere → the key itself.
	if got := c.T("fr", "nope"); got != "nope" {
		t.Errorf("missing key = %q", got)
	}
	// Unsupported code resolves to the default locale.
	if got := c.T("tlh", "cta"); got != "Generate" {
		t.Errorf("unsupported locale = %q", got)
	}
}

func TestLookup_CachesAfterFirstLoad(t *testing.T) {
	dir := t.TempDir()
	writeDict(t, dir, "de", `{"cta": "Erstellen"}`)

	c := NewCatalog(dir)
	if _, err := c.Lookup("de"); err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	// Remove the file; the cached dictionary must keep serving.
	os.Remove(filepath.Join(dir, "de.json"))
	d, err := c.Lookup("de")
	if err != nil || d["cta"] != "Erstellen" {
		t.Fatalf("cache miss after load: %v / %v", d, err)
	}

	// Reload drops the cache, so the next lookup hits the missing file.
	c.Reload()
	if _, err := c.Lookup("de"); err == nil {
		t.Fatal("expected error after Reload with file removed")
	}
}

func TestLookup_MissingFile(t *testing.T) {
	c := NewCatalog(t.TempDir())
	if _, err := c.Lookup("es"); err == nil {
		t.Fatal("expected error for absent dictionary")
	}
}
