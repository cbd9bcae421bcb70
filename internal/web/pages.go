// internal/web/pages.go
//
// Minimal localized page shells.
//
// Context
// -------
// DocForge's real presentation lives in the front-end bundle; the server
// only needs to answer page URLs with a localized shell so deep links,
// crawlers, and the maintenance screen work without JavaScript.  Titles
// and copy come from the locale dictionaries; unknown paths 404.
//
// The pipeline has already normalized the URL by the time a request
// lands here, so every page path carries its locale prefix (the default
// locale arrives as an internal rewrite to /en/...).

package web

import (
	"fmt"
	"html"
	"net/http"
	"strings"

	"github.com/docforge/docforge/internal/locale"
)

// pageKeys maps a locale-stripped path to its dictionary key prefix.
var pageKeys = map[string]string{
	"":             "home",
	"/":            "home",
	"/dashboard":   "dashboard",
	"/generate":    "generate",
	"/documents":   "documents",
	"/pricing":     "pricing",
	"/maintenance": "maintenance",
	"/auth/signin": "signin",
	"/auth/signup": "signup",
}

func (h *Handler) page(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/robots.txt" {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprintf(w, "User-agent: *\nDisallow: /admin\nSitemap: %s/sitemap.xml\n", h.d.BaseURL)
		return
	}

	loc, rest, ok := locale.Split(r.URL.Path)
	if !ok {
		loc, rest = locale.Default, r.URL.Path
	}

	key, known := pageKeys[rest]
	if !known {
		if strings.HasPrefix(rest, "/admin") {
			key = "admin"
		} else {
			http.NotFound(w, r)
			return
		}
	}

	h.renderShell(w, loc, key)
}

// renderShell writes the localized HTML shell for one page.
func (h *Handler) renderShell(w http.ResponseWriter, loc, key string) {
	title := h.d.Catalog.T(loc, key+".title")
	body := h.d.Catalog.T(loc, key+".body")
	app := h.d.Catalog.T(loc, "app.name")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	fmt.Fprintf(w, `<!doctype html>
<html lang=%q>
<head><meta charset="utf-8"><title>%s · %s</title></head>
<body id=%q><h1>%s</h1><p>%s</p></body>
</html>
`,
		loc,
		html.EscapeString(title), html.EscapeString(app),
		"page-"+key,
		html.EscapeString(title), html.EscapeString(body))
}
