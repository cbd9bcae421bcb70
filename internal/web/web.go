// internal/web/web.go
//
// Router assembly.
//
/*
Context
--------
One chi router serves the whole application.  The middleware order is a
contract:

  1. Security headers          – every response, even errors.
  2. Request enrichment        – UA, geo, request id.
  3. Routing pipeline          – session, locale, access, maintenance.

`/metrics` and `/healthz` classify as internal paths, so the pipeline
passes them through untouched; they still ride inside the chain to keep
one handler tree.

The JSON API lives under /api and authenticates from the session the
pipeline attached to the request context.  Pages are minimal HTML shells
resolved through the locale dictionaries; presentation is deliberately
thin.

Notes
-----
  • Handlers depend on narrow interfaces, not concrete repositories, so
    tests run on fixtures without a database.
  • Oxford commas, two spaces after periods.
*/
package web

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/docforge/docforge/internal/document"
	"github.com/docforge/docforge/internal/i18n"
	"github.com/docforge/docforge/internal/profile"
	"github.com/docforge/docforge/internal/roster"
)

/*──────────────────────────── collaborators ────────────────────────────────*/

// Generator produces document text.  Implemented by *ai.Generator.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (text, provider string, err error)
}

// ProfileStore is the profile surface the API needs.
type ProfileStore interface {
	Ensure(ctx context.Context, id, email string) error
	ByID(ctx context.Context, id string) (*profile.Record, error)
	IncrementUsage(ctx context.Context, id string) error
	Count(ctx context.Context) (int, error)
	List(ctx context.Context, search string, page, perPage int) ([]profile.Record, int, error)
}

// DocumentStore is the document surface the API needs.
type DocumentStore interface {
	Insert(ctx context.Context, userID, docType, title, content string, meta json.RawMessage) (string, error)
	ByUser(ctx context.Context, userID string) ([]document.Record, error)
	ByID(ctx context.Context, id, userID string) (*document.Record, error)
	Delete(ctx context.Context, id, userID string) error
	Count(ctx context.Context) (int, error)
	List(ctx context.Context, search string, page, perPage int) ([]document.AdminRow, int, error)
}

// AdminRoster is the back-office surface of *roster.Roster.
type AdminRoster interface {
	IsAdmin(email, role string) bool
	IsConfigAdmin(email string) bool
	Members(ctx context.Context) ([]roster.Member, error)
	Promote(ctx context.Context, email string) error
	Demote(ctx context.Context, userID, email string) error
}

// SettingsStore is the runtime-settings surface of *settings.Store.
type SettingsStore interface {
	Put(ctx context.Context, key, value string) error
	All(ctx context.Context) (map[string]string, error)
	Maintenance(ctx context.Context) bool
}

// CheckoutClient opens billing checkouts.  Implemented by *billing.Checkout.
type CheckoutClient interface {
	Create(ctx context.Context, variantID, email, userID, planName, redirectURL string) (string, error)
}

// Pinger is the liveness probe, usually (*sqlx.DB).PingContext.
type Pinger interface {
	PingContext(ctx context.Context) error
}

/*──────────────────────────── handler ──────────────────────────────────────*/

// Deps carries everything the router needs; all fields are required
// unless noted.
type Deps struct {
	Log       *zap.SugaredLogger
	BaseURL   string // public origin, e.g. https://docforge.site
	Pipeline  func(http.Handler) http.Handler
	Catalog   *i18n.Catalog
	Generator Generator
	Profiles  ProfileStore
	Documents DocumentStore
	Roster    AdminRoster
	Settings  SettingsStore
	Checkout  CheckoutClient // nil disables the checkout endpoint
	Webhook   http.Handler   // billing webhook; nil disables
	DB        Pinger         // nil makes /healthz unconditional
}

// Handler owns the route tree.
type Handler struct {
	d Deps
}

// New assembles the application router.
func New(d Deps) http.Handler {
	h := &Handler{d: d}

	r := chi.NewRouter()
	r.Use(d.Pipeline)

	r.Get("/healthz", h.healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(api chi.Router) {
		api.Post("/generate", h.generate)

		api.Get("/documents", h.listDocuments)
		api.Get("/documents/{id}", h.getDocument)
		api.Delete("/documents/{id}", h.deleteDocument)

		api.Route("/admin", func(adm chi.Router) {
			adm.Get("/admins", h.listAdmins)
			adm.Post("/admins", h.promoteAdmin)
			adm.Delete("/admins", h.demoteAdmin)
			adm.Get("/users", h.adminUsers)
			adm.Get("/documents", h.adminDocuments)
			adm.Get("/settings", h.getSettings)
			adm.Put("/settings", h.putSettings)
			adm.Get("/stats", h.stats)
		})

		if d.Checkout != nil {
			api.Post("/billing/checkout", h.createCheckout)
		}
		if d.Webhook != nil {
			api.Method(http.MethodPost, "/billing/webhook", d.Webhook)
		}
	})

	// Everything else is a localized page.
	r.NotFound(h.page)

	return r
}

// healthz pings the database when one is wired.
func (h *Handler) healthz(w http.ResponseWriter, r *http.Request) {
	if h.d.DB != nil {
		if err := h.d.DB.PingContext(r.Context()); err != nil {
			h.d.Log.Errorw("healthz db ping failed", "err", err)
			respondError(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}
