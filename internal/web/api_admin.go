// internal/web/api_admin.go
//
// Back-office JSON API: admin roster, user and document listings,
// runtime settings, and stats.
//
// Context
// -------
// Every handler here passes requireAdmin first — the pipeline already
// guards the /admin pages, but /api is an internal class, so the API
// re-checks on its own.  Demoting a config admin is a 409: the static
// list only changes at deploy time.

package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/docforge/docforge/internal/identity"
	"github.com/docforge/docforge/internal/roster"
	"github.com/docforge/docforge/internal/settings"
)

// adminPageSize is the fixed page length of the back-office listings.
const adminPageSize = 10

// pageParams reads the ?page and ?search query parameters; page floors
// at 1.
func pageParams(r *http.Request) (page int, search string) {
	page = 1
	if n, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && n > 0 {
		page = n
	}
	return page, r.URL.Query().Get("search")
}

func totalPages(total int) int {
	return (total + adminPageSize - 1) / adminPageSize
}

func (h *Handler) listAdmins(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}
	members, err := h.d.Roster.Members(r.Context())
	if err != nil {
		h.d.Log.Errorw("admin roster list failed", "err", err)
		respondError(w, http.StatusBadGateway, "identity service unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"admins": members})
}

func (h *Handler) promoteAdmin(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil || req.Email == "" {
		respondError(w, http.StatusBadRequest, "email is required")
		return
	}
	if err := h.d.Roster.Promote(r.Context(), req.Email); err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			respondError(w, http.StatusNotFound, "no account with that email")
			return
		}
		h.d.Log.Errorw("admin promote failed", "email", req.Email, "err", err)
		respondError(w, http.StatusBadGateway, "identity service unavailable")
		return
	}
	h.d.Log.Infow("admin promoted", "email", req.Email, "by", sess.Email())
	respondJSON(w, http.StatusOK, map[string]string{"status": "promoted"})
}

func (h *Handler) demoteAdmin(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	var req struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil || req.ID == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}
	if err := h.d.Roster.Demote(r.Context(), req.ID, req.Email); err != nil {
		if errors.Is(err, roster.ErrConfigAdmin) {
			respondError(w, http.StatusConflict, "config admins cannot be demoted")
			return
		}
		h.d.Log.Errorw("admin demote failed", "id", req.ID, "err", err)
		respondError(w, http.StatusBadGateway, "identity service unavailable")
		return
	}
	h.d.Log.Infow("admin demoted", "id", req.ID, "by", sess.Email())
	respondJSON(w, http.StatusOK, map[string]string{"status": "demoted"})
}

// adminUsers pages through every profile, optionally filtered by email.
func (h *Handler) adminUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}
	page, search := pageParams(r)
	recs, total, err := h.d.Profiles.List(r.Context(), search, page, adminPageSize)
	if err != nil {
		h.d.Log.Errorw("admin user listing failed", "err", err)
		respondError(w, http.StatusInternalServerError, "could not load users")
		return
	}
	users := make([]map[string]any, 0, len(recs))
	for _, rec := range recs {
		users = append(users, map[string]any{
			"id":             rec.ID,
			"email":          rec.Email,
			"plan":           rec.Plan,
			"docs_generated": rec.DocsGenerated,
			"updated_at":     rec.UpdatedAt,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"users":       users,
		"total":       total,
		"page":        page,
		"total_pages": totalPages(total),
	})
}

// adminDocuments pages through the cross-user generation log, optionally
// filtered by title substring or exact document id.
func (h *Handler) adminDocuments(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}
	page, search := pageParams(r)
	rows, total, err := h.d.Documents.List(r.Context(), search, page, adminPageSize)
	if err != nil {
		h.d.Log.Errorw("admin document listing failed", "err", err)
		respondError(w, http.StatusInternalServerError, "could not load documents")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"documents":   rows,
		"total":       total,
		"page":        page,
		"total_pages": totalPages(total),
	})
}

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}
	all, err := h.d.Settings.All(r.Context())
	if err != nil {
		h.d.Log.Errorw("settings read failed", "err", err)
		respondError(w, http.StatusInternalServerError, "could not load settings")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"settings": all})
}

func (h *Handler) putSettings(w http.ResponseWriter, r *http.Request) {
	sess, ok := h.requireAdmin(w, r)
	if !ok {
		return
	}
	var req map[string]string
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil || len(req) == 0 {
		respondError(w, http.StatusBadRequest, "settings object is required")
		return
	}
	for key, value := range req {
		if err := h.d.Settings.Put(r.Context(), key, value); err != nil {
			h.d.Log.Errorw("setting write failed", "key", key, "err", err)
			respondError(w, http.StatusInternalServerError, "could not save settings")
			return
		}
	}
	if _, ok := req[settings.MaintenanceKey]; ok {
		h.d.Log.Infow("maintenance mode changed",
			"value", req[settings.MaintenanceKey], "by", sess.Email())
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.requireAdmin(w, r); !ok {
		return
	}
	users, err := h.d.Profiles.Count(r.Context())
	if err != nil {
		h.d.Log.Errorw("profile count failed", "err", err)
		respondError(w, http.StatusInternalServerError, "could not load stats")
		return
	}
	docs, err := h.d.Documents.Count(r.Context())
	if err != nil {
		h.d.Log.Errorw("document count failed", "err", err)
		respondError(w, http.StatusInternalServerError, "could not load stats")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"users":       users,
		"documents":   docs,
		"maintenance": h.d.Settings.Maintenance(r.Context()),
	})
}
