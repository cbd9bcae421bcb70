// internal/web/api_generate.go
//
// POST /api/generate — the product's one expensive endpoint.
//
// Context
// -------
// Quota is enforced against the profile row before any provider is
// called: model calls cost real money, so an over-limit request never
// leaves the building.  Config admins bypass the cap.  On success the
// document is persisted first and the usage counter bumped after; a
// failed increment is logged but does not lose the document.

package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/docforge/docforge/internal/ai"
	"github.com/docforge/docforge/internal/locale"
	"github.com/docforge/docforge/internal/routing"
)

// generateRequest is the intake form payload.
type generateRequest struct {
	Type     string            `json:"type"`
	Language string            `json:"language"`
	Fields   map[string]string `json:"fields"`
}

func (h *Handler) generate(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireUser(w, r)
	if !ok {
		return
	}

	var req generateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if len(req.Fields) == 0 {
		respondError(w, http.StatusBadRequest, "fields are required")
		return
	}

	ctx := r.Context()
	userID := sess.User.ID

	if err := h.d.Profiles.Ensure(ctx, userID, sess.Email()); err != nil {
		h.d.Log.Errorw("profile ensure failed", "user", userID, "err", err)
		respondError(w, http.StatusInternalServerError, "profile unavailable")
		return
	}
	rec, err := h.d.Profiles.ByID(ctx, userID)
	if err != nil {
		h.d.Log.Errorw("profile read failed", "user", userID, "err", err)
		respondError(w, http.StatusInternalServerError, "profile unavailable")
		return
	}
	if !h.d.Roster.IsConfigAdmin(sess.Email()) && !rec.CanGenerate() {
		respondJSON(w, http.StatusTooManyRequests, map[string]any{
			"error": "monthly document limit reached",
			"plan":  rec.Plan,
			"limit": rec.Limit(),
		})
		return
	}

	lang := req.Language
	if !locale.Supported(lang) {
		lang = locale.Default
	}
	dt := ai.TypeFor(req.Type)
	text, provider, err := h.d.Generator.Generate(ctx,
		ai.BuildSystemPrompt(dt, lang),
		ai.BuildUserPrompt(dt, req.Fields))
	if err != nil {
		if errors.Is(err, ai.ErrNoProviders) {
			respondError(w, http.StatusServiceUnavailable, "generation is not configured")
			return
		}
		h.d.Log.Warnw("generation failed", "user", userID, "type", dt.Key, "err", err)
		respondError(w, http.StatusBadGateway, "all generation providers failed")
		return
	}

	title := strings.TrimSpace(req.Fields["companyName"])
	if title == "" {
		title = dt.Title
	}
	meta, _ := json.Marshal(req)
	id, err := h.d.Documents.Insert(ctx, userID, dt.Key, title, text, meta)
	if err != nil {
		h.d.Log.Errorw("document insert failed", "user", userID, "err", err)
		respondError(w, http.StatusInternalServerError, "could not save document")
		return
	}
	if err := h.d.Profiles.IncrementUsage(ctx, userID); err != nil {
		h.d.Log.Errorw("usage increment failed", "user", userID, "err", err)
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"id":       id,
		"type":     dt.Key,
		"title":    title,
		"slug":     routing.MakeSlug(title),
		"content":  text,
		"provider": provider,
	})
}
