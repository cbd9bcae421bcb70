// internal/web/respond.go
//
// JSON response helpers and the session guards shared by the API
// handlers.

package web

import (
	"encoding/json"
	"net/http"

	"github.com/docforge/docforge/internal/session"
)

// respondJSON writes v with the given status.  Encoding errors are
// swallowed; by then the status line is already on the wire.
func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError writes the canonical {"error": msg} shape.
func respondError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{"error": msg})
}

// requireUser returns the authenticated session or writes a 401.
func requireUser(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	sess := session.FromContext(r.Context())
	if !sess.Authenticated() {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return sess, false
	}
	return sess, true
}

// requireAdmin returns the session when it passes the two-source admin
// check, or writes 401/403.
func (h *Handler) requireAdmin(w http.ResponseWriter, r *http.Request) (session.Session, bool) {
	sess, ok := requireUser(w, r)
	if !ok {
		return sess, false
	}
	if !h.d.Roster.IsAdmin(sess.Email(), sess.Role()) {
		respondError(w, http.StatusForbidden, "admin access required")
		return sess, false
	}
	return sess, true
}
