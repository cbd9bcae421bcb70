// internal/web/api_documents.go
//
// Document listing, retrieval, and deletion.  Ownership is enforced in
// the repository key, so these handlers never distinguish "someone
// else's document" from "no such document".

package web

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/docforge/docforge/internal/document"
)

func (h *Handler) listDocuments(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireUser(w, r)
	if !ok {
		return
	}
	docs, err := h.d.Documents.ByUser(r.Context(), sess.User.ID)
	if err != nil {
		h.d.Log.Errorw("document list failed", "user", sess.User.ID, "err", err)
		respondError(w, http.StatusInternalServerError, "could not list documents")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (h *Handler) getDocument(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireUser(w, r)
	if !ok {
		return
	}
	rec, err := h.d.Documents.ByID(r.Context(), chi.URLParam(r, "id"), sess.User.ID)
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			respondError(w, http.StatusNotFound, "document not found")
			return
		}
		h.d.Log.Errorw("document read failed", "user", sess.User.ID, "err", err)
		respondError(w, http.StatusInternalServerError, "could not load document")
		return
	}
	respondJSON(w, http.StatusOK, rec)
}

func (h *Handler) deleteDocument(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireUser(w, r)
	if !ok {
		return
	}
	err := h.d.Documents.Delete(r.Context(), chi.URLParam(r, "id"), sess.User.ID)
	if err != nil {
		if errors.Is(err, document.ErrNotFound) {
			respondError(w, http.StatusNotFound, "document not found")
			return
		}
		h.d.Log.Errorw("document delete failed", "user", sess.User.ID, "err", err)
		respondError(w, http.StatusInternalServerError, "could not delete document")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}
