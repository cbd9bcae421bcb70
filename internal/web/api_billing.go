// internal/web/api_billing.go
//
// POST /api/billing/checkout — opens a hosted checkout for the signed-in
// user.  The user id and plan name ride in the checkout's custom data so
// the webhook can attribute the subscription when it lands.

package web

import (
	"encoding/json"
	"io"
	"net/http"
)

func (h *Handler) createCheckout(w http.ResponseWriter, r *http.Request) {
	sess, ok := requireUser(w, r)
	if !ok {
		return
	}
	var req struct {
		VariantID string `json:"variant_id"`
		PlanName  string `json:"plan_name"`
	}
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<16)).Decode(&req); err != nil ||
		req.VariantID == "" || req.PlanName == "" {
		respondError(w, http.StatusBadRequest, "variant_id and plan_name are required")
		return
	}

	url, err := h.d.Checkout.Create(r.Context(),
		req.VariantID, sess.Email(), sess.User.ID, req.PlanName,
		h.d.BaseURL+"/dashboard")
	if err != nil {
		h.d.Log.Errorw("checkout create failed",
			"user", sess.User.ID, "variant", req.VariantID, "err", err)
		respondError(w, http.StatusBadGateway, "billing service unavailable")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"url": url})
}
