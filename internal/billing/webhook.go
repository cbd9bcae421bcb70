// internal/billing/webhook.go
//
// Lemon Squeezy subscription webhook.
//
// Context
// -------
// Lemon Squeezy signs every delivery with HMAC-SHA256 over the raw body
// and puts the hex digest in the X-Signature header.  We verify before
// parsing anything, with a constant-time compare.  Plan changes are the
// only state this endpoint writes: an active subscription_created or
// subscription_updated sets the plan named in the checkout's custom
// data, and subscription_cancelled / subscription_expired drop the
// account back to Free.  Anything else is acknowledged and ignored so
// the store does not retry events we do not care about.

package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/docforge/docforge/internal/profile"
)

// SignatureHeader carries the hex HMAC digest of the request body.
const SignatureHeader = "X-Signature"

// PlanStore is the slice of the profile repository the webhook needs.
type PlanStore interface {
	SetPlan(ctx context.Context, id, plan string) error
}

// Webhook handles POST /api/billing/webhook.
type Webhook struct {
	secret []byte
	plans  PlanStore
	log    *zap.Logger
}

// NewWebhook builds a webhook handler.  secret is the signing secret
// configured on the Lemon Squeezy store.
func NewWebhook(secret string, plans PlanStore, log *zap.Logger) *Webhook {
	return &Webhook{secret: []byte(secret), plans: plans, log: log}
}

// event mirrors the slice of the Lemon Squeezy payload we read.
type event struct {
	Meta struct {
		EventName  string `json:"event_name"`
		CustomData struct {
			UserID   string `json:"user_id"`
			PlanName string `json:"plan_name"`
		} `json:"custom_data"`
	} `json:"meta"`
	Data struct {
		Attributes struct {
			Status string `json:"status"`
		} `json:"attributes"`
	} `json:"data"`
}

// verify reports whether sig is the hex HMAC-SHA256 of body.
func (w *Webhook) verify(body []byte, sig string) bool {
	mac := hmac.New(sha256.New, w.secret)
	mac.Write(body)
	want := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(want), []byte(sig))
}

func (w *Webhook) ServeHTTP(rw http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(rw, `{"error":"read"}`, http.StatusBadRequest)
		return
	}
	if !w.verify(body, r.Header.Get(SignatureHeader)) {
		w.log.Warn("billing webhook: bad signature", zap.String("remote", r.RemoteAddr))
		http.Error(rw, `{"error":"invalid signature"}`, http.StatusUnauthorized)
		return
	}

	var ev event
	if err := json.Unmarshal(body, &ev); err != nil {
		http.Error(rw, `{"error":"malformed payload"}`, http.StatusBadRequest)
		return
	}
	userID := ev.Meta.CustomData.UserID
	if userID == "" {
		w.log.Warn("billing webhook: no user_id in custom data",
			zap.String("event", ev.Meta.EventName))
		http.Error(rw, `{"error":"no user_id"}`, http.StatusBadRequest)
		return
	}

	switch ev.Meta.EventName {
	case "subscription_created", "subscription_updated":
		if ev.Data.Attributes.Status != "active" {
			break
		}
		plan := ev.Meta.CustomData.PlanName
		if plan == "" {
			plan = profile.PlanStarter
		}
		if err := w.plans.SetPlan(r.Context(), userID, plan); err != nil {
			w.fail(rw, ev.Meta.EventName, userID, err)
			return
		}
		w.log.Info("billing webhook: plan set",
			zap.String("user", userID), zap.String("plan", plan))

	case "subscription_cancelled", "subscription_expired":
		if err := w.plans.SetPlan(r.Context(), userID, profile.PlanFree); err != nil {
			w.fail(rw, ev.Meta.EventName, userID, err)
			return
		}
		w.log.Info("billing webhook: plan reverted to free", zap.String("user", userID))
	}

	rw.Header().Set("Content-Type", "application/json")
	rw.Write([]byte(`{"status":"success"}`))
}

func (w *Webhook) fail(rw http.ResponseWriter, event, userID string, err error) {
	w.log.Error("billing webhook: plan update failed",
		zap.String("event", event), zap.String("user", userID), zap.Error(err))
	http.Error(rw, `{"error":"webhook error"}`, http.StatusInternalServerError)
}
