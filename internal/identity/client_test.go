// internal/identity/client_test.go
//
// Unit-tests for the identity client against an httptest stand-in.
//
// Behaviours covered:
//
//   • valid access token  → authenticated session, no cookie rotation
//   • expired access + valid refresh → rotated cookie pair
//   • rejected refresh    → anonymous, no error
//   • unreachable service → anonymous, error surfaced
//   • admin SetRole wire shape
//
// Run: go test ./internal/identity -v

package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func authServer(t *testing.T, validToken string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/auth/v1/user":
			if r.Header.Get("Authorization") != "Bearer "+validToken {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"id":    "u-1",
				"email": "ada@example.com",
				"app_metadata": map[string]string{
					"role": "admin",
				},
			})
		case r.URL.Path == "/auth/v1/token" && r.URL.Query().Get("grant_type") == "refresh_token":
			var body struct {
				RefreshToken string `json:"refresh_token"`
			}
			json.NewDecoder(r.Body).Decode(&body)
			if body.RefreshToken != "good-refresh" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			json.NewEncoder(w).Encode(map[string]any{
				"access_token":  "rotated-access",
				"refresh_token": "rotated-refresh",
				"expires_in":    3600,
				"user": map[string]any{
					"id":    "u-1",
					"email": "ada@example.com",
				},
			})
		default:
			http.NotFound(w, r)
		}
	}))
}

func TestResolve_ValidAccessToken(t *testing.T) {
	srv := authServer(t, "live-token")
	defer srv.Close()

	c := New(srv.URL, "anon")
	sess, cookies, err := c.Resolve(context.Background(), []*http.Cookie{
		{Name: AccessCookie, Value: "live-token"},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !sess.Authenticated() || sess.Email() != "ada@example.com" || sess.Role() != "admin" {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if len(cookies) != 0 {
		t.Fatalf("no rotation expected, got %d cookies", len(cookies))
	}
}

func TestResolve_RefreshRotatesCookies(t *testing.T) {
	srv := authServer(t, "live-token")
	defer srv.Close()

	c := New(srv.URL, "anon")
	sess, cookies, err := c.Resolve(context.Background(), []*http.Cookie{
		{Name: AccessCookie, Value: "stale-token"},
		{Name: RefreshCookie, Value: "good-refresh"},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !sess.Authenticated() {
		t.Fatal("expected authenticated session after refresh")
	}
	if len(cookies) != 2 {
		t.Fatalf("expected rotated cookie pair, got %d", len(cookies))
	}
	byName := map[string]string{}
	for _, ck := range cookies {
		byName[ck.Name] = ck.Value
		if !ck.HttpOnly || ck.Path != "/" {
			t.Errorf("cookie %s must be HttpOnly with Path=/", ck.Name)
		}
	}
	if byName[AccessCookie] != "rotated-access" || byName[RefreshCookie] != "rotated-refresh" {
		t.Fatalf("unexpected rotation values: %v", byName)
	}
}

func TestResolve_RejectedRefreshIsAnonymous(t *testing.T) {
	srv := authServer(t, "live-token")
	defer srv.Close()

	c := New(srv.URL, "anon")
	sess, cookies, err := c.Resolve(context.Background(), []*http.Cookie{
		{Name: RefreshCookie, Value: "revoked"},
	})
	if err != nil {
		t.Fatalf("rejected refresh must not error: %v", err)
	}
	if sess.Authenticated() || cookies != nil {
		t.Fatalf("expected anonymous with no cookies, got %+v / %v", sess, cookies)
	}
}

func TestResolve_UnreachableServiceDegrades(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close() // immediately unreachable

	c := New(srv.URL, "anon")
	sess, _, err := c.Resolve(context.Background(), []*http.Cookie{
		{Name: AccessCookie, Value: "anything"},
	})
	if err == nil {
		t.Fatal("expected transport error to surface")
	}
	if sess.Authenticated() {
		t.Fatal("session must degrade to anonymous on transport failure")
	}
}

func TestResolve_NoCookiesIsAnonymous(t *testing.T) {
	c := New("http://identity.invalid", "anon")
	sess, cookies, err := c.Resolve(context.Background(), nil)
	if err != nil || sess.Authenticated() || cookies != nil {
		t.Fatalf("want clean anonymous, got %+v / %v / %v", sess, cookies, err)
	}
}

func TestSetRole(t *testing.T) {
	var gotPath, gotRole string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		var body struct {
			AppMetadata struct {
				Role string `json:"role"`
			} `json:"app_metadata"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		gotRole = body.AppMetadata.Role
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(srv.URL, "anon", WithServiceKey("service"))
	if err := c.SetRole(context.Background(), "u-9", "admin"); err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	if gotPath != "/auth/v1/admin/users/u-9" || gotRole != "admin" {
		t.Fatalf("wire mismatch: path=%q role=%q", gotPath, gotRole)
	}
}

func TestSetRole_RequiresServiceKey(t *testing.T) {
	c := New("http://identity.invalid", "anon")
	if err := c.SetRole(context.Background(), "u-9", "admin"); err != ErrNoServiceKey {
		t.Fatalf("want ErrNoServiceKey, got %v", err)
	}
}
