// internal/identity/client.go
//
// HTTP client for the hosted identity service.
//
// Context
// -------
// DocForge delegates authentication to a GoTrue-style service: the browser
// carries an access-token cookie plus a refresh-token cookie, and this
// client exchanges them for the current user on every request.  When the
// access token has expired it performs a refresh-token grant and hands the
// rotated cookie pair back to the caller, which MUST attach them to the
// outgoing response — dropping them on a redirect silently logs the user
// out on the next request.
//
// Failure contract
// ----------------
// An unreachable service resolves to an anonymous session together with a
// non-nil error so the pipeline can log the degradation.  A clean 401
// (bad or absent token) is not an error; it is simply anonymous.
//
// Notes
// -----
// • Option functions mirror the construction style used by our other
//   outbound clients.
// • Oxford commas, two spaces after periods.

package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/docforge/docforge/internal/session"
)

// Cookie names carried by the browser.  The pipeline treats them as
// opaque; only this package reads or writes their values.
const (
	AccessCookie  = "df-access-token"
	RefreshCookie = "df-refresh-token"
)

// refreshCookieMaxAge keeps the refresh token for thirty days.
const refreshCookieMaxAge = 30 * 24 * 60 * 60

// Client talks to one identity service.  Safe for concurrent use.
type Client struct {
	baseURL    string
	anonKey    string
	serviceKey string
	hc         *http.Client
}

// Option configures the client.
type Option func(*Client)

// WithHTTPClient swaps the underlying transport (tests use this).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithServiceKey enables the admin surface (ListUsers, SetRole).
func WithServiceKey(key string) Option {
	return func(c *Client) { c.serviceKey = key }
}

// New constructs a client for the service at baseURL.  anonKey is sent as
// the `apikey` header on user-scoped calls.
func New(baseURL, anonKey string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		anonKey: anonKey,
		hc:      &http.Client{Timeout: 5 * time.Second},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

/*──────────────────────────── wire types ───────────────────────────────────*/

type wireUser struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	LastSignIn  string `json:"last_sign_in_at"`
	AppMetadata struct {
		Role string `json:"role"`
	} `json:"app_metadata"`
}

func (u *wireUser) toUser() *session.User {
	return &session.User{ID: u.ID, Email: u.Email, Role: u.AppMetadata.Role}
}

type tokenResponse struct {
	AccessToken  string   `json:"access_token"`
	RefreshToken string   `json:"refresh_token"`
	ExpiresIn    int      `json:"expires_in"`
	User         wireUser `json:"user"`
}

/*──────────────────────────── session resolve ──────────────────────────────*/

// Resolve exchanges request cookies for the current session.  The returned
// cookie slice is non-empty only when the token pair was rotated; callers
// attach those cookies to every terminal response, redirects included.
func (c *Client) Resolve(ctx context.Context, cookies []*http.Cookie) (session.Session, []*http.Cookie, error) {
	var access, refresh string
	for _, ck := range cookies {
		switch ck.Name {
		case AccessCookie:
			access = ck.Value
		case RefreshCookie:
			refresh = ck.Value
		}
	}
	if access == "" && refresh == "" {
		return session.Anonymous(), nil, nil
	}

	if access != "" {
		user, status, err := c.fetchUser(ctx, access)
		if err != nil {
			return session.Anonymous(), nil, fmt.Errorf("identity: fetch user: %w", err)
		}
		if status == http.StatusOK {
			return session.Session{User: user}, nil, nil
		}
		// Expired or revoked access token; fall through to refresh.
	}

	if refresh == "" {
		return session.Anonymous(), nil, nil
	}
	return c.refreshSession(ctx, refresh)
}

// fetchUser calls GET /auth/v1/user with the bearer token.  Non-2xx,
// non-401 statuses are reported as errors; 401 means "token rejected".
func (c *Client) fetchUser(ctx context.Context, token string) (*session.User, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("apikey", c.anonKey)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var u wireUser
		if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
			return nil, resp.StatusCode, err
		}
		return u.toUser(), resp.StatusCode, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, resp.StatusCode, nil
	default:
		return nil, resp.StatusCode, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
}

// refreshSession performs the refresh-token grant and builds the rotated
// cookie pair.
func (c *Client) refreshSession(ctx context.Context, refresh string) (session.Session, []*http.Cookie, error) {
	body, _ := json.Marshal(map[string]string{"refresh_token": refresh})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/auth/v1/token?grant_type=refresh_token", bytes.NewReader(body))
	if err != nil {
		return session.Anonymous(), nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("apikey", c.anonKey)

	resp, err := c.hc.Do(req)
	if err != nil {
		return session.Anonymous(), nil, fmt.Errorf("identity: refresh: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Refresh token rejected; user is signed out.
		io.Copy(io.Discard, resp.Body)
		return session.Anonymous(), nil, nil
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return session.Anonymous(), nil, fmt.Errorf("identity: refresh decode: %w", err)
	}

	cookies := []*http.Cookie{
		{
			Name:     AccessCookie,
			Value:    tr.AccessToken,
			Path:     "/",
			MaxAge:   tr.ExpiresIn,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		},
		{
			Name:     RefreshCookie,
			Value:    tr.RefreshToken,
			Path:     "/",
			MaxAge:   refreshCookieMaxAge,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		},
	}
	return session.Session{User: tr.User.toUser()}, cookies, nil
}
