// internal/identity/admin.go
//
// Service-key surface of the identity client.
//
// Context
// -------
// The back-office manages admin grants by mutating a user's metadata role
// through the identity service's admin API.  The service exposes no
// lookup-by-email endpoint, so UserByEmail lists a page and scans — fine
// at current scale, revisit past a few thousand users.
//
// All calls here require the service key; constructing the client without
// one makes every admin call fail with ErrNoServiceKey.

package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNoServiceKey marks admin calls on a client built without one.
var ErrNoServiceKey = errors.New("identity: service key not configured")

// ErrUserNotFound is returned by UserByEmail when no account matches.
var ErrUserNotFound = errors.New("identity: user not found")

// AdminUser is the roster view of an account.
type AdminUser struct {
	ID         string
	Email      string
	Role       string
	LastSignIn string
}

// ListUsers returns up to perPage accounts from page (1-based).
func (c *Client) ListUsers(ctx context.Context, page, perPage int) ([]AdminUser, error) {
	if c.serviceKey == "" {
		return nil, ErrNoServiceKey
	}

	url := fmt.Sprintf("%s/auth/v1/admin/users?page=%d&per_page=%d", c.baseURL, page, perPage)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	c.adminHeaders(req)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity: list users: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("identity: list users: status %d", resp.StatusCode)
	}

	var payload struct {
		Users []wireUser `json:"users"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("identity: list users decode: %w", err)
	}

	out := make([]AdminUser, 0, len(payload.Users))
	for _, u := range payload.Users {
		out = append(out, AdminUser{
			ID:         u.ID,
			Email:      u.Email,
			Role:       u.AppMetadata.Role,
			LastSignIn: u.LastSignIn,
		})
	}
	return out, nil
}

// UserByEmail scans the first page of accounts for an exact
// (case-insensitive) email match.
func (c *Client) UserByEmail(ctx context.Context, email string) (AdminUser, error) {
	users, err := c.ListUsers(ctx, 1, 1000)
	if err != nil {
		return AdminUser{}, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return AdminUser{}, ErrUserNotFound
}

// SetRole overwrites the metadata role of one account.
func (c *Client) SetRole(ctx context.Context, userID, role string) error {
	if c.serviceKey == "" {
		return ErrNoServiceKey
	}

	body, _ := json.Marshal(map[string]any{
		"app_metadata": map[string]string{"role": role},
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		c.baseURL+"/auth/v1/admin/users/"+userID, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.adminHeaders(req)

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("identity: set role: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("identity: set role: status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) adminHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	req.Header.Set("apikey", c.serviceKey)
}
