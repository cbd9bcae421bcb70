// internal/roster/roster.go
//
// Two-source admin roster.
//
// Context
// -------
// An administrator is either
//
//   1. a config admin  – email listed in deploy-time configuration, or
//   2. a metadata admin – account whose identity-service metadata role
//      is "admin", granted and revoked through the back-office.
//
// The config list is append-only at deploy time: Demote refuses to touch
// a config admin no matter who asks, so an operator can never be locked
// out through the runtime API.  The pipeline's admin guard and the
// maintenance gate both consult IsAdmin with the same semantics.
//
// Notes
// -----
// • The roster holds the config list as an injected value, not a global,
//   so tests run against fixture lists.
// • Oxford commas, two spaces after periods.

package roster

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docforge/docforge/internal/identity"
)

// RoleAdmin is the metadata role value that grants admin.
const RoleAdmin = "admin"

// RoleUser is the metadata role after demotion.
const RoleUser = "user"

// ErrConfigAdmin rejects demotion of a deploy-time admin.
var ErrConfigAdmin = errors.New("roster: config admins cannot be demoted at runtime")

// Directory is the identity-service surface the roster needs.  The real
// implementation is *identity.Client.
type Directory interface {
	ListUsers(ctx context.Context, page, perPage int) ([]identity.AdminUser, error)
	UserByEmail(ctx context.Context, email string) (identity.AdminUser, error)
	SetRole(ctx context.Context, userID, role string) error
}

// Member is one roster entry as shown in the back-office.
type Member struct {
	ID         string `json:"id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Source     string `json:"source"` // "config" or "database"
	LastSignIn string `json:"last_sign_in,omitempty"`
}

// Roster combines the static allow-list with the identity directory.
type Roster struct {
	configEmails map[string]struct{}
	dir          Directory
}

// New builds a roster from the deploy-time email list.  Emails compare
// case-insensitively.
func New(configEmails []string, dir Directory) *Roster {
	set := make(map[string]struct{}, len(configEmails))
	for _, e := range configEmails {
		set[strings.ToLower(strings.TrimSpace(e))] = struct{}{}
	}
	return &Roster{configEmails: set, dir: dir}
}

// IsConfigAdmin reports membership in the static allow-list.
func (r *Roster) IsConfigAdmin(email string) bool {
	_, ok := r.configEmails[strings.ToLower(email)]
	return ok
}

// IsAdmin is the union check used on every guarded request: config list
// OR metadata role.
func (r *Roster) IsAdmin(email, role string) bool {
	return r.IsConfigAdmin(email) || role == RoleAdmin
}

// Members lists every account that is an admin by either source.
func (r *Roster) Members(ctx context.Context) ([]Member, error) {
	users, err := r.dir.ListUsers(ctx, 1, 1000)
	if err != nil {
		return nil, fmt.Errorf("roster: list: %w", err)
	}

	out := make([]Member, 0, len(users))
	for _, u := range users {
		if !r.IsAdmin(u.Email, u.Role) {
			continue
		}
		source := "database"
		if r.IsConfigAdmin(u.Email) {
			source = "config"
		}
		role := u.Role
		if role == "" {
			role = RoleUser
		}
		out = append(out, Member{
			ID:         u.ID,
			Email:      u.Email,
			Role:       role,
			Source:     source,
			LastSignIn: u.LastSignIn,
		})
	}
	return out, nil
}

// Promote grants the metadata role to the account holding email.  The
// account must already exist; DocForge never creates users itself.
func (r *Roster) Promote(ctx context.Context, email string) error {
	u, err := r.dir.UserByEmail(ctx, email)
	if err != nil {
		return err
	}
	return r.dir.SetRole(ctx, u.ID, RoleAdmin)
}

// Demote clears the metadata role.  Config admins are immune: the static
// list can only change at deploy time.
func (r *Roster) Demote(ctx context.Context, userID, email string) error {
	if r.IsConfigAdmin(email) {
		return ErrConfigAdmin
	}
	return r.dir.SetRole(ctx, userID, RoleUser)
}
