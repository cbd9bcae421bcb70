// internal/session/session.go
//
// Request-scoped session model.
//
// Context
// -------
// Identity lives in a hosted auth service; DocForge never stores
// credentials.  The pipeline resolves cookies into a Session exactly once
// per request and every later stage, handler, and template reads that one
// value.  Sessions are never cached across requests.
//
// The type is a small tagged union: either User is set (authenticated) or
// it is nil (anonymous).  Anonymous is a normal state, not an error; an
// unreachable identity service degrades to Anonymous().
//
// Notes
// -----
// • Context key is an unexported struct to avoid collisions.
// • Oxford commas, two spaces after periods.

package session

import "context"

// User is the authenticated identity attached to a session.  Role carries
// the mutable metadata role ("admin" or "user"); the static allow-list is
// a separate source checked by the roster.
type User struct {
	ID    string
	Email string
	Role  string
}

// Session is the per-request identity.  The zero value is anonymous.
type Session struct {
	User *User
}

// Anonymous returns the unauthenticated session.
func Anonymous() Session { return Session{} }

// Authenticated reports whether a user is attached.
func (s Session) Authenticated() bool { return s.User != nil }

// Email returns the user's email, or "" for anonymous sessions.
func (s Session) Email() string {
	if s.User == nil {
		return ""
	}
	return s.User.Email
}

// Role returns the metadata role, or "" for anonymous sessions.
func (s Session) Role() string {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

type ctxKey struct{}

// NewContext returns ctx carrying s.
func NewContext(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, ctxKey{}, s)
}

// FromContext extracts the session stored by the pipeline.  Requests that
// bypassed the pipeline read as anonymous.
func FromContext(ctx context.Context) Session {
	s, _ := ctx.Value(ctxKey{}).(Session)
	return s
}
