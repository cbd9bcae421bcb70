// internal/profile/profile.go
//
// Profile model and plan limits.
//
// Context
// -------
// A profile row shadows one identity-service account and carries the
// billing state the generator consults on every run: the subscription
// plan and the month-to-date usage counter.  Rows are created on first
// sign-in by the auth callback and updated by the billing webhook.

package profile

import "time"

// Plan names as written by the billing webhook.
const (
	PlanFree         = "Free"
	PlanStarter      = "Starter"
	PlanProfessional = "Professional"
)

// monthlyLimits caps generated documents per plan per month.
var monthlyLimits = map[string]int{
	PlanFree:         1,
	PlanStarter:      30,
	PlanProfessional: 1000,
}

// Record mirrors one row in the `profile` table.
type Record struct {
	ID            string    `db:"id"` // identity-service user id
	Email         string    `db:"email"`
	Plan          string    `db:"plan"`
	DocsGenerated int       `db:"docs_generated"` // this month
	UpdatedAt     time.Time `db:"updated_at"`
}

// Limit returns the monthly document cap for the record's plan; unknown
// plans get the free cap.
func (r *Record) Limit() int {
	if n, ok := monthlyLimits[r.Plan]; ok {
		return n
	}
	return monthlyLimits[PlanFree]
}

// CanGenerate reports whether the profile has quota left this month.
func (r *Record) CanGenerate() bool {
	return r.DocsGenerated < r.Limit()
}
