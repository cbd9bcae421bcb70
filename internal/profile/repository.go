// internal/profile/repository.go
//
// sqlx repository for the `profile` table.

package profile

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no profile row exists for an id.
var ErrNotFound = errors.New("profile: not found")

// Repository wraps profile queries.  Safe for concurrent use.
type Repository struct {
	db *sqlx.DB
}

// NewRepository binds a repository to db.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// ByID fetches one profile.
func (r *Repository) ByID(ctx context.Context, id string) (*Record, error) {
	const q = `
        SELECT id, email, plan, docs_generated, updated_at
        FROM   profile
        WHERE  id = ?
        LIMIT  1`
	var rec Record
	if err := r.db.GetContext(ctx, &rec, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// Ensure creates the profile row on first sign-in; existing rows are
// left untouched.
func (r *Repository) Ensure(ctx context.Context, id, email string) error {
	const q = `
        INSERT IGNORE INTO profile (id, email, plan, docs_generated, updated_at)
        VALUES (?, ?, ?, 0, ?)`
	_, err := r.db.ExecContext(ctx, q, id, email, PlanFree, time.Now().UTC())
	return err
}

// IncrementUsage bumps the month-to-date counter after a successful
// generation.
func (r *Repository) IncrementUsage(ctx context.Context, id string) error {
	const q = `
        UPDATE profile
        SET    docs_generated = docs_generated + 1, updated_at = ?
        WHERE  id = ?`
	_, err := r.db.ExecContext(ctx, q, time.Now().UTC(), id)
	return err
}

// SetPlan writes the subscription plan; the billing webhook is the only
// caller.
func (r *Repository) SetPlan(ctx context.Context, id, plan string) error {
	const q = `
        UPDATE profile
        SET    plan = ?, updated_at = ?
        WHERE  id = ?`
	res, err := r.db.ExecContext(ctx, q, plan, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the total profile count, for the admin stats endpoint.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM profile`)
	return n, err
}

// List pages through profiles for the back-office user table, newest
// activity first, with an optional email filter.  Returns one page plus
// the filtered total so the UI can compute page counts.
func (r *Repository) List(ctx context.Context, search string, page, perPage int) ([]Record, int, error) {
	where := ""
	args := make([]any, 0, 3)
	if search != "" {
		where = "WHERE email LIKE ? "
		args = append(args, "%"+search+"%")
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM profile "+where, args...); err != nil {
		return nil, 0, err
	}

	args = append(args, perPage, (page-1)*perPage)
	rows := make([]Record, 0, perPage)
	if err := r.db.SelectContext(ctx, &rows,
		"SELECT id, email, plan, docs_generated, updated_at FROM profile "+
			where+"ORDER BY updated_at DESC LIMIT ? OFFSET ?", args...); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
