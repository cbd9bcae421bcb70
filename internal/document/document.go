// internal/document/document.go
//
// Generated-document model and sqlx repository.
//
// Context
// -------
// Every successful generation persists one row so the dashboard can list
// and reopen past documents.  Content is the raw Markdown the model
// produced; Meta keeps the intake form as JSON for regeneration.
// Listing deliberately skips Content — dashboards only need titles.

package document

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// ErrNotFound is returned when no row matches id + owner.
var ErrNotFound = errors.New("document: not found")

// Record mirrors one row in the `document` table.
type Record struct {
	ID        string          `db:"id" json:"id"`
	UserID    string          `db:"user_id" json:"-"`
	Type      string          `db:"type" json:"type"`
	Title     string          `db:"title" json:"title"`
	Content   string          `db:"content" json:"content,omitempty"`
	Meta      json.RawMessage `db:"meta" json:"meta,omitempty"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}

// Repository wraps document queries.  Safe for concurrent use.
type Repository struct {
	db *sqlx.DB
}

// NewRepository binds a repository to db.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Insert stores a freshly generated document and returns its id.
func (r *Repository) Insert(ctx context.Context, userID, docType, title, content string, meta json.RawMessage) (string, error) {
	id := uuid.New().String()
	const q = `
        INSERT INTO document (id, user_id, type, title, content, meta, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, q,
		id, userID, docType, title, content, []byte(meta), time.Now().UTC())
	if err != nil {
		return "", err
	}
	return id, nil
}

// ByUser lists a user's documents newest-first, without content.
func (r *Repository) ByUser(ctx context.Context, userID string) ([]Record, error) {
	const q = `
        SELECT id, user_id, type, title, created_at
        FROM   document
        WHERE  user_id = ?
        ORDER  BY created_at DESC`
	rows := make([]Record, 0, 16)
	if err := r.db.SelectContext(ctx, &rows, q, userID); err != nil {
		return nil, err
	}
	return rows, nil
}

// ByID fetches one full document.  Ownership is part of the key: another
// user's id reads as not-found, never as forbidden.
func (r *Repository) ByID(ctx context.Context, id, userID string) (*Record, error) {
	const q = `
        SELECT id, user_id, type, title, content, meta, created_at
        FROM   document
        WHERE  id = ? AND user_id = ?
        LIMIT  1`
	var rec Record
	if err := r.db.GetContext(ctx, &rec, q, id, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

// Delete removes one document owned by userID.
func (r *Repository) Delete(ctx context.Context, id, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM document WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

// Count returns the total document count, for the admin stats endpoint.
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM document`)
	return n, err
}

// AdminRow is one line of the back-office generation log: document
// metadata joined with the owner's email.  No content; the log is a
// listing, not a reader.
type AdminRow struct {
	ID        string    `db:"id" json:"id"`
	UserEmail string    `db:"user_email" json:"user"`
	Type      string    `db:"type" json:"type"`
	Title     string    `db:"title" json:"title"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// List pages through every user's documents newest-first for the
// back-office, filtered by title substring or exact id.  Orphaned rows
// (profile deleted) list with an empty email rather than disappearing.
func (r *Repository) List(ctx context.Context, search string, page, perPage int) ([]AdminRow, int, error) {
	where := ""
	args := make([]any, 0, 4)
	if search != "" {
		where = "WHERE (d.title LIKE ? OR d.id = ?) "
		args = append(args, "%"+search+"%", search)
	}

	var total int
	if err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM document d "+where, args...); err != nil {
		return nil, 0, err
	}

	args = append(args, perPage, (page-1)*perPage)
	rows := make([]AdminRow, 0, perPage)
	if err := r.db.SelectContext(ctx, &rows,
		"SELECT d.id, COALESCE(p.email, '') AS user_email, d.type, d.title, d.created_at "+
			"FROM document d LEFT JOIN profile p ON p.id = d.user_id "+
			where+"ORDER BY d.created_at DESC LIMIT ? OFFSET ?", args...); err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}
