// internal/settings/store.go
//
// Key-value settings store backed by the `setting` table.
//
// Context
// -------
// Operational toggles (maintenance mode, announcement banner, feature
// switches) live in one small table so the back-office can flip them
// without a deploy:
//
//	setting (`key` PK, value, updated_at)
//
// The pipeline reads the maintenance flag on nearly every request, so
// Maintenance() carries the availability policy in one place: any read
// failure logs a warning and reports "off".  Treating a transient database
// hiccup as a site-wide outage would be strictly worse than occasionally
// skipping the gate.
//
// Notes
// -----
// • `key` is a reserved word in MySQL; queries backtick it.
// • Oxford commas, two spaces after periods.

package settings

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/docforge/docforge/internal/metrics"
)

// MaintenanceKey is the flag consulted by the pipeline's maintenance gate.
const MaintenanceKey = "maintenanceMode"

// ErrNotFound is returned by Get for absent keys.
var ErrNotFound = errors.New("settings: key not found")

// Store wraps the settings table.  Safe for concurrent use; sqlx pools
// underneath.
type Store struct {
	db *sqlx.DB
}

// NewStore binds a store to db.
func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// Get returns the value for key, or ErrNotFound.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	var value string
	err := s.db.GetContext(ctx, &value,
		"SELECT value FROM setting WHERE `key` = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// Put inserts or updates one key.
func (s *Store) Put(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO setting (`key`, value, updated_at) VALUES (?, ?, ?) "+
			"ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = VALUES(updated_at)",
		key, value, time.Now().UTC())
	return err
}

// All returns every setting as a map.
func (s *Store) All(ctx context.Context) (map[string]string, error) {
	rows := make([]struct {
		Key   string `db:"key"`
		Value string `db:"value"`
	}, 0, 8)
	if err := s.db.SelectContext(ctx, &rows,
		"SELECT `key`, value FROM setting"); err != nil {
		return nil, err
	}

	out := make(map[string]string, len(rows))
	for _, r := range rows {
		out[r.Key] = r.Value
	}
	return out, nil
}

// Maintenance reports whether maintenance mode is on.  Fail-open: absent
// keys and read errors both report false, errors with a logged warning.
func (s *Store) Maintenance(ctx context.Context) bool {
	value, err := s.Get(ctx, MaintenanceKey)
	switch {
	case errors.Is(err, ErrNotFound):
		return false
	case err != nil:
		metrics.MaintenanceFailOpenTotal.Inc()
		zap.S().Warnw("maintenance flag unreadable, failing open", "err", err)
		return false
	}
	return value == "true"
}
