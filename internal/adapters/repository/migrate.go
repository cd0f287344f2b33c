package repository

import (
	"context"
	"fmt"
)

// CurrentSchemaVersion is the current database schema version.
const CurrentSchemaVersion = 1

// migrate creates the schema if it does not exist yet.
func (s *SQLiteStore) migrate(ctx context.Context) error {
	const schema = `
	CREATE TABLE IF NOT EXISTS events (
		id             TEXT PRIMARY KEY,
		name           TEXT NOT NULL,
		slug           TEXT NOT NULL,
		track          TEXT,
		assembly       TEXT NOT NULL,
		room           TEXT,
		language       TEXT,
		description    TEXT NOT NULL,
		schedule_start TEXT NOT NULL,
		schedule_end   TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_start ON events(schedule_start, slug);

	CREATE TABLE IF NOT EXISTS rooms (
		id       TEXT PRIMARY KEY,
		name     TEXT NOT NULL,
		assembly TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS ratings (
		seq      INTEGER PRIMARY KEY AUTOINCREMENT,
		event_id TEXT NOT NULL,
		score    REAL NOT NULL,
		ts       TEXT NOT NULL,
		UNIQUE(event_id, ts)
	);

	CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL
	);
	`

	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_version`).Scan(&n); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if n == 0 {
		if _, err := s.db.ExecContext(ctx, `INSERT INTO schema_version(version) VALUES (?)`, CurrentSchemaVersion); err != nil {
			return fmt.Errorf("write schema version: %w", err)
		}
	}
	return nil
}
