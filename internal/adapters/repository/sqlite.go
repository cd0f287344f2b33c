package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/top-on/optimal-congress/internal/domain/model"
	"github.com/top-on/optimal-congress/pkg/metrics"

	_ "modernc.org/sqlite"
)

const (
	defaultBusyTimeout  = 5 * time.Second
	defaultMaxOpenConns = 4
)

// SQLiteStore implements Store on a local SQLite file.
type SQLiteStore struct {
	db   *sql.DB
	path string

	busyTimeout  time.Duration
	maxOpenConns int
}

var _ Store = (*SQLiteStore)(nil)

// Open opens or creates the cache database at path with WAL mode, creating
// parent directories as needed.
func Open(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{
		path:         path,
		busyTimeout:  defaultBusyTimeout,
		maxOpenConns: defaultMaxOpenConns,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	// URL-escape the path to handle special characters (?, #, spaces, etc.)
	dsn := fmt.Sprintf("file:%s?mode=rwc&_pragma=journal_mode(WAL)&_pragma=busy_timeout(%d)",
		url.PathEscape(path), s.busyTimeout.Milliseconds())

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	db.SetMaxOpenConns(s.maxOpenConns)
	s.db = db

	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStore) Path() string { return s.path }

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// journalMode returns the current journal mode (for testing).
func (s *SQLiteStore) journalMode() (string, error) {
	var mode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&mode); err != nil {
		return "", err
	}
	return mode, nil
}

// ReplaceEvents implements Store.
func (s *SQLiteStore) ReplaceEvents(ctx context.Context, events []model.Event) error {
	for _, e := range events {
		if err := validateEvent(e); err != nil {
			return err
		}
	}

	const insert = `
	INSERT INTO events
	(id, name, slug, track, assembly, room, language, description, schedule_start, schedule_end)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO NOTHING
	`

	start := time.Now()
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM events`); err != nil {
			return fmt.Errorf("clear events: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, insert)
		if err != nil {
			return fmt.Errorf("prepare insert event: %w", err)
		}
		defer stmt.Close()

		for _, e := range events {
			r := eventToRow(e)
			if _, err := stmt.ExecContext(ctx,
				r.ID, r.Name, r.Slug, r.Track, r.Assembly, r.Room, r.Language,
				r.Description, r.ScheduleStart, r.ScheduleEnd,
			); err != nil {
				return fmt.Errorf("insert event %s: %w", r.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.RecordRepositoryUpdateLatency(msSince(start))
	metrics.UpdateCachedEvents(len(events))
	return nil
}

// Events implements Store.
func (s *SQLiteStore) Events(ctx context.Context) ([]model.Event, error) {
	const query = `
	SELECT id, name, slug, track, assembly, room, language, description, schedule_start, schedule_end
	FROM events
	ORDER BY schedule_start, slug
	`

	start := time.Now()
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query events: %w", err)
	}
	defer rows.Close()

	events := make([]model.Event, 0)
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}

	metrics.RecordRepositoryQueryLatency(msSince(start))
	return events, nil
}

// Event implements Store.
func (s *SQLiteStore) Event(ctx context.Context, id uuid.UUID) (model.Event, error) {
	const query = `
	SELECT id, name, slug, track, assembly, room, language, description, schedule_start, schedule_end
	FROM events
	WHERE id = ?
	`

	e, err := scanEvent(s.db.QueryRowContext(ctx, query, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Event{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return e, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(sc scanner) (model.Event, error) {
	var r eventRow
	if err := sc.Scan(
		&r.ID, &r.Name, &r.Slug, &r.Track, &r.Assembly, &r.Room, &r.Language,
		&r.Description, &r.ScheduleStart, &r.ScheduleEnd,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Event{}, err
		}
		return model.Event{}, fmt.Errorf("scan event: %w", err)
	}
	return r.toEvent()
}

// ReplaceRooms implements Store.
func (s *SQLiteStore) ReplaceRooms(ctx context.Context, rooms []model.Room) error {
	start := time.Now()
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM rooms`); err != nil {
			return fmt.Errorf("clear rooms: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO rooms (id, name, assembly) VALUES (?, ?, ?) ON CONFLICT(id) DO NOTHING`)
		if err != nil {
			return fmt.Errorf("prepare insert room: %w", err)
		}
		defer stmt.Close()

		for _, r := range rooms {
			if _, err := stmt.ExecContext(ctx, r.ID.String(), r.Name, r.Assembly); err != nil {
				return fmt.Errorf("insert room %s: %w", r.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.RecordRepositoryUpdateLatency(msSince(start))
	metrics.UpdateCachedRooms(len(rooms))
	return nil
}

// Rooms implements Store.
func (s *SQLiteStore) Rooms(ctx context.Context) ([]model.Room, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, `SELECT id, name, assembly FROM rooms ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("query rooms: %w", err)
	}
	defer rows.Close()

	rooms := make([]model.Room, 0)
	for rows.Next() {
		var id, name, assembly string
		if err := rows.Scan(&id, &name, &assembly); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rid, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("%w: room id %q: %w", ErrCorruptRow, id, err)
		}
		rooms = append(rooms, model.Room{ID: rid, Name: name, Assembly: assembly})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rooms: %w", err)
	}

	metrics.RecordRepositoryQueryLatency(msSince(start))
	return rooms, nil
}

// AddRatings implements Store.
func (s *SQLiteStore) AddRatings(ctx context.Context, ratings ...model.Rating) error {
	if len(ratings) == 0 {
		return nil
	}

	const insert = `
	INSERT INTO ratings (event_id, score, ts) VALUES (?, ?, ?)
	ON CONFLICT(event_id, ts) DO UPDATE SET score = excluded.score
	`

	start := time.Now()
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, insert)
		if err != nil {
			return fmt.Errorf("prepare insert rating: %w", err)
		}
		defer stmt.Close()

		for _, r := range ratings {
			row := ratingToRow(r)
			if _, err := stmt.ExecContext(ctx, row.EventID, row.Score, row.Ts); err != nil {
				return fmt.Errorf("insert rating for %s: %w", row.EventID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	metrics.RecordRepositoryUpdateLatency(msSince(start))
	return nil
}

// Ratings implements Store.
func (s *SQLiteStore) Ratings(ctx context.Context) ([]model.Rating, error) {
	start := time.Now()
	rows, err := s.db.QueryContext(ctx, `SELECT event_id, score, ts FROM ratings ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query ratings: %w", err)
	}
	defer rows.Close()

	ratings := make([]model.Rating, 0)
	for rows.Next() {
		var r ratingRow
		if err := rows.Scan(&r.EventID, &r.Score, &r.Ts); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		rating, err := r.toRating()
		if err != nil {
			return nil, err
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}

	metrics.RecordRepositoryQueryLatency(msSince(start))
	metrics.UpdateStoredRatings(len(ratings))
	return ratings, nil
}

// Counts implements Store.
func (s *SQLiteStore) Counts(ctx context.Context) (Counts, error) {
	const query = `
	SELECT
		(SELECT COUNT(*) FROM events),
		(SELECT COUNT(*) FROM rooms),
		(SELECT COUNT(*) FROM ratings)
	`

	var c Counts
	if err := s.db.QueryRowContext(ctx, query).Scan(&c.Events, &c.Rooms, &c.Ratings); err != nil {
		return Counts{}, fmt.Errorf("count rows: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
